package notify_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/donaldgifford/competitor-price-matcher/internal/notify"
	"github.com/donaldgifford/competitor-price-matcher/internal/notify/mocks"
	domain "github.com/donaldgifford/competitor-price-matcher/pkg/types"
)

func TestMultiNotifier(t *testing.T) {
	t.Parallel()

	summary := domain.ChangeSummary{RunID: "run-1", Changes: 2}

	first := mocks.NewMockNotifier(t)
	first.EXPECT().NotifyChanges(t.Context(), summary).Return(errors.New("discord: status 500")).Once()
	second := mocks.NewMockNotifier(t)
	second.EXPECT().NotifyChanges(t.Context(), summary).Return(nil).Once()

	err := notify.MultiNotifier{first, second}.NotifyChanges(t.Context(), summary)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "discord: status 500")
}

func TestMultiNotifier_Empty(t *testing.T) {
	t.Parallel()

	assert.NoError(t, notify.MultiNotifier{}.NotifyChanges(t.Context(), domain.ChangeSummary{}))
}
