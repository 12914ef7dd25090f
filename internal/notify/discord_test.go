package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/donaldgifford/competitor-price-matcher/internal/metrics"
	domain "github.com/donaldgifford/competitor-price-matcher/pkg/types"
)

func testSummary(changes int) domain.ChangeSummary {
	return domain.ChangeSummary{
		RunID:   "run-42",
		Changes: changes,
		Matched: 18,
		Targets: 25,
		Link:    "https://sheets.example.com/d/price-watch",
	}
}

func TestHeadline(t *testing.T) {
	t.Parallel()

	one := testSummary(1)
	many := testSummary(7)
	assert.Equal(t, "1 competitor price change detected", Headline(&one))
	assert.Equal(t, "7 competitor price changes detected", Headline(&many))
}

func TestDiscordNotifier_NotifyChanges(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		summary    domain.ChangeSummary
		statusCode int
		wantErr    bool
		errMsg     string
		wantColor  int
	}{
		{
			name:       "few changes use green",
			summary:    testSummary(3),
			statusCode: http.StatusNoContent,
			wantColor:  colorGreen,
		},
		{
			name:       "dozen changes use yellow",
			summary:    testSummary(12),
			statusCode: http.StatusNoContent,
			wantColor:  colorYellow,
		},
		{
			name:       "many changes use orange",
			summary:    testSummary(75),
			statusCode: http.StatusNoContent,
			wantColor:  colorOrange,
		},
		{
			name:       "discord returns 429 rate limited",
			summary:    testSummary(3),
			statusCode: http.StatusTooManyRequests,
			wantErr:    true,
			errMsg:     "rate limited",
		},
		{
			name:       "discord returns 400 error",
			summary:    testSummary(3),
			statusCode: http.StatusBadRequest,
			wantErr:    true,
			errMsg:     "discord returned 400",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var received discordWebhookPayload

			srv := httptest.NewServer(
				http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
					assert.Equal(t, http.MethodPost, r.Method)

					err := json.NewDecoder(r.Body).Decode(&received)
					assert.NoError(t, err)

					w.WriteHeader(tt.statusCode)
				}),
			)
			defer srv.Close()

			d := NewDiscordNotifier(srv.URL)
			err := d.NotifyChanges(context.Background(), tt.summary)

			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
				return
			}

			require.NoError(t, err)
			require.Len(t, received.Embeds, 1)

			embed := received.Embeds[0]
			assert.Equal(t, tt.wantColor, embed.Color)
			assert.Equal(t, Headline(&tt.summary), embed.Title)
			assert.Equal(t, tt.summary.Link, embed.URL)
			assert.Contains(t, embed.Description, tt.summary.Link)

			fieldMap := make(map[string]string)
			for _, f := range embed.Fields {
				fieldMap[f.Name] = f.Value
			}
			assert.Equal(t, "18", fieldMap["Matched"])
			assert.Equal(t, "25", fieldMap["Targets"])
			assert.Equal(t, "run-42", fieldMap["Run"])
		})
	}
}

func TestDiscordNotifier_NoLink(t *testing.T) {
	t.Parallel()

	var received discordWebhookPayload

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		err := json.NewDecoder(r.Body).Decode(&received)
		assert.NoError(t, err)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	s := testSummary(2)
	s.Link = ""
	s.RunID = ""

	err := NewDiscordNotifier(srv.URL).NotifyChanges(context.Background(), s)
	require.NoError(t, err)

	require.Len(t, received.Embeds, 1)
	assert.Empty(t, received.Embeds[0].URL)
	assert.Empty(t, received.Embeds[0].Description)
	assert.Len(t, received.Embeds[0].Fields, 2)
}

func TestDiscordNotifier_NetworkError(t *testing.T) {
	t.Parallel()

	d := NewDiscordNotifier("http://127.0.0.1:1") // nothing listening
	err := d.NotifyChanges(context.Background(), testSummary(1))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sending discord webhook")
}

func TestDiscordNotifier_InvalidWebhookURL(t *testing.T) {
	t.Parallel()

	d := NewDiscordNotifier("://not-a-valid-url")
	err := d.NotifyChanges(context.Background(), testSummary(1))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "creating discord request")
}

func TestWithHTTPClient(t *testing.T) {
	t.Parallel()

	custom := &http.Client{}
	d := NewDiscordNotifier("https://example.com", WithHTTPClient(custom))
	assert.Same(t, custom, d.client)
}

func getNotificationHistogramSampleCount() uint64 {
	ch := make(chan prometheus.Metric, 1)
	metrics.NotificationDuration.Collect(ch)
	m := <-ch
	pb := &dto.Metric{}
	_ = m.Write(pb)
	return pb.GetHistogram().GetSampleCount()
}

func TestNotifyChanges_ObservesNotificationDuration(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	before := getNotificationHistogramSampleCount()

	err := NewDiscordNotifier(srv.URL).NotifyChanges(context.Background(), testSummary(4))
	require.NoError(t, err)

	after := getNotificationHistogramSampleCount()
	assert.Greater(t, after, before, "NotificationDuration histogram sample count should increase")
}
