package search_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/donaldgifford/competitor-price-matcher/internal/httputil"
	"github.com/donaldgifford/competitor-price-matcher/internal/pacing"
	"github.com/donaldgifford/competitor-price-matcher/internal/search"
	"github.com/donaldgifford/competitor-price-matcher/pkg/extract"
)

func init() {
	httputil.RetryBaseDelay = time.Millisecond
}

const shoppingBody = `{
  "search_metadata": {"status": "Success"},
  "shopping_results": [
    {"title": "Garmin Edge 1050", "link": "https://www.examplestore.com/products/edge-1050", "source": "Example Store", "price": "$549.99", "extracted_price": 549.99}
  ]
}`

func TestClient_Search(t *testing.T) {
	t.Parallel()

	var gotQuery atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery.Store(r.URL.Query())
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(shoppingBody))
	}))
	defer srv.Close()

	c := search.NewClient("test-key",
		search.WithEndpoint(srv.URL),
		search.WithEngine(search.EngineGoogleShopping),
		search.WithNum(20),
		search.WithHTTPClient(srv.Client()),
	)

	content, err := c.Search(context.Background(), `"753759315389" (site:examplestore.com)`)
	require.NoError(t, err)

	assert.Equal(t, extract.KindSearchResults, content.Kind)
	assert.NotContains(t, content.URL, "test-key")
	assert.JSONEq(t, shoppingBody, string(content.Body))

	q, ok := gotQuery.Load().(url.Values)
	require.True(t, ok)
	assert.Equal(t, []string{"google_shopping"}, q["engine"])
	assert.Equal(t, []string{`"753759315389" (site:examplestore.com)`}, q["q"])
	assert.Equal(t, []string{"test-key"}, q["api_key"])
	assert.Equal(t, []string{"us"}, q["gl"])
	assert.Equal(t, []string{"en"}, q["hl"])
	assert.Equal(t, []string{"20"}, q["num"])

	offers := extract.SearchExtractor{}.Extract(content)
	require.Len(t, offers, 1)
	assert.Equal(t, "549.99", offers[0].Price.StringFixed(2))
}

func TestClient_Search_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		status      int
		body        string
		wantErr     bool
		wantErrIs   error
		wantErrText string
	}{
		{
			name:   "no results is not an error",
			status: http.StatusOK,
			body:   `{"error": "Google hasn't returned any results for this query."}`,
		},
		{
			name:        "api error body",
			status:      http.StatusOK,
			body:        `{"error": "Your account has run out of searches."}`,
			wantErr:     true,
			wantErrText: "run out of searches",
		},
		{
			name:      "invalid key",
			status:    http.StatusUnauthorized,
			body:      `{"error": "Invalid API key."}`,
			wantErr:   true,
			wantErrIs: search.ErrMissingAPIKey,
		},
		{
			name:        "bad request",
			status:      http.StatusBadRequest,
			body:        `{"error": "Missing query."}`,
			wantErr:     true,
			wantErrText: "status 400",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			c := search.NewClient("k", search.WithEndpoint(srv.URL), search.WithHTTPClient(srv.Client()))
			_, err := c.Search(context.Background(), "q")

			if !tt.wantErr {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			if tt.wantErrIs != nil {
				require.ErrorIs(t, err, tt.wantErrIs)
			}
			if tt.wantErrText != "" {
				assert.Contains(t, err.Error(), tt.wantErrText)
			}
		})
	}
}

func TestClient_Search_RetriesServerErrors(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(shoppingBody))
	}))
	defer srv.Close()

	c := search.NewClient("k", search.WithEndpoint(srv.URL), search.WithHTTPClient(srv.Client()))
	_, err := c.Search(context.Background(), "q")

	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
}

func TestClient_Search_MissingKey(t *testing.T) {
	t.Parallel()

	_, err := search.NewClient("").Search(context.Background(), "q")
	require.ErrorIs(t, err, search.ErrMissingAPIKey)
}

func TestClient_Search_RetriesSpendBudget(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) <= 3 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write([]byte(shoppingBody))
	}))
	defer srv.Close()

	budget := pacing.NewBudget(0, 2)
	c := search.NewClient("k",
		search.WithEndpoint(srv.URL),
		search.WithHTTPClient(srv.Client()),
		search.WithBudget(budget),
	)

	_, err := c.Search(context.Background(), "garmin edge 1050")
	require.ErrorIs(t, err, pacing.ErrDailyLimitReached)
	assert.Equal(t, int32(2), calls.Load())
	assert.Equal(t, int64(2), budget.DailyCount())
}

func TestClient_Search_BudgetExhausted(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(shoppingBody))
	}))
	defer srv.Close()

	c := search.NewClient("k",
		search.WithEndpoint(srv.URL),
		search.WithHTTPClient(srv.Client()),
		search.WithBudget(pacing.NewBudget(0, 1)),
	)

	_, err := c.Search(context.Background(), "first")
	require.NoError(t, err)

	_, err = c.Search(context.Background(), "second")
	require.ErrorIs(t, err, pacing.ErrDailyLimitReached)
	assert.Equal(t, int32(1), calls.Load())
}
