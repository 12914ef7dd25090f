package fetch_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/donaldgifford/competitor-price-matcher/internal/fetch"
	"github.com/donaldgifford/competitor-price-matcher/internal/httputil"
	"github.com/donaldgifford/competitor-price-matcher/internal/pacing"
	"github.com/donaldgifford/competitor-price-matcher/pkg/extract"
)

func init() {
	httputil.RetryBaseDelay = time.Millisecond
}

const productPage = `<html><head><title>Garmin Edge 1050</title>
<script type="application/ld+json">{"@type":"Product","name":"Garmin Edge 1050","mpn":"010-02890-00",
"offers":{"price":"549.99","priceCurrency":"USD"}}</script></head><body></body></html>`

func TestClient_Fetch(t *testing.T) {
	t.Parallel()

	var gotUA, gotAccept atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA.Store(r.Header.Get("User-Agent"))
		gotAccept.Store(r.Header.Get("Accept"))
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(productPage))
	}))
	defer srv.Close()

	c := fetch.NewClient(fetch.WithHTTPClient(srv.Client()), fetch.WithUserAgent("pm-test/1.0"))
	content, err := c.Fetch(context.Background(), srv.URL+"/products/edge-1050", extract.KindHTML)
	require.NoError(t, err)

	assert.Equal(t, extract.KindHTML, content.Kind)
	assert.Equal(t, srv.URL+"/products/edge-1050", content.URL)
	assert.Equal(t, "text/html", content.Header.Get("Content-Type"))
	assert.Equal(t, productPage, string(content.Body))
	assert.Equal(t, "pm-test/1.0", gotUA.Load())
	assert.Contains(t, gotAccept.Load(), "text/html")

	offers := extract.SchemaExtractor{}.Extract(content)
	require.Len(t, offers, 1)
	assert.Equal(t, "549.99", offers[0].Price.StringFixed(2))
}

func TestClient_Fetch_StorefrontAccept(t *testing.T) {
	t.Parallel()

	var gotAccept atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAccept.Store(r.Header.Get("Accept"))
		_, _ = w.Write([]byte(`{"title":"Edge 1050"}`))
	}))
	defer srv.Close()

	c := fetch.NewClient(fetch.WithHTTPClient(srv.Client()))
	content, err := c.Fetch(context.Background(), srv.URL+"/products/edge-1050.js", extract.KindStorefrontJSON)
	require.NoError(t, err)

	assert.Equal(t, extract.KindStorefrontJSON, content.Kind)
	assert.True(t, strings.HasPrefix(gotAccept.Load().(string), "application/json"))
}

func TestClient_Fetch_ProbeRetryOnForbidden(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		status int
	}{
		{name: "403", status: http.StatusForbidden},
		{name: "406", status: http.StatusNotAcceptable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var calls atomic.Int32
			var probe atomic.Value
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if calls.Add(1) == 1 {
					w.WriteHeader(tt.status)
					return
				}
				probe.Store(r.URL.Query().Get("probe"))
				_, _ = w.Write([]byte(productPage))
			}))
			defer srv.Close()

			c := fetch.NewClient(
				fetch.WithHTTPClient(srv.Client()),
				fetch.WithNowFunc(func() time.Time { return time.Unix(1700000000, 0) }),
			)
			content, err := c.Fetch(context.Background(), srv.URL+"/p?variant=1", extract.KindHTML)
			require.NoError(t, err)

			assert.Equal(t, int32(2), calls.Load())
			assert.Equal(t, "1700000000", probe.Load())
			assert.Equal(t, srv.URL+"/p?variant=1", content.URL)
		})
	}
}

func TestClient_Fetch_ForbiddenTwice(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	c := fetch.NewClient(fetch.WithHTTPClient(srv.Client()))
	_, err := c.Fetch(context.Background(), srv.URL+"/p", extract.KindHTML)

	var statusErr *fetch.StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusForbidden, statusErr.Code)
	assert.Equal(t, int32(2), calls.Load())
}

func TestClient_Fetch_RetriesServerErrors(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(productPage))
	}))
	defer srv.Close()

	c := fetch.NewClient(fetch.WithHTTPClient(srv.Client()))
	_, err := c.Fetch(context.Background(), srv.URL, extract.KindHTML)

	require.NoError(t, err)
	assert.Equal(t, int32(3), calls.Load())
}

func TestClient_Fetch_NotFound(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	c := fetch.NewClient(fetch.WithHTTPClient(srv.Client()))
	_, err := c.Fetch(context.Background(), srv.URL+"/gone", extract.KindHTML)

	var statusErr *fetch.StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusNotFound, statusErr.Code)
	assert.Contains(t, err.Error(), "/gone")
}

func TestClient_Fetch_MaxBodyBytes(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(strings.Repeat("x", 1000)))
	}))
	defer srv.Close()

	c := fetch.NewClient(fetch.WithHTTPClient(srv.Client()), fetch.WithMaxBodyBytes(100))
	content, err := c.Fetch(context.Background(), srv.URL, extract.KindHTML)

	require.NoError(t, err)
	assert.Len(t, content.Body, 100)
}

func TestClient_Fetch_BudgetExhausted(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(productPage))
	}))
	defer srv.Close()

	c := fetch.NewClient(fetch.WithHTTPClient(srv.Client()), fetch.WithBudget(pacing.NewBudget(0, 1)))

	_, err := c.Fetch(context.Background(), srv.URL, extract.KindHTML)
	require.NoError(t, err)

	_, err = c.Fetch(context.Background(), srv.URL, extract.KindHTML)
	require.ErrorIs(t, err, pacing.ErrDailyLimitReached)
}

func TestClient_Fetch_InvalidURL(t *testing.T) {
	t.Parallel()

	_, err := fetch.NewClient().Fetch(context.Background(), "://bad", extract.KindHTML)
	require.Error(t, err)
}
