package fetcher

import (
	"compress/gzip"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"conference-scraper/internal/observability"
)

func testOptions() Options {
	return Options{
		UserAgent:      "confscrape-test",
		AcceptLanguage: "en-US",
		Timeout:        5 * time.Second,
	}
}

func TestFetchSendsHeaders(t *testing.T) {
	var gotUA, gotLang string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotLang = r.Header.Get("Accept-Language")
		_, _ = w.Write([]byte("<html><body>ok</body></html>"))
	}))
	defer srv.Close()

	f := NewFetcher(testOptions(), observability.NewNop())
	resp, err := f.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "<html><body>ok</body></html>", string(resp.Body))
	assert.Equal(t, "confscrape-test", gotUA)
	assert.Equal(t, "en-US", gotLang)
}

func TestFetchDecodesGzip(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Encoding", "gzip")
		gz := gzip.NewWriter(w)
		_, _ = gz.Write([]byte("compressed body"))
		_ = gz.Close()
	}))
	defer srv.Close()

	f := NewFetcher(testOptions(), observability.NewNop())
	resp, err := f.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "compressed body", string(resp.Body))
}

func TestFetchReturnsNon200WithoutError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	f := NewFetcher(testOptions(), observability.NewNop())
	resp, err := f.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestFetchInvalidURL(t *testing.T) {
	f := NewFetcher(testOptions(), observability.NewNop())
	_, err := f.Fetch(context.Background(), "://bad")
	assert.Error(t, err)
}

func TestRateLimiterBurst(t *testing.T) {
	rl := NewRateLimiter(60, 3)
	ctx := context.Background()

	start := time.Now()
	for i := 0; i < 3; i++ {
		require.NoError(t, rl.Wait(ctx, "example.com"))
	}
	assert.Less(t, time.Since(start), 500*time.Millisecond, "burst should not block")
}

func TestRateLimiterRespectsContext(t *testing.T) {
	rl := NewRateLimiter(1, 1)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	require.NoError(t, rl.Wait(ctx, "example.com"))
	assert.Error(t, rl.Wait(ctx, "example.com"), "second request must wait ~1m and hit the deadline")
}

func TestRateLimiterPerHost(t *testing.T) {
	rl := NewRateLimiter(1, 1)
	ctx := context.Background()

	require.NoError(t, rl.Wait(ctx, "a.example.com"))
	require.NoError(t, rl.Wait(ctx, "b.example.com"))
}
