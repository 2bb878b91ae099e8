package fetcher

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := NewClient(Options{BaseURL: srv.URL + "/", UserAgent: "pimplecast-test", Timeout: 5 * time.Second})
	require.NoError(t, err)
	return c
}

func TestFetchUnescapes(t *testing.T) {
	var gotUA, gotPath string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotPath = r.URL.Path
		_, _ = w.Write([]byte(`<span>Брайтон &amp; Хоув</span>`))
	})

	page, err := c.Fetch(context.Background(), "/football/1-a-b/")
	require.NoError(t, err)
	assert.Equal(t, `<span>Брайтон & Хоув</span>`, page)
	assert.Equal(t, "pimplecast-test", gotUA)
	assert.Equal(t, "/football/1-a-b/", gotPath)
}

func TestFetchNotFoundIsEmpty(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	page, err := c.Fetch(context.Background(), "/football/404/")
	require.NoError(t, err)
	assert.Empty(t, page)
}

func TestFetchServerError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := c.Fetch(context.Background(), "/category/football/")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP 502")
}

func TestFetchCancelled(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Fetch(ctx, "/")
	assert.Error(t, err)
}

func TestClientURL(t *testing.T) {
	c, err := NewClient(Options{BaseURL: "https://www.pimpletv.ru/"})
	require.NoError(t, err)

	u, err := c.URL("/category/football/")
	require.NoError(t, err)
	assert.Equal(t, "https://www.pimpletv.ru/category/football/", u)

	u, err = c.URL("football/7-x-y/")
	require.NoError(t, err)
	assert.Equal(t, "https://www.pimpletv.ru/football/7-x-y/", u)
}

func TestNewClientRejectsBadScheme(t *testing.T) {
	_, err := NewClient(Options{BaseURL: "ftp://example.com/"})
	assert.Error(t, err)
}
