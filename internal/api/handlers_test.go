package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"estateparser/internal/config"
	"estateparser/internal/domain"
	"estateparser/internal/fetch"
	"estateparser/internal/monitoring"
	"estateparser/internal/parser"
)

const sitePage = `<html><body>
<a class="card" href="/object/1"><h2 class="title">First</h2><img class="photo" src="/p/1.jpg"></a>
<a class="card" href="/object/2"><h2 class="title">Second</h2></a>
</body></html>`

type fakeStore struct {
	saved   [][]domain.Listing
	saveErr error
	pingErr error
}

func (f *fakeStore) SaveListings(_ context.Context, listings []domain.Listing) error {
	f.saved = append(f.saved, listings)
	return f.saveErr
}

func (f *fakeStore) Ping(context.Context) error { return f.pingErr }

type fakeCache struct {
	entries map[string][]byte
	pingErr error
	sets    int
}

func (f *fakeCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	body, ok := f.entries[key]
	return body, ok, nil
}

func (f *fakeCache) Set(_ context.Context, key string, body []byte) error {
	if f.entries == nil {
		f.entries = make(map[string][]byte)
	}
	f.entries[key] = body
	f.sets++
	return nil
}

func (f *fakeCache) Ping(context.Context) error { return f.pingErr }

// newTestServer wires a server around a throwaway site serving sitePage and
// returns the site's URL plus its hit counter.
func newTestServer(t *testing.T, store ListingStore, cache ResultCache) (*Server, string, *atomic.Int64) {
	t.Helper()

	var hits atomic.Int64
	site := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write([]byte(sitePage))
	}))
	t.Cleanup(site.Close)

	logger := zap.NewNop()
	m := monitoring.NewMetrics(prometheus.NewRegistry())
	p := parser.New(fetch.NewStaticFetcher(5*time.Second, "test", logger), m, logger, 0)

	srv := NewServer(&config.Config{ServerPort: "0"}, p, store, cache, m, logger)
	return srv, site.URL, &hits
}

func doRequest(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, target, reader))
	return rec
}

func parseBody(t *testing.T, siteURL string) string {
	t.Helper()
	return fmt.Sprintf(`{
		"site_url": %q,
		"selectors": {"object_url": "a.card", "title": "h2.title", "photos": "img.photo"}
	}`, siteURL)
}

func decodeListings(t *testing.T, rec *httptest.ResponseRecorder) []domain.Listing {
	t.Helper()
	var listings []domain.Listing
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listings))
	return listings
}

func TestParsePostSingleObject(t *testing.T) {
	t.Parallel()

	srv, siteURL, _ := newTestServer(t, nil, nil)
	rec := doRequest(t, srv.Handler(), http.MethodPost, "/api/parse", parseBody(t, siteURL))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	listings := decodeListings(t, rec)
	require.Len(t, listings, 2)
	assert.Equal(t, siteURL+"/object/1", listings[0].ObjectURL)
	assert.Equal(t, "First", listings[0].Title)
	assert.Equal(t, []string{siteURL + "/p/1.jpg"}, listings[0].Photos)
	assert.Equal(t, siteURL+"/object/2", listings[1].ObjectURL)
	assert.NotNil(t, listings[1].Photos)
}

func TestParsePostArray(t *testing.T) {
	t.Parallel()

	srv, siteURL, _ := newTestServer(t, nil, nil)
	body := "[" + parseBody(t, siteURL) + "]"
	rec := doRequest(t, srv.Handler(), http.MethodPost, "/api/parse", body)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeListings(t, rec), 2)
}

func TestParsePostValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{
			name:    "invalid json",
			body:    "{not json",
			wantErr: "Invalid JSON in request body",
		},
		{
			name:    "scalar payload",
			body:    `"just a string"`,
			wantErr: "Expected an object with 'site_url' and 'selectors' or an array of such objects",
		},
		{
			name:    "array of scalars",
			body:    `[42]`,
			wantErr: "Each site must be an object",
		},
		{
			name:    "missing site_url",
			body:    `[{"selectors": {"object_url": "a"}}]`,
			wantErr: "Each site must have 'site_url' field",
		},
		{
			name:    "missing selectors",
			body:    `[{"site_url": "https://x.example.com"}]`,
			wantErr: "Each site must have 'selectors' field",
		},
	}

	srv, _, _ := newTestServer(t, nil, nil)
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(t, srv.Handler(), http.MethodPost, "/api/parse", tt.body)
			require.Equal(t, http.StatusBadRequest, rec.Code)

			var resp map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Contains(t, resp["error"], tt.wantErr)
		})
	}
}

func TestParsePostEmptyArray(t *testing.T) {
	t.Parallel()

	srv, _, _ := newTestServer(t, nil, nil)
	rec := doRequest(t, srv.Handler(), http.MethodPost, "/api/parse", `[]`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestParsePostNullValuesAreSkippedSites(t *testing.T) {
	t.Parallel()

	srv, _, hits := newTestServer(t, nil, nil)
	rec := doRequest(t, srv.Handler(), http.MethodPost, "/api/parse",
		`{"site_url": null, "selectors": null}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
	assert.Zero(t, hits.Load())
}

func TestParseGet(t *testing.T) {
	t.Parallel()

	srv, siteURL, _ := newTestServer(t, nil, nil)
	payload := url.QueryEscape(parseBody(t, siteURL))

	rec := doRequest(t, srv.Handler(), http.MethodGet, "/api/parse?data="+payload, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeListings(t, rec), 2)

	rec = doRequest(t, srv.Handler(), http.MethodGet, "/api/parse?json="+payload, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeListings(t, rec), 2)
}

func TestParseGetMissingParam(t *testing.T) {
	t.Parallel()

	srv, _, _ := newTestServer(t, nil, nil)
	rec := doRequest(t, srv.Handler(), http.MethodGet, "/api/parse", "")

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "No data provided. Use 'data' or 'json' query parameter")
}

func TestParseGetInvalidJSON(t *testing.T) {
	t.Parallel()

	srv, _, _ := newTestServer(t, nil, nil)
	rec := doRequest(t, srv.Handler(), http.MethodGet, "/api/parse?data=%7Bnope", "")

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid JSON in query parameter")
}

func TestParseStoresListings(t *testing.T) {
	t.Parallel()

	store := &fakeStore{}
	srv, siteURL, _ := newTestServer(t, store, nil)

	rec := doRequest(t, srv.Handler(), http.MethodPost, "/api/parse", parseBody(t, siteURL))
	require.Equal(t, http.StatusOK, rec.Code)

	require.Len(t, store.saved, 1)
	assert.Len(t, store.saved[0], 2)
}

func TestParseStoreFailureStillResponds(t *testing.T) {
	t.Parallel()

	store := &fakeStore{saveErr: errors.New("db down")}
	srv, siteURL, _ := newTestServer(t, store, nil)

	rec := doRequest(t, srv.Handler(), http.MethodPost, "/api/parse", parseBody(t, siteURL))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeListings(t, rec), 2)
}

func TestParseResponseCached(t *testing.T) {
	t.Parallel()

	cache := &fakeCache{}
	srv, siteURL, hits := newTestServer(t, nil, cache)
	body := parseBody(t, siteURL)

	first := doRequest(t, srv.Handler(), http.MethodPost, "/api/parse", body)
	require.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, 1, cache.sets)
	assert.EqualValues(t, 1, hits.Load())

	second := doRequest(t, srv.Handler(), http.MethodPost, "/api/parse", body)
	require.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, first.Body.String(), second.Body.String())
	assert.EqualValues(t, 1, hits.Load(), "cached response must not re-fetch the site")
}

func TestHealthNoBackends(t *testing.T) {
	t.Parallel()

	srv, _, _ := newTestServer(t, nil, nil)
	rec := doRequest(t, srv.Handler(), http.MethodGet, "/api/health", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestHealthDegraded(t *testing.T) {
	t.Parallel()

	store := &fakeStore{pingErr: errors.New("connection refused")}
	cache := &fakeCache{}
	srv, _, _ := newTestServer(t, store, cache)

	rec := doRequest(t, srv.Handler(), http.MethodGet, "/api/health", "")
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var health map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &health))
	assert.Equal(t, "degraded", health["status"])
	assert.Equal(t, "unhealthy", health["postgres"])
	assert.Equal(t, "healthy", health["redis"])
}

func TestMetricsEndpoint(t *testing.T) {
	t.Parallel()

	srv, _, _ := newTestServer(t, nil, nil)
	rec := doRequest(t, srv.Handler(), http.MethodGet, "/metrics", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestHTTPMetricsRecorded(t *testing.T) {
	t.Parallel()

	srv, _, _ := newTestServer(t, nil, nil)

	rec := doRequest(t, srv.Handler(), http.MethodGet, "/api/health", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, srv.Handler(), http.MethodGet, "/api/parse", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)

	ok := srv.metrics.HTTPRequestsTotal.WithLabelValues(http.MethodGet, "/api/health", "200")
	bad := srv.metrics.HTTPRequestsTotal.WithLabelValues(http.MethodGet, "/api/parse", "400")
	assert.InDelta(t, 1, testutil.ToFloat64(ok), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(bad), 0)
}
