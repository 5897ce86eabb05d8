package observe

import (
	"context"
	"net/http"
	"net/http/httptest"
	"regexp"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/detagtor/detagtor/internal/fingerprint"
)

func testLogger() hclog.Logger {
	return hclog.New(&hclog.LoggerOptions{Level: hclog.Error, DisableTime: true})
}

func newTestCollector(opts Options) *Collector {
	return NewCollector(testLogger(), resty.New().SetTimeout(2*time.Second), opts)
}

func TestCollect(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/js/app.js":
			w.Write([]byte("app content"))
		case "/js/empty.js":
			w.WriteHeader(http.StatusOK)
		case "/js/gone.js":
			http.NotFound(w, r)
		case "/js/broken.js":
			w.WriteHeader(http.StatusInternalServerError)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c := newTestCollector(Options{Concurrency: 4})
	set, err := c.Collect(context.Background(), srv.URL+"/", []string{
		"js/app.js", "js/empty.js", "js/gone.js", "js/broken.js",
	})
	require.NoError(t, err)
	require.Len(t, set, 4)

	assert.Equal(t, Observation{State: Observed, Fingerprint: fingerprint.Sum([]byte("app content"))}, set["js/app.js"])
	// a 200 with an empty body is still an observation
	assert.Equal(t, Observation{State: Observed, Fingerprint: fingerprint.Sum(nil)}, set["js/empty.js"])
	assert.Equal(t, Observation{State: Unobserved}, set["js/gone.js"])
	assert.Equal(t, Observation{State: Unobserved}, set["js/broken.js"])
}

func TestCollectTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // refuse all connections

	c := newTestCollector(Options{Concurrency: 2})
	set, err := c.Collect(context.Background(), srv.URL+"/", []string{"a.js", "b.js"})
	require.NoError(t, err)
	assert.Equal(t, Observation{State: Unobserved}, set["a.js"])
	assert.Equal(t, Observation{State: Unobserved}, set["b.js"])
}

func TestCollectInvalidBaseURL(t *testing.T) {
	c := newTestCollector(Options{})
	_, err := c.Collect(context.Background(), "http://bad url with spaces", []string{"a.js"})
	assert.Error(t, err)
}

func TestCollectHeaders(t *testing.T) {
	var gotAuth atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth.Store(r.Header.Get("Authorization"))
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	c := newTestCollector(Options{Headers: map[string]string{"Authorization": "Bearer token"}})
	_, err := c.Collect(context.Background(), srv.URL+"/", []string{"a.js"})
	require.NoError(t, err)
	assert.Equal(t, "Bearer token", gotAuth.Load())
}

func TestCollectRewrites(t *testing.T) {
	var requested atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requested.Store(r.URL.Path)
		w.Write([]byte("content"))
	}))
	defer srv.Close()

	c := newTestCollector(Options{
		Rewrites: []RewriteRule{
			{Pattern: regexp.MustCompile(`^dist/`), Replacement: "static/"},
		},
	})
	set, err := c.Collect(context.Background(), srv.URL+"/", []string{"dist/app.js"})
	require.NoError(t, err)

	assert.Equal(t, "/static/app.js", requested.Load())
	// recorded under the canonical path, not the rewritten one
	assert.Contains(t, set, "dist/app.js")
	assert.Equal(t, Observed, set["dist/app.js"].State)
}

func TestCollectCancellation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := newTestCollector(Options{Concurrency: 1})
	set, err := c.Collect(ctx, srv.URL+"/", []string{"a.js", "b.js", "c.js"})
	require.NoError(t, err)

	// every requested path is finalized, none with fabricated content
	require.Len(t, set, 3)
	for path, obs := range set {
		assert.Equal(t, Unobserved, obs.State, "path %s", path)
	}
}

func TestCollectBatchesEarlyStop(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	c := newTestCollector(Options{Concurrency: 2})
	set, err := c.CollectBatches(context.Background(), srv.URL+"/", []string{"a", "b", "c", "d", "e", "f"}, func(s Set) bool {
		return len(s) >= 2
	})
	require.NoError(t, err)

	assert.Len(t, set, 2)
	assert.EqualValues(t, 2, atomic.LoadInt32(&hits))
}

func TestSetObserved(t *testing.T) {
	set := Set{
		"a": {State: Observed, Fingerprint: fingerprint.Sum([]byte("a"))},
		"b": {State: Unobserved},
	}
	assert.Equal(t, 1, set.Observed())
}
