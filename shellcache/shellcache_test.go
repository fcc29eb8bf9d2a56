package shellcache

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

func newTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return client
}

func newTestCache(t *testing.T, client *redis.Client, upstream string) *Cache {
	t.Helper()
	logger := log.New()
	logger.SetLevel(log.PanicLevel)
	cache, err := New(client, upstream, "v1", "/index.html", []string{"/index.html"}, logger)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return cache
}

func serve(cache *Cache, method, path string) *httptest.ResponseRecorder {
	e := echo.New()
	e.Any("/*", cache.Handler())
	req := httptest.NewRequest(method, path, nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func newUpstream(t *testing.T) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusAccepted)
			return
		}
		switch r.URL.Path {
		case "/index.html":
			w.Header().Set("Content-Type", "text/html")
			w.Write([]byte("<html>shell</html>"))
		case "/app.js":
			w.Header().Set("Content-Type", "text/javascript")
			w.Write([]byte("console.log('hi')"))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(ts.Close)
	return ts
}

func TestNewRejectsRelativeUpstream(t *testing.T) {
	client := newTestRedis(t)
	if _, err := New(client, "/not-absolute", "v1", "/index.html", nil, nil); err == nil {
		t.Fatal("relative upstream accepted")
	}
}

func TestServesFromUpstreamAndCaches(t *testing.T) {
	client := newTestRedis(t)
	ts := newUpstream(t)
	cache := newTestCache(t, client, ts.URL)

	rec := serve(cache, http.MethodGet, "/index.html")
	if rec.Code != http.StatusOK || rec.Body.String() != "<html>shell</html>" {
		t.Fatalf("status=%d body=%q", rec.Code, rec.Body.String())
	}
	if rec.Header().Get(echo.HeaderContentType) != "text/html" {
		t.Fatalf("content type = %q", rec.Header().Get(echo.HeaderContentType))
	}
	if err := client.Get(context.Background(), "shell:v1:/index.html").Err(); err != nil {
		t.Fatalf("response not cached: %v", err)
	}
}

func TestFallsBackToCachedExactMatch(t *testing.T) {
	client := newTestRedis(t)
	ts := newUpstream(t)
	cache := newTestCache(t, client, ts.URL)

	serve(cache, http.MethodGet, "/app.js")
	ts.Close()

	rec := serve(cache, http.MethodGet, "/app.js")
	if rec.Code != http.StatusOK || rec.Body.String() != "console.log('hi')" {
		t.Fatalf("cached fallback: status=%d body=%q", rec.Code, rec.Body.String())
	}
}

func TestFallsBackToShellEntry(t *testing.T) {
	client := newTestRedis(t)
	ts := newUpstream(t)
	cache := newTestCache(t, client, ts.URL)

	serve(cache, http.MethodGet, "/index.html")
	ts.Close()

	// A never-cached route falls back to the cached app shell.
	rec := serve(cache, http.MethodGet, "/tasks/today")
	if rec.Code != http.StatusOK || rec.Body.String() != "<html>shell</html>" {
		t.Fatalf("shell fallback: status=%d body=%q", rec.Code, rec.Body.String())
	}
}

func TestUnavailableWhenNothingCached(t *testing.T) {
	client := newTestRedis(t)
	ts := newUpstream(t)
	cache := newTestCache(t, client, ts.URL)
	ts.Close()

	rec := serve(cache, http.MethodGet, "/index.html")
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestWarmPrefetchesAssets(t *testing.T) {
	client := newTestRedis(t)
	ts := newUpstream(t)
	cache := newTestCache(t, client, ts.URL)

	cache.Warm(context.Background())
	ts.Close()

	rec := serve(cache, http.MethodGet, "/index.html")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "shell") {
		t.Fatalf("warmed asset not served: status=%d body=%q", rec.Code, rec.Body.String())
	}
}

func TestActivatePurgesStaleVersions(t *testing.T) {
	client := newTestRedis(t)
	ts := newUpstream(t)
	ctx := context.Background()

	old := newTestCache(t, client, ts.URL)
	serve(old, http.MethodGet, "/index.html")

	logger := log.New()
	logger.SetLevel(log.PanicLevel)
	next, err := New(client, ts.URL, "v2", "/index.html", nil, logger)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	serve(next, http.MethodGet, "/app.js")
	if err := next.Activate(ctx); err != nil {
		t.Fatalf("Activate: %v", err)
	}

	if err := client.Get(ctx, "shell:v1:/index.html").Err(); err != redis.Nil {
		t.Fatalf("stale entry survived: %v", err)
	}
	if err := client.Get(ctx, "shell:v2:/app.js").Err(); err != nil {
		t.Fatalf("current entry purged: %v", err)
	}
}

func TestNonGetPassesThrough(t *testing.T) {
	client := newTestRedis(t)
	ts := newUpstream(t)
	cache := newTestCache(t, client, ts.URL)

	rec := serve(cache, http.MethodPost, "/submit")
	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want upstream's 202", rec.Code)
	}
	keys, err := client.Keys(context.Background(), "shell:*").Result()
	if err != nil {
		t.Fatalf("keys: %v", err)
	}
	if len(keys) != 0 {
		t.Fatalf("non-GET response cached: %v", keys)
	}
}
