// Package shellcache serves the static application shell through a caching
// reverse proxy so the app keeps loading when the upstream is unreachable.
// GET responses are served from the network and a copy stored under a
// versioned cache identity; on network failure the last cached response for
// the exact path is served, falling back to the cached shell entry. Non-GET
// requests pass through untouched and are never cached.
package shellcache

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httputil"
	"net/url"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

const maxCachedBody = 8 << 20 // 8 MiB

// entry is a cached upstream response.
type entry struct {
	Status      int    `json:"status"`
	ContentType string `json:"contentType"`
	Body        []byte `json:"body"`
}

// Cache proxies and caches the static app shell.
type Cache struct {
	redis     *redis.Client
	upstream  *url.URL
	proxy     *httputil.ReverseProxy
	client    *http.Client
	version   string
	shellPath string
	assets    []string
	logger    *log.Logger
}

// New creates a Cache proxying to upstream. version names the cache
// identity; shellPath is the app-shell fallback entry; assets are
// pre-fetched by Warm.
func New(client *redis.Client, upstream, version, shellPath string, assets []string, logger *log.Logger) (*Cache, error) {
	u, err := url.Parse(upstream)
	if err != nil {
		return nil, err
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, errors.New("shellcache: upstream must be an absolute URL")
	}
	if logger == nil {
		logger = log.StandardLogger()
	}
	return &Cache{
		redis:     client,
		upstream:  u,
		proxy:     httputil.NewSingleHostReverseProxy(u),
		client:    &http.Client{Timeout: 10 * time.Second},
		version:   version,
		shellPath: shellPath,
		assets:    assets,
		logger:    logger,
	}, nil
}

func (s *Cache) key(path string) string {
	return "shell:" + s.version + ":" + path
}

// Activate purges cached entries that belong to a different cache version.
// Run once at startup, before serving.
func (s *Cache) Activate(ctx context.Context) error {
	keep := "shell:" + s.version + ":"
	iter := s.redis.Scan(ctx, 0, "shell:*", 0).Iterator()
	for iter.Next(ctx) {
		k := iter.Val()
		if !strings.HasPrefix(k, keep) {
			if err := s.redis.Del(ctx, k).Err(); err != nil {
				s.logger.WithError(err).WithField("key", k).Warn("stale shell entry not purged")
			}
		}
	}
	return iter.Err()
}

// Warm pre-fetches the configured asset list into the cache so first
// offline use works even for paths never requested online.
func (s *Cache) Warm(ctx context.Context) {
	for _, path := range s.assets {
		if _, err := s.fetch(ctx, path); err != nil {
			s.logger.WithError(err).WithField("path", path).Warn("asset not warmed")
		}
	}
}

// Handler serves shell requests. Mount it on a catch-all route.
func (s *Cache) Handler() echo.HandlerFunc {
	return func(c echo.Context) error {
		req := c.Request()
		if req.Method != http.MethodGet {
			s.proxy.ServeHTTP(c.Response(), req)
			return nil
		}
		ctx := req.Context()
		path := req.URL.Path
		ent, err := s.fetch(ctx, path)
		if err == nil {
			return respond(c, ent)
		}
		if cached, ok := s.lookup(ctx, path); ok {
			return respond(c, cached)
		}
		if cached, ok := s.lookup(ctx, s.shellPath); ok {
			return respond(c, cached)
		}
		return c.String(http.StatusServiceUnavailable, "upstream unreachable and nothing cached")
	}
}

// fetch serves path from the upstream and opportunistically stores a copy.
func (s *Cache) fetch(ctx context.Context, path string) (entry, error) {
	target := *s.upstream
	target.Path = strings.TrimSuffix(target.Path, "/") + path
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return entry{}, err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return entry{}, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxCachedBody))
	if err != nil {
		return entry{}, err
	}
	ent := entry{
		Status:      resp.StatusCode,
		ContentType: resp.Header.Get(echo.HeaderContentType),
		Body:        body,
	}
	s.store(ctx, path, ent)
	return ent, nil
}

func (s *Cache) store(ctx context.Context, path string, ent entry) {
	data, err := json.Marshal(ent)
	if err != nil {
		return
	}
	if err := s.redis.Set(ctx, s.key(path), data, 0).Err(); err != nil {
		s.logger.WithError(err).WithField("path", path).Warn("shell entry not cached")
	}
}

func (s *Cache) lookup(ctx context.Context, path string) (entry, bool) {
	data, err := s.redis.Get(ctx, s.key(path)).Bytes()
	if err != nil {
		return entry{}, false
	}
	var ent entry
	if err := json.Unmarshal(data, &ent); err != nil {
		_ = s.redis.Del(ctx, s.key(path)).Err()
		return entry{}, false
	}
	return ent, true
}

func respond(c echo.Context, ent entry) error {
	contentType := ent.ContentType
	if contentType == "" {
		contentType = echo.MIMEOctetStream
	}
	return c.Blob(ent.Status, contentType, ent.Body)
}
