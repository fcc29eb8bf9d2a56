package main

import (
	"context"
	"crypto/tls"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"worklist/api"
	"worklist/notify"
	"worklist/shellcache"
	"worklist/storage"
	"worklist/store"
)

func main() {
	if dbg, err := strconv.ParseBool(os.Getenv("DEBUG")); err == nil && dbg {
		log.SetLevel(log.DebugLevel)
	}

	redisConn := os.Getenv("REDIS_CONNECTION_STRING")
	if redisConn == "" {
		log.Fatal("missing redis config")
	}
	redisOpts, err := redis.ParseURL(redisConn)
	if err != nil {
		parts := strings.Split(redisConn, ",")
		redisOpts = &redis.Options{Addr: parts[0]}
		for _, p := range parts[1:] {
			kv := strings.SplitN(p, "=", 2)
			if len(kv) != 2 {
				continue
			}
			switch strings.ToLower(kv[0]) {
			case "password":
				redisOpts.Password = kv[1]
			case "ssl":
				if strings.ToLower(kv[1]) == "true" {
					redisOpts.TLSConfig = &tls.Config{}
				}
			}
		}
	}
	rc := redis.NewClient(redisOpts)

	stateKey := envOr("STATE_KEY", "worklist_v1")
	uiKey := envOr("UI_KEY", "worklist_ui_v1")

	logger := log.New()
	docs := storage.New(rc, stateKey, uiKey, logger)

	var notifier notify.Notifier = notify.Noop{}
	if on, err := strconv.ParseBool(os.Getenv("NOTIFICATIONS")); err == nil && on {
		notifier = notify.Logger{Log: logger}
	}

	ctx := context.Background()
	st := store.Open(ctx, docs, notifier, logger)

	ttl := 24 * time.Hour
	if v := os.Getenv("IDEMPOTENCY_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			log.Fatalf("invalid IDEMPOTENCY_TTL: %v", err)
		}
		ttl = d
	}
	deduper := api.NewRedisDeduper(rc, ttl)

	e := echo.New()
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, api.HeaderIdempotencyKey},
	}))
	e.Use(echoprometheus.NewMiddleware("worklist"))
	e.Use(api.GzipRequestMiddleware())
	e.GET("/metrics", echoprometheus.NewHandler())

	api.Register(e, st, deduper, logger)

	if upstream := os.Getenv("SHELL_UPSTREAM"); upstream != "" {
		version := envOr("CACHE_VERSION", "worklist-shell-v1")
		assets := strings.Split(envOr("SHELL_ASSETS", "/,/index.html,/styles.css,/app.js,/manifest.json"), ",")
		shell, err := shellcache.New(rc, upstream, version, "/index.html", assets, logger)
		if err != nil {
			log.Fatalf("shellcache: %v", err)
		}
		if err := shell.Activate(ctx); err != nil {
			logger.WithError(err).Warn("stale shell cache purge incomplete")
		}
		shell.Warm(ctx)
		e.Any("/*", shell.Handler())
	}

	listenAddr := envOr("LISTEN_ADDR", ":8080")
	e.Logger.Fatal(e.Start(listenAddr))
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
