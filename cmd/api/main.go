package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"shelfapi/internal/config"
	"shelfapi/internal/httpx"
	"shelfapi/internal/logger"
	"shelfapi/internal/platform/bigbook"
	"shelfapi/internal/search"
	"shelfapi/internal/shelf"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"
)

func main() {
	config.LoadEnvFiles()
	cfg, err := config.Load()
	logger.Init(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		logrus.Fatal(err)
	}

	dbPool := mustOpenDB(cfg.DBDSN)
	defer dbPool.Close()

	client := bigbook.NewClient(cfg.BigBook)
	details := search.NewCachedCatalog(client, search.NewMemoryCache(cfg.DetailCacheSize, cfg.DetailCacheTTL))

	searchService := search.NewService(client, details, cfg.Search)
	shelfService := shelf.NewService(shelf.NewPostgresRepo(dbPool, cfg.DBTimeout), details)

	router := newRouter(routes{
		search:    search.NewHTTPHandler(searchService, details),
		shelf:     shelf.NewHTTPHandler(shelfService),
		ready:     dbPool.Ping,
		staticDir: cfg.StaticDir,
	})

	rateLimiter := httpx.NewRateLimitMiddleware(cfg.RateLimitRPS, cfg.RateLimitBurst, cfg.TrustProxy)
	handler := httpx.SecurityHeadersMiddleware(
		httpx.CORSMiddleware(cfg.AllowedOrigins)(
			httpx.RequestIDMiddleware(
				httpx.AccessLogMiddleware(
					httpx.RecoveryMiddleware(
						rateLimiter.Middleware(
							httpx.RequestSizeLimitMiddleware(1 << 20)(router),
						),
					),
				),
			),
		),
	)

	httpServer := &http.Server{
		Addr:         cfg.Addr,
		Handler:      handler,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logrus.WithField("addr", cfg.Addr).Info("starting server")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.WithError(err).Fatal("server error")
		}
	}()

	<-ctx.Done()
	logrus.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logrus.WithError(err).Error("graceful shutdown failed")
	}
}

func mustOpenDB(dsn string) *pgxpool.Pool {
	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		logrus.WithError(err).Fatal("cannot create db pool")
	}
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		logrus.WithError(err).WithField("dsn", redactDSN(dsn)).Fatal("cannot ping database")
	}
	logrus.Info("database connection OK")
	return pool
}

func redactDSN(dsn string) string {
	const marker = "://"
	start := strings.Index(dsn, marker)
	if start < 0 {
		return dsn
	}
	start += len(marker)
	end := strings.Index(dsn[start:], "@")
	if end < 0 {
		return dsn
	}
	return dsn[:start] + "***" + dsn[start+end:]
}
