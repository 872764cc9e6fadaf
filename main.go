package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"
	redis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"example.com/storefront/internal/config"
	gatewaymysql "example.com/storefront/internal/infra/gateway/mysql"
	"example.com/storefront/internal/infra/notify"
	"example.com/storefront/internal/infra/realtime"
	"example.com/storefront/internal/infra/security"
	apihttp "example.com/storefront/internal/interface/http"
	"example.com/storefront/internal/logger"
	"example.com/storefront/internal/usecase/catalog"
	"example.com/storefront/internal/usecase/categoryadmin"
)

func main() {
	cfg := config.Load()

	zlog, err := logger.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = zlog.Sync() }()

	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		zlog.Fatal("mysql open failed", zap.Error(err))
	}
	defer db.Close()

	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := db.PingContext(pingCtx); err != nil {
		cancel()
		zlog.Fatal("mysql ping failed", zap.Error(err))
	}
	cancel()

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
	defer rdb.Close()

	feed := realtime.NewFeed(rdb, zlog)
	hub := notify.NewHub(zlog)

	products := gatewaymysql.NewProductRepository(db)
	categories := gatewaymysql.NewCategoryRepository(db, feed, zlog)

	store := catalog.NewStore(catalog.Dependencies{
		Products:   products,
		Categories: categories,
		Feed:       feedAdapter{feed},
		Notifier:   hub,
		Log:        zlog,
	})
	defer store.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initial snapshot; failures are surfaced through the notifier and
	// the catalog keeps serving whatever it has.
	_ = store.LoadProducts(ctx)
	_ = store.LoadCategories(ctx)
	if err := store.Watch(ctx); err != nil {
		zlog.Error("realtime watch not started", zap.Error(err))
	}

	admin := categoryadmin.NewController(categories, hub, zlog)
	_ = admin.Refresh(ctx)

	api := apihttp.NewAPI(apihttp.Dependencies{
		Store:    store,
		Admin:    admin,
		Toasts:   hub,
		Verifier: security.NewTokenVerifier(cfg.AuthJWTSecret),
		Log:      zlog,
	})

	srv := &http.Server{
		Addr:    cfg.Addr,
		Handler: api.Router(),
	}

	go func() {
		zlog.Info("listening", zap.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Error("server stopped", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	zlog.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zlog.Error("shutdown failed", zap.Error(err))
	}
}

// feedAdapter narrows *realtime.Feed to the store's Feed interface.
type feedAdapter struct {
	feed *realtime.Feed
}

func (f feedAdapter) Subscribe(ctx context.Context, table string) (catalog.Subscription, error) {
	return f.feed.Subscribe(ctx, table)
}
