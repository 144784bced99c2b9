package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shopspring/decimal"

	"github.com/AngelCh415/perfdash/internal/config"
	"github.com/AngelCh415/perfdash/internal/httpx"
	"github.com/AngelCh415/perfdash/internal/ingest"
	"github.com/AngelCh415/perfdash/internal/metrics"
	"github.com/AngelCh415/perfdash/internal/store"
)

func main() {
	cfg := config.FromEnv()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	decimal.MarshalJSONWithoutQuotes = true

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, closeStore, err := store.Open(ctx, store.Options{
		Driver:        cfg.StoreDriver,
		DatabaseURL:   cfg.DatabaseURL,
		RedisAddr:     cfg.RedisAddr,
		RedisPassword: cfg.RedisPassword,
		RedisDB:       cfg.RedisDB,
	}, logger)
	if err != nil {
		logger.Error("store init failed", slog.String("driver", cfg.StoreDriver), slog.String("err", err.Error()))
		os.Exit(1)
	}
	defer closeStore()

	cl := ingest.NewHTTPClient(cfg.HTTPTimeout)
	opts := ingest.ClientOptions{
		MaxRetries: cfg.VendorMaxRetries,
		RetryBase:  cfg.VendorRetryBase,
		PerSecond:  cfg.VendorRatePerSecond,
	}
	// one client per vendor so each gets its own rate limit
	shopify := ingest.NewShopifyProvider(ingest.NewClient(cl, opts, logger), cfg.ShopifyAPIVersion)
	facebook := ingest.NewFacebookProvider(ingest.NewClient(cl, opts, logger), cfg.FacebookBaseURL, cfg.FacebookAPIVersion, cfg.FacebookAppToken)
	gads := cfg.GoogleAds
	google := ingest.NewGoogleAdsProvider(ingest.NewClient(cl, opts, logger), ingest.GoogleAdsConfig{
		BaseURL:           gads.BaseURL,
		APIVersion:        gads.APIVersion,
		DeveloperToken:    gads.DeveloperToken,
		ManagerCustomerID: gads.ManagerCustomerID,
	}, ingest.NewRefreshTokenSource(ctx, gads.ClientID, gads.ClientSecret, gads.RefreshToken, gads.TokenURL))

	mSvc := metrics.NewService(st, shopify, facebook, google, logger)

	r := httpx.NewRouter(logger, st, mSvc)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := srv.Shutdown(sctx); err != nil {
			logger.Error("shutdown error", slog.String("err", err.Error()))
		}
	}()

	logger.Info("starting server", slog.String("port", cfg.Port), slog.String("store", cfg.StoreDriver))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server error", slog.String("err", err.Error()))
		os.Exit(1)
	}
	logger.Info("server stopped")
}
