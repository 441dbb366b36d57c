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

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/CenterForCreators/cfc-nft-shared-mint-backend/internal/app"
	"github.com/CenterForCreators/cfc-nft-shared-mint-backend/internal/cache"
	"github.com/CenterForCreators/cfc-nft-shared-mint-backend/internal/clock"
	"github.com/CenterForCreators/cfc-nft-shared-mint-backend/internal/config"
	"github.com/CenterForCreators/cfc-nft-shared-mint-backend/internal/gateway"
	"github.com/CenterForCreators/cfc-nft-shared-mint-backend/internal/ledger"
	"github.com/CenterForCreators/cfc-nft-shared-mint-backend/internal/storage/postgres"
	transporthttp "github.com/CenterForCreators/cfc-nft-shared-mint-backend/internal/transport/http"
	"github.com/CenterForCreators/cfc-nft-shared-mint-backend/migrations"
)

const shutdownTimeout = 10 * time.Second

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	if err := godotenv.Load(); err != nil {
		logger.Warn("no .env file loaded", zap.Error(err))
	}
	cfg := config.Load(logger)

	startupCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	pool, err := pgxpool.New(startupCtx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("connect to db", zap.Error(err))
	}
	defer pool.Close()

	if err := pool.Ping(startupCtx); err != nil {
		logger.Fatal("db ping", zap.Error(err))
	}
	if err := migrations.Apply(startupCtx, pool); err != nil {
		logger.Fatal("apply migrations", zap.Error(err))
	}

	clk := clock.NewSystem()
	gatewayClient := gateway.NewClient(cfg.GatewayURL, cfg.GatewayAPIKey, cfg.GatewayAPISecret)
	ledgerClient := ledger.NewClient(cfg.LedgerRPCURL)
	issuedToken := app.IssuedToken{Code: cfg.IssuedCurrency, Issuer: cfg.IssuedCurrencyIssuer}

	catalogRepo := postgres.NewListingRepository(pool)
	catalogSvc := app.NewCatalogService(catalogRepo, cache.NewSnapshot(cfg.CatalogCacheTTL, clk), clk, logger)

	offerRepo := postgres.NewOfferRepository(pool)
	offerSvc := app.NewOfferService(offerRepo, gatewayClient, ledgerClient, clk, logger, issuedToken,
		app.WithPollInterval(cfg.OfferPollInterval),
		app.WithPollAttempts(cfg.OfferPollAttempts),
	)
	purchaseSvc := app.NewPurchaseService(offerRepo, gatewayClient, logger)

	orderRepo := postgres.NewOrderRepository(pool)
	settlementSvc := app.NewSettlementService(orderRepo, offerSvc, catalogSvc, clk, logger)

	router := transporthttp.NewRouter(transporthttp.RouterDeps{
		Catalog:      catalogSvc,
		CatalogAdmin: catalogSvc,
		Offers:       offerSvc,
		Purchases:    purchaseSvc,
		Confirmation: settlementSvc,
		Logger:       logger,
	})

	corsHandler := cors.New(cors.Options{
		AllowedOrigins: parseCSV(cfg.CORSOrigins),
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
		AllowedHeaders: []string{"Content-Type"},
	})

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: corsHandler.Handler(router),
	}

	logger.Info("api listening", zap.String("port", cfg.Port))

	srvErr := make(chan error, 1)
	go func() {
		srvErr <- server.ListenAndServe()
	}()

	stopCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-srvErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", zap.Error(err))
		}
	case <-stopCtx.Done():
		logger.Info("shutdown signal received, stopping server")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server shutdown error", zap.Error(err))
	}
	logger.Info("server stopped")
}

func parseCSV(input string) []string {
	if input == "" {
		return nil
	}
	parts := strings.Split(input, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		out = append(out, part)
	}
	return out
}
