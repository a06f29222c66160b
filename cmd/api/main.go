package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"server/internal/adapter/repo"
	"server/internal/http/handlers"
	httpapi "server/internal/http/httpapi"
	"server/internal/infra"
	"server/internal/infra/geoip"
	"server/internal/ledger"
	"server/internal/service"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx := context.Background()
	dbpool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect database")
	}
	defer dbpool.Close()

	if err := infra.Migrate(ctx, dbpool); err != nil {
		logger.Fatal().Err(err).Msg("failed to apply schema")
	}

	var chain ledger.Client
	if cfg.LedgerMode == "memory" {
		logger.Warn().Msg("using in-process ledger; records will not survive a restart")
		chain = ledger.NewMemory()
	} else {
		chain, err = ledger.NewGateway(ledger.GatewayOptions{
			BaseURL: cfg.LedgerGatewayURL,
			APIKey:  cfg.LedgerGatewayAPIKey,
			Timeout: cfg.LedgerTimeout,
			Logger:  logger,
		})
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to build ledger client")
		}
	}

	compareFields, err := service.ParseCompareFields(cfg.LedgerCompareFields)
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid LEDGER_COMPARE_FIELDS")
	}

	resolver, err := geoip.NewResolver(cfg.GeoIPDBPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open geoip database")
	}

	users := repo.NewUserRepository(dbpool)
	donations := repo.NewDonationRepository(dbpool)
	inventory := repo.NewInventoryRepository(dbpool)
	requests := repo.NewRequestRepository(dbpool)
	hospitals := repo.NewHospitalRepository(dbpool)
	eligibility := repo.NewEligibilityRepository(dbpool)

	app := &handlers.App{
		Logger:      logger,
		DB:          dbpool,
		Auth:        service.NewAuth(users, cfg.JWTSecret, cfg.JWTTTL),
		Ledger:      service.NewDonationLedger(donations, chain, compareFields, logger),
		Eligibility: service.NewEligibility(eligibility),
		Donations:   donations,
		Inventory:   inventory,
		Requests:    requests,
		Hospitals:   hospitals,
		GeoIP:       resolver,
	}

	router := httpapi.NewRouter(app, cfg, logger)
	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Msgf("API listening on :%s", cfg.Port)
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}
