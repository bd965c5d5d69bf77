package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/Max3uc3Planz/lcdt-back/api/routes"
	"github.com/Max3uc3Planz/lcdt-back/internal/addresses"
	"github.com/Max3uc3Planz/lcdt-back/internal/auth"
	"github.com/Max3uc3Planz/lcdt-back/internal/availability"
	"github.com/Max3uc3Planz/lcdt-back/internal/catalog"
	"github.com/Max3uc3Planz/lcdt-back/internal/discounts"
	"github.com/Max3uc3Planz/lcdt-back/internal/orders"
	"github.com/Max3uc3Planz/lcdt-back/internal/settings"
	"github.com/Max3uc3Planz/lcdt-back/internal/telephones"
	"github.com/Max3uc3Planz/lcdt-back/internal/timeslot"
	"github.com/Max3uc3Planz/lcdt-back/internal/users"
	"github.com/Max3uc3Planz/lcdt-back/internal/zones"
	"github.com/Max3uc3Planz/lcdt-back/pkg/auth/session"
	"github.com/Max3uc3Planz/lcdt-back/pkg/clock"
	"github.com/Max3uc3Planz/lcdt-back/pkg/config"
	"github.com/Max3uc3Planz/lcdt-back/pkg/db"
	"github.com/Max3uc3Planz/lcdt-back/pkg/logger"
	"github.com/Max3uc3Planz/lcdt-back/pkg/maps"
	"github.com/Max3uc3Planz/lcdt-back/pkg/migrate"
	"github.com/Max3uc3Planz/lcdt-back/pkg/outbox"
	"github.com/Max3uc3Planz/lcdt-back/pkg/redis"
)

const shutdownTimeout = 10 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	loc, err := time.LoadLocation(cfg.Checkout.Timezone)
	if err != nil {
		logg.Error(context.Background(), "invalid checkout timezone", err)
		os.Exit(1)
	}
	clk := clock.NewSystem(loc)

	outboxService := outbox.NewService(outbox.NewRepository(dbClient.DB()), logg)

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:       users.NewRepository(dbClient.DB()),
		SessionManager: sessionManager,
		JWTConfig:      cfg.JWT,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	usersService, err := users.NewService(users.ServiceParams{
		Repo:     users.NewRepository(dbClient.DB()),
		Tx:       dbClient,
		Outbox:   outboxService,
		Password: cfg.Password,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create users service", err)
		os.Exit(1)
	}

	zonesService, err := zones.NewService(zones.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create zones service", err)
		os.Exit(1)
	}

	var mapsClient *maps.Client
	if cfg.Maps.APIKey != "" {
		mapsClient, err = maps.NewClient(cfg.Maps.APIKey)
		if err != nil {
			logg.Error(context.Background(), "failed to create maps client", err)
			os.Exit(1)
		}
	}

	addressesService, err := addresses.NewService(addresses.ServiceParams{
		Repo:  addresses.NewRepository(dbClient.DB()),
		Tx:    dbClient,
		Zones: zonesService,
		Maps:  mapsClient,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create addresses service", err)
		os.Exit(1)
	}

	telephonesService, err := telephones.NewService(telephones.NewRepository(dbClient.DB()), dbClient)
	if err != nil {
		logg.Error(context.Background(), "failed to create telephones service", err)
		os.Exit(1)
	}

	catalogService, err := catalog.NewService(catalog.NewRepository(dbClient.DB()), clk)
	if err != nil {
		logg.Error(context.Background(), "failed to create catalog service", err)
		os.Exit(1)
	}

	availabilityService, err := availability.NewService(
		availability.NewRepository(dbClient.DB()),
		clk,
		cfg.Checkout.StockLookaheadDays,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create availability service", err)
		os.Exit(1)
	}

	timeslotService, err := timeslot.NewService(timeslot.NewRepository(dbClient.DB()), clk)
	if err != nil {
		logg.Error(context.Background(), "failed to create timeslot service", err)
		os.Exit(1)
	}

	discountsService, err := discounts.NewService(discounts.NewRepository(dbClient.DB()), clk)
	if err != nil {
		logg.Error(context.Background(), "failed to create discounts service", err)
		os.Exit(1)
	}

	settingsService, err := settings.NewService(settings.NewRepository(dbClient.DB()), cfg.Checkout.SettingsCacheTTL)
	if err != nil {
		logg.Error(context.Background(), "failed to create settings service", err)
		os.Exit(1)
	}

	ordersService, err := orders.NewService(orders.ServiceParams{
		Repo:         orders.NewRepository(dbClient.DB()),
		Tx:           dbClient,
		Outbox:       outboxService,
		Availability: availabilityService,
		Timeslots:    timeslotService,
		Zones:        zonesService,
		Discounts:    discountsService,
		Settings:     settingsService,
		Clock:        clk,
		TxTimeout:    cfg.Checkout.TxTimeout,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create orders service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	id := os.Getenv("DYNO")
	if id == "" {
		id = "local"
	}
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": id,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Deps{
			Cfg:            cfg,
			Logg:           logg,
			DBPinger:       dbClient,
			RedisClient:    redisClient,
			SessionManager: sessionManager,
			Auth:           authService,
			Users:          usersService,
			Addresses:      addressesService,
			Telephones:     telephonesService,
			Catalog:        catalogService,
			Availability:   availabilityService,
			Timeslots:      timeslotService,
			Zones:          zonesService,
			Discounts:      discountsService,
			Orders:         ordersService,
			Settings:       settingsService,
		}),
	}

	runCtx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	g, gCtx := errgroup.WithContext(runCtx)
	g.Go(func() error {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
	logg.Info(ctx, "api server shut down gracefully")
}
