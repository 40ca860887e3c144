package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"pledgebook/api"
	"pledgebook/config"
	"pledgebook/database"
	"pledgebook/events"
	"pledgebook/infrastructure"
	"pledgebook/notify"
	"pledgebook/pricing"
	"pledgebook/repository"
	"pledgebook/repository/jsonl"
	"pledgebook/service"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const serviceName = "pledgebook"

// Run initializes and starts the application
func Run(ctx context.Context) error {
	cfg := config.Get()
	ConfigureLogging(cfg)

	log.WithFields(log.Fields{
		"environment": cfg.Environment,
		"backend":     cfg.StorageBackend,
	}).Info("Starting pledgebook")

	eventBus := events.NewBus()

	uowFactory, closeStore, err := openStore(ctx, cfg, eventBus)
	if err != nil {
		return err
	}
	defer closeStore()

	subscribeEventLog(eventBus)

	if cfg.DiscordEnabled() {
		notifier, err := notify.NewDiscordNotifier(cfg.DiscordToken, cfg.DiscordChannelID)
		if err != nil {
			return fmt.Errorf("failed to initialize Discord notifier: %w", err)
		}
		notifier.SubscribeTo(eventBus)
		log.WithField("channelID", cfg.DiscordChannelID).Info("Discord notifications enabled")
	}

	if cfg.NATSEnabled() {
		natsClient, err := connectNATS(ctx, cfg)
		if err != nil {
			return err
		}
		defer natsClient.Close()

		infrastructure.NewNATSEventPublisher(natsClient, infrastructure.NewEventSubjectMapper(), serviceName).SubscribeTo(eventBus)
	}

	clock := service.SystemClock()
	prices := pricing.NewCache(
		pricing.NewCoinGeckoClient(cfg.PriceFeedURL, cfg.PriceAssetID, cfg.PriceTimeout),
		clock,
		cfg.PriceTTL,
	)

	handler := api.NewHandler(
		service.NewUserService(uowFactory, clock),
		service.NewPledgeService(uowFactory, prices, service.NewCodeGenerator(cfg.CodeLength), clock),
		service.NewAdminService(uowFactory, clock),
		service.NewDashboardService(uowFactory, prices, clock),
		prices,
		api.Options{
			AdminToken:      cfg.AdminToken,
			DonationAddress: cfg.DonationAddress,
		},
	)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           api.NewRouter(handler),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	group, gctx := errgroup.WithContext(ctx)

	group.Go(func() error {
		log.WithField("addr", srv.Addr).Info("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	})

	group.Go(func() error {
		<-gctx.Done()
		log.Info("Shutting down HTTP server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.WithError(err).Error("HTTP server shutdown failed")
		}
		return nil
	})

	if err := group.Wait(); err != nil {
		return err
	}

	log.Info("Shutdown completed")
	return nil
}

// openStore selects the storage backend and returns its unit of work
// factory together with a close function.
func openStore(ctx context.Context, cfg *config.Config, eventBus *events.Bus) (service.UnitOfWorkFactory, func(), error) {
	switch cfg.StorageBackend {
	case config.BackendPostgres:
		log.Info("Connecting to database...")
		db, err := database.NewConnection(ctx, cfg.GetDatabaseURL())
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		log.Info("Database connection established successfully")
		return repository.NewUnitOfWorkFactory(db, eventBus), db.Close, nil

	default:
		ledger, err := jsonl.OpenLedger(cfg.DataDir)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open ledger: %w", err)
		}
		log.WithField("dataDir", cfg.DataDir).Info("Ledger files opened")
		return jsonl.NewUnitOfWorkFactory(ledger, eventBus), func() {}, nil
	}
}

func connectNATS(ctx context.Context, cfg *config.Config) (*infrastructure.NATSClient, error) {
	natsClient := infrastructure.NewNATSClient(cfg.NATSServers, serviceName)
	if err := natsClient.Connect(ctx); err != nil {
		return nil, err
	}

	subjects := infrastructure.NewEventSubjectMapper().GetAllSubjects()
	if err := natsClient.EnsureStream(infrastructure.StreamName, subjects); err != nil {
		natsClient.Close()
		return nil, err
	}
	return natsClient, nil
}

// subscribeEventLog writes one log line per committed domain event
func subscribeEventLog(bus *events.Bus) {
	handler := func(ctx context.Context, event events.Event) {
		log.WithFields(log.Fields{
			"eventType": event.Type(),
			"event":     event,
		}).Info("Domain event")
	}
	for _, eventType := range infrastructure.NewEventSubjectMapper().EventTypes() {
		bus.Subscribe(eventType, handler)
	}
}
