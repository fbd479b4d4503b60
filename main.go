package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"social-connect/domain/repository"
	"social-connect/infrastructure/cache"
	"social-connect/infrastructure/clients/graph"
	"social-connect/infrastructure/clients/webhook"
	"social-connect/infrastructure/configuration"
	"social-connect/infrastructure/logger"
	"social-connect/infrastructure/persistence"
	"social-connect/infrastructure/pubsub"
	"social-connect/infrastructure/realtime"
	"social-connect/infrastructure/servicebus"
	httpHandler "social-connect/interfaces/http"
	"social-connect/server"
	"social-connect/usecase"

	"golang.org/x/sync/errgroup"
)

var httpServer *http.Server

func recoverPanic() {
	if err := recover(); err != nil {
		logger.GetLogger().WithField("error", err).Error("Application panic recovered")
	}
}

func main() {
	defer recoverPanic()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(interrupt)

	g, ctx := errgroup.WithContext(ctx)

	// OS env keeps precedence over the files
	if loaded := configuration.LoadEnvFromFile("config.env", ".env"); len(loaded) > 0 {
		logger.GetLogger().WithField("files", loaded).Info("Loaded env files")
		configuration.Reload()
	}
	cfg := configuration.C
	app := cfg.App

	var closers []func()
	defer func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}()

	sessions, redisHealthy := initSessionStore(ctx)

	webhookClient := webhook.NewClient(cfg.Webhook.BaseURL, cfg.Webhook.AuthKey, webhookPaths(cfg.Webhook),
		&http.Client{Timeout: time.Duration(cfg.Webhook.TimeoutSec) * time.Second})

	store, closeStore, err := initConnectionStore(ctx, webhookClient)
	if err != nil {
		logger.GetLogger().WithField("error", err).WithField("store", cfg.ConnectionStore).Error("Connection store unavailable - falling back to webhook")
		store = webhookClient
	}
	if closeStore != nil {
		closers = append(closers, closeStore)
	}

	graphClient := graph.NewClient(cfg.Graph.GraphHost, cfg.Graph.APIVersion,
		&http.Client{Timeout: time.Duration(cfg.Graph.TimeoutSec) * time.Second})

	hub := realtime.NewConnectionHub(0)
	connectionUC := usecase.NewConnectionUsecase(sessions, graphClient, store, usecase.ConnectionSettings{
		DialogURL:            cfg.DialogURL(),
		CallbackURL:          cfg.CallbackURL,
		DiscoveryConcurrency: cfg.Graph.DiscoveryConcurrency,
	}).WithBroadcaster(hub.BroadcastAttempt)

	checks := map[string]func() bool{"redis": redisHealthy}
	if audit, closeAudit := initAudit(ctx); audit != nil {
		connectionUC.WithAudit(audit)
		closers = append(closers, closeAudit)
	}
	if events, closeEvents := initEvents(ctx); events != nil {
		connectionUC.WithEvents(events)
		closers = append(closers, closeEvents)
	}

	var (
		sellerPackageHandler httpHandler.ISellerPackageHandler
		contentHandler       httpHandler.IContentHandler
	)
	if cfg.Webhook.BaseURL != "" {
		sellerPackageUC := usecase.NewSellerPackageUsecase(webhookClient)
		sellerPackageHandler = httpHandler.NewSellerPackageHandler(sellerPackageUC)
		contentHandler = httpHandler.NewContentHandler(usecase.NewContentUsecase(webhookClient, webhookClient, webhookClient, sellerPackageUC))
	} else {
		logger.GetLogger().Info("Webhook base URL not set; seller package and content routes disabled")
	}

	router := server.InitiateRouter(
		httpHandler.NewConnectionHandler(connectionUC, app.DashboardURL),
		sellerPackageHandler,
		contentHandler,
		httpHandler.NewHealthHandler(checks),
		hub,
		connectionUC.SessionUserID,
	)

	port := app.Port
	logger.GetLogger().WithFields(map[string]interface{}{"port": port, "tls": app.TLSEnabled, "store": cfg.ConnectionStore, "events": cfg.Events.Driver}).Info("Starting application")
	g.Go(func() error {
		httpServer = &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		}
		if app.TLSEnabled {
			cert := app.TLSCertFile
			key := app.TLSKeyFile
			if cert == "" || key == "" {
				logger.GetLogger().Error("TLS enabled but cert or key path empty; falling back to HTTP")
				if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
					return err
				}
			} else {
				logger.GetLogger().WithFields(map[string]interface{}{"cert": cert, "key": key}).Info("Serving HTTPS")
				if err := httpServer.ListenAndServeTLS(cert, key); !errors.Is(err, http.ErrServerClosed) {
					return err
				}
			}
		} else {
			if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				return err
			}
		}
		return nil
	})

	select {
	case <-interrupt:
		logger.GetLogger().Info("Application shutdown requested")
	case <-ctx.Done():
	}

	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if httpServer != nil {
		_ = httpServer.Shutdown(shutdownCtx)
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.GetLogger().WithField("error", err).Error("Server returned an error")
		os.Exit(2)
	}
}

func webhookPaths(w configuration.Webhook) webhook.Paths {
	return webhook.Paths{
		Upsert:           w.UpsertPath,
		Status:           w.StatusPath,
		Search:           w.SearchPath,
		SellerPackage:    w.SellerPackagePath,
		Posts:            w.PostsPath,
		PostUpdate:       w.PostUpdatePath,
		BrandSearch:      w.BrandSearchPath,
		BrandInsert:      w.BrandInsertPath,
		BrandUpdate:      w.BrandUpdatePath,
		PreferenceSearch: w.PreferenceSearchPath,
		PreferenceInsert: w.PreferenceInsertPath,
		PreferenceUpdate: w.PreferenceUpdatePath,
	}
}

// initSessionStore prefers redis and keeps an in-memory store for when it is down.
func initSessionStore(ctx context.Context) (repository.ISessionStore, func() bool) {
	cfg := configuration.C
	ttl := cfg.SessionTTL()
	local := cache.NewMemorySessionStore(ttl)
	local.StartSweeper(ctx, time.Minute)

	if cfg.RedisClient.Host == "" {
		logger.GetLogger().Info("Redis not configured - sessions kept in memory")
		return local, func() bool { return false }
	}
	redisClient, err := cache.NewCache(ctx,
		fmt.Sprintf("%s:%s", cfg.RedisClient.Host, cfg.RedisClient.Port),
		cfg.RedisClient.Username,
		cfg.RedisClient.Password,
	)
	if err != nil {
		logger.GetLogger().WithField("error", err).Warn("Redis ping failed - sessions fall back to memory until it recovers")
	}
	healthy := cache.PingHealthCheck(redisClient, 5*time.Second)
	remote := cache.NewSessionStore(redisClient, cfg.RedisClient.Prefix, ttl)
	return cache.NewFallbackSessionStore(remote, local, healthy), healthy
}

func initConnectionStore(ctx context.Context, webhookClient *webhook.Client) (repository.IConnectionStore, func(), error) {
	switch configuration.C.ConnectionStore {
	case "postgres":
		db, err := persistence.NewPostgreSQLDB()
		if err != nil {
			return nil, nil, err
		}
		if err := persistence.EnsureConnectionSchema(ctx, db); err != nil {
			logger.GetLogger().WithField("error", err).Error("failed ensuring connection schema")
		}
		return persistence.NewConnectionRepository(db), func() { _ = db.Close() }, nil
	case "mssql":
		db, err := persistence.NewMSSQLDB()
		if err != nil {
			return nil, nil, err
		}
		if err := persistence.EnsureConnectionSchemaMSSQL(ctx, db); err != nil {
			logger.GetLogger().WithField("error", err).Error("failed ensuring connection schema (mssql)")
		}
		return persistence.NewConnectionRepositoryMSSQL(db), func() { _ = db.Close() }, nil
	case "mysql":
		db, err := persistence.NewMySQLGorm()
		if err != nil {
			return nil, nil, err
		}
		repo := persistence.NewConnectionRepositoryGorm(db)
		if err := repo.AutoMigrate(); err != nil {
			logger.GetLogger().WithField("error", err).Error("failed migrating connection schema (mysql)")
		}
		closeDB := func() {
			if sqlDB, err := db.DB(); err == nil {
				_ = sqlDB.Close()
			}
		}
		return repo, closeDB, nil
	default:
		return webhookClient, nil, nil
	}
}

func initAudit(ctx context.Context) (repository.IAttemptAudit, func()) {
	mongoCfg := configuration.C.Database.Mongo
	if mongoCfg.Host == "" {
		return nil, nil
	}
	client, err := persistence.NewMongoDb(ctx)
	if err != nil {
		logger.GetLogger().WithField("error", err).Warn("MongoDB not available - continuing without attempt audit")
		return nil, nil
	}
	logger.GetLogger().Info("MongoDB connected successfully")
	return persistence.NewAttemptAuditMongo(client, mongoCfg.Name), func() {
		_ = client.Disconnect(context.Background())
	}
}

func initEvents(ctx context.Context) (repository.IConnectionEvents, func()) {
	cfg := configuration.C
	switch cfg.Events.Driver {
	case "pubsub":
		client, err := pubsub.NewClient(ctx, cfg.Pubsub.ProjectID)
		if err != nil {
			logger.GetLogger().WithField("error", err).Error("Error while instantiate PubSub")
			return nil, nil
		}
		pub := pubsub.NewConnectionPublisher(client, cfg.Events.Topic)
		return pub, func() {
			pub.Close()
			_ = client.Close()
		}
	case "servicebus":
		client, err := servicebus.NewClient(cfg.ServiceBus.Namespace)
		if err != nil {
			logger.GetLogger().WithField("error", err).Warn("Azure Service Bus not available - continuing without connection events")
			return nil, nil
		}
		return servicebus.NewConnectionPublisher(client, cfg.Events.Queue), func() {
			_ = client.Close(context.Background())
		}
	default:
		return nil, nil
	}
}
