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

	"go.uber.org/zap"

	"github.com/venuelab/directory-engine/pkg/blob"
	"github.com/venuelab/directory-engine/pkg/config"
	"github.com/venuelab/directory-engine/pkg/database"
	"github.com/venuelab/directory-engine/pkg/extraction"
	"github.com/venuelab/directory-engine/pkg/geo"
	"github.com/venuelab/directory-engine/pkg/handlers"
	"github.com/venuelab/directory-engine/pkg/llm"
	"github.com/venuelab/directory-engine/pkg/logging"
	"github.com/venuelab/directory-engine/pkg/mcp"
	"github.com/venuelab/directory-engine/pkg/repositories"
	"github.com/venuelab/directory-engine/pkg/scrape"
	"github.com/venuelab/directory-engine/pkg/services"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "directory-engine: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load("config.yaml")
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := logging.New(cfg.Logging.Environment, cfg.Logging.Level)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dbCfg := &database.Config{
		Host:           cfg.Database.Host,
		Port:           cfg.Database.Port,
		User:           cfg.Database.User,
		Password:       cfg.Database.Password,
		Name:           cfg.Database.Name,
		SSLMode:        cfg.Database.SSLMode,
		MaxConnections: cfg.Database.MaxConnections,
	}

	if err := database.RunMigrations(dbCfg, cfg.Database.MigrationsPath, logger); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	db, err := database.NewConnection(ctx, dbCfg)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	establishments := repositories.NewEstablishmentRepository()
	venues := repositories.NewVenueRepository()
	content := repositories.NewContentRepository()
	staging := repositories.NewStagingRepository()
	facts := repositories.NewFactRepository()
	homepageQueue := repositories.NewHomepageRepository()

	geocoder := geo.NewClient(cfg.Geo.BaseURL, cfg.Geo.UserAgent, logger)

	var (
		blobStore services.BlobStore
		hoster    services.ImageHoster
	)
	if cfg.Blob.AccountName != "" {
		store, err := blob.NewStore(cfg.Blob.AccountName, cfg.Blob.AccountKey, cfg.Blob.ImageContainer, logger)
		if err != nil {
			return fmt.Errorf("failed to create blob store: %w", err)
		}
		blobStore = store
		hoster = store
	} else {
		logger.Warn("blob storage not configured, uploads and image re-hosting disabled")
	}

	extractor := extraction.NewClient(extraction.Config{
		Endpoint:     cfg.Extraction.Endpoint,
		APIKey:       cfg.Extraction.APIKey,
		APIVersion:   cfg.Extraction.APIVersion,
		PollInterval: cfg.Extraction.PollInterval,
		PollTimeout:  cfg.Extraction.PollTimeout,
	}, logger)

	var (
		locations services.LocationAgent
		venuePage services.VenuePageAgent
	)
	if cfg.AI.APIKey != "" {
		chat := llm.NewClient(cfg.AI.Endpoint, cfg.AI.APIKey, cfg.AI.Model, logger)
		locations = llm.NewLocationAgent(chat, logger)
		venuePage = llm.NewVenuePageAgent(chat, logger)
	} else {
		logger.Warn("AI client not configured, homepage location extraction disabled")
	}

	upserts := services.NewUpsertEngine(db, establishments, venues, content, geocoder, logger)
	discovery := services.NewDiscoveryService(db, venues, establishments, geocoder, upserts,
		cfg.Discovery.RadiusMiles, cfg.Discovery.MaxResults, logger)
	stagingSvc := services.NewStagingService(db, staging, logger)
	commit := services.NewCommitService(db, facts, logger)
	ingest := services.NewIngestService(extractor, discovery, stagingSvc, upserts, hoster, logger)
	fetcher := scrape.NewFetcher(cfg.Geo.UserAgent, logger)
	homepages := services.NewHomepageService(db, homepageQueue, upserts, extractor, locations,
		venuePage, fetcher, blobStore, cfg.Blob.PageContainer, logger)

	mux := http.NewServeMux()
	handlers.NewHealthHandler(db).RegisterRoutes(mux)
	handlers.NewImagesHandler(ingest, commit, logger).RegisterRoutes(mux)
	handlers.NewBusinessHandler(discovery, upserts, homepages, logger).RegisterRoutes(mux)
	if blobStore != nil {
		handlers.NewBlobHandler(blobStore, logger).RegisterRoutes(mux)
	}
	mcp.NewServer(ingest, commit, discovery, upserts, blobStore, logger).RegisterRoutes(mux)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown failed: %w", err)
		}
	}
	return nil
}
