package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/periodiq/periodiq/internal/api"
	"github.com/periodiq/periodiq/internal/auth"
	"github.com/periodiq/periodiq/internal/client"
	"github.com/periodiq/periodiq/internal/config"
	"github.com/periodiq/periodiq/internal/covercleanup"
	"github.com/periodiq/periodiq/internal/db"
	"github.com/periodiq/periodiq/internal/dedup"
	"github.com/periodiq/periodiq/internal/importpipeline"
	"github.com/periodiq/periodiq/internal/jobs"
	"github.com/periodiq/periodiq/internal/locator"
	"github.com/periodiq/periodiq/internal/models"
	"github.com/periodiq/periodiq/internal/monitor"
	"github.com/periodiq/periodiq/internal/orchestrator"
	"github.com/periodiq/periodiq/internal/providers"
	"github.com/periodiq/periodiq/internal/repository"
	"github.com/periodiq/periodiq/internal/scheduler"
	"github.com/periodiq/periodiq/internal/version"
)

const bannerArt = `
   ___          _           _ _
  / _ \___ _ __(_) ___   __| (_) __ _
 / /_)/ _ \ '__| |/ _ \ / _' | |/ _' |
/ ___/  __/ |  | | (_) | (_| | | (_| |
\/    \___|_|  |_|\___/ \__,_|_|\__, |
                                 |___/
`

func main() {
	fmt.Println(bannerArt)
	fmt.Printf("  Periodical tracking and download orchestrator — v%s\n\n", version.Load().Version)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	conn, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer conn.Close()

	if err := db.EnsureSchema(conn); err != nil {
		log.Fatalf("failed to evolve schema: %v", err)
	}
	log.Println("database connected and schema verified")

	tracking := repository.NewTrackingRepository(conn)
	searchResults := repository.NewSearchResultRepository(conn)
	submissions := repository.NewSubmissionRepository(conn)
	libraryEntries := repository.NewLibraryEntryRepository(conn)
	credentials := repository.NewCredentialRepository(conn)
	if _, err := credentials.Get(); err != nil {
		hash, herr := auth.HashPassword(cfg.AdminPassword)
		if herr != nil {
			log.Fatalf("failed to hash bootstrap password: %v", herr)
		}
		if err := credentials.Upsert(&models.Credential{Username: cfg.AdminUsername, PasswordHash: hash}); err != nil {
			log.Fatalf("failed to bootstrap credential: %v", err)
		}
		log.Printf("bootstrapped initial credential for user %q", cfg.AdminUsername)
	}

	checker := dedup.NewChecker(submissions, libraryEntries)

	searchProvider := providers.New(cfg.Provider.Type, cfg.Provider.BaseURL, cfg.Provider.APIKey)
	downloadClient := client.New(cfg.Client.Type, cfg.Client.BaseURL, cfg.Client.APIKey)

	orch := orchestrator.New(tracking, searchResults, submissions, checker,
		[]providers.SearchProvider{searchProvider}, downloadClient, cfg.Downloads.MaxPerBatch).
		WithFuzzyThreshold(cfg.Matching.FuzzyThreshold)

	jobQueue := jobs.NewQueue(cfg.RedisAddr)
	jobs.RegisterHandlers(jobQueue, libraryEntries)
	go func() {
		if err := jobQueue.Start(context.Background()); err != nil {
			log.Printf("job queue worker stopped: %v", err)
		}
	}()
	defer jobQueue.Stop()

	pipeline := importpipeline.New(conn, libraryEntries, submissions, tracking, checker, nil, importpipeline.Config{
		OrganizeBaseDir:            cfg.Storage.OrganizeDir,
		CacheDir:                   cfg.Storage.CacheDir,
		CategoryPrefix:             cfg.Import.CategoryPrefix,
		OrganizationPattern:        cfg.Import.OrganizationPattern,
		FuzzyThreshold:             cfg.Matching.FuzzyThreshold,
		DuplicateDateThresholdDays: cfg.Matching.DuplicateDateThresholdDays,
	}).WithCoverQueue(jobQueue)

	fileLocator := locator.New(cfg.Storage.DownloadDir, 4)
	mon := monitor.New(submissions, tracking, pipeline, downloadClient, fileLocator).
		WithFolderScan(cfg.Storage.DownloadDir, cfg.Storage.OrganizeDir)
	cleaner := covercleanup.New(libraryEntries, cfg.Storage.CacheDir+"/.covers").
		WithCoverQueue(jobQueue)

	sched := scheduler.New()
	sched.Register("download_monitor", func(ctx context.Context) error {
		return mon.Run(ctx)
	}, cfg.Tasks.DownloadMonitorInterval)
	sched.Register("auto_download", func(ctx context.Context) error {
		due, err := tracking.DueForAutoDownload()
		if err != nil {
			return err
		}
		for _, t := range due {
			if _, err := orch.Run(ctx, t.ID); err != nil {
				log.Printf("auto_download: tracking %s failed: %v", t.ID, err)
			}
		}
		return nil
	}, cfg.Tasks.AutoDownloadInterval)
	sched.Register("cleanup_orphaned_covers", func(ctx context.Context) error {
		result, err := cleaner.Run(ctx)
		if err != nil {
			return err
		}
		log.Printf("cleanup_orphaned_covers: %d orphans deleted, %d missing requeued", result.OrphansDeleted, result.MissingRequeued)
		return nil
	}, cfg.Tasks.CleanupCoversInterval)

	go sched.Run()
	defer sched.Stop()

	authMiddleware := auth.NewMiddleware(cfg.JWTSecret)
	authHandler := auth.NewHandler(credentials, cfg.JWTSecret)

	server := api.New(cfg, tracking, submissions, libraryEntries, orch, pipeline, mon, cleaner, sched, authMiddleware, authHandler)

	addr := fmt.Sprintf(":%d", cfg.Port)
	log.Printf("periodiqd listening on %s", addr)
	if err := http.ListenAndServe(addr, server.Router()); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}
