package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"p9e.in/gemstock/config"
	"p9e.in/gemstock/handlers"
	"p9e.in/gemstock/middleware"
	"p9e.in/gemstock/pkg/archive"
	"p9e.in/gemstock/pkg/legacy"
	"p9e.in/gemstock/pkg/logger"
	"p9e.in/gemstock/pkg/scheduler"
	"p9e.in/gemstock/pkg/storage"
	"p9e.in/gemstock/routes"
)

var (
	Version   = "dev"
	BuildTime = ""
)

const shutdownTimeout = 10 * time.Second

func main() {
	versionFlag := flag.Bool("version", false, "Print version info and exit")
	envFile := flag.String("env", "", "Path to an env file (default ./.env)")
	debug := flag.Bool("debug", false, "Human readable development logging")
	flag.Parse()

	if *versionFlag {
		fmt.Printf("Version:   %s\n", Version)
		fmt.Printf("BuildTime: %s\n", BuildTime)
		os.Exit(0)
	}

	log := logger.Must(logger.New(*debug))
	defer log.Sync()

	if err := run(*envFile, log); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}

func run(envFile string, log *zap.Logger) error {
	cfg, err := config.Load(envFile)
	if err != nil {
		return err
	}
	decimal.MarshalJSONWithoutQuotes = true

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var stores *config.Stores
	if cfg.Storage == config.StorageMemory {
		stores = config.NewMemoryStores()
		log.Info("using in-memory storage with sample data")
	} else {
		db, err := config.Connect(cfg, log)
		if err != nil {
			return err
		}
		stores = config.NewGormStores(db)
	}
	if err := config.SeedAdmin(ctx, stores.Roles, stores.Users, cfg.AdminEmail, cfg.AdminPassword, log); err != nil {
		return err
	}

	var files storage.Store
	uploadDir := ""
	if cfg.GCSBucket != "" {
		gcs, err := storage.NewGCS(ctx, cfg.GCSBucket, cfg.GCSCredentials)
		if err != nil {
			return err
		}
		defer gcs.Close()
		files = gcs
		log.Info("attachments stored in cloud storage", zap.String("bucket", cfg.GCSBucket))
	} else {
		files = storage.NewLocal(cfg.UploadDir)
		uploadDir = cfg.UploadDir
	}

	var legacyClient *legacy.Client
	if cfg.LegacyAPIURL != "" {
		legacyClient = legacy.NewClient(cfg.LegacyAPIURL, cfg.LegacyAPIToken, log)
	}

	var repo archive.Repository
	var mongoRepo *archive.MongoRepository
	if cfg.MongoURI != "" {
		mongoRepo, err = archive.NewMongoRepository(ctx, cfg.MongoURI, cfg.MongoDBName)
		if err != nil {
			return err
		}
		repo = mongoRepo
	}

	reports := handlers.NewReportHandler(stores, repo, log)

	var sched *scheduler.Scheduler
	if repo != nil {
		loc, err := time.LoadLocation(cfg.Timezone)
		if err != nil {
			return fmt.Errorf("invalid TIMEZONE %q: %w", cfg.Timezone, err)
		}
		sched = scheduler.New(cfg.ReportCron, loc, reports.Build, repo, log)
		if err := sched.Start(); err != nil {
			return err
		}
	}

	auth := middleware.NewAuthService(cfg.JWTSecret, stores.Users, stores.Roles, log.Named("auth"))
	handler := routes.RegisterRoutes(routes.Deps{
		Stores:    stores,
		Auth:      auth,
		Files:     files,
		UploadDir: uploadDir,
		Legacy:    legacyClient,
		Reports:   reports,
		Log:       log,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server starting", zap.String("port", cfg.Port), zap.String("version", Version))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if sched != nil {
		sched.Stop()
	}
	if mongoRepo != nil {
		if err := mongoRepo.Close(shutdownCtx); err != nil {
			log.Warn("closing archive", zap.Error(err))
		}
	}
	return nil
}
