package app

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/templui/filenest/internal/config"
	"github.com/templui/filenest/internal/convert"
	"github.com/templui/filenest/internal/db"
	"github.com/templui/filenest/internal/middleware"
	"github.com/templui/filenest/internal/repository"
	"github.com/templui/filenest/internal/service"
	"github.com/templui/filenest/internal/storage"
)

type App struct {
	Cfg            *config.Config
	DB             *sqlx.DB
	Storage        storage.Storage
	Store          *repository.Store
	TokenService   *service.TokenService
	TreeService    *service.TreeService
	ArchiveService *service.ArchiveService
	PreviewService *service.PreviewService
	UploadLimiter  *middleware.RateLimiter
}

func New(cfg *config.Config) (*App, error) {
	// Initialize database
	database, err := db.Init(cfg.DBDriver, cfg.DBConnection)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	// Run database migrations
	err = db.RunMigrations(context.Background(), database.DB, cfg.DBDriver)
	if err != nil {
		_ = database.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	// Storage
	blobStorage, err := storage.New(cfg)
	if err != nil {
		_ = database.Close()
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	converter := convert.NewLibreOffice(cfg.ConverterPath, cfg.ConverterTimeout)

	return Build(cfg, database, blobStorage, converter), nil
}

// Build wires the services around already opened infrastructure.
func Build(cfg *config.Config, database *sqlx.DB, blobStorage storage.Storage, converter convert.Converter) *App {
	store := repository.NewStore(database)

	treeService := service.NewTreeService(store, blobStorage, cfg.MaxTreeDepth, cfg.DefaultFavoritesName)
	archiveService := service.NewArchiveService(store, blobStorage, cfg.MaxTreeDepth)
	previewService := service.NewPreviewService(store, blobStorage, archiveService, converter)
	tokenService := service.NewTokenService(cfg.JWTSecret, cfg.JWTExpiry, cfg.IsProduction())

	return &App{
		Cfg:            cfg,
		DB:             database,
		Storage:        blobStorage,
		Store:          store,
		TokenService:   tokenService,
		TreeService:    treeService,
		ArchiveService: archiveService,
		PreviewService: previewService,
		UploadLimiter:  middleware.NewRateLimiter(cfg.UploadRateLimit, cfg.UploadRateWindow),
	}
}

func (a *App) Close() error {
	if a.UploadLimiter != nil {
		a.UploadLimiter.Stop()
	}
	if a.DB != nil {
		return a.DB.Close()
	}
	return nil
}
