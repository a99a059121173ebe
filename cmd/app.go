package cmd

import (
	"fmt"

	"sheet-reconciler/core/config"
	"sheet-reconciler/core/database"
	"sheet-reconciler/core/job"
	"sheet-reconciler/core/logger"
	"sheet-reconciler/core/source"
	"sheet-reconciler/core/storage"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// app is what every command is built on.
type app struct {
	cfg    *config.Config
	log    *zap.Logger
	client storage.Client
	db     *gorm.DB
}

// bootstrap loads the configuration and creates the logger and storage client.
// The database is connected separately since most jobs do not need it.
func bootstrap() (*app, error) {
	cfg, err := config.LoadConfig(configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	l, err := logger.New(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	client, err := storage.NewClient(cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to storage: %w", err)
	}

	return &app{cfg: cfg, log: l, client: client}, nil
}

// connect opens the database connection once.
func (a *app) connect() (*gorm.DB, error) {
	if a.db != nil {
		return a.db, nil
	}
	db, err := database.Connect(a.cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	a.db = db
	return db, nil
}

// env returns the job environment. db may be nil.
func (a *app) env() job.Env {
	return job.Env{
		Fetcher: source.NewFetcher(a.client, a.cfg.Storage.Bucket),
		DB:      a.db,
		Config:  a.cfg.Reconcile,
	}
}

// loadJob resolves a job given as a file path or as a name in the jobs directory.
func (a *app) loadJob(ref string) (*job.Definition, error) {
	return job.Resolve(ref, a.cfg.Reconcile.JobsDir)
}
