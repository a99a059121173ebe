package integrity

import (
	"context"

	"sheet-reconciler/core/job"
	"sheet-reconciler/core/storage"
	"sheet-reconciler/feature/integrity/checks"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Service handles integrity checks.
type Service struct {
	client  storage.Client
	bucket  string
	logger  *zap.Logger
	db      *gorm.DB
	catalog *job.Catalog
}

// NewService creates a new integrity service. client and db may be nil.
func NewService(client storage.Client, bucket string, logger *zap.Logger, db *gorm.DB, catalog *job.Catalog) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		client:  client,
		bucket:  bucket,
		logger:  logger,
		db:      db,
		catalog: catalog,
	}
}

// CheckStorage returns the missing buckets among the report bucket and the
// buckets the jobs use.
func (s *Service) CheckStorage(ctx context.Context) ([]string, error) {
	return checks.CheckStorage(ctx, s.client, checks.Buckets(s.catalog, s.bucket))
}

// FixStorage creates the missing buckets.
func (s *Service) FixStorage(ctx context.Context, missing []string) error {
	return checks.FixStorage(ctx, s.client, s.logger, missing)
}

// CheckJobs checks every job file and the locations it reads.
func (s *Service) CheckJobs(ctx context.Context) ([]checks.JobReport, error) {
	return checks.CheckJobs(ctx, s.catalog, checks.Deps{Client: s.client, Bucket: s.bucket, DB: s.db})
}

// CheckSchema checks the tables the service owns.
func (s *Service) CheckSchema() (*checks.SchemaReport, error) {
	return checks.CheckSchema(s.db)
}
