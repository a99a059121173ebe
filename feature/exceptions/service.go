package exceptions

import (
	"context"

	"sheet-reconciler/core/exception"
	"sheet-reconciler/core/reconcile"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ErrNoEntries is returned when a write request carries no usable entry.
var ErrNoEntries = eris.New("no exception entries with a key")

// Service wraps the exception store.
type Service struct {
	store  *exception.Store
	logger *zap.Logger
}

// NewService creates a new exceptions service over db.
func NewService(db *gorm.DB, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: exception.NewStore(db), logger: logger}
}

// Migrate creates the exceptions table.
func (s *Service) Migrate(ctx context.Context) error {
	return s.store.Migrate(ctx)
}

// List returns every stored entry.
func (s *Service) List(ctx context.Context) ([]reconcile.ExceptionEntry, error) {
	return s.store.All(ctx)
}

// Save upserts entries and returns how many were written.
func (s *Service) Save(ctx context.Context, entries []reconcile.ExceptionEntry) (int, error) {
	n, err := s.store.Upsert(ctx, entries)
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, ErrNoEntries
	}
	return n, nil
}

// Remove deletes entries by key.
func (s *Service) Remove(ctx context.Context, keys []string) (int64, error) {
	return s.store.Delete(ctx, keys...)
}
