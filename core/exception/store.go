package exception

import (
	"context"
	"strings"
	"time"

	"sheet-reconciler/core/reconcile"

	"github.com/rotisserie/eris"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Record is one stored exception entry.
type Record struct {
	Key       string    `gorm:"primaryKey;column:exception_key;type:varchar(512)"`
	Comments  string    `gorm:"column:comments;type:varchar(1024)"`
	Comments2 string    `gorm:"column:comments2;type:varchar(1024)"`
	Hide      bool      `gorm:"column:hide"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (Record) TableName() string {
	return "reconcile_exceptions"
}

// RecordFromEntry maps an entry onto the two comment columns. Comments beyond the
// second are folded into Comments2.
func RecordFromEntry(e reconcile.ExceptionEntry) Record {
	r := Record{Key: strings.TrimSpace(e.Key), Hide: e.Hide}
	if len(e.Comments) > 0 {
		r.Comments = e.Comments[0]
	}
	if len(e.Comments) > 1 {
		r.Comments2 = strings.Join(e.Comments[1:], "; ")
	}
	return r
}

// Entry converts the record back; trailing empty comments are dropped.
func (r Record) Entry() reconcile.ExceptionEntry {
	comments := []string{r.Comments, r.Comments2}
	for len(comments) > 0 && comments[len(comments)-1] == "" {
		comments = comments[:len(comments)-1]
	}
	if len(comments) == 0 {
		comments = nil
	}
	return reconcile.ExceptionEntry{Key: r.Key, Comments: comments, Hide: r.Hide}
}

const upsertBatchSize = 200

// Store persists exception entries with gorm.
type Store struct {
	db *gorm.DB
}

// NewStore creates a Store.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Migrate creates or updates the exceptions table.
func (s *Store) Migrate(ctx context.Context) error {
	if err := s.db.WithContext(ctx).AutoMigrate(&Record{}); err != nil {
		return eris.Wrap(err, "exceptions: migrate")
	}
	return nil
}

// Upsert inserts entries or updates the existing ones by Key. Entries without a Key
// are skipped and the first of a duplicated Key wins, as in the in-memory table.
// It returns the number of entries written.
func (s *Store) Upsert(ctx context.Context, entries []reconcile.ExceptionEntry) (int, error) {
	seen := make(map[string]struct{}, len(entries))
	records := make([]Record, 0, len(entries))
	for _, e := range entries {
		r := RecordFromEntry(e)
		if r.Key == "" {
			continue
		}
		if _, ok := seen[r.Key]; ok {
			continue
		}
		seen[r.Key] = struct{}{}
		records = append(records, r)
	}
	if len(records) == 0 {
		return 0, nil
	}

	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "exception_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"comments", "comments2", "hide", "updated_at"}),
	}).CreateInBatches(&records, upsertBatchSize).Error
	if err != nil {
		return 0, eris.Wrap(err, "exceptions: upsert")
	}
	return len(records), nil
}

// All returns every stored entry ordered by Key.
func (s *Store) All(ctx context.Context) ([]reconcile.ExceptionEntry, error) {
	var records []Record
	if err := s.db.WithContext(ctx).Order("exception_key").Find(&records).Error; err != nil {
		return nil, eris.Wrap(err, "exceptions: list")
	}
	entries := make([]reconcile.ExceptionEntry, 0, len(records))
	for _, r := range records {
		entries = append(entries, r.Entry())
	}
	return entries, nil
}

// Table loads the stored entries as an exception table.
func (s *Store) Table(ctx context.Context) (*reconcile.ExceptionTable, error) {
	entries, err := s.All(ctx)
	if err != nil {
		return nil, eris.Wrap(reconcile.ErrExceptionTable, err.Error())
	}
	return reconcile.NewExceptionTable(entries), nil
}

// Delete removes the entries with the given keys and returns how many were removed.
func (s *Store) Delete(ctx context.Context, keys ...string) (int64, error) {
	trimmed := make([]string, 0, len(keys))
	for _, k := range keys {
		if k = strings.TrimSpace(k); k != "" {
			trimmed = append(trimmed, k)
		}
	}
	if len(trimmed) == 0 {
		return 0, nil
	}
	res := s.db.WithContext(ctx).Where("exception_key IN ?", trimmed).Delete(&Record{})
	if res.Error != nil {
		return 0, eris.Wrap(res.Error, "exceptions: delete")
	}
	return res.RowsAffected, nil
}
