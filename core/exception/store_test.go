package exception

import (
	"context"
	"testing"

	"sheet-reconciler/core/database"
	"sheet-reconciler/core/reconcile"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

// setupMockDB creates a mock GORM DB for testing.
func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Failed to open mock sql db: %v", err)
	}

	dialector := mysql.New(mysql.Config{
		Conn:                      db,
		SkipInitializeWithVersion: true,
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to open gorm db: %v", err)
	}

	return gormDB, mock
}

func setupSQLiteStore(t *testing.T) *Store {
	t.Helper()
	db, err := database.Connect(database.Config{Driver: database.DriverSQLite, Name: ":memory:"})
	require.NoError(t, err)
	store := NewStore(db)
	require.NoError(t, store.Migrate(context.Background()))
	return store
}

func TestRecord_Entry(t *testing.T) {
	r := RecordFromEntry(reconcile.ExceptionEntry{Key: " k ", Comments: []string{"a", "b", "c"}, Hide: true})
	assert.Equal(t, Record{Key: "k", Comments: "a", Comments2: "b; c", Hide: true}, r)

	assert.Equal(t, reconcile.ExceptionEntry{Key: "k", Comments: []string{"a"}}, Record{Key: "k", Comments: "a"}.Entry())
	assert.Equal(t, reconcile.ExceptionEntry{Key: "k", Comments: []string{"", "b"}}, Record{Key: "k", Comments2: "b"}.Entry())
	assert.Nil(t, Record{Key: "k"}.Entry().Comments)
}

func TestStore_SQLite(t *testing.T) {
	ctx := context.Background()
	store := setupSQLiteStore(t)

	n, err := store.Upsert(ctx, []reconcile.ExceptionEntry{
		{Key: "Region | West | Status | Active", Hide: true},
		{Key: "Region | North | Owner | Alice", Comments: []string{"owner moved"}},
		{Key: "Region | North | Owner | Alice", Comments: []string{"duplicate"}},
		{Key: "  "},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = store.Upsert(ctx, []reconcile.ExceptionEntry{
		{Key: "Region | West | Status | Active", Comments: []string{"reopened", "kim"}},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	all, err := store.All(ctx)
	require.NoError(t, err)
	assert.Equal(t, []reconcile.ExceptionEntry{
		{Key: "Region | North | Owner | Alice", Comments: []string{"owner moved"}},
		{Key: "Region | West | Status | Active", Comments: []string{"reopened", "kim"}},
	}, all)

	table, err := store.Table(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, table.Len())

	n, err = store.Upsert(ctx, nil)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestStore_MySQLUpsert(t *testing.T) {
	db, mock := setupMockDB(t)
	store := NewStore(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `reconcile_exceptions` .* ON DUPLICATE KEY UPDATE").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	n, err := store.Upsert(context.Background(), []reconcile.ExceptionEntry{{Key: "D | x | Code | 1", Hide: true}})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_TableError(t *testing.T) {
	db, mock := setupMockDB(t)
	mock.ExpectQuery("SELECT \\* FROM `reconcile_exceptions`").WillReturnError(assert.AnError)

	_, err := NewStore(db).Table(context.Background())
	assert.True(t, eris.Is(err, reconcile.ErrExceptionTable), err)
	assert.ErrorContains(t, err, assert.AnError.Error())
}

func TestStore_Delete(t *testing.T) {
	ctx := context.Background()
	store := setupSQLiteStore(t)

	_, err := store.Upsert(ctx, []reconcile.ExceptionEntry{
		{Key: "D | a | Code | 1", Hide: true},
		{Key: "D | b | Code | 2", Hide: true},
	})
	require.NoError(t, err)

	n, err := store.Delete(ctx, " D | a | Code | 1 ", "D | missing | Code | 3", "")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = store.Delete(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	all, err := store.All(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "D | b | Code | 2", all[0].Key)
}
