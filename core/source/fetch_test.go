package source

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"sheet-reconciler/core/storage/mocks"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func writeFile(path string, data []byte) error {
	return os.WriteFile(path, data, 0o600)
}

func TestFetcher_Local(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, writeFile(filepath.Join(dir, "b.csv"), []byte("Name\nx\n")))
	require.NoError(t, writeFile(filepath.Join(dir, "a.csv"), []byte("Name\ny\n")))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested"), 0o700))

	f := NewFetcher(nil, "")
	data, err := f.Fetch(context.Background(), filepath.Join(dir, "b.csv"))
	require.NoError(t, err)
	assert.Equal(t, "Name\nx\n", string(data))

	assert.True(t, f.IsCollection(dir))
	assert.False(t, f.IsCollection(filepath.Join(dir, "a.csv")))

	list, err := f.List(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "a.csv"), filepath.Join(dir, "b.csv")}, list)

	_, err = f.Fetch(context.Background(), filepath.Join(dir, "missing.csv"))
	assert.Error(t, err)
}

func TestFetcher_Object(t *testing.T) {
	ctx := context.Background()
	client := new(mocks.Client)
	client.On("GetObject", ctx, "exports", "ref.csv", minio.GetObjectOptions{}).
		Return(objectBody([]byte("Name\nx\n")), nil)
	client.On("GetObject", ctx, "reconcile", "gone.csv", minio.GetObjectOptions{}).
		Return(nil, errors.New("no such key"))

	f := NewFetcher(client, "reconcile")
	data, err := f.Fetch(ctx, "s3://exports/ref.csv")
	require.NoError(t, err)
	assert.Equal(t, "Name\nx\n", string(data))

	_, err = f.Fetch(ctx, "s3:///gone.csv")
	assert.ErrorContains(t, err, "no such key")
	client.AssertExpectations(t)
}

func TestFetcher_ObjectPrefix(t *testing.T) {
	ctx := context.Background()
	ch := make(chan minio.ObjectInfo, 3)
	ch <- minio.ObjectInfo{Key: "extracts/b.csv"}
	ch <- minio.ObjectInfo{Key: "extracts/a.csv"}
	ch <- minio.ObjectInfo{Key: "extracts/sub/"}
	close(ch)

	client := new(mocks.Client)
	client.On("ListObjects", ctx, "exports", mock.Anything).Return((<-chan minio.ObjectInfo)(ch))

	f := NewFetcher(client, "reconcile")
	assert.True(t, f.IsCollection("s3://exports/extracts/"))

	list, err := f.List(ctx, "s3://exports/extracts/")
	require.NoError(t, err)
	assert.Equal(t, []string{"s3://exports/extracts/a.csv", "s3://exports/extracts/b.csv"}, list)
}

func TestFetcher_ObjectWithoutClient(t *testing.T) {
	_, err := NewFetcher(nil, "reconcile").Fetch(context.Background(), "s3://exports/ref.csv")
	assert.ErrorContains(t, err, "object storage is not configured")
}

func TestFetcher_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewFetcher(nil, "").Fetch(ctx, "whatever.csv")
	assert.ErrorIs(t, err, context.Canceled)
}
