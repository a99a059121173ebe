package storage_test

import (
	"context"
	"errors"
	"testing"

	"sheet-reconciler/core/storage"
	"sheet-reconciler/core/storage/mocks"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestParseLocation(t *testing.T) {
	tests := []struct {
		name     string
		location string
		want     storage.Object
		prefix   bool
		wantErr  bool
	}{
		{name: "object", location: "s3://exports/2024/ref.xlsx", want: storage.Object{Bucket: "exports", Key: "2024/ref.xlsx"}},
		{name: "prefix", location: "s3://exports/extracts/", want: storage.Object{Bucket: "exports", Key: "extracts/"}, prefix: true},
		{name: "default bucket", location: "s3:///ref.xlsx", want: storage.Object{Bucket: "reconcile", Key: "ref.xlsx"}},
		{name: "local path", location: "/tmp/ref.xlsx", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := storage.ParseLocation(tt.location, "reconcile")
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.prefix, got.IsPrefix())
		})
	}

	_, err := storage.ParseLocation("s3:///x", "")
	assert.Error(t, err)
}

func TestEnsureBucket(t *testing.T) {
	ctx := context.Background()

	t.Run("Exists", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("BucketExists", ctx, "reports").Return(true, nil)
		assert.NoError(t, storage.EnsureBucket(ctx, client, "reports"))
		client.AssertNotCalled(t, "MakeBucket", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Created", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("BucketExists", ctx, "reports").Return(false, nil)
		client.On("MakeBucket", ctx, "reports", minio.MakeBucketOptions{}).Return(nil)
		assert.NoError(t, storage.EnsureBucket(ctx, client, "reports"))
		client.AssertExpectations(t)
	})

	t.Run("Check Fails", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("BucketExists", ctx, "reports").Return(false, errors.New("denied"))
		assert.ErrorContains(t, storage.EnsureBucket(ctx, client, "reports"), "denied")
	})
}

func TestListKeys(t *testing.T) {
	ctx := context.Background()
	ch := make(chan minio.ObjectInfo, 3)
	ch <- minio.ObjectInfo{Key: "extracts/"}
	ch <- minio.ObjectInfo{Key: "extracts/a.csv"}
	ch <- minio.ObjectInfo{Key: "extracts/b.csv"}
	close(ch)

	client := new(mocks.Client)
	client.On("ListObjects", ctx, "exports", minio.ListObjectsOptions{Prefix: "extracts/", Recursive: true}).
		Return((<-chan minio.ObjectInfo)(ch))

	keys, err := storage.ListKeys(ctx, client, "exports", "extracts/")
	require.NoError(t, err)
	assert.Equal(t, []string{"extracts/a.csv", "extracts/b.csv"}, keys)
}
