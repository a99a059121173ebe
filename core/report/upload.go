package report

import (
	"bytes"
	"context"

	"sheet-reconciler/core/storage"

	"github.com/minio/minio-go/v7"
	"github.com/rotisserie/eris"
)

// Upload stores a rendered report at location ("s3://bucket/key", or "s3:///key" for
// the default bucket). The bucket is created when missing.
func Upload(ctx context.Context, client storage.Client, location, defaultBucket string, data []byte, format Format) (storage.Object, error) {
	obj, err := storage.ParseLocation(location, defaultBucket)
	if err != nil {
		return storage.Object{}, eris.Wrap(err, "report: upload")
	}
	if obj.IsPrefix() {
		return storage.Object{}, eris.Errorf("report: upload location %s is not an object key", location)
	}
	if err := storage.EnsureBucket(ctx, client, obj.Bucket); err != nil {
		return storage.Object{}, eris.Wrap(err, "report: upload")
	}

	_, err = client.PutObject(ctx, obj.Bucket, obj.Key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: format.ContentType(),
	})
	if err != nil {
		return storage.Object{}, eris.Wrapf(err, "report: put %s", obj)
	}
	return obj, nil
}
