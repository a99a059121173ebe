package source

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"sort"

	"sheet-reconciler/core/storage"

	"github.com/minio/minio-go/v7"
	"github.com/rotisserie/eris"
)

// Fetcher loads source bytes from local paths or object storage.
type Fetcher struct {
	client storage.Client
	bucket string
}

// NewFetcher creates a Fetcher. client may be nil when only local paths are used;
// defaultBucket resolves "s3:///key" locations.
func NewFetcher(client storage.Client, defaultBucket string) *Fetcher {
	return &Fetcher{client: client, bucket: defaultBucket}
}

// Fetch reads a whole object or file.
func (f *Fetcher) Fetch(ctx context.Context, location string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !storage.IsObjectLocation(location) {
		data, err := os.ReadFile(location)
		if err != nil {
			return nil, eris.Wrapf(err, "fetch: read %s", location)
		}
		return data, nil
	}

	obj, err := f.object(location)
	if err != nil {
		return nil, err
	}
	rc, err := f.client.GetObject(ctx, obj.Bucket, obj.Key, minio.GetObjectOptions{})
	if err != nil {
		return nil, eris.Wrapf(err, "fetch: get %s", location)
	}
	defer rc.Close() //nolint:errcheck

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, eris.Wrapf(err, "fetch: read %s", location)
	}
	return data, nil
}

// IsCollection reports whether location addresses several files: an object
// prefix or a local directory.
func (f *Fetcher) IsCollection(location string) bool {
	if storage.IsObjectLocation(location) {
		obj, err := storage.ParseLocation(location, f.bucket)
		return err == nil && obj.IsPrefix()
	}
	info, err := os.Stat(location)
	return err == nil && info.IsDir()
}

// List returns the locations of the files in a collection, sorted.
func (f *Fetcher) List(ctx context.Context, location string) ([]string, error) {
	if !storage.IsObjectLocation(location) {
		entries, err := os.ReadDir(location)
		if err != nil {
			return nil, eris.Wrapf(err, "fetch: list %s", location)
		}
		var out []string
		for _, e := range entries {
			if e.IsDir() {
				continue
			}
			out = append(out, filepath.Join(location, e.Name()))
		}
		sort.Strings(out)
		return out, nil
	}

	obj, err := f.object(location)
	if err != nil {
		return nil, err
	}
	keys, err := storage.ListKeys(ctx, f.client, obj.Bucket, obj.Key)
	if err != nil {
		return nil, eris.Wrapf(err, "fetch: list %s", location)
	}
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, storage.Object{Bucket: obj.Bucket, Key: k}.String())
	}
	sort.Strings(out)
	return out, nil
}

func (f *Fetcher) object(location string) (storage.Object, error) {
	if f.client == nil {
		return storage.Object{}, eris.Errorf("fetch: object storage is not configured for %s", location)
	}
	obj, err := storage.ParseLocation(location, f.bucket)
	if err != nil {
		return storage.Object{}, eris.Wrap(err, "fetch")
	}
	return obj, nil
}
