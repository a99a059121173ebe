// Package storage provides an abstraction layer for object storage services.
//
// It wraps the MinIO Go client behind the Client interface so sources and report
// uploads can be tested with the testify mock in core/storage/mocks. Both AWS S3
// and self-hosted MinIO are supported.
//
// # Locations
//
// Sources and reports address objects as "s3://bucket/key". A key ending in "/"
// is a prefix: archive sources list it and read every object below it.
//
// # Usage
//
//	client, err := storage.NewClient(cfg.Storage)
//	obj, err := storage.ParseLocation("s3://exports/ref.xlsx", cfg.Storage.Bucket)
//	err = storage.EnsureBucket(ctx, client, obj.Bucket)
package storage
