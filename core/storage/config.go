package storage

// Config holds the object storage connection. Sources and reports addressed as
// s3://bucket/key resolve against it; a location without a bucket uses Bucket.
type Config struct {
	Endpoint  string `mapstructure:"endpoint" default:"localhost:9000"`
	AccessKey string `mapstructure:"access_key" default:"minioadmin"`
	SecretKey string `mapstructure:"secret_key" default:"minioadmin"`
	UseSSL    bool   `mapstructure:"use_ssl" default:"false"`
	// Bucket is the default bucket for reports and relative object locations.
	Bucket string `mapstructure:"bucket" default:"reconcile"`
	Region string `mapstructure:"region" default:""`
	// TimeoutSeconds bounds connection setup and the wait for the first response byte.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"30"`
}
