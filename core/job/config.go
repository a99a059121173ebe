package job

// Config holds the application-level reconcile settings.
type Config struct {
	// JobsDir is the directory holding job definition files.
	JobsDir string `mapstructure:"jobs_dir" default:"jobs"`
	// DefaultFormat is used when neither the job nor the command selects a format.
	DefaultFormat string `mapstructure:"default_format" default:"table"`
	// PageSize splits large reports; 0 disables paging.
	PageSize int `mapstructure:"page_size" default:"0"`
	// ExceptionsFromDatabase makes jobs without an exceptions section use the database table.
	ExceptionsFromDatabase bool `mapstructure:"exceptions_from_database" default:"false"`
	// Concurrency bounds per-unit normalization per side.
	Concurrency int `mapstructure:"concurrency" default:"4"`
}
