package config

import (
	"path/filepath"
	"reflect"
	"strings"

	"sheet-reconciler/core/database"
	"sheet-reconciler/core/job"
	"sheet-reconciler/core/logger"
	"sheet-reconciler/core/server"
	"sheet-reconciler/core/storage"

	"github.com/joho/godotenv"
	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application, one section per package.
type Config struct {
	// Server holds configuration for the HTTP server.
	Server server.Config `mapstructure:"server"`
	// Storage holds configuration for the object storage holding sources and reports.
	Storage storage.Config `mapstructure:"storage"`
	// Log holds configuration for the logger.
	Log logger.Config `mapstructure:"log"`
	// Database holds configuration for the database connection (table sources, exception store).
	Database database.Config `mapstructure:"database"`
	// Reconcile holds job catalog and report defaults.
	Reconcile job.Config `mapstructure:"reconcile"`
}

// LoadConfig loads configuration from dir. Sources, in increasing precedence:
// the `default` struct tags, an optional config.yaml, the .env file and the
// process environment. A relative jobs directory is resolved against dir.
func LoadConfig(dir string) (*Config, error) {
	// A missing .env is normal in production.
	_ = godotenv.Overload(filepath.Join(dir, ".env"))

	v := viper.New()
	bindValues(v, Config{}, "")

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(dir)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	// SERVER_PORT -> server.port
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	if config.Reconcile.JobsDir != "" && !filepath.IsAbs(config.Reconcile.JobsDir) {
		config.Reconcile.JobsDir = filepath.Join(dir, config.Reconcile.JobsDir)
	}
	return &config, nil
}

// bindValues registers every `mapstructure` key of iface with its `default` tag,
// recursing into nested sections.
func bindValues(v *viper.Viper, iface any, prefix string) {
	t := reflect.TypeOf(iface)

	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag := field.Tag.Get("mapstructure")

		if tag == "" {
			continue
		}

		key := tag
		if prefix != "" {
			key = prefix + "." + tag
		}

		if field.Type.Kind() == reflect.Struct {
			bindValues(v, reflect.New(field.Type).Elem().Interface(), key)
			continue
		}

		// Empty defaults are set too: AutomaticEnv only sees registered keys.
		v.SetDefault(key, field.Tag.Get("default"))
	}
}
