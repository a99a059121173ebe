package job

import (
	"os"
	"path/filepath"
	"strings"

	"sheet-reconciler/core/exception"
	"sheet-reconciler/core/reconcile"
	"sheet-reconciler/core/report"
	"sheet-reconciler/core/source"

	"github.com/goccy/go-yaml"
	"github.com/rotisserie/eris"
)

// Kind selects the source adapter.
type Kind string

const (
	KindXLSX  Kind = "xlsx"
	KindZip   Kind = "zip"
	KindCSV   Kind = "csv"
	KindTable Kind = "table"
)

// Definition is a job file.
type Definition struct {
	Name                  string                  `yaml:"name"`
	Description           string                  `yaml:"description"`
	Policy                string                  `yaml:"policy"`
	Cardinality           string                  `yaml:"cardinality"`
	ReportEqualAsMismatch bool                    `yaml:"report_equal_as_mismatch"`
	PageSize              int                     `yaml:"page_size"`
	Concurrency           int                     `yaml:"concurrency"`
	Rules                 reconcile.Rules         `yaml:"rules"`
	Sources               Sources                 `yaml:"sources"`
	Exceptions            *Exceptions             `yaml:"exceptions"`
	Activity              *reconcile.ActivitySpec `yaml:"activity"`
	Output                Output                  `yaml:"output"`

	// File is the path the definition was loaded from.
	File string `yaml:"-"`
}

// Sources holds both sides of a job.
type Sources struct {
	A SourceDef `yaml:"a"`
	B SourceDef `yaml:"b"`
}

// SourceDef describes one side: where to read it and how to melt it.
type SourceDef struct {
	Kind       Kind     `yaml:"kind"`
	Location   string   `yaml:"location"`
	Sheets     []string `yaml:"sheets"`
	SkipRows   int      `yaml:"skip_rows"`
	Delimiter  string   `yaml:"delimiter"`
	Charset    string   `yaml:"charset"`
	LazyQuotes bool     `yaml:"lazy_quotes"`
	Extensions []string `yaml:"extensions"`

	Dimension        reconcile.DimensionSpec `yaml:"dimension"`
	NameField        string                  `yaml:"name_field"`
	NamePosition     *int                    `yaml:"name_position"`
	NameKeySeparator string                  `yaml:"name_key_separator"`
	CanonicalNumbers bool                    `yaml:"canonical_numbers"`
	Rules            reconcile.Rules         `yaml:"rules"`
}

// Exceptions locates the exception table: a source or the database table.
type Exceptions struct {
	Kind      Kind              `yaml:"kind"`
	Location  string            `yaml:"location"`
	Sheets    []string          `yaml:"sheets"`
	SkipRows  int               `yaml:"skip_rows"`
	Delimiter string            `yaml:"delimiter"`
	Charset   string            `yaml:"charset"`
	Database  bool              `yaml:"database"`
	Columns   exception.Columns `yaml:"columns"`
}

// Output selects the report format and destinations.
type Output struct {
	Format string `yaml:"format"`
	// Path writes the report to a local file.
	Path string `yaml:"path"`
	// Upload stores the report in object storage ("s3://bucket/key").
	Upload string `yaml:"upload"`
}

// Load reads and validates a job file. The job name defaults to the file name.
func Load(path string) (*Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "job: read %s", path)
	}
	def, err := Parse(data)
	if err != nil {
		return nil, eris.Wrapf(err, "job %s", path)
	}
	def.File = path
	if def.Name == "" {
		def.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return def, nil
}

// Parse decodes a definition strictly and validates it. A nameless definition is
// accepted so Load can name it after its file.
func Parse(data []byte) (*Definition, error) {
	var def Definition
	if err := yaml.UnmarshalWithOptions(data, &def, yaml.DisallowUnknownField()); err != nil {
		return nil, eris.Wrap(reconcile.ErrInvalidConfig, yaml.FormatError(err, false, true))
	}
	if err := def.Validate(); err != nil {
		return nil, err
	}
	return &def, nil
}

// Validate checks the definition without opening any source. Side specs are
// checked again by the reconcile pipeline.
func (d *Definition) Validate() error {
	if _, err := reconcile.ParsePolicy(d.Policy); err != nil {
		return eris.Wrap(reconcile.ErrInvalidConfig, err.Error())
	}
	if _, err := reconcile.ParseCardinality(d.Cardinality); err != nil {
		return eris.Wrap(reconcile.ErrInvalidConfig, err.Error())
	}
	if d.PageSize < 0 {
		return invalid("page_size must not be negative")
	}
	if err := d.Sources.A.validate("a"); err != nil {
		return err
	}
	if err := d.Sources.B.validate("b"); err != nil {
		return err
	}
	if d.Exceptions != nil {
		if err := d.Exceptions.validate(); err != nil {
			return err
		}
	}
	if d.Output.Format != "" {
		if _, err := report.ParseFormat(d.Output.Format); err != nil {
			return eris.Wrap(reconcile.ErrInvalidConfig, err.Error())
		}
	}
	if d.Output.Upload != "" && !strings.HasPrefix(d.Output.Upload, "s3://") {
		return invalid("output.upload must be an s3:// location")
	}
	return nil
}

// NeedsDatabase reports whether executing the job requires a database connection.
func (d *Definition) NeedsDatabase(cfg Config) bool {
	if d.Sources.A.kind() == KindTable || d.Sources.B.kind() == KindTable {
		return true
	}
	if d.Exceptions == nil {
		return cfg.ExceptionsFromDatabase
	}
	return d.Exceptions.Database || d.Exceptions.kind() == KindTable
}

// ReportFormat resolves the output format: the job's, then the output path's
// extension, then fallback.
func (d *Definition) ReportFormat(fallback string) (report.Format, error) {
	if d.Output.Format != "" {
		return report.ParseFormat(d.Output.Format)
	}
	if f, ok := report.FormatFromPath(d.Output.Path); ok {
		return f, nil
	}
	return report.ParseFormat(fallback)
}

func (s SourceDef) validate(side string) error {
	if strings.TrimSpace(s.Location) == "" {
		return invalid("sources.%s: location is required", side)
	}
	if err := validateKind(s.kind()); err != nil {
		return eris.Wrapf(err, "sources.%s", side)
	}
	if s.SkipRows < 0 {
		return invalid("sources.%s: skip_rows must not be negative", side)
	}
	if _, err := source.ParseDelimiter(s.Delimiter); err != nil {
		return invalid("sources.%s: %s", side, err)
	}
	return nil
}

// kind returns the configured kind or infers it from the location.
func (s SourceDef) kind() Kind {
	return inferKind(s.Kind, s.Location)
}

func (e *Exceptions) validate() error {
	if e.Database && e.Location != "" {
		return invalid("exceptions: database and location are mutually exclusive")
	}
	if !e.Database && strings.TrimSpace(e.Location) == "" {
		return invalid("exceptions: location or database is required")
	}
	if e.Database {
		return nil
	}
	if err := validateKind(e.kind()); err != nil {
		return eris.Wrap(err, "exceptions")
	}
	if _, err := source.ParseDelimiter(e.Delimiter); err != nil {
		return invalid("exceptions: %s", err)
	}
	return nil
}

func (e *Exceptions) kind() Kind {
	if e.Database {
		return ""
	}
	return inferKind(e.Kind, e.Location)
}

func inferKind(kind Kind, location string) Kind {
	if kind != "" {
		return Kind(strings.ToLower(string(kind)))
	}
	if strings.HasSuffix(location, "/") {
		return KindZip
	}
	switch strings.ToLower(filepath.Ext(location)) {
	case ".xlsx", ".xlsm":
		return KindXLSX
	case ".zip":
		return KindZip
	case ".csv", ".txt", ".tsv":
		return KindCSV
	}
	return ""
}

func validateKind(k Kind) error {
	switch k {
	case KindXLSX, KindZip, KindCSV, KindTable:
		return nil
	case "":
		return invalid("kind is required when it cannot be inferred from the location")
	default:
		return invalid("unknown kind %q", k)
	}
}

func invalid(format string, args ...any) error {
	return eris.Wrapf(reconcile.ErrInvalidConfig, format, args...)
}
