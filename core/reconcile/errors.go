package reconcile

import (
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

var (
	// ErrInvalidConfig is the only error that aborts a run. It is returned before any source is read.
	ErrInvalidConfig = eris.New("invalid reconciliation config")
	// ErrSourceUnreadable marks a source or source unit that could not be opened or parsed.
	ErrSourceUnreadable = eris.New("source unreadable")
	// ErrSchemaMismatch marks an expected structural element (e.g. the Name column) that is absent.
	ErrSchemaMismatch = eris.New("schema mismatch")
	// ErrConfigReferenceMissing marks a rule referencing a field, dimension or attribute absent from the data.
	ErrConfigReferenceMissing = eris.New("configuration reference missing")
	// ErrExceptionTable marks a missing or malformed exception table.
	ErrExceptionTable = eris.New("exception table unavailable")
)

// IssueKind classifies a recovered condition.
type IssueKind string

const (
	IssueSourceUnreadable        IssueKind = "source_unreadable"
	IssueSchemaMismatch          IssueKind = "schema_mismatch"
	IssueConfigReferenceMissing  IssueKind = "configuration_reference_missing"
	IssueExceptionTableMalformed IssueKind = "exception_table"
)

// Issue is a condition the pipeline recovered from. Issues never abort a run;
// they are logged when raised and returned with the result so a report can list them.
type Issue struct {
	Kind    IssueKind `json:"kind" yaml:"kind"`
	Source  string    `json:"source,omitempty" yaml:"source,omitempty"`
	Unit    string    `json:"unit,omitempty" yaml:"unit,omitempty"`
	Field   string    `json:"field,omitempty" yaml:"field,omitempty"`
	Rule    string    `json:"rule,omitempty" yaml:"rule,omitempty"`
	Message string    `json:"message" yaml:"message"`
}

// Err returns the issue as an error wrapping its taxonomy sentinel.
func (i Issue) Err() error {
	return eris.Wrap(i.sentinel(), i.Message)
}

func (i Issue) sentinel() error {
	switch i.Kind {
	case IssueSourceUnreadable:
		return ErrSourceUnreadable
	case IssueSchemaMismatch:
		return ErrSchemaMismatch
	case IssueConfigReferenceMissing:
		return ErrConfigReferenceMissing
	default:
		return ErrExceptionTable
	}
}

// Log writes the issue as a warning with enough context to fix the configuration.
func (i Issue) Log(l *zap.Logger) {
	fields := []zap.Field{zap.String("kind", string(i.Kind))}
	if i.Source != "" {
		fields = append(fields, zap.String("source", i.Source))
	}
	if i.Unit != "" {
		fields = append(fields, zap.String("unit", i.Unit))
	}
	if i.Field != "" {
		fields = append(fields, zap.String("field", i.Field))
	}
	if i.Rule != "" {
		fields = append(fields, zap.String("rule", i.Rule))
	}
	l.Warn(i.Message, fields...)
}

// invalidConfig wraps ErrInvalidConfig with a formatted reason.
func invalidConfig(format string, args ...any) error {
	return eris.Wrapf(ErrInvalidConfig, format, args...)
}
