package job

import (
	"context"
	"strings"

	"sheet-reconciler/core/exception"
	"sheet-reconciler/core/reconcile"
	"sheet-reconciler/core/source"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Env carries the connections sources are built on.
type Env struct {
	Fetcher *source.Fetcher
	// DB is required by table sources and database exceptions; it may be nil otherwise.
	DB     *gorm.DB
	Config Config
}

// RunConfig turns the definition into a pipeline configuration. Sources are
// constructed but not opened.
func (d *Definition) RunConfig(env Env) (reconcile.RunConfig, error) {
	policy, err := reconcile.ParsePolicy(d.Policy)
	if err != nil {
		return reconcile.RunConfig{}, invalid("%s", err)
	}
	cardinality, err := reconcile.ParseCardinality(d.Cardinality)
	if err != nil {
		return reconcile.RunConfig{}, invalid("%s", err)
	}

	a, err := d.side(d.Sources.A, env)
	if err != nil {
		return reconcile.RunConfig{}, eris.Wrap(err, "sources.a")
	}
	b, err := d.side(d.Sources.B, env)
	if err != nil {
		return reconcile.RunConfig{}, eris.Wrap(err, "sources.b")
	}

	concurrency := d.Concurrency
	if concurrency < 1 {
		concurrency = env.Config.Concurrency
	}

	return reconcile.RunConfig{
		Name:                  d.Name,
		A:                     a,
		B:                     b,
		Policy:                policy,
		Cardinality:           cardinality,
		ReportEqualAsMismatch: d.ReportEqualAsMismatch,
		Activity:              d.Activity,
		Concurrency:           concurrency,
	}, nil
}

func (d *Definition) side(s SourceDef, env Env) (reconcile.SideConfig, error) {
	src, err := s.open(env)
	if err != nil {
		return reconcile.SideConfig{}, err
	}
	return reconcile.SideConfig{
		Source: src,
		Spec: reconcile.SourceSpec{
			Dimension:        s.Dimension,
			NameField:        s.NameField,
			NamePosition:     s.NamePosition,
			NameKeySeparator: s.NameKeySeparator,
			CanonicalNumbers: s.CanonicalNumbers,
			Rules:            d.Rules.Merge(s.Rules),
		},
	}, nil
}

func (s SourceDef) open(env Env) (reconcile.TabularSource, error) {
	require := s.ref("").Require
	return newSource(input{
		kind:       s.kind(),
		location:   s.Location,
		sheets:     s.Sheets,
		skipRows:   s.SkipRows,
		delimiter:  s.Delimiter,
		charset:    s.Charset,
		lazyQuotes: s.LazyQuotes,
		extensions: s.Extensions,
		require:    require,
	}, env)
}

type input struct {
	kind       Kind
	location   string
	sheets     []string
	skipRows   int
	delimiter  string
	charset    string
	lazyQuotes bool
	extensions []string
	require    []string
}

func newSource(in input, env Env) (reconcile.TabularSource, error) {
	delimiter, err := source.ParseDelimiter(in.delimiter)
	if err != nil {
		return nil, invalid("%s", err)
	}
	delimited := source.DelimitedOptions{
		Delimiter:  delimiter,
		Charset:    in.charset,
		LazyQuotes: in.lazyQuotes,
		SkipRows:   in.skipRows,
	}

	fetcher := env.Fetcher
	if fetcher == nil {
		fetcher = source.NewFetcher(nil, "")
	}

	switch in.kind {
	case KindXLSX:
		return source.NewWorkbook(fetcher, in.location, source.WorkbookOptions{Sheets: in.sheets, SkipRows: in.skipRows}), nil
	case KindZip:
		return source.NewArchive(fetcher, in.location, source.ArchiveOptions{Extensions: in.extensions, Delimited: delimited}), nil
	case KindCSV:
		return source.NewDelimited(fetcher, in.location, delimited), nil
	case KindTable:
		if env.DB == nil {
			return nil, invalid("table %s requires a database connection", in.location)
		}
		return source.NewTable(env.DB, strings.TrimSpace(in.location), in.require...), nil
	default:
		return nil, validateKind(in.kind)
	}
}

// ExceptionTable loads the job's exception table. Failures are issues, never errors:
// the run proceeds without exceptions. Without an exceptions section the database
// table is used when Config.ExceptionsFromDatabase is set.
func (d *Definition) ExceptionTable(ctx context.Context, env Env, logger *zap.Logger) (*reconcile.ExceptionTable, []reconcile.Issue) {
	if logger == nil {
		logger = zap.NewNop()
	}
	e := d.Exceptions
	if e == nil {
		if !env.Config.ExceptionsFromDatabase {
			return nil, nil
		}
		e = &Exceptions{Database: true}
	}

	if e.Database {
		fail := func(msg string) (*reconcile.ExceptionTable, []reconcile.Issue) {
			issue := reconcile.Issue{Kind: reconcile.IssueExceptionTableMalformed, Source: exception.Record{}.TableName(), Message: msg}
			issue.Log(logger)
			return reconcile.NewExceptionTable(nil), []reconcile.Issue{issue}
		}
		if env.DB == nil {
			return fail("database exceptions requested but no database is configured")
		}
		table, err := exception.NewStore(env.DB).Table(ctx)
		if err != nil {
			return fail(err.Error())
		}
		return table, nil
	}

	src, err := OpenExceptions(*e, env)
	if err != nil {
		issue := reconcile.Issue{Kind: reconcile.IssueExceptionTableMalformed, Source: e.Location, Message: err.Error()}
		issue.Log(logger)
		return reconcile.NewExceptionTable(nil), []reconcile.Issue{issue}
	}
	return exception.Load(ctx, src, e.Columns, logger)
}

// Execute validates the job, loads its exception table and runs the pipeline.
// Exception table issues are appended to the result's issues.
func (d *Definition) Execute(ctx context.Context, env Env, logger *zap.Logger) (*reconcile.Result, error) {
	cfg, err := d.RunConfig(env)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	exceptions, issues := d.ExceptionTable(ctx, env, logger)
	res, err := reconcile.Run(ctx, cfg, exceptions, logger)
	if err != nil {
		return nil, err
	}
	res.Issues = append(res.Issues, issues...)
	res.Summary.Issues = len(res.Issues)
	return res, nil
}

// OpenExceptions builds the tabular source of a file based exceptions section.
func OpenExceptions(e Exceptions, env Env) (reconcile.TabularSource, error) {
	if e.Database {
		return nil, invalid("exceptions: the database table is not a file source")
	}
	if err := e.validate(); err != nil {
		return nil, err
	}
	return newSource(input{
		kind:      e.kind(),
		location:  e.Location,
		sheets:    e.Sheets,
		skipRows:  e.SkipRows,
		delimiter: e.Delimiter,
		charset:   e.Charset,
	}, env)
}
