package reconcile

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// SideConfig pairs a source with the way it is normalized.
type SideConfig struct {
	Source TabularSource
	Spec   SourceSpec
}

// RunConfig is the complete configuration of one reconciliation run.
type RunConfig struct {
	Name        string
	A           SideConfig
	B           SideConfig
	Policy      ComparisonPolicy
	Cardinality Cardinality
	// ReportEqualAsMismatch emits equal values as a pair of records (strict and literal policies).
	ReportEqualAsMismatch bool
	// Activity feeds the cross-join notes; nil counts every candidate as active.
	Activity *ActivitySpec
	// Concurrency bounds per-unit normalization goroutines per side.
	Concurrency int
}

// Validate checks mandatory configuration without reading any source.
func (c RunConfig) Validate() error {
	if c.A.Source == nil && c.B.Source == nil {
		return invalidConfig("both sources are unspecified")
	}
	if c.A.Source == nil {
		return invalidConfig("side A source is unspecified")
	}
	if c.B.Source == nil {
		return invalidConfig("side B source is unspecified")
	}
	switch c.Policy {
	case StrictNameMatch, NameLiteralMatch, FullUnion:
	default:
		return invalidConfig("unknown comparison policy %q", c.Policy)
	}
	switch c.Cardinality {
	case CardinalityFirst, CardinalityCrossJoin:
	default:
		return invalidConfig("unknown join cardinality %q", c.Cardinality)
	}
	if err := c.A.Spec.validate(SideA); err != nil {
		return err
	}
	return c.B.Spec.validate(SideB)
}

// Result is the outcome of a run.
type Result struct {
	RunID      string              `json:"run_id" yaml:"run_id"`
	Name       string              `json:"name" yaml:"name"`
	StartedAt  time.Time           `json:"started_at" yaml:"started_at"`
	FinishedAt time.Time           `json:"finished_at" yaml:"finished_at"`
	Summary    Summary             `json:"summary" yaml:"summary"`
	Records    []DiscrepancyRecord `json:"records" yaml:"records"`
	Issues     []Issue             `json:"issues" yaml:"issues"`
}

// SideIndex is the output of normalizing and indexing one side.
type SideIndex struct {
	Index  *AttributeIndex
	Facts  []KeyedFact
	Issues []Issue
}

// Run reconciles side A against side B and filters the result through exceptions.
// Only ErrInvalidConfig and context cancellation are returned as errors; every
// other condition is recovered, logged and listed in Result.Issues.
func Run(ctx context.Context, cfg RunConfig, exceptions *ExceptionTable, logger *zap.Logger) (*Result, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	res := &Result{
		RunID:     uuid.NewString(),
		Name:      cfg.Name,
		StartedAt: time.Now().UTC(),
		Records:   []DiscrepancyRecord{},
		Issues:    []Issue{},
	}
	log := logger.With(zap.String("run_id", res.RunID), zap.String("job", cfg.Name))
	log.Info("Reconciliation started",
		zap.String("policy", string(cfg.Policy)),
		zap.String("cardinality", string(cfg.Cardinality)),
	)

	var sideA, sideB *SideIndex

	// Build both indexes concurrently.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		sideA, err = BuildSideIndex(gctx, SideA, cfg.A, cfg.Cardinality, cfg.Concurrency, log)
		return err
	})
	g.Go(func() error {
		var err error
		sideB, err = BuildSideIndex(gctx, SideB, cfg.B, cfg.Cardinality, cfg.Concurrency, log)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	res.Issues = append(res.Issues, sideA.Issues...)
	res.Issues = append(res.Issues, sideB.Issues...)
	for _, issue := range res.Issues {
		issue.Log(log)
	}

	opts := []Option{
		WithCardinality(cfg.Cardinality),
		WithEqualAsMismatch(cfg.ReportEqualAsMismatch),
	}
	if cfg.Activity != nil {
		opts = append(opts, WithActivity(cfg.Activity.Predicate()))
	}
	records := NewReconciler(cfg.Policy, opts...).Reconcile(sideA.Index, sideB.Index)

	kept, suppressed := exceptions.Apply(records)
	if kept != nil {
		res.Records = kept
	}
	res.Summary = Summarize(sideA.Index, sideB.Index, kept, suppressed, len(res.Issues))
	res.FinishedAt = time.Now().UTC()

	log.Info("Reconciliation finished",
		zap.Int("records", res.Summary.Records),
		zap.Int("suppressed", suppressed),
		zap.Int("exceptions", exceptions.Len()),
		zap.Int("issues", len(res.Issues)),
		zap.Duration("duration", res.FinishedAt.Sub(res.StartedAt)),
	)

	return res, nil
}

// BuildSideIndex runs Normalizer, RuleEngine, KeyBuilder and AttributeIndexer for one side.
// Candidate rows are attached only for cross-join cardinality. Issues are returned, not logged.
func BuildSideIndex(ctx context.Context, side Side, sc SideConfig, cardinality Cardinality, concurrency int, logger *zap.Logger) (*SideIndex, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	log := logger.With(zap.String("side", string(side)))

	rules := NewRuleEngine(sc.Spec.Rules)
	facts, issues, err := NewNormalizer(sc.Spec, rules, concurrency, log).Normalize(ctx, sc.Source)
	if err != nil {
		return nil, err
	}

	facts, ruleIssues := rules.Apply(sc.Source.Name(), facts)
	issues = append(issues, ruleIssues...)

	keyed := NewKeyBuilder(sc.Spec.NameKeySeparator).Key(facts)
	unique := Dedup(keyed)
	index := BuildIndex(unique)
	if cardinality == CardinalityCrossJoin {
		index.AttachCandidates(keyed)
	}

	log.Debug("Side indexed",
		zap.String("source", sc.Source.Name()),
		zap.Int("facts", len(unique)),
		zap.Int("entities", index.Len()),
	)

	return &SideIndex{Index: index, Facts: unique, Issues: issues}, nil
}

// Pages splits records into consecutive chunks of at most size records.
// A size below 1 yields a single page.
func Pages(records []DiscrepancyRecord, size int) [][]DiscrepancyRecord {
	if size < 1 || len(records) <= size {
		return [][]DiscrepancyRecord{records}
	}
	pages := make([][]DiscrepancyRecord, 0, (len(records)+size-1)/size)
	for start := 0; start < len(records); start += size {
		end := min(start+size, len(records))
		pages = append(pages, records[start:end])
	}
	return pages
}
