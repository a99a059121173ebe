package reconcile

import (
	"context"
	"strconv"
	"strings"

	"github.com/cockroachdb/apd/v3"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/unicode/norm"
)

// Normalizer melts the wide rows of one source into long facts.
type Normalizer struct {
	spec        SourceSpec
	rules       *RuleEngine
	concurrency int
	logger      *zap.Logger
}

// NewNormalizer creates a Normalizer. Pre-melt row exclusion from rules is applied per unit.
// Units are read with at most concurrency goroutines (values below 1 mean sequential).
func NewNormalizer(spec SourceSpec, rules *RuleEngine, concurrency int, logger *zap.Logger) *Normalizer {
	if rules == nil {
		rules = NewRuleEngine(Rules{})
	}
	if concurrency < 1 {
		concurrency = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Normalizer{spec: spec, rules: rules, concurrency: concurrency, logger: logger}
}

type unitResult struct {
	facts  []LongFact
	issues []Issue
	rows   int
}

// Normalize reads every unit of src and returns its facts in unit order.
// Unreadable units are reported as issues and contribute nothing; the only
// returned error is context cancellation.
func (n *Normalizer) Normalize(ctx context.Context, src TabularSource) ([]LongFact, []Issue, error) {
	units, err := src.Units(ctx)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, nil, ctxErr
		}
		return nil, []Issue{{
			Kind:    IssueSourceUnreadable,
			Source:  src.Name(),
			Message: err.Error(),
		}}, nil
	}

	// Each unit writes only its own slot; the merge below is single-threaded.
	results := make([]unitResult, len(units))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(n.concurrency)
	for i, u := range units {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = n.normalizeUnit(gctx, src.Name(), i, u)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	var (
		facts  []LongFact
		issues []Issue
		rows   int
	)
	for _, r := range results {
		facts = append(facts, r.facts...)
		issues = append(issues, r.issues...)
		rows += r.rows
	}

	n.logger.Debug("Normalized source",
		zap.String("source", src.Name()),
		zap.Int("units", len(units)),
		zap.Int("rows", rows),
		zap.Int("facts", len(facts)),
	)

	return facts, issues, nil
}

func (n *Normalizer) normalizeUnit(ctx context.Context, source string, index int, u Unit) unitResult {
	var res unitResult

	rows, err := u.Read(ctx)
	if err != nil {
		res.issues = append(res.issues, Issue{
			Kind:    IssueSourceUnreadable,
			Source:  source,
			Unit:    u.Label,
			Message: err.Error(),
		})
		return res
	}
	if len(rows) == 0 {
		return res
	}

	rows, issues := n.rules.FilterRows(source, u.Label, rows, n.clean)
	res.issues = append(res.issues, issues...)
	res.rows = len(rows)
	if len(rows) == 0 {
		return res
	}

	// The header is shared by all rows of a unit.
	header := rows[0]

	nameField, ok := n.resolveNameField(header)
	if !ok {
		res.issues = append(res.issues, Issue{
			Kind:    IssueSchemaMismatch,
			Source:  source,
			Unit:    u.Label,
			Field:   n.describeNameField(),
			Message: "name field not found, entities have no name",
		})
	}

	dimensionColumn := ""
	unitDimension := ""
	switch n.spec.Dimension.Policy {
	case DimensionFixed:
		unitDimension = strings.TrimSpace(n.spec.Dimension.Value)
	case DimensionUnit:
		unitDimension = n.spec.Dimension.FromUnit(u.Label)
	case DimensionColumn:
		dimensionColumn = n.spec.Dimension.Column
		if !header.Has(dimensionColumn) {
			res.issues = append(res.issues, Issue{
				Kind:    IssueSchemaMismatch,
				Source:  source,
				Unit:    u.Label,
				Field:   dimensionColumn,
				Message: "dimension column not found",
			})
		}
	}

	res.facts = make([]LongFact, 0, len(rows)*header.Len())
	for r, row := range rows {
		ref := strconv.Itoa(index) + ":" + strconv.Itoa(r)
		dimension := unitDimension
		if dimensionColumn != "" {
			v, _ := row.Get(dimensionColumn)
			dimension = n.clean(v)
		}

		for _, field := range row.Names() {
			if field == dimensionColumn {
				continue
			}
			v, _ := row.Get(field)
			attribute := field
			if field == nameField {
				attribute = NameAttribute
			}
			res.facts = append(res.facts, LongFact{
				Dimension: dimension,
				EntityRef: ref,
				Attribute: attribute,
				Value:     n.clean(v),
			})
		}
	}

	return res
}

// resolveNameField picks the field carrying the entity name: a field literally
// named "Name", otherwise the configured field name or position.
func (n *Normalizer) resolveNameField(header *WideRow) (string, bool) {
	if header.Has(NameAttribute) && !n.isDimensionColumn(NameAttribute) {
		return NameAttribute, true
	}
	if n.spec.NameField != "" {
		if header.Has(n.spec.NameField) {
			return n.spec.NameField, true
		}
		return "", false
	}
	if pos := n.spec.NamePosition; pos != nil {
		names := header.Names()
		if *pos < len(names) && !n.isDimensionColumn(names[*pos]) {
			return names[*pos], true
		}
	}
	return "", false
}

// isDimensionColumn reports whether field is consumed as the dimension and so
// cannot also carry the name.
func (n *Normalizer) isDimensionColumn(field string) bool {
	return n.spec.Dimension.Policy == DimensionColumn && field == n.spec.Dimension.Column
}

func (n *Normalizer) describeNameField() string {
	switch {
	case n.spec.NameField != "":
		return n.spec.NameField
	case n.spec.NamePosition != nil:
		return "#" + strconv.Itoa(*n.spec.NamePosition)
	default:
		return NameAttribute
	}
}

// clean trims and NFC-normalizes a value, and rewrites decimals when canonical numbers are on.
func (n *Normalizer) clean(v string) string {
	v = norm.NFC.String(strings.TrimSpace(v))
	if n.spec.CanonicalNumbers {
		v = CanonicalNumber(v)
	}
	return v
}

// CanonicalNumber returns v in reduced plain decimal form ("100.0" -> "100", "1e3" -> "1000").
// Values that are not finite decimals are returned unchanged, and so are
// zero-padded codes ("007", "00.5"): the padding is part of the identifier.
func CanonicalNumber(v string) string {
	if v == "" || zeroPadded(v) {
		return v
	}
	d, _, err := apd.NewFromString(v)
	if err != nil || d.Form != apd.Finite {
		return v
	}
	if d.IsZero() {
		return "0"
	}
	d.Reduce(d)
	return d.Text('f')
}

// zeroPadded reports whether the integer part of v has more than one digit and
// starts with 0.
func zeroPadded(v string) bool {
	v = strings.TrimLeft(v, "+-")
	end := strings.IndexAny(v, ".eE")
	if end < 0 {
		end = len(v)
	}
	return end > 1 && v[0] == '0'
}
