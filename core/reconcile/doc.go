// Package reconcile implements the melt-and-reconcile engine: two wide tables are
// melted into long facts, keyed, folded into attribute indexes and compared.
//
// The engine is format-agnostic. Sources implement TabularSource and hand over
// stringified wide rows; everything downstream works on strings only, so absent
// values are always "" and never a null marker.
//
// # Pipeline
//
//  1. Normalizer: wide rows to LongFact (Dimension, EntityRef, Attribute, Value).
//     Pre-melt row exclusion runs here, per source unit.
//  2. RuleEngine: dimension and attribute renaming, then post-melt exclusion.
//  3. KeyBuilder: RefName resolution, GroupKey "Dimension | RefName" and
//     Key "Dimension | RefName | Attribute | Value", exact deduplication.
//  4. AttributeIndexer: GroupKey to attributes, first value wins.
//  5. Reconciler: three-way comparison under a ComparisonPolicy and a Cardinality.
//  6. ExceptionFilter: hides or annotates records by Key.
//
// # Failure model
//
// A run only fails on invalid configuration (ErrInvalidConfig, before any source
// is read) or context cancellation. Unreadable units, missing name fields and
// dangling rule entries are recovered, logged and returned as Issues.
//
// # Usage Example
//
//	cfg := reconcile.RunConfig{
//	    Name:        "regions",
//	    A:           reconcile.SideConfig{Source: workbook, Spec: specA},
//	    B:           reconcile.SideConfig{Source: archive, Spec: specB},
//	    Policy:      reconcile.StrictNameMatch,
//	    Cardinality: reconcile.CardinalityFirst,
//	}
//	res, err := reconcile.Run(ctx, cfg, reconcile.NewExceptionTable(entries), logger)
package reconcile
