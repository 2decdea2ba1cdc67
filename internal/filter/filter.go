// Package filter selects the records of a dataset that match a
// per-dimension value selection.
package filter

import (
	"errors"

	"edudash/pkg/contracts/domain"
)

// ErrEmptyResult is returned by callers when a selection matches no rows.
// Aggregation must not run for that render pass.
var ErrEmptyResult = errors.New("no rows match the current filters")

// Apply returns the records of ds whose value in every restricted
// dimension belongs to the selected set. Input order is preserved and ds
// is not modified. Mes is ignored when the dataset has no Mes column.
func Apply(ds *domain.Dataset, sel domain.Selection) *domain.Dataset {
	preds := compile(ds, sel)
	if len(preds) == 0 {
		return ds.Derive(append([]domain.Record(nil), ds.Records...))
	}

	out := make([]domain.Record, 0, ds.Len())
	for _, rec := range ds.Records {
		if matches(rec, preds) {
			out = append(out, rec)
		}
	}
	return ds.Derive(out)
}

// ApplyNonEmpty is Apply followed by the empty-result check
func ApplyNonEmpty(ds *domain.Dataset, sel domain.Selection) (*domain.Dataset, error) {
	out := Apply(ds, sel)
	if out.Empty() {
		return out, ErrEmptyResult
	}
	return out, nil
}

type predicate struct {
	dim     domain.Dimension
	allowed map[string]struct{}
}

func compile(ds *domain.Dataset, sel domain.Selection) []predicate {
	var preds []predicate
	for _, dim := range domain.Dimensions {
		values, ok := sel[dim]
		if !ok {
			continue
		}
		if dim == domain.DimMes && !ds.HasMonth {
			continue
		}
		allowed := make(map[string]struct{}, len(values))
		for _, v := range values {
			allowed[v] = struct{}{}
		}
		preds = append(preds, predicate{dim: dim, allowed: allowed})
	}
	return preds
}

func matches(rec domain.Record, preds []predicate) bool {
	for _, p := range preds {
		if _, ok := p.allowed[rec.Value(p.dim)]; !ok {
			return false
		}
	}
	return true
}
