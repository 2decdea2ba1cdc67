package filter

import (
	"edudash/pkg/contracts/domain"
)

// Options lists, per dimension, the distinct values observed in ds in
// first-encounter order. Mes values are ordered by month instead, and are
// omitted entirely when the dataset has no Mes column.
func Options(ds *domain.Dataset) map[domain.Dimension][]string {
	dims := OptionDimensions(ds)
	seen := make(map[domain.Dimension]map[string]struct{}, len(dims))
	opts := make(map[domain.Dimension][]string, len(dims))
	for _, dim := range dims {
		seen[dim] = make(map[string]struct{})
		opts[dim] = []string{}
	}

	for _, rec := range ds.Records {
		for _, dim := range dims {
			v := rec.Value(dim)
			if _, ok := seen[dim][v]; ok {
				continue
			}
			seen[dim][v] = struct{}{}
			opts[dim] = append(opts[dim], v)
		}
	}

	if months, ok := opts[domain.DimMes]; ok {
		domain.SortMonths(months)
	}
	return opts
}

// OptionDimensions returns the dimensions that can be filtered on ds
func OptionDimensions(ds *domain.Dataset) []domain.Dimension {
	if ds.HasMonth {
		return domain.Dimensions
	}
	return domain.Dimensions[:len(domain.Dimensions)-1]
}

// DefaultSelection selects every observed value, which makes Apply the
// identity on ds.
func DefaultSelection(ds *domain.Dataset) domain.Selection {
	sel := domain.NewSelection()
	for dim, values := range Options(ds) {
		sel.With(dim, values...)
	}
	return sel
}
