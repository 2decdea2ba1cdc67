package filter

import (
	"edudash/pkg/contracts/domain"
)

// FromValues builds a selection from request-style parameters such as
// url.Values. Keys are dimension names in any case; unknown keys are
// ignored. A key given only with empty values selects nothing, while an
// absent key leaves the dimension unrestricted.
func FromValues(values map[string][]string) domain.Selection {
	sel := domain.NewSelection()
	for key, vals := range values {
		dim, ok := domain.ParseDimension(key)
		if !ok {
			continue
		}
		kept := make([]string, 0, len(vals))
		for _, v := range vals {
			if v != "" {
				kept = append(kept, v)
			}
		}
		sel[dim] = append(sel[dim], kept...)
	}
	return sel
}
