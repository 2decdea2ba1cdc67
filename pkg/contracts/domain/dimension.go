package domain

import (
	"sort"
	"strings"
)

// Dimension is a categorical column usable as a filter or group key
type Dimension string

const (
	DimPeriodo Dimension = ColPeriodo
	DimSede    Dimension = ColSede
	DimTurno   Dimension = ColTurno
	DimGrado   Dimension = ColGrado
	DimCurso   Dimension = ColCurso
	DimMes     Dimension = ColMes
)

// Dimensions lists the filter dimensions in sidebar order
var Dimensions = []Dimension{DimPeriodo, DimSede, DimTurno, DimGrado, DimCurso, DimMes}

// ParseDimension maps a case-insensitive name (e.g. "sede") to a Dimension
func ParseDimension(name string) (Dimension, bool) {
	for _, d := range Dimensions {
		if strings.EqualFold(string(d), name) {
			return d, true
		}
	}
	return "", false
}

// MonthOrder is the fixed academic month vocabulary, March to November
var MonthOrder = []string{"Mar", "Abr", "May", "Jun", "Jul", "Ago", "Sep", "Oct", "Nov"}

// MonthOrdinal returns the position of m in MonthOrder. Values outside the
// vocabulary get len(MonthOrder), so they sort after every known month.
func MonthOrdinal(m string) int {
	for i, v := range MonthOrder {
		if v == m {
			return i
		}
	}
	return len(MonthOrder)
}

// IsKnownMonth reports whether m belongs to MonthOrder
func IsKnownMonth(m string) bool {
	return MonthOrdinal(m) < len(MonthOrder)
}

// MonthLess orders months by ordinal; unknown months compare lexically
// among themselves.
func MonthLess(a, b string) bool {
	oa, ob := MonthOrdinal(a), MonthOrdinal(b)
	if oa != ob {
		return oa < ob
	}
	return a < b
}

// SortMonths sorts month labels in place using MonthLess
func SortMonths(months []string) {
	sort.SliceStable(months, func(i, j int) bool {
		return MonthLess(months[i], months[j])
	})
}

// Selection holds the allowed values per dimension. A dimension missing
// from the map is unrestricted; a dimension mapped to an empty slice
// matches nothing.
type Selection map[Dimension][]string

// NewSelection returns an empty (unrestricted) selection
func NewSelection() Selection {
	return make(Selection)
}

// With restricts dim to values and returns the selection for chaining
func (s Selection) With(dim Dimension, values ...string) Selection {
	s[dim] = append([]string{}, values...)
	return s
}

// Restricted reports whether dim has an explicit value set
func (s Selection) Restricted(dim Dimension) bool {
	_, ok := s[dim]
	return ok
}
