package dataset

import (
	"edudash/pkg/contracts/domain"
)

// CleanStats describes what Clean removed
type CleanStats struct {
	Input           int            `json:"input"`
	Kept            int            `json:"kept"`
	Dropped         int            `json:"dropped"`
	MissingByColumn map[string]int `json:"missing_by_column,omitempty"`
	// UnknownMonths counts kept records whose Mes is outside the calendar
	// vocabulary. They stay in the dataset and sort after Nov.
	UnknownMonths int `json:"unknown_months,omitempty"`
}

// Clean returns a dataset without the records that have any missing
// field. The input is left untouched and record order is preserved.
func Clean(ds *domain.Dataset) (*domain.Dataset, CleanStats) {
	stats := CleanStats{Input: ds.Len()}

	kept := make([]domain.Record, 0, ds.Len())
	for _, rec := range ds.Records {
		if rec.Complete() {
			if ds.HasMonth && !domain.IsKnownMonth(rec.Mes) {
				stats.UnknownMonths++
			}
			kept = append(kept, rec)
			continue
		}
		if stats.MissingByColumn == nil {
			stats.MissingByColumn = make(map[string]int)
		}
		for _, col := range rec.Missing() {
			stats.MissingByColumn[col]++
		}
	}

	stats.Kept = len(kept)
	stats.Dropped = stats.Input - stats.Kept
	return ds.Derive(kept), stats
}
