package domain

import (
	"time"
)

// Dataset is an immutable table of records. Filtering and cleaning build
// new datasets that share the header but never modify the receiver.
type Dataset struct {
	Source   string    `json:"source"`
	Header   []string  `json:"header"`
	Extra    []string  `json:"extra,omitempty"`
	HasMonth bool      `json:"has_month"`
	LoadedAt time.Time `json:"loaded_at"`
	Records  []Record  `json:"-"`
}

// Len returns the number of records
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Records)
}

// Empty reports whether the dataset has no records
func (d *Dataset) Empty() bool {
	return d.Len() == 0
}

// Derive returns a dataset with the same shape holding records
func (d *Dataset) Derive(records []Record) *Dataset {
	return &Dataset{
		Source:   d.Source,
		Header:   d.Header,
		Extra:    d.Extra,
		HasMonth: d.HasMonth,
		LoadedAt: d.LoadedAt,
		Records:  records,
	}
}

// Row formats record i in header order
func (d *Dataset) Row(i int) []string {
	rec := d.Records[i]
	row := make([]string, len(d.Header))
	extra := 0
	for j, col := range d.Header {
		if v, ok := rec.Cell(col); ok {
			row[j] = v
			continue
		}
		if extra < len(rec.Extra) {
			row[j] = rec.Extra[extra]
		}
		extra++
	}
	return row
}

// Rows formats every record in header order
func (d *Dataset) Rows() [][]string {
	rows := make([][]string, d.Len())
	for i := range rows {
		rows[i] = d.Row(i)
	}
	return rows
}
