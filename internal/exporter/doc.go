// Package exporter writes the filtered dataset for download.
//
// CSVWriter produces the same format the loader reads: semicolon
// separated, UTF-8 with a BOM, the original column order and no index
// column. Exporting a filtered dataset and loading the result again
// yields the same records.
//
// ExcelWriter produces an xlsx workbook with the filtered rows (Datos),
// the KPI table (KPIs) and the two pivot matrices (Aprobacion and
// Asistencia).
//
// Example usage:
//
//	w := exporter.NewCSVWriter(dataset.Separator, logger)
//	if err := w.WriteDataset(resp, filtered); err != nil {
//	    return err
//	}
package exporter
