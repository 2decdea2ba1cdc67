package exporter

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/xuri/excelize/v2"

	"edudash/pkg/contracts/domain"
)

// Workbook sheet names
const (
	SheetData       = "Datos"
	SheetKPIs       = "KPIs"
	SheetPassRate   = "Aprobacion"
	SheetAttendance = "Asistencia"
)

// ExcelWriter exports the filtered rows and the dashboard summaries as
// an xlsx workbook.
type ExcelWriter struct {
	logger *slog.Logger
}

// NewExcelWriter creates an Excel exporter
func NewExcelWriter(logger *slog.Logger) *ExcelWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExcelWriter{logger: logger.With(slog.String("component", "excel_exporter"))}
}

// Write builds the workbook for ds and its dashboard and writes it to w
func (e *ExcelWriter) Write(w io.Writer, ds *domain.Dataset, dash domain.Dashboard) error {
	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			e.logger.Warn("Failed to close workbook", slog.String("error", err.Error()))
		}
	}()

	if err := f.SetSheetName("Sheet1", SheetData); err != nil {
		return fmt.Errorf("failed to rename sheet: %w", err)
	}
	for _, name := range []string{SheetKPIs, SheetPassRate, SheetAttendance} {
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("failed to create sheet %s: %w", name, err)
		}
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create style: %w", err)
	}

	if err := e.writeData(f, ds, bold); err != nil {
		return err
	}
	if err := e.writeKPIs(f, dash.KPIs, bold); err != nil {
		return err
	}
	if err := e.writeMatrix(f, SheetPassRate, dash.PassRateMatrix, bold); err != nil {
		return err
	}
	if err := e.writeMatrix(f, SheetAttendance, dash.AttendanceMatrix, bold); err != nil {
		return err
	}

	f.SetActiveSheet(0)
	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}

	e.logger.Info("Excel workbook written", slog.Int("record_count", ds.Len()))
	return nil
}

// WriteFile writes the workbook to filePath, creating parent directories
func (e *ExcelWriter) WriteFile(filePath string, ds *domain.Dataset, dash domain.Dashboard) error {
	file, err := createFile(filePath)
	if err != nil {
		return err
	}
	if err := e.Write(file, ds, dash); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

func (e *ExcelWriter) writeData(f *excelize.File, ds *domain.Dataset, style int) error {
	header := make([]interface{}, len(ds.Header))
	for i, h := range ds.Header {
		header[i] = h
	}
	if err := setRow(f, SheetData, 1, header); err != nil {
		return err
	}
	if err := styleRow(f, SheetData, 1, len(header), style); err != nil {
		return err
	}

	for i, rec := range ds.Records {
		row := make([]interface{}, len(ds.Header))
		extra := 0
		for j, col := range ds.Header {
			if v, ok := typedCell(rec, col); ok {
				row[j] = v
				continue
			}
			if extra < len(rec.Extra) {
				row[j] = rec.Extra[extra]
			}
			extra++
		}
		if err := setRow(f, SheetData, i+2, row); err != nil {
			return err
		}
	}
	return nil
}

// typedCell keeps numbers numeric in the workbook
func typedCell(rec domain.Record, col string) (interface{}, bool) {
	switch col {
	case domain.ColInscripciones:
		return rec.Inscripciones, true
	case domain.ColAprobados:
		return rec.Aprobados, true
	case domain.ColDesaprobados:
		return rec.Desaprobados, true
	case domain.ColRetiros:
		return rec.Retiros, true
	case domain.ColAsistencia:
		return rec.Asistencia, true
	case domain.ColPromedioFinal:
		return rec.PromedioFinal, true
	}
	if v, ok := rec.Cell(col); ok {
		return v, true
	}
	return nil, false
}

func (e *ExcelWriter) writeKPIs(f *excelize.File, k domain.KPIs, style int) error {
	rows := [][]interface{}{
		{"Indicador", "Valor"},
		{"Inscripciones", k.TotalEnrollment},
		{"Aprobados", k.TotalPassed},
		{"Desaprobados", k.TotalFailed},
		{"Retiros", k.TotalWithdrawn},
		{"% Aprobación", k.PassRate},
		{"Asistencia prom.", k.AvgAttendance},
		{"Nota promedio", k.AvgGrade},
		{"Sedes activas", k.ActiveSites},
	}
	for i, row := range rows {
		if err := setRow(f, SheetKPIs, i+1, row); err != nil {
			return err
		}
	}
	if err := styleRow(f, SheetKPIs, 1, 2, style); err != nil {
		return err
	}
	return f.SetColWidth(SheetKPIs, "A", "A", 20)
}

func (e *ExcelWriter) writeMatrix(f *excelize.File, sheet string, m domain.Matrix, style int) error {
	header := make([]interface{}, 0, len(m.Columns)+1)
	header = append(header, m.RowKey+" / "+m.ColKey)
	for _, c := range m.Columns {
		header = append(header, c)
	}
	if err := setRow(f, sheet, 1, header); err != nil {
		return err
	}
	if err := styleRow(f, sheet, 1, len(header), style); err != nil {
		return err
	}

	for i, r := range m.Rows {
		row := make([]interface{}, 0, len(m.Columns)+1)
		row = append(row, r)
		for _, v := range m.Cells[i] {
			if v == nil {
				row = append(row, nil)
				continue
			}
			row = append(row, *v)
		}
		if err := setRow(f, sheet, i+2, row); err != nil {
			return err
		}
	}
	return nil
}

func setRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("failed to write %s row %d: %w", sheet, row, err)
	}
	return nil
}

func styleRow(f *excelize.File, sheet string, row, width, style int) error {
	if width == 0 {
		return nil
	}
	first, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(width, row)
	if err != nil {
		return err
	}
	return f.SetCellStyle(sheet, first, last, style)
}
