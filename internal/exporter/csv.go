package exporter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"edudash/pkg/contracts/domain"
)

// utf8BOM marks exported files as UTF-8 for spreadsheet applications
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// CSVWriter provides CSV export functionality
type CSVWriter struct {
	comma  rune
	logger *slog.Logger
}

// NewCSVWriter creates a writer using comma as the field separator
func NewCSVWriter(comma rune, logger *slog.Logger) *CSVWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CSVWriter{
		comma:  comma,
		logger: logger.With(slog.String("component", "csv_exporter")),
	}
}

// WriteOptions configures CSV writing behavior
type WriteOptions struct {
	Headers   []string
	Records   [][]string
	BOMPrefix bool // Add UTF-8 BOM for Excel compatibility
}

// Write writes headers and records to w
func (c *CSVWriter) Write(w io.Writer, options WriteOptions) error {
	if options.BOMPrefix {
		if _, err := w.Write(utf8BOM); err != nil {
			return fmt.Errorf("failed to write BOM: %w", err)
		}
	}

	writer := csv.NewWriter(w)
	writer.Comma = c.comma

	if len(options.Headers) > 0 {
		if err := writer.Write(options.Headers); err != nil {
			return fmt.Errorf("failed to write headers: %w", err)
		}
	}

	for i, record := range options.Records {
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// WriteDataset writes ds in its original column order, without an index
// column, prefixed with a UTF-8 BOM.
func (c *CSVWriter) WriteDataset(w io.Writer, ds *domain.Dataset) error {
	return c.Write(w, WriteOptions{
		Headers:   ds.Header,
		Records:   ds.Rows(),
		BOMPrefix: true,
	})
}

// DatasetBytes renders ds as an in-memory CSV document
func (c *CSVWriter) DatasetBytes(ds *domain.Dataset) ([]byte, error) {
	var buf bytes.Buffer
	if err := c.WriteDataset(&buf, ds); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteFile exports ds to filePath, creating parent directories
func (c *CSVWriter) WriteFile(filePath string, ds *domain.Dataset) error {
	c.logger.Info("Writing CSV file",
		slog.String("file_path", filePath),
		slog.Int("record_count", ds.Len()))

	file, err := createFile(filePath)
	if err != nil {
		return err
	}

	if err := c.WriteDataset(file, ds); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

// createFile creates filePath and any missing parent directories
func createFile(filePath string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}
	file, err := os.Create(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to create file: %w", err)
	}
	return file, nil
}
