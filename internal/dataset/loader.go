package dataset

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"edudash/pkg/contracts/domain"
)

// Separator is the field delimiter of every input and exported file
const Separator = ';'

// nullTokens are the cell values read as "no value"
var nullTokens = map[string]struct{}{
	"":     {},
	"NA":   {},
	"N/A":  {},
	"NaN":  {},
	"nan":  {},
	"null": {},
	"NULL": {},
	"None": {},
	"#N/A": {},
	"<NA>": {},
}

// IsNull reports whether a raw cell is one of the recognised null tokens
func IsNull(cell string) bool {
	_, ok := nullTokens[cell]
	return ok
}

// how often the row loop checks for cancellation
const ctxCheckInterval = 1024

// Loader parses semicolon-delimited educational record files
type Loader struct {
	logger *slog.Logger
	now    func() time.Time
}

// NewLoader creates a loader. A nil logger falls back to slog.Default.
func NewLoader(logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{
		logger: logger.With(slog.String("component", "dataset_loader")),
		now:    time.Now,
	}
}

// LoadFile reads and parses the file at path
func (l *Loader) LoadFile(ctx context.Context, path string) (*domain.Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, &DataUnavailableError{Expected: path, Searched: []string{path}, Err: err}
		}
		return nil, fmt.Errorf("failed to open data file: %w", err)
	}
	defer f.Close()

	return l.LoadReader(ctx, filepath.Base(path), f)
}

// LoadReader parses a dataset from r. source names the input in errors
// and in the resulting Dataset.
func (l *Loader) LoadReader(ctx context.Context, source string, r io.Reader) (*domain.Dataset, error) {
	start := l.now()

	// reject invalid UTF-8 before the decoder would replace it with U+FFFD
	decoded := transform.NewReader(r, transform.Chain(
		encoding.UTF8Validator,
		unicode.BOMOverride(unicode.UTF8.NewDecoder()),
	))
	reader := csv.NewReader(decoded)
	reader.Comma = Separator
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.ReuseRecord = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, &ParseError{Source: source, Line: 1, Err: ErrEmptyFile}
	}
	if err != nil {
		err = wrapCSVError(source, err)
		var pe *ParseError
		if errors.As(err, &pe) && pe.Line == 0 {
			pe.Line = 1
		}
		return nil, err
	}
	header = append([]string(nil), header...)

	layout, err := newColumnLayout(source, header)
	if err != nil {
		l.logger.WarnContext(ctx, "Schema check failed",
			slog.String("source", source),
			slog.Any("header", header),
			slog.String("error", err.Error()))
		return nil, err
	}

	ds := &domain.Dataset{
		Source:   source,
		Header:   header,
		Extra:    layout.extraNames(header),
		HasMonth: layout.month >= 0,
	}

	for line := 2; ; line++ {
		if line%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			err = wrapCSVError(source, err)
			var pe *ParseError
			if errors.As(err, &pe) && pe.Line == 0 {
				pe.Line = line
			}
			return nil, err
		}
		// lazy quoting swallows the rest of the file into an unclosed quote
		if len(row) < len(header) && strings.ContainsAny(row[len(row)-1], string(Separator)+"\n") {
			return nil, &ParseError{Source: source, Line: line, Err: errUnterminatedQuote}
		}
		if len(row) > len(header) {
			return nil, &ParseError{
				Source: source,
				Line:   line,
				Err:    fmt.Errorf("expected %d fields, got %d", len(header), len(row)),
			}
		}

		rec, err := layout.parse(row)
		if err != nil {
			var pe *ParseError
			if errors.As(err, &pe) {
				pe.Line = line
			}
			return nil, err
		}
		ds.Records = append(ds.Records, rec)
	}

	ds.LoadedAt = l.now()
	l.logger.InfoContext(ctx, "Dataset loaded",
		slog.String("source", source),
		slog.Int("rows", ds.Len()),
		slog.Int("columns", len(header)),
		slog.Bool("has_month", ds.HasMonth),
		slog.Duration("duration", ds.LoadedAt.Sub(start)))

	return ds, nil
}

func wrapCSVError(source string, err error) error {
	var csvErr *csv.ParseError
	if errors.As(err, &csvErr) {
		return &ParseError{
			Source: source,
			Line:   csvErr.Line,
			Err:    fmt.Errorf("position %d: %w", csvErr.Column, csvErr.Err),
		}
	}
	if errors.Is(err, encoding.ErrInvalidUTF8) {
		return &ParseError{Source: source, Err: fmt.Errorf("file is not valid UTF-8: %w", err)}
	}
	return &ParseError{Source: source, Err: err}
}

// columnLayout maps schema columns to their position in the header
type columnLayout struct {
	source string
	header []string
	index  map[string]int
	month  int
	extra  []int
}

func newColumnLayout(source string, header []string) (*columnLayout, error) {
	layout := &columnLayout{
		source: source,
		header: header,
		index:  make(map[string]int, len(header)),
		month:  -1,
	}

	schemaErr := &SchemaError{Source: source}
	for i, name := range header {
		if _, seen := layout.index[name]; seen {
			schemaErr.Duplicate = append(schemaErr.Duplicate, name)
			continue
		}
		layout.index[name] = i
		if !domain.IsSchemaColumn(name) {
			layout.extra = append(layout.extra, i)
		}
	}

	for _, col := range domain.RequiredColumns {
		if _, ok := layout.index[col]; !ok {
			schemaErr.Missing = append(schemaErr.Missing, col)
		}
	}
	if len(schemaErr.Missing) > 0 || len(schemaErr.Duplicate) > 0 {
		return nil, schemaErr
	}

	if i, ok := layout.index[domain.ColMes]; ok {
		layout.month = i
	}
	return layout, nil
}

func (c *columnLayout) extraNames(header []string) []string {
	if len(c.extra) == 0 {
		return nil
	}
	names := make([]string, len(c.extra))
	for i, idx := range c.extra {
		names[i] = header[idx]
	}
	return names
}

// parse converts one row. Short rows are padded with missing values.
func (c *columnLayout) parse(row []string) (domain.Record, error) {
	var rec domain.Record

	cell := func(col string) (string, bool) {
		i := c.index[col]
		if i >= len(row) || IsNull(row[i]) {
			rec.MarkMissing(col)
			return "", false
		}
		return row[i], true
	}

	text := func(col string, dst *string) {
		if v, ok := cell(col); ok {
			*dst = v
		}
	}
	integer := func(col string, dst *int64) error {
		v, ok := cell(col)
		if !ok {
			return nil
		}
		n, err := parseInt(v)
		if err != nil {
			return &ParseError{Source: c.source, Column: col, Value: v, Err: err}
		}
		*dst = n
		return nil
	}
	float := func(col string, dst *float64) error {
		v, ok := cell(col)
		if !ok {
			return nil
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return &ParseError{Source: c.source, Column: col, Value: v, Err: unwrapNumError(err)}
		}
		*dst = f
		return nil
	}

	text(domain.ColPeriodo, &rec.Periodo)
	text(domain.ColSede, &rec.Sede)
	text(domain.ColTurno, &rec.Turno)
	text(domain.ColGrado, &rec.Grado)
	text(domain.ColCurso, &rec.Curso)
	text(domain.ColSeccionID, &rec.SeccionID)
	if c.month >= 0 {
		text(domain.ColMes, &rec.Mes)
	}

	for _, f := range []struct {
		col string
		dst *int64
	}{
		{domain.ColInscripciones, &rec.Inscripciones},
		{domain.ColAprobados, &rec.Aprobados},
		{domain.ColDesaprobados, &rec.Desaprobados},
		{domain.ColRetiros, &rec.Retiros},
	} {
		if err := integer(f.col, f.dst); err != nil {
			return domain.Record{}, err
		}
	}
	if err := float(domain.ColAsistencia, &rec.Asistencia); err != nil {
		return domain.Record{}, err
	}
	if err := float(domain.ColPromedioFinal, &rec.PromedioFinal); err != nil {
		return domain.Record{}, err
	}

	if len(c.extra) > 0 {
		rec.Extra = make([]string, len(c.extra))
		for j, idx := range c.extra {
			if idx >= len(row) || IsNull(row[idx]) {
				rec.MarkMissing(c.header[idx])
				continue
			}
			rec.Extra[j] = row[idx]
		}
	}

	return rec, nil
}

// parseInt accepts plain integers and integral floats such as "12.0",
// which is how counts come back from spreadsheet round trips.
func parseInt(v string) (int64, error) {
	v = strings.TrimSpace(v)
	n, err := strconv.ParseInt(v, 10, 64)
	if err == nil {
		return n, nil
	}
	f, ferr := strconv.ParseFloat(v, 64)
	if ferr != nil || f != float64(int64(f)) {
		return 0, unwrapNumError(err)
	}
	return int64(f), nil
}

func unwrapNumError(err error) error {
	var numErr *strconv.NumError
	if errors.As(err, &numErr) {
		return numErr.Err
	}
	return err
}
