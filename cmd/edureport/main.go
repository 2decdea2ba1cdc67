// Command edureport prints the dashboard KPIs and grouped tables for a CSV
// in the terminal and optionally writes the filtered rows to CSV or Excel.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	"edudash/internal/charts"
	"edudash/internal/config"
	"edudash/internal/dataset"
	"edudash/internal/exporter"
	"edudash/internal/filter"
	"edudash/internal/infrastructure"
	"edudash/internal/services"
	"edudash/pkg/contracts/domain"
)

// valuesFlag collects a repeatable flag. A flag given only with empty
// values selects nothing for its dimension.
type valuesFlag struct {
	values []string
	set    bool
}

func (f *valuesFlag) String() string { return strings.Join(f.values, ",") }

func (f *valuesFlag) Set(v string) error {
	f.set = true
	f.values = append(f.values, v)
	return nil
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("edureport", flag.ContinueOnError)
	fs.SetOutput(stderr)
	file := fs.String("file", "", "CSV file to report on (defaults to the data file next to the binary)")
	out := fs.String("out", "", "write the filtered rows to this CSV path")
	xlsx := fs.String("xlsx", "", "write the filtered rows and summary sheets to this Excel path")
	verbose := fs.Bool("v", false, "verbose logging")

	filters := make(map[domain.Dimension]*valuesFlag, len(domain.Dimensions))
	for _, dim := range domain.Dimensions {
		f := &valuesFlag{}
		filters[dim] = f
		fs.Var(f, strings.ToLower(string(dim)), fmt.Sprintf("keep only rows with this %s (repeatable)", dim))
	}

	if err := fs.Parse(args); err != nil {
		return 2
	}

	logCfg := config.LoggingConfig{Level: "warn", Format: "json"}
	if *verbose {
		logCfg.Level = "debug"
	}
	logger := infrastructure.NewLogger(logCfg, stderr)

	svc, err := newService(*file, logger)
	if err != nil {
		color.New(color.FgRed).Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	values := make(map[string][]string)
	for dim, f := range filters {
		if f.set {
			values[string(dim)] = f.values
		}
	}
	q := services.Query{Source: services.SourceLocal, Selection: filter.FromValues(values)}

	ctx := infrastructure.EnsureTraceID(context.Background())
	view, err := svc.Render(ctx, q)
	if err != nil {
		reportError(stderr, err)
		return 1
	}

	printReport(stdout, view)

	if *out != "" {
		if err := exporter.NewCSVWriter(dataset.Separator, logger).WriteFile(*out, view.Filtered); err != nil {
			reportError(stderr, err)
			return 1
		}
		color.New(color.FgGreen).Fprintf(stdout, "CSV guardado en %s\n", *out)
	}
	if *xlsx != "" {
		if err := exporter.NewExcelWriter(logger).WriteFile(*xlsx, view.Filtered, *view.Dashboard); err != nil {
			reportError(stderr, err)
			return 1
		}
		color.New(color.FgGreen).Fprintf(stdout, "Excel guardado en %s\n", *xlsx)
	}
	return 0
}

// newService builds a dashboard service over an explicit file, or over
// the dual-path lookup when file is empty.
func newService(file string, logger *slog.Logger) (*services.DashboardService, error) {
	var (
		paths    *config.Paths
		dataFile string
	)
	if file != "" {
		abs, err := filepath.Abs(file)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve %s: %w", file, err)
		}
		dir := filepath.Dir(abs)
		paths = &config.Paths{AppDir: dir, ModuleDir: dir}
		dataFile = filepath.Base(abs)
	} else {
		p, err := config.GetPaths(config.PathsConfig{})
		if err != nil {
			return nil, err
		}
		paths = p
	}

	loader := dataset.NewLoader(logger)
	cache := dataset.NewCache(loader, dataset.WithLogger(logger))
	resolver := dataset.NewResolver(paths, dataFile, "")
	return services.NewDashboardService(resolver, cache, loader, logger), nil
}

func reportError(w io.Writer, err error) {
	red := color.New(color.FgRed)
	var unavailable *dataset.DataUnavailableError
	switch {
	case errors.As(err, &unavailable):
		red.Fprintln(w, "No encontré el CSV local.")
		fmt.Fprintf(w, "Ponlo en:\n- %s  (recomendado)\no en la misma carpeta del ejecutable.\n", unavailable.Expected)
	case errors.Is(err, filter.ErrEmptyResult):
		color.New(color.FgYellow).Fprintln(w, "Con esos filtros no hay datos. Prueba ampliando opciones.")
	default:
		red.Fprintf(w, "Error: %v\n", err)
	}
}

func printReport(w io.Writer, view *services.View) {
	dash := view.Dashboard
	k := dash.KPIs

	color.New(color.FgCyan, color.Bold).Fprintf(w, "\n=== %s ===\n", config.DefaultPageTitle)
	fmt.Fprintf(w, "Archivo: %s  Filas: %s\n", view.Name, exporter.FormatCount(int64(view.Rows)))
	if view.Clean.Dropped > 0 {
		color.New(color.FgYellow).Fprintf(w, "Filas descartadas por limpieza: %d\n", view.Clean.Dropped)
	}

	printTable(w, "Indicadores", []string{"Indicador", "Valor"}, [][]string{
		{"Inscripciones", exporter.FormatCount(k.TotalEnrollment)},
		{"% Aprobación", exporter.FormatPercent(k.PassRate)},
		{"Asistencia prom.", exporter.FormatPercent(k.AvgAttendance)},
		{"Nota promedio", exporter.FormatGrade(k.AvgGrade)},
		{"Aprobados", exporter.FormatCount(k.TotalPassed)},
		{"Desaprobados", exporter.FormatCount(k.TotalFailed)},
		{"Retiros", exporter.FormatCount(k.TotalWithdrawn)},
		{"Sedes activas", exporter.FormatCount(int64(k.ActiveSites))},
	})

	for _, kind := range charts.Kinds {
		// one row per section; summarized by the correlation line below
		if kind == charts.AttendanceVsGrade {
			continue
		}
		if kind == charts.AttendanceByMonth && !view.Filtered.HasMonth {
			continue
		}
		t, err := charts.TableFor(kind, *dash)
		if err != nil || len(t.Rows) == 0 {
			continue
		}
		printTable(w, kind.Title(), t.Columns, t.Rows)
	}

	fmt.Fprintf(w, "\nCorrelación asistencia/nota: %.3f\n", dash.Correlation)
}

func printTable(w io.Writer, title string, header []string, rows [][]string) {
	color.New(color.FgYellow).Fprintf(w, "\n%s\n", title)
	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetAutoFormatHeaders(false)
	table.AppendBulk(rows)
	table.Render()
}
