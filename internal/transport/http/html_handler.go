package http

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"edudash/internal/charts"
	"edudash/internal/config"
	"edudash/internal/dataset"
	apierrors "edudash/internal/errors"
	"edudash/internal/exporter"
	"edudash/internal/filter"
	"edudash/internal/infrastructure"
	"edudash/internal/middleware"
	"edudash/internal/services"
	"edudash/pkg/contracts/domain"
)

//go:embed templates/dashboard.html
var templates embed.FS

// Page messages
const (
	msgEmptyFilter = "Con esos filtros no hay datos. Prueba ampliando opciones."
	msgNoUpload    = "Sube un archivo CSV para continuar."
	msgNoLocalFile = "No encontré el CSV local."
)

// Rows of the filtered table shown on the page
const pagePreviewRows = 500

// PageHandler serves the server-rendered dashboard page
type PageHandler struct {
	service        DashboardServiceInterface
	validator      *middleware.Validator
	errorHandler   *apierrors.ErrorHandler
	title          string
	layout         string
	maxUploadBytes int64
	tmpl           *template.Template
	logger         *slog.Logger
}

type filterField struct {
	Name   string
	Param  string
	Size   int
	Values []filterValue
}

type filterValue struct {
	Value    string
	Selected bool
}

type kpiCard struct {
	Label string
	Value string
}

type chartCard struct {
	Title    string
	ImageURL string
	Table    *charts.Table
}

type pageData struct {
	Title   string
	Layout  string
	HasLogo bool
	Source  services.Source
	Upload  *services.Upload

	Filters []filterField
	Warning string
	Error   string

	// Expected is the recommended data file location shown with a missing file
	Expected string

	KPIs       []kpiCard
	Charts     []chartCard
	Columns    []string
	Rows       [][]string
	Total      int
	ExportCSV  string
	ExportXLSX string
}

// NewPageHandler parses the page template
func NewPageHandler(service DashboardServiceInterface, validator *middleware.Validator, errorHandler *apierrors.ErrorHandler, cfg config.DashboardConfig, logger *slog.Logger) (*PageHandler, error) {
	tmpl, err := template.New("dashboard.html").Funcs(template.FuncMap{
		"count": func(n int) string { return exporter.FormatCount(int64(n)) },
	}).ParseFS(templates, "templates/dashboard.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse dashboard template: %w", err)
	}

	title := cfg.Title
	if title == "" {
		title = config.DefaultPageTitle
	}
	return &PageHandler{
		service:        service,
		validator:      validator,
		errorHandler:   errorHandler,
		title:          title,
		layout:         cfg.Layout,
		maxUploadBytes: cfg.MaxUploadBytes,
		tmpl:           tmpl,
		logger:         infrastructure.WithComponent(logger, "page_handler"),
	}, nil
}

// ServePage handles GET /
func (h *PageHandler) ServePage(w http.ResponseWriter, r *http.Request) {
	q, err := parseQuery(h.validator, r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	data := h.newPageData(q.Source)
	view, err := h.service.Render(r.Context(), q)
	if view != nil {
		data.Source = view.Source
		data.Filters = filterFields(view)
	}

	status := http.StatusOK
	var (
		unavailable *dataset.DataUnavailableError
		schemaErr   *dataset.SchemaError
		parseErr    *dataset.ParseError
	)
	switch {
	case err == nil:
		h.fillDashboard(&data, view, r.URL.Query())
	case errors.Is(err, filter.ErrEmptyResult):
		data.Warning = msgEmptyFilter
	case errors.Is(err, services.ErrNoUpload):
		data.Source = services.SourceUpload
		data.Warning = msgNoUpload
	case errors.As(err, &unavailable):
		status = http.StatusServiceUnavailable
		data.Error = msgNoLocalFile
		data.Expected = unavailable.Expected
	case errors.As(err, &schemaErr), errors.As(err, &parseErr):
		status = http.StatusUnprocessableEntity
		data.Error = err.Error()
	default:
		h.errorHandler.HandleError(w, r, mapServiceError(err))
		return
	}

	h.renderPage(w, r, status, data)
}

// UploadPage handles POST /upload from the sidebar form
func (h *PageHandler) UploadPage(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	data := h.newPageData(services.SourceUpload)

	file, header, err := r.FormFile(uploadField)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.errorHandler.HandleError(w, r, tooLarge)
			return
		}
		data.Warning = msgNoUpload
		h.renderPage(w, r, http.StatusBadRequest, data)
		return
	}
	defer file.Close()

	if _, err := h.service.Upload(r.Context(), header.Filename, header.Size, file); err != nil {
		h.logger.WarnContext(r.Context(), "Upload from page rejected",
			slog.String("request_id", middleware.GetReqID(r.Context())),
			slog.String("error", err.Error()))
		data.Error = err.Error()
		h.renderPage(w, r, http.StatusUnprocessableEntity, data)
		return
	}

	http.Redirect(w, r, "/?source="+string(services.SourceUpload), http.StatusSeeOther)
}

// ServeLogo handles GET /assets/logo.png
func (h *PageHandler) ServeLogo(w http.ResponseWriter, r *http.Request) {
	path, ok := h.service.Logo()
	if !ok {
		h.errorHandler.HandleError(w, r, apierrors.NotFoundError("logo"))
		return
	}
	w.Header().Set("Cache-Control", "public, max-age=3600")
	http.ServeFile(w, r, path)
}

func (h *PageHandler) newPageData(src services.Source) pageData {
	_, hasLogo := h.service.Logo()
	data := pageData{
		Title:   h.title,
		Layout:  h.layout,
		HasLogo: hasLogo,
		Source:  src,
		Upload:  h.service.CurrentUpload(),
	}
	if data.Source == "" {
		data.Source = services.SourceLocal
		if data.Upload != nil {
			data.Source = services.SourceUpload
		}
	}
	return data
}

func (h *PageHandler) fillDashboard(data *pageData, view *services.View, query url.Values) {
	dash := view.Dashboard
	k := dash.KPIs
	data.KPIs = []kpiCard{
		{"📝 Inscripciones", exporter.FormatCount(k.TotalEnrollment)},
		{"✅ % Aprobación", exporter.FormatPercent(k.PassRate)},
		{"📶 Asistencia prom.", exporter.FormatPercent(k.AvgAttendance)},
		{"🎓 Nota promedio", exporter.FormatGrade(k.AvgGrade)},
		{"🟩 Aprobados", exporter.FormatCount(k.TotalPassed)},
		{"🟥 Desaprobados", exporter.FormatCount(k.TotalFailed)},
		{"↩️ Retiros", exporter.FormatCount(k.TotalWithdrawn)},
		{"🏫 Sedes activas", exporter.FormatCount(int64(k.ActiveSites))},
	}

	// pin the source so images and downloads read the dataset shown here
	query.Set("source", string(view.Source))
	encoded := query.Encode()

	for _, kind := range charts.Kinds {
		if kind == charts.AttendanceByMonth && !view.Filtered.HasMonth {
			continue
		}
		card := chartCard{Title: kind.Title()}
		if charts.Supports(kind.Visualization()) {
			card.ImageURL = "/api/dashboard/charts/" + string(kind) + "?" + encoded
		} else {
			table, err := charts.TableFor(kind, *dash)
			if err != nil {
				continue
			}
			card.Table = &table
		}
		data.Charts = append(data.Charts, card)
	}

	data.Columns = view.Filtered.Header
	data.Total = view.Rows
	rows := view.Filtered.Rows()
	if len(rows) > pagePreviewRows {
		rows = rows[:pagePreviewRows]
	}
	data.Rows = rows
	data.ExportCSV = "/api/dashboard/export.csv?" + encoded
	data.ExportXLSX = "/api/dashboard/export.xlsx?" + encoded
}

func filterFields(view *services.View) []filterField {
	fields := make([]filterField, 0, len(domain.Dimensions))
	for _, dim := range domain.Dimensions {
		opts, ok := view.Options[dim]
		if !ok {
			continue
		}
		selected := make(map[string]bool, len(view.Selection[dim]))
		for _, v := range view.Selection[dim] {
			selected[v] = true
		}

		field := filterField{
			Name:  string(dim),
			Param: strings.ToLower(string(dim)),
			Size:  min(len(opts), 6),
		}
		for _, v := range opts {
			field.Values = append(field.Values, filterValue{Value: v, Selected: selected[v]})
		}
		fields = append(fields, field)
	}
	return fields
}

// renderPage executes the template into a buffer so that a template error
// can still produce a problem response.
func (h *PageHandler) renderPage(w http.ResponseWriter, r *http.Request, status int, data pageData) {
	var buf bytes.Buffer
	if err := h.tmpl.Execute(&buf, data); err != nil {
		h.errorHandler.HandleError(w, r, fmt.Errorf("failed to render page: %w", err))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
