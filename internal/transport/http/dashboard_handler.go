package http

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"edudash/internal/charts"
	apierrors "edudash/internal/errors"
	"edudash/internal/filter"
	"edudash/internal/infrastructure"
	"edudash/internal/middleware"
	"edudash/internal/services"
)

// Upper bound for the records limit parameter
const maxRecordsLimit = 100000

// DashboardHandler serves render passes, records, exports and charts
type DashboardHandler struct {
	service      DashboardServiceInterface
	validator    *middleware.Validator
	errorHandler *apierrors.ErrorHandler
	recordsLimit int
	logger       *slog.Logger
}

// NewDashboardHandler creates a new dashboard handler. recordsLimit is the
// default page size of the records endpoint.
func NewDashboardHandler(service DashboardServiceInterface, validator *middleware.Validator, errorHandler *apierrors.ErrorHandler, recordsLimit int, logger *slog.Logger) *DashboardHandler {
	if recordsLimit <= 0 || recordsLimit > maxRecordsLimit {
		recordsLimit = 1000
	}
	return &DashboardHandler{
		service:      service,
		validator:    validator,
		errorHandler: errorHandler,
		recordsLimit: recordsLimit,
		logger:       infrastructure.WithComponent(logger, "dashboard_handler"),
	}
}

// Routes returns the dashboard routes
func (h *DashboardHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Get("/", h.GetDashboard)
	r.Get("/options", h.GetOptions)
	r.Get("/records", h.GetRecords)
	r.Get("/charts", h.ListCharts)

	// Downloads and images write their own content type
	r.Get("/export.csv", h.Export(services.ExportCSV))
	r.Get("/export.xlsx", h.Export(services.ExportXLSX))
	r.Get("/charts/{chart}", h.GetChart)

	return r
}

// GetDashboard handles GET /api/dashboard
func (h *DashboardHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	q, err := parseQuery(h.validator, r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	view, err := h.service.Render(r.Context(), q)
	if err != nil {
		h.handlePassError(w, r, view, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   view,
	})
}

// GetOptions handles GET /api/dashboard/options. An empty filter result is
// not an error here.
func (h *DashboardHandler) GetOptions(w http.ResponseWriter, r *http.Request) {
	q, err := parseQuery(h.validator, r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	view, err := h.service.Filter(r.Context(), q)
	if err != nil && !errors.Is(err, filter.ErrEmptyResult) {
		h.errorHandler.HandleError(w, r, mapServiceError(err))
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data": map[string]interface{}{
			"source":    view.Source,
			"name":      view.Name,
			"options":   view.Options,
			"selection": view.Selection,
			"rows":      view.Rows,
		},
	})
}

// GetRecords handles GET /api/dashboard/records
func (h *DashboardHandler) GetRecords(w http.ResponseWriter, r *http.Request) {
	limit, err := middleware.QueryInt(r, "limit", 1, maxRecordsLimit, h.recordsLimit)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	q, err := parseQuery(h.validator, r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	view, err := h.service.Filter(r.Context(), q)
	if err != nil {
		h.handlePassError(w, r, view, err)
		return
	}

	rows := view.Filtered.Rows()
	truncated := len(rows) > limit
	if truncated {
		rows = rows[:limit]
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data": map[string]interface{}{
			"columns": view.Filtered.Header,
			"rows":    rows,
		},
		"total":     view.Rows,
		"count":     len(rows),
		"truncated": truncated,
	})
}

// Export handles GET /api/dashboard/export.csv and export.xlsx
func (h *DashboardHandler) Export(format services.ExportFormat) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q, err := parseQuery(h.validator, r)
		if err != nil {
			h.errorHandler.HandleError(w, r, err)
			return
		}

		exp, err := h.service.Export(r.Context(), q, format)
		if err != nil {
			h.handlePassError(w, r, nil, err)
			return
		}

		h.logger.InfoContext(r.Context(), "Serving export",
			slog.String("request_id", middleware.GetReqID(r.Context())),
			slog.String("format", string(format)),
			slog.Int("rows", exp.Rows))

		w.Header().Set("Content-Type", format.ContentType())
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", format.Filename()))
		w.Header().Set("Content-Length", strconv.Itoa(len(exp.Data)))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(exp.Data)
	}
}

// chartRequest is the validated form of a chart request
type chartRequest struct {
	Chart  string `json:"chart" validate:"required"`
	Format string `json:"format" validate:"omitempty,oneof=svg png"`
}

// GetChart handles GET /api/dashboard/charts/{chart}. Charts the renderer
// cannot draw come back as JSON with the tabular data instead of an image.
func (h *DashboardHandler) GetChart(w http.ResponseWriter, r *http.Request) {
	req := chartRequest{
		Chart:  chi.URLParam(r, "chart"),
		Format: r.URL.Query().Get("format"),
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	kind, err := charts.ParseKind(req.Chart)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	format, err := charts.ParseFormat(req.Format)
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("format", err.Error()))
		return
	}
	q, err := parseQuery(h.validator, r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	res, err := h.service.Chart(r.Context(), q, kind, format)
	if err != nil {
		h.handlePassError(w, r, nil, err)
		return
	}

	if !res.Rendered() {
		render.JSON(w, r, map[string]interface{}{
			"status": "fallback",
			"data":   res,
		})
		return
	}

	w.Header().Set("Content-Type", res.ContentType)
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(res.Image)
}

// ListCharts handles GET /api/dashboard/charts
func (h *DashboardHandler) ListCharts(w http.ResponseWriter, r *http.Request) {
	list := make([]map[string]interface{}, 0, len(charts.Kinds))
	for _, k := range charts.Kinds {
		list = append(list, map[string]interface{}{
			"chart":         k,
			"title":         k.Title(),
			"visualization": k.Visualization(),
			"image":         charts.Supports(k.Visualization()),
		})
	}
	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   list,
		"count":  len(list),
	})
}

// handlePassError reports a failed render pass. For an empty selection the
// problem also carries the filter options.
func (h *DashboardHandler) handlePassError(w http.ResponseWriter, r *http.Request, view *services.View, err error) {
	if errors.Is(err, filter.ErrEmptyResult) && view != nil {
		problem := h.errorHandler.ErrorToProblem(err, r).
			WithExtension("options", view.Options).
			WithExtension("source", view.Source)
		h.errorHandler.HandleError(w, r, problem)
		return
	}
	h.errorHandler.HandleError(w, r, mapServiceError(err))
}
