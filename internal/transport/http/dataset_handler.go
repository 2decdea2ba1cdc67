package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "edudash/internal/errors"
	"edudash/internal/infrastructure"
	"edudash/internal/middleware"
)

// Form field carrying the uploaded CSV
const uploadField = "file"

// DatasetHandler manages the active data source
type DatasetHandler struct {
	service        DashboardServiceInterface
	validator      *middleware.Validator
	errorHandler   *apierrors.ErrorHandler
	maxUploadBytes int64
	logger         *slog.Logger
}

// NewDatasetHandler creates a new dataset handler
func NewDatasetHandler(service DashboardServiceInterface, validator *middleware.Validator, errorHandler *apierrors.ErrorHandler, maxUploadBytes int64, logger *slog.Logger) *DatasetHandler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = 32 << 20
	}
	return &DatasetHandler{
		service:        service,
		validator:      validator,
		errorHandler:   errorHandler,
		maxUploadBytes: maxUploadBytes,
		logger:         infrastructure.WithComponent(logger, "dataset_handler"),
	}
}

// Routes returns the dataset routes
func (h *DatasetHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Get("/", h.GetStatus)
	r.Post("/reload", h.Reload)
	r.Route("/upload", func(r chi.Router) {
		r.With(middleware.ContentTypeValidator(h.errorHandler, "multipart/form-data")).Post("/", h.Upload)
		r.Delete("/", h.ClearUpload)
	})
	return r
}

// uploadRequest is the validated metadata of an uploaded file
type uploadRequest struct {
	Filename string `json:"filename" validate:"required,csvfile"`
	Size     int64  `json:"size" validate:"gt=0"`
}

// Upload handles POST /api/dataset/upload
func (h *DatasetHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.errorHandler.HandleError(w, r, tooLarge)
			return
		}
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile(uploadField)
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation(uploadField, "A CSV file is required in the 'file' field"))
		return
	}
	defer file.Close()

	req := uploadRequest{Filename: header.Filename, Size: header.Size}
	if err := h.validator.ValidateStruct(req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	up, err := h.service.Upload(r.Context(), header.Filename, header.Size, file)
	if err != nil {
		h.errorHandler.HandleError(w, r, mapServiceError(err))
		return
	}

	h.logger.InfoContext(r.Context(), "Dataset uploaded",
		slog.String("request_id", middleware.GetReqID(r.Context())),
		slog.String("upload_id", up.ID),
		slog.Int("rows", up.Rows))

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   up,
	})
}

// ClearUpload handles DELETE /api/dataset/upload
func (h *DatasetHandler) ClearUpload(w http.ResponseWriter, r *http.Request) {
	cleared := h.service.ClearUpload(r.Context())
	render.JSON(w, r, map[string]interface{}{
		"status":  "success",
		"cleared": cleared,
	})
}

// Reload handles POST /api/dataset/reload
func (h *DatasetHandler) Reload(w http.ResponseWriter, r *http.Request) {
	path, err := h.service.Reload(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, mapServiceError(err))
		return
	}
	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"path":   path,
	})
}

// GetStatus handles GET /api/dataset
func (h *DatasetHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   h.service.Status(r.Context()),
	})
}
