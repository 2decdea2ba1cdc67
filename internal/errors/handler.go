package errors

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime"
	"runtime/debug"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"edudash/internal/charts"
	"edudash/internal/dataset"
	"edudash/internal/filter"
)

// Common error types following RFC 7807
const (
	TypeValidation       = "/errors/validation"
	TypeNotFound         = "/errors/not-found"
	TypeRateLimit        = "/errors/rate-limit"
	TypeInternal         = "/errors/internal"
	TypeServiceDown      = "/errors/service-unavailable"
	TypeTimeout          = "/errors/timeout"
	TypePayloadTooLarge  = "/errors/payload-too-large"
	TypeMethodNotAllowed = "/errors/method-not-allowed"
)

// Dashboard error types
const (
	TypeDataUnavailable = "/errors/data/unavailable"
	TypeSchemaMismatch  = "/errors/data/schema"
	TypeDataCorrupted   = "/errors/data/corrupted"
	TypeEmptyFilter     = "/errors/data/empty-filter"
	TypeUnknownChart    = "/errors/chart/unknown"
)

// ErrorHandler converts errors into RFC 7807 responses
type ErrorHandler struct {
	logger       *slog.Logger
	includeStack bool
}

// NewErrorHandler creates a new error handler
func NewErrorHandler(logger *slog.Logger, includeStack bool) *ErrorHandler {
	return &ErrorHandler{
		logger:       logger.With(slog.String("component", "error_handler")),
		includeStack: includeStack,
	}
}

// HandleError logs err and writes it as a problem response
func (h *ErrorHandler) HandleError(w http.ResponseWriter, r *http.Request, err error) {
	if err == nil {
		return
	}
	reqID := middleware.GetReqID(r.Context())

	problem := h.ErrorToProblem(err, r)
	problem.WithExtension("trace_id", reqID)

	level := slog.LevelWarn
	if problem.Status >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	h.logger.Log(r.Context(), level, "request failed",
		slog.String("error", err.Error()),
		slog.String("problem_type", problem.Type),
		slog.Int("status", problem.Status),
		slog.String("request_id", reqID),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
	)

	if h.includeStack && problem.Status >= http.StatusInternalServerError {
		problem.WithExtension("stack", getStackTrace())
	}
	_ = render.Render(w, r, problem)
}

// ErrorToProblem maps an error onto RFC 7807 Problem Details
func (h *ErrorHandler) ErrorToProblem(err error, r *http.Request) *ProblemDetails {
	var (
		problem     *ProblemDetails
		apiErr      *APIError
		unavailable *dataset.DataUnavailableError
		schemaErr   *dataset.SchemaError
		parseErr    *dataset.ParseError
		tooLarge    *http.MaxBytesError
	)
	path := r.URL.Path

	switch {
	case errors.As(err, &problem):
		return problem

	case errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled):
		return NewProblemDetails(http.StatusGatewayTimeout, TypeTimeout, "Request Timeout",
			"The request took too long to process and was cancelled", path)

	case errors.As(err, &apiErr):
		return h.apiErrorToProblem(apiErr, r)

	case errors.As(err, &unavailable):
		return NewProblemDetails(http.StatusServiceUnavailable, TypeDataUnavailable, "Data Unavailable",
			unavailable.Error(), path).
			WithExtension("expected_path", unavailable.Expected).
			WithExtension("searched", unavailable.Searched)

	case errors.Is(err, dataset.ErrDataUnavailable):
		return NewProblemDetails(http.StatusServiceUnavailable, TypeDataUnavailable, "Data Unavailable", err.Error(), path)

	case errors.As(err, &schemaErr):
		p := NewProblemDetails(http.StatusUnprocessableEntity, TypeSchemaMismatch, "Schema Mismatch", schemaErr.Error(), path)
		if len(schemaErr.Missing) > 0 {
			p.WithExtension("missing_columns", schemaErr.Missing)
		}
		if len(schemaErr.Duplicate) > 0 {
			p.WithExtension("duplicate_columns", schemaErr.Duplicate)
		}
		return p

	case errors.As(err, &parseErr):
		p := NewProblemDetails(http.StatusUnprocessableEntity, TypeDataCorrupted, "Malformed Data", parseErr.Error(), path).
			WithExtension("line", parseErr.Line)
		if parseErr.Column != "" {
			p.WithExtension("column", parseErr.Column)
		}
		return p

	case errors.Is(err, dataset.ErrMalformed):
		return NewProblemDetails(http.StatusUnprocessableEntity, TypeDataCorrupted, "Malformed Data", err.Error(), path)

	case errors.Is(err, filter.ErrEmptyResult):
		return NewProblemDetails(http.StatusUnprocessableEntity, TypeEmptyFilter, "Empty Selection",
			"No rows match the current filters. Adjust the selection and try again.", path)

	case errors.Is(err, charts.ErrUnknownChart):
		return NewProblemDetails(http.StatusNotFound, TypeUnknownChart, "Unknown Chart", err.Error(), path)

	case errors.As(err, &tooLarge):
		return NewProblemDetails(http.StatusRequestEntityTooLarge, TypePayloadTooLarge, "Payload Too Large",
			fmt.Sprintf("The upload exceeds the limit of %d bytes", tooLarge.Limit), path)
	}

	return NewProblemDetails(http.StatusInternalServerError, TypeInternal, "Internal Server Error",
		"An unexpected error occurred while processing your request", path)
}

func (h *ErrorHandler) apiErrorToProblem(apiErr *APIError, r *http.Request) *ProblemDetails {
	problemType := TypeInternal
	switch apiErr.ErrorCode {
	case "VALIDATION_FAILED", "INVALID_REQUEST":
		problemType = TypeValidation
	case "NOT_FOUND":
		problemType = TypeNotFound
	case "RATE_LIMIT_EXCEEDED":
		problemType = TypeRateLimit
	case "SERVICE_UNAVAILABLE":
		problemType = TypeServiceDown
	}

	problem := NewProblemDetails(
		apiErr.StatusCode,
		problemType,
		http.StatusText(apiErr.StatusCode),
		apiErr.Message,
		r.URL.Path,
	).WithExtension("error_code", apiErr.ErrorCode)

	if apiErr.Details != nil {
		if problemType == TypeValidation {
			problem.WithExtension("errors", apiErr.Details)
		} else {
			problem.WithExtension("details", apiErr.Details)
		}
	}
	return problem
}

// HandlePanic logs a recovered panic and answers with a 500 problem
func (h *ErrorHandler) HandlePanic(w http.ResponseWriter, r *http.Request, recovered interface{}) {
	reqID := middleware.GetReqID(r.Context())

	h.logger.ErrorContext(r.Context(), "panic recovered",
		slog.Any("panic", recovered),
		slog.String("request_id", reqID),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.String("stack", string(debug.Stack())),
	)

	problem := NewProblemDetails(
		http.StatusInternalServerError,
		TypeInternal,
		"Internal Server Error",
		"An unexpected error occurred",
		r.URL.Path,
	).WithExtension("trace_id", reqID)

	if h.includeStack {
		problem.WithExtension("panic", fmt.Sprintf("%v", recovered))
		problem.WithExtension("stack", getStackTrace())
	}
	_ = render.Render(w, r, problem)
}

// NotFound returns a standard 404 error
func (h *ErrorHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	problem := NewProblemDetails(
		http.StatusNotFound,
		TypeNotFound,
		"Not Found",
		"The requested resource was not found",
		r.URL.Path,
	).WithExtension("trace_id", middleware.GetReqID(r.Context()))
	_ = render.Render(w, r, problem)
}

// MethodNotAllowed returns a standard 405 error
func (h *ErrorHandler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	problem := NewProblemDetails(
		http.StatusMethodNotAllowed,
		TypeMethodNotAllowed,
		"Method Not Allowed",
		fmt.Sprintf("Method %s is not allowed for this endpoint", r.Method),
		r.URL.Path,
	).WithExtension("trace_id", middleware.GetReqID(r.Context()))
	_ = render.Render(w, r, problem)
}

func getStackTrace() string {
	buf := make([]byte, 1024*8)
	n := runtime.Stack(buf, false)
	return string(buf[:n])
}
