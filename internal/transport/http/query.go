package http

import (
	"errors"
	"net/http"
	"sort"
	"strings"

	apierrors "edudash/internal/errors"
	"edudash/internal/filter"
	"edudash/internal/middleware"
	"edudash/internal/services"
)

// Query parameters that are not filter dimensions
var reservedParams = map[string]bool{
	"source": true,
	"limit":  true,
	"format": true,
}

// dashboardQuery is the validated form of the query string
type dashboardQuery struct {
	Source  string   `query:"source" validate:"omitempty,oneof=local upload"`
	Filters []string `query:"filters" validate:"dive,dimension"`
}

// parseQuery turns the query string into a render pass query. Every
// non-reserved key must name a filter dimension; repeated keys add values,
// and a key given only with empty values selects nothing.
func parseQuery(v *middleware.Validator, r *http.Request) (services.Query, error) {
	values := r.URL.Query()

	dq := dashboardQuery{Source: strings.ToLower(strings.TrimSpace(values.Get("source")))}
	selection := make(map[string][]string, len(values))
	for key, vals := range values {
		if reservedParams[strings.ToLower(key)] {
			continue
		}
		dq.Filters = append(dq.Filters, key)
		selection[key] = vals
	}
	sort.Strings(dq.Filters)

	if err := v.ValidateStruct(dq); err != nil {
		return services.Query{}, err
	}

	src, err := services.ParseSource(dq.Source)
	if err != nil {
		return services.Query{}, apierrors.ErrValidation("source", err.Error())
	}
	return services.Query{Source: src, Selection: filter.FromValues(selection)}, nil
}

// mapServiceError converts service sentinels into API errors. Other errors
// pass through to the error handler's own mapping.
func mapServiceError(err error) error {
	switch {
	case errors.Is(err, services.ErrNoUpload):
		return apierrors.New(http.StatusNotFound, "NO_UPLOAD", "No uploaded dataset is active, upload a CSV file to continue")
	case errors.Is(err, services.ErrInvalidSource):
		return apierrors.ErrValidation("source", err.Error())
	case errors.Is(err, services.ErrInvalidFileType):
		return apierrors.ErrValidation("file", "Only .csv files are accepted")
	case errors.Is(err, services.ErrEmptyUpload):
		return apierrors.ErrValidation("file", "Uploaded file is empty")
	case errors.Is(err, services.ErrUnsupportedExport):
		return apierrors.ErrValidation("format", err.Error())
	}
	return err
}
