// Package services implements the business logic layer of the dashboard.
// It sits between the HTTP handlers and the dataset, filter, analytics,
// charts and exporter packages.
//
// # Render pass
//
// DashboardService.Render runs one pass per request:
//
//	resolve path -> cache.Get -> Clean -> filter.Apply -> analytics.Build
//
// When the selection matches no rows the pass stops before aggregation and
// returns filter.ErrEmptyResult alongside the partially filled View, so
// callers can still show the filter options.
//
// # Data sources
//
// A pass reads either the local data file, found by the dual-path
// resolver, or the most recent upload. The upload is replaced wholesale
// under a mutex; the local dataset is shared through the dataset cache.
//
// # Error Handling
//
// Services return sentinel or typed errors from the packages they call
// (dataset.ErrDataUnavailable, *dataset.SchemaError, filter.ErrEmptyResult)
// plus the ones in errors.go. The HTTP layer maps them to problem details.
package services
