package http

import (
	"context"
	"io"

	"edudash/internal/charts"
	"edudash/internal/services"
)

// DashboardServiceInterface defines the dashboard operations used by the handlers
type DashboardServiceInterface interface {
	Render(ctx context.Context, q services.Query) (*services.View, error)
	Filter(ctx context.Context, q services.Query) (*services.View, error)
	Chart(ctx context.Context, q services.Query, kind charts.Kind, format charts.Format) (charts.Result, error)
	Export(ctx context.Context, q services.Query, format services.ExportFormat) (*services.Export, error)

	// Data source management
	Upload(ctx context.Context, filename string, size int64, r io.Reader) (*services.Upload, error)
	ClearUpload(ctx context.Context) bool
	CurrentUpload() *services.Upload
	Reload(ctx context.Context) (string, error)
	Status(ctx context.Context) services.Status
	Logo() (string, bool)
}

var _ DashboardServiceInterface = (*services.DashboardService)(nil)
