package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"edudash/internal/dataset"
	"edudash/pkg/contracts/domain"
)

// Upload is the dataset received through the upload endpoint. Only the
// most recent upload is kept.
type Upload struct {
	ID         string             `json:"id"`
	Filename   string             `json:"filename"`
	Size       int64              `json:"size_bytes"`
	Rows       int                `json:"rows"`
	Clean      dataset.CleanStats `json:"clean"`
	UploadedAt time.Time          `json:"uploaded_at"`

	data *domain.Dataset
}

// Upload parses r as a records CSV and makes it the active upload. The
// previous upload, if any, is discarded only when parsing succeeds.
func (s *DashboardService) Upload(ctx context.Context, filename string, size int64, r io.Reader) (*Upload, error) {
	ctx, span := s.tracer.Start(ctx, "dashboard.upload")
	defer span.End()

	name := filepath.Base(filename)
	if !strings.EqualFold(filepath.Ext(name), ".csv") {
		return nil, fmt.Errorf("%w: %s", ErrInvalidFileType, name)
	}
	if size == 0 {
		return nil, ErrEmptyUpload
	}

	raw, err := s.loader.LoadReader(ctx, name, r)
	if err != nil {
		s.metrics.RecordLoad(ctx, string(SourceUpload), err, 0)
		s.logger.WarnContext(ctx, "Rejected uploaded file",
			slog.String("filename", name),
			slog.String("error", err.Error()))
		return nil, err
	}

	data, stats := dataset.Clean(raw)
	up := &Upload{
		ID:         uuid.NewString(),
		Filename:   name,
		Size:       size,
		Rows:       raw.Len(),
		Clean:      stats,
		UploadedAt: s.now(),
		data:       data,
	}
	s.metrics.RecordLoad(ctx, string(SourceUpload), nil, stats.Dropped)

	s.mu.Lock()
	s.upload = up
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "Uploaded dataset activated",
		slog.String("upload_id", up.ID),
		slog.String("filename", name),
		slog.Int("rows", up.Rows),
		slog.Int("dropped", stats.Dropped))
	return up, nil
}

// ClearUpload switches back to the local data file. It reports whether
// an upload was active.
func (s *DashboardService) ClearUpload(ctx context.Context) bool {
	s.mu.Lock()
	prev := s.upload
	s.upload = nil
	s.mu.Unlock()

	if prev != nil {
		s.logger.InfoContext(ctx, "Uploaded dataset cleared", slog.String("upload_id", prev.ID))
	}
	return prev != nil
}

// CurrentUpload returns the active upload or nil
func (s *DashboardService) CurrentUpload() *Upload {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.upload
}

// HasUpload reports whether an upload is active
func (s *DashboardService) HasUpload() bool {
	return s.CurrentUpload() != nil
}
