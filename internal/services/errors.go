package services

import "errors"

// Dashboard service errors
var (
	// Source errors
	ErrNoUpload      = errors.New("no uploaded dataset")
	ErrInvalidSource = errors.New("invalid data source")

	// Upload errors
	ErrEmptyUpload     = errors.New("uploaded file is empty")
	ErrInvalidFileType = errors.New("invalid file type")

	// Export errors
	ErrUnsupportedExport = errors.New("unsupported export format")
)
