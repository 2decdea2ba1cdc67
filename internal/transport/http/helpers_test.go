package http

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"edudash/internal/charts"
	"edudash/internal/config"
	"edudash/internal/dataset"
	apierrors "edudash/internal/errors"
	"edudash/internal/middleware"
	"edudash/internal/services"
)

const testHeader = "Periodo;Sede;Turno;Grado;Curso;Seccion_ID;Mes;Inscripciones;Aprobados;Desaprobados;Retiros;Asistencia_Promedio_%;Promedio_Final"

var testCSV = strings.Join([]string{
	testHeader,
	"2024-I;A;Mañana;1ro;Math;S1;Mar;10;8;2;0;90;7.0",
	"2024-I;A;Mañana;1ro;Math;S2;Abr;5;3;2;0;80;6.0",
	"2024-I;B;Tarde;2do;Sci;S3;Mar;20;15;5;0;85;7.5",
}, "\n") + "\n"

// MockDashboardService is a mock implementation of DashboardServiceInterface
type MockDashboardService struct {
	mock.Mock
}

func (m *MockDashboardService) Render(ctx context.Context, q services.Query) (*services.View, error) {
	args := m.Called(q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.View), args.Error(1)
}

func (m *MockDashboardService) Filter(ctx context.Context, q services.Query) (*services.View, error) {
	args := m.Called(q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.View), args.Error(1)
}

func (m *MockDashboardService) Chart(ctx context.Context, q services.Query, kind charts.Kind, format charts.Format) (charts.Result, error) {
	args := m.Called(q, kind, format)
	return args.Get(0).(charts.Result), args.Error(1)
}

func (m *MockDashboardService) Export(ctx context.Context, q services.Query, format services.ExportFormat) (*services.Export, error) {
	args := m.Called(q, format)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.Export), args.Error(1)
}

func (m *MockDashboardService) Upload(ctx context.Context, filename string, size int64, r io.Reader) (*services.Upload, error) {
	args := m.Called(filename, size)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.Upload), args.Error(1)
}

func (m *MockDashboardService) ClearUpload(ctx context.Context) bool {
	return m.Called().Bool(0)
}

func (m *MockDashboardService) CurrentUpload() *services.Upload {
	args := m.Called()
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(*services.Upload)
}

func (m *MockDashboardService) Reload(ctx context.Context) (string, error) {
	args := m.Called()
	return args.String(0), args.Error(1)
}

func (m *MockDashboardService) Status(ctx context.Context) services.Status {
	return m.Called().Get(0).(services.Status)
}

func (m *MockDashboardService) Logo() (string, bool) {
	args := m.Called()
	return args.String(0), args.Bool(1)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testErrorHandler() *apierrors.ErrorHandler {
	return apierrors.NewErrorHandler(testLogger(), false)
}

func testValidator() *middleware.Validator {
	return middleware.NewValidator(testLogger())
}

// fixture is a dashboard service over a temp dir holding datos.csv
type fixture struct {
	dir     string
	path    string
	service *services.DashboardService
}

func newFixture(t *testing.T, withData bool) *fixture {
	t.Helper()
	dir := t.TempDir()
	f := &fixture{dir: dir, path: filepath.Join(dir, "datos.csv")}
	if withData {
		require.NoError(t, os.WriteFile(f.path, []byte(testCSV), 0644))
	}

	logger := testLogger()
	loader := dataset.NewLoader(logger)
	cache := dataset.NewCache(loader, dataset.WithModTimeCheck(true))
	resolver := dataset.NewResolver(&config.Paths{AppDir: dir, ModuleDir: dir}, "datos.csv", "logo.png")
	f.service = services.NewDashboardService(resolver, cache, loader, logger)
	return f
}

func multipartBody(t *testing.T, field, filename, content string) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &body, mw.FormDataContentType()
}
