package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockDataChecker struct {
	mock.Mock
}

func (m *mockDataChecker) CheckData(ctx context.Context) (Source, error) {
	args := m.Called(ctx)
	return args.Get(0).(Source), args.Error(1)
}

func TestHealthService_Readiness(t *testing.T) {
	tests := []struct {
		name       string
		source     Source
		err        error
		wantStatus string
		wantData   string
	}{
		{"local file found", SourceLocal, nil, "ready", "ready"},
		{"upload active", SourceUpload, nil, "ready", "ready"},
		{"no data", SourceLocal, errors.New("data file not found"), "not_ready", "not_ready"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checker := new(mockDataChecker)
			checker.On("CheckData", mock.Anything).Return(tt.source, tt.err)

			hs := NewHealthService("1.2.3", "", checker, discardLogger())
			status := hs.ReadinessCheck(context.Background())

			assert.Equal(t, tt.wantStatus, status.Status)
			require.Contains(t, status.Services, "data")
			assert.Equal(t, tt.wantData, status.Services["data"].Status)
			assert.Equal(t, tt.source, status.Services["data"].Source)
			checker.AssertExpectations(t)
		})
	}
}

func TestHealthService_NilChecker(t *testing.T) {
	hs := NewHealthService("1.2.3", "", nil, discardLogger())
	assert.Equal(t, "not_ready", hs.ReadinessCheck(context.Background()).Status)
}

func TestHealthService_LivenessAndVersion(t *testing.T) {
	hs := NewHealthService("1.2.3", "2026-01-01T00:00:00Z", nil, discardLogger())
	ctx := context.Background()

	assert.Equal(t, "ok", hs.HealthCheck(ctx).Status)

	live := hs.LivenessCheck(ctx)
	assert.Equal(t, "alive", live.Status)
	require.NotNil(t, live.Runtime)
	assert.Positive(t, live.Runtime.Goroutines)

	v := hs.Version()
	assert.Equal(t, "1.2.3", v["version"])
	assert.Equal(t, "2026-01-01T00:00:00Z", v["build_time"])
}

func TestHealthService_WithDashboardService(t *testing.T) {
	f := newFixture(t, true)
	hs := NewHealthService("1.2.3", "", f.svc, discardLogger())

	status := hs.ReadinessCheck(context.Background())
	assert.Equal(t, "ready", status.Status)
	assert.Equal(t, SourceLocal, status.Services["data"].Source)
}
