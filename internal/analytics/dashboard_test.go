package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"edudash/pkg/contracts/domain"
)

func TestBuild(t *testing.T) {
	ds := scenario()
	before := append([]domain.Record(nil), ds.Records...)

	d := Build(ds)

	assert.Equal(t, 3, d.Rows)
	assert.Equal(t, ComputeKPIs(ds), d.KPIs)
	assert.Len(t, d.EnrollmentByCourse, 2)
	assert.Len(t, d.ResultsBySite, 4)
	require.Len(t, d.AttendanceByMonth, 2)
	assert.Equal(t, "Mar", d.AttendanceByMonth[0].Mes)
	assert.Len(t, d.Funnel, 4)
	assert.Len(t, d.GradeHistogram, HistogramBins)
	assert.Len(t, d.GradeSpread, 2)
	assert.Len(t, d.AttendanceVsGrade, 3)
	assert.Len(t, d.EnrollmentHierarchy, 2)
	assert.Equal(t, []string{"A", "B"}, d.PassRateMatrix.Rows)

	assert.Equal(t, before, ds.Records, "aggregation must not modify its input")
}
