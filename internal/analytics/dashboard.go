package analytics

import (
	"edudash/pkg/contracts/domain"
)

// Build computes every dashboard aggregate for ds
func Build(ds *domain.Dataset) domain.Dashboard {
	kpis := ComputeKPIs(ds)
	return domain.Dashboard{
		Rows:                ds.Len(),
		KPIs:                kpis,
		EnrollmentByCourse:  EnrollmentByCourse(ds),
		ResultsBySite:       ResultsBySite(ds),
		AttendanceByMonth:   AttendanceByMonth(ds),
		PassRateMatrix:      PassRateMatrix(ds),
		AttendanceMatrix:    AttendanceMatrix(ds),
		EnrollmentHierarchy: EnrollmentHierarchy(ds),
		Funnel:              Funnel(kpis),
		GradeHistogram:      GradeHistogram(ds),
		GradeSpread:         GradeSpreadByCourse(ds),
		AttendanceVsGrade:   AttendanceVsGrade(ds),
		Correlation:         Correlation(ds),
	}
}
