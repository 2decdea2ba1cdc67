package analytics

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"edudash/pkg/contracts/domain"
)

// ComputeKPIs sums the counts and averages attendance and grade.
// PassRate is 0 when nothing is enrolled.
func ComputeKPIs(ds *domain.Dataset) domain.KPIs {
	var k domain.KPIs
	attendance := make([]float64, 0, ds.Len())
	grades := make([]float64, 0, ds.Len())
	sites := make(map[string]struct{})

	for _, r := range ds.Records {
		k.TotalEnrollment += r.Inscripciones
		k.TotalPassed += r.Aprobados
		k.TotalFailed += r.Desaprobados
		k.TotalWithdrawn += r.Retiros
		attendance = append(attendance, r.Asistencia)
		grades = append(grades, r.PromedioFinal)
		sites[r.Sede] = struct{}{}
	}

	k.AvgAttendance = mean(attendance)
	k.AvgGrade = mean(grades)
	k.PassRate = PassRate(k.TotalPassed, k.TotalEnrollment)
	k.ActiveSites = len(sites)
	return k
}

// PassRate returns passed/enrolled as a percentage, or 0 without enrollment
func PassRate(passed, enrolled int64) float64 {
	if enrolled <= 0 {
		return 0
	}
	return float64(passed) / float64(enrolled) * 100
}

// Funnel lays the KPI totals out as the four display stages. The stages
// overlap and do not form a true funnel.
func Funnel(k domain.KPIs) []domain.FunnelStage {
	return []domain.FunnelStage{
		{Stage: domain.StageEnrolled, Label: domain.ColInscripciones, Total: k.TotalEnrollment},
		{Stage: domain.StagePassed, Label: domain.ColAprobados, Total: k.TotalPassed},
		{Stage: domain.StageFailed, Label: domain.ColDesaprobados, Total: k.TotalFailed},
		{Stage: domain.StageWithdrawn, Label: domain.ColRetiros, Total: k.TotalWithdrawn},
	}
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return stat.Mean(values, nil)
}

// round1 rounds to one decimal, halves to even
func round1(v float64) float64 {
	return math.RoundToEven(v*10) / 10
}
