// Package analytics computes the dashboard aggregates over a filtered
// dataset.
//
// Every function is pure: it reads the records of its input and returns
// new values without modifying the dataset. Callers are expected to stop
// before aggregation when the filtered dataset is empty (see
// filter.ErrEmptyResult); the functions nevertheless return zero values
// instead of NaN or panicking on empty input.
//
// Grouping order follows the rendered charts:
//
//	EnrollmentByCourse   descending total, ties in encounter order
//	ResultsBySite        sites sorted, all Aprobados rows then Desaprobados
//	AttendanceByMonth    fixed month order, unknown months last
//	PassRateMatrix       Sede rows x Curso columns, both sorted
//	AttendanceMatrix     Turno rows x Grado columns, both sorted
//	EnrollmentHierarchy  sorted by (Sede, Grado, Curso)
//	GradeSpreadByCourse  courses in encounter order
package analytics
