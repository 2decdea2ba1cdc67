package dataset

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const testHeader = "Periodo;Sede;Turno;Grado;Curso;Seccion_ID;Mes;Inscripciones;Aprobados;Desaprobados;Retiros;Asistencia_Promedio_%;Promedio_Final"

// scenarioCSV is the three-row dataset used across packages
var scenarioCSV = strings.Join([]string{
	testHeader,
	"2024-I;A;Mañana;1ro;Math;S1;Mar;10;8;2;0;90;7.0",
	"2024-I;A;Mañana;1ro;Math;S2;Abr;5;3;2;0;80;6.0",
	"2024-I;B;Tarde;2do;Sci;S3;Mar;20;15;5;0;85;7.5",
}, "\n") + "\n"

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}
