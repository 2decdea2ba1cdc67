package exporter

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"edudash/internal/dataset"
	"edudash/internal/filter"
	"edudash/pkg/contracts/domain"
)

const sampleCSV = "Periodo;Sede;Turno;Grado;Curso;Seccion_ID;Mes;Inscripciones;Aprobados;Desaprobados;Retiros;Asistencia_Promedio_%;Promedio_Final;Observación\n" +
	"2024-I;A;Mañana;1ro;Math;S1;Mar;10;8;2;0;90;7.0;ok\n" +
	"2024-I;A;Mañana;1ro;Math;S2;Abr;5;3;2;0;80.25;6.5;\"con; punto y coma\"\n" +
	"2024-I;B;Tarde;2do;Sci;S3;Mar;20;15;5;1;85;7.5;\"dice \"\"hola\"\"\"\n" +
	"2024-II;B;Tarde;2do;Sci;S4;Dic;7;4;3;0;60.5;5.25;revisar\n"

func loadSample(t *testing.T) *domain.Dataset {
	t.Helper()
	ds, err := dataset.NewLoader(nil).LoadReader(context.Background(), "sample.csv", strings.NewReader(sampleCSV))
	require.NoError(t, err)
	clean, _ := dataset.Clean(ds)
	return clean
}

func TestWriteDatasetFormat(t *testing.T) {
	ds := loadSample(t)
	w := NewCSVWriter(dataset.Separator, nil)

	out, err := w.DatasetBytes(ds)
	require.NoError(t, err)

	assert.True(t, bytes.HasPrefix(out, utf8BOM))
	lines := strings.Split(strings.TrimSuffix(string(out[len(utf8BOM):]), "\n"), "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, strings.Join(ds.Header, ";"), lines[0])
	assert.Equal(t, "2024-I;A;Mañana;1ro;Math;S1;Mar;10;8;2;0;90;7;ok", lines[1])
	assert.Equal(t, `2024-I;A;Mañana;1ro;Math;S2;Abr;5;3;2;0;80.25;6.5;"con; punto y coma"`, lines[2])
}

// Exporting the filtered rows and loading them again gives the same rows
func TestCSVRoundTrip(t *testing.T) {
	ds := loadSample(t)
	selections := []domain.Selection{
		filter.DefaultSelection(ds),
		domain.NewSelection().With(domain.DimSede, "B"),
		domain.NewSelection().With(domain.DimMes, "Mar", "Dic"),
	}

	w := NewCSVWriter(dataset.Separator, nil)
	for _, sel := range selections {
		filtered := filter.Apply(ds, sel)

		out, err := w.DatasetBytes(filtered)
		require.NoError(t, err)

		reloaded, err := dataset.NewLoader(nil).LoadReader(context.Background(), "datos_filtrados.csv", bytes.NewReader(out))
		require.NoError(t, err)

		assert.Equal(t, filtered.Header, reloaded.Header)
		assert.Equal(t, filtered.Extra, reloaded.Extra)
		assert.Equal(t, filtered.HasMonth, reloaded.HasMonth)
		assert.Equal(t, filtered.Records, reloaded.Records)
	}
}

func TestCSVRoundTripBareQuotes(t *testing.T) {
	content := "Periodo;Sede;Turno;Grado;Curso;Seccion_ID;Inscripciones;Aprobados;Desaprobados;Retiros;Asistencia_Promedio_%;Promedio_Final\n" +
		"2024-I;Colegio \"San Jose\";Mañana;1ro;Math;S1;10;8;2;0;90;7.0\n"
	ds, err := dataset.NewLoader(nil).LoadReader(context.Background(), "comillas.csv", strings.NewReader(content))
	require.NoError(t, err)

	out, err := NewCSVWriter(dataset.Separator, nil).DatasetBytes(ds)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"Colegio ""San Jose"""`)

	reloaded, err := dataset.NewLoader(nil).LoadReader(context.Background(), "datos_filtrados.csv", bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, ds.Records, reloaded.Records)
	assert.Equal(t, `Colegio "San Jose"`, reloaded.Records[0].Sede)
}

func TestWriteFile(t *testing.T) {
	ds := loadSample(t)
	path := filepath.Join(t.TempDir(), "out", "datos_filtrados.csv")

	require.NoError(t, NewCSVWriter(dataset.Separator, nil).WriteFile(path, ds))

	reloaded, err := dataset.NewLoader(nil).LoadFile(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, ds.Records, reloaded.Records)
}

func TestWriteFileUnwritable(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))

	err := NewCSVWriter(dataset.Separator, nil).WriteFile(filepath.Join(blocker, "out.csv"), loadSample(t))
	assert.Error(t, err)
}
