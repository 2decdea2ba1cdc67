package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetPathsExplicit(t *testing.T) {
	app := t.TempDir()
	module := filepath.Join(app, "pages")

	paths, err := GetPaths(PathsConfig{AppDir: app, ModuleDir: module})
	require.NoError(t, err)
	assert.Equal(t, app, paths.AppDir)
	assert.Equal(t, module, paths.ModuleDir)
}

func TestGetPathsDerivesAppRoot(t *testing.T) {
	tests := []struct {
		module string
		want   string
	}{
		{module: "/srv/edudash/bin", want: "/srv/edudash"},
		{module: "/srv/edudash/pages", want: "/srv/edudash"},
		{module: "/srv/edudash", want: "/srv/edudash"},
	}

	for _, tt := range tests {
		t.Run(tt.module, func(t *testing.T) {
			paths, err := GetPaths(PathsConfig{ModuleDir: tt.module})
			require.NoError(t, err)
			assert.Equal(t, tt.want, paths.AppDir)
		})
	}
}

func TestGetPathsFromExecutable(t *testing.T) {
	paths, err := GetPaths(PathsConfig{})
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(paths.ModuleDir))
	assert.True(t, filepath.IsAbs(paths.AppDir))
}

func TestCandidatesOrder(t *testing.T) {
	p := &Paths{AppDir: "/app", ModuleDir: "/app/pages"}

	assert.Equal(t, []string{
		filepath.Join("/app", DefaultDataFile),
		filepath.Join("/app/pages", DefaultDataFile),
	}, p.Candidates(DefaultDataFile))

	same := &Paths{AppDir: "/app", ModuleDir: "/app"}
	assert.Len(t, same.Candidates(DefaultDataFile), 1)

	assert.Equal(t, []string{"/abs/file.csv"}, p.Candidates("/abs/file.csv"))
}

func TestLocate(t *testing.T) {
	app := t.TempDir()
	module := filepath.Join(app, "pages")
	require.NoError(t, os.MkdirAll(filepath.Join(module, "imagen"), 0755))

	p := &Paths{AppDir: app, ModuleDir: module}

	_, ok := p.Locate(DefaultDataFile)
	assert.False(t, ok)

	// only the module dir has it
	inModule := filepath.Join(module, DefaultDataFile)
	require.NoError(t, os.WriteFile(inModule, []byte("x"), 0644))
	got, ok := p.Locate(DefaultDataFile)
	require.True(t, ok)
	assert.Equal(t, inModule, got)

	// the app dir wins once both exist
	inApp := filepath.Join(app, DefaultDataFile)
	require.NoError(t, os.WriteFile(inApp, []byte("x"), 0644))
	got, ok = p.Locate(DefaultDataFile)
	require.True(t, ok)
	assert.Equal(t, inApp, got)

	logo := filepath.Join(module, "imagen", "logo.png")
	require.NoError(t, os.WriteFile(logo, []byte("png"), 0644))
	got, ok = p.Locate(DefaultLogoFile)
	require.True(t, ok)
	assert.Equal(t, logo, got)
}

func TestFindFirstExistingSkipsDirectories(t *testing.T) {
	dir := t.TempDir()
	_, ok := FindFirstExisting([]string{dir})
	assert.False(t, ok)
}
