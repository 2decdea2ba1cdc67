package dataset

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"edudash/internal/config"
)

func newTestResolver(t *testing.T) (*Resolver, string, string) {
	t.Helper()
	app := t.TempDir()
	module := filepath.Join(app, "pages")
	paths := &config.Paths{AppDir: app, ModuleDir: module}
	return NewResolver(paths, "", ""), app, module
}

func TestResolverNotFound(t *testing.T) {
	r, app, module := newTestResolver(t)

	_, err := r.Resolve()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDataUnavailable)

	var unavailable *DataUnavailableError
	require.ErrorAs(t, err, &unavailable)
	assert.Equal(t, filepath.Join(app, config.DefaultDataFile), unavailable.Expected)
	assert.Equal(t, []string{
		filepath.Join(app, config.DefaultDataFile),
		filepath.Join(module, config.DefaultDataFile),
	}, unavailable.Searched)
	assert.Contains(t, err.Error(), unavailable.Expected)
}

func TestResolverPrefersAppDir(t *testing.T) {
	r, app, module := newTestResolver(t)

	inModule := writeFile(t, module, config.DefaultDataFile, scenarioCSV)
	got, err := r.Resolve()
	require.NoError(t, err)
	assert.Equal(t, inModule, got)

	inApp := writeFile(t, app, config.DefaultDataFile, scenarioCSV)
	got, err = r.Resolve()
	require.NoError(t, err)
	assert.Equal(t, inApp, got)
}

func TestResolverLogo(t *testing.T) {
	r, _, module := newTestResolver(t)

	_, ok := r.Logo()
	assert.False(t, ok)

	logo := writeFile(t, module, config.DefaultLogoFile, "png")
	got, ok := r.Logo()
	require.True(t, ok)
	assert.Equal(t, logo, got)
}
