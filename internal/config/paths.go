package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Paths holds the two directories searched for the data file and the logo.
// AppDir is the application root; ModuleDir is the directory of the
// running binary. When the binary sits in a "bin" or "pages" folder the
// application root is its parent.
type Paths struct {
	AppDir    string
	ModuleDir string
}

// GetPaths resolves the search directories. Explicit values in cfg win;
// otherwise both are derived from the executable location.
func GetPaths(cfg PathsConfig) (*Paths, error) {
	moduleDir := cfg.ModuleDir
	if moduleDir == "" {
		exe, err := os.Executable()
		if err != nil {
			return nil, fmt.Errorf("failed to get executable path: %w", err)
		}

		// Resolve symlinks to get the actual executable location
		exe, err = filepath.EvalSymlinks(exe)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve executable symlinks: %w", err)
		}
		moduleDir = filepath.Dir(exe)
	}

	appDir := cfg.AppDir
	if appDir == "" {
		appDir = appRootOf(moduleDir)
	}

	absApp, err := filepath.Abs(appDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve app dir: %w", err)
	}
	absModule, err := filepath.Abs(moduleDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve module dir: %w", err)
	}

	return &Paths{AppDir: absApp, ModuleDir: absModule}, nil
}

func appRootOf(dir string) string {
	switch filepath.Base(dir) {
	case "bin", "pages":
		return filepath.Dir(dir)
	}
	return dir
}

// Candidates returns the lookup order for a file relative to the search
// directories: application root first, then the module directory.
func (p *Paths) Candidates(name string) []string {
	if filepath.IsAbs(name) {
		return []string{name}
	}

	candidates := []string{filepath.Join(p.AppDir, name)}
	if p.ModuleDir != p.AppDir {
		candidates = append(candidates, filepath.Join(p.ModuleDir, name))
	}
	return candidates
}

// FindFirstExisting returns the first candidate that exists as a regular file
func FindFirstExisting(candidates []string) (string, bool) {
	for _, c := range candidates {
		if info, err := os.Stat(c); err == nil && !info.IsDir() {
			return c, true
		}
	}
	return "", false
}

// Locate resolves name with the dual-path lookup
func (p *Paths) Locate(name string) (string, bool) {
	return FindFirstExisting(p.Candidates(name))
}

// LogPathResolution logs the resolved search directories
func (p *Paths) LogPathResolution(logger *slog.Logger) {
	if logger == nil {
		return
	}

	wd, _ := os.Getwd()
	logger.Info("Path resolution summary",
		slog.Group("directories",
			slog.String("app", p.AppDir),
			slog.String("module", p.ModuleDir),
			slog.String("working", wd),
		))
}
