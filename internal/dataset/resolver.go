package dataset

import (
	"edudash/internal/config"
)

// Resolver finds the default data file and the logo with the dual-path
// lookup of config.Paths.
type Resolver struct {
	paths    *config.Paths
	dataFile string
	logoFile string
}

// NewResolver creates a resolver for the given file names
func NewResolver(paths *config.Paths, dataFile, logoFile string) *Resolver {
	if dataFile == "" {
		dataFile = config.DefaultDataFile
	}
	if logoFile == "" {
		logoFile = config.DefaultLogoFile
	}
	return &Resolver{paths: paths, dataFile: dataFile, logoFile: logoFile}
}

// Resolve returns the first existing data file candidate
func (r *Resolver) Resolve() (string, error) {
	candidates := r.paths.Candidates(r.dataFile)
	if path, ok := config.FindFirstExisting(candidates); ok {
		return path, nil
	}
	return "", &DataUnavailableError{
		Expected: r.Expected(),
		Searched: candidates,
	}
}

// Expected is the recommended location of the data file
func (r *Resolver) Expected() string {
	return r.paths.Candidates(r.dataFile)[0]
}

// Logo returns the logo path if one of the candidates exists
func (r *Resolver) Logo() (string, bool) {
	return r.paths.Locate(r.logoFile)
}
