package config

// Application constants
const (
	AppName    = "edudash"
	AppVersion = "1.0.0"

	DefaultPageTitle = "Dashboard Educativo"
	DefaultDataFile  = "dataset_educativo_1000_realista_puntoycoma.csv"
	DefaultLogoFile  = "imagen/logo.png"

	// Export file names offered to the browser
	ExportCSVName  = "datos_filtrados.csv"
	ExportXLSXName = "datos_filtrados.xlsx"

	APIBasePath     = "/api"
	MetricsEndpoint = "/metrics"
)
