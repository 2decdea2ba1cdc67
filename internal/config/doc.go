// Package config provides configuration management for edudash.
// It loads settings from the environment and an optional YAML file and
// resolves the directories in which the data file and logo are searched.
//
// # Configuration Sources
//
// Configuration is loaded from the following sources in order of precedence:
//
//	1. Environment variables (highest priority)
//	2. edudash.yaml (or the file named by EDUDASH_CONFIG_FILE)
//	3. Default values (lowest priority)
//
// # Environment Variables
//
// All environment variables follow the pattern EDUDASH_<SECTION>_<FIELD>:
//
//	EDUDASH_SERVER_PORT=8501
//	EDUDASH_DASHBOARD_TITLE="Dashboard Educativo"
//	EDUDASH_DASHBOARD_DATA_FILE=dataset_educativo_1000_realista_puntoycoma.csv
//	EDUDASH_PATHS_APP_DIR=/srv/edudash
//	EDUDASH_LOGGING_LEVEL=debug
//	EDUDASH_TELEMETRY_TRACE_EXPORTER=stdout
//
// # Path Resolution
//
// Files such as the default CSV and the logo are looked up first in the
// application root and then next to the executable:
//
//	paths, err := config.GetPaths(cfg.Paths)
//	if csv, ok := paths.Locate(cfg.Dashboard.DataFile); ok {
//	    // load csv
//	}
package config
