package config

import (
	"fmt"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// EnvPrefix namespaces every environment variable read by Load
const EnvPrefix = "EDUDASH"

// Config represents the complete application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server" envconfig:"SERVER"`
	Dashboard DashboardConfig `yaml:"dashboard" envconfig:"DASHBOARD"`
	Security  SecurityConfig  `yaml:"security" envconfig:"SECURITY"`
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Paths     PathsConfig     `yaml:"paths" envconfig:"PATHS"`
	Telemetry TelemetryConfig `yaml:"telemetry" envconfig:"TELEMETRY"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port            int           `yaml:"port" envconfig:"PORT" default:"8501"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT" default:"30s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT" default:"60s"`
	MaxHeaderBytes  int           `yaml:"max_header_bytes" envconfig:"MAX_HEADER_BYTES" default:"1048576"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT" default:"30s"`
}

// DashboardConfig holds page settings and the data source defaults
type DashboardConfig struct {
	Title          string `yaml:"title" envconfig:"TITLE" default:"Dashboard Educativo"`
	Layout         string `yaml:"layout" envconfig:"LAYOUT" default:"wide"`
	DataFile       string `yaml:"data_file" envconfig:"DATA_FILE" default:"dataset_educativo_1000_realista_puntoycoma.csv"`
	LogoFile       string `yaml:"logo_file" envconfig:"LOGO_FILE" default:"imagen/logo.png"`
	MaxUploadBytes int64  `yaml:"max_upload_bytes" envconfig:"MAX_UPLOAD_BYTES" default:"33554432"`
	CheckModTime   bool   `yaml:"check_mod_time" envconfig:"CHECK_MOD_TIME" default:"true"`
	RecordsLimit   int    `yaml:"records_limit" envconfig:"RECORDS_LIMIT" default:"1000"`
	ChartWidth     int    `yaml:"chart_width" envconfig:"CHART_WIDTH" default:"1024"`
	ChartHeight    int    `yaml:"chart_height" envconfig:"CHART_HEIGHT" default:"480"`
}

// SecurityConfig contains security-related configuration
type SecurityConfig struct {
	AllowedOrigins []string        `yaml:"allowed_origins" envconfig:"ALLOWED_ORIGINS" default:"http://localhost:8501"`
	EnableCORS     bool            `yaml:"enable_cors" envconfig:"ENABLE_CORS" default:"true"`
	RateLimit      RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// RateLimitConfig contains rate limiting configuration
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED" default:"true"`
	RPS     float64 `yaml:"rps" envconfig:"RPS" default:"100"`
	Burst   int     `yaml:"burst" envconfig:"BURST" default:"50"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level       string `yaml:"level" envconfig:"LEVEL" default:"info"`
	Format      string `yaml:"format" envconfig:"FORMAT" default:"json"`
	Output      string `yaml:"output" envconfig:"OUTPUT" default:"console"`
	FilePath    string `yaml:"file_path" envconfig:"FILE_PATH" default:"logs/edudash.log"`
	Development bool   `yaml:"development" envconfig:"DEVELOPMENT" default:"false"`
}

// PathsConfig overrides the directories searched for the data file and logo.
// Empty values are resolved from the executable location.
type PathsConfig struct {
	AppDir    string `yaml:"app_dir" envconfig:"APP_DIR"`
	ModuleDir string `yaml:"module_dir" envconfig:"MODULE_DIR"`
}

// TelemetryConfig selects the tracing exporter and metric namespace
type TelemetryConfig struct {
	ServiceName   string `yaml:"service_name" envconfig:"SERVICE_NAME" default:"edudash"`
	TraceExporter string `yaml:"trace_exporter" envconfig:"TRACE_EXPORTER" default:"none"`
}

// Load loads configuration from environment variables and config file
func Load() (*Config, error) {
	var cfg Config

	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if configFile := getConfigFilePath(); configFile != "" {
		fileConfig, err := loadFromFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
		cfg = mergeConfigs(*fileConfig, cfg)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// loadFromFile loads configuration from YAML file
func loadFromFile(filePath string) (*Config, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// mergeConfigs lays file values over env values that were left at their
// defaults. Variables explicitly set in the environment keep precedence.
func mergeConfigs(fileConfig, envConfig Config) Config {
	set := func(name string) bool {
		_, ok := os.LookupEnv(EnvPrefix + "_" + name)
		return ok
	}

	if fileConfig.Server.Port != 0 && !set("SERVER_PORT") {
		envConfig.Server.Port = fileConfig.Server.Port
	}
	if fileConfig.Server.ReadTimeout != 0 && !set("SERVER_READ_TIMEOUT") {
		envConfig.Server.ReadTimeout = fileConfig.Server.ReadTimeout
	}
	if fileConfig.Server.WriteTimeout != 0 && !set("SERVER_WRITE_TIMEOUT") {
		envConfig.Server.WriteTimeout = fileConfig.Server.WriteTimeout
	}

	if fileConfig.Dashboard.Title != "" && !set("DASHBOARD_TITLE") {
		envConfig.Dashboard.Title = fileConfig.Dashboard.Title
	}
	if fileConfig.Dashboard.Layout != "" && !set("DASHBOARD_LAYOUT") {
		envConfig.Dashboard.Layout = fileConfig.Dashboard.Layout
	}
	if fileConfig.Dashboard.DataFile != "" && !set("DASHBOARD_DATA_FILE") {
		envConfig.Dashboard.DataFile = fileConfig.Dashboard.DataFile
	}
	if fileConfig.Dashboard.LogoFile != "" && !set("DASHBOARD_LOGO_FILE") {
		envConfig.Dashboard.LogoFile = fileConfig.Dashboard.LogoFile
	}
	if fileConfig.Dashboard.MaxUploadBytes != 0 && !set("DASHBOARD_MAX_UPLOAD_BYTES") {
		envConfig.Dashboard.MaxUploadBytes = fileConfig.Dashboard.MaxUploadBytes
	}
	if fileConfig.Dashboard.ChartWidth != 0 && !set("DASHBOARD_CHART_WIDTH") {
		envConfig.Dashboard.ChartWidth = fileConfig.Dashboard.ChartWidth
	}
	if fileConfig.Dashboard.ChartHeight != 0 && !set("DASHBOARD_CHART_HEIGHT") {
		envConfig.Dashboard.ChartHeight = fileConfig.Dashboard.ChartHeight
	}

	if fileConfig.Logging.Level != "" && !set("LOGGING_LEVEL") {
		envConfig.Logging.Level = fileConfig.Logging.Level
	}
	if fileConfig.Logging.Output != "" && !set("LOGGING_OUTPUT") {
		envConfig.Logging.Output = fileConfig.Logging.Output
	}

	if fileConfig.Paths.AppDir != "" && !set("PATHS_APP_DIR") {
		envConfig.Paths.AppDir = fileConfig.Paths.AppDir
	}
	if fileConfig.Paths.ModuleDir != "" && !set("PATHS_MODULE_DIR") {
		envConfig.Paths.ModuleDir = fileConfig.Paths.ModuleDir
	}

	return envConfig
}

// validate validates the configuration
func (c *Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("server read timeout must be positive")
	}

	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server write timeout must be positive")
	}

	if c.Dashboard.DataFile == "" {
		return fmt.Errorf("dashboard data file name must be set")
	}

	if c.Dashboard.MaxUploadBytes <= 0 {
		return fmt.Errorf("max upload size must be positive")
	}

	switch c.Dashboard.Layout {
	case "wide", "centered":
	default:
		c.Dashboard.Layout = "wide"
	}

	if c.Security.EnableCORS && len(c.Security.AllowedOrigins) == 0 {
		return fmt.Errorf("at least one allowed origin must be specified")
	}

	if c.Logging.Format != "json" {
		c.Logging.Format = "json"
	}

	switch c.Logging.Output {
	case "console", "file", "both":
	default:
		c.Logging.Output = "console"
	}

	if c.Logging.Output != "console" && c.Logging.FilePath == "" {
		c.Logging.FilePath = "logs/edudash.log"
	}

	switch c.Telemetry.TraceExporter {
	case "none", "stdout":
	default:
		return fmt.Errorf("unknown trace exporter: %q", c.Telemetry.TraceExporter)
	}

	return nil
}

// getConfigFilePath returns the path to the config file
func getConfigFilePath() string {
	if p := os.Getenv(EnvPrefix + "_CONFIG_FILE"); p != "" {
		return p
	}

	locations := []string{
		"edudash.yaml",
		"configs/edudash.yaml",
		"../configs/edudash.yaml",
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return "" // No config file found, use env vars only
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8501,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			IdleTimeout:     60 * time.Second,
			MaxHeaderBytes:  1 << 20, // 1MB
			ShutdownTimeout: 30 * time.Second,
		},
		Dashboard: DashboardConfig{
			Title:          DefaultPageTitle,
			Layout:         "wide",
			DataFile:       DefaultDataFile,
			LogoFile:       DefaultLogoFile,
			MaxUploadBytes: 32 << 20,
			CheckModTime:   true,
			RecordsLimit:   1000,
			ChartWidth:     1024,
			ChartHeight:    480,
		},
		Security: SecurityConfig{
			AllowedOrigins: []string{"http://localhost:8501"},
			EnableCORS:     true,
			RateLimit: RateLimitConfig{
				Enabled: true,
				RPS:     100,
				Burst:   50,
			},
		},
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "json",
			Output:   "console",
			FilePath: "logs/edudash.log",
		},
		Telemetry: TelemetryConfig{
			ServiceName:   "edudash",
			TraceExporter: "none",
		},
	}
}
