// Package app wires the dashboard server together and manages its lifecycle.
//
// # Initialization Flow
//
//	1. Load configuration from environment and the optional YAML file
//	2. Initialize logging and OpenTelemetry (traces plus Prometheus metrics)
//	3. Resolve the data file search directories
//	4. Build the dataset loader and cache, then the dashboard and health services
//	5. Set up the chi router with middleware, the JSON API and the page
//	6. Configure the HTTP server
//
// # Usage
//
//	application, err := app.NewApplication()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := application.Run(); err != nil {
//	    log.Fatal(err)
//	}
//
// # Graceful Shutdown
//
// Run blocks until SIGINT or SIGTERM, then drains in-flight requests within
// Server.ShutdownTimeout and flushes the telemetry providers.
//
// # Error Handling
//
// Initialization errors are returned to the caller. The package never
// calls os.Exit itself.
package app
