// Package dataset loads, caches and cleans the educational records file.
//
// Input files are semicolon-delimited UTF-8 (a leading BOM is tolerated)
// with a header row naming at least the columns in
// domain.RequiredColumns. Mes is optional. Columns outside the schema are
// kept so that exports reproduce the original layout.
//
// Loading never drops data: cells holding a null token are recorded as
// missing on the Record and Clean removes those rows afterwards.
//
//	loader := dataset.NewLoader(logger)
//	cache := dataset.NewCache(loader, dataset.WithModTimeCheck(true))
//	raw, err := cache.Get(ctx, path)
//	if err != nil {
//	    // *DataUnavailableError, *SchemaError or *ParseError
//	}
//	clean, stats := dataset.Clean(raw)
package dataset
