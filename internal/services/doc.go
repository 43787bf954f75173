// Package services defines shared utilities consumed by the translation
// pipeline and backend integrations.
//
// Key responsibilities:
//   - Context helpers that stamp run IDs, input file names, and correlation
//     identifiers for logging and tracing.
//   - Structured error markers plus the Wrap helper that classify failures
//     into configuration, backend-request, exhaustion, and validation
//     categories.
//
// Use these helpers when wiring new pipeline logic so operational behaviour
// (error handling, observability) stays uniform across the run.
package services
