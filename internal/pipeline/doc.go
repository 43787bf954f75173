// Package pipeline orchestrates batch translation runs.
//
// A run discovers translatable files in the input directory, splits each one
// into size-bounded chunks, pushes the chunks through the backend executor,
// validates the responses, and reassembles the outputs. Subtitle files take a
// dedicated path that preserves indices and timings exactly. Failures are
// isolated per file so one bad input never sinks the batch.
package pipeline
