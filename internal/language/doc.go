// Package language provides unified language code normalization and mapping.
//
// All language-related conversions (ISO 639-1, ISO 639-2, display names,
// Chinese-variant detection) are consolidated here so the validator, prompt
// builder, and CLI agree on what a language name means.
package language
