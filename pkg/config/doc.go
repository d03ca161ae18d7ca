// Package config loads application configuration from environment
// variables and optional YAML preset files.
//
// All variables use the PALISADE_ prefix. Every setting has a sensible
// default so the binary starts with no environment at all: in-memory
// counter store, in-memory tenant directory, development environment.
//
// Rate limit presets can be overridden by pointing
// PALISADE_RATELIMIT_PRESET_FILE at a YAML file; WatchPresets reloads it
// on change without a restart.
package config
