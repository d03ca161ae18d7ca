package ratelimit

import "time"

// Config is the resolved rate limit for a route: a fixed window and the
// maximum number of requests allowed inside it. Routes reference configs by
// preset name; everything is resolved to this struct before use.
type Config struct {
	// Max is the number of requests allowed per window
	Max int
	// Window is the counting window duration
	Window time.Duration
}

// DefaultPreset is the preset applied when a route names no preset, and the
// fallback for unknown preset names.
const DefaultPreset = "api"

// Preset names understood out of the box
const (
	PresetAPI      = "api"
	PresetAuth     = "auth"
	PresetSearch   = "search"
	PresetUpload   = "upload"
	PresetResource = "resource"
)

// DefaultPresets returns the built-in preset table
func DefaultPresets() map[string]Config {
	return map[string]Config{
		PresetAPI:      {Max: 100, Window: 15 * time.Minute},
		PresetAuth:     {Max: 5, Window: 15 * time.Minute},
		PresetSearch:   {Max: 30, Window: time.Minute},
		PresetUpload:   {Max: 20, Window: time.Hour},
		PresetResource: {Max: 60, Window: time.Minute},
	}
}
