package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/palisadehq/palisade/pkg/ratelimit"
)

// presetFile is the on-disk shape of a rate limit preset override file:
//
//	presets:
//	  api:
//	    max: 100
//	    window: 15m
//	  search:
//	    max: 30
//	    window: 1m
type presetFile struct {
	Presets map[string]presetEntry `yaml:"presets"`
}

type presetEntry struct {
	Max    int           `yaml:"max"`
	Window time.Duration `yaml:"window"`
}

// LoadPresets reads a YAML preset file and returns the merged preset map.
// Entries missing from the file keep their built-in defaults, so a file may
// override a single preset without restating the rest.
func LoadPresets(path string) (map[string]ratelimit.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read preset file: %w", err)
	}
	return parsePresets(data)
}

func parsePresets(data []byte) (map[string]ratelimit.Config, error) {
	var file presetFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse preset file: %w", err)
	}

	presets := ratelimit.DefaultPresets()
	for name, entry := range file.Presets {
		if entry.Max <= 0 {
			return nil, fmt.Errorf("preset %q: max must be positive, got %d", name, entry.Max)
		}
		if entry.Window <= 0 {
			return nil, fmt.Errorf("preset %q: window must be positive, got %s", name, entry.Window)
		}
		presets[name] = ratelimit.Config{Max: entry.Max, Window: entry.Window}
	}

	return presets, nil
}
