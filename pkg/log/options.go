package log

import (
	"fmt"

	"github.com/mitchellh/mapstructure"
)

// ConfigFromMap decodes a loosely typed option map into a Config. Embedders
// passing options through their own config plumbing use this instead of
// depending on the concrete struct shape.
func ConfigFromMap(options map[string]interface{}) (Config, error) {
	cfg := DefaultConfig()
	if err := mapstructure.Decode(options, &cfg); err != nil {
		return Config{}, fmt.Errorf("log: decode options: %w", err)
	}
	return cfg, nil
}
