package invoke

import (
	"fmt"

	"github.com/hupe1980/magma/routing"
)

// Well-known option-bag keys shared across providers.
const (
	optionModel       = "model"
	optionAPIKey      = "api_key"
	optionAPIBase     = "api_base"
	optionEndpoint    = "endpoint"
	optionTemperature = "temperature"
	optionMaxTokens   = "max_tokens"
)

func stringOption(options map[string]any, key string) (string, bool) {
	raw, ok := options[key]
	if !ok {
		return "", false
	}
	s, ok := raw.(string)
	if !ok || s == "" {
		return "", false
	}
	return s, true
}

// floatOption tolerates the numeric types an untyped option bag picks up
// from Go literals and JSON/YAML decoding.
func floatOption(options map[string]any, key string) (float64, bool) {
	raw, ok := options[key]
	if !ok {
		return 0, false
	}
	switch v := raw.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	default:
		return 0, false
	}
}

func intOption(options map[string]any, key string) (int64, bool) {
	raw, ok := options[key]
	if !ok {
		return 0, false
	}
	switch v := raw.(type) {
	case int:
		return int64(v), true
	case int64:
		return v, true
	case float64:
		return int64(v), true
	default:
		return 0, false
	}
}

// modelOption extracts the mandatory model name the routing projection
// writes into every client's option bag.
func modelOption(cfg routing.ClientConfig) (string, error) {
	model, ok := stringOption(cfg.Options, optionModel)
	if !ok {
		return "", fmt.Errorf("invoke: client %q has no model option", cfg.Name)
	}
	return model, nil
}
