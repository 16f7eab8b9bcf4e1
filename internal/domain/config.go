package domain

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Plot configuration keys.
const (
	KeyFigSize     = "figsize"
	KeyVMin        = "vmin"
	KeyVMax        = "vmax"
	KeyCMap        = "cmap"
	KeyTitle       = "title"
	KeyCTicks      = "cticks"
	KeyCTickLabels = "cticks_labels"
	KeyProjection  = "projection"
)

// RequiredKeys lists the keys every plot configuration must carry, in the
// order they are checked.
var RequiredKeys = []string{KeyFigSize, KeyVMin, KeyVMax, KeyCMap, KeyTitle}

// PlotConfig holds the plotting parameters of one figure.
//
// Key presence can only be checked on the mapping, so configurations should
// come from PlotConfigFromMap, ParsePlotConfig or LoadPlotConfig. A literal
// that omits VMax is indistinguishable from one with VMax set to 0.
type PlotConfig struct {
	FigSize     [2]float64 // width, height in inches
	VMin, VMax  float64
	CMap        string
	Title       string
	CTicks      []float64
	CTickLabels []string

	// Projection names the map projection. Empty selects the orthographic
	// view.
	Projection string
}

// HasTicks reports whether explicit colorbar ticks were configured.
func (c PlotConfig) HasTicks() bool { return len(c.CTicks) > 0 }

// TickLabels returns the labels paired with CTicks. Ticks configured
// without labels are labelled with their values.
func (c PlotConfig) TickLabels() []string {
	if len(c.CTickLabels) == len(c.CTicks) {
		return c.CTickLabels
	}
	out := make([]string, len(c.CTicks))
	for k, v := range c.CTicks {
		out[k] = strconv.FormatFloat(v, 'g', -1, 64)
	}
	return out
}

// Validate checks value constraints. Key presence is checked by
// PlotConfigFromMap.
func (c PlotConfig) Validate() error {
	if c.FigSize[0] <= 0 || c.FigSize[1] <= 0 {
		return &ConfigurationError{Key: KeyFigSize, Reason: fmt.Sprintf("must be two positive sizes, got %v", c.FigSize)}
	}
	if !(c.VMin < c.VMax) {
		return &ConfigurationError{Key: KeyVMax, Reason: fmt.Sprintf("vmax (%g) must be greater than vmin (%g)", c.VMax, c.VMin)}
	}
	if strings.TrimSpace(c.CMap) == "" {
		return &ConfigurationError{Key: KeyCMap, Reason: "must not be empty"}
	}
	if len(c.CTickLabels) > 0 && len(c.CTicks) == 0 {
		return &ConfigurationError{Key: KeyCTickLabels, Reason: "given without cticks"}
	}
	if len(c.CTickLabels) > 0 && len(c.CTickLabels) != len(c.CTicks) {
		return &ConfigurationError{Key: KeyCTickLabels, Reason: fmt.Sprintf("%d labels for %d ticks", len(c.CTickLabels), len(c.CTicks))}
	}
	return nil
}

// PlotConfigFromMap builds a PlotConfig from a key/value mapping such as a
// decoded YAML document or a set of query parameters. Values may be native
// YAML scalars and sequences, or strings with comma separated lists.
func PlotConfigFromMap(m map[string]any) (PlotConfig, error) {
	var cfg PlotConfig
	for _, key := range RequiredKeys {
		if _, ok := m[key]; !ok {
			return PlotConfig{}, &ConfigurationError{Key: key, Reason: "required key is missing"}
		}
	}

	size, err := toFloats(m[KeyFigSize], ",x")
	if err != nil {
		return PlotConfig{}, &ConfigurationError{Key: KeyFigSize, Reason: err.Error()}
	}
	if len(size) != 2 {
		return PlotConfig{}, &ConfigurationError{Key: KeyFigSize, Reason: fmt.Sprintf("want 2 values, got %d", len(size))}
	}
	cfg.FigSize = [2]float64{size[0], size[1]}

	if cfg.VMin, err = toFloat(m[KeyVMin]); err != nil {
		return PlotConfig{}, &ConfigurationError{Key: KeyVMin, Reason: err.Error()}
	}
	if cfg.VMax, err = toFloat(m[KeyVMax]); err != nil {
		return PlotConfig{}, &ConfigurationError{Key: KeyVMax, Reason: err.Error()}
	}
	cfg.CMap = toString(m[KeyCMap])
	cfg.Title = toString(m[KeyTitle])

	if v, ok := m[KeyCTicks]; ok && v != nil {
		if cfg.CTicks, err = toFloats(v, ","); err != nil {
			return PlotConfig{}, &ConfigurationError{Key: KeyCTicks, Reason: err.Error()}
		}
	}
	if v, ok := m[KeyCTickLabels]; ok && v != nil {
		cfg.CTickLabels = toStrings(v)
	}
	if v, ok := m[KeyProjection]; ok && v != nil {
		cfg.Projection = toString(v)
	}

	if err := cfg.Validate(); err != nil {
		return PlotConfig{}, err
	}
	return cfg, nil
}

// ParsePlotConfig decodes a YAML plot configuration.
func ParsePlotConfig(data []byte) (PlotConfig, error) {
	var m map[string]any
	if err := yaml.Unmarshal(data, &m); err != nil {
		return PlotConfig{}, fmt.Errorf("failed to decode plot config: %w", err)
	}
	if m == nil {
		m = map[string]any{}
	}
	return PlotConfigFromMap(m)
}

// LoadPlotConfig reads a YAML plot configuration file.
func LoadPlotConfig(path string) (PlotConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return PlotConfig{}, fmt.Errorf("failed to read plot config %s: %w", path, err)
	}
	return ParsePlotConfig(data)
}

func toFloat(v any) (float64, error) {
	switch x := v.(type) {
	case float64:
		return x, nil
	case float32:
		return float64(x), nil
	case int:
		return float64(x), nil
	case int64:
		return float64(x), nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0, fmt.Errorf("invalid number %q", x)
		}
		return f, nil
	case nil:
		return 0, fmt.Errorf("value is empty")
	default:
		return 0, fmt.Errorf("unsupported value %v (%T)", v, v)
	}
}

func toFloats(v any, seps string) ([]float64, error) {
	switch x := v.(type) {
	case []float64:
		return x, nil
	case [2]float64:
		return x[:], nil
	case []any:
		out := make([]float64, len(x))
		for k, e := range x {
			f, err := toFloat(e)
			if err != nil {
				return nil, err
			}
			out[k] = f
		}
		return out, nil
	case string:
		fields := splitList(x, seps)
		out := make([]float64, len(fields))
		for k, s := range fields {
			f, err := toFloat(s)
			if err != nil {
				return nil, err
			}
			out[k] = f
		}
		return out, nil
	default:
		return nil, fmt.Errorf("expected a list of numbers, got %v (%T)", v, v)
	}
}

func toString(v any) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

func toStrings(v any) []string {
	switch x := v.(type) {
	case []string:
		return x
	case []any:
		out := make([]string, len(x))
		for k, e := range x {
			out[k] = toString(e)
		}
		return out
	case string:
		return splitList(x, ",")
	default:
		return []string{toString(v)}
	}
}

// splitList splits s at any rune of seps into trimmed, non-empty fields.
func splitList(s, seps string) []string {
	parts := strings.FieldsFunc(s, func(r rune) bool { return strings.ContainsRune(seps, r) })
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
