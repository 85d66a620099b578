package config

import (
	"context"
	"fmt"
	"strings"

	featuregate "github.com/goliatone/go-featuregate/gate"
)

// StaticGate answers feature checks from configuration. Keys that are not
// listed are enabled.
type StaticGate struct {
	flags map[string]bool
}

// NewStaticGate builds a gate from the features section.
func NewStaticGate(features map[string]any) *StaticGate {
	return &StaticGate{flags: FlattenFeatures(features)}
}

var _ featuregate.FeatureGate = (*StaticGate)(nil)

// Enabled implements featuregate.FeatureGate. Scope options are ignored;
// overrides apply to every guild.
func (g *StaticGate) Enabled(_ context.Context, key string, _ ...featuregate.ResolveOption) (bool, error) {
	if g == nil {
		return true, nil
	}
	enabled, ok := g.flags[strings.ToLower(strings.TrimSpace(key))]
	if !ok {
		return true, nil
	}
	return enabled, nil
}

// FeatureGate returns the static gate for the loaded configuration.
func (c *Config) FeatureGate() *StaticGate {
	return NewStaticGate(c.Features)
}

// FlattenFeatures turns nested feature maps into dotted keys. Values that are
// not booleans are parsed from their string form; anything unparseable is
// dropped.
func FlattenFeatures(features map[string]any) map[string]bool {
	out := make(map[string]bool)
	flattenInto(out, "", features)
	return out
}

func flattenInto(out map[string]bool, prefix string, values map[string]any) {
	for key, value := range values {
		name := strings.ToLower(strings.TrimSpace(key))
		if prefix != "" {
			name = prefix + "." + name
		}
		switch v := value.(type) {
		case bool:
			out[name] = v
		case map[string]any:
			flattenInto(out, name, v)
		case map[any]any:
			nested := make(map[string]any, len(v))
			for k, val := range v {
				nested[fmt.Sprint(k)] = val
			}
			flattenInto(out, name, nested)
		case string:
			switch strings.ToLower(strings.TrimSpace(v)) {
			case "true", "on", "yes", "1":
				out[name] = true
			case "false", "off", "no", "0":
				out[name] = false
			}
		}
	}
}
