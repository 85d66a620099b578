package legacy

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/ghodss/yaml"
	"github.com/goliatone/go-gamerdb/pkg/types"
)

// jsonPlatform is one entry of the legacy platforms.json, keyed by name.
// Unconfigured entries carry a placeholder string instead of an id.
type jsonPlatform struct {
	Emoji any    `json:"emoji"`
	Link  string `json:"link,omitempty"`
}

type tomlFile struct {
	Platforms []tomlPlatform `toml:"platform"`
}

type tomlPlatform struct {
	Name  string `toml:"name"`
	Emoji int64  `toml:"emoji"`
}

// LoadPlatformSeeds reads a platforms file. The format follows the
// extension: .json and .yaml/.yml use the legacy `{name: {"emoji": id}}`
// shape, .toml uses `[[platform]]` tables. Entries without a numeric emoji
// id are skipped. Seeds come back ordered by name.
func LoadPlatformSeeds(path string) ([]types.PlatformSeed, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		var file tomlFile
		if _, err := toml.DecodeFile(path, &file); err != nil {
			return nil, fmt.Errorf("legacy: decode %s: %w", path, err)
		}
		seeds := make([]types.PlatformSeed, 0, len(file.Platforms))
		for _, platform := range file.Platforms {
			seeds = appendSeed(seeds, platform.Name, platform.Emoji)
		}
		return sortSeeds(seeds), nil
	case ".json", ".yaml", ".yml":
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("legacy: read %s: %w", path, err)
		}
		if ext := strings.ToLower(filepath.Ext(path)); ext != ".json" {
			if content, err = yaml.YAMLToJSON(content); err != nil {
				return nil, fmt.Errorf("legacy: decode %s: %w", path, err)
			}
		}
		return ParsePlatformsJSON(content)
	default:
		return nil, fmt.Errorf("legacy: unsupported platforms file %q", path)
	}
}

// ParsePlatformsJSON decodes the legacy platforms.json payload.
func ParsePlatformsJSON(content []byte) ([]types.PlatformSeed, error) {
	var raw map[string]jsonPlatform
	if err := json.Unmarshal(content, &raw); err != nil {
		return nil, fmt.Errorf("legacy: decode platforms: %w", err)
	}
	seeds := make([]types.PlatformSeed, 0, len(raw))
	for name, platform := range raw {
		seeds = appendSeed(seeds, name, emojiID(platform.Emoji))
	}
	return sortSeeds(seeds), nil
}

func appendSeed(seeds []types.PlatformSeed, name string, iconRef int64) []types.PlatformSeed {
	name = types.NormalizeName(name)
	if name == "" || name == playerColumn || iconRef <= 0 {
		return seeds
	}
	return append(seeds, types.PlatformSeed{Name: name, IconRef: iconRef})
}

func emojiID(value any) int64 {
	switch v := value.(type) {
	case float64:
		return int64(v)
	case string:
		id, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return 0
		}
		return id
	default:
		return 0
	}
}

func sortSeeds(seeds []types.PlatformSeed) []types.PlatformSeed {
	sort.Slice(seeds, func(i, j int) bool {
		return seeds[i].Name < seeds[j].Name
	})
	return seeds
}
