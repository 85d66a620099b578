package config

import (
	"github.com/goliatone/go-masker"
)

// Masked renders the configuration for logging with credentials masked.
func (c *Config) Masked() map[string]any {
	return map[string]any{
		"discord": maskSection(map[string]any{
			"token":          c.Discord.Token,
			"application_id": c.Discord.ApplicationID,
			"dev_guild_id":   c.Discord.DevGuildID,
			"owner_id":       c.Discord.OwnerID,
		}),
		"database": maskSection(map[string]any{
			"driver":       c.Database.Driver,
			"dsn":          c.Database.DSN,
			"debug":        c.Database.Debug,
			"ping_timeout": c.Database.PingTimeout.String(),
		}),
		"prefix":   map[string]any{"default": c.Prefix.Default},
		"flow":     map[string]any{"ttl": c.Flow.TTL.String(), "sweep_interval": c.Flow.SweepInterval.String()},
		"cache":    map[string]any{"enabled": c.Cache.Enabled, "ttl": c.Cache.TTL.String(), "capacity": c.Cache.Capacity},
		"log":      map[string]any{"level": c.Log.Level, "format": c.Log.Format},
		"features": FlattenFeatures(c.Features),
	}
}

func maskSection(section map[string]any) map[string]any {
	mask := configMasker()
	if mask == nil {
		return section
	}
	masked, err := mask.Mask(section)
	if err != nil {
		// never log an unmasked section
		return map[string]any{"masked": false}
	}
	if out, ok := masked.(map[string]any); ok {
		return out
	}
	return map[string]any{"masked": false}
}

func configMasker() *masker.Masker {
	if masker.Default == nil {
		return nil
	}
	masker.Default.RegisterMaskField("dsn", "filled4")
	return masker.Default
}
