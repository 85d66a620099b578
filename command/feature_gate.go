package command

import (
	"context"
	"strconv"

	featuregate "github.com/goliatone/go-featuregate/gate"
)

const (
	// FeaturePlatformsManage gates platform add and delete.
	FeaturePlatformsManage = "platforms.manage"
	// FeatureProfilesImport gates bulk imports.
	FeatureProfilesImport = "profiles.import"
)

func featureEnabled(ctx context.Context, gate featuregate.FeatureGate, key string, guildID, actorID int64) (bool, error) {
	if gate == nil {
		return true, nil
	}
	scopeSet := featureScopeSet(guildID, actorID)
	if scopeSet == nil {
		return gate.Enabled(ctx, key)
	}
	return gate.Enabled(ctx, key, featuregate.WithScopeSet(*scopeSet))
}

// featureScopeSet maps the guild onto the tenant scope and the acting member
// onto the user scope.
func featureScopeSet(guildID, actorID int64) *featuregate.ScopeSet {
	if guildID == 0 && actorID == 0 {
		return nil
	}
	set := &featuregate.ScopeSet{System: true}
	if guildID != 0 {
		set.TenantID = strconv.FormatInt(guildID, 10)
	}
	if actorID != 0 {
		set.UserID = strconv.FormatInt(actorID, 10)
	}
	return set
}
