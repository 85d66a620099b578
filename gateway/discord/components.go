package discord

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/goliatone/go-gamerdb/pkg/types"
	"github.com/google/uuid"
)

// flowCustomIDPrefix routes select menu submissions back to a pending flow.
const flowCustomIDPrefix = "gamerdb:flow:"

// maxSelectOptions is the Discord limit on options per select menu.
const maxSelectOptions = 25

// FlowCustomID encodes a flow id into a component custom id.
func FlowCustomID(id uuid.UUID) string {
	return flowCustomIDPrefix + id.String()
}

// ParseFlowCustomID reverses FlowCustomID. ok is false for components that
// do not belong to a flow.
func ParseFlowCustomID(customID string) (uuid.UUID, bool) {
	raw, found := strings.CutPrefix(customID, flowCustomIDPrefix)
	if !found {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

// ParseSelectionValues converts the submitted option values to platform ids.
func ParseSelectionValues(values []string) ([]int64, error) {
	ids := make([]int64, 0, len(values))
	for _, value := range values {
		id, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("discord: invalid selection value %q: %w", value, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// SelectMenu builds the multi-select for a flow. Options past the Discord
// limit are left out and truncated reports it. The menu allows an empty
// submission so a member can back out without changes.
func SelectMenu(flowID uuid.UUID, placeholder string, options []types.Platform) (row discordgo.ActionsRow, truncated bool) {
	if len(options) > maxSelectOptions {
		options = options[:maxSelectOptions]
		truncated = true
	}
	menuOptions := make([]discordgo.SelectMenuOption, 0, len(options))
	for _, platform := range options {
		menuOptions = append(menuOptions, discordgo.SelectMenuOption{
			Label: platform.DisplayName(),
			Value: strconv.FormatInt(platform.ID, 10),
			Emoji: componentEmoji(platform),
		})
	}
	minValues := 0
	row = discordgo.ActionsRow{
		Components: []discordgo.MessageComponent{
			discordgo.SelectMenu{
				MenuType:    discordgo.StringSelectMenu,
				CustomID:    FlowCustomID(flowID),
				Placeholder: placeholder,
				MinValues:   &minValues,
				MaxValues:   len(menuOptions),
				Options:     menuOptions,
			},
		},
	}
	return row, truncated
}

// platformChoices returns autocomplete choices whose name starts with the
// typed text.
func platformChoices(platforms []types.Platform, typed string) []*discordgo.ApplicationCommandOptionChoice {
	typed = types.NormalizeName(typed)
	choices := make([]*discordgo.ApplicationCommandOptionChoice, 0, maxSelectOptions)
	for _, platform := range platforms {
		if !strings.HasPrefix(platform.Name, typed) {
			continue
		}
		choices = append(choices, &discordgo.ApplicationCommandOptionChoice{
			Name:  platform.DisplayName(),
			Value: platform.Name,
		})
		if len(choices) == maxSelectOptions {
			break
		}
	}
	return choices
}
