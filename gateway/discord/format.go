package discord

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/goliatone/go-gamerdb/command"
	"github.com/goliatone/go-gamerdb/flow"
	"github.com/goliatone/go-gamerdb/pkg/types"
	"github.com/goliatone/go-gamerdb/query"
)

const (
	colorPurple  = 0x9B59B6
	colorGreen   = 0x2ECC71
	colorBlurple = 0x7289DA

	// descriptionLimit is the embed description cap enforced by Discord.
	descriptionLimit = 4096

	// InviteURL is formatted with the application id and permission bitmask.
	InviteURL = "https://discordapp.com/api/oauth2/authorize?client_id=%s&permissions=%d&scope=bot"
	// DefaultPermissions is the bitmask requested by the invite link.
	DefaultPermissions int64 = 264192
)

// Reply texts shared by slash and prefix commands.
const (
	msgInvalidPlatform   = "Missing or invalid platform name!"
	msgNoValidPlatforms  = "you didn't enter any valid platforms"
	msgMentionSomeone    = "@ someone to get their profile."
	msgNoPlatformsAdded  = "No platforms have been added"
	msgNoMembers         = "No members have registered yet"
	msgNoOptionsRegister = "there are no platforms to choose from yet"
	msgNoOptionsRemove   = "you have no registered platforms"
	msgSelectionExpired  = "this selection has expired, run the command again"
	msgSelectionForeign  = "this selection belongs to someone else"
	msgDuplicatePlatform = "that platform name or emoji is already registered"
	msgManageDisabled    = "platform management is disabled here"
	msgOwnerOnly         = "only the bot owner can do that"
	msgManageGuildOnly   = "you need the Manage Server permission to do that"
	msgGamertagRequired  = "enter a gamertag to register"
	msgPrefixRequired    = "enter a prefix"
	msgInvalidEmoji      = "enter a custom emoji or an emoji id"
	msgGuildOnly         = "this command only works in a server"
	msgInternal          = "something went wrong, try again later"
)

// Emoji renders the custom emoji markup for a platform, or an empty string
// when the platform has no icon.
func Emoji(p types.Platform) string {
	if p.IconRef == 0 {
		return ""
	}
	return fmt.Sprintf("<:%s:%d>", emojiName(p.Name), p.IconRef)
}

// componentEmoji returns the select option emoji for a platform.
func componentEmoji(p types.Platform) *discordgo.ComponentEmoji {
	if p.IconRef == 0 {
		return nil
	}
	return &discordgo.ComponentEmoji{
		Name: emojiName(p.Name),
		ID:   strconv.FormatInt(p.IconRef, 10),
	}
}

// emoji names only allow word characters.
func emojiName(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	if b.Len() < 2 {
		return "gdb_" + b.String()
	}
	return b.String()
}

// ParseEmojiRef accepts `<:name:id>`, `<a:name:id>` or a bare id.
func ParseEmojiRef(raw string) (int64, error) {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "<") && strings.HasSuffix(raw, ">") {
		parts := strings.Split(strings.Trim(raw, "<>"), ":")
		if len(parts) != 3 {
			return 0, fmt.Errorf("discord: malformed emoji %q", raw)
		}
		raw = parts[2]
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("discord: invalid emoji id %q", raw)
	}
	return id, nil
}

// ParseSnowflake converts a Discord id to int64. Empty strings map to 0.
func ParseSnowflake(raw string) (int64, error) {
	if raw == "" {
		return 0, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("discord: invalid snowflake %q: %w", raw, err)
	}
	return id, nil
}

// ParseMention extracts the user id from `<@id>` or `<@!id>`.
func ParseMention(raw string) (int64, bool) {
	if !strings.HasPrefix(raw, "<@") || !strings.HasSuffix(raw, ">") {
		return 0, false
	}
	inner := strings.TrimPrefix(strings.TrimSuffix(strings.TrimPrefix(raw, "<@"), ">"), "!")
	id, err := strconv.ParseInt(inner, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// Mention renders a user mention.
func Mention(memberID int64) string {
	return fmt.Sprintf("<@%d>", memberID)
}

// InviteLink builds the OAuth invite link for the application.
func InviteLink(applicationID string, permissions int64) string {
	if permissions == 0 {
		permissions = DefaultPermissions
	}
	return fmt.Sprintf(InviteURL, applicationID, permissions)
}

// PlatformsEmbed lists the catalog.
func PlatformsEmbed(platforms []types.Platform) *discordgo.MessageEmbed {
	lines := make([]string, 0, len(platforms))
	for _, platform := range platforms {
		if emoji := Emoji(platform); emoji != "" {
			lines = append(lines, fmt.Sprintf("%s: **%s**", emoji, platform.DisplayName()))
			continue
		}
		lines = append(lines, "**"+platform.DisplayName()+"**")
	}
	description := joinLines(lines)
	if description == "" {
		description = msgNoOptionsRegister
	}
	return &discordgo.MessageEmbed{
		Title:       "Supported Platforms",
		Description: description,
		Color:       colorGreen,
	}
}

// ProfileEmbed renders a member profile.
func ProfileEmbed(displayName, avatarURL string, items []types.ProfileItem) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title:       "Platform info for " + displayName,
		Description: msgNoPlatformsAdded,
		Color:       colorPurple,
	}
	if avatarURL != "" {
		embed.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: avatarURL}
	}
	if len(items) == 0 {
		return embed
	}
	lines := make([]string, 0, len(items))
	for _, item := range items {
		platform := item.Platform()
		line := fmt.Sprintf("*%s* | __%s__", platform.DisplayName(), item.Gamertag)
		if emoji := Emoji(platform); emoji != "" {
			line = "**" + emoji + "** | " + line
		}
		lines = append(lines, line)
	}
	embed.Description = joinLines(lines)
	return embed
}

// UsersForEmbed renders the roster of one platform.
func UsersForEmbed(result query.UsersForResult) *discordgo.MessageEmbed {
	title := strings.TrimSpace(Emoji(result.Platform) + " " + result.Platform.DisplayName())
	lines := make([]string, 0, len(result.Members))
	for _, member := range result.Members {
		lines = append(lines, fmt.Sprintf("%s - %s", Mention(member.MemberID), member.Gamertag))
	}
	description := joinLines(lines)
	if description == "" {
		description = msgNoMembers
	}
	return &discordgo.MessageEmbed{
		Title:       title,
		Description: description,
		Color:       colorBlurple,
	}
}

// joinLines joins lines up to the description limit and notes how many were
// left out.
func joinLines(lines []string) string {
	var b strings.Builder
	for i, line := range lines {
		more := fmt.Sprintf("\n...and %d more", len(lines)-i)
		if b.Len()+len(line)+1+len(more) > descriptionLimit {
			b.WriteString(more)
			break
		}
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)
	}
	return b.String()
}

// changeConfirmation renders the reply for a direct register or unregister.
func changeConfirmation(memberID int64, kind flow.Kind, result command.ProfileChangeResult) string {
	return Mention(memberID) + ", " + flow.Result{Kind: kind, Platforms: result.Platforms}.Confirmation()
}

// userMessage maps an error to the text shown in chat. Unknown errors get a
// generic reply and should be logged by the caller.
func userMessage(err error) (string, bool) {
	switch {
	case err == nil:
		return "", true
	case types.IsNotFound(err):
		return msgInvalidPlatform, true
	case types.IsDuplicate(err):
		return msgDuplicatePlatform, true
	case errors.Is(err, command.ErrNoValidPlatforms), errors.Is(err, command.ErrPlatformsRequired):
		return msgNoValidPlatforms, true
	case errors.Is(err, command.ErrPlatformManagementDisabled):
		return msgManageDisabled, true
	case errors.Is(err, flow.ErrExpired), errors.Is(err, flow.ErrUnknownFlow):
		return msgSelectionExpired, true
	case errors.Is(err, flow.ErrNotOwner):
		return msgSelectionForeign, true
	case errors.Is(err, types.ErrGamertagRequired):
		return msgGamertagRequired, true
	case errors.Is(err, types.ErrPrefixRequired):
		return msgPrefixRequired, true
	case errors.Is(err, types.ErrPlatformNameRequired):
		return msgInvalidPlatform, true
	case errors.Is(err, types.ErrIconRefRequired):
		return msgInvalidEmoji, true
	case errors.Is(err, types.ErrGuildIDRequired):
		return msgGuildOnly, true
	default:
		return msgInternal, false
	}
}

func formatSnowflake(id int64) string {
	return strconv.FormatInt(id, 10)
}
