package discord

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/goliatone/go-gamerdb/command"
	"github.com/goliatone/go-gamerdb/flow"
	"github.com/goliatone/go-gamerdb/pkg/types"
	"github.com/goliatone/go-gamerdb/query"
)

func (b *Bot) buildRegistry() *registry {
	r := newRegistry()
	r.add(&chatCommand{
		Name:        "register",
		Aliases:     []string{"add"},
		Description: "Register a gamertag on supported platforms",
		Usage:       "register <gamertag> <platform...>",
		Options: []*discordgo.ApplicationCommandOption{{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "gamertag",
			Description: "Your username or id on the platforms",
			Required:    true,
		}},
		Slash: b.slashRegister,
		Text:  b.textRegister,
	})
	r.add(&chatCommand{
		Name:        "unregister",
		Aliases:     []string{"remove"},
		Description: "Remove platforms from your profile",
		Usage:       "unregister <platform...>",
		Slash:       b.slashUnregister,
		Text:        b.textUnregister,
	})
	r.add(&chatCommand{
		Name:        "profile",
		Aliases:     []string{"lookup"},
		Description: "View your profile or the profile of a member",
		Usage:       "profile [@member]",
		Options: []*discordgo.ApplicationCommandOption{{
			Type:        discordgo.ApplicationCommandOptionUser,
			Name:        "member",
			Description: "Member to look up",
		}},
		Slash: b.slashProfile,
		Text:  b.textProfile,
	})
	r.add(&chatCommand{
		Name:        "platforms",
		Description: "List the supported platforms",
		Usage:       "platforms",
		Slash:       b.slashPlatforms,
		Text:        b.textPlatforms,
	})
	r.add(&chatCommand{
		Name:        "usersfor",
		Aliases:     []string{"users_for"},
		Description: "List the members registered on a platform",
		Usage:       "usersfor <platform>",
		Options: []*discordgo.ApplicationCommandOption{{
			Type:         discordgo.ApplicationCommandOptionString,
			Name:         "platform",
			Description:  "Platform name",
			Required:     true,
			Autocomplete: true,
		}},
		Slash:        b.slashUsersFor,
		Autocomplete: b.autocompletePlatforms,
		Text:         b.textUsersFor,
	})
	r.add(&chatCommand{
		Name:        "addplatform",
		Description: "Add a supported platform (owner only)",
		Usage:       "addplatform <name> <emoji>",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "name",
				Description: "Platform name",
				Required:    true,
			},
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "emoji",
				Description: "Custom emoji or emoji id",
				Required:    true,
			},
		},
		Slash: b.slashAddPlatform,
		Text:  b.textAddPlatform,
	})
	r.add(&chatCommand{
		Name:        "deleteplatform",
		Description: "Delete a platform and every registration on it (owner only)",
		Usage:       "deleteplatform <name>",
		Options: []*discordgo.ApplicationCommandOption{{
			Type:         discordgo.ApplicationCommandOptionString,
			Name:         "name",
			Description:  "Platform name",
			Required:     true,
			Autocomplete: true,
		}},
		Slash:        b.slashDeletePlatform,
		Autocomplete: b.autocompletePlatforms,
		Text:         b.textDeletePlatform,
	})
	r.add(&chatCommand{
		Name:        "prefix",
		Description: "Show or change the text command prefix",
		Usage:       "prefix [new]",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "get",
				Description: "Show the prefix for this server",
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "set",
				Description: "Change the prefix for this server",
				Options: []*discordgo.ApplicationCommandOption{{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "value",
					Description: "New prefix",
					Required:    true,
				}},
			},
		},
		Slash: b.slashPrefix,
		Text:  b.textPrefix,
	})
	r.add(&chatCommand{
		Name:        "invite",
		Description: "Add me to your server!",
		Usage:       "invite",
		Slash:       b.slashInvite,
		Text:        b.textInvite,
	})
	r.add(&chatCommand{
		Name:        "help",
		Description: "List the text commands",
		Usage:       "help",
		Text:        b.textHelp,
	})
	return r
}

func (b *Bot) slashRegister(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) {
	gamertag := ""
	if opt, ok := optionMap(i.ApplicationCommandData().Options)["gamertag"]; ok {
		gamertag = opt.StringValue()
	}
	b.startFlow(ctx, s, i, flow.Request{Kind: flow.KindRegister, Gamertag: gamertag})
}

func (b *Bot) slashUnregister(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) {
	b.startFlow(ctx, s, i, flow.Request{Kind: flow.KindUnregister})
}

// startFlow opens a selection flow and shows its menu to the invoking member
// only.
func (b *Bot) startFlow(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, req flow.Request) {
	memberID, guildID, err := snowflakes(interactionUser(i).ID, i.GuildID)
	if err != nil {
		b.replyError(s, i, req.Kind.String(), err)
		return
	}
	req.MemberID = memberID
	req.GuildID = guildID

	f, err := b.svc.Flows().Start(ctx, req)
	if errors.Is(err, flow.ErrNoOptions) {
		text := msgNoOptionsRegister
		if req.Kind == flow.KindUnregister {
			text = msgNoOptionsRemove
		}
		b.reply(s, i, text, true)
		return
	}
	if err != nil {
		b.replyError(s, i, req.Kind.String(), err)
		return
	}
	options, err := f.Present()
	if err != nil {
		b.replyError(s, i, req.Kind.String(), err)
		return
	}

	placeholder := "Select platforms to register..."
	content := fmt.Sprintf("Pick the platforms for **%s**", f.Gamertag())
	if req.Kind == flow.KindUnregister {
		placeholder = "Select platforms to remove..."
		content = "Pick the platforms to remove from your profile"
	}
	row, truncated := SelectMenu(f.ID(), placeholder, options)
	if truncated {
		content += fmt.Sprintf("\nonly the first %d platforms are shown", maxSelectOptions)
	}
	b.respond(s, i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content:    content,
			Components: []discordgo.MessageComponent{row},
			Flags:      discordgo.MessageFlagsEphemeral,
		},
	})
}

func (b *Bot) slashProfile(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) {
	data := i.ApplicationCommandData()
	user, member := interactionUser(i), i.Member
	if opt, ok := optionMap(data.Options)["member"]; ok {
		user, member = opt.UserValue(s), nil
		if data.Resolved != nil {
			member = data.Resolved.Members[user.ID]
		}
	}
	embed, err := b.profileView(ctx, user, member)
	if err != nil {
		b.replyError(s, i, "profile", err)
		return
	}
	b.replyEmbed(s, i, embed)
}

func (b *Bot) slashPlatforms(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) {
	embed, err := b.platformsView(ctx)
	if err != nil {
		b.replyError(s, i, "platforms", err)
		return
	}
	b.replyEmbed(s, i, embed)
}

func (b *Bot) slashUsersFor(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) {
	name := ""
	if opt, ok := optionMap(i.ApplicationCommandData().Options)["platform"]; ok {
		name = opt.StringValue()
	}
	embed, err := b.usersForView(ctx, i.GuildID, name)
	if err != nil {
		b.replyError(s, i, "usersfor", err)
		return
	}
	b.replyEmbed(s, i, embed)
}

func (b *Bot) slashAddPlatform(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) {
	user := interactionUser(i)
	if !b.isOwner(user.ID) {
		b.reply(s, i, msgOwnerOnly, true)
		return
	}
	opts := optionMap(i.ApplicationCommandData().Options)
	var name, emoji string
	if opt, ok := opts["name"]; ok {
		name = opt.StringValue()
	}
	if opt, ok := opts["emoji"]; ok {
		emoji = opt.StringValue()
	}
	text, err := b.addPlatform(ctx, user.ID, i.GuildID, name, emoji)
	if err != nil {
		b.replyError(s, i, "addplatform", err)
		return
	}
	b.reply(s, i, text, false)
}

func (b *Bot) slashDeletePlatform(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) {
	user := interactionUser(i)
	if !b.isOwner(user.ID) {
		b.reply(s, i, msgOwnerOnly, true)
		return
	}
	name := ""
	if opt, ok := optionMap(i.ApplicationCommandData().Options)["name"]; ok {
		name = opt.StringValue()
	}
	text, err := b.deletePlatform(ctx, user.ID, i.GuildID, name)
	if err != nil {
		b.replyError(s, i, "deleteplatform", err)
		return
	}
	b.reply(s, i, text, false)
}

func (b *Bot) slashPrefix(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) {
	options := i.ApplicationCommandData().Options
	if len(options) == 0 || options[0].Name == "get" {
		text, err := b.showPrefix(ctx, i.GuildID)
		if err != nil {
			b.replyError(s, i, "prefix", err)
			return
		}
		b.reply(s, i, text, true)
		return
	}

	user := interactionUser(i)
	canManage := i.Member != nil && i.Member.Permissions&manageGuildPermission != 0
	if !canManage && !b.isOwner(user.ID) {
		b.reply(s, i, msgManageGuildOnly, true)
		return
	}
	value := ""
	if opt, ok := optionMap(options[0].Options)["value"]; ok {
		value = opt.StringValue()
	}
	text, err := b.changePrefix(ctx, user.ID, i.GuildID, value)
	if err != nil {
		b.replyError(s, i, "prefix", err)
		return
	}
	b.reply(s, i, text, false)
}

func (b *Bot) slashInvite(_ context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) {
	b.reply(s, i, InviteLink(b.applicationID(), b.cfg.Permissions), true)
}

// Operations shared by slash and text commands.

func (b *Bot) profileView(ctx context.Context, user *discordgo.User, member *discordgo.Member) (*discordgo.MessageEmbed, error) {
	memberID, err := ParseSnowflake(user.ID)
	if err != nil {
		return nil, err
	}
	items, err := b.svc.Queries().Profile.Query(ctx, query.ProfileQueryInput{MemberID: memberID})
	if err != nil {
		return nil, err
	}
	return ProfileEmbed(displayName(member, user), user.AvatarURL(""), items), nil
}

func (b *Bot) platformsView(ctx context.Context) (*discordgo.MessageEmbed, error) {
	platforms, err := b.svc.Queries().Platforms.Query(ctx, query.PlatformListInput{})
	if err != nil {
		return nil, err
	}
	return PlatformsEmbed(platforms), nil
}

func (b *Bot) usersForView(ctx context.Context, guildID, name string) (*discordgo.MessageEmbed, error) {
	result, err := b.svc.Queries().UsersFor.Query(ctx, query.UsersForInput{
		Platform: name,
		Filter:   b.memberFilter(guildID),
	})
	if err != nil {
		return nil, err
	}
	return UsersForEmbed(result), nil
}

func (b *Bot) addPlatform(ctx context.Context, userID, guild, name, emoji string) (string, error) {
	actorID, guildID, err := snowflakes(userID, guild)
	if err != nil {
		return "", err
	}
	iconRef, err := ParseEmojiRef(emoji)
	if err != nil {
		return msgInvalidEmoji, nil
	}
	var platform types.Platform
	err = b.svc.Commands().PlatformAdd.Execute(ctx, command.PlatformAddInput{
		Name:    name,
		IconRef: iconRef,
		GuildID: guildID,
		ActorID: actorID,
		Channel: command.ChannelGateway,
		Result:  &platform,
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(fmt.Sprintf("%s **%s** has been added!", Emoji(platform), platform.DisplayName())), nil
}

func (b *Bot) deletePlatform(ctx context.Context, userID, guild, name string) (string, error) {
	actorID, guildID, err := snowflakes(userID, guild)
	if err != nil {
		return "", err
	}
	result := &command.PlatformDeleteResult{}
	err = b.svc.Commands().PlatformDelete.Execute(ctx, command.PlatformDeleteInput{
		Name:    name,
		GuildID: guildID,
		ActorID: actorID,
		Channel: command.ChannelGateway,
		Result:  result,
	})
	if err != nil {
		return "", err
	}
	if !result.Deleted {
		return msgInvalidPlatform, nil
	}
	return fmt.Sprintf("**%s** and every registration on it have been removed", result.Platform.DisplayName()), nil
}

func (b *Bot) showPrefix(ctx context.Context, guild string) (string, error) {
	guildID, err := ParseSnowflake(guild)
	if err != nil {
		return "", err
	}
	prefix, err := b.svc.Queries().Prefix.Query(ctx, query.PrefixQueryInput{GuildID: guildID})
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("the prefix here is `%s`", prefix), nil
}

func (b *Bot) changePrefix(ctx context.Context, userID, guild, prefix string) (string, error) {
	actorID, guildID, err := snowflakes(userID, guild)
	if err != nil {
		return "", err
	}
	if guildID == 0 {
		return msgGuildOnly, nil
	}
	err = b.svc.Commands().PrefixSet.Execute(ctx, command.PrefixSetInput{
		GuildID: guildID,
		Prefix:  prefix,
		ActorID: actorID,
		Channel: command.ChannelGateway,
	})
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("the prefix is now `%s`", b.svc.Prefixes().GetPrefix(ctx, guildID)), nil
}

// snowflakes parses a user id and a guild id. A missing guild yields 0.
func snowflakes(userID, guildID string) (int64, int64, error) {
	actor, err := ParseSnowflake(userID)
	if err != nil {
		return 0, 0, err
	}
	guild, err := ParseSnowflake(guildID)
	if err != nil {
		return 0, 0, err
	}
	return actor, guild, nil
}
