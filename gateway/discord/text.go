package discord

import (
	"context"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/goliatone/go-gamerdb/command"
	"github.com/goliatone/go-gamerdb/flow"
)

// onMessageCreate routes prefix text commands. The prefix is resolved per
// guild, direct messages use the default.
func (b *Bot) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot {
		return
	}
	ctx, cancel := b.requestContext()
	defer cancel()

	guildID, err := ParseSnowflake(m.GuildID)
	if err != nil {
		return
	}
	prefix := b.svc.Prefixes().GetPrefix(ctx, guildID)
	name, args, ok := parseTextCommand(m.Content, prefix)
	if !ok {
		return
	}
	cmd, ok := b.commands.lookup(name)
	if !ok || cmd.Text == nil {
		return
	}
	b.logger.Debug("discord: text command", "command", cmd.Name, "guild_id", m.GuildID, "user_id", m.Author.ID)
	cmd.Text(ctx, s, m, args)
}

func (b *Bot) send(s *discordgo.Session, channelID, content string) {
	if _, err := s.ChannelMessageSend(channelID, content); err != nil {
		b.logger.Error("discord: send failed", err, "channel_id", channelID)
	}
}

func (b *Bot) sendEmbed(s *discordgo.Session, channelID string, embed *discordgo.MessageEmbed) {
	if _, err := s.ChannelMessageSendEmbed(channelID, embed); err != nil {
		b.logger.Error("discord: send failed", err, "channel_id", channelID)
	}
}

// sendError replies with the chat text for err, prefixed by a mention.
func (b *Bot) sendError(s *discordgo.Session, m *discordgo.MessageCreate, event string, err error) {
	text, known := userMessage(err)
	if !known {
		b.logger.Error("discord: command failed", err, "command", event, "guild_id", m.GuildID)
	}
	b.send(s, m.ChannelID, m.Author.Mention()+", "+text)
}

func (b *Bot) textRegister(ctx context.Context, s *discordgo.Session, m *discordgo.MessageCreate, args []string) {
	if len(args) < 2 {
		b.send(s, m.ChannelID, m.Author.Mention()+", "+msgNoValidPlatforms)
		return
	}
	memberID, guildID, err := snowflakes(m.Author.ID, m.GuildID)
	if err != nil {
		b.sendError(s, m, "register", err)
		return
	}
	result := &command.ProfileChangeResult{}
	err = b.svc.Commands().ProfileRegister.Execute(ctx, command.ProfileRegisterInput{
		MemberID:  memberID,
		GuildID:   guildID,
		Gamertag:  args[0],
		Platforms: args[1:],
		Channel:   command.ChannelGateway,
		Result:    result,
	})
	if err != nil {
		b.sendError(s, m, "register", err)
		return
	}
	b.send(s, m.ChannelID, changeConfirmation(memberID, flow.KindRegister, *result))
}

func (b *Bot) textUnregister(ctx context.Context, s *discordgo.Session, m *discordgo.MessageCreate, args []string) {
	if len(args) == 0 {
		b.send(s, m.ChannelID, m.Author.Mention()+", "+msgNoValidPlatforms)
		return
	}
	memberID, guildID, err := snowflakes(m.Author.ID, m.GuildID)
	if err != nil {
		b.sendError(s, m, "unregister", err)
		return
	}
	result := &command.ProfileChangeResult{}
	err = b.svc.Commands().ProfileUnregister.Execute(ctx, command.ProfileUnregisterInput{
		MemberID:  memberID,
		GuildID:   guildID,
		Platforms: args,
		Channel:   command.ChannelGateway,
		Result:    result,
	})
	if err != nil {
		b.sendError(s, m, "unregister", err)
		return
	}
	b.send(s, m.ChannelID, changeConfirmation(memberID, flow.KindUnregister, *result))
}

func (b *Bot) textProfile(ctx context.Context, s *discordgo.Session, m *discordgo.MessageCreate, args []string) {
	user, member := m.Author, m.Member
	if len(args) > 0 {
		id, ok := ParseMention(args[0])
		if !ok {
			b.send(s, m.ChannelID, m.Author.Mention()+", "+msgMentionSomeone)
			return
		}
		user, member = mentionedUser(m, formatSnowflake(id)), nil
		if m.GuildID != "" {
			member, _ = s.State.Member(m.GuildID, user.ID)
		}
	}
	embed, err := b.profileView(ctx, user, member)
	if err != nil {
		b.sendError(s, m, "profile", err)
		return
	}
	b.sendEmbed(s, m.ChannelID, embed)
}

func (b *Bot) textPlatforms(ctx context.Context, s *discordgo.Session, m *discordgo.MessageCreate, _ []string) {
	embed, err := b.platformsView(ctx)
	if err != nil {
		b.sendError(s, m, "platforms", err)
		return
	}
	b.sendEmbed(s, m.ChannelID, embed)
}

func (b *Bot) textUsersFor(ctx context.Context, s *discordgo.Session, m *discordgo.MessageCreate, args []string) {
	if len(args) == 0 {
		b.send(s, m.ChannelID, msgInvalidPlatform)
		return
	}
	embed, err := b.usersForView(ctx, m.GuildID, strings.Join(args, " "))
	if err != nil {
		if text, known := userMessage(err); known && text == msgInvalidPlatform {
			b.send(s, m.ChannelID, msgInvalidPlatform)
			return
		}
		b.sendError(s, m, "usersfor", err)
		return
	}
	b.sendEmbed(s, m.ChannelID, embed)
}

func (b *Bot) textAddPlatform(ctx context.Context, s *discordgo.Session, m *discordgo.MessageCreate, args []string) {
	if !b.isOwner(m.Author.ID) {
		b.send(s, m.ChannelID, m.Author.Mention()+", "+msgOwnerOnly)
		return
	}
	if len(args) < 2 {
		b.send(s, m.ChannelID, m.Author.Mention()+", "+msgInvalidEmoji)
		return
	}
	text, err := b.addPlatform(ctx, m.Author.ID, m.GuildID, args[0], args[1])
	if err != nil {
		b.sendError(s, m, "addplatform", err)
		return
	}
	b.send(s, m.ChannelID, text)
}

func (b *Bot) textDeletePlatform(ctx context.Context, s *discordgo.Session, m *discordgo.MessageCreate, args []string) {
	if !b.isOwner(m.Author.ID) {
		b.send(s, m.ChannelID, m.Author.Mention()+", "+msgOwnerOnly)
		return
	}
	if len(args) == 0 {
		b.send(s, m.ChannelID, msgInvalidPlatform)
		return
	}
	text, err := b.deletePlatform(ctx, m.Author.ID, m.GuildID, strings.Join(args, " "))
	if err != nil {
		b.sendError(s, m, "deleteplatform", err)
		return
	}
	b.send(s, m.ChannelID, text)
}

func (b *Bot) textPrefix(ctx context.Context, s *discordgo.Session, m *discordgo.MessageCreate, args []string) {
	if len(args) == 0 {
		text, err := b.showPrefix(ctx, m.GuildID)
		if err != nil {
			b.sendError(s, m, "prefix", err)
			return
		}
		b.send(s, m.ChannelID, text)
		return
	}
	if !b.isOwner(m.Author.ID) {
		perms, err := s.UserChannelPermissions(m.Author.ID, m.ChannelID)
		if err != nil || perms&manageGuildPermission == 0 {
			b.send(s, m.ChannelID, m.Author.Mention()+", "+msgManageGuildOnly)
			return
		}
	}
	text, err := b.changePrefix(ctx, m.Author.ID, m.GuildID, args[0])
	if err != nil {
		b.sendError(s, m, "prefix", err)
		return
	}
	b.send(s, m.ChannelID, text)
}

// textInvite sends the invite link as a direct message.
func (b *Bot) textInvite(_ context.Context, s *discordgo.Session, m *discordgo.MessageCreate, _ []string) {
	channel, err := s.UserChannelCreate(m.Author.ID)
	if err != nil {
		b.logger.Error("discord: open dm failed", err, "user_id", m.Author.ID)
		return
	}
	b.send(s, channel.ID, InviteLink(b.applicationID(), b.cfg.Permissions))
}

func (b *Bot) textHelp(ctx context.Context, s *discordgo.Session, m *discordgo.MessageCreate, _ []string) {
	guildID, _ := ParseSnowflake(m.GuildID)
	b.send(s, m.ChannelID, b.commands.usage(b.svc.Prefixes().GetPrefix(ctx, guildID)))
}

func mentionedUser(m *discordgo.MessageCreate, id string) *discordgo.User {
	for _, user := range m.Mentions {
		if user != nil && user.ID == id {
			return user
		}
	}
	return &discordgo.User{ID: id}
}
