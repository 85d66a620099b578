package discord

import (
	"context"
	"errors"

	"github.com/bwmarrin/discordgo"
	"github.com/goliatone/go-gamerdb/flow"
)

func (b *Bot) onInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx, cancel := b.requestContext()
	defer cancel()

	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		cmd, ok := b.commands.lookup(i.ApplicationCommandData().Name)
		if !ok || cmd.Slash == nil {
			return
		}
		cmd.Slash(ctx, s, i)
	case discordgo.InteractionApplicationCommandAutocomplete:
		cmd, ok := b.commands.lookup(i.ApplicationCommandData().Name)
		if !ok || cmd.Autocomplete == nil {
			return
		}
		cmd.Autocomplete(ctx, s, i)
	case discordgo.InteractionMessageComponent:
		b.onComponent(ctx, s, i)
	}
}

// onComponent delivers a select menu submission to its flow and replaces
// the menu with the outcome.
func (b *Bot) onComponent(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) {
	data := i.MessageComponentData()
	flowID, ok := ParseFlowCustomID(data.CustomID)
	if !ok {
		return
	}
	memberID, err := ParseSnowflake(interactionUser(i).ID)
	if err != nil {
		b.replyError(s, i, "component", err)
		return
	}
	ids, err := ParseSelectionValues(data.Values)
	if err != nil {
		b.replyError(s, i, "component", err)
		return
	}

	result, err := b.svc.Flows().Receive(ctx, flow.Selection{
		FlowID:      flowID,
		MemberID:    memberID,
		PlatformIDs: ids,
	})
	if err != nil {
		if errors.Is(err, flow.ErrNotOwner) {
			b.reply(s, i, msgSelectionForeign, true)
			return
		}
		text, known := userMessage(err)
		if !known {
			b.logger.Error("discord: flow selection failed", err, "flow_id", flowID.String(), "member_id", memberID)
		}
		b.updateMessage(s, i, text)
		return
	}
	b.updateMessage(s, i, Mention(memberID)+", "+result.Confirmation())
}

func (b *Bot) respond(s *discordgo.Session, i *discordgo.InteractionCreate, resp *discordgo.InteractionResponse) {
	if err := s.InteractionRespond(i.Interaction, resp); err != nil {
		b.logger.Error("discord: interaction response failed", err, "interaction_id", i.ID)
	}
}

func (b *Bot) reply(s *discordgo.Session, i *discordgo.InteractionCreate, content string, ephemeral bool) {
	data := &discordgo.InteractionResponseData{Content: content}
	if ephemeral {
		data.Flags = discordgo.MessageFlagsEphemeral
	}
	b.respond(s, i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: data,
	})
}

func (b *Bot) replyEmbed(s *discordgo.Session, i *discordgo.InteractionCreate, embed *discordgo.MessageEmbed) {
	b.respond(s, i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Embeds: []*discordgo.MessageEmbed{embed}},
	})
}

// updateMessage replaces the component message and drops its components.
func (b *Bot) updateMessage(s *discordgo.Session, i *discordgo.InteractionCreate, content string) {
	b.respond(s, i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseUpdateMessage,
		Data: &discordgo.InteractionResponseData{
			Content:    content,
			Components: []discordgo.MessageComponent{},
		},
	})
}

func (b *Bot) replyError(s *discordgo.Session, i *discordgo.InteractionCreate, event string, err error) {
	text, known := userMessage(err)
	if !known {
		b.logger.Error("discord: command failed", err, "command", event, "guild_id", i.GuildID)
	}
	b.reply(s, i, text, true)
}

func (b *Bot) autocompletePlatforms(_ context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) {
	typed := ""
	if opt, ok := focusedOption(i.ApplicationCommandData().Options); ok {
		typed = opt.StringValue()
	}
	b.respond(s, i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionApplicationCommandAutocompleteResult,
		Data: &discordgo.InteractionResponseData{
			Choices: platformChoices(b.svc.Catalog().All(), typed),
		},
	})
}

// interactionUser returns the invoking user for guild and DM interactions.
func interactionUser(i *discordgo.InteractionCreate) *discordgo.User {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User
	}
	if i.User != nil {
		return i.User
	}
	return &discordgo.User{}
}

// displayName prefers the guild nickname, then the global name.
func displayName(member *discordgo.Member, user *discordgo.User) string {
	if member != nil && member.Nick != "" {
		return member.Nick
	}
	if user == nil {
		return ""
	}
	if user.GlobalName != "" {
		return user.GlobalName
	}
	return user.Username
}
