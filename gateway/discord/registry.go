package discord

import (
	"context"
	"sort"
	"strings"

	"github.com/bwmarrin/discordgo"
)

type (
	slashFunc func(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate)
	textFunc  func(ctx context.Context, s *discordgo.Session, m *discordgo.MessageCreate, args []string)
)

// chatCommand is one command reachable as a slash command, a prefix text
// command, or both.
type chatCommand struct {
	Name        string
	Aliases     []string
	Description string
	// Usage is shown by the help text command, after the prefix.
	Usage   string
	Options []*discordgo.ApplicationCommandOption

	Slash        slashFunc
	Autocomplete slashFunc
	Text         textFunc
}

type registry struct {
	byName  map[string]*chatCommand
	ordered []*chatCommand
}

func newRegistry() *registry {
	return &registry{byName: make(map[string]*chatCommand)}
}

func (r *registry) add(cmd *chatCommand) {
	r.ordered = append(r.ordered, cmd)
	r.byName[strings.ToLower(cmd.Name)] = cmd
	for _, alias := range cmd.Aliases {
		r.byName[strings.ToLower(alias)] = cmd
	}
}

func (r *registry) lookup(name string) (*chatCommand, bool) {
	cmd, ok := r.byName[strings.ToLower(name)]
	return cmd, ok
}

// applicationCommands returns the slash definitions ordered by name.
func (r *registry) applicationCommands() []*discordgo.ApplicationCommand {
	out := make([]*discordgo.ApplicationCommand, 0, len(r.ordered))
	for _, cmd := range r.ordered {
		if cmd.Slash == nil {
			continue
		}
		out = append(out, &discordgo.ApplicationCommand{
			Name:        cmd.Name,
			Description: cmd.Description,
			Options:     cmd.Options,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// usage lists the text commands with their syntax.
func (r *registry) usage(prefix string) string {
	lines := make([]string, 0, len(r.ordered))
	for _, cmd := range r.ordered {
		if cmd.Text == nil {
			continue
		}
		line := "`" + prefix + cmd.Usage + "`"
		if cmd.Description != "" {
			line += ": " + cmd.Description
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

// parseTextCommand splits a prefixed message into a command name and its
// arguments.
func parseTextCommand(content, prefix string) (string, []string, bool) {
	content = strings.TrimSpace(content)
	if prefix == "" || !strings.HasPrefix(content, prefix) {
		return "", nil, false
	}
	fields := strings.Fields(strings.TrimPrefix(content, prefix))
	if len(fields) == 0 {
		return "", nil, false
	}
	return strings.ToLower(fields[0]), fields[1:], true
}

func optionMap(options []*discordgo.ApplicationCommandInteractionDataOption) map[string]*discordgo.ApplicationCommandInteractionDataOption {
	out := make(map[string]*discordgo.ApplicationCommandInteractionDataOption, len(options))
	for _, opt := range options {
		out[opt.Name] = opt
	}
	return out
}

func focusedOption(options []*discordgo.ApplicationCommandInteractionDataOption) (*discordgo.ApplicationCommandInteractionDataOption, bool) {
	for _, opt := range options {
		if opt.Focused {
			return opt, true
		}
		if found, ok := focusedOption(opt.Options); ok {
			return found, true
		}
	}
	return nil, false
}
