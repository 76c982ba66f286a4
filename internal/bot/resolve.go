package bot

import (
	"strings"

	"github.com/bwmarrin/discordgo"
)

// findGuild returns the first joined guild whose name equals name under
// Unicode case folding, or nil. Iteration order is whatever the API
// returned; with duplicate names the first one wins.
func findGuild(guilds []*discordgo.UserGuild, name string) *discordgo.UserGuild {
	for _, g := range guilds {
		if strings.EqualFold(g.Name, name) {
			return g
		}
	}
	return nil
}

// findChannel is the same contract over a guild's channel list.
func findChannel(channels []*discordgo.Channel, name string) *discordgo.Channel {
	for _, c := range channels {
		if strings.EqualFold(c.Name, name) {
			return c
		}
	}
	return nil
}

// topRole returns the role with the highest position, nil for an empty
// slice. Ties keep the first role seen; the order is not stable, so which
// of the tied roles wins is arbitrary.
func topRole(roles []*discordgo.Role) *discordgo.Role {
	var top *discordgo.Role
	for _, r := range roles {
		if top == nil || r.Position > top.Position {
			top = r
		}
	}
	return top
}
