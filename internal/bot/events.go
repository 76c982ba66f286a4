package bot

import "github.com/bwmarrin/discordgo"

// displayName prefers the member's per-guild nickname over the global
// username, matching how the channel renders authors.
func displayName(member *discordgo.Member, author *discordgo.User) string {
	if member != nil && member.Nick != "" {
		return member.Nick
	}
	if author != nil {
		return author.Username
	}
	return "unknown"
}

func createdEvent(m *discordgo.MessageCreate) Event {
	return Event{
		Kind:      MessageCreated,
		ChannelID: m.ChannelID,
		Author:    displayName(m.Member, m.Author),
		Content:   m.Content,
	}
}

// editedEvent maps a message-update notification. The before image comes
// from the client-side message cache; without it there is nothing to
// compare the new content against, so ok is false and the event is skipped.
func editedEvent(m *discordgo.MessageUpdate) (ev Event, ok bool) {
	if m.BeforeUpdate == nil {
		return Event{}, false
	}
	author, member := m.Author, m.Member
	if author == nil {
		// Partial updates (embed unfurls and the like) omit the author.
		author, member = m.BeforeUpdate.Author, m.BeforeUpdate.Member
	}
	return Event{
		Kind:      MessageEdited,
		ChannelID: m.ChannelID,
		Author:    displayName(member, author),
		BeforeID:  m.BeforeUpdate.ID,
		AfterID:   m.ID,
		Before:    m.BeforeUpdate.Content,
		After:     m.Content,
	}, true
}

// deletedEvent maps a message-delete notification. Deletes only carry IDs
// on the wire; author and last-known content come from the cache, so
// uncached deletes are skipped.
func deletedEvent(m *discordgo.MessageDelete) (ev Event, ok bool) {
	if m.BeforeDelete == nil {
		return Event{}, false
	}
	return Event{
		Kind:      MessageDeleted,
		ChannelID: m.ChannelID,
		Author:    displayName(m.BeforeDelete.Member, m.BeforeDelete.Author),
		Content:   m.BeforeDelete.Content,
	}, true
}
