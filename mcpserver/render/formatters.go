// Copyright (c) 2023-present Mattermost, Inc. All Rights Reserved.
// See LICENSE.txt for license information.

package render

import (
	"fmt"
	"strconv"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/mattermost/googlechat-mcp/mcpserver/chatapi"
)

// formatter renders one entity kind, both as a detail view and as a list item.
type formatter interface {
	detail(w *writer, entity chatapi.Entity)
	item(w *writer, index int, entity chatapi.Entity)
}

// groupingFormatter replaces per-item blocks in collection views.
type groupingFormatter interface {
	group(w *writer, items []chatapi.Entity)
}

var formatters = map[chatapi.Kind]formatter{
	chatapi.KindSpace:      spaceFormatter{},
	chatapi.KindMessage:    messageFormatter{},
	chatapi.KindMember:     memberFormatter{},
	chatapi.KindReaction:   reactionFormatter{},
	chatapi.KindAttachment: attachmentFormatter{},
}

func formatterFor(kind chatapi.Kind) formatter {
	if f, ok := formatters[kind]; ok {
		return f
	}
	return fallbackFormatter{}
}

type spaceFormatter struct{}

func spaceTitle(s chatapi.Space) string {
	switch {
	case s.DisplayName != "":
		return s.DisplayName
	case s.SpaceType == "DIRECT_MESSAGE":
		return "Direct Message"
	default:
		return s.Name
	}
}

func memberCounts(c *chatapi.MembershipCount) string {
	if c == nil {
		return ""
	}
	parts := []string{count(c.JoinedDirectHumanUserCount, "user", "users")}
	if c.JoinedGroupCount > 0 {
		parts = append(parts, count(c.JoinedGroupCount, "group", "groups"))
	}
	return strings.Join(parts, ", ")
}

func (spaceFormatter) detail(w *writer, entity chatapi.Entity) {
	s := entity.(chatapi.Space)
	w.heading(1, "Space: "+spaceTitle(s))
	w.field("Name", s.Name)
	w.field("Type", enumLabel(s.SpaceType, ""))
	if s.SpaceDetails != nil {
		w.field("Description", s.SpaceDetails.Description)
		w.field("Guidelines", s.SpaceDetails.Guidelines)
	}
	w.field("Threading", enumLabel(s.SpaceThreadingState, ""))
	w.field("History", enumLabel(s.SpaceHistoryState, ""))
	w.field("External Users Allowed", yesNo(s.ExternalUserAllowed))
	w.field("Members", memberCounts(s.MembershipCount))
	w.field("Created", w.timestamp(s.CreateTime))
	w.field("Last Active", w.timestamp(s.LastActiveTime))
	w.field("Link", s.SpaceURI)
}

func (spaceFormatter) item(w *writer, index int, entity chatapi.Entity) {
	s := entity.(chatapi.Space)
	w.heading(2, fmt.Sprintf("%d. %s", index, spaceTitle(s)))
	w.bullet("Name", s.Name)
	w.bullet("Type", enumLabel(s.SpaceType, ""))
	if s.SpaceDetails != nil {
		w.bullet("Description", clip(s.SpaceDetails.Description, snippetLength))
		w.bullet("Guidelines", clip(s.SpaceDetails.Guidelines, snippetLength))
	}
	w.bullet("Members", memberCounts(s.MembershipCount))
	w.bullet("Last Active", w.timestamp(s.LastActiveTime))
}

type messageFormatter struct{}

func senderLabel(u *chatapi.User) string {
	switch {
	case u == nil || u.Label() == "":
		return "Unknown sender"
	case u.DisplayName != "" && u.Name != "":
		return fmt.Sprintf("%s (%s)", u.DisplayName, u.Name)
	default:
		return u.Label()
	}
}

func reactionSummary(summaries []chatapi.EmojiReactionSummary) string {
	parts := make([]string, 0, len(summaries))
	for _, summary := range summaries {
		parts = append(parts, fmt.Sprintf("%s %d", summary.Emoji.Label(), summary.ReactionCount))
	}
	return strings.Join(parts, ", ")
}

func (messageFormatter) detail(w *writer, entity chatapi.Entity) {
	m := entity.(chatapi.Message)
	w.heading(1, "Message")
	w.field("Name", m.Name)
	w.field("From", senderLabel(m.Sender))
	w.field("Sent", w.timestamp(m.CreateTime))
	w.field("Last Updated", w.timestamp(m.LastUpdateTime))
	w.field("Deleted", w.timestamp(m.DeleteTime))
	if m.Thread != nil {
		w.field("Thread", m.Thread.Name)
		w.field("Thread Key", m.Thread.ThreadKey)
	}
	if m.Space != nil {
		w.field("Space", m.Space.Name)
	}
	w.field("Reactions", reactionSummary(m.EmojiReactionSummaries))
	if len(m.Attachment) > 0 {
		w.field("Attachments", strconv.Itoa(len(m.Attachment)))
		for _, a := range m.Attachment {
			fmt.Fprintf(w, "- %s\n", attachmentLine(a))
		}
	}
	if m.Text != "" {
		fmt.Fprintf(w, "\n**Text:**\n%s\n", m.Text)
	}
}

func (messageFormatter) item(w *writer, index int, entity chatapi.Entity) {
	m := entity.(chatapi.Message)
	title := senderLabel(m.Sender)
	if sent := w.timestamp(m.CreateTime); sent != "" {
		title += " · " + sent
	}
	w.heading(2, fmt.Sprintf("%d. %s", index, title))
	w.bullet("Name", m.Name)
	if m.Thread != nil {
		w.bullet("Thread", m.Thread.Name)
	}
	if len(m.Attachment) > 0 {
		w.bullet("Attachments", strconv.Itoa(len(m.Attachment)))
	}
	w.bullet("Reactions", reactionSummary(m.EmojiReactionSummaries))
	w.bullet("Text", m.Text)
}

type memberFormatter struct{}

func (memberFormatter) detail(w *writer, entity chatapi.Entity) {
	m := entity.(chatapi.Membership)
	w.heading(1, "Member: "+m.Label())
	w.field("Name", m.Name)
	if m.Member != nil {
		w.field("User", m.Member.Name)
		w.field("Type", enumLabel(m.Member.Type, ""))
	}
	if m.GroupMember != nil {
		w.field("Group", m.GroupMember.Name)
	}
	w.field("Role", enumLabel(m.Role, "ROLE_"))
	w.field("State", enumLabel(m.State, ""))
	w.field("Joined", w.timestamp(m.CreateTime))
	w.field("Removed", w.timestamp(m.DeleteTime))
}

func (memberFormatter) item(w *writer, index int, entity chatapi.Entity) {
	m := entity.(chatapi.Membership)
	w.heading(2, fmt.Sprintf("%d. %s", index, m.Label()))
	w.bullet("Name", m.Name)
	if m.Member != nil {
		w.bullet("Type", enumLabel(m.Member.Type, ""))
	}
	w.bullet("Role", enumLabel(m.Role, "ROLE_"))
	w.bullet("State", enumLabel(m.State, ""))
}

type reactionFormatter struct{}

func (reactionFormatter) detail(w *writer, entity chatapi.Entity) {
	r := entity.(chatapi.Reaction)
	w.heading(1, "Reaction")
	w.field("Name", r.Name)
	w.field("Emoji", r.Emoji.Label())
	w.field("User", r.User.Label())
}

func (reactionFormatter) item(w *writer, index int, entity chatapi.Entity) {
	r := entity.(chatapi.Reaction)
	w.heading(2, fmt.Sprintf("%d. %s", index, r.Emoji.Label()))
	w.bullet("Name", r.Name)
	w.bullet("User", r.User.Label())
}

// group lists reactions by emoji, in first-seen order, with the users who
// reacted.
func (reactionFormatter) group(w *writer, items []chatapi.Entity) {
	groups := orderedmap.New[string, []string]()
	for _, item := range items {
		r := item.(chatapi.Reaction)
		emoji := r.Emoji.Label()
		users, _ := groups.Get(emoji)
		user := r.User.Label()
		if user == "" {
			user = "Unknown user"
		}
		groups.Set(emoji, append(users, user))
	}

	for pair := groups.Oldest(); pair != nil; pair = pair.Next() {
		fmt.Fprintf(w, "- %s (%d): %s\n", pair.Key, len(pair.Value), strings.Join(pair.Value, ", "))
	}
}

type attachmentFormatter struct{}

func attachmentTitle(a chatapi.Attachment) string {
	if a.ContentName != "" {
		return a.ContentName
	}
	return a.Name
}

func attachmentLine(a chatapi.Attachment) string {
	if a.ContentType == "" {
		return attachmentTitle(a)
	}
	return fmt.Sprintf("%s (%s)", attachmentTitle(a), a.ContentType)
}

func (attachmentFormatter) detail(w *writer, entity chatapi.Entity) {
	a := entity.(chatapi.Attachment)
	w.heading(1, "Attachment: "+attachmentTitle(a))
	w.field("Name", a.Name)
	w.field("Content Type", a.ContentType)
	w.field("Source", enumLabel(a.Source, ""))
	w.field("Download", a.DownloadURI)
	w.field("Thumbnail", a.ThumbnailURI)
	if a.AttachmentDataRef != nil {
		w.field("Media Resource", a.AttachmentDataRef.ResourceName)
	}
	if a.DriveDataRef != nil {
		w.field("Drive File", a.DriveDataRef.DriveFileID)
	}
}

func (attachmentFormatter) item(w *writer, index int, entity chatapi.Entity) {
	a := entity.(chatapi.Attachment)
	w.heading(2, fmt.Sprintf("%d. %s", index, attachmentTitle(a)))
	w.bullet("Name", a.Name)
	w.bullet("Content Type", a.ContentType)
	w.bullet("Source", enumLabel(a.Source, ""))
}

type fallbackFormatter struct{}

func (fallbackFormatter) detail(w *writer, entity chatapi.Entity) {
	w.heading(1, titleCase(entity.Kind().String()))
	w.field("Name", entity.ResourceName())
}

func (fallbackFormatter) item(w *writer, index int, entity chatapi.Entity) {
	w.heading(2, fmt.Sprintf("%d. %s", index, entity.ResourceName()))
}
