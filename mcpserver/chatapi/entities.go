// Copyright (c) 2023-present Mattermost, Inc. All Rights Reserved.
// See LICENSE.txt for license information.

package chatapi

import (
	"encoding/json"
	"reflect"
)

// User identifies a human or app participant.
type User struct {
	Name        string `json:"name,omitempty"`
	DisplayName string `json:"displayName,omitempty"`
	DomainID    string `json:"domainId,omitempty"`
	Type        string `json:"type,omitempty"`
	IsAnonymous bool   `json:"isAnonymous,omitempty"`
}

// Label prefers the display name and falls back to the resource name.
func (u *User) Label() string {
	if u == nil {
		return ""
	}
	if u.DisplayName != "" {
		return u.DisplayName
	}
	return u.Name
}

type Group struct {
	Name string `json:"name,omitempty"`
}

type ResourceRef struct {
	Name string `json:"name,omitempty"`
}

type Thread struct {
	Name      string `json:"name,omitempty"`
	ThreadKey string `json:"threadKey,omitempty"`
}

type SpaceDetails struct {
	Description string `json:"description,omitempty"`
	Guidelines  string `json:"guidelines,omitempty"`
}

type MembershipCount struct {
	JoinedDirectHumanUserCount int `json:"joinedDirectHumanUserCount,omitempty"`
	JoinedGroupCount           int `json:"joinedGroupCount,omitempty"`
}

type CustomEmoji struct {
	UID       string `json:"uid,omitempty"`
	EmojiName string `json:"emojiName,omitempty"`
}

type Emoji struct {
	Unicode     string       `json:"unicode,omitempty"`
	CustomEmoji *CustomEmoji `json:"customEmoji,omitempty"`
}

// Label is the unicode glyph, or the custom emoji's name or uid.
func (e *Emoji) Label() string {
	switch {
	case e == nil:
		return "?"
	case e.Unicode != "":
		return e.Unicode
	case e.CustomEmoji != nil && e.CustomEmoji.EmojiName != "":
		return e.CustomEmoji.EmojiName
	case e.CustomEmoji != nil && e.CustomEmoji.UID != "":
		return ":" + e.CustomEmoji.UID + ":"
	default:
		return "?"
	}
}

type EmojiReactionSummary struct {
	Emoji         *Emoji `json:"emoji,omitempty"`
	ReactionCount int    `json:"reactionCount,omitempty"`
}

type AttachmentDataRef struct {
	ResourceName          string `json:"resourceName,omitempty"`
	AttachmentUploadToken string `json:"attachmentUploadToken,omitempty"`
}

type DriveDataRef struct {
	DriveFileID string `json:"driveFileId,omitempty"`
}

// Space is a conversation container: a named space, group chat or DM.
type Space struct {
	Name                string           `json:"name"`
	DisplayName         string           `json:"displayName,omitempty"`
	SpaceType           string           `json:"spaceType,omitempty"`
	SpaceThreadingState string           `json:"spaceThreadingState,omitempty"`
	SpaceDetails        *SpaceDetails    `json:"spaceDetails,omitempty"`
	SpaceHistoryState   string           `json:"spaceHistoryState,omitempty"`
	ExternalUserAllowed *bool            `json:"externalUserAllowed,omitempty"`
	SingleUserBotDm     bool             `json:"singleUserBotDm,omitempty"`
	CreateTime          string           `json:"createTime,omitempty"`
	LastActiveTime      string           `json:"lastActiveTime,omitempty"`
	MembershipCount     *MembershipCount `json:"membershipCount,omitempty"`
	SpaceURI            string           `json:"spaceUri,omitempty"`

	fields resourceFields
}

var spaceFields = jsonFieldNames(reflect.TypeOf(Space{}))

func (s Space) Kind() Kind                  { return KindSpace }
func (s Space) ResourceName() string        { return s.Name }
func (s Space) Unrecognized() *Unrecognized { return s.fields.unrecognized }

func (s *Space) UnmarshalJSON(data []byte) error {
	type plain Space
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	fields, err := captureFields(data, spaceFields)
	if err != nil {
		return err
	}
	p.fields = fields
	*s = Space(p)
	return nil
}

func (s Space) MarshalJSON() ([]byte, error) {
	type plain Space
	return s.fields.marshal(plain(s))
}

// Message is a single posted item within a space.
type Message struct {
	Name                   string                 `json:"name"`
	Sender                 *User                  `json:"sender,omitempty"`
	CreateTime             string                 `json:"createTime,omitempty"`
	LastUpdateTime         string                 `json:"lastUpdateTime,omitempty"`
	DeleteTime             string                 `json:"deleteTime,omitempty"`
	Text                   string                 `json:"text,omitempty"`
	Thread                 *Thread                `json:"thread,omitempty"`
	Space                  *ResourceRef           `json:"space,omitempty"`
	ThreadReply            bool                   `json:"threadReply,omitempty"`
	Attachment             []Attachment           `json:"attachment,omitempty"`
	EmojiReactionSummaries []EmojiReactionSummary `json:"emojiReactionSummaries,omitempty"`

	fields resourceFields
}

var messageFields = jsonFieldNames(reflect.TypeOf(Message{}))

func (m Message) Kind() Kind                  { return KindMessage }
func (m Message) ResourceName() string        { return m.Name }
func (m Message) Unrecognized() *Unrecognized { return m.fields.unrecognized }

func (m *Message) UnmarshalJSON(data []byte) error {
	type plain Message
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	fields, err := captureFields(data, messageFields)
	if err != nil {
		return err
	}
	p.fields = fields
	*m = Message(p)
	return nil
}

func (m Message) MarshalJSON() ([]byte, error) {
	type plain Message
	return m.fields.marshal(plain(m))
}

// Membership relates a user or group to a space.
type Membership struct {
	Name        string `json:"name"`
	State       string `json:"state,omitempty"`
	Role        string `json:"role,omitempty"`
	Member      *User  `json:"member,omitempty"`
	GroupMember *Group `json:"groupMember,omitempty"`
	CreateTime  string `json:"createTime,omitempty"`
	DeleteTime  string `json:"deleteTime,omitempty"`

	fields resourceFields
}

var membershipFields = jsonFieldNames(reflect.TypeOf(Membership{}))

func (m Membership) Kind() Kind                  { return KindMember }
func (m Membership) ResourceName() string        { return m.Name }
func (m Membership) Unrecognized() *Unrecognized { return m.fields.unrecognized }

// Label names the member for display.
func (m Membership) Label() string {
	switch {
	case m.Member != nil && m.Member.Label() != "":
		return m.Member.Label()
	case m.GroupMember != nil && m.GroupMember.Name != "":
		return m.GroupMember.Name
	default:
		return m.Name
	}
}

func (m *Membership) UnmarshalJSON(data []byte) error {
	type plain Membership
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	fields, err := captureFields(data, membershipFields)
	if err != nil {
		return err
	}
	p.fields = fields
	*m = Membership(p)
	return nil
}

func (m Membership) MarshalJSON() ([]byte, error) {
	type plain Membership
	return m.fields.marshal(plain(m))
}

// Reaction is an emoji attached to a message by a user.
type Reaction struct {
	Name  string `json:"name"`
	User  *User  `json:"user,omitempty"`
	Emoji *Emoji `json:"emoji,omitempty"`

	fields resourceFields
}

var reactionFields = jsonFieldNames(reflect.TypeOf(Reaction{}))

func (r Reaction) Kind() Kind                  { return KindReaction }
func (r Reaction) ResourceName() string        { return r.Name }
func (r Reaction) Unrecognized() *Unrecognized { return r.fields.unrecognized }

func (r *Reaction) UnmarshalJSON(data []byte) error {
	type plain Reaction
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	fields, err := captureFields(data, reactionFields)
	if err != nil {
		return err
	}
	p.fields = fields
	*r = Reaction(p)
	return nil
}

func (r Reaction) MarshalJSON() ([]byte, error) {
	type plain Reaction
	return r.fields.marshal(plain(r))
}

// Attachment is a file reference associated with a message.
type Attachment struct {
	Name              string             `json:"name"`
	ContentName       string             `json:"contentName,omitempty"`
	ContentType       string             `json:"contentType,omitempty"`
	ThumbnailURI      string             `json:"thumbnailUri,omitempty"`
	DownloadURI       string             `json:"downloadUri,omitempty"`
	Source            string             `json:"source,omitempty"`
	AttachmentDataRef *AttachmentDataRef `json:"attachmentDataRef,omitempty"`
	DriveDataRef      *DriveDataRef      `json:"driveDataRef,omitempty"`

	fields resourceFields
}

var attachmentFields = jsonFieldNames(reflect.TypeOf(Attachment{}))

func (a Attachment) Kind() Kind                  { return KindAttachment }
func (a Attachment) ResourceName() string        { return a.Name }
func (a Attachment) Unrecognized() *Unrecognized { return a.fields.unrecognized }

func (a *Attachment) UnmarshalJSON(data []byte) error {
	type plain Attachment
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	fields, err := captureFields(data, attachmentFields)
	if err != nil {
		return err
	}
	p.fields = fields
	*a = Attachment(p)
	return nil
}

func (a Attachment) MarshalJSON() ([]byte, error) {
	type plain Attachment
	return a.fields.marshal(plain(a))
}
