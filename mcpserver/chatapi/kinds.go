// Copyright (c) 2023-present Mattermost, Inc. All Rights Reserved.
// See LICENSE.txt for license information.

package chatapi

// Kind tags the five entity types returned by the Chat API.
type Kind int

const (
	KindSpace Kind = iota + 1
	KindMessage
	KindMember
	KindReaction
	KindAttachment
)

func (k Kind) String() string {
	switch k {
	case KindSpace:
		return "space"
	case KindMessage:
		return "message"
	case KindMember:
		return "member"
	case KindReaction:
		return "reaction"
	case KindAttachment:
		return "attachment"
	default:
		return "unknown"
	}
}

// CollectionKey is the JSON key holding items in a list response.
func (k Kind) CollectionKey() string {
	switch k {
	case KindSpace:
		return "spaces"
	case KindMessage:
		return "messages"
	case KindMember:
		return "memberships"
	case KindReaction:
		return "reactions"
	case KindAttachment:
		return "attachments"
	default:
		return "items"
	}
}

// Plural is the human-readable plural used in rendered text.
func (k Kind) Plural() string {
	if k == KindMember {
		return "members"
	}
	return k.CollectionKey()
}

// Entity is implemented by every typed Chat API resource.
type Entity interface {
	Kind() Kind
	ResourceName() string
}
