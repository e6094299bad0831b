// Copyright (c) 2023-present Mattermost, Inc. All Rights Reserved.
// See LICENSE.txt for license information.

package chatapi

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const spaceDocument = `{"name":"spaces/AAA","displayName":"Launch","zFuture":{"a":1},"spaceType":"SPACE","importMode":false,"spaceDetails":{"description":"Rocket talk","extraDetail":"kept"}}`

func TestSpaceKeepsUnrecognizedFieldsInOrder(t *testing.T) {
	var space Space
	require.NoError(t, json.Unmarshal([]byte(spaceDocument), &space))

	assert.Equal(t, "spaces/AAA", space.Name)
	assert.Equal(t, "Launch", space.DisplayName)
	assert.Equal(t, "Rocket talk", space.SpaceDetails.Description)

	extra := space.Unrecognized()
	require.NotNil(t, extra)
	keys := []string{}
	for pair := extra.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	assert.Equal(t, []string{"zFuture", "importMode"}, keys)

	value, ok := extra.Get("zFuture")
	require.True(t, ok)
	assert.JSONEq(t, `{"a":1}`, string(value))
}

func TestEntityMarshalIsVerbatim(t *testing.T) {
	var space Space
	require.NoError(t, json.Unmarshal([]byte(spaceDocument), &space))

	data, err := json.Marshal(space)
	require.NoError(t, err)
	assert.Equal(t, spaceDocument, string(data), "relayed entities keep field names and order")
}

func TestConstructedEntityMarshal(t *testing.T) {
	msg := Message{Name: "spaces/AAA/messages/1", Text: "hi"}
	data, err := json.Marshal(msg)
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"spaces/AAA/messages/1","text":"hi"}`, string(data))
}

func TestConstructedEntityMarshalWithExtras(t *testing.T) {
	fields, err := captureFields([]byte(`{"name":"x","custom":true}`), reactionFields)
	require.NoError(t, err)

	// Drop the raw document so encoding goes through the known fields
	fields.raw = nil
	reaction := Reaction{Name: "spaces/A/messages/1/reactions/2", fields: fields}

	data, err := json.Marshal(reaction)
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"spaces/A/messages/1/reactions/2","custom":true}`, string(data))
}

func TestMessageNestedAttachments(t *testing.T) {
	doc := `{"name":"spaces/A/messages/1","sender":{"name":"users/1","displayName":"Ada"},"attachment":[{"name":"spaces/A/messages/1/attachments/x","contentName":"plan.pdf","novel":1}]}`
	msg, err := DecodeEntity[Message](json.RawMessage(doc))
	require.NoError(t, err)

	require.Len(t, msg.Attachment, 1)
	assert.Equal(t, "plan.pdf", msg.Attachment[0].ContentName)
	assert.Equal(t, "Ada", msg.Sender.Label())

	_, ok := msg.Attachment[0].Unrecognized().Get("novel")
	assert.True(t, ok)
}

func TestDecodeEntityRequiresName(t *testing.T) {
	_, err := DecodeEntity[Space](json.RawMessage(`{"displayName":"nameless"}`))
	assert.ErrorIs(t, err, errMissingResourceName)

	_, err = DecodeEntity[Space](json.RawMessage(`[1,2]`))
	assert.Error(t, err)
}

func TestDecodePage(t *testing.T) {
	raw := json.RawMessage(`{"spaces":[{"name":"spaces/A"},{"name":"spaces/B"}],"nextPageToken":"TOK123"}`)
	page, err := DecodePage[Space](raw)
	require.NoError(t, err)

	assert.Equal(t, KindSpace, page.Kind)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "spaces/B", page.Items[1].ResourceName())
	assert.True(t, page.HasMore())
	assert.Equal(t, "TOK123", page.NextPageToken)
}

func TestDecodePageEmpty(t *testing.T) {
	page, err := DecodePage[Membership](json.RawMessage(`{}`))
	require.NoError(t, err)
	assert.Empty(t, page.Items)
	assert.False(t, page.HasMore())

	_, err = DecodePage[Membership](json.RawMessage(`{"memberships":{"oops":true}}`))
	assert.Error(t, err)
}

func TestLabels(t *testing.T) {
	assert.Equal(t, "👍", (&Emoji{Unicode: "👍"}).Label())
	assert.Equal(t, ":abc:", (&Emoji{CustomEmoji: &CustomEmoji{UID: "abc"}}).Label())
	assert.Equal(t, "?", (*Emoji)(nil).Label())

	assert.Equal(t, "users/9", (&User{Name: "users/9"}).Label())
	assert.Equal(t, "groups/eng", Membership{GroupMember: &Group{Name: "groups/eng"}}.Label())
}

func TestKindKeys(t *testing.T) {
	assert.Equal(t, "memberships", KindMember.CollectionKey())
	assert.Equal(t, "members", KindMember.Plural())
	assert.Equal(t, "reactions", KindReaction.Plural())
}
