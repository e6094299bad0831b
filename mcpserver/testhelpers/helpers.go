// Copyright (c) 2023-present Mattermost, Inc. All Rights Reserved.
// See LICENSE.txt for license information.

package testhelpers

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestData holds the resource names used across fixtures
type TestData struct {
	SpaceName   string
	MessageName string
	MemberName  string
	UserName    string
}

// DefaultTestData returns a consistent set of resource names
func DefaultTestData() TestData {
	return TestData{
		SpaceName:   "spaces/AAAAtest",
		MessageName: "spaces/AAAAtest/messages/msg1",
		MemberName:  "spaces/AAAAtest/members/111",
		UserName:    "users/111",
	}
}

// Env returns a Getenv-style lookup over a fixed map
func Env(values map[string]string) func(string) string {
	return func(name string) string {
		return values[name]
	}
}

// SpaceJSON builds a space resource document
func SpaceJSON(t *testing.T, name, displayName, description string) string {
	space := map[string]any{
		"name":        name,
		"displayName": displayName,
		"spaceType":   "SPACE",
	}
	if description != "" {
		space["spaceDetails"] = map[string]string{"description": description}
	}
	return mustJSON(t, space)
}

// MessageJSON builds a message resource document
func MessageJSON(t *testing.T, name, senderName, text string) string {
	return mustJSON(t, map[string]any{
		"name":       name,
		"sender":     map[string]string{"name": senderName, "type": "HUMAN"},
		"createTime": "2024-01-15T10:30:00Z",
		"text":       text,
	})
}

// MembershipJSON builds a membership resource document
func MembershipJSON(t *testing.T, name, userName, displayName string) string {
	return mustJSON(t, map[string]any{
		"name":  name,
		"state": "JOINED",
		"role":  "ROLE_MEMBER",
		"member": map[string]string{
			"name":        userName,
			"displayName": displayName,
			"type":        "HUMAN",
		},
	})
}

// ListJSON wraps raw item documents in a list response
func ListJSON(t *testing.T, key string, nextPageToken string, items ...string) string {
	raw := make([]json.RawMessage, 0, len(items))
	for _, item := range items {
		raw = append(raw, json.RawMessage(item))
	}
	doc := map[string]any{key: raw}
	if nextPageToken != "" {
		doc["nextPageToken"] = nextPageToken
	}
	return mustJSON(t, doc)
}

func mustJSON(t *testing.T, v any) string {
	data, err := json.Marshal(v)
	require.NoError(t, err, "Failed to marshal fixture")
	return string(data)
}
