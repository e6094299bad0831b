// Copyright (c) 2023-present Mattermost, Inc. All Rights Reserved.
// See LICENSE.txt for license information.

package chatapi

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/tidwall/gjson"
)

// Page is one bounded slice of a list response.
type Page struct {
	Kind          Kind
	Items         []Entity
	NextPageToken string
}

// HasMore reports whether a continuation token is present.
func (p Page) HasMore() bool {
	return p.NextPageToken != ""
}

// DecodePage decodes a list response whose items live under the kind's
// collection key. A response without that key is an empty page.
func DecodePage[T Entity](raw json.RawMessage) (Page, error) {
	var zero T
	kind := zero.Kind()

	doc := gjson.ParseBytes(raw)
	if !doc.IsObject() {
		return Page{}, fmt.Errorf("failed to decode %s list: expected a JSON object", kind)
	}

	page := Page{
		Kind:          kind,
		Items:         []Entity{},
		NextPageToken: doc.Get("nextPageToken").String(),
	}

	items := doc.Get(kind.CollectionKey())
	if !items.Exists() {
		return page, nil
	}
	if !items.IsArray() {
		return Page{}, fmt.Errorf("failed to decode %s list: %q is not an array", kind, kind.CollectionKey())
	}

	var decoded []T
	if err := json.Unmarshal([]byte(items.Raw), &decoded); err != nil {
		return Page{}, fmt.Errorf("failed to decode %s list: %w", kind, err)
	}
	for _, item := range decoded {
		page.Items = append(page.Items, item)
	}
	return page, nil
}

var errMissingResourceName = errors.New("response has no resource name")

// DecodeEntity decodes a single resource and checks that it carries a name.
func DecodeEntity[T Entity](raw json.RawMessage) (T, error) {
	var entity T
	if err := json.Unmarshal(raw, &entity); err != nil {
		return entity, fmt.Errorf("failed to decode %s: %w", entity.Kind(), err)
	}
	if entity.ResourceName() == "" {
		return entity, fmt.Errorf("failed to decode %s: %w", entity.Kind(), errMissingResourceName)
	}
	return entity, nil
}
