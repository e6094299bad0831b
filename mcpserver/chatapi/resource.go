// Copyright (c) 2023-present Mattermost, Inc. All Rights Reserved.
// See LICENSE.txt for license information.

package chatapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	"github.com/tidwall/gjson"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Unrecognized holds top-level keys a typed entity does not model, in the
// order they appeared in the upstream document.
type Unrecognized = orderedmap.OrderedMap[string, json.RawMessage]

// resourceFields is embedded by value in every entity. It keeps the original
// document so relaying an entity never renames, reorders or drops fields.
type resourceFields struct {
	raw          json.RawMessage
	unrecognized *Unrecognized
}

func captureFields(data []byte, known map[string]struct{}) (resourceFields, error) {
	doc := gjson.ParseBytes(data)
	if !doc.IsObject() {
		return resourceFields{}, fmt.Errorf("expected a JSON object, got %s", doc.Type)
	}

	extra := orderedmap.New[string, json.RawMessage]()
	doc.ForEach(func(key, value gjson.Result) bool {
		if _, ok := known[key.String()]; !ok {
			extra.Set(key.String(), json.RawMessage(value.Raw))
		}
		return true
	})

	return resourceFields{
		raw:          append(json.RawMessage(nil), data...),
		unrecognized: extra,
	}, nil
}

// marshal returns the original document when there is one. Entities built in
// code are encoded from their known fields followed by any unrecognized ones.
func (f resourceFields) marshal(known any) ([]byte, error) {
	if len(f.raw) > 0 {
		return f.raw, nil
	}

	data, err := json.Marshal(known)
	if err != nil || f.unrecognized == nil || f.unrecognized.Len() == 0 {
		return data, err
	}

	var buf bytes.Buffer
	buf.Write(data[:len(data)-1])
	empty := len(data) == 2
	for pair := f.unrecognized.Oldest(); pair != nil; pair = pair.Next() {
		if !empty {
			buf.WriteByte(',')
		}
		empty = false
		key, err := json.Marshal(pair.Key)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(pair.Value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// jsonFieldNames lists the JSON keys of a struct's exported fields.
func jsonFieldNames(t reflect.Type) map[string]struct{} {
	names := make(map[string]struct{}, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			continue
		}
		if name == "" {
			name = field.Name
		}
		names[name] = struct{}{}
	}
	return names
}
