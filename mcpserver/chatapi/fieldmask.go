// Copyright (c) 2023-present Mattermost, Inc. All Rights Reserved.
// See LICENSE.txt for license information.

package chatapi

import "strings"

// MaskField is one candidate path for an update mask.
type MaskField struct {
	Path string
	Set  bool
}

// FieldMask joins, in order, the paths of the fields that were supplied.
func FieldMask(fields ...MaskField) string {
	paths := make([]string, 0, len(fields))
	for _, field := range fields {
		if field.Set {
			paths = append(paths, field.Path)
		}
	}
	return strings.Join(paths, ",")
}
