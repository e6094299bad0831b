// Copyright (c) 2023-present Mattermost, Inc. All Rights Reserved.
// See LICENSE.txt for license information.

package tools

import (
	"github.com/invopop/jsonschema"
)

// NewJSONSchemaFromStruct reflects the input schema for a tool's argument
// struct. Fields without omitempty in their json tag are required.
func NewJSONSchemaFromStruct[T any]() *jsonschema.Schema {
	reflector := &jsonschema.Reflector{
		DoNotReference: true,
		ExpandedStruct: true,
	}
	var args T
	return reflector.Reflect(&args)
}
