// Copyright (c) 2023-present Mattermost, Inc. All Rights Reserved.
// See LICENSE.txt for license information.

package tools

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/mattermost/googlechat-mcp/mcpserver/render"
)

const defaultPageSize = 25

// FormatArgs is embedded by every tool that produces output.
type FormatArgs struct {
	ResponseFormat string `json:"responseFormat,omitempty" jsonschema:"enum=markdown,enum=json,default=markdown" jsonschema_description:"Output format: 'markdown' for readable text or 'json' for the raw API data" validate:"omitempty,oneof=markdown json"`
}

func (a FormatArgs) mode() render.Mode {
	return render.ParseMode(a.ResponseFormat)
}

// PageArgs is embedded by every list tool.
type PageArgs struct {
	PageSize  *int   `json:"pageSize,omitempty" jsonschema:"minimum=1,maximum=100,default=25" jsonschema_description:"Maximum number of results to return (1-100, default 25)" validate:"omitempty,min=1,max=100"`
	PageToken string `json:"pageToken,omitempty" jsonschema_description:"The nextPageToken from a previous call, to fetch the following page"`
}

func (a PageArgs) query() url.Values {
	size := defaultPageSize
	if a.PageSize != nil {
		size = *a.PageSize
	}
	query := url.Values{}
	query.Set("pageSize", strconv.Itoa(size))
	if a.PageToken != "" {
		query.Set("pageToken", a.PageToken)
	}
	return query
}

// InvalidArgumentsError is returned before dispatch when tool input is
// malformed or out of bounds.
type InvalidArgumentsError struct {
	Reason string
}

func (e *InvalidArgumentsError) Error() string {
	return "Invalid parameters: " + e.Reason
}

func invalidArguments(format string, args ...any) error {
	return &InvalidArgumentsError{Reason: fmt.Sprintf(format, args...)}
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// decodeArguments fills target from the raw tool arguments and validates it.
func decodeArguments(v *validator.Validate, arguments any, target any) error {
	if arguments == nil {
		arguments = map[string]any{}
	}
	data, err := json.Marshal(arguments)
	if err != nil {
		return fmt.Errorf("failed to marshal arguments: %w", err)
	}
	if err := json.Unmarshal(data, target); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			// Field may include embedded struct names; report only the argument.
			field := typeErr.Field
			if i := strings.LastIndex(field, "."); i >= 0 {
				field = field[i+1:]
			}
			return invalidArguments("%s must be of type %s", field, typeErr.Type.Kind())
		}
		return invalidArguments("arguments must be a JSON object")
	}

	if err := v.Struct(target); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			reasons := make([]string, 0, len(validationErrs))
			for _, fieldErr := range validationErrs {
				reasons = append(reasons, describeFieldError(fieldErr))
			}
			return &InvalidArgumentsError{Reason: strings.Join(reasons, "; ")}
		}
		return fmt.Errorf("failed to validate arguments: %w", err)
	}
	return nil
}

func describeFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "min":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", fe.Field(), strings.ReplaceAll(fe.Param(), " ", ", "))
	case "startswith":
		return fmt.Sprintf("%s must start with %q", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s failed %s validation", fe.Field(), fe.Tag())
	}
}

// deletedEcho is the structured result of every delete tool.
func deletedEcho(key, name string) *orderedmap.OrderedMap[string, any] {
	echo := orderedmap.New[string, any]()
	echo.Set("deleted", true)
	echo.Set(key, name)
	return echo
}
