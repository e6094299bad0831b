// Copyright (c) 2023-present Mattermost, Inc. All Rights Reserved.
// See LICENSE.txt for license information.

package render

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const timestampLayout = "Jan 2, 2006, 03:04 PM"

type writer struct {
	strings.Builder
	location *time.Location
}

func (r *Renderer) newWriter() *writer {
	return &writer{location: r.location}
}

func (w *writer) heading(level int, text string) {
	fmt.Fprintf(w, "%s %s\n\n", strings.Repeat("#", level), text)
}

// field writes a detail line, skipping empty values.
func (w *writer) field(label, value string) {
	if value == "" {
		return
	}
	fmt.Fprintf(w, "**%s:** %s\n", label, value)
}

// bullet writes a list-item line, skipping empty values.
func (w *writer) bullet(label, value string) {
	if value == "" {
		return
	}
	fmt.Fprintf(w, "- **%s:** %s\n", label, value)
}

// timestamp formats an RFC 3339 value in the display zone. Anything that
// does not parse is returned unchanged.
func (w *writer) timestamp(value string) string {
	if value == "" {
		return ""
	}
	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return value
	}
	return t.In(w.location).Format(timestampLayout)
}

// enumLabel turns an API enum such as ROLE_MANAGER into "Manager".
func enumLabel(value, prefix string) string {
	if value == "" || strings.HasSuffix(value, "_UNSPECIFIED") {
		return ""
	}
	words := strings.ReplaceAll(strings.TrimPrefix(value, prefix), "_", " ")
	return titleCase(strings.ToLower(words))
}

// titleCase builds a new Caser each call; Casers are not safe for concurrent use.
func titleCase(s string) string {
	return cases.Title(language.English).String(s)
}

func yesNo(b *bool) string {
	switch {
	case b == nil:
		return ""
	case *b:
		return "Yes"
	default:
		return "No"
	}
}

func count(n int, singular, plural string) string {
	if n == 1 {
		return "1 " + singular
	}
	return strconv.Itoa(n) + " " + plural
}
