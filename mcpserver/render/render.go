// Copyright (c) 2023-present Mattermost, Inc. All Rights Reserved.
// See LICENSE.txt for license information.

// Package render turns Chat API entities and pages into tool output: either
// a verbatim JSON echo or a bounded Markdown rendering.
package render

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/mattermost/googlechat-mcp/mcpserver/chatapi"
)

// Mode selects the output representation.
type Mode int

const (
	ModeText Mode = iota
	ModeStructured
)

// Format names accepted by the responseFormat argument.
const (
	FormatMarkdown = "markdown"
	FormatJSON     = "json"
)

// ParseMode maps a responseFormat value to a Mode. Anything but "json" is text.
func ParseMode(format string) Mode {
	if strings.EqualFold(strings.TrimSpace(format), FormatJSON) {
		return ModeStructured
	}
	return ModeText
}

const (
	// MaxTextLength is the ceiling, in characters, for any text output.
	MaxTextLength = 25000

	// TruncationNotice is appended after a text output is cut.
	TruncationNotice = "\n\n[Response truncated. Use pageToken or a smaller pageSize to retrieve the remaining results.]"

	truncateAt    = MaxTextLength - 100
	snippetLength = 100
)

// Result pairs the text returned to the agent with the structured echo,
// which is always the complete, untruncated data.
type Result struct {
	Text       string
	Structured any
}

type Options struct {
	// Location is the time zone timestamps are displayed in. Defaults to UTC.
	Location *time.Location
}

type Renderer struct {
	location *time.Location
}

func New(opts Options) *Renderer {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	return &Renderer{location: opts.Location}
}

// Entity renders a single resource.
func (r *Renderer) Entity(entity chatapi.Entity, mode Mode) (Result, error) {
	if mode == ModeStructured {
		return structured(entity)
	}

	w := r.newWriter()
	formatterFor(entity.Kind()).detail(w, entity)
	return Result{Text: finish(w.String()), Structured: entity}, nil
}

// Collection renders a page with a count header, one block per item and a
// continuation footer when more results exist.
func (r *Renderer) Collection(page chatapi.Page, mode Mode) (Result, error) {
	wrapper := collectionEcho{page: page}

	if mode == ModeStructured {
		return structured(wrapper)
	}

	w := r.newWriter()
	f := formatterFor(page.Kind)
	if len(page.Items) == 0 {
		fmt.Fprintf(w, "No %s found.\n", page.Kind.Plural())
	} else {
		fmt.Fprintf(w, "# %s (%d)\n\n", titleCase(page.Kind.Plural()), len(page.Items))
		if g, ok := f.(groupingFormatter); ok {
			g.group(w, page.Items)
		} else {
			for i, item := range page.Items {
				if i > 0 {
					w.WriteString("\n")
				}
				f.item(w, i+1, item)
			}
		}
	}

	if page.HasMore() {
		fmt.Fprintf(w, "\n---\nMore results available. Use pageToken: `%s`\n", page.NextPageToken)
	}

	return Result{Text: finish(w.String()), Structured: wrapper}, nil
}

// Value renders an ad-hoc result such as a delete confirmation.
func (r *Renderer) Value(text string, value any, mode Mode) (Result, error) {
	if mode == ModeStructured {
		return structured(value)
	}
	return Result{Text: finish(text), Structured: value}, nil
}

func structured(value any) (Result, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(value); err != nil {
		return Result{}, fmt.Errorf("failed to encode response: %w", err)
	}
	return Result{Text: strings.TrimRight(buf.String(), "\n"), Structured: value}, nil
}

// collectionEcho is the structured form of a page: count, the items under
// their collection key, hasMore and, when set, nextPageToken. It encodes
// itself so upstream strings are never HTML-escaped.
type collectionEcho struct {
	page chatapi.Page
}

type echoField struct {
	key   string
	value any
}

func (c collectionEcho) fields() []echoField {
	items := c.page.Items
	if items == nil {
		items = []chatapi.Entity{}
	}
	fields := []echoField{
		{"count", len(items)},
		{c.page.Kind.CollectionKey(), items},
		{"hasMore", c.page.HasMore()},
	}
	if c.page.HasMore() {
		fields = append(fields, echoField{"nextPageToken", c.page.NextPageToken})
	}
	return fields
}

func (c collectionEcho) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)

	buf.WriteByte('{')
	for i, f := range c.fields() {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := enc.Encode(f.key); err != nil {
			return nil, err
		}
		buf.WriteByte(':')
		if err := enc.Encode(f.value); err != nil {
			return nil, fmt.Errorf("failed to encode %s: %w", f.key, err)
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// finish applies the length ceiling to every text output.
func finish(text string) string {
	text = strings.TrimRight(text, "\n")
	if utf8.RuneCountInString(text) <= MaxTextLength {
		return text
	}
	runes := []rune(text)
	return string(runes[:truncateAt]) + TruncationNotice
}

// clip shortens free text shown inside list items.
func clip(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit]) + "..."
}
