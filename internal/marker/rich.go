package marker

import (
	"strings"

	"github.com/google/uuid"

	"jetgrind/internal/domain"
)

// Style carries display attributes for plain-text runs. Renderers decide
// how to honour each field.
type Style struct {
	Bold          bool
	Italic        bool
	Strikethrough bool
	Faint         bool
	Color         string
}

// RunKind tags the variant held by a Run.
type RunKind int

const (
	// TextRun is a span of styled, editable characters.
	TextRun RunKind = iota
	// PillRun is an atomic link unit. It is kept or deleted whole.
	PillRun
)

// Run is one element of rich content: either styled text or a link pill.
type Run struct {
	Kind  RunKind
	Text  string
	Style Style
	Link  domain.Link

	// token is the marker text a pill was decoded from, if any.
	token string
}

// Text builds a plain-text run.
func Text(s string, style Style) Run {
	return Run{Kind: TextRun, Text: s, Style: style}
}

// Pill builds a pill run for link.
func Pill(link domain.Link) Run {
	return Run{Kind: PillRun, Link: link}
}

// IsPill reports whether the run is a pill.
func (r Run) IsPill() bool {
	return r.Kind == PillRun
}

// Marker returns the token written back for a pill run. It keeps the
// spelling the pill was decoded from so decoding is an exact inverse.
func (r Run) Marker() string {
	if r.token != "" {
		if id, ok := ParseToken(r.token); ok && id == r.Link.ID {
			return r.token
		}
	}
	return Token(r.Link.ID)
}

// Rich is an ordered sequence of runs.
type Rich []Run

// ToRich expands marker tokens in text into pills using links. Tokens whose
// id is not in links stay as literal text. Segment order is preserved.
func ToRich(text string, links []domain.Link, style Style) Rich {
	byID := make(map[uuid.UUID]domain.Link, len(links))
	for _, l := range links {
		if _, dup := byID[l.ID]; !dup {
			byID[l.ID] = l
		}
	}

	var out Rich
	cursor := 0
	for _, occ := range FindTokens(text) {
		if cursor < occ.Start {
			out = append(out, Text(text[cursor:occ.Start], style))
		}
		raw := text[occ.Start:occ.End]
		if link, ok := byID[occ.ID]; ok {
			pill := Pill(link)
			pill.token = raw
			out = append(out, pill)
		} else {
			out = append(out, Text(raw, style))
		}
		cursor = occ.End
	}
	if cursor < len(text) {
		out = append(out, Text(text[cursor:], style))
	}
	return out
}

// FromRich flattens rich content back into marker text and the links its
// pills reference, in first-seen order without duplicates.
func FromRich(rich Rich) (string, []domain.Link) {
	var b strings.Builder
	links := []domain.Link{}
	seen := make(map[uuid.UUID]bool)
	for _, run := range rich {
		if !run.IsPill() {
			b.WriteString(run.Text)
			continue
		}
		b.WriteString(run.Marker())
		if !seen[run.Link.ID] {
			seen[run.Link.ID] = true
			links = append(links, run.Link)
		}
	}
	return b.String(), links
}

// PlainText renders pills as their display titles.
func (r Rich) PlainText() string {
	var b strings.Builder
	for _, run := range r {
		if run.IsPill() {
			b.WriteString(run.Link.DisplayTitle)
		} else {
			b.WriteString(run.Text)
		}
	}
	return b.String()
}

// Pills returns the pill runs in order.
func (r Rich) Pills() []Run {
	var out []Run
	for _, run := range r {
		if run.IsPill() {
			out = append(out, run)
		}
	}
	return out
}
