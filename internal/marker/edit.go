package marker

import (
	"unicode"
	"unicode/utf8"

	"jetgrind/internal/domain"
	"jetgrind/internal/urldetect"
)

// Editing positions count runes in text runs and one unit per pill, so a
// position can sit before or after a pill but never inside it.

type cell struct {
	r     rune
	style Style
	pill  *Run
}

func (r Rich) cells() []cell {
	var out []cell
	for i := range r {
		run := r[i]
		if run.IsPill() {
			out = append(out, cell{pill: &run})
			continue
		}
		for _, ch := range run.Text {
			out = append(out, cell{r: ch, style: run.Style})
		}
	}
	return out
}

func fromCells(cs []cell) Rich {
	var out Rich
	var buf []rune
	var style Style
	flush := func() {
		if len(buf) > 0 {
			out = append(out, Text(string(buf), style))
			buf = buf[:0]
		}
	}
	for _, c := range cs {
		if c.pill != nil {
			flush()
			out = append(out, *c.pill)
			continue
		}
		if len(buf) > 0 && c.style != style {
			flush()
		}
		style = c.style
		buf = append(buf, c.r)
	}
	flush()
	return out
}

// Len is the number of editing units in r.
func (r Rich) Len() int {
	n := 0
	for _, run := range r {
		if run.IsPill() {
			n++
		} else {
			n += utf8.RuneCountInString(run.Text)
		}
	}
	return n
}

func clamp(pos, n int) int {
	if pos < 0 {
		return 0
	}
	if pos > n {
		return n
	}
	return pos
}

// Insert splices other into r at pos.
func (r Rich) Insert(pos int, other Rich) Rich {
	cs := r.cells()
	pos = clamp(pos, len(cs))
	merged := make([]cell, 0, len(cs)+other.Len())
	merged = append(merged, cs[:pos]...)
	merged = append(merged, other.cells()...)
	merged = append(merged, cs[pos:]...)
	return fromCells(merged)
}

// InsertText inserts styled text at pos.
func (r Rich) InsertText(pos int, s string, style Style) Rich {
	return r.Insert(pos, Rich{Text(s, style)})
}

// Delete removes the units in [start, end). A pill inside the range is
// removed whole; pills outside it are untouched.
func (r Rich) Delete(start, end int) Rich {
	cs := r.cells()
	start = clamp(start, len(cs))
	end = clamp(end, len(cs))
	if start >= end {
		return fromCells(cs)
	}
	kept := make([]cell, 0, len(cs)-(end-start))
	kept = append(kept, cs[:start]...)
	kept = append(kept, cs[end:]...)
	return fromCells(kept)
}

// Paste inserts text at pos, turning every URL in it into a pill backed by
// a newly minted link. It returns the new content and the cursor after the
// pasted material.
func (r Rich) Paste(pos int, text string, style Style) (Rich, int) {
	encoded, links := Encode(text)
	pasted := ToRich(encoded, links, style)
	pos = clamp(pos, r.Len())
	return r.Insert(pos, pasted), pos + pasted.Len()
}

// ConvertTypedURL turns the word just before a terminating space, tab or
// newline into a pill when that word is exactly one URL. cursor is the
// position after the terminator. It returns the new content, the new
// cursor and whether a conversion happened.
func (r Rich) ConvertTypedURL(cursor int, style Style) (Rich, int, bool) {
	cs := r.cells()
	if cursor <= 0 || cursor > len(cs) {
		return r, cursor, false
	}
	term := cs[cursor-1]
	if term.pill != nil || (term.r != ' ' && term.r != '\t' && term.r != '\n') {
		return r, cursor, false
	}

	wordEnd := cursor - 1
	wordStart := wordEnd
	for wordStart > 0 {
		prev := cs[wordStart-1]
		if prev.pill != nil || unicode.IsSpace(prev.r) {
			break
		}
		wordStart--
	}
	if wordStart == wordEnd || (wordStart > 0 && cs[wordStart-1].pill != nil) {
		return r, cursor, false
	}

	word := make([]rune, 0, wordEnd-wordStart)
	for _, c := range cs[wordStart:wordEnd] {
		word = append(word, c.r)
	}
	text := string(word)
	matches := urldetect.ExtractMatches(text)
	if len(matches) != 1 || matches[0].Start != 0 || matches[0].End != len(text) {
		return r, cursor, false
	}

	pill := Pill(domain.NewLink(matches[0].URL))
	next := make([]cell, 0, len(cs)-(wordEnd-wordStart)+1)
	next = append(next, cs[:wordStart]...)
	next = append(next, cell{pill: &pill})
	next = append(next, cs[wordEnd:]...)
	return fromCells(next), wordStart + 2, true
}
