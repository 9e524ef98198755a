// Package render draws rich item content for text surfaces.
package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"jetgrind/internal/domain"
	"jetgrind/internal/marker"
)

var (
	pillStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Underline(true)
	faviconStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	indexStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	completedStyle = marker.Style{Strikethrough: true, Faint: true}
)

// Chat renders runs for a chat message: pills become "title (url)".
func Chat(rich marker.Rich) string {
	var b strings.Builder
	for _, run := range rich {
		if !run.IsPill() {
			b.WriteString(run.Text)
			continue
		}
		if run.Link.DisplayTitle == "" || run.Link.DisplayTitle == run.Link.URL {
			b.WriteString(run.Link.URL)
			continue
		}
		fmt.Fprintf(&b, "%s (%s)", run.Link.DisplayTitle, run.Link.URL)
	}
	return b.String()
}

// Terminal renders runs with ANSI styling. Pills are underlined and carry
// a dot when a favicon is cached.
func Terminal(rich marker.Rich) string {
	var b strings.Builder
	for _, run := range rich {
		if run.IsPill() {
			if run.Link.HasFavicon() {
				b.WriteString(faviconStyle.Render("●") + " ")
			}
			b.WriteString(pillStyle.Render(run.Link.DisplayTitle))
			continue
		}
		b.WriteString(textStyle(run.Style).Render(run.Text))
	}
	return b.String()
}

func textStyle(s marker.Style) lipgloss.Style {
	style := lipgloss.NewStyle().
		Bold(s.Bold).
		Italic(s.Italic).
		Strikethrough(s.Strikethrough).
		Faint(s.Faint)
	if s.Color != "" {
		style = style.Foreground(lipgloss.Color(s.Color))
	}
	return style
}

// ItemRich expands an item's title and description. Completed items are
// struck through.
func ItemRich(item domain.Item) (title, description marker.Rich) {
	style := marker.Style{}
	if item.IsCompleted {
		style = completedStyle
	}
	title = marker.ToRich(item.Title, item.Links, style)
	if item.Description != "" {
		description = marker.ToRich(item.Description, item.Links, style)
	}
	return title, description
}

// ChatList renders items as a numbered list for chat replies.
func ChatList(items []domain.Item) string {
	if len(items) == 0 {
		return "Nothing to do. Send me a task to add it."
	}
	var b strings.Builder
	for i, item := range items {
		title, desc := ItemRich(item)
		box := "☐"
		if item.IsCompleted {
			box = "☑"
		}
		fmt.Fprintf(&b, "%d. %s %s", i+1, box, Chat(title))
		if desc != nil {
			fmt.Fprintf(&b, "\n   %s", Chat(desc))
		}
		if i < len(items)-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

// TerminalList renders items as a numbered list for the CLI.
func TerminalList(items []domain.Item) string {
	if len(items) == 0 {
		return indexStyle.Render("No items.")
	}
	lines := make([]string, 0, len(items))
	for i, item := range items {
		title, desc := ItemRich(item)
		box := "[ ]"
		if item.IsCompleted {
			box = "[x]"
		}
		line := fmt.Sprintf("%s %s %s", indexStyle.Render(fmt.Sprintf("%2d.", i+1)), box, Terminal(title))
		if desc != nil {
			line += "\n      " + Terminal(desc)
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}
