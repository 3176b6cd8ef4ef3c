package playground

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	zone "github.com/lrstanley/bubblezone"
	"github.com/muesli/reflow/wordwrap"
)

func mentionZoneID(i int) string {
	return fmt.Sprintf("playground-mention-%d", i)
}

// View implements tea.Model.
func (m Model) View() string {
	sections := []string{
		titleStyle.Render("richinput playground"),
		m.renderField(),
		m.renderPlainText(),
		m.renderRichText(),
		m.renderRegions(),
		m.renderStatus(),
	}
	if picker := m.renderPicker(); picker != "" {
		sections = append(sections, picker)
	}
	if m.status != "" {
		sections = append(sections, m.status)
	}
	if m.showLog {
		sections = append(sections, m.renderLog())
	}
	if len(m.matches) > 0 {
		sections = append(sections, m.help.View(m.pickerKeys))
	} else {
		sections = append(sections, m.help.View(m.keys))
	}
	return zone.Scan(lipgloss.JoinVertical(lipgloss.Left, sections...))
}

// renderField draws the display text with the caret and selection. Binding
// code points are drawn as @name.
func (m Model) renderField() string {
	e := m.field.engine
	sel := e.DisplaySelection().Normalized()
	caret := e.DisplaySelection().Caret()
	rs := []rune(e.DisplayText())
	bindings := m.field.comp.Bindings

	var b strings.Builder
	for i, r := range rs {
		cell := string(r)
		if bindings != nil {
			if bd, ok := bindings.TryGetByCodePoint(r); ok {
				cell = mentionStyle.Render("@" + bd.Name)
			}
		}
		switch {
		case r == '\n':
			if i == caret && !sel.HasSelection() {
				b.WriteString(caretStyle.Render(" "))
			}
			b.WriteString("\n")
			continue
		case sel.HasSelection() && i >= sel.SelectionStart && i < sel.SelectionEnd:
			cell = selectionStyle.Render(cell)
		case i == caret && !sel.HasSelection():
			cell = caretStyle.Render(cell)
		}
		b.WriteString(cell)
	}
	if caret >= len(rs) && !sel.HasSelection() && e.Editing() {
		b.WriteString(caretStyle.Render(" "))
	}

	width := max(m.measurer.Width, 1)
	return fieldStyle.Width(width + 2).Render(wordwrap.String(b.String(), width))
}

func (m Model) renderPlainText() string {
	return labelStyle.Render("text: ") + truncate(fmt.Sprintf("%q", m.field.engine.Text()), m.width-6)
}

// renderRegions lists the tagged runs of the rich text, e.g. "hi"<b> " there".
func (m Model) renderRegions() string {
	e := m.field.engine
	if !e.RichTextEnabled() {
		return ""
	}
	var runs []string
	for _, r := range e.Processor().ParseRichTextRegions(e.RichText()) {
		runs = append(runs, fmt.Sprintf("%q", r.Text())+strings.Join(r.StartTags, ""))
	}
	return labelStyle.Render("runs: ") + truncate(strings.Join(runs, " "), m.width-6)
}

func (m Model) renderRichText() string {
	e := m.field.engine
	if !e.RichTextEnabled() {
		return labelStyle.Render("plain text")
	}
	return labelStyle.Render("rich: ") + truncate(fmt.Sprintf("%q", e.RichText()), m.width-6)
}

func (m Model) renderStatus() string {
	e := m.field.engine
	var parts []string
	if e.RichTextEnabled() {
		var tags []string
		for _, name := range []string{"b", "i", "u"} {
			style := inactiveTagStyle
			if e.IsTagActive(name) {
				style = activeTagStyle
			}
			tags = append(tags, style.Render(strings.ToUpper(name)))
		}
		parts = append(parts, strings.Join(tags, " "))
	}

	count := fmt.Sprintf("%d chars", e.Selection().Len())
	if limit := m.field.comp.Keyboard.CharacterLimit; limit > 0 {
		count = fmt.Sprintf("%d/%d", e.Selection().Len(), limit)
	}
	pos := e.CaretPosition()
	parts = append(parts,
		count,
		fmt.Sprintf("ln %d col %d", pos.Line+1, pos.Column+1),
		"kbd "+m.field.bridge.State().String(),
	)
	if m.lastEvent != "" {
		parts = append(parts, string(m.lastEvent))
	}
	if e.ReadOnly() {
		parts = append(parts, "read-only")
	}
	return labelStyle.Render(strings.Join(parts, " · "))
}

func (m Model) renderPicker() string {
	if len(m.matches) == 0 {
		return ""
	}
	lines := make([]string, len(m.matches))
	for i, bd := range m.matches {
		line := "@" + bd.Name
		if i == m.pick {
			line = pickedStyle.Render(line)
		}
		lines[i] = zone.Mark(mentionZoneID(i), line)
	}
	return pickerStyle.Render(strings.Join(lines, "\n"))
}

func (m Model) renderLog() string {
	if len(m.logLines) == 0 {
		return labelStyle.Render("no log entries (run with --debug)")
	}
	return m.viewport.View()
}

func (m Model) truncatedLogs() []string {
	out := make([]string, len(m.logLines))
	for i, line := range m.logLines {
		out[i] = truncate(line, m.viewport.Width)
	}
	return out
}

func truncate(s string, width int) string {
	if width <= 0 {
		return s
	}
	return ansi.Truncate(s, width, "…")
}
