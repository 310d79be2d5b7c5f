package tui

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"go.trai.ch/vigil/internal/core/domain"
	"go.trai.ch/vigil/internal/ui/format"
	"go.trai.ch/vigil/internal/ui/style"
)

const (
	minPayloadWidth = 16
	rowChrome       = 2 + 2 + 34 + 1 + 5 + 2
	detailLines     = 12
)

// View renders the dashboard.
func (m *Model) View() string {
	if m.Width == 0 {
		return "Initializing..."
	}

	sections := []string{m.header(), m.table()}
	if detail := m.detail(); detail != "" {
		sections = append(sections, detail)
	}
	if feed := m.feed(); feed != "" {
		sections = append(sections, feed)
	}
	sections = append(sections, helpStyle.Render("↑/↓ select · r refresh · q quit"))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m *Model) header() string {
	conn := phaseStyle(m.Conn.Phase).Render(format.PhaseGlyph(m.Conn.Phase) + " stream " + m.Conn.String())
	return titleStyle.Render("VIGIL") + "  " + conn
}

func (m *Model) table() string {
	if len(m.Rows) == 0 {
		return style.Muted.Render("waiting for data...")
	}

	payloadWidth := max(m.Width-rowChrome, minPayloadWidth)
	now := time.Now()
	if m.Now != nil {
		now = m.Now()
	}

	var s strings.Builder
	for i, row := range m.Rows {
		e := row.Entry

		cursor := "  "
		key := keyStyle.Render(e.Key.String())
		if i == m.SelectedIdx {
			cursor = selectedStyle.Render("> ")
			key = selectedStyle.Inherit(keyStyle).Render(e.Key.String())
		}

		age := "-"
		if !e.FetchedAt.IsZero() {
			age = format.Age(now.Sub(e.FetchedAt))
		}

		glyph := entryStyle(e.Status).Render(format.StatusGlyph(e.Status))
		fmt.Fprintf(&s, "%s%s %s %s  %s\n", cursor, glyph, key, ageStyle.Render(age), format.Payload(e.Value, payloadWidth))
	}
	return strings.TrimSuffix(s.String(), "\n")
}

func (m *Model) detail() string {
	e, ok := m.Selected()
	if !ok {
		return ""
	}

	lines := []string{
		style.Title.Render(e.Key.String()) + "  " + entryStyle(e.Status).Render(e.Status.String()),
	}
	if e.LastError != nil {
		lines = append(lines, style.Bad.Render(e.LastError.Error()))
	}
	if e.HasValue() {
		var pretty bytes.Buffer
		if err := json.Indent(&pretty, e.Value, "", "  "); err != nil {
			pretty.Reset()
			pretty.Write(e.Value)
		}
		body := strings.Split(pretty.String(), "\n")
		if len(body) > detailLines {
			body = append(body[:detailLines], style.Muted.Render("…"))
		}
		lines = append(lines, body...)
	}

	return detailStyle.Render(strings.Join(lines, "\n"))
}

func (m *Model) feed() string {
	var lines []string
	for _, n := range m.Notices {
		if n.Severity == domain.SeverityError {
			msg := n.Message
			if n.Err != nil {
				msg += ": " + n.Err.Error()
			}
			lines = append(lines, style.Bad.Render(style.Cross+" "+msg))
			continue
		}
		lines = append(lines, style.Good.Render(style.Check+" "+n.Message))
	}
	for _, a := range m.Activity {
		line := fmt.Sprintf("%s %s %s", style.Dot, a.Name, a.Duration.Round(time.Millisecond))
		if a.Err != nil {
			line += " (" + a.Err.Error() + ")"
		}
		lines = append(lines, style.Muted.Render(line))
	}
	return strings.Join(lines, "\n")
}
