// Package format renders engine values as short console strings.
package format

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
	"unicode/utf8"

	"go.trai.ch/vigil/internal/core/domain"
	"go.trai.ch/vigil/internal/ui/style"
)

// Payload compacts raw JSON and cuts it to at most limit runes.
func Payload(raw json.RawMessage, limit int) string {
	if raw == nil {
		return "-"
	}

	var buf bytes.Buffer
	text := string(raw)
	if err := json.Compact(&buf, raw); err == nil {
		text = buf.String()
	}

	if limit <= 0 || utf8.RuneCountInString(text) <= limit {
		return text
	}
	runes := []rune(text)
	return string(runes[:max(limit-1, 0)]) + "…"
}

// Age renders d at one-unit precision.
func Age(d time.Duration) string {
	switch {
	case d < time.Second:
		return "now"
	case d < time.Minute:
		return fmt.Sprintf("%ds", int(d/time.Second))
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d/time.Minute))
	default:
		return fmt.Sprintf("%dh", int(d/time.Hour))
	}
}

// StatusGlyph returns the glyph shown next to an entry.
func StatusGlyph(s domain.EntryStatus) string {
	switch s {
	case domain.StatusFresh:
		return style.Check
	case domain.StatusFetching:
		return style.Spinner
	case domain.StatusErrored:
		return style.Cross
	default:
		return style.Tilde
	}
}

// PhaseGlyph returns the glyph shown next to the stream state.
func PhaseGlyph(p domain.ConnPhase) string {
	switch p {
	case domain.PhaseConnected:
		return style.Dot
	case domain.PhaseConnecting, domain.PhaseReconnecting:
		return style.Spinner
	case domain.PhaseFailed:
		return style.Cross
	default:
		return style.Circle
	}
}
