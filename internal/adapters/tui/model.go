// Package tui provides the interactive dashboard of cached entries.
package tui

import (
	"cmp"
	"io"
	"os"
	"slices"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.trai.ch/vigil/internal/core/domain"
	"go.trai.ch/vigil/internal/ui/output"
)

const (
	defaultTickInterval = time.Second
	maxNotices          = 4
	maxActivity         = 3
)

// Row is one cache entry on screen.
type Row struct {
	Entry domain.CacheEntry
}

// Model represents the dashboard state.
type Model struct {
	Rows        []*Row
	index       map[domain.DomainKey]*Row
	Conn        domain.ConnState
	Notices     []domain.Notification
	Activity    []MsgActivity
	SelectedIdx int
	Width       int
	Height      int

	// Refresh is invoked with the selected key when the user presses r.
	Refresh func(domain.DomainKey)
	// Now returns the current time for entry ages.
	Now func() time.Time

	TickInterval time.Duration
	disableTick  bool
}

// NewModel creates a dashboard model whose colors follow w.
func NewModel(w io.Writer) Model {
	if w == nil {
		w = os.Stderr
	}
	lipgloss.SetColorProfile(output.New(w).Profile)

	return Model{
		index:        make(map[domain.DomainKey]*Row),
		Now:          time.Now,
		TickInterval: defaultTickInterval,
	}
}

// WithDisableTick stops the periodic redraw that refreshes ages.
func (m Model) WithDisableTick() Model {
	m.disableTick = true
	return m
}

// WithRefresh sets the handler for the refresh key.
func (m Model) WithRefresh(fn func(domain.DomainKey)) Model {
	m.Refresh = fn
	return m
}

// Init starts the redraw tick.
func (m *Model) Init() tea.Cmd {
	return m.tick()
}

func (m *Model) tick() tea.Cmd {
	if m.disableTick {
		return nil
	}
	return tea.Tick(m.TickInterval, func(t time.Time) tea.Msg { return msgTick(t) })
}

// Selected returns the entry under the cursor.
func (m *Model) Selected() (domain.CacheEntry, bool) {
	if m.SelectedIdx < 0 || m.SelectedIdx >= len(m.Rows) {
		return domain.CacheEntry{}, false
	}
	return m.Rows[m.SelectedIdx].Entry, true
}

// Update handles incoming messages and updates the model state.
//
//nolint:cyclop // message dispatch
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "k", "up":
			if m.SelectedIdx > 0 {
				m.SelectedIdx--
			}
		case "j", "down":
			if m.SelectedIdx < len(m.Rows)-1 {
				m.SelectedIdx++
			}
		case "r":
			if entry, ok := m.Selected(); ok && m.Refresh != nil {
				refresh, key := m.Refresh, entry.Key
				return m, func() tea.Msg {
					refresh(key)
					return nil
				}
			}
		}

	case tea.WindowSizeMsg:
		m.Width, m.Height = msg.Width, msg.Height

	case msgTick:
		return m, m.tick()

	case MsgEntry:
		m.upsert(msg.Entry)

	case MsgConnState:
		m.Conn = msg.State

	case MsgNotification:
		m.Notices = append(m.Notices, msg.Notification)
		if len(m.Notices) > maxNotices {
			m.Notices = m.Notices[len(m.Notices)-maxNotices:]
		}

	case MsgActivity:
		m.Activity = append(m.Activity, msg)
		if len(m.Activity) > maxActivity {
			m.Activity = m.Activity[len(m.Activity)-maxActivity:]
		}
	}

	return m, nil
}

// upsert keeps rows sorted by key so that the cursor stays on the same entry.
func (m *Model) upsert(entry domain.CacheEntry) {
	if row, ok := m.index[entry.Key]; ok {
		row.Entry = entry
		return
	}

	var selected domain.DomainKey
	if cur, ok := m.Selected(); ok {
		selected = cur.Key
	}

	if m.index == nil {
		m.index = make(map[domain.DomainKey]*Row)
	}
	row := &Row{Entry: entry}
	m.index[entry.Key] = row
	m.Rows = append(m.Rows, row)
	slices.SortFunc(m.Rows, func(a, b *Row) int {
		return cmp.Compare(a.Entry.Key.String(), b.Entry.Key.String())
	})

	if !selected.IsZero() {
		m.SelectedIdx = slices.IndexFunc(m.Rows, func(r *Row) bool { return r.Entry.Key == selected })
	}
}
