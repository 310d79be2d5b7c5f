package tui_test

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"
	"go.trai.ch/vigil/internal/adapters/tui"
	"go.trai.ch/vigil/internal/core/domain"
)

func newTestRenderer(t *testing.T) (*tui.Renderer, *tui.Model) {
	t.Helper()
	model := tui.NewModel(io.Discard).WithDisableTick()
	renderer := tui.NewRenderer(
		&model,
		tea.WithInput(strings.NewReader("")),
		tea.WithOutput(io.Discard),
		tea.WithoutSignalHandler(),
		tea.WithoutRenderer(),
	)
	return renderer, &model
}

func TestRenderer_Lifecycle(t *testing.T) {
	renderer, _ := newTestRenderer(t)

	require.NoError(t, renderer.Start(context.Background()))
	require.NoError(t, renderer.Stop())
	require.NoError(t, renderer.Wait())
}

func TestRenderer_ForwardsEvents(t *testing.T) {
	renderer, model := newTestRenderer(t)
	require.NoError(t, renderer.Start(context.Background()))

	renderer.OnConnState(domain.ConnState{Phase: domain.PhaseConnected})
	renderer.OnEntry(domain.CacheEntry{Key: domain.NewKey("metrics"), Status: domain.StatusFresh})
	renderer.OnNotification(domain.Notification{Message: "swap succeeded"})
	renderer.OnActivity("query", time.Millisecond, nil)

	require.NoError(t, renderer.Stop())
	require.NoError(t, renderer.Wait())

	require.Len(t, model.Rows, 1)
	require.Equal(t, domain.PhaseConnected, model.Conn.Phase)
	require.Len(t, model.Notices, 1)
	require.Len(t, model.Activity, 1)
}
