package commands_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/vigil/cmd/vigil/commands"
	"go.trai.ch/vigil/internal/app"
	"go.trai.ch/vigil/internal/build"
	"go.trai.ch/vigil/internal/core/domain"
)

type mockApp struct {
	watchOpts  *app.WatchOptions
	simOpts    *app.SimOptions
	key        domain.DomainKey
	kind       string
	payload    json.RawMessage
	socket     string
	verbose    bool
	jsonMode   bool
	err        error
	statusHits int
}

func (m *mockApp) Watch(_ context.Context, opts app.WatchOptions) error {
	m.watchOpts = &opts
	return m.err
}

func (m *mockApp) Get(_ context.Context, key domain.DomainKey, w io.Writer) error {
	m.key = key
	_, _ = io.WriteString(w, "{}\n")
	return m.err
}

func (m *mockApp) Mutate(_ context.Context, kind string, payload json.RawMessage, _ io.Writer) error {
	m.kind = kind
	m.payload = payload
	return m.err
}

func (m *mockApp) Status(_ context.Context, socketPath string, _ io.Writer) error {
	m.socket = socketPath
	m.statusHits++
	return m.err
}

func (m *mockApp) Sim(_ context.Context, opts app.SimOptions) error {
	m.simOpts = &opts
	return m.err
}

func (m *mockApp) SetLogging(verbose, jsonMode bool) {
	m.verbose = verbose
	m.jsonMode = jsonMode
}

func execute(t *testing.T, m *mockApp, args ...string) (string, error) {
	t.Helper()
	cli := commands.New(m)
	buf := new(bytes.Buffer)
	cli.SetOutput(buf, buf)
	cli.SetArgs(args)
	err := cli.Execute(context.Background())
	return buf.String(), err
}

func TestCommands_Watch(t *testing.T) {
	t.Run("wires flags correctly", func(t *testing.T) {
		m := &mockApp{}
		_, err := execute(t, m, "watch", "--ci", "--activity", "--no-status", "-v")
		require.NoError(t, err)
		require.NotNil(t, m.watchOpts)
		assert.Equal(t, "linear", m.watchOpts.OutputMode)
		assert.True(t, m.watchOpts.Activity)
		assert.True(t, m.watchOpts.NoStatus)
		assert.NotNil(t, m.watchOpts.Out)
		assert.True(t, m.verbose)
		assert.False(t, m.jsonMode)
	})

	t.Run("defaults to auto", func(t *testing.T) {
		m := &mockApp{}
		_, err := execute(t, m, "watch", "--log-json")
		require.NoError(t, err)
		assert.Equal(t, "auto", m.watchOpts.OutputMode)
		assert.True(t, m.jsonMode)
	})

	t.Run("returns error on failure", func(t *testing.T) {
		m := &mockApp{err: errors.New("simulated error")}
		_, err := execute(t, m, "watch")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "simulated error")
	})
}

func TestCommands_Get(t *testing.T) {
	m := &mockApp{}
	out, err := execute(t, m, "get", "user-balances", "alice")
	require.NoError(t, err)
	assert.Equal(t, domain.NewKey("user-balances", "alice"), m.key)
	assert.Equal(t, "{}\n", out)

	_, err = execute(t, &mockApp{}, "get")
	require.Error(t, err)
}

func TestCommands_Mutate(t *testing.T) {
	t.Run("payload flag", func(t *testing.T) {
		m := &mockApp{}
		_, err := execute(t, m, "mutate", "vote", "--payload", ` {"proposalId":"p1","option":"yes"} `)
		require.NoError(t, err)
		assert.Equal(t, "vote", m.kind)
		assert.JSONEq(t, `{"proposalId":"p1","option":"yes"}`, string(m.payload))
	})

	t.Run("payload from stdin", func(t *testing.T) {
		m := &mockApp{}
		cli := commands.New(m)
		cli.SetOutput(io.Discard, io.Discard)
		cli.SetArgs([]string{"mutate", "activate-token", "--payload=-"})
		cli.SetInput(strings.NewReader(`{"token":"ETHX"}`))
		require.NoError(t, cli.Execute(context.Background()))
		assert.JSONEq(t, `{"token":"ETHX"}`, string(m.payload))
	})

	t.Run("defaults to an empty object", func(t *testing.T) {
		m := &mockApp{}
		_, err := execute(t, m, "mutate", "swap")
		require.NoError(t, err)
		assert.Equal(t, "{}", string(m.payload))
	})

	t.Run("lists kinds in help", func(t *testing.T) {
		out, err := execute(t, &mockApp{}, "mutate", "--help")
		require.NoError(t, err)
		for _, kind := range domain.MutationKinds() {
			assert.Contains(t, out, string(kind))
		}
	})
}

func TestCommands_Status(t *testing.T) {
	m := &mockApp{}
	_, err := execute(t, m, "status", "--socket", "/tmp/x.sock")
	require.NoError(t, err)
	assert.Equal(t, "/tmp/x.sock", m.socket)
	assert.Equal(t, 1, m.statusHits)
}

func TestCommands_Sim(t *testing.T) {
	m := &mockApp{}
	_, err := execute(t, m, "sim", "--addr", ":9000", "--tick", "250ms", "--drop-every", "30s", "--identity", "bob", "--seed", "42")
	require.NoError(t, err)
	require.NotNil(t, m.simOpts)
	assert.Equal(t, app.SimOptions{
		Addr:      ":9000",
		Identity:  "bob",
		Tick:      250 * time.Millisecond,
		DropEvery: 30 * time.Second,
		Seed:      42,
	}, *m.simOpts)
}

func TestCommands_Version(t *testing.T) {
	out, err := execute(t, &mockApp{}, "version")
	require.NoError(t, err)
	assert.Contains(t, out, build.Version)
}
