package logger_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/vigil/internal/adapters/logger"
	"go.trai.ch/vigil/internal/core/domain"
	"go.trai.ch/zerr"
)

// newTestLogger returns a logger writing plain text into a buffer.
func newTestLogger(t *testing.T) (*logger.Logger, *bytes.Buffer) {
	t.Helper()
	t.Setenv("NO_COLOR", "1")

	buf := &bytes.Buffer{}
	lg := logger.New().(*logger.Logger)
	lg.SetOutput(buf)
	return lg, buf
}

func TestLogger_Levels(t *testing.T) {
	tests := []struct {
		name       string
		log        func(*logger.Logger)
		goldenName string
	}{
		{
			name:       "info",
			log:        func(l *logger.Logger) { l.Info("stream connected") },
			goldenName: "info_basic",
		},
		{
			name:       "warn",
			log:        func(l *logger.Logger) { l.Warn("stream disconnected: EOF") },
			goldenName: "warn_basic",
		},
		{
			name:       "multiline warning",
			log:        func(l *logger.Logger) { l.Warn("line1\nline2") },
			goldenName: "warn_multiline",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lg, buf := newTestLogger(t)
			tt.log(lg)

			g := goldie.New(t)
			g.Assert(t, tt.goldenName, buf.Bytes())
		})
	}
}

func TestLogger_Debug_OnlyWhenVerbose(t *testing.T) {
	lg, buf := newTestLogger(t)

	lg.Debug("poll pool-list failed")
	assert.Empty(t, buf.String())

	lg.SetVerbose(true)
	lg.Debug("poll pool-list failed")

	g := goldie.New(t)
	g.Assert(t, "debug_verbose", buf.Bytes())

	buf.Reset()
	lg.SetVerbose(false)
	lg.Debug("hidden")
	assert.Empty(t, buf.String())
}

func TestLogger_Error(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		goldenName string
	}{
		{
			name:       "simple error",
			err:        os.ErrPermission,
			goldenName: "error_simple",
		},
		{
			name:       "two level chain",
			err:        zerr.Wrap(errors.New("connection refused"), "fetch failed"),
			goldenName: "error_chain_two",
		},
		{
			name: "three level chain",
			err: zerr.Wrap(
				zerr.Wrap(errors.New("dial tcp 127.0.0.1:8088: connect: connection refused"), "failed to open stream"),
				"failed to start session",
			),
			goldenName: "error_chain_three",
		},
		{
			name:       "classified timeout",
			err:        zerr.Wrap(errors.Join(domain.ErrTimeout, context.DeadlineExceeded), "fetch failed"),
			goldenName: "error_joined",
		},
		{
			name:       "metadata only wrapper",
			err:        zerr.With(errors.New("boom"), "key", "pool-list"),
			goldenName: "error_metadata",
		},
		{
			name:       "stdlib chain",
			err:        fmt.Errorf("outer: %w", errors.New("inner")),
			goldenName: "error_stdlib",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lg, buf := newTestLogger(t)
			lg.Error(tt.err)

			g := goldie.New(t)
			g.Assert(t, tt.goldenName, buf.Bytes())
		})
	}
}

func TestLogger_Error_Nil(t *testing.T) {
	lg, buf := newTestLogger(t)
	lg.Error(nil)
	assert.Empty(t, buf.String())
}

func TestLogger_JSON(t *testing.T) {
	lg, buf := newTestLogger(t)
	lg.SetJSON(true)

	lg.Info("stream connected")
	lg.Error(errors.New("boom"))

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 2)

	var first, second map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &first))
	require.NoError(t, json.Unmarshal(lines[1], &second))
	assert.Equal(t, "INFO", first["level"])
	assert.Equal(t, "stream connected", first["msg"])
	assert.Equal(t, "ERROR", second["level"])
	assert.Equal(t, "boom", second["error"])
}

func TestLogger_SetOutputKeepsJSONMode(t *testing.T) {
	lg, _ := newTestLogger(t)
	lg.SetJSON(true)

	buf := &bytes.Buffer{}
	lg.SetOutput(buf)
	lg.Warn("careful")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "WARN", rec["level"])
}

func TestPrettyHandler_GroupsAndAttrs(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	var buf bytes.Buffer
	h := logger.NewPrettyHandler(&buf, nil)
	lg := slog.New(h).With("client", "c1").WithGroup("stream").WithGroup("backoff").With("attempt", 2)

	lg.Info("reconnecting", "reason", "read tcp: connection reset")
	assert.Equal(t,
		"reconnecting client=c1 stream.backoff.attempt=2 stream.backoff.reason=\"read tcp: connection reset\"\n",
		buf.String())

	buf.Reset()
	lg.Debug("hidden")
	assert.Empty(t, buf.String())
}
