package linear_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/vigil/internal/adapters/linear"
	"go.trai.ch/vigil/internal/core/domain"
)

func TestRenderer_Session(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	var buf bytes.Buffer
	r := linear.NewRenderer(&buf)
	require.NoError(t, r.Start(context.Background()))

	metrics := domain.NewKey(domain.DomainMetrics)
	pools := domain.NewKey(domain.DomainPoolList)
	balances := domain.NewKey(domain.DomainUserBalances, "alice")

	r.OnConnState(domain.ConnState{Phase: domain.PhaseConnecting})
	r.OnConnState(domain.ConnState{Phase: domain.PhaseConnected})
	r.OnConnState(domain.ConnState{Phase: domain.PhaseConnected})
	r.OnEntry(domain.CacheEntry{Key: metrics, Value: json.RawMessage(`{"tps": 0.91}`), Digest: 1, Status: domain.StatusFresh})
	r.OnEntry(domain.CacheEntry{Key: metrics, Value: json.RawMessage(`{"tps": 0.91}`), Digest: 1, Status: domain.StatusFresh})
	r.OnEntry(domain.CacheEntry{Key: pools, Status: domain.StatusStale})
	r.OnEntry(domain.CacheEntry{Key: pools, Status: domain.StatusFetching})
	r.OnEntry(domain.CacheEntry{Key: pools, Value: json.RawMessage(`{"pools":[]}`), Digest: 2, Status: domain.StatusFresh})
	r.OnEntry(domain.CacheEntry{Key: pools, Value: json.RawMessage(`{"pools":[]}`), Digest: 2, Status: domain.StatusStale})
	r.OnEntry(domain.CacheEntry{Key: pools, Value: json.RawMessage(`{"pools":[]}`), Digest: 2, Status: domain.StatusFresh})
	r.OnEntry(domain.CacheEntry{Key: balances, Status: domain.StatusErrored, LastError: domain.ErrTransport})
	r.OnEntry(domain.CacheEntry{Key: balances, Status: domain.StatusErrored, LastError: domain.ErrTransport})
	r.OnNotification(domain.Notification{Severity: domain.SeverityInfo, Message: "swap succeeded"})
	r.OnNotification(domain.Notification{Severity: domain.SeverityError, Message: "vote failed", Err: domain.ErrBackend})
	r.OnConnState(domain.ConnState{Phase: domain.PhaseReconnecting, Attempt: 1, NextDelay: time.Second})
	r.OnActivity("cache.fetch", 12*time.Millisecond, nil)

	require.NoError(t, r.Stop())
	require.NoError(t, r.Wait())

	g := goldie.New(t)
	g.Assert(t, "session", buf.Bytes())
}

func TestRenderer_Activity(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	var buf bytes.Buffer
	r := linear.NewRenderer(&buf).WithActivity(true)

	r.OnActivity("cache.fetch", 12*time.Millisecond, nil)
	r.OnActivity("mutation.execute", 1500*time.Millisecond, errors.New("backend rejected request"))

	assert.Equal(t, "● cache.fetch 12ms\n● mutation.execute 1.5s (backend rejected request)\n", buf.String())
}

func TestRenderer_WaitBlocksUntilStop(t *testing.T) {
	r := linear.NewRenderer(io.Discard)

	done := make(chan struct{})
	go func() {
		_ = r.Wait()
		close(done)
	}()

	select {
	case <-done:
		t.Fatal("Wait returned before Stop")
	case <-time.After(20 * time.Millisecond):
	}

	require.NoError(t, r.Stop())
	require.NoError(t, r.Stop())
	<-done
}
