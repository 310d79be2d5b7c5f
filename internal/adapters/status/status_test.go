package status_test

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/vigil/internal/adapters/status"
	"go.trai.ch/vigil/internal/core/domain"
	"go.trai.ch/vigil/internal/core/ports"
	"go.trai.ch/vigil/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

// shortSocketPath keeps the socket path below the Unix limit.
func shortSocketPath(t *testing.T) string {
	t.Helper()
	dir, err := os.MkdirTemp("", "vg")
	require.NoError(t, err)
	t.Cleanup(func() { _ = os.RemoveAll(dir) })
	return filepath.Join(dir, "s.sock")
}

func serve(t *testing.T, srv *status.Server) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx) }()
	t.Cleanup(func() {
		cancel()
		require.NoError(t, <-done)
	})
}

func dial(t *testing.T, path string) *status.Client {
	t.Helper()
	client, err := status.Dial(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestStatus_ReportsStreamState(t *testing.T) {
	path := shortSocketPath(t)
	srv := status.NewServer(path, nil)
	serve(t, srv)

	client := dial(t, path)

	var report *ports.StatusReport
	require.Eventually(t, func() bool {
		r, err := client.Status(context.Background())
		report = r
		return err == nil
	}, 5*time.Second, 20*time.Millisecond)

	assert.Equal(t, "serving", report.Session)
	assert.Equal(t, "idle", report.Stream)

	srv.SetConnState(domain.ConnState{Phase: domain.PhaseReconnecting, Attempt: 2, NextDelay: 2 * time.Second})
	r, err := client.Status(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "reconnecting(2, 2s)", r.Stream)

	srv.SetConnState(domain.ConnState{Phase: domain.PhaseConnected})
	r, err = client.Status(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "connected", r.Stream)
}

func TestStatus_SocketPermissions(t *testing.T) {
	path := shortSocketPath(t)
	serve(t, status.NewServer(path, nil))

	require.Eventually(t, func() bool {
		info, err := os.Stat(path)
		return err == nil && info.Mode().Perm() == domain.SocketPerm
	}, 5*time.Second, 20*time.Millisecond)
}

func TestStatus_ServeRemovesStaleSocket(t *testing.T) {
	path := shortSocketPath(t)
	require.NoError(t, os.WriteFile(path, []byte("stale"), 0o600))

	serve(t, status.NewServer(path, nil))

	client := dial(t, path)
	require.Eventually(t, func() bool {
		_, err := client.Status(context.Background())
		return err == nil
	}, 5*time.Second, 20*time.Millisecond)
}

func TestStatus_Unavailable(t *testing.T) {
	client := dial(t, shortSocketPath(t))

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	_, err := client.Status(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrStatusUnavailable)
}

func TestConnector(t *testing.T) {
	conn := status.NewConnector()
	path := shortSocketPath(t)

	assert.NotNil(t, conn.Publisher(path, nil))
	client, err := conn.Dial(path)
	require.NoError(t, err)
	require.NoError(t, client.Close())
}

// waitServing blocks until the server behind client answers.
func waitServing(t *testing.T, client *status.Client) {
	t.Helper()
	require.Eventually(t, func() bool {
		_, err := client.Status(context.Background())
		return err == nil
	}, 5*time.Second, 20*time.Millisecond)
}

func TestStatus_MutateRunsInSession(t *testing.T) {
	path := shortSocketPath(t)
	runner := mocks.NewMockMutationRunner(gomock.NewController(t))
	serve(t, status.NewServer(path, runner))
	client := dial(t, path)
	waitServing(t, client)

	started := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	payload := json.RawMessage(`{"pool":"p1","tokenIn":"ETH","amountIn":"1000000000000000000001"}`)
	runner.EXPECT().Execute(gomock.Any(), domain.MutationSwap, payload).Return(&domain.MutationRecord{
		ID:         "01J0000000000000000000SWAP",
		Kind:       domain.MutationSwap,
		Status:     domain.MutationSucceeded,
		Payload:    payload,
		Actor:      "alice",
		Result:     json.RawMessage(`{"amountOut":12345678901234567890}`),
		StartedAt:  started,
		FinishedAt: started.Add(40 * time.Millisecond),
		AffectedKeys: []domain.DomainKey{
			domain.NewKey(domain.DomainPoolList),
			domain.NewKey(domain.DomainUserBalances, "alice"),
		},
	}, nil)

	rec, err := client.Mutate(context.Background(), domain.MutationSwap, payload)
	require.NoError(t, err)

	assert.Equal(t, "01J0000000000000000000SWAP", rec.ID)
	assert.Equal(t, domain.MutationSucceeded, rec.Status)
	assert.Equal(t, "alice", rec.Actor)
	assert.JSONEq(t, `{"amountOut":12345678901234567890}`, string(rec.Result))
	assert.Equal(t, 40*time.Millisecond, rec.FinishedAt.Sub(rec.StartedAt))
	assert.Equal(t, []domain.DomainKey{
		domain.NewKey(domain.DomainPoolList),
		domain.NewKey(domain.DomainUserBalances, "alice"),
	}, rec.AffectedKeys)
}

func TestStatus_MutateErrors(t *testing.T) {
	path := shortSocketPath(t)
	runner := mocks.NewMockMutationRunner(gomock.NewController(t))
	serve(t, status.NewServer(path, runner))
	client := dial(t, path)
	waitServing(t, client)

	runner.EXPECT().Execute(gomock.Any(), domain.MutationVote, gomock.Any()).
		Return(nil, errors.Join(domain.ErrMutationPending, errors.New("vote")))
	runner.EXPECT().Execute(gomock.Any(), domain.MutationMintNFT, gomock.Any()).
		Return(nil, errors.Join(domain.ErrBackend, errors.New("name taken")))

	_, err := client.Mutate(context.Background(), domain.MutationVote, json.RawMessage(`{}`))
	require.ErrorIs(t, err, domain.ErrMutationPending)

	_, err = client.Mutate(context.Background(), domain.MutationMintNFT, json.RawMessage(`{}`))
	require.ErrorIs(t, err, domain.ErrBackend)
	assert.Contains(t, err.Error(), "name taken")

	_, err = client.Mutate(context.Background(), "teleport", json.RawMessage(`{}`))
	require.ErrorIs(t, err, domain.ErrUnknownMutation)
	assert.NotErrorIs(t, err, domain.ErrStatusUnavailable)
}

func TestStatus_MutateWithoutSession(t *testing.T) {
	t.Run("no runner", func(t *testing.T) {
		path := shortSocketPath(t)
		serve(t, status.NewServer(path, nil))
		client := dial(t, path)
		waitServing(t, client)

		_, err := client.Mutate(context.Background(), domain.MutationVote, json.RawMessage(`{}`))
		require.ErrorIs(t, err, domain.ErrStatusUnavailable)
	})

	t.Run("no socket", func(t *testing.T) {
		client := dial(t, shortSocketPath(t))

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		_, err := client.Mutate(ctx, domain.MutationVote, json.RawMessage(`{}`))
		require.ErrorIs(t, err, domain.ErrStatusUnavailable)
	})
}
