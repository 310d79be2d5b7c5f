package simulator_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/juju/clock/testclock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/vigil/internal/adapters/backend"
	"go.trai.ch/vigil/internal/adapters/simulator"
	"go.trai.ch/vigil/internal/core/domain"
	"go.trai.ch/vigil/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

var epoch = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type simTest struct {
	sim    *simulator.Simulator
	base   *url.URL
	client *backend.Client
	clock  *testclock.Clock
}

func setupSimTest(t *testing.T) *simTest {
	t.Helper()
	ctrl := gomock.NewController(t)
	mockLogger := mocks.NewMockLogger(ctrl)
	mockLogger.EXPECT().Debug(gomock.Any()).AnyTimes()
	mockLogger.EXPECT().Info(gomock.Any()).AnyTimes()

	clk := testclock.NewClock(epoch)
	sim := simulator.New(mockLogger, simulator.Options{Identity: "alice", Seed: 7, Clock: clk})

	srv := httptest.NewServer(sim.Handler())
	t.Cleanup(func() {
		sim.DropStreams()
		srv.Close()
	})

	base, err := url.Parse(srv.URL + simulator.APIRoot)
	require.NoError(t, err)
	return &simTest{sim: sim, base: base, client: backend.NewClient(base, srv.Client()), clock: clk}
}

func decode(t *testing.T, raw json.RawMessage) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}

func TestSimulator_QueryEveryDomain(t *testing.T) {
	s := setupSimTest(t)

	for _, spec := range domain.Catalog {
		params := make([]string, len(spec.ParamNames))
		for i, name := range spec.ParamNames {
			params[i] = map[string]string{"user": "alice", "page": "1"}[name]
		}

		snap, err := s.client.Query(context.Background(), domain.NewKey(spec.Name, params...))
		require.NoError(t, err, spec.Name)
		assert.NotEmpty(t, snap.Payload, spec.Name)
		assert.True(t, epoch.Equal(snap.Timestamp), spec.Name)
	}
}

func TestSimulator_QueryErrors(t *testing.T) {
	s := setupSimTest(t)

	_, err := s.client.Query(context.Background(), domain.NewKey("weather"))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrBackend)

	_, err = s.client.Query(context.Background(), domain.NewKey(domain.DomainLedgerPage, "zero"))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrBackend)
	assert.Contains(t, err.Error(), "page must be a positive integer")
}

func TestSimulator_SwapChangesPoolsAndBalances(t *testing.T) {
	s := setupSimTest(t)
	ctx := context.Background()

	before, err := s.client.Query(ctx, domain.NewKey(domain.DomainUserBalances, "alice"))
	require.NoError(t, err)

	ack, err := s.client.Mutate(ctx, domain.MutationSwap, json.RawMessage(`{"pool":"VGL-USDX","tokenIn":"VGL","amountIn":100}`))
	require.NoError(t, err)
	assert.Equal(t, "alice", ack.Actor)
	assert.Equal(t, "USDX", decode(t, ack.Result)["tokenOut"])

	after, err := s.client.Query(ctx, domain.NewKey(domain.DomainUserBalances, "alice"))
	require.NoError(t, err)
	assert.NotEqual(t, string(before.Payload), string(after.Payload))

	balances := decode(t, after.Payload)["balances"].(map[string]any)
	assert.InDelta(t, 900.0, balances["VGL"], 0.001)

	ledger, err := s.client.Query(ctx, domain.NewKey(domain.DomainLedgerPage, "1"))
	require.NoError(t, err)
	page := decode(t, ledger.Payload)
	assert.InDelta(t, 1.0, page["total"], 0)
}

func TestSimulator_VoteAndRejections(t *testing.T) {
	s := setupSimTest(t)
	ctx := context.Background()

	ack, err := s.client.Mutate(ctx, domain.MutationVote, json.RawMessage(`{"proposalId":"p1","option":"yes"}`))
	require.NoError(t, err)
	assert.InDelta(t, 1.0, decode(t, ack.Result)["votes"], 0)

	tests := []struct {
		kind    domain.MutationKind
		payload string
		message string
	}{
		{domain.MutationVote, `{"proposalId":"p9","option":"yes"}`, "unknown proposal"},
		{domain.MutationSwap, `{"pool":"VGL-USDX","tokenIn":"VGL","amountIn":1e9}`, "insufficient balance"},
		{domain.MutationSwap, `{"pool":"VGL-USDX","tokenIn":"VGL"}`, "missing field"},
		{domain.MutationBridgeTransfer, `{"token":"VGL","amount":"abc","destination":"x"}`, "not a number"},
		{domain.MutationActivateToken, `{"token":"NOPE"}`, "unknown token"},
	}
	for _, tt := range tests {
		_, err := s.client.Mutate(ctx, tt.kind, json.RawMessage(tt.payload))
		require.Error(t, err, tt.payload)
		assert.ErrorIs(t, err, domain.ErrBackend, tt.payload)
		assert.Contains(t, err.Error(), tt.message, tt.payload)
	}
}

func TestSimulator_UnknownMutationKind(t *testing.T) {
	s := setupSimTest(t)

	_, err := s.client.Mutate(context.Background(), domain.MutationKind("teleport"), json.RawMessage(`{}`))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrBackend)
}

func TestSimulator_MintAndPaging(t *testing.T) {
	s := setupSimTest(t)
	ctx := context.Background()

	for range 12 {
		_, err := s.client.Mutate(ctx, domain.MutationMintNFT, json.RawMessage(`{"name":"n","uri":"ipfs://x"}`))
		require.NoError(t, err)
	}

	first, err := s.client.Query(ctx, domain.NewKey(domain.DomainNFTListings, "1"))
	require.NoError(t, err)
	second, err := s.client.Query(ctx, domain.NewKey(domain.DomainNFTListings, "2"))
	require.NoError(t, err)

	assert.Len(t, decode(t, first.Payload)["entries"], 10)
	assert.Len(t, decode(t, second.Payload)["entries"], 2)
}

func TestSimulator_Stream(t *testing.T) {
	s := setupSimTest(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, err := backend.NewDialer(backend.StreamURL(s.base)).Dial(ctx, "c1", []string{domain.DomainMetrics})
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	// Initial state is pushed on subscribe.
	ev, err := conn.Recv()
	require.NoError(t, err)
	assert.Equal(t, domain.DomainMetrics, ev.Domain)
	first := decode(t, ev.Payload)["blockHeight"]

	s.sim.Step()

	ev, err = conn.Recv()
	require.NoError(t, err)
	assert.Equal(t, domain.DomainMetrics, ev.Domain)
	assert.NotEqual(t, first, decode(t, ev.Payload)["blockHeight"])

	require.Eventually(t, func() bool { return s.sim.DropStreams() == 1 }, 5*time.Second, 10*time.Millisecond)

	_, err = conn.Recv()
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrTransport)
}

func TestSimulator_StreamRejectsPolledDomain(t *testing.T) {
	s := setupSimTest(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := backend.NewDialer(backend.StreamURL(s.base)).Dial(ctx, "c1", []string{domain.DomainPoolList})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrProtocol)
}

func TestSimulator_DropEndpoint(t *testing.T) {
	s := setupSimTest(t)

	resp, err := http.Post(s.base.String()+simulator.DropPath, "application/json", http.NoBody)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	var body map[string]int
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, 0, body["dropped"])
}

func TestSimulator_RunTicks(t *testing.T) {
	s := setupSimTest(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	conn, err := backend.NewDialer(backend.StreamURL(s.base)).Dial(ctx, "c1", []string{domain.DomainHarmonics})
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	_, err = conn.Recv()
	require.NoError(t, err)

	go s.sim.Run(ctx)
	require.NoError(t, s.clock.WaitAdvance(simulator.DefaultTick, 5*time.Second, 1))

	ev, err := conn.Recv()
	require.NoError(t, err)
	assert.Equal(t, domain.DomainHarmonics, ev.Domain)
	assert.True(t, epoch.Add(simulator.DefaultTick).Equal(ev.Timestamp))
}
