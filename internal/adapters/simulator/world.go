package simulator

import (
	"fmt"
	"math"
	"math/rand/v2"
	"slices"
	"strconv"
	"time"

	"go.trai.ch/vigil/internal/core/domain"
	"go.trai.ch/zerr"
)

// pageSize is the number of entries in one ledger or listing page.
const pageSize = 10

var (
	errUnknownDomain = zerr.New("unknown domain")
	errBadParams     = zerr.New("bad parameters")
	errRejected      = zerr.New("mutation rejected")
)

type token struct {
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
	Active bool   `json:"active"`
}

type pool struct {
	ID       string  `json:"id"`
	TokenA   string  `json:"tokenA"`
	TokenB   string  `json:"tokenB"`
	ReserveA float64 `json:"reserveA"`
	ReserveB float64 `json:"reserveB"`
}

type position struct {
	Pool   string  `json:"pool"`
	Shares float64 `json:"shares"`
}

type ledgerEntry struct {
	Seq   int       `json:"seq"`
	Kind  string    `json:"kind"`
	Actor string    `json:"actor"`
	At    time.Time `json:"at"`
}

type attestation struct {
	Subject string    `json:"subject"`
	Digest  string    `json:"digest"`
	Actor   string    `json:"actor"`
	At      time.Time `json:"at"`
}

type transfer struct {
	Token       string    `json:"token"`
	Amount      float64   `json:"amount"`
	Destination string    `json:"destination"`
	At          time.Time `json:"at"`
}

type proposal struct {
	ID    string         `json:"id"`
	Title string         `json:"title"`
	Votes map[string]int `json:"votes"`
}

type listing struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	URI   string `json:"uri"`
	Owner string `json:"owner"`
}

// world is the simulated backend state. It is not safe for concurrent use.
type world struct {
	rng *rand.Rand

	height    int64
	finalized int64
	tps       float64
	latencyMs float64
	phase     float64
	peers     int

	tokens       []token
	balances     map[string]map[string]float64
	pools        []pool
	positions    map[string][]position
	ledger       []ledgerEntry
	attestations []attestation
	transfers    map[string][]transfer
	proposals    []proposal
	listings     []listing
}

func newWorld(seed uint64) *world {
	return &world{
		rng:       rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		height:    1_000_000,
		finalized: 999_990,
		tps:       0.5,
		latencyMs: 120,
		peers:     12,
		tokens: []token{
			{Symbol: "VGL", Name: "Vigil", Active: true},
			{Symbol: "USDX", Name: "Dollar Token", Active: true},
			{Symbol: "ETHX", Name: "Bridged Ether", Active: false},
		},
		balances: map[string]map[string]float64{},
		pools: []pool{
			{ID: "VGL-USDX", TokenA: "VGL", TokenB: "USDX", ReserveA: 50_000, ReserveB: 100_000},
			{ID: "ETHX-USDX", TokenA: "ETHX", TokenB: "USDX", ReserveA: 40, ReserveB: 120_000},
		},
		positions: map[string][]position{},
		transfers: map[string][]transfer{},
		proposals: []proposal{
			{ID: "p1", Title: "Raise pool fee to 0.4%", Votes: map[string]int{}},
			{ID: "p2", Title: "List ETHX", Votes: map[string]int{}},
		},
	}
}

func (w *world) balanceOf(user string) map[string]float64 {
	b, ok := w.balances[user]
	if !ok {
		b = map[string]float64{"VGL": 1_000, "USDX": 5_000}
		w.balances[user] = b
	}
	return b
}

// tick evolves the streamed domains and returns their new payloads.
func (w *world) tick() map[string]any {
	w.height++
	if w.height%3 == 0 {
		w.finalized = w.height - 6
	}
	w.tps = math.Max(0, math.Min(1, w.tps+(w.rng.Float64()-0.5)*0.1))
	w.latencyMs = math.Max(20, w.latencyMs+(w.rng.Float64()-0.5)*20)
	w.phase = math.Mod(w.phase+0.3, 2*math.Pi)
	w.peers = max(1, w.peers+w.rng.IntN(3)-1)

	return map[string]any{
		domain.DomainMetrics:       w.metrics(),
		domain.DomainHarmonics:     w.harmonics(),
		domain.DomainNetworkStatus: w.networkStatus(),
	}
}

func (w *world) metrics() any {
	return map[string]any{
		"tps":         round(w.tps),
		"latencyMs":   round(w.latencyMs),
		"blockHeight": w.height,
	}
}

func (w *world) harmonics() any {
	return map[string]any{
		"phase":     round(w.phase),
		"amplitude": round(math.Sin(w.phase)),
	}
}

func (w *world) networkStatus() any {
	return map[string]any{
		"peers":   w.peers,
		"healthy": w.peers >= 4,
	}
}

// snapshot returns the payload of key.
func (w *world) snapshot(name string, params []string) (any, error) {
	spec, ok := domain.LookupDomain(name)
	if !ok {
		return nil, zerr.With(zerr.Wrap(errUnknownDomain, "no snapshot"), "domain", name)
	}
	if len(params) != len(spec.ParamNames) {
		return nil, zerr.With(zerr.Wrap(errBadParams, "wrong parameter count"), "domain", name)
	}

	switch name {
	case domain.DomainMetrics:
		return w.metrics(), nil
	case domain.DomainHarmonics:
		return w.harmonics(), nil
	case domain.DomainNetworkStatus:
		return w.networkStatus(), nil
	case domain.DomainBlockchainStatus:
		return map[string]any{"height": w.height, "finalized": w.finalized}, nil
	case domain.DomainTokenRegistry:
		return map[string]any{"tokens": w.tokens}, nil
	case domain.DomainUserBalances:
		return map[string]any{"user": params[0], "balances": w.balanceOf(params[0])}, nil
	case domain.DomainPoolList:
		return map[string]any{"pools": w.pools}, nil
	case domain.DomainUserLiquidityPositions:
		return map[string]any{"user": params[0], "positions": orEmpty(w.positions[params[0]])}, nil
	case domain.DomainLedgerPage:
		return page(params[0], newestFirst(w.ledger))
	case domain.DomainAttestationList:
		return map[string]any{"attestations": orEmpty(w.attestations)}, nil
	case domain.DomainBridgeTransfers:
		return map[string]any{"user": params[0], "transfers": orEmpty(w.transfers[params[0]])}, nil
	case domain.DomainProposalList:
		return map[string]any{"proposals": w.proposals}, nil
	case domain.DomainNFTListings:
		return page(params[0], newestFirst(w.listings))
	default:
		return nil, zerr.With(zerr.Wrap(errUnknownDomain, "no snapshot"), "domain", name)
	}
}

// apply executes a mutation on behalf of actor.
func (w *world) apply(kind domain.MutationKind, actor string, payload map[string]any, now time.Time) (any, error) {
	for _, field := range kind.RequiredFields() {
		if _, ok := payload[field]; !ok {
			return nil, zerr.With(zerr.Wrap(errRejected, "missing field"), "field", field)
		}
	}

	var result any
	var err error
	switch kind {
	case domain.MutationSwap:
		result, err = w.swap(actor, payload)
	case domain.MutationAddLiquidity:
		result, err = w.addLiquidity(actor, payload)
	case domain.MutationActivateToken:
		result, err = w.activateToken(actor, payload)
	case domain.MutationPublishAttestation:
		a := attestation{Subject: str(payload["subject"]), Digest: str(payload["digest"]), Actor: actor, At: now}
		w.attestations = append(w.attestations, a)
		result = a
	case domain.MutationVote:
		result, err = w.vote(payload)
	case domain.MutationBridgeTransfer:
		result, err = w.bridge(actor, payload, now)
	case domain.MutationMintNFT:
		l := listing{ID: len(w.listings) + 1, Name: str(payload["name"]), URI: str(payload["uri"]), Owner: actor}
		w.listings = append(w.listings, l)
		result = l
	default:
		return nil, zerr.With(zerr.Wrap(errRejected, "unknown mutation kind"), "kind", string(kind))
	}
	if err != nil {
		return nil, err
	}

	w.ledger = append(w.ledger, ledgerEntry{Seq: len(w.ledger) + 1, Kind: string(kind), Actor: actor, At: now})
	return result, nil
}

func (w *world) findPool(id string) (*pool, error) {
	idx := slices.IndexFunc(w.pools, func(p pool) bool { return p.ID == id })
	if idx < 0 {
		return nil, zerr.With(zerr.Wrap(errRejected, "unknown pool"), "pool", id)
	}
	return &w.pools[idx], nil
}

func (w *world) swap(actor string, payload map[string]any) (any, error) {
	p, err := w.findPool(str(payload["pool"]))
	if err != nil {
		return nil, err
	}
	in := str(payload["tokenIn"])
	amount, err := number(payload, "amountIn")
	if err != nil {
		return nil, err
	}

	bal := w.balanceOf(actor)
	if bal[in] < amount {
		return nil, zerr.With(zerr.Wrap(errRejected, "insufficient balance"), "token", in)
	}

	var out string
	var received float64
	switch in {
	case p.TokenA:
		out = p.TokenB
		received = p.ReserveB * amount / (p.ReserveA + amount)
		p.ReserveA += amount
		p.ReserveB -= received
	case p.TokenB:
		out = p.TokenA
		received = p.ReserveA * amount / (p.ReserveB + amount)
		p.ReserveB += amount
		p.ReserveA -= received
	default:
		return nil, zerr.With(zerr.Wrap(errRejected, "token not in pool"), "token", in)
	}

	bal[in] -= amount
	bal[out] += received
	return map[string]any{"tokenOut": out, "amountOut": round(received)}, nil
}

func (w *world) addLiquidity(actor string, payload map[string]any) (any, error) {
	p, err := w.findPool(str(payload["pool"]))
	if err != nil {
		return nil, err
	}
	a, err := number(payload, "amountA")
	if err != nil {
		return nil, err
	}
	b, err := number(payload, "amountB")
	if err != nil {
		return nil, err
	}

	bal := w.balanceOf(actor)
	if bal[p.TokenA] < a || bal[p.TokenB] < b {
		return nil, zerr.With(zerr.Wrap(errRejected, "insufficient balance"), "pool", p.ID)
	}
	bal[p.TokenA] -= a
	bal[p.TokenB] -= b
	p.ReserveA += a
	p.ReserveB += b

	shares := round(math.Sqrt(a * b))
	positions := w.positions[actor]
	idx := slices.IndexFunc(positions, func(pos position) bool { return pos.Pool == p.ID })
	if idx < 0 {
		positions = append(positions, position{Pool: p.ID})
		idx = len(positions) - 1
	}
	positions[idx].Shares += shares
	w.positions[actor] = positions

	return map[string]any{"pool": p.ID, "shares": shares}, nil
}

func (w *world) activateToken(actor string, payload map[string]any) (any, error) {
	symbol := str(payload["token"])
	idx := slices.IndexFunc(w.tokens, func(t token) bool { return t.Symbol == symbol })
	if idx < 0 {
		return nil, zerr.With(zerr.Wrap(errRejected, "unknown token"), "token", symbol)
	}
	w.tokens[idx].Active = true

	bal := w.balanceOf(actor)
	if _, ok := bal[symbol]; !ok {
		bal[symbol] = 0
	}
	return w.tokens[idx], nil
}

func (w *world) vote(payload map[string]any) (any, error) {
	id := str(payload["proposalId"])
	idx := slices.IndexFunc(w.proposals, func(p proposal) bool { return p.ID == id })
	if idx < 0 {
		return nil, zerr.With(zerr.Wrap(errRejected, "unknown proposal"), "proposalId", id)
	}
	option := str(payload["option"])
	w.proposals[idx].Votes[option]++
	return map[string]any{"proposalId": id, "option": option, "votes": w.proposals[idx].Votes[option]}, nil
}

func (w *world) bridge(actor string, payload map[string]any, now time.Time) (any, error) {
	symbol := str(payload["token"])
	amount, err := number(payload, "amount")
	if err != nil {
		return nil, err
	}
	bal := w.balanceOf(actor)
	if bal[symbol] < amount {
		return nil, zerr.With(zerr.Wrap(errRejected, "insufficient balance"), "token", symbol)
	}
	bal[symbol] -= amount

	t := transfer{Token: symbol, Amount: amount, Destination: str(payload["destination"]), At: now}
	w.transfers[actor] = append(w.transfers[actor], t)
	return t, nil
}

func page[T any](raw string, items []T) (any, error) {
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return nil, zerr.With(zerr.Wrap(errBadParams, "page must be a positive integer"), "page", raw)
	}
	start := min((n-1)*pageSize, len(items))
	end := min(start+pageSize, len(items))
	return map[string]any{
		"page":    n,
		"total":   len(items),
		"entries": orEmpty(items[start:end]),
	}, nil
}

func newestFirst[T any](items []T) []T {
	out := slices.Clone(items)
	slices.Reverse(out)
	return out
}

func orEmpty[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}

func str(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

func number(payload map[string]any, field string) (float64, error) {
	var f float64
	switch v := payload[field].(type) {
	case float64:
		f = v
	case string:
		parsed, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0, zerr.With(zerr.Wrap(errRejected, "not a number"), "field", field)
		}
		f = parsed
	default:
		return 0, zerr.With(zerr.Wrap(errRejected, "not a number"), "field", field)
	}
	if f <= 0 {
		return 0, zerr.With(zerr.Wrap(errRejected, "amount must be positive"), "field", field)
	}
	return f, nil
}

func round(f float64) float64 {
	return math.Round(f*1000) / 1000
}
