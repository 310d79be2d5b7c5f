package domain

import (
	"slices"
	"time"

	"go.trai.ch/zerr"
)

// Domain names exposed by the backend.
const (
	DomainMetrics                = "metrics"
	DomainHarmonics              = "harmonics"
	DomainNetworkStatus          = "network-status"
	DomainBlockchainStatus       = "blockchain-status"
	DomainTokenRegistry          = "token-registry"
	DomainUserBalances           = "user-balances"
	DomainPoolList               = "pool-list"
	DomainUserLiquidityPositions = "user-liquidity-positions"
	DomainLedgerPage             = "ledger-page"
	DomainAttestationList        = "attestation-list"
	DomainBridgeTransfers        = "bridge-transfers"
	DomainProposalList           = "proposal-list"
	DomainNFTListings            = "nft-listings"
)

// DomainSpec describes one backend domain.
type DomainSpec struct {
	Name string
	// ParamNames lists the positional parameters a key must carry.
	ParamNames []string
	// Streamed is true when the push stream carries updates for the domain.
	Streamed bool
	// PollInterval is the default refresh cadence. Zero means stream only.
	PollInterval time.Duration
}

// Catalog is the set of domains the backend exposes, in display order.
var Catalog = []DomainSpec{
	{Name: DomainMetrics, Streamed: true, PollInterval: 5 * time.Second},
	{Name: DomainHarmonics, Streamed: true},
	{Name: DomainNetworkStatus, Streamed: true, PollInterval: 10 * time.Second},
	{Name: DomainBlockchainStatus, PollInterval: 10 * time.Second},
	{Name: DomainTokenRegistry, PollInterval: 30 * time.Second},
	{Name: DomainUserBalances, ParamNames: []string{"user"}, PollInterval: 15 * time.Second},
	{Name: DomainPoolList, PollInterval: 10 * time.Second},
	{Name: DomainUserLiquidityPositions, ParamNames: []string{"user"}, PollInterval: 15 * time.Second},
	{Name: DomainLedgerPage, ParamNames: []string{"page"}, PollInterval: 30 * time.Second},
	{Name: DomainAttestationList, PollInterval: 15 * time.Second},
	{Name: DomainBridgeTransfers, ParamNames: []string{"user"}, PollInterval: 10 * time.Second},
	{Name: DomainProposalList, PollInterval: 20 * time.Second},
	{Name: DomainNFTListings, ParamNames: []string{"page"}, PollInterval: 30 * time.Second},
}

// LookupDomain returns the spec for name.
func LookupDomain(name string) (DomainSpec, bool) {
	idx := slices.IndexFunc(Catalog, func(s DomainSpec) bool { return s.Name == name })
	if idx < 0 {
		return DomainSpec{}, false
	}
	return Catalog[idx], true
}

// StreamedDomains returns the names of all domains carried by the push stream.
func StreamedDomains() []string {
	var names []string
	for _, spec := range Catalog {
		if spec.Streamed {
			names = append(names, spec.Name)
		}
	}
	return names
}

// ValidateKey checks that key names a known domain with the right parameter arity.
func ValidateKey(key DomainKey) error {
	spec, ok := LookupDomain(key.Domain)
	if !ok {
		return zerr.With(zerr.Wrap(ErrUnknownDomain, "invalid key"), "domain", key.Domain)
	}
	if got := len(key.Params()); got != len(spec.ParamNames) {
		return zerr.With(zerr.With(zerr.Wrap(ErrInvalidParams, "invalid key"), "domain", key.Domain), "want", len(spec.ParamNames))
	}
	return nil
}
