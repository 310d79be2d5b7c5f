// Package invalidation maps successful mutations to the cache keys they
// make stale.
package invalidation

import (
	"context"
	"slices"
	"strings"

	"go.trai.ch/vigil/internal/core/domain"
	"go.trai.ch/vigil/internal/core/ports"
)

// Rules maps a mutation kind to the key patterns it invalidates.
type Rules map[domain.MutationKind][]domain.KeyPattern

// DefaultRules covers every mutation kind the backend accepts.
func DefaultRules() Rules {
	self := domain.SelfParam
	return Rules{
		domain.MutationSwap: {
			domain.Pattern(domain.DomainPoolList),
			domain.Pattern(domain.DomainUserBalances, self),
		},
		domain.MutationAddLiquidity: {
			domain.Pattern(domain.DomainPoolList),
			domain.Pattern(domain.DomainUserLiquidityPositions, self),
			domain.Pattern(domain.DomainUserBalances, self),
		},
		domain.MutationActivateToken: {
			domain.Pattern(domain.DomainTokenRegistry),
			domain.Pattern(domain.DomainUserBalances, self),
		},
		domain.MutationPublishAttestation: {
			domain.Pattern(domain.DomainAttestationList),
			domain.Pattern(domain.DomainBlockchainStatus),
			domain.Pattern(domain.DomainLedgerPage, domain.Wildcard),
		},
		domain.MutationVote: {
			domain.Pattern(domain.DomainProposalList),
		},
		domain.MutationBridgeTransfer: {
			domain.Pattern(domain.DomainBridgeTransfers, self),
			domain.Pattern(domain.DomainUserBalances, self),
		},
		domain.MutationMintNFT: {
			domain.Pattern(domain.DomainNFTListings, domain.Wildcard),
			domain.Pattern(domain.DomainUserBalances, self),
		},
	}
}

// Cache is the part of the read cache the coordinator drives.
type Cache interface {
	Invalidate(key domain.DomainKey) bool
	InvalidateMatching(pattern domain.KeyPattern) []domain.DomainKey
}

// Coordinator applies the rule table to the cache.
type Coordinator struct {
	cache  Cache
	rules  Rules
	tracer ports.Tracer
	logger ports.Logger
}

// New creates a Coordinator. A nil rules table uses DefaultRules.
func New(cache Cache, rules Rules, tracer ports.Tracer, logger ports.Logger) *Coordinator {
	if rules == nil {
		rules = DefaultRules()
	}
	return &Coordinator{
		cache:  cache,
		rules:  rules,
		tracer: tracer,
		logger: logger,
	}
}

// Patterns returns the patterns registered for kind.
func (c *Coordinator) Patterns(kind domain.MutationKind) []domain.KeyPattern {
	return slices.Clone(c.rules[kind])
}

// OnMutationSucceeded marks every key affected by kind Stale and returns them.
// $self resolves to mctx.Actor; wildcards expand over keys the cache holds.
// Refreshes run in the background; the call does not wait for them.
func (c *Coordinator) OnMutationSucceeded(ctx context.Context, kind domain.MutationKind, mctx domain.MutationContext) []domain.DomainKey {
	patterns, ok := c.rules[kind]
	if !ok {
		c.logger.Warn("no invalidation rule for mutation " + string(kind))
		return nil
	}

	_, span := c.tracer.Start(ctx, "invalidation.apply", ports.WithAttribute("kind", string(kind)))
	defer span.End()

	var keys []domain.DomainKey
	for _, pattern := range patterns {
		resolved := pattern.Resolve(mctx.Actor)
		if resolved.IsConcrete() {
			key := resolved.Key()
			if c.cache.Invalidate(key) {
				keys = append(keys, key)
			}
			continue
		}
		keys = append(keys, c.cache.InvalidateMatching(resolved)...)
	}

	names := make([]string, len(keys))
	for i, key := range keys {
		names[i] = key.String()
	}
	span.SetAttribute("keys", strings.Join(names, " "))
	if len(keys) > 0 {
		c.logger.Debug("mutation " + string(kind) + " invalidated " + strings.Join(names, ", "))
	}
	return keys
}
