package domain

import (
	"encoding/json"
	"time"

	"go.trai.ch/zerr"
)

// MutationKind names a command the operator can issue.
type MutationKind string

const (
	// MutationSwap exchanges one asset for another through a pool.
	MutationSwap MutationKind = "swap"
	// MutationAddLiquidity deposits assets into a pool.
	MutationAddLiquidity MutationKind = "add-liquidity"
	// MutationActivateToken enables a token for the caller.
	MutationActivateToken MutationKind = "activate-token"
	// MutationPublishAttestation publishes an attestation record to the ledger.
	MutationPublishAttestation MutationKind = "publish-attestation"
	// MutationVote casts a vote on a proposal.
	MutationVote MutationKind = "vote"
	// MutationBridgeTransfer moves assets across the bridge.
	MutationBridgeTransfer MutationKind = "bridge-transfer"
	// MutationMintNFT mints a new NFT listing.
	MutationMintNFT MutationKind = "mint-nft"
)

var requiredFields = map[MutationKind][]string{
	MutationSwap:               {"pool", "tokenIn", "amountIn"},
	MutationAddLiquidity:       {"pool", "amountA", "amountB"},
	MutationActivateToken:      {"token"},
	MutationPublishAttestation: {"subject", "digest"},
	MutationVote:               {"proposalId", "option"},
	MutationBridgeTransfer:     {"token", "amount", "destination"},
	MutationMintNFT:            {"name", "uri"},
}

// MutationKinds returns every kind the backend accepts, in display order.
func MutationKinds() []MutationKind {
	return []MutationKind{
		MutationSwap,
		MutationAddLiquidity,
		MutationActivateToken,
		MutationPublishAttestation,
		MutationVote,
		MutationBridgeTransfer,
		MutationMintNFT,
	}
}

// ParseMutationKind converts a command-line name into a MutationKind.
func ParseMutationKind(name string) (MutationKind, error) {
	kind := MutationKind(name)
	if !kind.Valid() {
		return "", zerr.With(zerr.Wrap(ErrUnknownMutation, "unsupported mutation"), "kind", name)
	}
	return kind, nil
}

// Valid reports whether the backend knows the kind.
func (k MutationKind) Valid() bool {
	_, ok := requiredFields[k]
	return ok
}

// RequiredFields lists the top-level payload fields the kind must carry.
func (k MutationKind) RequiredFields() []string {
	return requiredFields[k]
}

// MutationStatus is the lifecycle stage of a MutationRecord.
type MutationStatus uint8

const (
	// MutationIdle means the record was created but not submitted.
	MutationIdle MutationStatus = iota
	// MutationPending means the backend has not answered yet.
	MutationPending
	// MutationSucceeded means the backend acknowledged the write.
	MutationSucceeded
	// MutationFailed means the backend rejected the write or could not be reached.
	MutationFailed
)

// String returns the display name of the status.
func (s MutationStatus) String() string {
	switch s {
	case MutationPending:
		return "pending"
	case MutationSucceeded:
		return "succeeded"
	case MutationFailed:
		return "failed"
	default:
		return "idle"
	}
}

// MutationRecord tracks one user-initiated write.
// AffectedKeys is filled in once invalidation has resolved the rule patterns.
type MutationRecord struct {
	ID           string
	Kind         MutationKind
	Status       MutationStatus
	Payload      json.RawMessage
	Actor        string
	Result       json.RawMessage
	Err          error
	StartedAt    time.Time
	FinishedAt   time.Time
	AffectedKeys []DomainKey
}

// MutationContext carries what the invalidation coordinator needs to resolve
// parameterized patterns.
type MutationContext struct {
	Actor string
}
