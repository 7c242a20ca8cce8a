package repository

import (
	"time"

	"github.com/soroswap/soroswap-analytics/pkg/domain"
)

// Subscription is one watched ledger-entry storage slot, unique by
// (network, contractId, keyXdr). Created once, never mutated; deleted only
// when a pair is pruned from the canonical address set.
type Subscription struct {
	Network      domain.Network
	Protocol     domain.Protocol
	ContractType domain.ContractType
	StorageType  domain.StorageType
	ContractID   string
	KeyXdr       string
}

// EventSubscription is one watched contract event stream, unique by
// (network, contractId).
type EventSubscription struct {
	Network    domain.Network
	ContractID string
}

// XlmUsdPrice is the single persisted reference price row.
type XlmUsdPrice struct {
	Price     float64
	UpdatedAt time.Time
}
