package domain

import (
	"math/big"
	"time"
)

// EventKind is the canonical event vocabulary. Protocol-specific raw topics
// (deposit/withdraw) are normalized to add/remove at the parser boundary;
// aggregation code only ever sees these three kinds.
type EventKind string

const (
	EventAdd    EventKind = "add"
	EventRemove EventKind = "remove"
	EventSwap   EventKind = "swap"
)

// EventMeta carries the fields common to every contract event. FeeStroops is
// the fee of the containing transaction in the chain base unit (1e-7 XLM),
// regardless of which tokens the event touched.
type EventMeta struct {
	PairAddress string    `json:"pair,omitempty"`
	CloseTime   time.Time `json:"closeTime"`
	FeeStroops  int64     `json:"fee"`
}

// Meta returns the shared event fields.
func (m EventMeta) Meta() EventMeta { return m }

// Event is a normalized on-chain contract event. Concrete types are
// AddEvent, RemoveEvent and SwapEvent.
type Event interface {
	Kind() EventKind
	Meta() EventMeta
}

// AddEvent is a liquidity deposit into a pool.
type AddEvent struct {
	EventMeta
	TokenA    string   `json:"token_a"`
	TokenB    string   `json:"token_b"`
	AmountA   *big.Int `json:"amount_a"`
	AmountB   *big.Int `json:"amount_b"`
	Liquidity *big.Int `json:"liquidity"`
}

func (AddEvent) Kind() EventKind { return EventAdd }

// RemoveEvent is a liquidity withdrawal from a pool.
type RemoveEvent struct {
	EventMeta
	TokenA    string   `json:"token_a"`
	TokenB    string   `json:"token_b"`
	AmountA   *big.Int `json:"amount_a"`
	AmountB   *big.Int `json:"amount_b"`
	Liquidity *big.Int `json:"liquidity"`
}

func (RemoveEvent) Kind() EventKind { return EventRemove }

// SwapEvent is a trade routed through one or more pools. Amounts[i] is the
// quantity of Path[i] that changed hands at hop i; both slices have equal
// length.
type SwapEvent struct {
	EventMeta
	Path    []string   `json:"path"`
	Amounts []*big.Int `json:"amounts"`
}

func (SwapEvent) Kind() EventKind { return EventSwap }
