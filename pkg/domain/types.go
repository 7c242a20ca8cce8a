package domain

import (
	"math/big"
)

// Network partitions every entity; entities from different networks never mix.
type Network string

const (
	NetworkMainnet Network = "MAINNET"
	NetworkTestnet Network = "TESTNET"
)

// Protocol identifies the AMM family a pool belongs to.
type Protocol string

const (
	ProtocolSoroswap Protocol = "SOROSWAP"
	ProtocolPhoenix  Protocol = "PHOENIX"
)

// ContractType classifies the contract a storage subscription points at.
type ContractType string

const (
	ContractFactory ContractType = "FACTORY"
	ContractPair    ContractType = "PAIR"
	ContractRouter  ContractType = "ROUTER"
)

// StorageType is the Soroban durability of a subscribed ledger entry.
type StorageType string

const (
	StorageInstance   StorageType = "INSTANCE"
	StoragePersistent StorageType = "PERSISTENT"
)

// DefaultDecimals is the chain's native asset precision. It is used when a
// token is not present in the token list; a wrong value here silently corrupts
// every USD figure derived for that token.
const DefaultDecimals = 7

// TokenType describes an asset as listed in the curated token list.
type TokenType struct {
	Code     string `json:"code"`
	Issuer   string `json:"issuer,omitempty"`
	Contract string `json:"contract"`
	Name     string `json:"name,omitempty"`
	Org      string `json:"org,omitempty"`
	Domain   string `json:"domain,omitempty"`
	Icon     string `json:"icon,omitempty"`
	Decimals int    `json:"decimals,omitempty"`
}

// DecimalsOrDefault returns the token's decimals, falling back to the native
// asset precision when the token list did not carry one.
func (t TokenType) DecimalsOrDefault() int {
	if t.Decimals == 0 {
		return DefaultDecimals
	}
	return t.Decimals
}

// Pool is the current state of one liquidity pool, reconstructed from the
// latest subscribed instance-storage value. Token ordering is whatever the
// contract storage defines; callers must not assume lexical order.
type Pool struct {
	ContractID  string   `json:"contractId"`
	Protocol    Protocol `json:"protocol"`
	Token0      string   `json:"token0"`
	Token1      string   `json:"token1"`
	Reserve0    *big.Int `json:"reserve0"`
	Reserve1    *big.Int `json:"reserve1"`
	TotalShares *big.Int `json:"totalShares"`
}

// HasToken reports whether the pool holds the given token on either side.
func (p Pool) HasToken(token string) bool {
	return p.Token0 == token || p.Token1 == token
}

// PairsWith reports whether the pool pairs exactly the two given tokens,
// in either order.
func (p Pool) PairsWith(a, b string) bool {
	return (p.Token0 == a && p.Token1 == b) || (p.Token0 == b && p.Token1 == a)
}

// PoolEntry is one historical value of a pool's instance storage slot.
// Timestamp is the ledger close time in unix seconds; zero means the feed did
// not report one.
type PoolEntry struct {
	Timestamp   int64    `json:"timestamp"`
	Token0      string   `json:"token0"`
	Token1      string   `json:"token1"`
	Reserve0    *big.Int `json:"reserve0"`
	Reserve1    *big.Int `json:"reserve1"`
	TotalShares *big.Int `json:"totalShares"`
}

// PoolWithEntries is a pool together with the historical values of its
// storage slot, used for TVL/price charting.
type PoolWithEntries struct {
	Pool
	Entries []PoolEntry `json:"entries"`
}
