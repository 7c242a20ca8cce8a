// Package scval implements the subset of the Soroban ScVal XDR vocabulary
// that contract storage entries and router events are built from. Values
// decoded from the indexer feed arrive base64 encoded; ledger keys sent to
// the feed are produced the same way in reverse.
package scval

import (
	"fmt"
	"math/big"
)

// XDR union discriminants, as defined by Stellar-contract.x.
const (
	typeBool                      = 0
	typeVoid                      = 1
	typeU32                       = 3
	typeI32                       = 4
	typeU64                       = 5
	typeI64                       = 6
	typeU128                      = 9
	typeI128                      = 10
	typeBytes                     = 13
	typeString                    = 14
	typeSymbol                    = 15
	typeVec                       = 16
	typeMap                       = 17
	typeAddress                   = 18
	typeContractInstance          = 19
	typeLedgerKeyContractInstance = 20
)

// Value is one node of a decoded ScVal tree. The concrete types are Void,
// Bool, U32, I32, U64, I64, U128, I128, Bytes, Str, Symbol, Vec, Map,
// Address, ContractInstance and LedgerKeyContractInstance.
type Value interface {
	scType() uint32
}

type Void struct{}

type Bool bool

type U32 uint32

type I32 int32

type U64 uint64

type I64 int64

// U128 and I128 carry their value as a big integer; 128-bit amounts are the
// native width of token balances on chain.
type U128 struct{ V *big.Int }

type I128 struct{ V *big.Int }

type Bytes []byte

type Str string

type Symbol string

type Vec []Value

// Entry is one key/value pair of a Map or of contract instance storage.
type Entry struct {
	Key Value
	Val Value
}

// Map preserves the on-ledger entry order. Contract storage maps are sorted
// by key on chain, which is what positional slot access relies on.
type Map []Entry

// Address is a strkey encoded account ("G...") or contract ("C...") address.
type Address string

// ContractInstance is the value stored under the instance ledger key.
// WasmHash is nil for Stellar asset contract instances.
type ContractInstance struct {
	WasmHash []byte
	Storage  Map
}

// LedgerKeyContractInstance is the ledger key selecting a contract's
// instance storage.
type LedgerKeyContractInstance struct{}

func (Void) scType() uint32                      { return typeVoid }
func (Bool) scType() uint32                      { return typeBool }
func (U32) scType() uint32                       { return typeU32 }
func (I32) scType() uint32                       { return typeI32 }
func (U64) scType() uint32                       { return typeU64 }
func (I64) scType() uint32                       { return typeI64 }
func (U128) scType() uint32                      { return typeU128 }
func (I128) scType() uint32                      { return typeI128 }
func (Bytes) scType() uint32                     { return typeBytes }
func (Str) scType() uint32                       { return typeString }
func (Symbol) scType() uint32                    { return typeSymbol }
func (Vec) scType() uint32                       { return typeVec }
func (Map) scType() uint32                       { return typeMap }
func (Address) scType() uint32                   { return typeAddress }
func (ContractInstance) scType() uint32          { return typeContractInstance }
func (LedgerKeyContractInstance) scType() uint32 { return typeLedgerKeyContractInstance }

// Get returns the value stored under a symbol or string key.
func (m Map) Get(key string) (Value, bool) {
	for _, e := range m {
		switch k := e.Key.(type) {
		case Symbol:
			if string(k) == key {
				return e.Val, true
			}
		case Str:
			if string(k) == key {
				return e.Val, true
			}
		}
	}
	return nil, false
}

// AsBigInt widens any numeric value to a big integer.
func AsBigInt(v Value) (*big.Int, error) {
	switch n := v.(type) {
	case U32:
		return big.NewInt(int64(n)), nil
	case I32:
		return big.NewInt(int64(n)), nil
	case U64:
		return new(big.Int).SetUint64(uint64(n)), nil
	case I64:
		return big.NewInt(int64(n)), nil
	case U128:
		return n.V, nil
	case I128:
		return n.V, nil
	}
	return nil, fmt.Errorf("scval: %T is not numeric", v)
}

// AsString extracts a symbol or string value.
func AsString(v Value) (string, error) {
	switch s := v.(type) {
	case Symbol:
		return string(s), nil
	case Str:
		return string(s), nil
	}
	return "", fmt.Errorf("scval: %T is not a string", v)
}

// AsAddress extracts a strkey address value.
func AsAddress(v Value) (string, error) {
	if a, ok := v.(Address); ok {
		return string(a), nil
	}
	return "", fmt.Errorf("scval: %T is not an address", v)
}

// AsVec extracts a vector value.
func AsVec(v Value) (Vec, error) {
	if vec, ok := v.(Vec); ok {
		return vec, nil
	}
	return nil, fmt.Errorf("scval: %T is not a vector", v)
}

// AsMap extracts a map value.
func AsMap(v Value) (Map, error) {
	if m, ok := v.(Map); ok {
		return m, nil
	}
	return nil, fmt.Errorf("scval: %T is not a map", v)
}

// AsInstance extracts a contract instance value.
func AsInstance(v Value) (ContractInstance, error) {
	if inst, ok := v.(ContractInstance); ok {
		return inst, nil
	}
	return ContractInstance{}, fmt.Errorf("scval: %T is not a contract instance", v)
}
