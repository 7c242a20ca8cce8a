package scval

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"math/big"
)

type writer struct {
	bytes.Buffer
}

func (w *writer) uint32(n uint32) {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], n)
	w.Write(b[:])
}

func (w *writer) uint64(n uint64) {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], n)
	w.Write(b[:])
}

func (w *writer) opaque(b []byte) {
	w.uint32(uint32(len(b)))
	w.Write(b)
	if pad := (4 - len(b)%4) % 4; pad > 0 {
		w.Write(make([]byte, pad))
	}
}

// EncodeBase64 encodes a value as base64 XDR, the form ledger keys are sent
// to the indexer feed in.
func EncodeBase64(v Value) (string, error) {
	raw, err := Encode(v)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(raw), nil
}

// Encode serializes a value to raw XDR bytes.
func Encode(v Value) ([]byte, error) {
	w := &writer{}
	if err := encodeTo(w, v); err != nil {
		return nil, err
	}
	return w.Bytes(), nil
}

func encodeTo(w *writer, v Value) error {
	w.uint32(v.scType())
	switch val := v.(type) {
	case Void:
	case Bool:
		if val {
			w.uint32(1)
		} else {
			w.uint32(0)
		}
	case U32:
		w.uint32(uint32(val))
	case I32:
		w.uint32(uint32(int32(val)))
	case U64:
		w.uint64(uint64(val))
	case I64:
		w.uint64(uint64(int64(val)))
	case U128:
		hi, lo, err := split128(val.V, false)
		if err != nil {
			return err
		}
		w.uint64(hi)
		w.uint64(lo)
	case I128:
		hi, lo, err := split128(val.V, true)
		if err != nil {
			return err
		}
		w.uint64(hi)
		w.uint64(lo)
	case Bytes:
		w.opaque(val)
	case Str:
		w.opaque([]byte(val))
	case Symbol:
		w.opaque([]byte(val))
	case Vec:
		w.uint32(1)
		w.uint32(uint32(len(val)))
		for _, elem := range val {
			if err := encodeTo(w, elem); err != nil {
				return err
			}
		}
	case Map:
		w.uint32(1)
		if err := encodeEntries(w, val); err != nil {
			return err
		}
	case Address:
		return encodeAddress(w, string(val))
	case ContractInstance:
		if val.WasmHash != nil {
			if len(val.WasmHash) != 32 {
				return fmt.Errorf("scval: wasm hash must be 32 bytes, got %d", len(val.WasmHash))
			}
			w.uint32(0)
			w.Write(val.WasmHash)
		} else {
			w.uint32(1)
		}
		if val.Storage == nil {
			w.uint32(0)
		} else {
			w.uint32(1)
			if err := encodeEntries(w, val.Storage); err != nil {
				return err
			}
		}
	case LedgerKeyContractInstance:
	default:
		return fmt.Errorf("scval: cannot encode %T", v)
	}
	return nil
}

func encodeEntries(w *writer, m Map) error {
	w.uint32(uint32(len(m)))
	for _, e := range m {
		if err := encodeTo(w, e.Key); err != nil {
			return err
		}
		if err := encodeTo(w, e.Val); err != nil {
			return err
		}
	}
	return nil
}

func encodeAddress(w *writer, strkey string) error {
	version, raw, err := decodeStrkey(strkey)
	if err != nil {
		return err
	}
	switch version {
	case versionAccount:
		w.uint32(0)
		w.uint32(0) // PUBLIC_KEY_TYPE_ED25519
		w.Write(raw)
	case versionContract:
		w.uint32(1)
		w.Write(raw)
	default:
		return fmt.Errorf("scval: address %q has unsupported strkey version %d", strkey, version)
	}
	return nil
}

var (
	maxU128 = new(big.Int).Lsh(big.NewInt(1), 128)
	maxI128 = new(big.Int).Lsh(big.NewInt(1), 127)
	minI128 = new(big.Int).Neg(new(big.Int).Lsh(big.NewInt(1), 127))
)

// split128 produces the hi/lo limbs of a 128-bit two's complement value.
func split128(v *big.Int, signed bool) (uint64, uint64, error) {
	if v == nil {
		return 0, 0, fmt.Errorf("scval: nil big integer")
	}
	if signed {
		if v.Cmp(minI128) < 0 || v.Cmp(maxI128) >= 0 {
			return 0, 0, fmt.Errorf("scval: %s overflows i128", v)
		}
	} else {
		if v.Sign() < 0 || v.Cmp(maxU128) >= 0 {
			return 0, 0, fmt.Errorf("scval: %s overflows u128", v)
		}
	}
	twos := v
	if v.Sign() < 0 {
		twos = new(big.Int).Add(maxU128, v)
	}
	var buf [16]byte
	twos.FillBytes(buf[:])
	return binary.BigEndian.Uint64(buf[:8]), binary.BigEndian.Uint64(buf[8:]), nil
}
