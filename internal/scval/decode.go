package scval

import (
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"math/big"
)

type reader struct {
	buf []byte
	pos int
}

func (r *reader) take(n int) ([]byte, error) {
	if r.pos+n > len(r.buf) {
		return nil, fmt.Errorf("scval: truncated XDR at offset %d, need %d bytes", r.pos, n)
	}
	b := r.buf[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

func (r *reader) uint32() (uint32, error) {
	b, err := r.take(4)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b), nil
}

func (r *reader) uint64() (uint64, error) {
	b, err := r.take(8)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(b), nil
}

// opaque reads a variable-length byte string, consuming the padding that
// rounds it to a four byte boundary.
func (r *reader) opaque() ([]byte, error) {
	n, err := r.uint32()
	if err != nil {
		return nil, err
	}
	b, err := r.take(int(n))
	if err != nil {
		return nil, err
	}
	if pad := (4 - n%4) % 4; pad > 0 {
		if _, err := r.take(int(pad)); err != nil {
			return nil, err
		}
	}
	out := make([]byte, n)
	copy(out, b)
	return out, nil
}

// DecodeBase64 decodes a base64 encoded ScVal as served by the indexer feed.
func DecodeBase64(s string) (Value, error) {
	raw, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("scval: invalid base64: %w", err)
	}
	return Decode(raw)
}

// Decode decodes a single ScVal from raw XDR bytes. Trailing bytes are an
// error; a ledger entry holds exactly one value.
func Decode(raw []byte) (Value, error) {
	r := &reader{buf: raw}
	v, err := r.value()
	if err != nil {
		return nil, err
	}
	if r.pos != len(r.buf) {
		return nil, fmt.Errorf("scval: %d trailing bytes after value", len(r.buf)-r.pos)
	}
	return v, nil
}

func (r *reader) value() (Value, error) {
	disc, err := r.uint32()
	if err != nil {
		return nil, err
	}
	switch disc {
	case typeBool:
		n, err := r.uint32()
		if err != nil {
			return nil, err
		}
		return Bool(n != 0), nil
	case typeVoid:
		return Void{}, nil
	case typeU32:
		n, err := r.uint32()
		if err != nil {
			return nil, err
		}
		return U32(n), nil
	case typeI32:
		n, err := r.uint32()
		if err != nil {
			return nil, err
		}
		return I32(int32(n)), nil
	case typeU64:
		n, err := r.uint64()
		if err != nil {
			return nil, err
		}
		return U64(n), nil
	case typeI64:
		n, err := r.uint64()
		if err != nil {
			return nil, err
		}
		return I64(int64(n)), nil
	case typeU128:
		hi, err := r.uint64()
		if err != nil {
			return nil, err
		}
		lo, err := r.uint64()
		if err != nil {
			return nil, err
		}
		v := new(big.Int).SetUint64(hi)
		v.Lsh(v, 64)
		v.Or(v, new(big.Int).SetUint64(lo))
		return U128{V: v}, nil
	case typeI128:
		hi, err := r.uint64()
		if err != nil {
			return nil, err
		}
		lo, err := r.uint64()
		if err != nil {
			return nil, err
		}
		v := big.NewInt(int64(hi))
		v.Lsh(v, 64)
		v.Or(v, new(big.Int).SetUint64(lo))
		return I128{V: v}, nil
	case typeBytes:
		b, err := r.opaque()
		if err != nil {
			return nil, err
		}
		return Bytes(b), nil
	case typeString:
		b, err := r.opaque()
		if err != nil {
			return nil, err
		}
		return Str(b), nil
	case typeSymbol:
		b, err := r.opaque()
		if err != nil {
			return nil, err
		}
		return Symbol(b), nil
	case typeVec:
		return r.vec()
	case typeMap:
		return r.scMap()
	case typeAddress:
		return r.address()
	case typeContractInstance:
		return r.instance()
	case typeLedgerKeyContractInstance:
		return LedgerKeyContractInstance{}, nil
	}
	return nil, fmt.Errorf("scval: unsupported value type %d", disc)
}

func (r *reader) vec() (Value, error) {
	present, err := r.uint32()
	if err != nil {
		return nil, err
	}
	if present == 0 {
		return Vec(nil), nil
	}
	n, err := r.uint32()
	if err != nil {
		return nil, err
	}
	out := make(Vec, n)
	for i := range out {
		v, err := r.value()
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (r *reader) scMap() (Value, error) {
	present, err := r.uint32()
	if err != nil {
		return nil, err
	}
	if present == 0 {
		return Map(nil), nil
	}
	entries, err := r.entries()
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *reader) entries() (Map, error) {
	n, err := r.uint32()
	if err != nil {
		return nil, err
	}
	out := make(Map, n)
	for i := range out {
		key, err := r.value()
		if err != nil {
			return nil, err
		}
		val, err := r.value()
		if err != nil {
			return nil, err
		}
		out[i] = Entry{Key: key, Val: val}
	}
	return out, nil
}

func (r *reader) address() (Value, error) {
	kind, err := r.uint32()
	if err != nil {
		return nil, err
	}
	switch kind {
	case 0: // SC_ADDRESS_TYPE_ACCOUNT, PublicKey union with a single arm
		if _, err := r.uint32(); err != nil {
			return nil, err
		}
		raw, err := r.take(32)
		if err != nil {
			return nil, err
		}
		return Address(encodeStrkey(versionAccount, raw)), nil
	case 1: // SC_ADDRESS_TYPE_CONTRACT
		raw, err := r.take(32)
		if err != nil {
			return nil, err
		}
		return Address(encodeStrkey(versionContract, raw)), nil
	}
	return nil, fmt.Errorf("scval: unsupported address type %d", kind)
}

func (r *reader) instance() (Value, error) {
	exec, err := r.uint32()
	if err != nil {
		return nil, err
	}
	inst := ContractInstance{}
	switch exec {
	case 0: // CONTRACT_EXECUTABLE_WASM
		hash, err := r.take(32)
		if err != nil {
			return nil, err
		}
		inst.WasmHash = append([]byte(nil), hash...)
	case 1: // CONTRACT_EXECUTABLE_STELLAR_ASSET
	default:
		return nil, fmt.Errorf("scval: unsupported executable type %d", exec)
	}
	present, err := r.uint32()
	if err != nil {
		return nil, err
	}
	if present != 0 {
		storage, err := r.entries()
		if err != nil {
			return nil, err
		}
		inst.Storage = storage
	}
	return inst, nil
}
