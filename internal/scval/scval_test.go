package scval_test

import (
	"math/big"
	"reflect"
	"testing"

	"github.com/soroswap/soroswap-analytics/internal/scval"
)

const xlmContract = "CAS3J7GYLGXMF6TDJBBYYSE3HQ6BBSMLNUQ34T6TZMYMW2EVH34XOWMA"

func TestDecodeBase64_KnownKeys(t *testing.T) {
	tests := []struct {
		name string
		xdr  string
		want scval.Value
	}{
		{
			name: "instance storage ledger key",
			xdr:  "AAAAFA==",
			want: scval.LedgerKeyContractInstance{},
		},
		{
			name: "u32 enum key",
			xdr:  "AAAAAwAAAAI=",
			want: scval.U32(2),
		},
		{
			name: "void",
			xdr:  "AAAAAQ==",
			want: scval.Void{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := scval.DecodeBase64(tt.xdr)
			if err != nil {
				t.Fatalf("DecodeBase64(%q) error: %v", tt.xdr, err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("DecodeBase64(%q) = %#v, want %#v", tt.xdr, got, tt.want)
			}
		})
	}
}

func TestRoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		value scval.Value
	}{
		{name: "bool", value: scval.Bool(true)},
		{name: "u32", value: scval.U32(7)},
		{name: "i32 negative", value: scval.I32(-12)},
		{name: "u64", value: scval.U64(1 << 40)},
		{name: "i64 negative", value: scval.I64(-5_000_000_000)},
		{name: "symbol", value: scval.Symbol("PairAddressesNIndexed")},
		{name: "string", value: scval.Str("soroswap")},
		{name: "bytes", value: scval.Bytes{0xde, 0xad, 0xbe, 0xef, 0x01}},
		{
			name:  "i128 positive",
			value: scval.I128{V: mustBig(t, "170141183460469231731687303715884105727")},
		},
		{
			name:  "i128 negative",
			value: scval.I128{V: mustBig(t, "-170141183460469231731687303715884105728")},
		},
		{
			name:  "u128 above u64",
			value: scval.U128{V: mustBig(t, "340282366920938463463374607431768211455")},
		},
		{
			name: "pair index key vector",
			value: scval.Vec{
				scval.Symbol("PairAddressesNIndexed"),
				scval.U32(0),
			},
		},
		{
			name:  "contract address",
			value: scval.Address(xlmContract),
		},
		{
			name: "map of token sides",
			value: scval.Map{
				{Key: scval.Symbol("token_a"), Val: scval.Address(xlmContract)},
				{Key: scval.Symbol("token_b"), Val: scval.Address(xlmContract)},
			},
		},
		{
			name: "contract instance with storage",
			value: scval.ContractInstance{
				Storage: scval.Map{
					{Key: scval.U32(0), Val: scval.Address(xlmContract)},
					{Key: scval.U32(2), Val: scval.I128{V: big.NewInt(123_456_789)}},
				},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			encoded, err := scval.EncodeBase64(tt.value)
			if err != nil {
				t.Fatalf("EncodeBase64 error: %v", err)
			}
			decoded, err := scval.DecodeBase64(encoded)
			if err != nil {
				t.Fatalf("DecodeBase64(%q) error: %v", encoded, err)
			}
			if !reflect.DeepEqual(decoded, tt.value) {
				t.Errorf("round trip = %#v, want %#v", decoded, tt.value)
			}
		})
	}
}

func TestDecode_Malformed(t *testing.T) {
	tests := []struct {
		name string
		xdr  string
	}{
		{name: "not base64", xdr: "!!"},
		{name: "empty", xdr: ""},
		{name: "truncated u32", xdr: "AAAAAw=="},
		{name: "unknown discriminant", xdr: "AAAA/w=="},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if v, err := scval.DecodeBase64(tt.xdr); err == nil {
				t.Errorf("DecodeBase64(%q) = %#v, want error", tt.xdr, v)
			}
		})
	}
}

func TestContractAddress(t *testing.T) {
	raw, err := scval.ContractHash(xlmContract)
	if err != nil {
		t.Fatalf("ContractHash error: %v", err)
	}
	if len(raw) != 32 {
		t.Fatalf("hash length = %d, want 32", len(raw))
	}
	back, err := scval.ContractAddress(raw)
	if err != nil {
		t.Fatalf("ContractAddress error: %v", err)
	}
	if back != xlmContract {
		t.Errorf("round trip = %q, want %q", back, xlmContract)
	}
}

func TestContractHash_RejectsCorruption(t *testing.T) {
	corrupted := "D" + xlmContract[1:]
	if _, err := scval.ContractHash(corrupted); err == nil {
		t.Errorf("ContractHash accepted a corrupted strkey")
	}
}

func TestMapGet(t *testing.T) {
	m := scval.Map{
		{Key: scval.Symbol("token_a"), Val: scval.U32(1)},
		{Key: scval.Str("token_b"), Val: scval.U32(2)},
	}
	if v, ok := m.Get("token_b"); !ok || v != scval.U32(2) {
		t.Errorf("Get(token_b) = %v, %v", v, ok)
	}
	if _, ok := m.Get("token_c"); ok {
		t.Errorf("Get(token_c) found a missing key")
	}
}

func mustBig(t *testing.T, s string) *big.Int {
	t.Helper()
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		t.Fatalf("bad big integer literal %q", s)
	}
	return v
}
