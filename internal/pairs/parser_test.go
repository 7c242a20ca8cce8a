package pairs

import (
	"bytes"
	"math/big"
	"reflect"
	"testing"

	"github.com/soroswap/soroswap-analytics/internal/mercury"
	"github.com/soroswap/soroswap-analytics/internal/scval"
	"github.com/soroswap/soroswap-analytics/pkg/domain"
)

func testAddress(t *testing.T, fill byte) string {
	t.Helper()
	addr, err := scval.ContractAddress(bytes.Repeat([]byte{fill}, 32))
	if err != nil {
		t.Fatalf("ContractAddress error: %v", err)
	}
	return addr
}

func encodeValue(t *testing.T, v scval.Value) string {
	t.Helper()
	encoded, err := scval.EncodeBase64(v)
	if err != nil {
		t.Fatalf("EncodeBase64 error: %v", err)
	}
	return encoded
}

func soroswapInstance(t *testing.T, token0, token1 string, r0, r1, shares int64) string {
	t.Helper()
	return encodeValue(t, scval.ContractInstance{
		Storage: scval.Map{
			{Key: scval.U32(0), Val: scval.Address(token0)},
			{Key: scval.U32(1), Val: scval.Address(token1)},
			{Key: scval.U32(2), Val: scval.I128{V: big.NewInt(r0)}},
			{Key: scval.U32(3), Val: scval.I128{V: big.NewInt(r1)}},
			{Key: scval.U32(4), Val: scval.Address(testAddress(t, 0xfa))},
			{Key: scval.U32(5), Val: scval.Address(testAddress(t, 0xfb))},
			{Key: scval.U32(6), Val: scval.I128{V: big.NewInt(shares)}},
		},
	})
}

func phoenixInstance(t *testing.T, tokenA, tokenB string, r0, r1, shares int64) string {
	t.Helper()
	return encodeValue(t, scval.ContractInstance{
		Storage: scval.Map{
			{Key: scval.U32(0), Val: scval.I128{V: big.NewInt(shares)}},
			{Key: scval.U32(1), Val: scval.I128{V: big.NewInt(r0)}},
			{Key: scval.U32(2), Val: scval.I128{V: big.NewInt(r1)}},
			{Key: scval.U32(3), Val: scval.Bool(true)},
			{Key: scval.U32(4), Val: scval.Map{
				{Key: scval.Symbol("token_a"), Val: scval.Address(tokenA)},
				{Key: scval.Symbol("token_b"), Val: scval.Address(tokenB)},
			}},
		},
	})
}

func factoryInstance(t *testing.T, totalPairs uint32) string {
	t.Helper()
	return encodeValue(t, scval.ContractInstance{
		Storage: scval.Map{
			{Key: scval.U32(0), Val: scval.Address(testAddress(t, 0x0a))},
			{Key: scval.U32(1), Val: scval.Address(testAddress(t, 0x0b))},
			{Key: scval.U32(3), Val: scval.Bool(false)},
			{Key: scval.U32(8), Val: scval.U32(totalPairs)},
		},
	})
}

func TestPairIndexKey(t *testing.T) {
	key, err := PairIndexKey(5)
	if err != nil {
		t.Fatalf("PairIndexKey error: %v", err)
	}
	decoded, err := scval.DecodeBase64(key)
	if err != nil {
		t.Fatalf("DecodeBase64 error: %v", err)
	}
	want := scval.Vec{scval.Symbol("PairAddressesNIndexed"), scval.U32(5)}
	if !reflect.DeepEqual(decoded, want) {
		t.Errorf("decoded key = %#v, want %#v", decoded, want)
	}

	if _, err := PairIndexKey(-1); err == nil {
		t.Errorf("PairIndexKey(-1) expected error")
	}
}

func TestParseFactoryTotalPairs(t *testing.T) {
	count, err := parseFactoryTotalPairs(factoryInstance(t, 17))
	if err != nil {
		t.Fatalf("parseFactoryTotalPairs error: %v", err)
	}
	if count != 17 {
		t.Errorf("count = %d, want 17", count)
	}

	empty := encodeValue(t, scval.ContractInstance{})
	if _, err := parseFactoryTotalPairs(empty); err == nil {
		t.Errorf("expected error for empty storage")
	}
}

func TestParsePairAddress(t *testing.T) {
	addr := testAddress(t, 0x42)
	got, err := parsePairAddress(encodeValue(t, scval.Address(addr)))
	if err != nil {
		t.Fatalf("parsePairAddress error: %v", err)
	}
	if got != addr {
		t.Errorf("address = %q, want %q", got, addr)
	}

	if _, err := parsePairAddress(encodeValue(t, scval.U32(1))); err == nil {
		t.Errorf("expected error for non-address value")
	}
}

func TestParsePhoenixLpVec(t *testing.T) {
	a, b := testAddress(t, 0x01), testAddress(t, 0x02)
	got, err := parsePhoenixLpVec(encodeValue(t, scval.Vec{scval.Address(a), scval.Address(b)}))
	if err != nil {
		t.Fatalf("parsePhoenixLpVec error: %v", err)
	}
	if !reflect.DeepEqual(got, []string{a, b}) {
		t.Errorf("addresses = %v, want [%s %s]", got, a, b)
	}
}

func TestParseSoroswapEntry(t *testing.T) {
	token0, token1 := testAddress(t, 0x10), testAddress(t, 0x11)
	entry, err := parseSoroswapEntry(soroswapInstance(t, token0, token1, 1000, 2000, 55), 1712345678)
	if err != nil {
		t.Fatalf("parseSoroswapEntry error: %v", err)
	}
	want := domain.PoolEntry{
		Timestamp:   1712345678,
		Token0:      token0,
		Token1:      token1,
		Reserve0:    big.NewInt(1000),
		Reserve1:    big.NewInt(2000),
		TotalShares: big.NewInt(55),
	}
	if !reflect.DeepEqual(entry, want) {
		t.Errorf("entry = %+v, want %+v", entry, want)
	}
}

func TestParsePhoenixEntry(t *testing.T) {
	tokenA, tokenB := testAddress(t, 0x20), testAddress(t, 0x21)
	entry, err := parsePhoenixEntry(phoenixInstance(t, tokenA, tokenB, 300, 400, 9), 0)
	if err != nil {
		t.Fatalf("parsePhoenixEntry error: %v", err)
	}
	want := domain.PoolEntry{
		Token0:      tokenA,
		Token1:      tokenB,
		Reserve0:    big.NewInt(300),
		Reserve1:    big.NewInt(400),
		TotalShares: big.NewInt(9),
	}
	if !reflect.DeepEqual(entry, want) {
		t.Errorf("entry = %+v, want %+v", entry, want)
	}
}

func TestParsePools(t *testing.T) {
	token0, token1 := testAddress(t, 0x31), testAddress(t, 0x32)
	pair := testAddress(t, 0x30)

	sets := mercury.EntrySets{
		"pair0": {Edges: []mercury.EntryEdge{
			{Node: mercury.EntryNode{
				ContractID: pair,
				ValueXdr:   soroswapInstance(t, token0, token1, 500, 600, 70),
				TxInfo:     &mercury.TxInfo{Ledger: &mercury.LedgerInfo{CloseTime: 200}},
			}},
			{Node: mercury.EntryNode{
				ContractID: pair,
				ValueXdr:   soroswapInstance(t, token0, token1, 100, 200, 30),
				TxInfo:     &mercury.TxInfo{Ledger: &mercury.LedgerInfo{CloseTime: 100}},
			}},
		}},
		"pair1": {Edges: []mercury.EntryEdge{
			{Node: mercury.EntryNode{ContractID: "broken", ValueXdr: "AAAAAw=="}},
		}},
	}

	var skipped []string
	pools := parsePools(sets, domain.ProtocolSoroswap, true, func(alias string, err error) {
		skipped = append(skipped, alias)
	})

	if len(pools) != 1 {
		t.Fatalf("pools = %d, want 1", len(pools))
	}
	got := pools[0]
	if got.ContractID != pair || got.Protocol != domain.ProtocolSoroswap {
		t.Errorf("pool identity = %s/%s", got.ContractID, got.Protocol)
	}
	if got.Reserve0.Cmp(big.NewInt(500)) != 0 || got.Reserve1.Cmp(big.NewInt(600)) != 0 {
		t.Errorf("latest reserves = %s/%s, want 500/600", got.Reserve0, got.Reserve1)
	}
	if len(got.Entries) != 2 || got.Entries[1].Timestamp != 100 {
		t.Errorf("entries = %+v", got.Entries)
	}
	if !reflect.DeepEqual(skipped, []string{"pair1"}) {
		t.Errorf("skipped = %v, want [pair1]", skipped)
	}
}
