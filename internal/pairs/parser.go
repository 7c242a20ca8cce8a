package pairs

import (
	"fmt"
	"sort"

	"github.com/soroswap/soroswap-analytics/internal/mercury"
	"github.com/soroswap/soroswap-analytics/internal/scval"
	"github.com/soroswap/soroswap-analytics/pkg/domain"
)

// Contract storage slot positions. Both protocols keep their pool state in
// the instance storage map, sorted by key, so slots are addressed by
// position.
const (
	soroswapSlotToken0      = 0
	soroswapSlotToken1      = 1
	soroswapSlotReserve0    = 2
	soroswapSlotReserve1    = 3
	soroswapSlotTotalShares = 6

	phoenixSlotTotalShares = 0
	phoenixSlotReserve0    = 1
	phoenixSlotReserve1    = 2
	phoenixSlotTokenPair   = 4
)

// parseFactoryTotalPairs extracts the pair counter from a factory instance
// entry. The counter lives in the last storage slot.
func parseFactoryTotalPairs(valueXdr string) (int, error) {
	inst, err := decodeInstance(valueXdr)
	if err != nil {
		return 0, err
	}
	if len(inst.Storage) == 0 {
		return 0, fmt.Errorf("pairs: factory instance has no storage")
	}
	count, err := scval.AsBigInt(inst.Storage[len(inst.Storage)-1].Val)
	if err != nil {
		return 0, fmt.Errorf("pairs: factory pair counter: %w", err)
	}
	return int(count.Int64()), nil
}

// parsePairAddress extracts the contract address stored in one factory
// vector slot.
func parsePairAddress(valueXdr string) (string, error) {
	v, err := scval.DecodeBase64(valueXdr)
	if err != nil {
		return "", fmt.Errorf("pairs: pair address entry: %w", err)
	}
	addr, err := scval.AsAddress(v)
	if err != nil {
		return "", fmt.Errorf("pairs: pair address entry: %w", err)
	}
	return addr, nil
}

// parsePhoenixLpVec extracts the pair addresses from the Phoenix factory's
// persistent vector.
func parsePhoenixLpVec(valueXdr string) ([]string, error) {
	v, err := scval.DecodeBase64(valueXdr)
	if err != nil {
		return nil, fmt.Errorf("pairs: phoenix lp vector: %w", err)
	}
	vec, err := scval.AsVec(v)
	if err != nil {
		return nil, fmt.Errorf("pairs: phoenix lp vector: %w", err)
	}
	addresses := make([]string, 0, len(vec))
	for _, elem := range vec {
		addr, err := scval.AsAddress(elem)
		if err != nil {
			return nil, fmt.Errorf("pairs: phoenix lp vector element: %w", err)
		}
		addresses = append(addresses, addr)
	}
	return addresses, nil
}

// parseSoroswapEntry reconstructs one historical pool state from a Soroswap
// pair instance entry.
func parseSoroswapEntry(valueXdr string, timestamp int64) (domain.PoolEntry, error) {
	inst, err := decodeInstance(valueXdr)
	if err != nil {
		return domain.PoolEntry{}, err
	}
	if len(inst.Storage) <= soroswapSlotTotalShares {
		return domain.PoolEntry{}, fmt.Errorf("pairs: soroswap instance has %d slots, want at least %d",
			len(inst.Storage), soroswapSlotTotalShares+1)
	}

	token0, err := scval.AsAddress(inst.Storage[soroswapSlotToken0].Val)
	if err != nil {
		return domain.PoolEntry{}, fmt.Errorf("pairs: soroswap token0: %w", err)
	}
	token1, err := scval.AsAddress(inst.Storage[soroswapSlotToken1].Val)
	if err != nil {
		return domain.PoolEntry{}, fmt.Errorf("pairs: soroswap token1: %w", err)
	}
	reserve0, err := scval.AsBigInt(inst.Storage[soroswapSlotReserve0].Val)
	if err != nil {
		return domain.PoolEntry{}, fmt.Errorf("pairs: soroswap reserve0: %w", err)
	}
	reserve1, err := scval.AsBigInt(inst.Storage[soroswapSlotReserve1].Val)
	if err != nil {
		return domain.PoolEntry{}, fmt.Errorf("pairs: soroswap reserve1: %w", err)
	}
	totalShares, err := scval.AsBigInt(inst.Storage[soroswapSlotTotalShares].Val)
	if err != nil {
		return domain.PoolEntry{}, fmt.Errorf("pairs: soroswap total shares: %w", err)
	}

	return domain.PoolEntry{
		Timestamp:   timestamp,
		Token0:      token0,
		Token1:      token1,
		Reserve0:    reserve0,
		Reserve1:    reserve1,
		TotalShares: totalShares,
	}, nil
}

// parsePhoenixEntry reconstructs one historical pool state from a Phoenix
// pair instance entry. Phoenix keeps both token addresses in a nested
// config map.
func parsePhoenixEntry(valueXdr string, timestamp int64) (domain.PoolEntry, error) {
	inst, err := decodeInstance(valueXdr)
	if err != nil {
		return domain.PoolEntry{}, err
	}
	if len(inst.Storage) <= phoenixSlotTokenPair {
		return domain.PoolEntry{}, fmt.Errorf("pairs: phoenix instance has %d slots, want at least %d",
			len(inst.Storage), phoenixSlotTokenPair+1)
	}

	config, err := scval.AsMap(inst.Storage[phoenixSlotTokenPair].Val)
	if err != nil {
		return domain.PoolEntry{}, fmt.Errorf("pairs: phoenix config: %w", err)
	}
	token0, err := phoenixToken(config, "token_a")
	if err != nil {
		return domain.PoolEntry{}, err
	}
	token1, err := phoenixToken(config, "token_b")
	if err != nil {
		return domain.PoolEntry{}, err
	}
	reserve0, err := scval.AsBigInt(inst.Storage[phoenixSlotReserve0].Val)
	if err != nil {
		return domain.PoolEntry{}, fmt.Errorf("pairs: phoenix reserve0: %w", err)
	}
	reserve1, err := scval.AsBigInt(inst.Storage[phoenixSlotReserve1].Val)
	if err != nil {
		return domain.PoolEntry{}, fmt.Errorf("pairs: phoenix reserve1: %w", err)
	}
	totalShares, err := scval.AsBigInt(inst.Storage[phoenixSlotTotalShares].Val)
	if err != nil {
		return domain.PoolEntry{}, fmt.Errorf("pairs: phoenix total shares: %w", err)
	}

	return domain.PoolEntry{
		Timestamp:   timestamp,
		Token0:      token0,
		Token1:      token1,
		Reserve0:    reserve0,
		Reserve1:    reserve1,
		TotalShares: totalShares,
	}, nil
}

func phoenixToken(config scval.Map, key string) (string, error) {
	v, ok := config.Get(key)
	if !ok {
		return "", fmt.Errorf("pairs: phoenix config missing %s", key)
	}
	addr, err := scval.AsAddress(v)
	if err != nil {
		return "", fmt.Errorf("pairs: phoenix %s: %w", key, err)
	}
	return addr, nil
}

// parsePools turns one alias-batched entry response into pools. The newest
// entry becomes the pool state; the rest become its history. Aliases whose
// entries fail to decode are skipped rather than failing the whole batch.
func parsePools(sets mercury.EntrySets, protocol domain.Protocol, withEntries bool, onError func(alias string, err error)) []domain.PoolWithEntries {
	aliases := make([]string, 0, len(sets))
	for alias := range sets {
		aliases = append(aliases, alias)
	}
	// pair2 sorts before pair10
	sort.Slice(aliases, func(i, j int) bool {
		if len(aliases[i]) != len(aliases[j]) {
			return len(aliases[i]) < len(aliases[j])
		}
		return aliases[i] < aliases[j]
	})

	parseEntry := parseSoroswapEntry
	if protocol == domain.ProtocolPhoenix {
		parseEntry = parsePhoenixEntry
	}

	pools := make([]domain.PoolWithEntries, 0, len(aliases))
	for _, alias := range aliases {
		edges := sets[alias].Edges
		if len(edges) == 0 {
			continue
		}
		contractID := edges[0].Node.ContractID

		var entries []domain.PoolEntry
		var failed error
		for _, edge := range edges {
			entry, err := parseEntry(edge.Node.ValueXdr, edge.Node.TxInfo.CloseTime())
			if err != nil {
				failed = err
				break
			}
			entries = append(entries, entry)
			if !withEntries {
				break
			}
		}
		if failed != nil {
			if onError != nil {
				onError(alias, failed)
			}
			continue
		}

		latest := entries[0]
		pool := domain.PoolWithEntries{
			Pool: domain.Pool{
				ContractID:  contractID,
				Protocol:    protocol,
				Token0:      latest.Token0,
				Token1:      latest.Token1,
				Reserve0:    latest.Reserve0,
				Reserve1:    latest.Reserve1,
				TotalShares: latest.TotalShares,
			},
		}
		if withEntries {
			pool.Entries = entries
		}
		pools = append(pools, pool)
	}
	return pools
}

func decodeInstance(valueXdr string) (scval.ContractInstance, error) {
	v, err := scval.DecodeBase64(valueXdr)
	if err != nil {
		return scval.ContractInstance{}, fmt.Errorf("pairs: instance entry: %w", err)
	}
	inst, err := scval.AsInstance(v)
	if err != nil {
		return scval.ContractInstance{}, fmt.Errorf("pairs: instance entry: %w", err)
	}
	return inst, nil
}
