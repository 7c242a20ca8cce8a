package info

import (
	"context"
	"fmt"
	"math/big"

	"github.com/soroswap/soroswap-analytics/pkg/domain"
)

// poolTVL values both reserves of a pool in USD.
func (s snapshot) poolTVL(pool domain.Pool) float64 {
	return s.sideTVL(pool.Token0, pool.Reserve0) + s.sideTVL(pool.Token1, pool.Reserve1)
}

// sideTVL values one reserve side in USD.
func (s snapshot) sideTVL(token string, reserve *big.Int) float64 {
	return human(reserve, s.tokenDecimals(token)) * s.priceInUSD(token)
}

// tokenTVL sums the token's own side over every pool holding it. One-sided:
// the opposing reserves belong to the other token's TVL.
func (s snapshot) tokenTVL(token string) float64 {
	var tvl float64
	for _, pool := range s.pools {
		switch token {
		case pool.Token0:
			tvl += s.sideTVL(pool.Token0, pool.Reserve0)
		case pool.Token1:
			tvl += s.sideTVL(pool.Token1, pool.Reserve1)
		}
	}
	return tvl
}

func (s snapshot) findPool(address string) (domain.Pool, error) {
	for _, pool := range s.pools {
		if pool.ContractID == address {
			return pool, nil
		}
	}
	return domain.Pool{}, fmt.Errorf("%w: %s", ErrPoolNotFound, address)
}

// PoolTVL values one pool's reserves in USD.
func (s *Service) PoolTVL(ctx context.Context, network domain.Network, poolAddress string) (float64, error) {
	snap, err := s.snapshot(ctx, network)
	if err != nil {
		return 0, err
	}
	pool, err := snap.findPool(poolAddress)
	if err != nil {
		return 0, err
	}
	return snap.poolTVL(pool), nil
}

// TokenTVL values the token's side of every pool holding it.
func (s *Service) TokenTVL(ctx context.Context, network domain.Network, token string) (float64, error) {
	snap, err := s.snapshot(ctx, network)
	if err != nil {
		return 0, err
	}
	return snap.tokenTVL(token), nil
}

// ProtocolTVL sums the TVL of every discovered pool.
func (s *Service) ProtocolTVL(ctx context.Context, network domain.Network) (float64, error) {
	snap, err := s.snapshot(ctx, network)
	if err != nil {
		return 0, err
	}
	var tvl float64
	for _, pool := range snap.pools {
		tvl += snap.poolTVL(pool)
	}
	return tvl, nil
}

// PoolShares returns a pool's outstanding LP share supply.
func (s *Service) PoolShares(ctx context.Context, network domain.Network, poolAddress string) (*big.Int, error) {
	snap, err := s.snapshot(ctx, network)
	if err != nil {
		return nil, err
	}
	pool, err := snap.findPool(poolAddress)
	if err != nil {
		return nil, err
	}
	return pool.TotalShares, nil
}
