package info

import (
	"context"
	"fmt"
	"math/big"

	"github.com/soroswap/soroswap-analytics/internal/cache"
	"github.com/soroswap/soroswap-analytics/pkg/domain"
)

// lpFeeRate is the share of swap volume a pool retains for its liquidity
// providers.
const lpFeeRate = 0.003

// APY annualizes the liquidity providers' fee take of the trailing 24 hours
// against the pool's share supply, as a percentage. A pool with no shares
// yields zero.
func APY(volume24h float64, shares *big.Int) float64 {
	supply := human(shares, domain.DefaultDecimals)
	if supply == 0 {
		return 0
	}
	return volume24h * lpFeeRate * 365 / supply * 100
}

// PoolInfo is the assembled per-pool report.
type PoolInfo struct {
	Pool       string           `json:"pool"`
	Token0     domain.TokenType `json:"token0"`
	Token1     domain.TokenType `json:"token1"`
	Reserve0   *big.Int         `json:"reserve0"`
	Reserve1   *big.Int         `json:"reserve1"`
	TVL        float64          `json:"tvl"`
	Volume24h  float64          `json:"volume24h"`
	Volume7d   float64          `json:"volume7d"`
	Fees24h    float64          `json:"fees24h"`
	FeesYearly float64          `json:"feesYearly"`
	Liquidity  *big.Int         `json:"liquidity"`
	APY        float64          `json:"apy"`
}

// TokenInfo is the assembled per-token report.
type TokenInfo struct {
	Asset     domain.TokenType `json:"asset"`
	Price     float64          `json:"price"`
	TVL       float64          `json:"tvl"`
	Volume24h float64          `json:"volume24h"`
	Volume7d  float64          `json:"volume7d"`
	Fees24h   float64          `json:"fees24h"`
}

// PoolOfToken is one pool listed under a token, with both sides resolved to
// token list entries.
type PoolOfToken struct {
	Pool     string           `json:"pool"`
	Token0   domain.TokenType `json:"token0"`
	Token1   domain.TokenType `json:"token1"`
	Reserve0 *big.Int         `json:"reserve0"`
	Reserve1 *big.Int         `json:"reserve1"`
}

func (s *Service) assemblePoolInfo(snap snapshot, events []domain.Event, pool domain.Pool) PoolInfo {
	volume24h := s.windowedPoolVolume(snap, events, pool, 1)
	fees24h := s.windowedPoolFees(snap, events, pool.ContractID, 1)
	return PoolInfo{
		Pool:       pool.ContractID,
		Token0:     tokenData(snap.tokens, pool.Token0),
		Token1:     tokenData(snap.tokens, pool.Token1),
		Reserve0:   pool.Reserve0,
		Reserve1:   pool.Reserve1,
		TVL:        snap.poolTVL(pool),
		Volume24h:  volume24h,
		Volume7d:   s.windowedPoolVolume(snap, events, pool, 7),
		Fees24h:    fees24h,
		FeesYearly: s.windowedPoolFees(snap, events, pool.ContractID, 365),
		Liquidity:  pool.TotalShares,
		APY:        APY(volume24h, pool.TotalShares),
	}
}

// PoolInfo assembles the full report for one pool.
func (s *Service) PoolInfo(ctx context.Context, network domain.Network, poolAddress string) (PoolInfo, error) {
	snap, err := s.snapshot(ctx, network)
	if err != nil {
		return PoolInfo{}, err
	}
	pool, err := snap.findPool(poolAddress)
	if err != nil {
		return PoolInfo{}, err
	}
	events, err := s.routerEvents(ctx, network)
	if err != nil {
		return PoolInfo{}, err
	}
	return s.assemblePoolInfo(snap, events, pool), nil
}

func poolsInfoCacheKey(network domain.Network) string {
	return fmt.Sprintf("POOLS-INFO-%s", network)
}

// PoolsInfo assembles the report for every discovered pool, served from the
// cache within its TTL.
func (s *Service) PoolsInfo(ctx context.Context, network domain.Network) ([]PoolInfo, error) {
	key := poolsInfoCacheKey(network)

	var cached []PoolInfo
	if err := s.cache.Get(ctx, key, &cached); err == nil {
		return cached, nil
	}

	snap, err := s.snapshot(ctx, network)
	if err != nil {
		return nil, err
	}
	events, err := s.routerEvents(ctx, network)
	if err != nil {
		return nil, err
	}

	infos := make([]PoolInfo, len(snap.pools))
	for i, pool := range snap.pools {
		infos[i] = s.assemblePoolInfo(snap, events, pool)
	}

	if err := s.cache.Set(ctx, key, infos, cache.FiveMinutes); err != nil {
		s.logger.Error("Failed caching pools info", "network", string(network), "err", err)
	}
	return infos, nil
}

func (s *Service) assembleTokenInfo(snap snapshot, events []domain.Event, token string) TokenInfo {
	var fees24h float64
	for _, pool := range snap.pools {
		if pool.HasToken(token) {
			fees24h += s.windowedPoolFees(snap, events, pool.ContractID, 1)
		}
	}
	return TokenInfo{
		Asset:     tokenData(snap.tokens, token),
		Price:     snap.priceInUSD(token),
		TVL:       snap.tokenTVL(token),
		Volume24h: s.windowedTokenVolume(snap, events, token, 1),
		Volume7d:  s.windowedTokenVolume(snap, events, token, 7),
		Fees24h:   fees24h,
	}
}

// TokenInfo assembles the full report for one token.
func (s *Service) TokenInfo(ctx context.Context, network domain.Network, token string) (TokenInfo, error) {
	snap, err := s.snapshot(ctx, network)
	if err != nil {
		return TokenInfo{}, err
	}
	events, err := s.routerEvents(ctx, network)
	if err != nil {
		return TokenInfo{}, err
	}
	return s.assembleTokenInfo(snap, events, token), nil
}

func tokensInfoCacheKey(network domain.Network) string {
	return fmt.Sprintf("TOKENS-INFO-%s", network)
}

// TokensInfo assembles the report for every listed token, served from the
// cache within its TTL.
func (s *Service) TokensInfo(ctx context.Context, network domain.Network) ([]TokenInfo, error) {
	key := tokensInfoCacheKey(network)

	var cached []TokenInfo
	if err := s.cache.Get(ctx, key, &cached); err == nil {
		return cached, nil
	}

	snap, err := s.snapshot(ctx, network)
	if err != nil {
		return nil, err
	}
	events, err := s.routerEvents(ctx, network)
	if err != nil {
		return nil, err
	}

	infos := make([]TokenInfo, len(snap.tokens))
	for i, token := range snap.tokens {
		infos[i] = s.assembleTokenInfo(snap, events, token.Contract)
	}

	if err := s.cache.Set(ctx, key, infos, cache.FiveMinutes); err != nil {
		s.logger.Error("Failed caching tokens info", "network", string(network), "err", err)
	}
	return infos, nil
}

// PoolsOfToken lists every pool holding the given token, with both sides
// resolved to token list entries.
func (s *Service) PoolsOfToken(ctx context.Context, network domain.Network, token string) ([]PoolOfToken, error) {
	snap, err := s.snapshot(ctx, network)
	if err != nil {
		return nil, err
	}

	var result []PoolOfToken
	for _, pool := range snap.pools {
		if !pool.HasToken(token) {
			continue
		}
		result = append(result, PoolOfToken{
			Pool:     pool.ContractID,
			Token0:   tokenData(snap.tokens, pool.Token0),
			Token1:   tokenData(snap.tokens, pool.Token1),
			Reserve0: pool.Reserve0,
			Reserve1: pool.Reserve1,
		})
	}
	return result, nil
}
