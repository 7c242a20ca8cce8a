package info

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/big"

	"github.com/soroswap/soroswap-analytics/pkg/domain"
)

// ErrPoolNotFound reports a pool absent from the discovered set. It is
// distinct from a zero price, which means "no direct pricing pool exists"
// and is valid data.
var ErrPoolNotFound = errors.New("info: liquidity pool not found")

// ErrNoUSDCPool reports that a token has no direct pool against the
// reference stablecoin.
var ErrNoUSDCPool = errors.New("info: no liquidity pool for token and USDC")

// snapshot is the reference data one aggregation request computes against.
// All methods are pure; two figures derived from the same snapshot never
// disagree on prices.
type snapshot struct {
	network domain.Network
	pools   []domain.Pool
	tokens  []domain.TokenType
	xlmUsd  float64
}

func (s snapshot) tokenDecimals(token string) int {
	return tokenData(s.tokens, token).DecimalsOrDefault()
}

// human converts a raw integer amount to display units. Floating point
// enters the pipeline only here, at the final conversion.
func human(amount *big.Int, decimals int) float64 {
	if amount == nil {
		return 0
	}
	f, _ := new(big.Float).SetInt(amount).Float64()
	return f / math.Pow10(decimals)
}

// priceInXLM prices a token through its direct pool against the wrapped
// native asset: the XLM-side reserve over the token-side reserve, both in
// display units. The anchor itself is identically 1; a token without a
// direct XLM pool prices at 0 rather than attempting multi-hop pricing.
func (s snapshot) priceInXLM(token string) float64 {
	xlm := domain.XLMToken[s.network].Contract
	if token == xlm {
		return 1
	}
	for _, pool := range s.pools {
		if !pool.PairsWith(token, xlm) {
			continue
		}
		return reserveRatio(pool, xlm, s.tokenDecimals(xlm), token, s.tokenDecimals(token))
	}
	return 0
}

// priceInUSD is priceInXLM scaled by the XLM/USD anchor. There is no
// independent USD computation path.
func (s snapshot) priceInUSD(token string) float64 {
	return s.priceInXLM(token) * s.xlmUsd
}

// reserveRatio returns the quote-side reserve over the base-side reserve of
// a pool, in display units. Zero when the base side is empty.
func reserveRatio(pool domain.Pool, quote string, quoteDecimals int, base string, baseDecimals int) float64 {
	quoteReserve, baseReserve := pool.Reserve0, pool.Reserve1
	if pool.Token0 == base {
		quoteReserve, baseReserve = pool.Reserve1, pool.Reserve0
	}
	baseHuman := human(baseReserve, baseDecimals)
	if baseHuman == 0 {
		return 0
	}
	return human(quoteReserve, quoteDecimals) / baseHuman
}

// TokenPriceInXLM prices a token in XLM against the current pool set.
func (s *Service) TokenPriceInXLM(ctx context.Context, network domain.Network, token string) (float64, error) {
	snap, err := s.snapshot(ctx, network)
	if err != nil {
		return 0, err
	}
	return snap.priceInXLM(token), nil
}

// TokenPriceInUSDC prices a token through its direct pool against the
// reference stablecoin. Unlike XLM pricing there is no zero fallback; the
// absence of a USDC pool is an error.
func (s *Service) TokenPriceInUSDC(ctx context.Context, network domain.Network, token string) (float64, error) {
	snap, err := s.snapshot(ctx, network)
	if err != nil {
		return 0, err
	}

	var usdc string
	for _, t := range snap.tokens {
		if t.Code == domain.USDCode {
			usdc = t.Contract
			break
		}
	}
	if usdc == "" {
		return 0, fmt.Errorf("info: token list for %s carries no %s entry", network, domain.USDCode)
	}

	for _, pool := range snap.pools {
		if !pool.PairsWith(token, usdc) {
			continue
		}
		return reserveRatio(pool, usdc, snap.tokenDecimals(usdc), token, snap.tokenDecimals(token)), nil
	}
	return 0, fmt.Errorf("%w: token %s", ErrNoUSDCPool, token)
}

// TokenPriceInUSD prices a token in USD through the XLM anchor.
func (s *Service) TokenPriceInUSD(ctx context.Context, network domain.Network, token string) (float64, error) {
	snap, err := s.snapshot(ctx, network)
	if err != nil {
		return 0, err
	}
	return snap.priceInUSD(token), nil
}
