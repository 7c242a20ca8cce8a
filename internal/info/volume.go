package info

import (
	"context"
	"time"

	"github.com/soroswap/soroswap-analytics/pkg/domain"
)

// volumeFromEvent values one event's moved amounts in USD. Swaps count
// every hop's leg: the figure measures total notional moved through the
// AMM, not net user-facing volume.
func (s snapshot) volumeFromEvent(event domain.Event) float64 {
	switch e := event.(type) {
	case domain.AddEvent:
		return s.sideTVL(e.TokenA, e.AmountA) + s.sideTVL(e.TokenB, e.AmountB)
	case domain.RemoveEvent:
		return s.sideTVL(e.TokenA, e.AmountA) + s.sideTVL(e.TokenB, e.AmountB)
	case domain.SwapEvent:
		var volume float64
		for i, token := range e.Path {
			volume += s.sideTVL(token, e.Amounts[i])
		}
		return volume
	}
	return 0
}

// tokenVolumeFromEvent values only the legs denominated in the given token.
func (s snapshot) tokenVolumeFromEvent(event domain.Event, token string) float64 {
	switch e := event.(type) {
	case domain.AddEvent:
		if e.TokenA == token {
			return s.sideTVL(e.TokenA, e.AmountA)
		}
		if e.TokenB == token {
			return s.sideTVL(e.TokenB, e.AmountB)
		}
	case domain.RemoveEvent:
		if e.TokenA == token {
			return s.sideTVL(e.TokenA, e.AmountA)
		}
		if e.TokenB == token {
			return s.sideTVL(e.TokenB, e.AmountB)
		}
	case domain.SwapEvent:
		var volume float64
		for i, hop := range e.Path {
			if hop == token {
				volume += s.sideTVL(hop, e.Amounts[i])
			}
		}
		return volume
	}
	return 0
}

// poolVolumeFromEvent values the part of one event attributable to a single
// pool. The explicit pair tag wins when the event carries one; otherwise
// liquidity events match on the token pair and swap hops match on the pair
// of tokens they exchange, contributing both legs of a matching hop.
func (s snapshot) poolVolumeFromEvent(event domain.Event, pool domain.Pool) float64 {
	if tag := event.Meta().PairAddress; tag != "" {
		if tag != pool.ContractID {
			return 0
		}
		return s.volumeFromEvent(event)
	}

	switch e := event.(type) {
	case domain.AddEvent:
		if !pool.PairsWith(e.TokenA, e.TokenB) {
			return 0
		}
		return s.volumeFromEvent(event)
	case domain.RemoveEvent:
		if !pool.PairsWith(e.TokenA, e.TokenB) {
			return 0
		}
		return s.volumeFromEvent(event)
	case domain.SwapEvent:
		var volume float64
		for i := 0; i+1 < len(e.Path); i++ {
			if !pool.PairsWith(e.Path[i], e.Path[i+1]) {
				continue
			}
			volume += s.sideTVL(e.Path[i], e.Amounts[i])
			volume += s.sideTVL(e.Path[i+1], e.Amounts[i+1])
		}
		return volume
	}
	return 0
}

// windowStart computes the trailing-window threshold once per aggregation.
// An event contributes when its close time falls strictly after it.
func (s *Service) windowStart(days int) time.Time {
	return s.now().Add(-time.Duration(days) * 24 * time.Hour)
}

func (s *Service) windowedVolume(snap snapshot, events []domain.Event, days int) float64 {
	cutoff := s.windowStart(days)
	var volume float64
	for _, event := range events {
		if event.Meta().CloseTime.After(cutoff) {
			volume += snap.volumeFromEvent(event)
		}
	}
	return volume
}

func (s *Service) windowedTokenVolume(snap snapshot, events []domain.Event, token string, days int) float64 {
	cutoff := s.windowStart(days)
	var volume float64
	for _, event := range events {
		if event.Meta().CloseTime.After(cutoff) {
			volume += snap.tokenVolumeFromEvent(event, token)
		}
	}
	return volume
}

func (s *Service) windowedPoolVolume(snap snapshot, events []domain.Event, pool domain.Pool, days int) float64 {
	cutoff := s.windowStart(days)
	var volume float64
	for _, event := range events {
		if event.Meta().CloseTime.After(cutoff) {
			volume += snap.poolVolumeFromEvent(event, pool)
		}
	}
	return volume
}

// ProtocolVolume sums the USD volume of every router event inside the
// trailing window.
func (s *Service) ProtocolVolume(ctx context.Context, network domain.Network, days int) (float64, error) {
	snap, err := s.snapshot(ctx, network)
	if err != nil {
		return 0, err
	}
	events, err := s.routerEvents(ctx, network)
	if err != nil {
		return 0, err
	}
	return s.windowedVolume(snap, events, days), nil
}

// TokenVolume sums the token's legs of every router event inside the
// trailing window.
func (s *Service) TokenVolume(ctx context.Context, network domain.Network, token string, days int) (float64, error) {
	snap, err := s.snapshot(ctx, network)
	if err != nil {
		return 0, err
	}
	events, err := s.routerEvents(ctx, network)
	if err != nil {
		return 0, err
	}
	return s.windowedTokenVolume(snap, events, token, days), nil
}

// PoolVolume sums the pool's share of every router event inside the
// trailing window.
func (s *Service) PoolVolume(ctx context.Context, network domain.Network, poolAddress string, days int) (float64, error) {
	snap, err := s.snapshot(ctx, network)
	if err != nil {
		return 0, err
	}
	pool, err := snap.findPool(poolAddress)
	if err != nil {
		return 0, err
	}
	events, err := s.routerEvents(ctx, network)
	if err != nil {
		return 0, err
	}
	return s.windowedPoolVolume(snap, events, pool, days), nil
}
