package info

import (
	"context"

	"github.com/soroswap/soroswap-analytics/pkg/domain"
)

// stroopsPerXLM is the chain base unit scale; transaction fees arrive in
// stroops regardless of which tokens an event touched.
const stroopsPerXLM = 1e7

// feeUSD converts one event's transaction fee to USD through the anchor.
func (s snapshot) feeUSD(event domain.Event) float64 {
	return float64(event.Meta().FeeStroops) / stroopsPerXLM * s.xlmUsd
}

func (s *Service) windowedFees(snap snapshot, events []domain.Event, days int) float64 {
	cutoff := s.windowStart(days)
	var fees float64
	for _, event := range events {
		if event.Meta().CloseTime.After(cutoff) {
			fees += snap.feeUSD(event)
		}
	}
	return fees
}

// windowedPoolFees sums fees of the pool's own events. Only events carrying
// the pool's pair tag are attributable; an untagged event's fee cannot be
// assigned to one pool.
func (s *Service) windowedPoolFees(snap snapshot, events []domain.Event, poolAddress string, days int) float64 {
	cutoff := s.windowStart(days)
	var fees float64
	for _, event := range events {
		if event.Meta().PairAddress != poolAddress {
			continue
		}
		if event.Meta().CloseTime.After(cutoff) {
			fees += snap.feeUSD(event)
		}
	}
	return fees
}

// ProtocolFees sums the transaction fees of every router event inside the
// trailing window, in USD.
func (s *Service) ProtocolFees(ctx context.Context, network domain.Network, days int) (float64, error) {
	snap, err := s.snapshot(ctx, network)
	if err != nil {
		return 0, err
	}
	events, err := s.routerEvents(ctx, network)
	if err != nil {
		return 0, err
	}
	return s.windowedFees(snap, events, days), nil
}

// PoolFees sums the transaction fees of the pool's own events inside the
// trailing window, in USD.
func (s *Service) PoolFees(ctx context.Context, network domain.Network, poolAddress string, days int) (float64, error) {
	snap, err := s.snapshot(ctx, network)
	if err != nil {
		return 0, err
	}
	events, err := s.routerEvents(ctx, network)
	if err != nil {
		return 0, err
	}
	return s.windowedPoolFees(snap, events, poolAddress, days), nil
}
