package info

import (
	"context"
	"fmt"
	"sort"

	"golang.org/x/exp/maps"

	"github.com/soroswap/soroswap-analytics/pkg/domain"
)

// ChartPoint is one day of a time series.
type ChartPoint struct {
	Date  string  `json:"date"`
	Value float64 `json:"value"`
}

func entryTimestamp(e domain.PoolEntry) int64 { return e.Timestamp }

func eventTimestamp(e domain.Event) int64 { return e.Meta().CloseTime.Unix() }

// entryTVL values one historical pool state with current prices. Charts
// track reserve movement, not historical price movement.
func (s snapshot) entryTVL(entry domain.PoolEntry) float64 {
	return s.sideTVL(entry.Token0, entry.Reserve0) + s.sideTVL(entry.Token1, entry.Reserve1)
}

// sortedPoints flattens a date-keyed accumulator into an ascending series.
func sortedPoints(data map[string]float64) []ChartPoint {
	dates := maps.Keys(data)
	sort.Strings(dates)
	points := make([]ChartPoint, len(dates))
	for i, date := range dates {
		points[i] = ChartPoint{Date: date, Value: data[date]}
	}
	return points
}

// PoolTVLChart charts one pool's TVL by day, valuing each day's last known
// reserves.
func (s *Service) PoolTVLChart(ctx context.Context, network domain.Network, poolAddress string) ([]ChartPoint, error) {
	pools, err := s.pools.PoolsWithEntries(ctx, network)
	if err != nil {
		return nil, err
	}
	snap, err := s.snapshot(ctx, network)
	if err != nil {
		return nil, err
	}

	for _, pool := range pools {
		if pool.ContractID != poolAddress {
			continue
		}
		days := domain.GroupByDay(pool.Entries, entryTimestamp)
		points := make([]ChartPoint, len(days))
		for i, day := range days {
			points[i] = ChartPoint{Date: day.Date, Value: snap.entryTVL(day.LastEntry)}
		}
		return points, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrPoolNotFound, poolAddress)
}

// ProtocolTVLChart charts the whole protocol's TVL by day, summing each
// pool's last known state per day.
func (s *Service) ProtocolTVLChart(ctx context.Context, network domain.Network) ([]ChartPoint, error) {
	pools, err := s.pools.PoolsWithEntries(ctx, network)
	if err != nil {
		return nil, err
	}
	snap, err := s.snapshot(ctx, network)
	if err != nil {
		return nil, err
	}

	data := map[string]float64{}
	for _, pool := range pools {
		for _, day := range domain.GroupByDay(pool.Entries, entryTimestamp) {
			data[day.Date] += snap.entryTVL(day.LastEntry)
		}
	}
	return sortedPoints(data), nil
}

// TokenTVLChart charts the token's one-sided TVL by day across every pool
// holding it.
func (s *Service) TokenTVLChart(ctx context.Context, network domain.Network, token string) ([]ChartPoint, error) {
	pools, err := s.pools.PoolsWithEntries(ctx, network)
	if err != nil {
		return nil, err
	}
	snap, err := s.snapshot(ctx, network)
	if err != nil {
		return nil, err
	}

	price := snap.priceInUSD(token)
	decimals := snap.tokenDecimals(token)

	found := false
	data := map[string]float64{}
	for _, pool := range pools {
		if !pool.HasToken(token) {
			continue
		}
		found = true
		for _, day := range domain.GroupByDay(pool.Entries, entryTimestamp) {
			switch token {
			case day.LastEntry.Token0:
				data[day.Date] += human(day.LastEntry.Reserve0, decimals) * price
			case day.LastEntry.Token1:
				data[day.Date] += human(day.LastEntry.Reserve1, decimals) * price
			}
		}
	}
	if !found {
		return nil, fmt.Errorf("%w: no pool holds token %s", ErrPoolNotFound, token)
	}
	return sortedPoints(data), nil
}

// TokenPriceChart charts the token's USD price by day, derived from the
// day's last known reserves of its XLM pool and the current anchor price.
func (s *Service) TokenPriceChart(ctx context.Context, network domain.Network, token string) ([]ChartPoint, error) {
	pools, err := s.pools.PoolsWithEntries(ctx, network)
	if err != nil {
		return nil, err
	}
	snap, err := s.snapshot(ctx, network)
	if err != nil {
		return nil, err
	}

	xlm := domain.XLMToken[network].Contract
	xlmDecimals := snap.tokenDecimals(xlm)
	tokenDecimals := snap.tokenDecimals(token)

	for _, pool := range pools {
		if !pool.PairsWith(token, xlm) {
			continue
		}
		days := domain.GroupByDay(pool.Entries, entryTimestamp)
		points := make([]ChartPoint, len(days))
		for i, day := range days {
			entry := day.LastEntry
			asPool := domain.Pool{
				Token0:   entry.Token0,
				Token1:   entry.Token1,
				Reserve0: entry.Reserve0,
				Reserve1: entry.Reserve1,
			}
			ratio := reserveRatio(asPool, xlm, xlmDecimals, token, tokenDecimals)
			points[i] = ChartPoint{Date: day.Date, Value: ratio * snap.xlmUsd}
		}
		return points, nil
	}
	return nil, fmt.Errorf("%w: no XLM pool for token %s", ErrPoolNotFound, token)
}

// eventChart groups router events by day and maps each bucket through the
// given per-event contribution.
func (s *Service) eventChart(ctx context.Context, network domain.Network, contribution func(snapshot, domain.Event) float64) ([]ChartPoint, error) {
	snap, err := s.snapshot(ctx, network)
	if err != nil {
		return nil, err
	}
	events, err := s.routerEvents(ctx, network)
	if err != nil {
		return nil, err
	}

	days := domain.GroupByDay(events, eventTimestamp)
	points := make([]ChartPoint, len(days))
	for i, day := range days {
		var total float64
		for _, event := range day.AllEntries {
			total += contribution(snap, event)
		}
		points[i] = ChartPoint{Date: day.Date, Value: total}
	}
	return points, nil
}

// ProtocolVolumeChart charts total USD volume by day.
func (s *Service) ProtocolVolumeChart(ctx context.Context, network domain.Network) ([]ChartPoint, error) {
	return s.eventChart(ctx, network, func(snap snapshot, event domain.Event) float64 {
		return snap.volumeFromEvent(event)
	})
}

// TokenVolumeChart charts one token's USD volume by day.
func (s *Service) TokenVolumeChart(ctx context.Context, network domain.Network, token string) ([]ChartPoint, error) {
	return s.eventChart(ctx, network, func(snap snapshot, event domain.Event) float64 {
		return snap.tokenVolumeFromEvent(event, token)
	})
}

// PoolVolumeChart charts one pool's USD volume by day.
func (s *Service) PoolVolumeChart(ctx context.Context, network domain.Network, poolAddress string) ([]ChartPoint, error) {
	snap, err := s.snapshot(ctx, network)
	if err != nil {
		return nil, err
	}
	pool, err := snap.findPool(poolAddress)
	if err != nil {
		return nil, err
	}
	return s.eventChart(ctx, network, func(snap snapshot, event domain.Event) float64 {
		return snap.poolVolumeFromEvent(event, pool)
	})
}

// ProtocolFeesChart charts total USD fees by day.
func (s *Service) ProtocolFeesChart(ctx context.Context, network domain.Network) ([]ChartPoint, error) {
	return s.eventChart(ctx, network, func(snap snapshot, event domain.Event) float64 {
		return snap.feeUSD(event)
	})
}

// PoolFeesChart charts one pool's USD fees by day.
func (s *Service) PoolFeesChart(ctx context.Context, network domain.Network, poolAddress string) ([]ChartPoint, error) {
	snap, err := s.snapshot(ctx, network)
	if err != nil {
		return nil, err
	}
	if _, err := snap.findPool(poolAddress); err != nil {
		return nil, err
	}
	return s.eventChart(ctx, network, func(snap snapshot, event domain.Event) float64 {
		if event.Meta().PairAddress != poolAddress {
			return 0
		}
		return snap.feeUSD(event)
	})
}
