package info

import (
	"fmt"
	"math/big"
	"time"

	"github.com/soroswap/soroswap-analytics/internal/mercury"
	"github.com/soroswap/soroswap-analytics/internal/scval"
	"github.com/soroswap/soroswap-analytics/pkg/domain"
)

// ParseEvent turns one raw feed event row into a typed contract event.
// The second topic names the action; pair contracts emit deposit/withdraw
// where the router emits add/remove, both normalize to the same kind.
func ParseEvent(node mercury.EventNode) (domain.Event, error) {
	kind, err := eventKind(node.Topic2)
	if err != nil {
		return nil, err
	}

	dataVal, err := scval.DecodeBase64(node.Data)
	if err != nil {
		return nil, fmt.Errorf("info: event data: %w", err)
	}
	data, err := scval.AsMap(dataVal)
	if err != nil {
		return nil, fmt.Errorf("info: event data: %w", err)
	}

	meta := domain.EventMeta{
		CloseTime: time.Unix(node.TxInfo.CloseTime(), 0).UTC(),
	}
	if node.TxInfo != nil {
		meta.FeeStroops = int64(node.TxInfo.Fee)
	}
	if pair, ok := data.Get("pair"); ok {
		addr, err := scval.AsAddress(pair)
		if err != nil {
			return nil, fmt.Errorf("info: event pair tag: %w", err)
		}
		meta.PairAddress = addr
	}

	switch kind {
	case domain.EventAdd, domain.EventRemove:
		return parseLiquidityEvent(kind, meta, data)
	case domain.EventSwap:
		return parseSwapEvent(meta, data)
	}
	return nil, fmt.Errorf("info: unhandled event kind %s", kind)
}

// eventKind decodes the second topic symbol and normalizes the
// protocol-specific vocabulary to the canonical add/remove/swap set.
func eventKind(topic2Xdr string) (domain.EventKind, error) {
	v, err := scval.DecodeBase64(topic2Xdr)
	if err != nil {
		return "", fmt.Errorf("info: event topic: %w", err)
	}
	topic, err := scval.AsString(v)
	if err != nil {
		return "", fmt.Errorf("info: event topic: %w", err)
	}
	switch topic {
	case "add", "deposit":
		return domain.EventAdd, nil
	case "remove", "withdraw":
		return domain.EventRemove, nil
	case "swap":
		return domain.EventSwap, nil
	}
	return "", fmt.Errorf("info: unknown event topic %q", topic)
}

func parseLiquidityEvent(kind domain.EventKind, meta domain.EventMeta, data scval.Map) (domain.Event, error) {
	tokenA, err := dataAddress(data, "token_a")
	if err != nil {
		return nil, err
	}
	tokenB, err := dataAddress(data, "token_b")
	if err != nil {
		return nil, err
	}
	amountA, err := dataAmount(data, "amount_a")
	if err != nil {
		return nil, err
	}
	amountB, err := dataAmount(data, "amount_b")
	if err != nil {
		return nil, err
	}
	liquidity, err := dataAmount(data, "liquidity")
	if err != nil {
		return nil, err
	}

	if kind == domain.EventRemove {
		return domain.RemoveEvent{
			EventMeta: meta,
			TokenA:    tokenA,
			TokenB:    tokenB,
			AmountA:   amountA,
			AmountB:   amountB,
			Liquidity: liquidity,
		}, nil
	}
	return domain.AddEvent{
		EventMeta: meta,
		TokenA:    tokenA,
		TokenB:    tokenB,
		AmountA:   amountA,
		AmountB:   amountB,
		Liquidity: liquidity,
	}, nil
}

func parseSwapEvent(meta domain.EventMeta, data scval.Map) (domain.Event, error) {
	pathVal, ok := data.Get("path")
	if !ok {
		return nil, fmt.Errorf("info: swap event missing path")
	}
	pathVec, err := scval.AsVec(pathVal)
	if err != nil {
		return nil, fmt.Errorf("info: swap path: %w", err)
	}
	amountsVal, ok := data.Get("amounts")
	if !ok {
		return nil, fmt.Errorf("info: swap event missing amounts")
	}
	amountsVec, err := scval.AsVec(amountsVal)
	if err != nil {
		return nil, fmt.Errorf("info: swap amounts: %w", err)
	}
	if len(pathVec) != len(amountsVec) {
		return nil, fmt.Errorf("info: swap path has %d hops but %d amounts", len(pathVec), len(amountsVec))
	}

	path := make([]string, len(pathVec))
	for i, elem := range pathVec {
		addr, err := scval.AsAddress(elem)
		if err != nil {
			return nil, fmt.Errorf("info: swap path hop %d: %w", i, err)
		}
		path[i] = addr
	}
	amounts := make([]*big.Int, len(amountsVec))
	for i, elem := range amountsVec {
		amount, err := scval.AsBigInt(elem)
		if err != nil {
			return nil, fmt.Errorf("info: swap amount %d: %w", i, err)
		}
		amounts[i] = amount
	}

	return domain.SwapEvent{
		EventMeta: meta,
		Path:      path,
		Amounts:   amounts,
	}, nil
}

func dataAddress(data scval.Map, key string) (string, error) {
	v, ok := data.Get(key)
	if !ok {
		return "", fmt.Errorf("info: event missing %s", key)
	}
	addr, err := scval.AsAddress(v)
	if err != nil {
		return "", fmt.Errorf("info: event %s: %w", key, err)
	}
	return addr, nil
}

func dataAmount(data scval.Map, key string) (*big.Int, error) {
	v, ok := data.Get(key)
	if !ok {
		return nil, fmt.Errorf("info: event missing %s", key)
	}
	amount, err := scval.AsBigInt(v)
	if err != nil {
		return nil, fmt.Errorf("info: event %s: %w", key, err)
	}
	return amount, nil
}
