// Package oracle fetches the XLM/USD reference price. Every USD figure the
// aggregator produces is anchored on this single number.
package oracle

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// PriceSource returns the current XLM price in USD.
type PriceSource interface {
	XLMPriceUSD(ctx context.Context) (float64, error)
}

const defaultEndpoint = "https://api.coingecko.com/api/v3/simple/price?ids=stellar&vs_currencies=usd"

// Coingecko queries the public simple-price endpoint.
type Coingecko struct {
	endpoint string
	http     *http.Client
}

var _ PriceSource = (*Coingecko)(nil)

func NewCoingecko() *Coingecko {
	return &Coingecko{
		endpoint: defaultEndpoint,
		http:     &http.Client{Timeout: 10 * time.Second},
	}
}

// NewCoingeckoWithEndpoint overrides the endpoint, for tests and mirrors.
func NewCoingeckoWithEndpoint(endpoint string) *Coingecko {
	c := NewCoingecko()
	c.endpoint = endpoint
	return c
}

func (c *Coingecko) XLMPriceUSD(ctx context.Context) (float64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint, nil)
	if err != nil {
		return 0, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("oracle: fetching XLM price: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("oracle: unexpected status %d", resp.StatusCode)
	}

	var parsed struct {
		Stellar struct {
			USD float64 `json:"usd"`
		} `json:"stellar"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return 0, fmt.Errorf("oracle: decoding XLM price: %w", err)
	}
	if parsed.Stellar.USD <= 0 {
		return 0, fmt.Errorf("oracle: non-positive XLM price %f", parsed.Stellar.USD)
	}
	return parsed.Stellar.USD, nil
}
