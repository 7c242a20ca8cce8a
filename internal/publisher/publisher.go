// Package publisher runs the periodic discovery refresh and pushes pool
// snapshots to NATS subjects when a broker is configured.
package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/soroswap/soroswap-analytics/internal/metrics"
	"github.com/soroswap/soroswap-analytics/pkg/domain"
)

// PoolProvider is the slice of the discovery service the publisher refreshes
// through. Reading the pool set also reconciles the subscription registry.
type PoolProvider interface {
	AllPools(ctx context.Context, network domain.Network, protocols []domain.Protocol) ([]domain.Pool, error)
}

// Snapshot is one published pool-state message.
type Snapshot struct {
	Network   domain.Network `json:"network"`
	Timestamp time.Time      `json:"timestamp"`
	Pools     []domain.Pool  `json:"pools"`
}

type Publisher struct {
	nc       *nats.Conn
	prefix   string
	pools    PoolProvider
	networks []domain.Network
	interval time.Duration
	m        *metrics.Metrics
	logger   *slog.Logger
}

// New connects to the broker when a URL is given. An empty URL degrades to
// refresh-only mode: discovery still runs on the interval, nothing is
// published.
func New(natsURL, prefix string, pools PoolProvider, networks []domain.Network, interval time.Duration, m *metrics.Metrics, logger *slog.Logger) (*Publisher, error) {
	var nc *nats.Conn
	if natsURL != "" {
		var err error
		nc, err = nats.Connect(natsURL)
		if err != nil {
			return nil, fmt.Errorf("publisher: connecting to NATS: %w", err)
		}
	}
	return &Publisher{
		nc:       nc,
		prefix:   prefix,
		pools:    pools,
		networks: networks,
		interval: interval,
		m:        m,
		logger:   logger,
	}, nil
}

func (p *Publisher) subject(network domain.Network) string {
	return fmt.Sprintf("%s.pools.%s", p.prefix, strings.ToLower(string(network)))
}

// Run refreshes every network once immediately and then on the interval,
// until the context is cancelled.
func (p *Publisher) Run(ctx context.Context) error {
	p.refreshAll(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			p.refreshAll(ctx)
		}
	}
}

// refreshAll runs discovery per network. One network's failure does not
// block the others.
func (p *Publisher) refreshAll(ctx context.Context) {
	for _, network := range p.networks {
		p.m.SyncRuns.Inc()
		if err := p.refresh(ctx, network); err != nil {
			p.m.SyncFailures.Inc()
			p.logger.Error("Refresh failed", "network", string(network), "err", err)
		}
	}
}

func (p *Publisher) refresh(ctx context.Context, network domain.Network) error {
	pools, err := p.pools.AllPools(ctx, network, nil)
	if err != nil {
		return err
	}
	p.m.PoolsTracked.WithLabelValues(string(network)).Set(float64(len(pools)))
	p.logger.Info("Refreshed pools", "network", string(network), "count", len(pools))

	if p.nc == nil {
		return nil
	}

	raw, err := json.Marshal(Snapshot{
		Network:   network,
		Timestamp: time.Now().UTC(),
		Pools:     pools,
	})
	if err != nil {
		return fmt.Errorf("publisher: encoding snapshot: %w", err)
	}
	if err := p.nc.Publish(p.subject(network), raw); err != nil {
		return fmt.Errorf("publisher: publishing to %s: %w", p.subject(network), err)
	}
	p.m.SnapshotsPublished.Inc()
	return nil
}

func (p *Publisher) Close() {
	if p.nc != nil {
		p.nc.Drain()
	}
}
