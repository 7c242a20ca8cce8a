// Package info is the aggregation core: it prices tokens through the XLM
// anchor and derives USD TVL, volume and fee figures from pool state and
// router events, point-in-time or day-bucketed.
package info

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/soroswap/soroswap-analytics/internal/cache"
	"github.com/soroswap/soroswap-analytics/internal/mercury"
	"github.com/soroswap/soroswap-analytics/internal/oracle"
	"github.com/soroswap/soroswap-analytics/internal/pairs"
	"github.com/soroswap/soroswap-analytics/pkg/domain"
	"github.com/soroswap/soroswap-analytics/pkg/repository"
)

// PoolSource is the slice of the discovery service the aggregator reads
// pool state through.
type PoolSource interface {
	AllPools(ctx context.Context, network domain.Network, protocols []domain.Protocol) ([]domain.Pool, error)
	PoolsWithEntries(ctx context.Context, network domain.Network) ([]domain.PoolWithEntries, error)
}

var _ PoolSource = (*pairs.Service)(nil)

// EventFeed is the slice of the indexer client the aggregator reads
// contract events through.
type EventFeed interface {
	ContractEvents(ctx context.Context, contractID string) ([]mercury.EventNode, error)
}

var _ EventFeed = (*mercury.Client)(nil)

const defaultTokenListURL = "https://raw.githubusercontent.com/soroswap/token-list/main/tokenList.json"

// xlmPriceStaleness is how old the persisted XLM/USD price may get before a
// fresh oracle read is attempted.
const xlmPriceStaleness = time.Minute

type Service struct {
	pools        PoolSource
	feeds        map[domain.Network]EventFeed
	repo         repository.Repository
	prices       oracle.PriceSource
	cache        cache.Cache
	http         *http.Client
	logger       *slog.Logger
	routers      map[domain.Network]string
	tokenListURL string
	now          func() time.Time
}

func NewService(pools PoolSource, feeds map[domain.Network]EventFeed, repo repository.Repository, prices oracle.PriceSource, kv cache.Cache, routers map[domain.Network]string, logger *slog.Logger) *Service {
	if routers == nil {
		routers = domain.SoroswapRouter
	}
	return &Service{
		pools:        pools,
		feeds:        feeds,
		repo:         repo,
		prices:       prices,
		cache:        kv,
		http:         &http.Client{Timeout: 15 * time.Second},
		logger:       logger,
		routers:      routers,
		tokenListURL: defaultTokenListURL,
		now:          time.Now,
	}
}

// XlmValue returns the XLM/USD reference price. The persisted value is
// served while fresh; past the staleness bound the oracle is retried and a
// failure degrades to the last persisted value instead of erroring.
func (s *Service) XlmValue(ctx context.Context) (float64, error) {
	row, ok := s.repo.LatestXlmPrice()
	if !ok {
		price, err := s.prices.XLMPriceUSD(ctx)
		if err != nil {
			return 0, fmt.Errorf("info: no persisted XLM price and oracle failed: %w", err)
		}
		s.saveXlmPrice(price)
		return price, nil
	}

	if s.now().Sub(row.UpdatedAt) <= xlmPriceStaleness {
		return row.Price, nil
	}

	price, err := s.prices.XLMPriceUSD(ctx)
	if err != nil {
		s.logger.Warn("Oracle unavailable, serving stale XLM price", "err", err, "updatedAt", row.UpdatedAt)
		return row.Price, nil
	}
	s.saveXlmPrice(price)
	return price, nil
}

func (s *Service) saveXlmPrice(price float64) {
	if err := s.repo.SaveXlmPrice(repository.XlmUsdPrice{Price: price, UpdatedAt: s.now()}); err != nil {
		s.logger.Error("Failed persisting XLM price", "err", err)
	}
}

func tokensListCacheKey(network domain.Network) string {
	return fmt.Sprintf("TOKENS-LIST-%s", network)
}

// TokensList returns the curated token list with the wrapped native asset
// prepended. Only mainnet has a published list; other networks carry just
// the XLM anchor.
func (s *Service) TokensList(ctx context.Context, network domain.Network) ([]domain.TokenType, error) {
	key := tokensListCacheKey(network)

	var cached []domain.TokenType
	if err := s.cache.Get(ctx, key, &cached); err == nil {
		return cached, nil
	}

	tokens := []domain.TokenType{domain.XLMToken[network]}
	if network == domain.NetworkMainnet {
		listed, err := s.fetchTokenList(ctx)
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, listed...)
	}

	if err := s.cache.Set(ctx, key, tokens, cache.OneHour); err != nil {
		s.logger.Error("Failed caching token list", "network", string(network), "err", err)
	}
	return tokens, nil
}

func (s *Service) fetchTokenList(ctx context.Context) ([]domain.TokenType, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.tokenListURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("info: fetching token list: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("info: token list returned status %d", resp.StatusCode)
	}

	var parsed struct {
		Assets []domain.TokenType `json:"assets"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("info: decoding token list: %w", err)
	}
	return parsed.Assets, nil
}

// TokenData resolves a contract to its token list entry. Unlisted tokens get
// a synthesized entry so aggregation never stops on an unknown asset.
func (s *Service) TokenData(ctx context.Context, network domain.Network, token string) (domain.TokenType, error) {
	tokens, err := s.TokensList(ctx, network)
	if err != nil {
		return domain.TokenType{}, err
	}
	return tokenData(tokens, token), nil
}

func tokenData(tokens []domain.TokenType, token string) domain.TokenType {
	for _, t := range tokens {
		if t.Contract == token {
			return t
		}
	}
	return domain.TokenType{Code: token, Name: token, Contract: token}
}

// routerEvents fetches and parses the router's event stream. Rows that fail
// to decode are skipped; the stream occasionally carries events from
// contract versions this parser does not know.
func (s *Service) routerEvents(ctx context.Context, network domain.Network) ([]domain.Event, error) {
	feed, ok := s.feeds[network]
	if !ok {
		return nil, fmt.Errorf("info: no feed configured for network %s", network)
	}
	router, ok := s.routers[network]
	if !ok {
		return nil, fmt.Errorf("info: no router address for network %s", network)
	}

	nodes, err := feed.ContractEvents(ctx, router)
	if err != nil {
		return nil, err
	}

	events := make([]domain.Event, 0, len(nodes))
	for _, node := range nodes {
		event, err := ParseEvent(node)
		if err != nil {
			s.logger.Error("Skipping unparseable event", "network", string(network), "contractId", node.ContractID, "err", err)
			continue
		}
		events = append(events, event)
	}
	return events, nil
}

// snapshot gathers the reference data one aggregation request computes
// against: current pool set, token list and the XLM/USD anchor, fetched
// concurrently. Every figure derived from one snapshot is internally
// consistent. A failure here fails the request; there is no meaningful
// partial answer without the base data.
func (s *Service) snapshot(ctx context.Context, network domain.Network) (snapshot, error) {
	snap := snapshot{network: network}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		pools, err := s.pools.AllPools(ctx, network, nil)
		snap.pools = pools
		return err
	})
	g.Go(func() error {
		tokens, err := s.TokensList(ctx, network)
		snap.tokens = tokens
		return err
	})
	g.Go(func() error {
		xlmUsd, err := s.XlmValue(ctx)
		snap.xlmUsd = xlmUsd
		return err
	})
	if err := g.Wait(); err != nil {
		return snapshot{}, err
	}
	return snap, nil
}
