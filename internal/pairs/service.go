// Package pairs discovers liquidity pools, keeps the subscription registry
// in sync with what each factory reports, and reconstructs pool state from
// the indexer feed.
package pairs

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/soroswap/soroswap-analytics/internal/cache"
	"github.com/soroswap/soroswap-analytics/internal/mercury"
	"github.com/soroswap/soroswap-analytics/pkg/domain"
	"github.com/soroswap/soroswap-analytics/pkg/repository"
)

// Feed is the slice of the indexer client the discovery service depends on.
type Feed interface {
	LastContractEntry(ctx context.Context, contractID, ledgerKey string) (mercury.EntryConnection, error)
	PairAddresses(ctx context.Context, factoryID string, ledgerKeys []string) (mercury.EntrySets, error)
	PairEntries(ctx context.Context, contractIDs []string) (mercury.EntrySets, error)
	SubscribeToLedgerEntries(ctx context.Context, sub mercury.LedgerEntrySubscription) error
	SubscribeToContractEvents(ctx context.Context, contractID string) error
}

var _ Feed = (*mercury.Client)(nil)

type Service struct {
	repo      repository.Repository
	feeds     map[domain.Network]Feed
	cache     cache.Cache
	logger    *slog.Logger
	factories map[domain.Network]string
}

func NewService(repo repository.Repository, feeds map[domain.Network]Feed, kv cache.Cache, factories map[domain.Network]string, logger *slog.Logger) *Service {
	if factories == nil {
		factories = domain.SoroswapFactory
	}
	return &Service{
		repo:      repo,
		feeds:     feeds,
		cache:     kv,
		logger:    logger,
		factories: factories,
	}
}

func (s *Service) feed(network domain.Network) (Feed, error) {
	f, ok := s.feeds[network]
	if !ok {
		return nil, fmt.Errorf("pairs: no feed configured for network %s", network)
	}
	return f, nil
}

func (s *Service) factory(network domain.Network) (string, error) {
	addr, ok := s.factories[network]
	if !ok {
		return "", fmt.Errorf("pairs: no factory address for network %s", network)
	}
	return addr, nil
}

// SoroswapPairsCountFromFeed reads the live pair counter out of the factory
// instance storage.
func (s *Service) SoroswapPairsCountFromFeed(ctx context.Context, network domain.Network) (int, error) {
	feed, err := s.feed(network)
	if err != nil {
		return 0, err
	}
	factory, err := s.factory(network)
	if err != nil {
		return 0, err
	}
	conn, err := feed.LastContractEntry(ctx, factory, InstanceStorageKeyXdr)
	if err != nil {
		return 0, err
	}
	if len(conn.Edges) == 0 {
		return 0, nil
	}
	return parseFactoryTotalPairs(conn.Edges[0].Node.ValueXdr)
}

// SoroswapPairsCountFromDB counts the factory slots the registry already
// watches. It lags the live counter exactly by the number of undiscovered
// pairs.
func (s *Service) SoroswapPairsCountFromDB(network domain.Network) (int, error) {
	factory, err := s.factory(network)
	if err != nil {
		return 0, err
	}
	count, err := s.repo.CountSubscriptions(network, factory, domain.ProtocolSoroswap, domain.ContractFactory, domain.StoragePersistent)
	if err != nil {
		return 0, err
	}
	return int(count), nil
}

// SubscribeFactory makes sure the factory's own instance storage is watched
// so the pair counter keeps flowing.
func (s *Service) SubscribeFactory(ctx context.Context, network domain.Network) error {
	factory, err := s.factory(network)
	if err != nil {
		return err
	}
	return s.subscribeEntry(ctx, network, repository.Subscription{
		Network:      network,
		Protocol:     domain.ProtocolSoroswap,
		ContractType: domain.ContractFactory,
		StorageType:  domain.StorageInstance,
		ContractID:   factory,
		KeyXdr:       InstanceStorageKeyXdr,
	}, false)
}

// SubscribePhoenixFactory registers a Phoenix factory. Its pair vector is
// re-read on every sync afterwards.
func (s *Service) SubscribePhoenixFactory(ctx context.Context, network domain.Network, contractID string) error {
	if err := s.subscribeEntry(ctx, network, repository.Subscription{
		Network:      network,
		Protocol:     domain.ProtocolPhoenix,
		ContractType: domain.ContractFactory,
		StorageType:  domain.StorageInstance,
		ContractID:   contractID,
		KeyXdr:       InstanceStorageKeyXdr,
	}, false); err != nil {
		return err
	}
	return s.subscribeEntry(ctx, network, repository.Subscription{
		Network:      network,
		Protocol:     domain.ProtocolPhoenix,
		ContractType: domain.ContractFactory,
		StorageType:  domain.StoragePersistent,
		ContractID:   contractID,
		KeyXdr:       PhoenixLpVecKeyXdr,
	}, false)
}

// subscribeFactorySlots watches factory vector slots [first, last) so the
// feed starts indexing the addresses stored there.
func (s *Service) subscribeFactorySlots(ctx context.Context, network domain.Network, first, last int) error {
	factory, err := s.factory(network)
	if err != nil {
		return err
	}
	for i := first; i < last; i++ {
		key, err := PairIndexKey(i)
		if err != nil {
			return err
		}
		if err := s.subscribeEntry(ctx, network, repository.Subscription{
			Network:      network,
			Protocol:     domain.ProtocolSoroswap,
			ContractType: domain.ContractFactory,
			StorageType:  domain.StoragePersistent,
			ContractID:   factory,
			KeyXdr:       key,
		}, false); err != nil {
			return fmt.Errorf("pairs: factory slot %d: %w", i, err)
		}
		s.logger.Info("Subscribed to pair index", "network", string(network), "index", i)
	}
	return nil
}

// subscribeEntry registers one ledger entry subscription, feed first and
// registry second. A crash in between leaves a feed subscription the
// registry retries next sync; the reverse order would lose entries.
func (s *Service) subscribeEntry(ctx context.Context, network domain.Network, sub repository.Subscription, hydrate bool) error {
	exists, err := s.repo.SubscriptionExists(network, sub.ContractID, sub.KeyXdr)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	feed, err := s.feed(network)
	if err != nil {
		return err
	}
	if err := feed.SubscribeToLedgerEntries(ctx, mercury.LedgerEntrySubscription{
		ContractID: sub.ContractID,
		KeyXdr:     sub.KeyXdr,
		Durability: "persistent",
		Hydrate:    hydrate,
	}); err != nil {
		return err
	}
	return s.repo.SaveSubscription(sub)
}

// subscribePair watches a pair's instance storage and its event stream.
func (s *Service) subscribePair(ctx context.Context, network domain.Network, protocol domain.Protocol, contractID string, hydrate bool) error {
	if err := s.subscribeEntry(ctx, network, repository.Subscription{
		Network:      network,
		Protocol:     protocol,
		ContractType: domain.ContractPair,
		StorageType:  domain.StorageInstance,
		ContractID:   contractID,
		KeyXdr:       InstanceStorageKeyXdr,
	}, hydrate); err != nil {
		return err
	}

	exists, err := s.repo.EventSubscriptionExists(network, contractID)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	feed, err := s.feed(network)
	if err != nil {
		return err
	}
	if err := feed.SubscribeToContractEvents(ctx, contractID); err != nil {
		return err
	}
	if err := s.repo.SaveEventSubscription(repository.EventSubscription{
		Network:    network,
		ContractID: contractID,
	}); err != nil {
		return err
	}
	s.logger.Info("Subscribed to events of pair", "network", string(network), "contractId", contractID)
	return nil
}

// soroswapPairAddresses resolves the first count factory vector slots to
// pair contract addresses, preserving slot order.
func (s *Service) soroswapPairAddresses(ctx context.Context, network domain.Network, count int) ([]string, error) {
	if count <= 0 {
		return nil, nil
	}
	feed, err := s.feed(network)
	if err != nil {
		return nil, err
	}
	factory, err := s.factory(network)
	if err != nil {
		return nil, err
	}

	keys := make([]string, count)
	for i := range keys {
		key, err := PairIndexKey(i)
		if err != nil {
			return nil, err
		}
		keys[i] = key
	}
	sets, err := feed.PairAddresses(ctx, factory, keys)
	if err != nil {
		return nil, err
	}

	addresses := make([]string, 0, count)
	for i := 0; i < count; i++ {
		conn, ok := sets[fmt.Sprintf("pair%d", i)]
		if !ok || len(conn.Edges) == 0 {
			return nil, fmt.Errorf("pairs: factory slot %d missing from feed response", i)
		}
		addr, err := parsePairAddress(conn.Edges[0].Node.ValueXdr)
		if err != nil {
			return nil, fmt.Errorf("pairs: factory slot %d: %w", i, err)
		}
		addresses = append(addresses, addr)
	}
	return addresses, nil
}

// SyncSoroswapPairs reconciles the registry with the factory's pair counter
// and returns the canonical pair address list. New pairs get their factory
// slot, instance storage (hydrated) and event stream subscribed; the
// operation is idempotent and converges after transient failures.
func (s *Service) SyncSoroswapPairs(ctx context.Context, network domain.Network) ([]string, error) {
	newCounter, err := s.SoroswapPairsCountFromFeed(ctx, network)
	if err != nil {
		return nil, err
	}
	oldCounter, err := s.SoroswapPairsCountFromDB(network)
	if err != nil {
		return nil, err
	}

	if newCounter > oldCounter {
		s.logger.Info("New pairs found", "network", string(network), "known", oldCounter, "total", newCounter)
		if err := s.subscribeFactorySlots(ctx, network, oldCounter, newCounter); err != nil {
			return nil, err
		}
	}

	addresses, err := s.soroswapPairAddresses(ctx, network, newCounter)
	if err != nil {
		return nil, err
	}

	if newCounter > oldCounter && oldCounter < len(addresses) {
		for _, addr := range addresses[oldCounter:] {
			if err := s.subscribePair(ctx, network, domain.ProtocolSoroswap, addr, true); err != nil {
				return nil, err
			}
			s.logger.Info("Subscribed to pair", "network", string(network), "contractId", addr)
		}
	}
	return addresses, nil
}

// phoenixPairAddresses re-reads one Phoenix factory's pair vector.
func (s *Service) phoenixPairAddresses(ctx context.Context, network domain.Network, factoryID string) ([]string, error) {
	feed, err := s.feed(network)
	if err != nil {
		return nil, err
	}
	conn, err := feed.LastContractEntry(ctx, factoryID, PhoenixLpVecKeyXdr)
	if err != nil {
		return nil, err
	}
	if len(conn.Edges) == 0 {
		return nil, nil
	}
	return parsePhoenixLpVec(conn.Edges[0].Node.ValueXdr)
}

// SyncPhoenixPairs diffs every registered Phoenix factory's pair vector
// against the registry and subscribes what is new, returning the canonical
// Phoenix pair address list.
func (s *Service) SyncPhoenixPairs(ctx context.Context, network domain.Network) ([]string, error) {
	factories, err := s.repo.SubscriptionsByType(network, domain.ProtocolPhoenix, domain.ContractFactory, domain.StorageInstance)
	if err != nil {
		return nil, err
	}

	var all []string
	for _, factory := range factories {
		addresses, err := s.phoenixPairAddresses(ctx, network, factory.ContractID)
		if err != nil {
			return nil, fmt.Errorf("pairs: phoenix factory %s: %w", factory.ContractID, err)
		}
		for _, addr := range addresses {
			if err := s.subscribePair(ctx, network, domain.ProtocolPhoenix, addr, false); err != nil {
				return nil, err
			}
		}
		all = append(all, addresses...)
	}
	return all, nil
}

// pools fetches and parses the instance storage of the given pair contracts.
func (s *Service) pools(ctx context.Context, network domain.Network, protocol domain.Protocol, addresses []string, withEntries bool) ([]domain.PoolWithEntries, error) {
	if len(addresses) == 0 {
		return nil, nil
	}
	feed, err := s.feed(network)
	if err != nil {
		return nil, err
	}
	sets, err := feed.PairEntries(ctx, addresses)
	if err != nil {
		return nil, err
	}
	parsed := parsePools(sets, protocol, withEntries, func(alias string, err error) {
		s.logger.Error("Skipping unparseable pool entry", "network", string(network), "alias", alias, "err", err)
	})
	return parsed, nil
}

// AllSoroswapPools syncs discovery and returns every Soroswap pool's current
// state.
func (s *Service) AllSoroswapPools(ctx context.Context, network domain.Network, withEntries bool) ([]domain.PoolWithEntries, error) {
	addresses, err := s.SyncSoroswapPairs(ctx, network)
	if err != nil {
		return nil, err
	}
	return s.pools(ctx, network, domain.ProtocolSoroswap, addresses, withEntries)
}

// AllPhoenixPools syncs discovery and returns every Phoenix pool's current
// state.
func (s *Service) AllPhoenixPools(ctx context.Context, network domain.Network) ([]domain.PoolWithEntries, error) {
	addresses, err := s.SyncPhoenixPairs(ctx, network)
	if err != nil {
		return nil, err
	}
	return s.pools(ctx, network, domain.ProtocolPhoenix, addresses, false)
}

func poolsCacheKey(network domain.Network, protocol domain.Protocol) string {
	return fmt.Sprintf("%s-%s-LIQUIDITY-POOLS", network, protocol)
}

// AllPools returns the current state of every pool of the requested
// protocols, served from the cache within its TTL. A nil protocol list
// means all protocols.
func (s *Service) AllPools(ctx context.Context, network domain.Network, protocols []domain.Protocol) ([]domain.Pool, error) {
	if len(protocols) == 0 {
		protocols = []domain.Protocol{domain.ProtocolSoroswap, domain.ProtocolPhoenix}
	}

	var all []domain.Pool
	for _, protocol := range protocols {
		key := poolsCacheKey(network, protocol)

		var cached []domain.Pool
		if err := s.cache.Get(ctx, key, &cached); err == nil {
			all = append(all, cached...)
			continue
		}

		var fetched []domain.PoolWithEntries
		var err error
		switch protocol {
		case domain.ProtocolSoroswap:
			fetched, err = s.AllSoroswapPools(ctx, network, false)
		case domain.ProtocolPhoenix:
			fetched, err = s.AllPhoenixPools(ctx, network)
		default:
			err = fmt.Errorf("pairs: unknown protocol %s", protocol)
		}
		if err != nil {
			return nil, err
		}

		pools := make([]domain.Pool, len(fetched))
		for i, p := range fetched {
			pools[i] = p.Pool
		}
		if err := s.cache.Set(ctx, key, pools, cache.OneMinute); err != nil {
			s.logger.Error("Failed caching pools", "network", string(network), "protocol", string(protocol), "err", err)
		}
		all = append(all, pools...)
	}
	return all, nil
}

// PoolsWithEntries returns every pool with its storage history attached,
// the raw material of the TVL and price charts. Phoenix pools carry no
// history; the feed indexes them forward only.
func (s *Service) PoolsWithEntries(ctx context.Context, network domain.Network) ([]domain.PoolWithEntries, error) {
	soroswap, err := s.AllSoroswapPools(ctx, network, true)
	if err != nil {
		return nil, err
	}
	phoenix, err := s.AllPhoenixPools(ctx, network)
	if err != nil {
		return nil, err
	}
	return append(soroswap, phoenix...), nil
}

// PruneRemovedPairs deletes PAIR subscriptions for contracts no factory
// reports anymore and returns how many were removed.
func (s *Service) PruneRemovedPairs(ctx context.Context, network domain.Network) (int64, error) {
	soroswap, err := s.SyncSoroswapPairs(ctx, network)
	if err != nil {
		return 0, err
	}
	phoenix, err := s.SyncPhoenixPairs(ctx, network)
	if err != nil {
		return 0, err
	}
	canonical := append(append([]string(nil), soroswap...), phoenix...)

	removed, err := s.repo.DeletePairSubscriptionsNotIn(network, canonical)
	if err != nil {
		return 0, err
	}
	if removed > 0 {
		s.logger.Info("Pruned removed pairs", "network", string(network), "count", removed)
	}
	return removed, nil
}
