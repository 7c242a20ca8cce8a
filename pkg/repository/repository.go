package repository

import (
	"github.com/soroswap/soroswap-analytics/pkg/domain"
)

// Repository is the persistent subscription registry and reference price
// store. All writes are idempotent: a duplicate insert is a benign no-op,
// backed by uniqueness constraints at the store level.
type Repository interface {
	// SubscriptionExists reports whether the storage slot is already watched.
	SubscriptionExists(network domain.Network, contractID, keyXdr string) (bool, error)
	// SaveSubscription registers a watched storage slot. Inserting an already
	// registered slot is a no-op.
	SaveSubscription(sub Subscription) error
	// SubscriptionsByType returns all subscriptions matching the given
	// protocol, contract and storage type.
	SubscriptionsByType(network domain.Network, protocol domain.Protocol, contractType domain.ContractType, storageType domain.StorageType) ([]Subscription, error)
	// CountSubscriptions counts subscriptions for one contract matching the
	// given protocol, contract and storage type.
	CountSubscriptions(network domain.Network, contractID string, protocol domain.Protocol, contractType domain.ContractType, storageType domain.StorageType) (int64, error)
	// DeletePairSubscriptionsNotIn removes PAIR subscriptions whose contract
	// is absent from the canonical address set, returning the number removed.
	DeletePairSubscriptionsNotIn(network domain.Network, contractIDs []string) (int64, error)

	// EventSubscriptionExists reports whether the contract's event stream is
	// already watched.
	EventSubscriptionExists(network domain.Network, contractID string) (bool, error)
	// SaveEventSubscription registers a watched event stream. Duplicate
	// inserts are a no-op.
	SaveEventSubscription(sub EventSubscription) error

	// LatestXlmPrice returns the persisted XLM/USD reference price, if any.
	LatestXlmPrice() (XlmUsdPrice, bool)
	// SaveXlmPrice upserts the single XLM/USD reference price row.
	SaveXlmPrice(price XlmUsdPrice) error

	Close() error
}
