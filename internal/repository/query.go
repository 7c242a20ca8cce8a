package repository

import (
	_ "github.com/lib/pq"
	"github.com/soroswap/soroswap-analytics/pkg/domain"
	"github.com/soroswap/soroswap-analytics/pkg/repository"
)

func (r *Repository) SubscriptionExists(network domain.Network, contractID, keyXdr string) (bool, error) {
	var count int64
	result := r.dbCon.Model(&Subscription{}).
		Where("network = ? AND contract_id = ? AND key_xdr = ?", string(network), contractID, keyXdr).
		Count(&count)
	if result.Error != nil {
		r.logger.Error("Error counting subscriptions in DB", "err", result.Error)
		return false, result.Error
	}
	return count > 0, nil
}

func (r *Repository) SubscriptionsByType(network domain.Network, protocol domain.Protocol, contractType domain.ContractType, storageType domain.StorageType) ([]repository.Subscription, error) {
	var subs []Subscription
	result := r.dbCon.Model(&Subscription{}).
		Find(&subs, "network = ? AND protocol = ? AND contract_type = ? AND storage_type = ?",
			string(network), string(protocol), string(contractType), string(storageType))
	if result.Error != nil {
		r.logger.Error("Error fetching subscriptions from DB", "err", result.Error)
		return nil, result.Error
	}

	ret := make([]repository.Subscription, len(subs))
	for i, s := range subs {
		ret[i] = repository.Subscription{
			Network:      domain.Network(s.Network),
			Protocol:     domain.Protocol(s.Protocol),
			ContractType: domain.ContractType(s.ContractType),
			StorageType:  domain.StorageType(s.StorageType),
			ContractID:   s.ContractID,
			KeyXdr:       s.KeyXdr,
		}
	}

	return ret, nil
}

func (r *Repository) CountSubscriptions(network domain.Network, contractID string, protocol domain.Protocol, contractType domain.ContractType, storageType domain.StorageType) (int64, error) {
	var count int64
	result := r.dbCon.Model(&Subscription{}).
		Where("network = ? AND contract_id = ? AND protocol = ? AND contract_type = ? AND storage_type = ?",
			string(network), contractID, string(protocol), string(contractType), string(storageType)).
		Count(&count)
	if result.Error != nil {
		r.logger.Error("Error counting subscriptions in DB", "err", result.Error)
		return 0, result.Error
	}
	return count, nil
}

func (r *Repository) EventSubscriptionExists(network domain.Network, contractID string) (bool, error) {
	var count int64
	result := r.dbCon.Model(&EventSubscription{}).
		Where("network = ? AND contract_id = ?", string(network), contractID).
		Count(&count)
	if result.Error != nil {
		r.logger.Error("Error counting event subscriptions in DB", "err", result.Error)
		return false, result.Error
	}
	return count > 0, nil
}

func (r *Repository) LatestXlmPrice() (repository.XlmUsdPrice, bool) {
	var price XlmUsdPrice
	result := r.dbCon.Model(&XlmUsdPrice{}).Order("updated_at DESC").Limit(1).Find(&price)
	if result.Error != nil {
		r.logger.Error("Error fetching XLM price from DB", "err", result.Error)
	}
	if result.RowsAffected == 0 {
		return repository.XlmUsdPrice{}, false
	}
	return repository.XlmUsdPrice{
		Price:     price.Price,
		UpdatedAt: price.UpdatedAt,
	}, true
}
