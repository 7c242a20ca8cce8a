package repository

import (
	_ "github.com/lib/pq"
	"github.com/soroswap/soroswap-analytics/pkg/domain"
	"github.com/soroswap/soroswap-analytics/pkg/repository"
	"gorm.io/gorm/clause"
)

func (r *Repository) SaveSubscription(sub repository.Subscription) error {
	row := Subscription{
		Network:      string(sub.Network),
		ContractID:   sub.ContractID,
		KeyXdr:       sub.KeyXdr,
		Protocol:     string(sub.Protocol),
		ContractType: string(sub.ContractType),
		StorageType:  string(sub.StorageType),
	}
	result := r.dbCon.Clauses(clause.OnConflict{DoNothing: true}).Model(&Subscription{}).Create(&row)
	return result.Error
}

func (r *Repository) SaveEventSubscription(sub repository.EventSubscription) error {
	row := EventSubscription{
		Network:    string(sub.Network),
		ContractID: sub.ContractID,
	}
	result := r.dbCon.Clauses(clause.OnConflict{DoNothing: true}).Model(&EventSubscription{}).Create(&row)
	return result.Error
}

func (r *Repository) DeletePairSubscriptionsNotIn(network domain.Network, contractIDs []string) (int64, error) {
	// An empty canonical set would wipe the whole registry. Refuse it.
	if len(contractIDs) == 0 {
		return 0, nil
	}
	result := r.dbCon.
		Where("network = ? AND contract_type = ? AND contract_id NOT IN ?",
			string(network), string(domain.ContractPair), contractIDs).
		Delete(&Subscription{})
	if result.Error != nil {
		r.logger.Error("Error pruning pair subscriptions from DB", "err", result.Error)
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

func (r *Repository) SaveXlmPrice(price repository.XlmUsdPrice) error {
	row := XlmUsdPrice{
		ID:        1,
		UpdatedAt: price.UpdatedAt,
		Price:     price.Price,
	}
	result := r.dbCon.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"price", "updated_at"}),
	}).Model(&XlmUsdPrice{}).Create(&row)
	return result.Error
}
