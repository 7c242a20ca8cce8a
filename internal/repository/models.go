package repository

import (
	"time"
)

type Subscription struct {
	CreatedAt    time.Time
	UpdatedAt    time.Time
	Network      string `gorm:"index:idx_subscription,unique"`
	ContractID   string `gorm:"index:idx_subscription,unique"`
	KeyXdr       string `gorm:"index:idx_subscription,unique"`
	Protocol     string
	ContractType string
	StorageType  string
}

type EventSubscription struct {
	CreatedAt  time.Time
	UpdatedAt  time.Time
	Network    string `gorm:"index:idx_event_subscription,unique"`
	ContractID string `gorm:"index:idx_event_subscription,unique"`
}

type XlmUsdPrice struct {
	ID        uint `gorm:"primarykey"`
	UpdatedAt time.Time
	Price     float64
}
