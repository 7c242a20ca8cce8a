package repository

import (
	"fmt"
	"log/slog"

	_ "github.com/lib/pq"
	"github.com/soroswap/soroswap-analytics/pkg/repository"
	"gorm.io/gorm"
)

var _ repository.Repository = (*Repository)(nil)

type Repository struct {
	logger *slog.Logger
	dbCon  *gorm.DB
}

func New(db *gorm.DB, logger *slog.Logger) (*Repository, error) {
	ret := &Repository{
		logger: logger,
		dbCon:  db,
	}

	// Create tables for data structures (if table already exists it will not be overwritten)
	err := db.AutoMigrate(&Subscription{})
	if err != nil {
		return nil, fmt.Errorf("Subscription table migrate error: %w", err)
	}
	err = db.AutoMigrate(&EventSubscription{})
	if err != nil {
		return nil, fmt.Errorf("EventSubscription table migrate error: %w", err)
	}
	err = db.AutoMigrate(&XlmUsdPrice{})
	if err != nil {
		return nil, fmt.Errorf("XlmUsdPrice table migrate error: %w", err)
	}
	return ret, nil
}

func (r *Repository) Close() error {
	return nil
}
