package repository_test

import (
	"fmt"
	"reflect"
	"testing"
	"time"

	_ "github.com/lib/pq"
	"github.com/soroswap/soroswap-analytics/internal/repository"
	"github.com/soroswap/soroswap-analytics/pkg/domain"
	repotypes "github.com/soroswap/soroswap-analytics/pkg/repository"
)

func TestRepository_Subscriptions(t *testing.T) {
	tests := []struct {
		name    string
		f       func(db *repository.Repository, t *testing.T) error
		wantErr bool
	}{
		{
			name: "exists",
			f: func(db *repository.Repository, t *testing.T) error {
				found, err := db.SubscriptionExists(domain.NetworkMainnet, "CFACTORY", "AAAAFA==")
				if err != nil {
					return err
				}
				if !found {
					return fmt.Errorf("Did not find")
				}
				return nil
			},
			wantErr: false,
		},
		{
			name: "404 key",
			f: func(db *repository.Repository, t *testing.T) error {
				found, err := db.SubscriptionExists(domain.NetworkMainnet, "CFACTORY", "PAIR7")
				if err != nil {
					return err
				}
				if found {
					return fmt.Errorf("found PAIR7")
				}
				return nil
			},
			wantErr: false,
		},
		{
			name: "404 network",
			f: func(db *repository.Repository, t *testing.T) error {
				found, err := db.SubscriptionExists(domain.NetworkTestnet, "CFACTORY", "AAAAFA==")
				if err != nil {
					return err
				}
				if found {
					return fmt.Errorf("found on wrong network")
				}
				return nil
			},
			wantErr: false,
		},
		{
			name: "add same",
			f: func(db *repository.Repository, t *testing.T) error {
				err := db.SaveSubscription(repotypes.Subscription{
					Network:      domain.NetworkMainnet,
					Protocol:     domain.ProtocolSoroswap,
					ContractType: domain.ContractFactory,
					StorageType:  domain.StoragePersistent,
					ContractID:   "CFACTORY",
					KeyXdr:       "PAIR0",
				})
				if err != nil {
					return err
				}
				count, err := db.CountSubscriptions(domain.NetworkMainnet, "CFACTORY", domain.ProtocolSoroswap, domain.ContractFactory, domain.StoragePersistent)
				if err != nil {
					return err
				}
				if count != 2 {
					return fmt.Errorf("duplicate insert changed count: %d", count)
				}
				return nil
			},
			wantErr: false,
		},
		{
			name: "by type",
			f: func(db *repository.Repository, t *testing.T) error {
				subs, err := db.SubscriptionsByType(domain.NetworkMainnet, domain.ProtocolSoroswap, domain.ContractPair, domain.StorageInstance)
				if err != nil {
					return err
				}
				truth := []repotypes.Subscription{
					{
						Network:      domain.NetworkMainnet,
						Protocol:     domain.ProtocolSoroswap,
						ContractType: domain.ContractPair,
						StorageType:  domain.StorageInstance,
						ContractID:   "CPAIRA",
						KeyXdr:       "AAAAFA==",
					},
					{
						Network:      domain.NetworkMainnet,
						Protocol:     domain.ProtocolSoroswap,
						ContractType: domain.ContractPair,
						StorageType:  domain.StorageInstance,
						ContractID:   "CPAIRB",
						KeyXdr:       "AAAAFA==",
					},
				}
				if !reflect.DeepEqual(subs, truth) {
					return fmt.Errorf("unexpected subscriptions: %v", subs)
				}
				return nil
			},
			wantErr: false,
		},
		{
			name: "count pair index slots",
			f: func(db *repository.Repository, t *testing.T) error {
				count, err := db.CountSubscriptions(domain.NetworkMainnet, "CFACTORY", domain.ProtocolSoroswap, domain.ContractFactory, domain.StoragePersistent)
				if err != nil {
					return err
				}
				if count != 2 {
					return fmt.Errorf("wrong count: %d", count)
				}
				return nil
			},
			wantErr: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := makeDB()
			addSubscriptions(db)

			err := tt.f(db, t)
			if (tt.wantErr && err == nil) || (!tt.wantErr && err != nil) {
				t.Errorf("Subscriptions test wantErr = %v, err %v", tt.wantErr, err)
			}
		})
	}
}

func TestRepository_Prune(t *testing.T) {
	seed := func(db *repository.Repository) {
		subs := []repotypes.Subscription{
			{
				Network:      domain.NetworkTestnet,
				Protocol:     domain.ProtocolSoroswap,
				ContractType: domain.ContractPair,
				StorageType:  domain.StorageInstance,
				ContractID:   "CPRUNEA",
				KeyXdr:       "AAAAFA==",
			},
			{
				Network:      domain.NetworkTestnet,
				Protocol:     domain.ProtocolSoroswap,
				ContractType: domain.ContractPair,
				StorageType:  domain.StorageInstance,
				ContractID:   "CPRUNEB",
				KeyXdr:       "AAAAFA==",
			},
			{
				Network:      domain.NetworkTestnet,
				Protocol:     domain.ProtocolPhoenix,
				ContractType: domain.ContractPair,
				StorageType:  domain.StorageInstance,
				ContractID:   "CPRUNEC",
				KeyXdr:       "AAAAFA==",
			},
		}
		for _, s := range subs {
			if err := db.SaveSubscription(s); err != nil {
				panic(err)
			}
		}
	}

	t.Run("empty canonical set is a no-op", func(t *testing.T) {
		db := makeDB()
		seed(db)

		deleted, err := db.DeletePairSubscriptionsNotIn(domain.NetworkTestnet, nil)
		if err != nil {
			t.Fatalf("DeletePairSubscriptionsNotIn failed: %v", err)
		}
		if deleted != 0 {
			t.Errorf("deleted %d rows on empty set", deleted)
		}
	})

	t.Run("removes stale pairs only", func(t *testing.T) {
		db := makeDB()
		seed(db)

		deleted, err := db.DeletePairSubscriptionsNotIn(domain.NetworkTestnet, []string{"CPRUNEA", "CPRUNEC"})
		if err != nil {
			t.Fatalf("DeletePairSubscriptionsNotIn failed: %v", err)
		}
		if deleted != 1 {
			t.Errorf("unexpected deleted rows want=1 got %d", deleted)
		}
		found, err := db.SubscriptionExists(domain.NetworkTestnet, "CPRUNEB", "AAAAFA==")
		if err != nil {
			t.Fatalf("SubscriptionExists failed: %v", err)
		}
		if found {
			t.Errorf("stale pair still present")
		}
		found, err = db.SubscriptionExists(domain.NetworkTestnet, "CPRUNEA", "AAAAFA==")
		if err != nil {
			t.Fatalf("SubscriptionExists failed: %v", err)
		}
		if !found {
			t.Errorf("canonical pair was pruned")
		}
	})
}

func TestRepository_EventSubscriptions(t *testing.T) {
	tests := []struct {
		name    string
		f       func(db *repository.Repository, t *testing.T) error
		wantErr bool
	}{
		{
			name: "exists",
			f: func(db *repository.Repository, t *testing.T) error {
				found, err := db.EventSubscriptionExists(domain.NetworkMainnet, "CPAIRA")
				if err != nil {
					return err
				}
				if !found {
					return fmt.Errorf("Did not find")
				}
				return nil
			},
			wantErr: false,
		},
		{
			name: "404",
			f: func(db *repository.Repository, t *testing.T) error {
				found, err := db.EventSubscriptionExists(domain.NetworkMainnet, "CPAIRZ")
				if err != nil {
					return err
				}
				if found {
					return fmt.Errorf("found CPAIRZ")
				}
				return nil
			},
			wantErr: false,
		},
		{
			name: "add same",
			f: func(db *repository.Repository, t *testing.T) error {
				err := db.SaveEventSubscription(repotypes.EventSubscription{
					Network:    domain.NetworkMainnet,
					ContractID: "CPAIRA",
				})
				if err != nil {
					return err
				}
				return nil
			},
			wantErr: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := makeDB()
			addEventSubscriptions(db)

			err := tt.f(db, t)
			if (tt.wantErr && err == nil) || (!tt.wantErr && err != nil) {
				t.Errorf("EventSubscriptions test wantErr = %v, err %v", tt.wantErr, err)
			}
		})
	}
}

func TestRepository_XlmPrice(t *testing.T) {
	db := makeDB()

	_, found := db.LatestXlmPrice()
	if found {
		t.Fatalf("found a price in an empty DB")
	}

	now := time.Now().Truncate(time.Second)
	err := db.SaveXlmPrice(repotypes.XlmUsdPrice{Price: 0.11, UpdatedAt: now.Add(-time.Minute)})
	if err != nil {
		t.Fatalf("SaveXlmPrice failed: %v", err)
	}
	err = db.SaveXlmPrice(repotypes.XlmUsdPrice{Price: 0.12, UpdatedAt: now})
	if err != nil {
		t.Fatalf("SaveXlmPrice failed: %v", err)
	}

	price, found := db.LatestXlmPrice()
	if !found {
		t.Fatalf("Did not find")
	}
	if price.Price != 0.12 {
		t.Errorf("wrong price: %v", price)
	}
	if !price.UpdatedAt.Equal(now) {
		t.Errorf("wrong timestamp: %v", price.UpdatedAt)
	}
}
