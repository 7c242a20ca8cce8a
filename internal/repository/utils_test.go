package repository_test

import (
	"io"
	"log/slog"

	_ "github.com/lib/pq"
	"github.com/soroswap/soroswap-analytics/internal/repository"
	"github.com/soroswap/soroswap-analytics/internal/repository/sqlite"
	"github.com/soroswap/soroswap-analytics/pkg/domain"
	repotypes "github.com/soroswap/soroswap-analytics/pkg/repository"
)

func makeDB() *repository.Repository {
	db, err := sqlite.New("file::memory:?cache=shared")
	if err != nil {
		panic(err)
	}
	repo, err := repository.New(db, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		panic(err)
	}

	return repo
}

func addSubscriptions(repo *repository.Repository) {
	subs := []repotypes.Subscription{
		{
			Network:      domain.NetworkMainnet,
			Protocol:     domain.ProtocolSoroswap,
			ContractType: domain.ContractFactory,
			StorageType:  domain.StorageInstance,
			ContractID:   "CFACTORY",
			KeyXdr:       "AAAAFA==",
		},
		{
			Network:      domain.NetworkMainnet,
			Protocol:     domain.ProtocolSoroswap,
			ContractType: domain.ContractFactory,
			StorageType:  domain.StoragePersistent,
			ContractID:   "CFACTORY",
			KeyXdr:       "PAIR0",
		},
		{
			Network:      domain.NetworkMainnet,
			Protocol:     domain.ProtocolSoroswap,
			ContractType: domain.ContractFactory,
			StorageType:  domain.StoragePersistent,
			ContractID:   "CFACTORY",
			KeyXdr:       "PAIR1",
		},
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
	for _, s := range subs {
		if err := repo.SaveSubscription(s); err != nil {
			panic(err)
		}
	}
}

func addEventSubscriptions(repo *repository.Repository) {
	subs := []repotypes.EventSubscription{
		{Network: domain.NetworkMainnet, ContractID: "CPAIRA"},
		{Network: domain.NetworkMainnet, ContractID: "CPAIRB"},
	}
	for _, s := range subs {
		if err := repo.SaveEventSubscription(s); err != nil {
			panic(err)
		}
	}
}
