package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/soroswap/soroswap-analytics/internal/pairs"
	"github.com/soroswap/soroswap-analytics/pkg/domain"
)

var (
	flagPhoenixFactories *contractMap
	flagPrune            *bool
)

// syncCmd runs discovery once: subscribes factories, reconciles the pair
// registry against what they report and exits. Useful for bootstrapping a
// fresh database before `start`.
var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "",
	Long:  ``,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		entryFeeds := make(map[domain.Network]pairs.Feed)
		for _, network := range *flagNetworks.Value {
			client, err := feedRegistry.For(network)
			if err != nil {
				panic(err)
			}
			entryFeeds[network] = client
		}

		pools := pairs.NewService(database, entryFeeds, kvCache, flagFactories.value, logger)

		for _, network := range *flagNetworks.Value {
			if err := pools.SubscribeFactory(ctx, network); err != nil {
				logger.Error("Failed subscribing to factory", "network", string(network), "err", err)
				continue
			}

			if contract, ok := flagPhoenixFactories.value[network]; ok {
				if err := pools.SubscribePhoenixFactory(ctx, network, contract); err != nil {
					logger.Error("Failed subscribing to Phoenix factory", "network", string(network), "contractId", contract, "err", err)
				}
			}

			soroswap, err := pools.SyncSoroswapPairs(ctx, network)
			if err != nil {
				logger.Error("Soroswap sync failed", "network", string(network), "err", err)
				continue
			}
			phoenix, err := pools.SyncPhoenixPairs(ctx, network)
			if err != nil {
				logger.Error("Phoenix sync failed", "network", string(network), "err", err)
				continue
			}
			logger.Info("Discovery synced", "network", string(network), "soroswapPairs", len(soroswap), "phoenixPairs", len(phoenix))

			if *flagPrune {
				removed, err := pools.PruneRemovedPairs(ctx, network)
				if err != nil {
					logger.Error("Prune failed", "network", string(network), "err", err)
					continue
				}
				logger.Info("Prune finished", "network", string(network), "removed", removed)
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(syncCmd)

	const PHOENIX_FACTORIES = "PHOENIX_FACTORIES"

	f := syncCmd.Flags()
	flagPhoenixFactories = f.VarPF(newContractMap(nil, os.Getenv(PHOENIX_FACTORIES)), "phoenix-factories", "", "Phoenix factory contracts to register as NETWORK=CONTRACT pairs").Value.(*contractMap)
	flagPrune = f.Bool("prune", false, "Delete registry subscriptions for pairs no factory reports anymore")
}
