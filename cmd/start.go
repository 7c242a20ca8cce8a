package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/soroswap/soroswap-analytics/internal/api"
	"github.com/soroswap/soroswap-analytics/internal/info"
	"github.com/soroswap/soroswap-analytics/internal/metrics"
	"github.com/soroswap/soroswap-analytics/internal/oracle"
	"github.com/soroswap/soroswap-analytics/internal/pairs"
	"github.com/soroswap/soroswap-analytics/internal/publisher"
	"github.com/soroswap/soroswap-analytics/pkg/domain"
)

var (
	flagAPIAddr         *string
	flagNatsURL         *string
	flagPrefixName      *string
	flagRefreshInterval *time.Duration
	flagRouters         *contractMap
	flagPriceAPI        *string
)

// startCmd runs the aggregation service: HTTP API, metrics and the periodic
// discovery refresh loop.
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "",
	Long:  ``,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		entryFeeds := make(map[domain.Network]pairs.Feed)
		eventFeeds := make(map[domain.Network]info.EventFeed)
		for _, network := range *flagNetworks.Value {
			client, err := feedRegistry.For(network)
			if err != nil {
				panic(err)
			}
			entryFeeds[network] = client
			eventFeeds[network] = client
		}

		pools := pairs.NewService(database, entryFeeds, kvCache, flagFactories.value, logger)

		var prices oracle.PriceSource = oracle.NewCoingecko()
		if *flagPriceAPI != "" {
			prices = oracle.NewCoingeckoWithEndpoint(*flagPriceAPI)
		}

		aggregator := info.NewService(pools, eventFeeds, database, prices, kvCache, flagRouters.value, logger)

		m := metrics.New()
		server := api.NewServer(*flagAPIAddr, aggregator, m, logger)

		pub, err := publisher.New(*flagNatsURL, *flagPrefixName, pools, *flagNetworks.Value, *flagRefreshInterval, m, logger)
		if err != nil {
			panic(err)
		}
		defer pub.Close()

		for _, network := range *flagNetworks.Value {
			if err := pools.SubscribeFactory(ctx, network); err != nil {
				logger.Error("Failed subscribing to factory", "network", string(network), "err", err)
			}
		}

		g, gctx := errgroup.WithContext(ctx)
		g.Go(server.Start)
		g.Go(func() error {
			return pub.Run(gctx)
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		})

		if err := g.Wait(); err != nil {
			logger.Error("Service stopped", "err", err)
			return
		}
		logger.Info("Shutdown")
	},
}

func init() {
	rootCmd.AddCommand(startCmd)

	const (
		API_ADDR         = "API_ADDR"
		NATS_URL         = "NATS_URL"
		PREFIX           = "PREFIX"
		REFRESH_INTERVAL = "REFRESH_INTERVAL"
		ROUTERS          = "ROUTERS"
		PRICE_API        = "PRICE_API"
	)

	setDefault(API_ADDR, ":8080")
	setDefault(PREFIX, "soroswap")
	setDefault(REFRESH_INTERVAL, "1m")

	f := startCmd.Flags()
	flagAPIAddr = f.String("api-addr", os.Getenv(API_ADDR), "Listen address of the HTTP API")
	flagNatsURL = f.StringP("nats-url", "n", os.Getenv(NATS_URL), "NATS server URL for snapshot publishing (empty disables publishing)")
	flagPrefixName = f.String("prefix", os.Getenv(PREFIX), "NATS subject prefix as in {prefix}.pools.{network}")
	flagRouters = f.VarPF(newContractMap(domain.SoroswapRouter, os.Getenv(ROUTERS)), "routers", "", "Router contract overrides as NETWORK=CONTRACT pairs").Value.(*contractMap)
	flagPriceAPI = f.String("price-api", os.Getenv(PRICE_API), "Override for the XLM/USD price endpoint")

	interval, err := time.ParseDuration(os.Getenv(REFRESH_INTERVAL))
	if err != nil {
		interval = time.Minute
	}
	flagRefreshInterval = f.Duration("refresh-interval", interval, "Period of the discovery refresh and snapshot publish loop")
}
