package cmd

import (
	"log/slog"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/soroswap/soroswap-analytics/cmd/flags"
	"github.com/soroswap/soroswap-analytics/internal/cache"
	"github.com/soroswap/soroswap-analytics/internal/mercury"
	"github.com/soroswap/soroswap-analytics/internal/repository"
	"github.com/soroswap/soroswap-analytics/internal/repository/pg"
	"github.com/soroswap/soroswap-analytics/internal/repository/sqlite"
	"github.com/soroswap/soroswap-analytics/pkg/domain"
)

var (
	flagVerbose   *bool
	flagNetworks  *flags.Networks
	flagFactories *contractMap
	flagRedisAddr *string

	flagMainnetGraphQL *string
	flagMainnetBackend *string
	flagMainnetToken   *string
	flagTestnetGraphQL *string
	flagTestnetBackend *string
	flagTestnetToken   *string

	flagDbHost     *string
	flagDbPort     *uint
	flagDbUser     *string
	flagDbPassword *string
	flagDbName     *string

	logger       *slog.Logger
	database     *repository.Repository
	kvCache      cache.Cache
	feedRegistry *mercury.Registry
)

var rootCmd = &cobra.Command{
	Use:   "soroswap-analytics",
	Short: "",
	Long:  ``,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelInfo
		if *flagVerbose {
			level = slog.LevelDebug
		}
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
		slog.SetDefault(logger)

		var db *gorm.DB
		var err error
		if *flagDbName == "sqlite" {
			db, err = sqlite.New(*flagDbHost)
			if err != nil {
				panic(err)
			}
		} else {
			db, err = pg.New(*flagDbHost, *flagDbPort, *flagDbUser, *flagDbPassword, *flagDbName)
			if err != nil {
				panic(err)
			}
		}
		repo, err := repository.New(db, logger)
		if err != nil {
			panic(err)
		}
		database = repo

		if *flagRedisAddr != "" {
			kvCache = cache.NewRedis(*flagRedisAddr)
		} else {
			logger.Warn("No Redis address configured, using in-process cache")
			kvCache = cache.NewMemory()
		}

		feedRegistry = mercury.NewRegistry(map[domain.Network]mercury.Config{
			domain.NetworkMainnet: {
				GraphQLEndpoint: *flagMainnetGraphQL,
				BackendEndpoint: *flagMainnetBackend,
				AccessToken:     *flagMainnetToken,
			},
			domain.NetworkTestnet: {
				GraphQLEndpoint: *flagTestnetGraphQL,
				BackendEndpoint: *flagTestnetBackend,
				AccessToken:     *flagTestnetToken,
			},
		}, logger)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if database != nil {
			database.Close()
		}
		if closer, ok := kvCache.(*cache.Redis); ok {
			closer.Close()
		}
	},
}

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	godotenv.Load()

	const (
		NETWORKS        = "NETWORKS"
		FACTORIES       = "FACTORIES"
		REDIS_ADDR      = "REDIS_ADDR"
		MAINNET_GRAPHQL = "MAINNET_MERCURY_GRAPHQL"
		MAINNET_BACKEND = "MAINNET_MERCURY_BACKEND"
		MAINNET_TOKEN   = "MAINNET_MERCURY_TOKEN"
		TESTNET_GRAPHQL = "TESTNET_MERCURY_GRAPHQL"
		TESTNET_BACKEND = "TESTNET_MERCURY_BACKEND"
		TESTNET_TOKEN   = "TESTNET_MERCURY_TOKEN"
		DB_HOST         = "DB_HOST"
		DB_PORT         = "DB_PORT"
		DB_USER         = "DB_USER"
		DB_PASSWORD     = "DB_PASSW"
		DB_NAME         = "DB_NAME"
	)
	setDefault(NETWORKS, "MAINNET,TESTNET")
	setDefault(MAINNET_GRAPHQL, "https://mainnet.mercurydata.app/graphql")
	setDefault(MAINNET_BACKEND, "https://mainnet.mercurydata.app")
	setDefault(TESTNET_GRAPHQL, "https://api.mercurydata.app/graphql")
	setDefault(TESTNET_BACKEND, "https://api.mercurydata.app")
	setDefault(DB_HOST, "postgres")
	setDefault(DB_PORT, "5432")
	setDefault(DB_USER, "soroswap_user")
	setDefault(DB_NAME, "soroswap")

	pf := rootCmd.PersistentFlags()

	flagNetworks = pf.VarPF(flags.NewNetworks(os.Getenv(NETWORKS)), "networks", "", "Networks to operate on (separated by comma)").Value.(*flags.Networks)
	flagFactories = pf.VarPF(newContractMap(domain.SoroswapFactory, os.Getenv(FACTORIES)), "factories", "", "Factory contract overrides as NETWORK=CONTRACT pairs").Value.(*contractMap)

	flagRedisAddr = pf.StringP("redis-addr", "", os.Getenv(REDIS_ADDR), "Redis address for the cache layer (empty for in-process cache)")

	flagMainnetGraphQL = pf.StringP("mainnet-graphql", "", os.Getenv(MAINNET_GRAPHQL), "Mercury GraphQL endpoint for mainnet")
	flagMainnetBackend = pf.StringP("mainnet-backend", "", os.Getenv(MAINNET_BACKEND), "Mercury subscription backend endpoint for mainnet")
	flagMainnetToken = pf.StringP("mainnet-token", "", os.Getenv(MAINNET_TOKEN), "Mercury access token for mainnet")
	flagTestnetGraphQL = pf.StringP("testnet-graphql", "", os.Getenv(TESTNET_GRAPHQL), "Mercury GraphQL endpoint for testnet")
	flagTestnetBackend = pf.StringP("testnet-backend", "", os.Getenv(TESTNET_BACKEND), "Mercury subscription backend endpoint for testnet")
	flagTestnetToken = pf.StringP("testnet-token", "", os.Getenv(TESTNET_TOKEN), "Mercury access token for testnet")

	flagDbHost = pf.StringP("db-host", "", os.Getenv(DB_HOST), "Database Host (filepath in case of `sqlite` `db-name`)")

	envPort := os.Getenv(DB_PORT)
	port, err := strconv.ParseUint(envPort, 10, 64)
	if err != nil {
		port = 5432
		slog.Warn("Bad database port format, switching to default", "error", err, "port", port)
	}

	flagDbPort = pf.UintP("db-port", "", uint(port), "Database Port")
	flagDbUser = pf.StringP("db-user", "", os.Getenv(DB_USER), "Database User")
	flagDbName = pf.StringP("db-name", "", os.Getenv(DB_NAME), "Database Name (specify `sqlite` for SQLite database)")
	flagDbPassword = pf.StringP("db-passw", "", os.Getenv(DB_PASSWORD), "Database Password")

	_, verbosePresent := os.LookupEnv("VERBOSE")

	flagVerbose = pf.BoolP("verbose", "v", verbosePresent, "Verbose output")
}
