package main

import (
	"errors"
	"fmt"
	"os"

	"btsbridge/config"
	"btsbridge/deployer"
	"btsbridge/operations"
	"btsbridge/redis"
	"btsbridge/registry"
	"btsbridge/types"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var errConfig = errors.New("configuration error")

var (
	configFile string
	network    string
	logLevel   string

	cfg     *config.Configuration
	log     *zap.SugaredLogger
	ux      *userLog
	closeUp func()
)

var rootCmd = &cobra.Command{
	Use:   "btsctl",
	Short: "Deploy and operate a BTS token bridge",
	Long: `btsctl deploys the BTS Core and Periphery contracts behind upgradeable
proxies, links them, and runs operator commands against a deployed bridge.`,
	PersistentPreRunE: setup,
	SilenceUsage:      true,
	SilenceErrors:     true,
}

func setup(cmd *cobra.Command, args []string) error {
	// a bad config file exits with status 2
	cfg = config.Init(configFile)

	var err error
	log, closeUp, err = setupLogging(cfg.Server.LogDir, logLevel)
	if err != nil {
		return fmt.Errorf("%w: %s", errConfig, err.Error())
	}
	ux = &userLog{log: log, writer: os.Stdout}

	if network == "" {
		return fmt.Errorf("%w: --network is required", errConfig)
	}
	return nil
}

func init() {
	rootCmd.CompletionOptions.HiddenDefaultCmd = true

	rootCmd.PersistentFlags().StringVar(&configFile, "config", config.DEFAULT_CONFIG_FILE, "configuration file")
	rootCmd.PersistentFlags().StringVar(&network, "network", "", "target network, as named in the configuration")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "error", "log level shown on stderr")

	rootCmd.AddCommand(deployCmd)
	rootCmd.AddCommand(bshCmd)
	rootCmd.AddCommand(serveCmd)
}

// exitCode is 0 on success, 2 for configuration errors, 1 otherwise.
func exitCode(err error) int {
	if err == nil {
		return 0
	}
	if errors.Is(err, errConfig) || errors.Is(err, deployer.ErrInvalidConfig) {
		return 2
	}
	return operations.ExitCode(err)
}

func execute() int {
	err := rootCmd.Execute()
	if err != nil {
		if ux != nil {
			ux.RedXToUser("%s", err.Error())
		} else {
			fmt.Fprintln(os.Stderr, err)
		}
	}
	if closeUp != nil {
		closeUp()
	}
	return exitCode(err)
}

// journalStore connects to Redis when it is configured. A nil store means no Redis.
func journalStore() (*redis.Store, error) {
	if !cfg.RedisEnabled() {
		return nil, nil
	}
	store := redis.FromConfig(cfg)
	if err := store.Ping(); err != nil {
		store.Close()
		return nil, fmt.Errorf("error connecting to Redis: %w", err)
	}
	return store, nil
}

// loadRegistry resolves the contract addresses of the selected network: its
// section of the address file, the configured legacy section, then the
// deployment record kept in Redis.
func loadRegistry(store *redis.Store) (*registry.Registry, error) {
	reg, err := registry.LoadFile(cfg.Bridge.AddressesFile, network)
	if errors.Is(err, types.ErrRecordNotFound) && cfg.Bridge.LegacySection != "" {
		reg, err = registry.LoadFileSection(cfg.Bridge.AddressesFile, cfg.Bridge.LegacySection, network)
	}
	if errors.Is(err, types.ErrRecordNotFound) && store != nil {
		var rec *types.DeploymentRecord
		rec, err = store.GetDeployment(network)
		if err == nil {
			reg, err = registry.FromRecord(rec, cfg.Bridge.Token)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s", errConfig, err.Error())
	}

	if cfg.Bridge.Token != "" {
		if !common.IsHexAddress(cfg.Bridge.Token) {
			return nil, fmt.Errorf("%w: invalid bridge token address %q", errConfig, cfg.Bridge.Token)
		}
		reg.Token = common.HexToAddress(cfg.Bridge.Token)
	}
	if err := reg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", errConfig, err.Error())
	}
	return reg, nil
}
