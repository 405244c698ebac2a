package main

import (
	"fmt"

	"btsbridge/workers"
	"btsbridge/workers/handlers"

	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the read-only operator API",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	store, err := journalStore()
	if err != nil {
		return err
	}

	reg, err := loadRegistry(store)
	if err != nil {
		return err
	}
	netCfg, err := cfg.Network(network)
	if err != nil {
		return fmt.Errorf("%w: %s", errConfig, err.Error())
	}

	api := &handlers.API{
		Network:  network,
		Registry: reg,
		Reader:   workers.NewChainReader(netCfg, reg, log),
		Log:      log,
	}
	if store != nil {
		defer store.Close()
		api.Deployments = store
		api.Journal = store
	}

	return workers.Worker_HTTP(cmd.Context(), cfg.Server.Port, workers.NewRouter(api), log)
}
