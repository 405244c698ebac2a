package main

import (
	"errors"
	"fmt"

	"btsbridge/EVMRPC"
	"btsbridge/artifacts"
	"btsbridge/deployer"
	"btsbridge/registry"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
)

var deployFrom string

var deployCmd = &cobra.Command{
	Use:   "deploy",
	Short: "Deploy BTSCore and BTSPeriphery behind proxies and link them",
	Long: `Deploys BTSCore initialized with BSH_COIN_NAME, BSH_COIN_FEE and BSH_FIXED_FEE,
then BTSPeriphery bound to BMC_PERIPHERY_ADDRESS and the new core, then registers
the periphery on the core. Ephemeral networks are skipped.`,
	Args: cobra.NoArgs,
	RunE: runDeploy,
}

func init() {
	deployCmd.Flags().StringVar(&deployFrom, "from", "", "deployer account alias or address (default signer when empty)")
}

func runDeploy(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	opts := []deployer.Option{deployer.WithEphemeralNetworks(cfg.Deploy.EphemeralNetworks...)}

	var backend deployer.Backend
	if !cfg.IsEphemeral(network) {
		netCfg, err := cfg.Network(network)
		if err != nil {
			return fmt.Errorf("%w: %s", errConfig, err.Error())
		}
		signers, err := EVMRPC.NewSigners(cfg.EVM.PrivateKey, cfg.Accounts)
		if err != nil {
			return fmt.Errorf("%w: %s", errConfig, err.Error())
		}
		if cfg.Deploy.ProxyAdmin != "" {
			if !common.IsHexAddress(cfg.Deploy.ProxyAdmin) {
				return fmt.Errorf("%w: invalid proxy admin address %q", errConfig, cfg.Deploy.ProxyAdmin)
			}
			opts = append(opts, deployer.WithUpgradeAdmin(common.HexToAddress(cfg.Deploy.ProxyAdmin)))
		}

		session, err := EVMRPC.NewSession(ctx, netCfg, signers)
		if err != nil {
			return err
		}
		defer session.Close()
		backend = deployer.NewEVMBackend(session, artifacts.NewLoader(cfg.Deploy.ArtifactsDir), deployFrom)

		opts = append(opts, deployer.WithStores(registry.NewFileStore(cfg.Bridge.AddressesFile)))
		store, err := journalStore()
		if err != nil {
			return err
		}
		if store != nil {
			defer store.Close()
			opts = append(opts, deployer.WithStores(store))
		}
	}

	report, err := deployer.New(backend, log, opts...).Run(ctx, deployer.Params{
		Network:      network,
		Config:       cfg.BridgeConfig(),
		BMCPeriphery: cfg.Deploy.BMCPeripheryAddress,
	})

	var incomplete *deployer.IncompleteDeploymentError
	switch {
	case errors.As(err, &incomplete):
		ux.RedXToUser("Deployment on %s is INCOMPLETE, the bridge is not usable", network)
		ux.PrintToUser("  %s: %s", registry.Core, incomplete.Record.CoreAddress)
		ux.PrintToUser("  %s: %s", registry.Periphery, incomplete.Record.PeripheryAddress)
		return err
	case err != nil && report == nil:
		return err
	}

	if report.Outcome == deployer.OutcomeSkipped {
		ux.PrintToUser("Network %s is ephemeral, deployment skipped", network)
		return nil
	}

	rec := report.Record
	ux.GreenCheckmarkToUser("Bridge deployed on %s", network)
	ux.PrintToUser("  %s: %s (implementation %s)", registry.Core, rec.CoreAddress, rec.CoreImplementation)
	ux.PrintToUser("  %s: %s (implementation %s)", registry.Periphery, rec.PeripheryAddress, rec.PeripheryImplementation)
	ux.PrintToUser("  %s: %s", registry.UpgradeAdmin, rec.UpgradeAdmin)
	// linked on chain, only the bookkeeping failed
	return err
}
