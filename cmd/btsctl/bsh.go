package main

import (
	"fmt"
	"strings"

	"btsbridge/EVMRPC"
	"btsbridge/operations"
	"btsbridge/redis"
	"btsbridge/registry"

	"github.com/spf13/cobra"
)

var bshArgs operations.Args

var bshCmd = &cobra.Command{
	Use:   "bsh",
	Short: "Run one operator command against the deployed bridge",
	Long: fmt.Sprintf(`Runs one operator command against the deployed bridge.

Methods: %s`, methodList()),
	Args: cobra.NoArgs,
	RunE: runBSH,
}

func methodList() string {
	names := make([]string, 0, len(operations.Methods))
	for _, m := range operations.Methods {
		names = append(names, string(m))
	}
	return strings.Join(names, ", ")
}

func init() {
	f := bshCmd.Flags()
	f.StringVar(&bshArgs.Method, "method", "", "operation to run")
	f.StringVar(&bshArgs.Name, "name", "", "token name (registerToken)")
	f.StringVar(&bshArgs.Symbol, "symbol", "", "token symbol (registerToken)")
	f.StringVar(&bshArgs.Addr, "addr", "", "token, account or spender address")
	f.StringVar(&bshArgs.Amount, "amount", "", "amount in whole tokens, decimals allowed")
	f.StringVar(&bshArgs.From, "from", "", "acting account alias or address")
	f.StringVar(&bshArgs.To, "to", "", "BTP destination address (transfer)")
	f.StringVar(&bshArgs.FeeNumerator, "feeNumerator", "", "fee numerator over 10000 (registerToken)")
	f.StringVar(&bshArgs.FixedFee, "fixedFee", "", "fixed fee in base units (registerToken)")
}

func runBSH(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	store, storeErr := journalStore()
	if store != nil {
		defer store.Close()
	}

	// bad input never reaches the chain, Dispatch only journals it
	op, err := operations.Parse(bshArgs)
	if err != nil {
		reg := &registry.Registry{Network: network}
		res := operations.NewDispatcher(reg, nil, nil, nil, log, journalOptions(store)...).Dispatch(ctx, bshArgs)
		return res.Err
	}
	if storeErr != nil {
		return storeErr
	}

	reg, err := loadRegistry(store)
	if err != nil {
		return err
	}
	netCfg, err := cfg.Network(network)
	if err != nil {
		return fmt.Errorf("%w: %s", errConfig, err.Error())
	}
	signers, err := EVMRPC.NewSigners(cfg.EVM.PrivateKey, cfg.Accounts)
	if err != nil {
		return fmt.Errorf("%w: %s", errConfig, err.Error())
	}

	session, err := EVMRPC.NewSession(ctx, netCfg, signers)
	if err != nil {
		return &operations.OpError{Method: op.Method(), Kind: operations.KindTransport, Err: err}
	}
	defer session.Close()

	opts := append(journalOptions(store), operations.WithTransferCoin(cfg.Bridge.TransferCoin))
	d, err := operations.NewEVMDispatcher(session, reg, log, opts...)
	if err != nil {
		return fmt.Errorf("%w: %s", errConfig, err.Error())
	}

	res := d.Execute(ctx, op)
	if res.Err != nil {
		return res.Err
	}
	ux.GreenCheckmarkToUser("%s: %s", res.Method, res.String())
	return nil
}

func journalOptions(store *redis.Store) []operations.Option {
	if store == nil {
		return nil
	}
	return []operations.Option{operations.WithJournal(store)}
}
