package workers

import (
	"context"
	"errors"

	"btsbridge/EVMRPC"
	"btsbridge/EVMRPC/btscore"
	"btsbridge/EVMRPC/ierc20"
	"btsbridge/config"
	"btsbridge/operations"
	"btsbridge/registry"
	"btsbridge/units"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"go.uber.org/zap"
)

var ErrReadOnly = errors.New("operator API is read-only")

// readOnlyChain lets the dispatcher run queries but never sign anything.
type readOnlyChain struct{}

func (readOnlyChain) TransactOpts(ctx context.Context, from string) (*bind.TransactOpts, error) {
	return nil, ErrReadOnly
}

func (readOnlyChain) CallOpts(ctx context.Context) *bind.CallOpts {
	return &bind.CallOpts{Context: ctx}
}

func (readOnlyChain) WaitMined(ctx context.Context, tx *ethtypes.Transaction) (*ethtypes.Receipt, error) {
	return nil, ErrReadOnly
}

// ChainReader runs getBalance and calculateTransferFee through the
// operations dispatcher, failing over between the network RPC endpoints.
type ChainReader struct {
	network  config.NetworkConfig
	registry *registry.Registry
	log      *zap.SugaredLogger
}

func NewChainReader(network config.NetworkConfig, reg *registry.Registry, log *zap.SugaredLogger) *ChainReader {
	return &ChainReader{network: network, registry: reg, log: log}
}

func (c *ChainReader) execute(ctx context.Context, op operations.Operation) (operations.Result, error) {
	return EVMRPC.WithClient(c.network, func(client *ethclient.Client) (operations.Result, error) {
		core, err := btscore.NewBTSCore(c.registry.Core, client)
		if err != nil {
			return operations.Result{}, err
		}
		token, err := ierc20.NewIerc20(c.registry.Token, client)
		if err != nil {
			return operations.Result{}, err
		}
		res := operations.NewDispatcher(c.registry, core, token, readOnlyChain{}, c.log).Execute(ctx, op)
		return res, res.Err
	})
}

func (c *ChainReader) Balance(ctx context.Context, account common.Address) (units.Amount, error) {
	res, err := c.execute(ctx, operations.GetBalance{Account: account})
	if err != nil {
		return units.Amount{}, err
	}
	return *res.Balance, nil
}

func (c *ChainReader) TransferFee(ctx context.Context, amount units.Amount) (*operations.FeeBreakdown, error) {
	res, err := c.execute(ctx, operations.CalculateTransferFee{Amount: amount})
	if err != nil {
		return nil, err
	}
	return res.Fee, nil
}
