package EVMRPC

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"btsbridge/config"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
)

var ErrReceiptFailed = errors.New("failed receipt status")

// Backend is what the bindings and the session need from a node.
type Backend interface {
	bind.ContractBackend
	bind.DeployBackend
	ChainID(ctx context.Context) (*big.Int, error)
}

// Session binds a connected node to the operator signers.
// Every submitted transaction is waited for before the next one is built.
type Session struct {
	Backend  Backend
	ChainID  *big.Int
	Signers  *Signers
	GasLimit uint64

	closer func()
}

func NewSession(ctx context.Context, network config.NetworkConfig, signers *Signers) (*Session, error) {
	client, err := Dial(ctx, network)
	if err != nil {
		return nil, err
	}

	s, err := NewSessionWithBackend(ctx, client, network, signers)
	if err != nil {
		client.Close()
		return nil, err
	}
	s.closer = client.Close
	return s, nil
}

func NewSessionWithBackend(ctx context.Context, backend Backend, network config.NetworkConfig, signers *Signers) (*Session, error) {
	chainID, err := backend.ChainID(ctx)
	if err != nil {
		return nil, fmt.Errorf("error getting chain id: %w", err)
	}
	if network.ChainID != 0 && chainID.Int64() != network.ChainID {
		return nil, fmt.Errorf("endpoint serves chain %s, configured %d", chainID, network.ChainID)
	}

	return &Session{
		Backend:  backend,
		ChainID:  chainID,
		Signers:  signers,
		GasLimit: network.GasLimit,
	}, nil
}

func (s *Session) Close() {
	if s.closer != nil {
		s.closer()
	}
}

// TransactOpts builds signing options for the given account (alias, address or "" for default).
func (s *Session) TransactOpts(ctx context.Context, from string) (*bind.TransactOpts, error) {
	privateKey, address, err := s.Signers.Resolve(from)
	if err != nil {
		return nil, err
	}

	auth, err := bind.NewKeyedTransactorWithChainID(privateKey, s.ChainID)
	if err != nil {
		return nil, fmt.Errorf("error instantiating transactor: %w", err)
	}

	nonce, err := s.Backend.PendingNonceAt(ctx, address)
	if err != nil {
		return nil, fmt.Errorf("error getting nonce for wallet: %w", err)
	}

	auth.Context = ctx
	auth.Nonce = new(big.Int).SetUint64(nonce)
	auth.Value = big.NewInt(0)
	auth.GasLimit = s.GasLimit
	return auth, nil
}

func (s *Session) CallOpts(ctx context.Context) *bind.CallOpts {
	return &bind.CallOpts{Context: ctx}
}

// WaitMined blocks until the receipt is available and checks its status.
func (s *Session) WaitMined(ctx context.Context, tx *ethtypes.Transaction) (*ethtypes.Receipt, error) {
	receipt, err := bind.WaitMined(ctx, s.Backend, tx)
	if err != nil {
		return nil, fmt.Errorf("error waiting for tx %s: %w", tx.Hash().Hex(), err)
	}
	if receipt.Status != ethtypes.ReceiptStatusSuccessful {
		return receipt, fmt.Errorf("%w for tx %s", ErrReceiptFailed, tx.Hash().Hex())
	}
	return receipt, nil
}

// WaitDeployed waits for a contract creation and returns the created address.
func (s *Session) WaitDeployed(ctx context.Context, tx *ethtypes.Transaction) (common.Address, error) {
	if _, err := s.WaitMined(ctx, tx); err != nil {
		return common.Address{}, err
	}
	addr, err := bind.WaitDeployed(ctx, s.Backend, tx)
	if err != nil {
		return common.Address{}, fmt.Errorf("error confirming deployment %s: %w", tx.Hash().Hex(), err)
	}
	return addr, nil
}

func (s *Session) HasCode(ctx context.Context, addr common.Address) (bool, error) {
	code, err := s.Backend.CodeAt(ctx, addr, nil)
	if err != nil {
		return false, err
	}
	return len(code) > 0, nil
}

var _ Backend = (*ethclient.Client)(nil)
