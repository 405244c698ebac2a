package deployer

import (
	"context"
	"fmt"

	"btsbridge/EVMRPC"
	"btsbridge/EVMRPC/btscore"
	"btsbridge/artifacts"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
)

type ArtifactLoader interface {
	Load(name string) (*artifacts.Artifact, error)
}

// EVMBackend deploys transparent upgradeable proxies from compiled artifacts.
type EVMBackend struct {
	session *EVMRPC.Session
	loader  ArtifactLoader
	from    string
}

func NewEVMBackend(session *EVMRPC.Session, loader ArtifactLoader, from string) *EVMBackend {
	return &EVMBackend{session: session, loader: loader, from: from}
}

func (b *EVMBackend) deploy(ctx context.Context, art *artifacts.Artifact, params ...interface{}) (common.Address, error) {
	opts, err := b.session.TransactOpts(ctx, b.from)
	if err != nil {
		return common.Address{}, err
	}
	_, tx, _, err := bind.DeployContract(opts, art.ABI, art.Bytecode, b.session.Backend, params...)
	if err != nil {
		return common.Address{}, fmt.Errorf("error sending %s deployment: %w", art.Name, err)
	}
	addr, err := b.session.WaitDeployed(ctx, tx)
	if err != nil {
		return common.Address{}, fmt.Errorf("error deploying %s: %w", art.Name, err)
	}
	return addr, nil
}

func (b *EVMBackend) DeployUpgradeAdmin(ctx context.Context) (common.Address, error) {
	art, err := b.loader.Load(artifacts.ProxyAdmin)
	if err != nil {
		return common.Address{}, err
	}
	return b.deploy(ctx, art)
}

func (b *EVMBackend) DeployProxy(ctx context.Context, contract string, admin common.Address, initArgs ...interface{}) (common.Address, common.Address, error) {
	logic, err := b.loader.Load(contract)
	if err != nil {
		return common.Address{}, common.Address{}, err
	}
	proxyArt, err := b.loader.Load(artifacts.TransparentUpgradeableProxy)
	if err != nil {
		return common.Address{}, common.Address{}, err
	}
	// pack before sending anything so a bad argument costs nothing
	data, err := logic.InitializerData(initArgs...)
	if err != nil {
		return common.Address{}, common.Address{}, err
	}

	impl, err := b.deploy(ctx, logic)
	if err != nil {
		return common.Address{}, common.Address{}, err
	}
	// the initializer runs inside the proxy constructor, a revert there fails the deployment
	proxy, err := b.deploy(ctx, proxyArt, impl, admin, data)
	if err != nil {
		return common.Address{}, impl, err
	}
	return proxy, impl, nil
}

func (b *EVMBackend) UpdatePeriphery(ctx context.Context, core, periphery common.Address) error {
	contract, err := btscore.NewBTSCore(core, b.session.Backend)
	if err != nil {
		return err
	}
	opts, err := b.session.TransactOpts(ctx, b.from)
	if err != nil {
		return err
	}
	tx, err := contract.UpdateBTSPeriphery(opts, periphery)
	if err != nil {
		return err
	}
	_, err = b.session.WaitMined(ctx, tx)
	return err
}

func (b *EVMBackend) HasCode(ctx context.Context, addr common.Address) (bool, error) {
	return b.session.HasCode(ctx, addr)
}
