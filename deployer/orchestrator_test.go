package deployer

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"testing"

	"btsbridge/artifacts"
	"btsbridge/types"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const bmcAddr = "0x610178dA211FEF7D417bC0e6FeD39F05609AD788"

// fakeChain confirms everything it is asked to deploy and records the calls in order.
type fakeChain struct {
	calls     []string
	code      map[common.Address]bool
	next      int64
	linkErr   error
	deployErr map[string]error
	initArgs  map[string][]interface{}
}

func newFakeChain() *fakeChain {
	return &fakeChain{
		code:      map[common.Address]bool{},
		deployErr: map[string]error{},
		initArgs:  map[string][]interface{}{},
	}
}

func (f *fakeChain) newAddress() common.Address {
	f.next++
	addr := common.BigToAddress(big.NewInt(0x1000 + f.next))
	f.code[addr] = true
	return addr
}

func (f *fakeChain) DeployUpgradeAdmin(ctx context.Context) (common.Address, error) {
	f.calls = append(f.calls, "admin")
	return f.newAddress(), nil
}

func (f *fakeChain) DeployProxy(ctx context.Context, contract string, admin common.Address, initArgs ...interface{}) (common.Address, common.Address, error) {
	f.calls = append(f.calls, "proxy:"+contract)
	if err := f.deployErr[contract]; err != nil {
		return common.Address{}, common.Address{}, err
	}
	f.initArgs[contract] = initArgs
	impl := f.newAddress()
	return f.newAddress(), impl, nil
}

func (f *fakeChain) UpdatePeriphery(ctx context.Context, core, periphery common.Address) error {
	f.calls = append(f.calls, fmt.Sprintf("link:%s:%s", core.Hex(), periphery.Hex()))
	return f.linkErr
}

func (f *fakeChain) HasCode(ctx context.Context, addr common.Address) (bool, error) {
	return f.code[addr], nil
}

// every recorded call except HasCode sends a transaction
func (f *fakeChain) transactions() int {
	return len(f.calls)
}

type memStore struct {
	records map[string]*types.DeploymentRecord
}

func newMemStore() *memStore {
	return &memStore{records: map[string]*types.DeploymentRecord{}}
}

func (m *memStore) SaveDeployment(rec *types.DeploymentRecord) error {
	if _, ok := m.records[rec.Network]; ok {
		return types.ErrRecordExists
	}
	m.records[rec.Network] = rec
	return nil
}

func (m *memStore) GetDeployment(network string) (*types.DeploymentRecord, error) {
	return m.records[network], nil
}

func validParams(network string) Params {
	return Params{
		Network:      network,
		Config:       types.BridgeConfig{CoinName: "BNB", CoinFeePercentage: "100", FixedFeeAmount: "5000"},
		BMCPeriphery: bmcAddr,
	}
}

func TestRunDeploysInOrder(t *testing.T) {
	require := require.New(t)

	chain := newFakeChain()
	store := newMemStore()
	o := New(chain, zap.NewNop().Sugar(), WithStores(store), WithEphemeralNetworks("development"))

	report, err := o.Run(context.Background(), validParams("bsc_testnet"))
	require.NoError(err)
	require.Equal(OutcomeDeployed, report.Outcome)

	rec := report.Record
	require.True(rec.Linked)
	require.Len(chain.calls, 4)
	require.Equal("admin", chain.calls[0])
	require.Equal("proxy:"+artifacts.BTSCore, chain.calls[1])
	require.Equal("proxy:"+artifacts.BTSPeriphery, chain.calls[2])
	require.Equal(fmt.Sprintf("link:%s:%s", rec.CoreAddress, rec.PeripheryAddress), chain.calls[3])

	// periphery initialized with the bmc and the deployed core
	args := chain.initArgs[artifacts.BTSPeriphery]
	require.Equal(common.HexToAddress(bmcAddr), args[0])
	require.Equal(common.HexToAddress(rec.CoreAddress), args[1])

	coreArgs := chain.initArgs[artifacts.BTSCore]
	require.Equal("BNB", coreArgs[0])
	require.Equal(big.NewInt(100), coreArgs[1])
	require.Equal(big.NewInt(5000), coreArgs[2])

	require.NotEmpty(rec.UpgradeAdmin)
	require.NotEqual(rec.CoreAddress, rec.CoreImplementation)
	require.Same(rec, store.records["bsc_testnet"])
}

func TestRunSkipsEphemeralNetwork(t *testing.T) {
	chain := newFakeChain()
	store := newMemStore()
	o := New(chain, zap.NewNop().Sugar(), WithStores(store), WithEphemeralNetworks("development"))

	// configuration is not even looked at on ephemeral networks
	report, err := o.Run(context.Background(), Params{Network: "development"})
	require.NoError(t, err)
	require.Equal(t, OutcomeSkipped, report.Outcome)
	require.Nil(t, report.Record)
	require.Zero(t, chain.transactions())
	require.Empty(t, store.records)
}

func TestRunRejectsInvalidConfigBeforeSending(t *testing.T) {
	tests := []struct {
		name   string
		config types.BridgeConfig
		bmc    string
	}{
		{"negative fee", types.BridgeConfig{CoinName: "BNB", CoinFeePercentage: "-1", FixedFeeAmount: "0"}, bmcAddr},
		{"negative fixed fee", types.BridgeConfig{CoinName: "BNB", CoinFeePercentage: "1", FixedFeeAmount: "-5"}, bmcAddr},
		{"fee over denominator", types.BridgeConfig{CoinName: "BNB", CoinFeePercentage: "10001", FixedFeeAmount: "0"}, bmcAddr},
		{"fixed fee over uint256", types.BridgeConfig{CoinName: "BNB", CoinFeePercentage: "1", FixedFeeAmount: "115792089237316195423570985008687907853269984665640564039457584007913129639936"}, bmcAddr},
		{"fractional fee", types.BridgeConfig{CoinName: "BNB", CoinFeePercentage: "0.5", FixedFeeAmount: "0"}, bmcAddr},
		{"empty coin", types.BridgeConfig{CoinFeePercentage: "1", FixedFeeAmount: "0"}, bmcAddr},
		{"empty fee", types.BridgeConfig{CoinName: "BNB", FixedFeeAmount: "0"}, bmcAddr},
		{"bad bmc", types.BridgeConfig{CoinName: "BNB", CoinFeePercentage: "1", FixedFeeAmount: "0"}, "bmc"},
		{"zero bmc", types.BridgeConfig{CoinName: "BNB", CoinFeePercentage: "1", FixedFeeAmount: "0"}, "0x0000000000000000000000000000000000000000"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chain := newFakeChain()
			o := New(chain, zap.NewNop().Sugar())

			_, err := o.Run(context.Background(), Params{Network: "bsc", Config: tt.config, BMCPeriphery: tt.bmc})
			require.ErrorIs(t, err, ErrInvalidConfig)
			require.Zero(t, chain.transactions())
		})
	}
}

func TestDeployPeripheryRequiresDeployedCore(t *testing.T) {
	require := require.New(t)

	chain := newFakeChain()
	o := New(chain, zap.NewNop().Sugar())
	ctx := context.Background()

	_, err := o.DeployPeriphery(ctx, bmcAddr, common.Address{})
	require.ErrorIs(err, ErrCoreNotDeployed)

	// an address nobody deployed to
	_, err = o.DeployPeriphery(ctx, bmcAddr, common.HexToAddress("0x00000000000000000000000000000000000000AB"))
	require.ErrorIs(err, ErrCoreNotDeployed)
	require.Empty(chain.calls)

	core, err := o.DeployCore(ctx, validParams("bsc").Config)
	require.NoError(err)
	periphery, err := o.DeployPeriphery(ctx, bmcAddr, core)
	require.NoError(err)
	require.NotEqual(core, periphery)

	// one admin for both proxies
	require.Equal([]string{"admin", "proxy:" + artifacts.BTSCore, "proxy:" + artifacts.BTSPeriphery}, chain.calls)
}

func TestRunLinkFailureIsIncomplete(t *testing.T) {
	require := require.New(t)

	chain := newFakeChain()
	chain.linkErr = errors.New("execution reverted: Unauthorized")
	store := newMemStore()
	o := New(chain, zap.NewNop().Sugar(), WithStores(store))

	report, err := o.Run(context.Background(), validParams("bsc_testnet"))
	require.Error(err)

	var incomplete *IncompleteDeploymentError
	require.ErrorAs(err, &incomplete)
	require.ErrorIs(err, chain.linkErr)
	require.Equal(OutcomeIncomplete, report.Outcome)
	require.False(incomplete.Record.Linked)
	require.NotEmpty(incomplete.Record.CoreAddress)
	require.NotEmpty(incomplete.Record.PeripheryAddress)
	require.Empty(store.records)
}

func TestRunCoreRejectionIsSurfacedOnce(t *testing.T) {
	chain := newFakeChain()
	rejected := errors.New("execution reverted: Initializable: contract is already initialized")
	chain.deployErr[artifacts.BTSCore] = rejected
	o := New(chain, zap.NewNop().Sugar())

	_, err := o.Run(context.Background(), validParams("bsc"))
	require.ErrorIs(t, err, rejected)
	require.Equal(t, []string{"admin", "proxy:" + artifacts.BTSCore}, chain.calls)
}

func TestRunRefusesSecondDeployment(t *testing.T) {
	chain := newFakeChain()
	store := newMemStore()
	store.records["bsc"] = &types.DeploymentRecord{Network: "bsc", CoreAddress: "0x01"}
	o := New(chain, zap.NewNop().Sugar(), WithStores(store))

	_, err := o.Run(context.Background(), validParams("bsc"))
	require.ErrorIs(t, err, types.ErrRecordExists)
	require.Empty(t, chain.calls)
}

func TestRunReusesUpgradeAdmin(t *testing.T) {
	require := require.New(t)

	chain := newFakeChain()
	admin := chain.newAddress()
	o := New(chain, zap.NewNop().Sugar(), WithUpgradeAdmin(admin))

	report, err := o.Run(context.Background(), validParams("bsc"))
	require.NoError(err)
	require.Equal(admin.Hex(), report.Record.UpgradeAdmin)
	require.NotContains(chain.calls, "admin")

	missing := New(newFakeChain(), zap.NewNop().Sugar(), WithUpgradeAdmin(common.HexToAddress(bmcAddr)))
	_, err = missing.Run(context.Background(), validParams("bsc"))
	require.ErrorIs(err, ErrInvalidConfig)
}
