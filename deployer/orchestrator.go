// Package deployer brings a bridge instance into existence on a network:
// an upgradeable Core, an upgradeable Periphery bound to it, and the link
// registering the Periphery on the Core.
package deployer

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"btsbridge/EVMRPC/btscore"
	"btsbridge/artifacts"
	"btsbridge/types"
	"btsbridge/units"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Outcome int

const (
	OutcomeDeployed Outcome = iota
	OutcomeSkipped
	OutcomeIncomplete
)

func (o Outcome) String() string {
	switch o {
	case OutcomeDeployed:
		return "deployed"
	case OutcomeSkipped:
		return "skipped"
	case OutcomeIncomplete:
		return "incomplete"
	}
	return fmt.Sprintf("Outcome(%d)", int(o))
}

// Backend performs the on-chain steps. Every method returns only after
// the transactions it sent are confirmed.
type Backend interface {
	DeployUpgradeAdmin(ctx context.Context) (common.Address, error)
	// DeployProxy deploys the logic contract and a proxy initialized with initArgs.
	DeployProxy(ctx context.Context, contract string, admin common.Address, initArgs ...interface{}) (proxy common.Address, implementation common.Address, err error)
	UpdatePeriphery(ctx context.Context, core, periphery common.Address) error
	HasCode(ctx context.Context, addr common.Address) (bool, error)
}

type RecordStore interface {
	SaveDeployment(rec *types.DeploymentRecord) error
	GetDeployment(network string) (*types.DeploymentRecord, error)
}

type Params struct {
	Network      string
	Config       types.BridgeConfig
	BMCPeriphery string
}

type Report struct {
	Outcome Outcome
	Record  *types.DeploymentRecord
}

// CoreConfig is a validated BridgeConfig.
type CoreConfig struct {
	CoinName     string
	FeeNumerator *big.Int
	FixedFee     *big.Int
}

// Orchestrator runs the deployment of one network. It is not safe for concurrent use.
type Orchestrator struct {
	backend   Backend
	stores    []RecordStore
	log       *zap.SugaredLogger
	ephemeral map[string]bool

	admin common.Address
	impls map[string]common.Address
}

type Option func(*Orchestrator)

// WithUpgradeAdmin reuses an existing ProxyAdmin instead of deploying one.
func WithUpgradeAdmin(admin common.Address) Option {
	return func(o *Orchestrator) {
		o.admin = admin
	}
}

func WithStores(stores ...RecordStore) Option {
	return func(o *Orchestrator) {
		o.stores = append(o.stores, stores...)
	}
}

func WithEphemeralNetworks(networks ...string) Option {
	return func(o *Orchestrator) {
		for _, n := range networks {
			o.ephemeral[n] = true
		}
	}
}

func New(backend Backend, log *zap.SugaredLogger, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		backend:   backend,
		log:       log,
		ephemeral: map[string]bool{},
		impls:     map[string]common.Address{},
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func parseUint(field, s string) (*big.Int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("%w: %s is empty", ErrInvalidConfig, field)
	}
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, fmt.Errorf("%w: %s %q is not an integer", ErrInvalidConfig, field, s)
	}
	if v.Sign() < 0 {
		return nil, fmt.Errorf("%w: %s cannot be negative", ErrInvalidConfig, field)
	}
	if !units.FitsUint256(v) {
		return nil, fmt.Errorf("%w: %s does not fit in uint%d", ErrInvalidConfig, field, units.MaxBits)
	}
	return v, nil
}

func ParseBridgeConfig(bc types.BridgeConfig) (CoreConfig, error) {
	if strings.TrimSpace(bc.CoinName) == "" {
		return CoreConfig{}, fmt.Errorf("%w: coin name is empty", ErrInvalidConfig)
	}
	fee, err := parseUint("coin fee", bc.CoinFeePercentage)
	if err != nil {
		return CoreConfig{}, err
	}
	if fee.Cmp(big.NewInt(btscore.FeeDenominator)) > 0 {
		return CoreConfig{}, fmt.Errorf("%w: coin fee %s exceeds %d", ErrInvalidConfig, fee, btscore.FeeDenominator)
	}
	fixed, err := parseUint("fixed fee", bc.FixedFeeAmount)
	if err != nil {
		return CoreConfig{}, err
	}
	return CoreConfig{CoinName: bc.CoinName, FeeNumerator: fee, FixedFee: fixed}, nil
}

func parseAddress(field, s string) (common.Address, error) {
	if !common.IsHexAddress(s) {
		return common.Address{}, fmt.Errorf("%w: %s %q is not an address", ErrInvalidConfig, field, s)
	}
	addr := common.HexToAddress(s)
	if addr == (common.Address{}) {
		return common.Address{}, fmt.Errorf("%w: %s is the zero address", ErrInvalidConfig, field)
	}
	return addr, nil
}

func (o *Orchestrator) upgradeAdmin(ctx context.Context) (common.Address, error) {
	if o.admin != (common.Address{}) {
		ok, err := o.backend.HasCode(ctx, o.admin)
		if err != nil {
			return common.Address{}, err
		}
		if !ok {
			return common.Address{}, fmt.Errorf("%w: proxy admin %s has no code", ErrInvalidConfig, o.admin.Hex())
		}
		return o.admin, nil
	}

	o.log.Infof("Deploying proxy admin")
	admin, err := o.backend.DeployUpgradeAdmin(ctx)
	if err != nil {
		return common.Address{}, fmt.Errorf("error deploying proxy admin: %w", err)
	}
	o.log.Infof("Proxy admin deployed at %s", admin.Hex())
	o.admin = admin
	return admin, nil
}

// DeployCore deploys the Core behind a proxy, initialized once with the bridge configuration.
func (o *Orchestrator) DeployCore(ctx context.Context, bc types.BridgeConfig) (common.Address, error) {
	cfg, err := ParseBridgeConfig(bc)
	if err != nil {
		return common.Address{}, err
	}
	admin, err := o.upgradeAdmin(ctx)
	if err != nil {
		return common.Address{}, err
	}

	o.log.Infof("Start deploy proxy %s (coin %s, fee %s, fixed fee %s)", artifacts.BTSCore, cfg.CoinName, cfg.FeeNumerator, cfg.FixedFee)
	proxy, impl, err := o.backend.DeployProxy(ctx, artifacts.BTSCore, admin, cfg.CoinName, cfg.FeeNumerator, cfg.FixedFee)
	if err != nil {
		return common.Address{}, fmt.Errorf("error deploying %s: %w", artifacts.BTSCore, err)
	}
	o.impls[artifacts.BTSCore] = impl
	o.log.Infof("%s proxy deployed at %s (implementation %s)", artifacts.BTSCore, proxy.Hex(), impl.Hex())
	return proxy, nil
}

// DeployPeriphery deploys the Periphery behind a proxy bound to the messaging endpoint and the Core.
// The Core must already be deployed.
func (o *Orchestrator) DeployPeriphery(ctx context.Context, bmcPeriphery string, core common.Address) (common.Address, error) {
	bmc, err := parseAddress("BMC periphery address", bmcPeriphery)
	if err != nil {
		return common.Address{}, err
	}
	if core == (common.Address{}) {
		return common.Address{}, fmt.Errorf("%w: no core address", ErrCoreNotDeployed)
	}
	deployed, err := o.backend.HasCode(ctx, core)
	if err != nil {
		return common.Address{}, fmt.Errorf("error checking core %s: %w", core.Hex(), err)
	}
	if !deployed {
		return common.Address{}, fmt.Errorf("%w: no code at %s", ErrCoreNotDeployed, core.Hex())
	}
	admin, err := o.upgradeAdmin(ctx)
	if err != nil {
		return common.Address{}, err
	}

	o.log.Infof("Start deploy proxy %s (bmc %s, core %s)", artifacts.BTSPeriphery, bmc.Hex(), core.Hex())
	proxy, impl, err := o.backend.DeployProxy(ctx, artifacts.BTSPeriphery, admin, bmc, core)
	if err != nil {
		return common.Address{}, fmt.Errorf("error deploying %s: %w", artifacts.BTSPeriphery, err)
	}
	o.impls[artifacts.BTSPeriphery] = impl
	o.log.Infof("%s proxy deployed at %s (implementation %s)", artifacts.BTSPeriphery, proxy.Hex(), impl.Hex())
	return proxy, nil
}

// LinkPeriphery registers the periphery as the authorized counterpart of the core.
func (o *Orchestrator) LinkPeriphery(ctx context.Context, core, periphery common.Address) error {
	if core == (common.Address{}) || periphery == (common.Address{}) {
		return fmt.Errorf("%w: cannot link %s to %s", ErrCoreNotDeployed, periphery.Hex(), core.Hex())
	}
	o.log.Infof("Updating BTS periphery of %s to %s", core.Hex(), periphery.Hex())
	if err := o.backend.UpdatePeriphery(ctx, core, periphery); err != nil {
		return fmt.Errorf("error updating BTS periphery: %w", err)
	}
	return nil
}

func (o *Orchestrator) existing(network string) (*types.DeploymentRecord, error) {
	for _, s := range o.stores {
		rec, err := s.GetDeployment(network)
		if err != nil {
			return nil, err
		}
		if rec != nil {
			return rec, nil
		}
	}
	return nil, nil
}

// Run performs the whole sequence: gate, core, periphery, link, persist.
func (o *Orchestrator) Run(ctx context.Context, p Params) (*Report, error) {
	if o.ephemeral[p.Network] {
		o.log.Infof("Network %s is ephemeral, skipping proxy deployment", p.Network)
		return &Report{Outcome: OutcomeSkipped}, nil
	}

	// validate everything before the first transaction
	if _, err := ParseBridgeConfig(p.Config); err != nil {
		return nil, err
	}
	if _, err := parseAddress("BMC periphery address", p.BMCPeriphery); err != nil {
		return nil, err
	}
	if rec, err := o.existing(p.Network); err != nil {
		return nil, fmt.Errorf("error reading deployment records: %w", err)
	} else if rec != nil {
		return nil, fmt.Errorf("%w: %s (core %s)", types.ErrRecordExists, p.Network, rec.CoreAddress)
	}

	core, err := o.DeployCore(ctx, p.Config)
	if err != nil {
		return nil, err
	}

	periphery, err := o.DeployPeriphery(ctx, p.BMCPeriphery, core)
	if err != nil {
		return nil, err
	}

	rec := &types.DeploymentRecord{
		ID:                      uuid.New().String(),
		Network:                 p.Network,
		CoreAddress:             core.Hex(),
		CoreImplementation:      o.impls[artifacts.BTSCore].Hex(),
		PeripheryAddress:        periphery.Hex(),
		PeripheryImplementation: o.impls[artifacts.BTSPeriphery].Hex(),
		UpgradeAdmin:            o.admin.Hex(),
		BMCAddress:              common.HexToAddress(p.BMCPeriphery).Hex(),
		Config:                  p.Config,
		TsCreated:               time.Now().Unix(),
	}

	if err := o.LinkPeriphery(ctx, core, periphery); err != nil {
		incomplete := &IncompleteDeploymentError{Record: rec, Err: err}
		o.log.Errorf("%s", incomplete.Error())
		return &Report{Outcome: OutcomeIncomplete, Record: rec}, incomplete
	}
	rec.Linked = true

	var persistErr error
	for _, s := range o.stores {
		if err := s.SaveDeployment(rec); err != nil {
			o.log.Errorf("Error saving deployment record: %s", err.Error())
			persistErr = errors.Join(persistErr, err)
		}
	}
	if persistErr != nil {
		return &Report{Outcome: OutcomeDeployed, Record: rec}, fmt.Errorf("deployment linked but record not persisted: %w", persistErr)
	}

	o.log.Infof("Bridge deployed on %s: core %s, periphery %s", rec.Network, rec.CoreAddress, rec.PeripheryAddress)
	return &Report{Outcome: OutcomeDeployed, Record: rec}, nil
}
