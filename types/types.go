package types

import "errors"

// Deployment-time parameters of the Core contract.
// Values are kept as the decimal strings they were configured with,
// the orchestrator parses and validates them before anything is sent.
type BridgeConfig struct {
	CoinName          string `yaml:"coin_name" json:"coinName"`
	CoinFeePercentage string `yaml:"coin_fee" json:"coinFee"`   // fee numerator
	FixedFeeAmount    string `yaml:"fixed_fee" json:"fixedFee"` // in base units
}

// Deployment record is created once per network, after the periphery
// is linked to the core. It is never modified afterwards.
type DeploymentRecord struct {
	ID                      string
	Network                 string
	CoreAddress             string // proxy address
	CoreImplementation      string
	PeripheryAddress        string // proxy address, bound to CoreAddress at initialization
	PeripheryImplementation string
	UpgradeAdmin            string // ProxyAdmin owning both proxies
	BMCAddress              string
	Config                  BridgeConfig
	Linked                  bool
	TsCreated               int64
}

// Operation record is a journal entry for a single operator command.
type OperationRecord struct {
	ID        string
	Network   string
	Method    string
	Status    string // "succeeded" or "failed"
	TxHash    string
	Result    string // human readable result (balance, fee, receipt summary)
	Message   string // error detail for failed operations
	TsCreated int64
}

const (
	OperationSucceeded = "succeeded"
	OperationFailed    = "failed"
)

// returned by record stores when a network already has a completed deployment
var ErrRecordExists = errors.New("deployment record already exists for network")

var ErrRecordNotFound = errors.New("deployment record not found")
