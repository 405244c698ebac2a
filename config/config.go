package config

import (
	"fmt"

	"btsbridge/types"
)

type Configuration struct {
	// Server config
	Server struct {
		Port      int    `yaml:"port"`
		RedisPort int    `yaml:"redis_port"`
		RedisHost string `yaml:"redis_host"`
		LogDir    string `yaml:"log_dir"`
	} `yaml:"server"`
	// default signer, used when no --from is given
	EVM struct {
		PublicAddress string `yaml:"address"`
		PrivateKey    string `yaml:"private_key" envconfig:"EVM_PRIVATE_KEY"`
	} `yaml:"EVM"`
	// named operator accounts (alias -> hex private key)
	Accounts map[string]string `yaml:"accounts"`
	// EVM networks the bridge is deployed on
	Networks map[string]NetworkConfig `yaml:"networks"`
	// deployment parameters, BSH_* variables win over the file
	Deploy struct {
		EphemeralNetworks   []string `yaml:"ephemeral_networks"`
		ArtifactsDir        string   `yaml:"artifacts_dir"`
		ProxyAdmin          string   `yaml:"proxy_admin"`
		CoinName            string   `yaml:"coin_name" envconfig:"BSH_COIN_NAME"`
		CoinFee             string   `yaml:"coin_fee" envconfig:"BSH_COIN_FEE"`
		FixedFee            string   `yaml:"fixed_fee" envconfig:"BSH_FIXED_FEE"`
		BMCPeripheryAddress string   `yaml:"bmc_periphery" envconfig:"BMC_PERIPHERY_ADDRESS"`
	} `yaml:"deploy"`
	// operator client settings
	Bridge struct {
		AddressesFile string `yaml:"addresses_file"`
		TransferCoin  string `yaml:"transfer_coin"`
		Token         string `yaml:"token"` // overrides the reference token from the address file
		// address file section used when the network has none, e.g. "solidity"
		LegacySection string `yaml:"legacy_section"`
	} `yaml:"bridge"`
}

// EVM-chain config
type NetworkConfig struct {
	ChainID  int64    `yaml:"chain_id"`
	RPCList  []string `yaml:"rpc"`
	GasLimit uint64   `yaml:"gas_limit"` // 0 means estimate
}

// 18 decimals for every token registered through the admin tool
const TOKEN_DECIMALS = 18

const (
	DEFAULT_EPHEMERAL_NETWORK = "development"
	DEFAULT_TRANSFER_COIN     = "ETH"
	DEFAULT_ADDRESSES_FILE    = "addresses.json"
	DEFAULT_ARTIFACTS_DIR     = "build/contracts"
	DEFAULT_HTTP_PORT         = 8080
	DEFAULT_LOG_DIR           = "logs"
)

func (c *Configuration) applyDefaults() {
	if len(c.Deploy.EphemeralNetworks) == 0 {
		c.Deploy.EphemeralNetworks = []string{DEFAULT_EPHEMERAL_NETWORK}
	}
	if c.Deploy.ArtifactsDir == "" {
		c.Deploy.ArtifactsDir = DEFAULT_ARTIFACTS_DIR
	}
	if c.Bridge.TransferCoin == "" {
		c.Bridge.TransferCoin = DEFAULT_TRANSFER_COIN
	}
	if c.Bridge.AddressesFile == "" {
		c.Bridge.AddressesFile = DEFAULT_ADDRESSES_FILE
	}
	if c.Server.Port == 0 {
		c.Server.Port = DEFAULT_HTTP_PORT
	}
	if c.Server.LogDir == "" {
		c.Server.LogDir = DEFAULT_LOG_DIR
	}
}

// IsEphemeral reports whether deployments to the network are skipped.
func (c *Configuration) IsEphemeral(network string) bool {
	for _, n := range c.Deploy.EphemeralNetworks {
		if n == network {
			return true
		}
	}
	return false
}

func (c *Configuration) Network(name string) (NetworkConfig, error) {
	n, ok := c.Networks[name]
	if !ok {
		return NetworkConfig{}, fmt.Errorf("network %q is not configured", name)
	}
	if len(n.RPCList) == 0 {
		return NetworkConfig{}, fmt.Errorf("network %q has no RPC endpoints", name)
	}
	return n, nil
}

func (c *Configuration) BridgeConfig() types.BridgeConfig {
	return types.BridgeConfig{
		CoinName:          c.Deploy.CoinName,
		CoinFeePercentage: c.Deploy.CoinFee,
		FixedFeeAmount:    c.Deploy.FixedFee,
	}
}

func (c *Configuration) RedisEnabled() bool {
	return c.Server.RedisHost != ""
}

var RedisStatusSets = map[string]string{
	types.OperationSucceeded: "btsops:succeeded", // operation receipt or read result returned
	types.OperationFailed:    "btsops:failed",    // configuration error, revert or transport failure
}

const REDIS_DEPLOYMENTS_SET = "btsdeployments"
