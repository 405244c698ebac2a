package main

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"btsbridge/config"
	"btsbridge/operations"
	"btsbridge/redis"
	"btsbridge/registry"
	"btsbridge/types"

	"github.com/alicebob/miniredis/v2"
	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const (
	devnetCore  = "0x5FbDB2315678afecb367f032d93F642f64180aa3"
	devnetToken = "0xe7f1725E7734CE288F8367e1Bb143E90bb3F0512"
	mainnetCore = "0x9fE46736679d2D9a65F0992F2272dE9f3c7fa6e0"
	mainnetBTS  = "0xCf7Ed3AccA5a467e9e704C703E8D87F634fB0Fc9"
	bridgeToken = "0x70997970C51812dc3A010C7d01b50e0d17dc79C8"
)

// useConfig points the command globals at a devnet style address file that
// only has the legacy section, and at mr when it is not nil.
func useConfig(t *testing.T, mr *miniredis.Miniredis) *config.Configuration {
	path := filepath.Join(t.TempDir(), "addresses.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
  "solidity": {"BSHProxy": "`+devnetCore+`", "BEP20TKN": "`+devnetToken+`"}
}`), 0o600))

	c := &config.Configuration{}
	c.Bridge.AddressesFile = path
	c.Bridge.Token = bridgeToken
	if mr != nil {
		port, err := strconv.Atoi(mr.Port())
		require.NoError(t, err)
		c.Server.RedisHost = mr.Host()
		c.Server.RedisPort = port
	}

	cfg, log, network = c, zap.NewNop().Sugar(), "bsc_mainnet"
	t.Cleanup(func() {
		cfg, log, network = nil, nil, ""
		bshArgs = operations.Args{}
	})
	return c
}

func TestLoadRegistryPrefersNetworkRecordOverLegacySection(t *testing.T) {
	require := require.New(t)

	mr := miniredis.RunT(t)
	useConfig(t, mr)

	store := redis.New(mr.Addr())
	defer store.Close()
	require.NoError(store.SaveDeployment(&types.DeploymentRecord{
		Network:          "bsc_mainnet",
		CoreAddress:      mainnetCore,
		PeripheryAddress: mainnetBTS,
		Linked:           true,
	}))

	reg, err := loadRegistry(store)
	require.NoError(err)
	require.Equal(common.HexToAddress(mainnetCore), reg.Core)
	require.Equal(common.HexToAddress(mainnetBTS), reg.Periphery)
	require.Equal(common.HexToAddress(bridgeToken), reg.Token)
}

func TestLoadRegistryWithoutRecordIsConfigError(t *testing.T) {
	useConfig(t, nil)

	reg, err := loadRegistry(nil)
	require.ErrorIs(t, err, errConfig)
	require.Contains(t, err.Error(), types.ErrRecordNotFound.Error())
	require.Nil(t, reg)
	require.Equal(t, 2, exitCode(err))
}

func TestLoadRegistryLegacySectionWhenConfigured(t *testing.T) {
	c := useConfig(t, nil)
	c.Bridge.LegacySection = registry.LegacySection
	c.Bridge.Token = ""

	reg, err := loadRegistry(nil)
	require.NoError(t, err)
	require.Equal(t, "bsc_mainnet", reg.Network)
	require.Equal(t, common.HexToAddress(devnetCore), reg.Core)
	require.Equal(t, common.HexToAddress(devnetToken), reg.Token)
}

func TestRunBSHJournalsBadInput(t *testing.T) {
	require := require.New(t)

	mr := miniredis.RunT(t)
	useConfig(t, mr)
	bshArgs = operations.Args{Method: "mint", Addr: bridgeToken}

	cmd := &cobra.Command{}
	cmd.SetContext(context.Background())
	err := runBSH(cmd, nil)
	require.ErrorIs(err, operations.ErrUnknownMethod)
	require.Equal(2, exitCode(err))

	store := redis.New(mr.Addr())
	defer store.Close()
	failed, err := store.FindAllOperationsByStatus(types.OperationFailed)
	require.NoError(err)
	require.Len(failed, 1)
	require.Equal("mint", failed[0].Method)
	require.Equal("bsc_mainnet", failed[0].Network)
}
