package ierc20

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
)

func TestTransferPacking(t *testing.T) {
	require := require.New(t)

	to := common.HexToAddress("0x70997970C51812dc3A010C7d01b50e0d17dc79C8")
	data, err := parsedABI.Pack("transfer", to, big.NewInt(1))
	require.NoError(err)
	// transfer(address,uint256)
	require.Equal([]byte{0xa9, 0x05, 0x9c, 0xbb}, data[:4])

	_, ok := parsedABI.Events["Transfer"]
	require.True(ok)
}
