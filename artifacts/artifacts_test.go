package artifacts

import (
	"math/big"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const coreArtifact = `{
  "contractName": "BTSCore",
  "abi": [
    {
      "type": "function",
      "name": "initialize",
      "stateMutability": "nonpayable",
      "inputs": [
        {"name": "_nativeCoinName", "type": "string"},
        {"name": "_feeNumerator", "type": "uint256"},
        {"name": "_fixedFee", "type": "uint256"}
      ],
      "outputs": []
    }
  ],
  "bytecode": "0x6080604052"
}`

func TestLoad(t *testing.T) {
	require := require.New(t)

	dir := t.TempDir()
	require.NoError(os.WriteFile(filepath.Join(dir, "BTSCore.json"), []byte(coreArtifact), 0o600))

	a, err := NewLoader(dir).Load(BTSCore)
	require.NoError(err)
	require.Equal(BTSCore, a.Name)
	require.Equal([]byte{0x60, 0x80, 0x60, 0x40, 0x52}, a.Bytecode)

	data, err := a.InitializerData("ICX", big.NewInt(100), big.NewInt(5000))
	require.NoError(err)
	// selector + 3 words + string length + string data
	require.Len(data, 4+32*5)

	_, err = a.InitializerData("ICX")
	require.Error(err)
}

func TestLoadMissing(t *testing.T) {
	_, err := NewLoader(t.TempDir()).Load(BTSPeriphery)
	require.Error(t, err)
}

func TestParseRejectsEmptyBytecode(t *testing.T) {
	_, err := Parse("Iface", []byte(`{"abi": [], "bytecode": "0x"}`))
	require.ErrorIs(t, err, ErrNoBytecode)
}

func TestParseRejectsUnlinkedBytecode(t *testing.T) {
	_, err := Parse("Lib", []byte(`{"abi": [], "bytecode": "0x60__ParseAddress____"}`))
	require.Error(t, err)
}
