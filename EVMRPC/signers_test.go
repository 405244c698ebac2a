package EVMRPC

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
)

// well known development keys
const (
	aliceKey  = "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"
	aliceAddr = "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"
	bobKey    = "0x59c6995e998f97a5a0044966f0945389dc9e86dae88c7a8412f4603b6b78690d"
	bobAddr   = "0x70997970C51812dc3A010C7d01b50e0d17dc79C8"
)

func TestSignersResolve(t *testing.T) {
	require := require.New(t)

	s, err := NewSigners(aliceKey, map[string]string{"Bob": bobKey})
	require.NoError(err)

	_, addr, err := s.Resolve("")
	require.NoError(err)
	require.Equal(common.HexToAddress(aliceAddr), addr)

	_, addr, err = s.Resolve("bob")
	require.NoError(err)
	require.Equal(common.HexToAddress(bobAddr), addr)

	key, addr, err := s.Resolve(bobAddr)
	require.NoError(err)
	require.NotNil(key)
	require.Equal(common.HexToAddress(bobAddr), addr)

	_, _, err = s.Resolve("0x000000000000000000000000000000000000dEaD")
	require.ErrorIs(err, ErrUnknownAccount)

	_, _, err = s.Resolve("carol")
	require.ErrorIs(err, ErrUnknownAccount)
}

func TestSignersWithoutDefault(t *testing.T) {
	s, err := NewSigners("", nil)
	require.NoError(t, err)

	_, ok := s.Default()
	require.False(t, ok)

	_, _, err = s.Resolve("")
	require.ErrorIs(t, err, ErrUnknownAccount)
}

func TestSignersRejectBadKey(t *testing.T) {
	_, err := NewSigners("not-a-key", nil)
	require.Error(t, err)

	_, err = NewSigners("", map[string]string{"bob": "1234"})
	require.Error(t, err)
}
