package EVMRPC

import (
	"crypto/ecdsa"
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

var ErrUnknownAccount = errors.New("no private key configured for account")

// Signers holds the operator keys, addressable by alias or by address.
type Signers struct {
	keys     map[common.Address]*ecdsa.PrivateKey
	aliases  map[string]common.Address
	fallback *common.Address
}

func NewSigners(defaultKey string, accounts map[string]string) (*Signers, error) {
	s := &Signers{
		keys:    make(map[common.Address]*ecdsa.PrivateKey),
		aliases: make(map[string]common.Address),
	}

	if defaultKey != "" {
		addr, err := s.add(defaultKey)
		if err != nil {
			return nil, fmt.Errorf("error instantiating default private key: %w", err)
		}
		s.fallback = &addr
	}

	for alias, key := range accounts {
		addr, err := s.add(key)
		if err != nil {
			return nil, fmt.Errorf("error instantiating private key for account %q: %w", alias, err)
		}
		s.aliases[strings.ToLower(alias)] = addr
	}

	return s, nil
}

func (s *Signers) add(hexKey string) (common.Address, error) {
	key, err := crypto.HexToECDSA(strings.TrimPrefix(hexKey, "0x"))
	if err != nil {
		return common.Address{}, err
	}
	addr := crypto.PubkeyToAddress(key.PublicKey)
	s.keys[addr] = key
	return addr, nil
}

// Resolve finds the key for an alias or hex address; empty means the default signer.
func (s *Signers) Resolve(from string) (*ecdsa.PrivateKey, common.Address, error) {
	if from == "" {
		if s.fallback == nil {
			return nil, common.Address{}, fmt.Errorf("%w: no default signer", ErrUnknownAccount)
		}
		return s.keys[*s.fallback], *s.fallback, nil
	}

	if addr, ok := s.aliases[strings.ToLower(from)]; ok {
		return s.keys[addr], addr, nil
	}

	if common.IsHexAddress(from) {
		addr := common.HexToAddress(from)
		if key, ok := s.keys[addr]; ok {
			return key, addr, nil
		}
	}

	return nil, common.Address{}, fmt.Errorf("%w %s", ErrUnknownAccount, from)
}

func (s *Signers) Default() (common.Address, bool) {
	if s.fallback == nil {
		return common.Address{}, false
	}
	return *s.fallback, true
}
