package registry

import (
	"errors"
	"fmt"
	"strings"

	"btsbridge/types"

	"github.com/ethereum/go-ethereum/common"
)

// logical contract names
const (
	Core         = "BTSCore"
	Periphery    = "BTSPeriphery"
	Token        = "ERC20TKN"
	UpgradeAdmin = "ProxyAdmin"
)

// names used by the devnet address file
var aliases = map[string]string{
	"bshproxy":     Core,
	"bshcore":      Core,
	"btscore":      Core,
	"bshperiphery": Periphery,
	"btsperiphery": Periphery,
	"bep20tkn":     Token,
	"erc20tkn":     Token,
	"proxyadmin":   UpgradeAdmin,
}

var ErrUnknownContract = errors.New("unknown contract name")

// Registry maps the logical contract names of one bridge deployment to addresses.
type Registry struct {
	Network      string
	Core         common.Address
	Periphery    common.Address
	Token        common.Address
	UpgradeAdmin common.Address
}

func canonical(name string) (string, bool) {
	c, ok := aliases[strings.ToLower(name)]
	return c, ok
}

func (r *Registry) Lookup(name string) (common.Address, error) {
	c, ok := canonical(name)
	if !ok {
		return common.Address{}, fmt.Errorf("%w: %s", ErrUnknownContract, name)
	}
	var addr common.Address
	switch c {
	case Core:
		addr = r.Core
	case Periphery:
		addr = r.Periphery
	case Token:
		addr = r.Token
	case UpgradeAdmin:
		addr = r.UpgradeAdmin
	}
	if addr == (common.Address{}) {
		return common.Address{}, fmt.Errorf("no address for %s on %s", c, r.Network)
	}
	return addr, nil
}

func (r *Registry) set(name, value string) error {
	c, ok := canonical(name)
	if !ok {
		// unrelated entries are allowed in the address file
		return nil
	}
	if !common.IsHexAddress(value) {
		return fmt.Errorf("invalid address %q for %s", value, name)
	}
	addr := common.HexToAddress(value)
	switch c {
	case Core:
		r.Core = addr
	case Periphery:
		r.Periphery = addr
	case Token:
		r.Token = addr
	case UpgradeAdmin:
		r.UpgradeAdmin = addr
	}
	return nil
}

// Validate checks what the operations client cannot work without.
func (r *Registry) Validate() error {
	if r.Core == (common.Address{}) {
		return fmt.Errorf("registry for %s has no %s address", r.Network, Core)
	}
	if r.Token == (common.Address{}) {
		return fmt.Errorf("registry for %s has no %s address", r.Network, Token)
	}
	return nil
}

// FromRecord builds a registry from a completed deployment and the reference token address.
func FromRecord(rec *types.DeploymentRecord, token string) (*Registry, error) {
	if rec == nil {
		return nil, types.ErrRecordNotFound
	}
	r := &Registry{Network: rec.Network}
	entries := map[string]string{
		Core:         rec.CoreAddress,
		Periphery:    rec.PeripheryAddress,
		UpgradeAdmin: rec.UpgradeAdmin,
		Token:        token,
	}
	for name, value := range entries {
		if value == "" {
			continue
		}
		if err := r.set(name, value); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Entries lists the known addresses by logical name.
func (r *Registry) Entries() map[string]string {
	out := map[string]string{}
	for name, addr := range map[string]common.Address{
		Core:         r.Core,
		Periphery:    r.Periphery,
		Token:        r.Token,
		UpgradeAdmin: r.UpgradeAdmin,
	} {
		if addr != (common.Address{}) {
			out[name] = addr.Hex()
		}
	}
	return out
}
