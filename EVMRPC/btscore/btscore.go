// Package btscore binds the administrative surface of the BTS Core contract.
package btscore

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
)

const BTSCoreABI = `[
{"type":"function","name":"initialize","stateMutability":"nonpayable","inputs":[{"name":"_nativeCoinName","type":"string"},{"name":"_feeNumerator","type":"uint256"},{"name":"_fixedFee","type":"uint256"}],"outputs":[]},
{"type":"function","name":"updateBTSPeriphery","stateMutability":"nonpayable","inputs":[{"name":"_btsPeriphery","type":"address"}],"outputs":[]},
{"type":"function","name":"register","stateMutability":"nonpayable","inputs":[{"name":"_name","type":"string"},{"name":"_symbol","type":"string"},{"name":"_decimals","type":"uint8"},{"name":"_feeNumerator","type":"uint256"},{"name":"_fixedFee","type":"uint256"},{"name":"_addr","type":"address"}],"outputs":[]},
{"type":"function","name":"transfer","stateMutability":"nonpayable","inputs":[{"name":"_coinName","type":"string"},{"name":"_value","type":"uint256"},{"name":"_to","type":"string"}],"outputs":[]},
{"type":"function","name":"calculateTransferFee","stateMutability":"view","inputs":[{"name":"_coinAddress","type":"address"},{"name":"_value","type":"uint256"}],"outputs":[{"name":"_value","type":"uint256"},{"name":"_fee","type":"uint256"}]},
{"type":"function","name":"coinNames","stateMutability":"view","inputs":[],"outputs":[{"name":"_names","type":"string[]"}]}
]`

// fee numerators are expressed over this denominator (100 = 1%)
const FeeDenominator = 10000

var parsedABI = func() abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(BTSCoreABI))
	if err != nil {
		panic(err)
	}
	return parsed
}()

func ABI() abi.ABI {
	return parsedABI
}

// Fee is the result of calculateTransferFee, both in base units.
type Fee struct {
	Value *big.Int
	Fee   *big.Int
}

type BTSCore struct {
	Address  common.Address
	contract *bind.BoundContract
}

func NewBTSCore(address common.Address, backend bind.ContractBackend) (*BTSCore, error) {
	return &BTSCore{
		Address:  address,
		contract: bind.NewBoundContract(address, parsedABI, backend, backend, backend),
	}, nil
}

func (c *BTSCore) UpdateBTSPeriphery(opts *bind.TransactOpts, periphery common.Address) (*ethtypes.Transaction, error) {
	return c.contract.Transact(opts, "updateBTSPeriphery", periphery)
}

func (c *BTSCore) Register(
	opts *bind.TransactOpts,
	name string,
	symbol string,
	decimals uint8,
	feeNumerator *big.Int,
	fixedFee *big.Int,
	addr common.Address,
) (*ethtypes.Transaction, error) {
	return c.contract.Transact(opts, "register", name, symbol, decimals, feeNumerator, fixedFee, addr)
}

func (c *BTSCore) Transfer(opts *bind.TransactOpts, coinName string, value *big.Int, to string) (*ethtypes.Transaction, error) {
	return c.contract.Transact(opts, "transfer", coinName, value, to)
}

func (c *BTSCore) CalculateTransferFee(opts *bind.CallOpts, coin common.Address, value *big.Int) (Fee, error) {
	var out []interface{}
	if err := c.contract.Call(opts, &out, "calculateTransferFee", coin, value); err != nil {
		return Fee{}, err
	}
	if len(out) != 2 {
		return Fee{}, fmt.Errorf("error at calculateTransferFee call, expected 2 return values, got %d", len(out))
	}
	v, ok := out[0].(*big.Int)
	if !ok {
		return Fee{}, fmt.Errorf("error at calculateTransferFee call, expected *big.Int, got %T", out[0])
	}
	f, ok := out[1].(*big.Int)
	if !ok {
		return Fee{}, fmt.Errorf("error at calculateTransferFee call, expected *big.Int, got %T", out[1])
	}
	return Fee{Value: v, Fee: f}, nil
}

func (c *BTSCore) CoinNames(opts *bind.CallOpts) ([]string, error) {
	var out []interface{}
	if err := c.contract.Call(opts, &out, "coinNames"); err != nil {
		return nil, err
	}
	return *abi.ConvertType(out[0], new([]string)).(*[]string), nil
}
