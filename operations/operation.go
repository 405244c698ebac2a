// Package operations implements the operator commands run against an
// already deployed bridge. Each command kind is a typed struct; raw CLI
// values are turned into one by Parse, which rejects anything malformed
// before a single call reaches the network.
package operations

import (
	"fmt"
	"math/big"
	"strings"

	"btsbridge/EVMRPC/btscore"
	"btsbridge/units"

	ethav "github.com/KOREAN139/ethereum-address-validator"
	"github.com/ethereum/go-ethereum/common"
)

type Method string

const (
	MethodRegisterToken        Method = "registerToken"
	MethodFundBSH              Method = "fundBSH"
	MethodFundBOB              Method = "fundBOB"
	MethodGetBalance           Method = "getBalance"
	MethodApprove              Method = "approve"
	MethodTransfer             Method = "transfer"
	MethodCalculateTransferFee Method = "calculateTransferFee"
)

var Methods = []Method{
	MethodRegisterToken,
	MethodFundBSH,
	MethodFundBOB,
	MethodGetBalance,
	MethodApprove,
	MethodTransfer,
	MethodCalculateTransferFee,
}

// fundBSH always sends this many whole tokens
const FundBSHAmount = "100"

// Operation is one of the structs below. The set is closed.
type Operation interface {
	Method() Method
	operation()
}

type RegisterToken struct {
	Name         string
	Symbol       string
	FeeNumerator *big.Int
	FixedFee     *big.Int
	Token        common.Address
	From         string
}

// FundBSH sends FundBSHAmount reference tokens to the bridge holding address.
type FundBSH struct {
	To   common.Address
	From string
}

type FundBOB struct {
	To     common.Address
	Amount units.Amount
	From   string
}

type GetBalance struct {
	Account common.Address
}

type Approve struct {
	Spender common.Address
	Amount  units.Amount
	From    string
}

// Transfer starts a cross-chain transfer of the configured coin to a BTP address.
type Transfer struct {
	Amount units.Amount
	To     string
	From   string
}

// CalculateTransferFee uses the registry reference token when Token is zero.
type CalculateTransferFee struct {
	Token  common.Address
	Amount units.Amount
}

func (RegisterToken) Method() Method        { return MethodRegisterToken }
func (FundBSH) Method() Method              { return MethodFundBSH }
func (FundBOB) Method() Method              { return MethodFundBOB }
func (GetBalance) Method() Method           { return MethodGetBalance }
func (Approve) Method() Method              { return MethodApprove }
func (Transfer) Method() Method             { return MethodTransfer }
func (CalculateTransferFee) Method() Method { return MethodCalculateTransferFee }

func (RegisterToken) operation()        {}
func (FundBSH) operation()              {}
func (FundBOB) operation()              {}
func (GetBalance) operation()           {}
func (Approve) operation()              {}
func (Transfer) operation()             {}
func (CalculateTransferFee) operation() {}

// Args holds the raw command line values, named after the flags.
type Args struct {
	Method       string
	Name         string
	Symbol       string
	Addr         string
	Amount       string
	From         string
	To           string
	FeeNumerator string
	FixedFee     string
}

func missing(flag string) error {
	return fmt.Errorf("%w: --%s", ErrMissingArgument, flag)
}

func parseAddress(flag, s string) (common.Address, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return common.Address{}, missing(flag)
	}
	if !common.IsHexAddress(s) {
		return common.Address{}, fmt.Errorf("%w: --%s %q is not an address", ErrInvalidArgument, flag, s)
	}
	addr := common.HexToAddress(s)
	if err := ethav.Validate(addr.Hex()); err != nil {
		return common.Address{}, fmt.Errorf("%w: --%s %q: %s", ErrInvalidArgument, flag, s, err.Error())
	}
	if addr == (common.Address{}) {
		return common.Address{}, fmt.Errorf("%w: --%s is the zero address", ErrInvalidArgument, flag)
	}
	return addr, nil
}

func parseAmount(flag, s string, allowZero bool) (units.Amount, error) {
	if strings.TrimSpace(s) == "" {
		return units.Amount{}, missing(flag)
	}
	a, err := units.ParseAmount(s)
	if err != nil {
		return units.Amount{}, fmt.Errorf("%w: --%s: %s", ErrInvalidArgument, flag, err.Error())
	}
	if !allowZero && a.IsZero() {
		return units.Amount{}, fmt.Errorf("%w: --%s must be positive", ErrInvalidArgument, flag)
	}
	return a, nil
}

func parseUint(flag, s string) (*big.Int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, missing(flag)
	}
	v, ok := new(big.Int).SetString(s, 10)
	if !ok || v.Sign() < 0 {
		return nil, fmt.Errorf("%w: --%s %q is not a non-negative integer", ErrInvalidArgument, flag, s)
	}
	if !units.FitsUint256(v) {
		return nil, fmt.Errorf("%w: --%s does not fit in uint%d", ErrInvalidArgument, flag, units.MaxBits)
	}
	return v, nil
}

func required(flag, s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", missing(flag)
	}
	return s, nil
}

// Parse builds the typed operation for args.Method.
func Parse(args Args) (Operation, error) {
	switch Method(args.Method) {
	case MethodRegisterToken:
		return parseRegisterToken(args)

	case MethodFundBSH:
		to, err := parseAddress("addr", args.Addr)
		if err != nil {
			return nil, err
		}
		return FundBSH{To: to, From: args.From}, nil

	case MethodFundBOB:
		to, err := parseAddress("addr", args.Addr)
		if err != nil {
			return nil, err
		}
		amount, err := parseAmount("amount", args.Amount, false)
		if err != nil {
			return nil, err
		}
		return FundBOB{To: to, Amount: amount, From: args.From}, nil

	case MethodGetBalance:
		account, err := parseAddress("addr", args.Addr)
		if err != nil {
			return nil, err
		}
		return GetBalance{Account: account}, nil

	case MethodApprove:
		spender, err := parseAddress("addr", args.Addr)
		if err != nil {
			return nil, err
		}
		amount, err := parseAmount("amount", args.Amount, true)
		if err != nil {
			return nil, err
		}
		from, err := required("from", args.From)
		if err != nil {
			return nil, err
		}
		return Approve{Spender: spender, Amount: amount, From: from}, nil

	case MethodTransfer:
		amount, err := parseAmount("amount", args.Amount, false)
		if err != nil {
			return nil, err
		}
		to, err := required("to", args.To)
		if err != nil {
			return nil, err
		}
		from, err := required("from", args.From)
		if err != nil {
			return nil, err
		}
		return Transfer{Amount: amount, To: to, From: from}, nil

	case MethodCalculateTransferFee:
		op := CalculateTransferFee{}
		if strings.TrimSpace(args.Addr) != "" {
			token, err := parseAddress("addr", args.Addr)
			if err != nil {
				return nil, err
			}
			op.Token = token
		}
		amount, err := parseAmount("amount", args.Amount, true)
		if err != nil {
			return nil, err
		}
		op.Amount = amount
		return op, nil
	}

	return nil, fmt.Errorf("%w: %q", ErrUnknownMethod, args.Method)
}

func parseRegisterToken(args Args) (Operation, error) {
	name, err := required("name", args.Name)
	if err != nil {
		return nil, err
	}
	symbol, err := required("symbol", args.Symbol)
	if err != nil {
		return nil, err
	}
	fee, err := parseUint("feeNumerator", args.FeeNumerator)
	if err != nil {
		return nil, err
	}
	if fee.Cmp(big.NewInt(btscore.FeeDenominator)) > 0 {
		return nil, fmt.Errorf("%w: --feeNumerator %s exceeds %d", ErrInvalidArgument, fee, btscore.FeeDenominator)
	}
	fixed, err := parseUint("fixedFee", args.FixedFee)
	if err != nil {
		return nil, err
	}
	token, err := parseAddress("addr", args.Addr)
	if err != nil {
		return nil, err
	}
	return RegisterToken{
		Name:         name,
		Symbol:       symbol,
		FeeNumerator: fee,
		FixedFee:     fixed,
		Token:        token,
		From:         args.From,
	}, nil
}
