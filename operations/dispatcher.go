package operations

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"time"

	"btsbridge/EVMRPC"
	"btsbridge/EVMRPC/btscore"
	"btsbridge/EVMRPC/ierc20"
	"btsbridge/config"
	"btsbridge/registry"
	"btsbridge/types"
	"btsbridge/units"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"
)

// Core is the part of the BTS Core contract the operator commands use.
type Core interface {
	Register(opts *bind.TransactOpts, name string, symbol string, decimals uint8, feeNumerator *big.Int, fixedFee *big.Int, addr common.Address) (*ethtypes.Transaction, error)
	Transfer(opts *bind.TransactOpts, coinName string, value *big.Int, to string) (*ethtypes.Transaction, error)
	CalculateTransferFee(opts *bind.CallOpts, coin common.Address, value *big.Int) (btscore.Fee, error)
}

// Token is the reference ERC20 token.
type Token interface {
	BalanceOf(opts *bind.CallOpts, account common.Address) (*big.Int, error)
	Transfer(opts *bind.TransactOpts, to common.Address, amount *big.Int) (*ethtypes.Transaction, error)
	Approve(opts *bind.TransactOpts, spender common.Address, amount *big.Int) (*ethtypes.Transaction, error)
}

// Chain signs transactions and waits for their receipts.
type Chain interface {
	TransactOpts(ctx context.Context, from string) (*bind.TransactOpts, error)
	CallOpts(ctx context.Context) *bind.CallOpts
	WaitMined(ctx context.Context, tx *ethtypes.Transaction) (*ethtypes.Receipt, error)
}

type Journal interface {
	AppendOperation(op *types.OperationRecord) error
}

var (
	_ Core  = (*btscore.BTSCore)(nil)
	_ Token = (*ierc20.Ierc20)(nil)
	_ Chain = (*EVMRPC.Session)(nil)
)

// FeeBreakdown is what the core would deduct from a transfer.
type FeeBreakdown struct {
	Value units.Amount
	Fee   units.Amount
}

// Result is the outcome of one operation. Err is nil or an *OpError.
type Result struct {
	Method  Method
	Receipt *ethtypes.Receipt
	Balance *units.Amount
	Fee     *FeeBreakdown
	Err     error
}

func (r Result) TxHash() string {
	if r.Receipt == nil {
		return ""
	}
	return r.Receipt.TxHash.Hex()
}

func (r Result) String() string {
	var parts []string
	if r.Receipt != nil {
		parts = append(parts, fmt.Sprintf("tx %s mined in block %s", r.Receipt.TxHash.Hex(), r.Receipt.BlockNumber))
	}
	if r.Balance != nil {
		parts = append(parts, fmt.Sprintf("balance: %s", r.Balance))
	}
	if r.Fee != nil {
		parts = append(parts, fmt.Sprintf("amount: %s fee: %s", r.Fee.Value, r.Fee.Fee))
	}
	return strings.Join(parts, ", ")
}

type Dispatcher struct {
	registry     *registry.Registry
	core         Core
	token        Token
	chain        Chain
	transferCoin string
	journal      Journal
	log          *zap.SugaredLogger
}

type Option func(*Dispatcher)

func WithTransferCoin(coin string) Option {
	return func(d *Dispatcher) {
		if coin != "" {
			d.transferCoin = coin
		}
	}
}

func WithJournal(j Journal) Option {
	return func(d *Dispatcher) {
		d.journal = j
	}
}

func NewDispatcher(reg *registry.Registry, core Core, token Token, chain Chain, log *zap.SugaredLogger, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		registry:     reg,
		core:         core,
		token:        token,
		chain:        chain,
		transferCoin: config.DEFAULT_TRANSFER_COIN,
		log:          log,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// NewEVMDispatcher binds the registry contracts on a connected session.
func NewEVMDispatcher(session *EVMRPC.Session, reg *registry.Registry, log *zap.SugaredLogger, opts ...Option) (*Dispatcher, error) {
	if err := reg.Validate(); err != nil {
		return nil, err
	}
	core, err := btscore.NewBTSCore(reg.Core, session.Backend)
	if err != nil {
		return nil, fmt.Errorf("error binding %s: %w", registry.Core, err)
	}
	token, err := ierc20.NewIerc20(reg.Token, session.Backend)
	if err != nil {
		return nil, fmt.Errorf("error binding %s: %w", registry.Token, err)
	}
	return NewDispatcher(reg, core, token, session, log, opts...), nil
}

// Dispatch parses the raw arguments and executes the operation.
// An unknown method or a bad argument is reported without touching the network.
func (d *Dispatcher) Dispatch(ctx context.Context, args Args) Result {
	op, err := Parse(args)
	if err != nil {
		res := Result{Method: Method(args.Method), Err: &OpError{Method: Method(args.Method), Kind: KindConfig, Err: err}}
		d.log.Errorf("%s", res.Err.Error())
		d.record(res)
		return res
	}
	return d.Execute(ctx, op)
}

// Execute runs one operation. It never panics: every failure ends up in Result.Err.
func (d *Dispatcher) Execute(ctx context.Context, op Operation) (res Result) {
	if op == nil {
		res.Err = &OpError{Kind: KindConfig, Err: fmt.Errorf("%w: no operation", ErrUnknownMethod)}
		return res
	}
	res.Method = op.Method()

	defer func() {
		if r := recover(); r != nil {
			res.Err = &OpError{Method: res.Method, Kind: KindInternal, Err: fmt.Errorf("panic: %v", r)}
		}
		if res.Err != nil {
			d.log.Errorf("%s", res.Err.Error())
		} else {
			d.log.Infof("%s: %s", res.Method, res.String())
		}
		d.record(res)
	}()

	var err error
	switch o := op.(type) {
	case RegisterToken:
		d.log.Infof("registerToken %s (%s) at %s", o.Name, o.Symbol, o.Token.Hex())
		res.Receipt, err = d.send(ctx, o.From, func(opts *bind.TransactOpts) (*ethtypes.Transaction, error) {
			return d.core.Register(opts, o.Name, o.Symbol, config.TOKEN_DECIMALS, o.FeeNumerator, o.FixedFee, o.Token)
		})

	case FundBSH:
		d.log.Infof("fundBSH %s", o.To.Hex())
		res, err = d.fund(ctx, res, o.From, o.To, units.MustParseAmount(FundBSHAmount))

	case FundBOB:
		d.log.Infof("fundBOB %s with %s", o.To.Hex(), o.Amount)
		res, err = d.fund(ctx, res, o.From, o.To, o.Amount)

	case GetBalance:
		res.Balance, err = d.balance(ctx, o.Account)

	case Approve:
		d.log.Infof("Approving %s to spend %s tokens of %s", o.Spender.Hex(), o.Amount, o.From)
		res.Receipt, err = d.send(ctx, o.From, func(opts *bind.TransactOpts) (*ethtypes.Transaction, error) {
			return d.token.Approve(opts, o.Spender, o.Amount.Base())
		})

	case Transfer:
		d.log.Infof("Init BTP transfer of %s %s to %s", o.Amount, d.transferCoin, o.To)
		res.Receipt, err = d.send(ctx, o.From, func(opts *bind.TransactOpts) (*ethtypes.Transaction, error) {
			return d.core.Transfer(opts, d.transferCoin, o.Amount.Base(), o.To)
		})

	case CalculateTransferFee:
		res.Fee, err = d.transferFee(ctx, o)

	default:
		err = fmt.Errorf("%w: %T", ErrUnknownMethod, op)
	}

	if err != nil {
		res.Err = newOpError(res.Method, err)
	}
	return res
}

func (d *Dispatcher) send(ctx context.Context, from string, submit func(*bind.TransactOpts) (*ethtypes.Transaction, error)) (*ethtypes.Receipt, error) {
	opts, err := d.chain.TransactOpts(ctx, from)
	if err != nil {
		return nil, err
	}
	tx, err := submit(opts)
	if err != nil {
		return nil, err
	}
	d.log.Infof("Sent tx %s", tx.Hash().Hex())
	return d.chain.WaitMined(ctx, tx)
}

// fund transfers reference tokens and reads the balance back once the receipt is in.
func (d *Dispatcher) fund(ctx context.Context, res Result, from string, to common.Address, amount units.Amount) (Result, error) {
	receipt, err := d.send(ctx, from, func(opts *bind.TransactOpts) (*ethtypes.Transaction, error) {
		return d.token.Transfer(opts, to, amount.Base())
	})
	res.Receipt = receipt
	if err != nil {
		return res, err
	}
	res.Balance, err = d.balance(ctx, to)
	return res, err
}

func (d *Dispatcher) balance(ctx context.Context, account common.Address) (*units.Amount, error) {
	raw, err := d.token.BalanceOf(d.chain.CallOpts(ctx), account)
	if err != nil {
		return nil, fmt.Errorf("error getting balance of %s: %w", account.Hex(), err)
	}
	balance := units.AmountFromBase(raw)
	return &balance, nil
}

func (d *Dispatcher) transferFee(ctx context.Context, o CalculateTransferFee) (*FeeBreakdown, error) {
	token := o.Token
	if token == (common.Address{}) {
		addr, err := d.registry.Lookup(registry.Token)
		if err != nil {
			return nil, err
		}
		token = addr
	}

	requested := o.Amount.Base()
	fee, err := d.core.CalculateTransferFee(d.chain.CallOpts(ctx), token, requested)
	if err != nil {
		return nil, err
	}
	if fee.Value == nil || fee.Fee == nil || new(big.Int).Add(fee.Value, fee.Fee).Cmp(requested) != 0 {
		return nil, fmt.Errorf("%w: value %s + fee %s != %s", ErrInconsistentFee, fee.Value, fee.Fee, requested)
	}
	return &FeeBreakdown{
		Value: units.AmountFromBase(fee.Value),
		Fee:   units.AmountFromBase(fee.Fee),
	}, nil
}

func (d *Dispatcher) record(res Result) {
	if d.journal == nil {
		return
	}
	rec := &types.OperationRecord{
		Method:    string(res.Method),
		Status:    types.OperationSucceeded,
		TxHash:    res.TxHash(),
		Result:    res.String(),
		TsCreated: time.Now().Unix(),
	}
	if d.registry != nil {
		rec.Network = d.registry.Network
	}
	if res.Err != nil {
		rec.Status = types.OperationFailed
		rec.Message = res.Err.Error()
	}
	if err := d.journal.AppendOperation(rec); err != nil {
		d.log.Errorf("Error journaling operation %s: %s", res.Method, err.Error())
	}
}
