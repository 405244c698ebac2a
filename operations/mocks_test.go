package operations

import (
	"context"
	"math/big"

	"btsbridge/EVMRPC/btscore"
	"btsbridge/types"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/mock"
)

type mockCore struct {
	mock.Mock
}

func (m *mockCore) Register(opts *bind.TransactOpts, name string, symbol string, decimals uint8, feeNumerator *big.Int, fixedFee *big.Int, addr common.Address) (*ethtypes.Transaction, error) {
	ret := m.Called(opts, name, symbol, decimals, feeNumerator, fixedFee, addr)
	tx, _ := ret.Get(0).(*ethtypes.Transaction)
	return tx, ret.Error(1)
}

func (m *mockCore) Transfer(opts *bind.TransactOpts, coinName string, value *big.Int, to string) (*ethtypes.Transaction, error) {
	ret := m.Called(opts, coinName, value, to)
	tx, _ := ret.Get(0).(*ethtypes.Transaction)
	return tx, ret.Error(1)
}

func (m *mockCore) CalculateTransferFee(opts *bind.CallOpts, coin common.Address, value *big.Int) (btscore.Fee, error) {
	ret := m.Called(opts, coin, value)
	return ret.Get(0).(btscore.Fee), ret.Error(1)
}

type mockToken struct {
	mock.Mock
}

func (m *mockToken) BalanceOf(opts *bind.CallOpts, account common.Address) (*big.Int, error) {
	ret := m.Called(opts, account)
	v, _ := ret.Get(0).(*big.Int)
	return v, ret.Error(1)
}

func (m *mockToken) Transfer(opts *bind.TransactOpts, to common.Address, amount *big.Int) (*ethtypes.Transaction, error) {
	ret := m.Called(opts, to, amount)
	tx, _ := ret.Get(0).(*ethtypes.Transaction)
	return tx, ret.Error(1)
}

func (m *mockToken) Approve(opts *bind.TransactOpts, spender common.Address, amount *big.Int) (*ethtypes.Transaction, error) {
	ret := m.Called(opts, spender, amount)
	tx, _ := ret.Get(0).(*ethtypes.Transaction)
	return tx, ret.Error(1)
}

type mockChain struct {
	mock.Mock
}

func (m *mockChain) TransactOpts(ctx context.Context, from string) (*bind.TransactOpts, error) {
	ret := m.Called(ctx, from)
	opts, _ := ret.Get(0).(*bind.TransactOpts)
	return opts, ret.Error(1)
}

func (m *mockChain) CallOpts(ctx context.Context) *bind.CallOpts {
	return &bind.CallOpts{Context: ctx}
}

func (m *mockChain) WaitMined(ctx context.Context, tx *ethtypes.Transaction) (*ethtypes.Receipt, error) {
	ret := m.Called(ctx, tx)
	receipt, _ := ret.Get(0).(*ethtypes.Receipt)
	return receipt, ret.Error(1)
}

type memJournal struct {
	records []*types.OperationRecord
}

func (j *memJournal) AppendOperation(op *types.OperationRecord) error {
	j.records = append(j.records, op)
	return nil
}

// ledgerToken keeps balances in memory so transfers are visible to later reads.
type ledgerToken struct {
	owner    common.Address
	balances map[common.Address]*big.Int
	nonce    uint64
}

func newLedgerToken(owner common.Address, supply *big.Int) *ledgerToken {
	return &ledgerToken{
		owner:    owner,
		balances: map[common.Address]*big.Int{owner: new(big.Int).Set(supply)},
	}
}

func (l *ledgerToken) get(a common.Address) *big.Int {
	if b, ok := l.balances[a]; ok {
		return b
	}
	return new(big.Int)
}

func (l *ledgerToken) BalanceOf(opts *bind.CallOpts, account common.Address) (*big.Int, error) {
	return new(big.Int).Set(l.get(account)), nil
}

func (l *ledgerToken) Transfer(opts *bind.TransactOpts, to common.Address, amount *big.Int) (*ethtypes.Transaction, error) {
	l.balances[l.owner] = new(big.Int).Sub(l.get(l.owner), amount)
	l.balances[to] = new(big.Int).Add(l.get(to), amount)
	l.nonce++
	return newTx(l.nonce), nil
}

func (l *ledgerToken) Approve(opts *bind.TransactOpts, spender common.Address, amount *big.Int) (*ethtypes.Transaction, error) {
	l.nonce++
	return newTx(l.nonce), nil
}

// instantChain mines everything immediately.
type instantChain struct{}

func (instantChain) TransactOpts(ctx context.Context, from string) (*bind.TransactOpts, error) {
	return &bind.TransactOpts{Context: ctx}, nil
}

func (instantChain) CallOpts(ctx context.Context) *bind.CallOpts {
	return &bind.CallOpts{Context: ctx}
}

func (instantChain) WaitMined(ctx context.Context, tx *ethtypes.Transaction) (*ethtypes.Receipt, error) {
	return receiptFor(tx, ethtypes.ReceiptStatusSuccessful), nil
}

func newTx(nonce uint64) *ethtypes.Transaction {
	return ethtypes.NewTx(&ethtypes.LegacyTx{Nonce: nonce, Gas: 21000, GasPrice: big.NewInt(1)})
}

func receiptFor(tx *ethtypes.Transaction, status uint64) *ethtypes.Receipt {
	return &ethtypes.Receipt{Status: status, TxHash: tx.Hash(), BlockNumber: big.NewInt(7)}
}

func bigEq(want *big.Int) interface{} {
	return mock.MatchedBy(func(v *big.Int) bool {
		return v != nil && v.Cmp(want) == 0
	})
}
