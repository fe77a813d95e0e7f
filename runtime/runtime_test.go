// Copyright (c) 2025 The Aurum developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package runtime

import (
	"testing"

	"github.com/aurumchain/aurum/aurum"
	"github.com/aurumchain/aurum/cry"
	"github.com/aurumchain/aurum/dgp"
	"github.com/aurumchain/aurum/lvldb"
	"github.com/aurumchain/aurum/state"
	"github.com/aurumchain/aurum/tx"
	"github.com/aurumchain/aurum/utxo"
	"github.com/aurumchain/aurum/vm"
	"github.com/aurumchain/aurum/vm/vmtest"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	funding   = wire.OutPoint{Hash: chainhash.Hash{0xf0}, Index: 0}
	ownerKey  = mustKey()
	owner     = cry.KeyToAddress(ownerKey)
	slotKey   = aurum.BytesToBytes32([]byte("slot"))
	slotValue = aurum.BytesToBytes32([]byte("value"))
)

func mustKey() *cry.PrivateKey {
	k, err := cry.GenerateKey()
	if err != nil {
		panic(err)
	}
	return k
}

type fixture struct {
	state *state.State
	utxos *utxo.View
}

func newFixture(t *testing.T) *fixture {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	f := &fixture{state.New(db), utxo.NewView(db)}
	f.utxos.AddCoin(funding, &utxo.Coin{Value: 100 * aurum.COIN, Script: tx.PayToAddrScript(owner), Height: 1})
	return f
}

func params() dgp.GasParams {
	cfg := aurum.DefaultChainConfig()
	return dgp.GenesisParams(&cfg)
}

func (f *fixture) runtime(p dgp.GasParams) *Runtime {
	return New(f.state, f.utxos, vm.BlockContext{Height: 10, Time: 1000}, p, vmtest.Executor{})
}

func createScript(t *testing.T, gasLimit, gasPrice uint64, s *vmtest.Script) []byte {
	script, err := tx.NewCreateScript(gasLimit, gasPrice, s.Encode())
	require.NoError(t, err)
	return script
}

func callScript(t *testing.T, gasLimit, gasPrice uint64, s *vmtest.Script, to aurum.Address) []byte {
	script, err := tx.NewCallScript(gasLimit, gasPrice, s.Encode(), to)
	require.NoError(t, err)
	return script
}

// a block creating a contract, then calling it with value in a reverted call
func testBlock(t *testing.T) tx.Transactions {
	create := new(tx.Builder).
		Input(funding, nil).
		Output(90*aurum.COIN, tx.PayToAddrScript(owner)).
		Output(0, createScript(t, 100000, 40, &vmtest.Script{
			Writes:  []vmtest.Write{{Key: slotKey, Value: slotValue}},
			GasUsed: 30000,
		})).
		Build()
	contract := tx.CreateContractAddress(create.ID(), 1)

	call := new(tx.Builder).
		Input(create.OutPoint(0), nil).
		Output(80*aurum.COIN, tx.PayToAddrScript(owner)).
		Output(aurum.COIN, callScript(t, 50000, 40, &vmtest.Script{
			Writes:    []vmtest.Write{{Key: slotKey, Value: aurum.Bytes32{}}},
			GasUsed:   20000,
			Exception: uint8(vm.ExceptionRevert),
		}, contract)).
		Build()
	return tx.Transactions{create, call}
}

func TestExecuteBlock(t *testing.T) {
	f := newFixture(t)
	rt := f.runtime(params())
	assert.Equal(t, Pending, rt.Phase())

	txs := testBlock(t)
	receipts, err := rt.ExecuteBlock(txs)
	require.NoError(t, err)
	assert.Equal(t, Finalizing, rt.Phase())
	require.Len(t, receipts, 2)

	contract := tx.CreateContractAddress(txs[0].ID(), 1)
	assert.Equal(t, contract, receipts[0].ContractAddress)
	assert.Equal(t, owner, receipts[0].Sender)
	assert.Equal(t, vm.ExceptionNone, receipts[0].Excepted)
	assert.Equal(t, uint64(30000), receipts[0].GasUsed)
	assert.Len(t, receipts[0].Deltas, 1)

	assert.Equal(t, vm.ExceptionRevert, receipts[1].Excepted)
	assert.Equal(t, uint64(20000), receipts[1].GasUsed)
	assert.Empty(t, receipts[1].Deltas)
	assert.Equal(t, uint64(50000), rt.GasUsed())
	assert.Equal(t, receipts.GasUsed(), rt.GasUsed())

	// storage kept from the creation, the reverted write is gone
	v, err := f.state.GetStorage(contract, slotKey)
	require.NoError(t, err)
	assert.Equal(t, slotValue, v)
	code, _ := f.state.GetCode(contract)
	assert.NotEmpty(t, code)
	bal, _ := f.state.GetBalance(contract)
	assert.Zero(t, bal)

	// value of the reverted call is refunded at the contract output
	refund, err := f.utxos.GetCoin(txs[1].OutPoint(1))
	require.NoError(t, err)
	require.NotNil(t, refund)
	assert.Equal(t, aurum.COIN, refund.Value)
	got, _ := tx.ExtractOwner(refund.Script)
	assert.Equal(t, owner, got)

	// contract outputs never become coins
	c, _ := f.utxos.GetCoin(txs[0].OutPoint(1))
	assert.Nil(t, c)
	c, _ = f.utxos.GetCoin(txs[0].OutPoint(0))
	assert.Nil(t, c, "spent by the second tx")

	require.NoError(t, rt.Commit())
	assert.Equal(t, Committed, rt.Phase())

	_, err = rt.ExecuteBlock(txs)
	assert.ErrorIs(t, err, ErrBadPhase)
}

func TestExecuteBlockDeterministic(t *testing.T) {
	txs := testBlock(t)
	run := func() ([]byte, []byte) {
		f := newFixture(t)
		_, err := f.runtime(params()).ExecuteBlock(txs)
		require.NoError(t, err)
		sc, err := f.state.Changes()
		require.NoError(t, err)
		uc, err := f.utxos.Changes()
		require.NoError(t, err)
		var a, b []byte
		for _, c := range sc {
			a = append(append(a, c.Key...), c.Value...)
		}
		for _, c := range uc {
			b = append(append(b, c.Key...), c.Value...)
		}
		return a, b
	}
	s1, u1 := run()
	s2, u2 := run()
	assert.Equal(t, s1, s2)
	assert.Equal(t, u1, u2)
}

func TestCallWithValue(t *testing.T) {
	f := newFixture(t)
	to := aurum.BytesToAddress([]byte("some contract"))
	trx := new(tx.Builder).
		Input(funding, nil).
		Output(2*aurum.COIN, callScript(t, 20000, 40, &vmtest.Script{GasUsed: 1000}, to)).
		Build()
	receipts, err := f.runtime(params()).ExecuteBlock(tx.Transactions{trx})
	require.NoError(t, err)
	assert.Equal(t, vm.ExceptionNone, receipts[0].Excepted)
	bal, _ := f.state.GetBalance(to)
	assert.Equal(t, uint64(2*aurum.COIN), bal)
}

func TestCreateWithValue(t *testing.T) {
	f := newFixture(t)
	trx := new(tx.Builder).
		Input(funding, nil).
		Output(aurum.COIN, createScript(t, 20000, 40, &vmtest.Script{})).
		Build()
	receipts, err := f.runtime(params()).ExecuteBlock(tx.Transactions{trx})
	require.NoError(t, err)
	assert.Equal(t, vm.ExceptionCreateWithValue, receipts[0].Excepted)
	assert.Equal(t, uint64(20000), receipts[0].GasUsed)

	refund, _ := f.utxos.GetCoin(trx.OutPoint(0))
	require.NotNil(t, refund)
	assert.Equal(t, aurum.COIN, refund.Value)
}

func TestBlockFatal(t *testing.T) {
	small := params()
	small.BlockGasLimit = 50000

	tests := []struct {
		name   string
		params dgp.GasParams
		build  func(t *testing.T) *tx.Transaction
		want   error
	}{
		{"gas price", params(), func(t *testing.T) *tx.Transaction {
			return new(tx.Builder).Input(funding, nil).Output(0, createScript(t, 20000, 1, &vmtest.Script{})).Build()
		}, ErrGasPriceTooLow},
		{"gas limit", params(), func(t *testing.T) *tx.Transaction {
			return new(tx.Builder).Input(funding, nil).Output(0, createScript(t, 100, 40, &vmtest.Script{})).Build()
		}, ErrGasLimitTooLow},
		{"block gas", small, func(t *testing.T) *tx.Transaction {
			return new(tx.Builder).Input(funding, nil).
				Output(0, createScript(t, 40000, 40, &vmtest.Script{GasUsed: 20000})).
				Output(0, createScript(t, 40000, 40, &vmtest.Script{GasUsed: 20000})).
				Build()
		}, ErrGasExceedsBlockLimit},
		{"fee", params(), func(t *testing.T) *tx.Transaction {
			return new(tx.Builder).Input(funding, nil).
				Output(100*aurum.COIN-1000, tx.PayToAddrScript(owner)).
				Output(0, createScript(t, 20000, 40, &vmtest.Script{})).
				Build()
		}, ErrFeeNotEnough},
		{"plain overspend", params(), func(t *testing.T) *tx.Transaction {
			return new(tx.Builder).Input(funding, nil).Output(100*aurum.COIN+1, tx.PayToAddrScript(owner)).Build()
		}, ErrFeeNotEnough},
		{"plain missing input", params(), func(t *testing.T) *tx.Transaction {
			return new(tx.Builder).Input(wire.OutPoint{Index: 7}, nil).Output(0, tx.PayToAddrScript(owner)).Build()
		}, ErrMissingInputs},
		{"missing input", params(), func(t *testing.T) *tx.Transaction {
			return new(tx.Builder).Input(wire.OutPoint{Index: 7}, nil).Output(0, createScript(t, 20000, 40, &vmtest.Script{})).Build()
		}, ErrMissingInputs},
		{"coinbase", params(), func(t *testing.T) *tx.Transaction {
			return new(tx.Builder).CoinbaseInput(10).Output(0, createScript(t, 20000, 40, &vmtest.Script{})).Build()
		}, ErrNoSender},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			rt := f.runtime(tt.params)
			_, err := rt.ExecuteBlock(tx.Transactions{tt.build(t)})
			assert.ErrorIs(t, err, tt.want)
			assert.Equal(t, Rejected, rt.Phase())
			assert.ErrorIs(t, rt.Commit(), ErrBadPhase)
		})
	}
}

func TestNoSender(t *testing.T) {
	f := newFixture(t)
	odd := wire.OutPoint{Hash: chainhash.Hash{0xf1}}
	f.utxos.AddCoin(odd, &utxo.Coin{Value: aurum.COIN, Script: []byte{0x51}})
	trx := new(tx.Builder).Input(odd, nil).Output(0, createScript(t, 20000, 40, &vmtest.Script{})).Build()
	_, err := f.runtime(params()).ExecuteBlock(tx.Transactions{trx})
	assert.ErrorIs(t, err, ErrNoSender)
}

func TestExecError(t *testing.T) {
	f := newFixture(t)
	rt := New(f.state, f.utxos, vm.BlockContext{Network: 100}, params(), vmtest.Executor{})
	trx := new(tx.Builder).Input(funding, nil).Output(0, createScript(t, 20000, 40, &vmtest.Script{})).Build()
	_, err := rt.ExecuteBlock(tx.Transactions{trx})
	var execErr *vm.ExecError
	assert.ErrorAs(t, err, &execErr)
}
