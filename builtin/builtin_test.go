// Copyright (c) 2025 The Aurum developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package builtin

import (
	"testing"

	"github.com/aurumchain/aurum/aurum"
	"github.com/aurumchain/aurum/cry"
	"github.com/aurumchain/aurum/delegation"
	"github.com/aurumchain/aurum/dgp"
	"github.com/aurumchain/aurum/lvldb"
	"github.com/aurumchain/aurum/state"
	"github.com/aurumchain/aurum/vm"
	"github.com/aurumchain/aurum/vm/vmtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newState(t *testing.T) *state.State {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return state.New(db)
}

func apply(st *state.State, out *vm.Output) {
	for _, d := range out.Storage {
		st.SetStorage(d.Address, d.Key, d.Value)
	}
}

func TestSelectors(t *testing.T) {
	assert.Equal(t, delegation.AddDelegationSelector[:], DelegationABI.Methods["addDelegation"].ID)
	assert.Equal(t, delegation.RemoveDelegationSelector[:], DelegationABI.Methods["removeDelegation"].ID)
	assert.Equal(t, []byte{0xe1, 0x7f, 0x38, 0x4f}, ParamsABI.Methods["setBlockSize"].ID)
	assert.Equal(t, []byte{0xae, 0x0d, 0xad, 0x60}, ParamsABI.Methods["setBlockGasLimit"].ID)
	assert.Equal(t, []byte{0x60, 0x89, 0x6a, 0x9a}, ParamsABI.Methods["setMinGasPrice"].ID)
}

func TestDelegation(t *testing.T) {
	cfg := aurum.DefaultChainConfig()
	exec := New(&cfg, nil)
	st := newState(t)
	ctx := &vm.BlockContext{Height: 77}

	stakerKey, _ := cry.GenerateKey()
	staker := cry.KeyToAddress(stakerKey)
	delegatorKey, _ := cry.GenerateKey()
	delegator := cry.KeyToAddress(delegatorKey)
	to := aurum.DelegationContractAddress

	data, err := delegation.EncodeAddDelegation(staker, 10, cry.SignPoD(stakerKey, delegator))
	require.NoError(t, err)

	msg := &vm.Message{Sender: delegator, To: &to, GasLimit: 200000, GasPrice: 40, Data: data}
	out, err := exec.Execute(ctx, st, msg, to)
	require.NoError(t, err)
	assert.Equal(t, vm.ExceptionNone, out.Exception)
	assert.Equal(t, uint64(addDelegationGas), out.GasUsed)
	assert.Len(t, out.Storage, delegationSlots)
	require.Len(t, out.Logs, 1)
	assert.Equal(t, aurum.BytesToBytes32(staker[:]), out.Logs[0].Topics[1])
	apply(st, out)

	ledger := delegation.NewLedger(to, st)
	rec, err := ledger.Get(delegator)
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, staker, rec.Staker)
	assert.Equal(t, uint8(10), rec.Fee)
	assert.Equal(t, uint32(77), rec.BlockHeight)
	ok, err := ledger.Verify(delegator, rec)
	require.NoError(t, err)
	assert.True(t, ok)

	// pod signed for someone else
	otherKey, _ := cry.GenerateKey()
	bad, _ := delegation.EncodeAddDelegation(staker, 10, cry.SignPoD(stakerKey, cry.KeyToAddress(otherKey)))
	out, err = exec.Execute(ctx, st, &vm.Message{Sender: delegator, To: &to, GasLimit: 200000, Data: bad}, to)
	require.NoError(t, err)
	assert.Equal(t, vm.ExceptionRevert, out.Exception)
	assert.Empty(t, out.Storage)

	// out of gas
	out, err = exec.Execute(ctx, st, &vm.Message{Sender: delegator, To: &to, GasLimit: 1000, Data: data}, to)
	require.NoError(t, err)
	assert.Equal(t, vm.ExceptionOutOfGas, out.Exception)
	assert.Equal(t, uint64(1000), out.GasUsed)

	// not payable
	out, _ = exec.Execute(ctx, st, &vm.Message{Sender: delegator, To: &to, GasLimit: 200000, Value: 1, Data: data}, to)
	assert.Equal(t, vm.ExceptionRevert, out.Exception)

	// remove
	out, err = exec.Execute(ctx, st, &vm.Message{Sender: delegator, To: &to, GasLimit: 200000, Data: delegation.EncodeRemoveDelegation()}, to)
	require.NoError(t, err)
	assert.Equal(t, vm.ExceptionNone, out.Exception)
	apply(st, out)
	rec, _ = ledger.Get(delegator)
	assert.Nil(t, rec)

	// nothing left to remove
	out, _ = exec.Execute(ctx, st, &vm.Message{Sender: delegator, To: &to, GasLimit: 200000, Data: delegation.EncodeRemoveDelegation()}, to)
	assert.Equal(t, vm.ExceptionRevert, out.Exception)
}

func TestParams(t *testing.T) {
	admin := aurum.BytesToAddress([]byte("admin"))
	cfg := aurum.DefaultChainConfig()
	cfg.GovernanceAdmins = []aurum.Address{admin}
	exec := New(&cfg, nil)
	st := newState(t)
	to := aurum.DGPContractAddress
	ctx := &vm.BlockContext{Height: 5}

	data, err := ParamsABI.Pack("setBlockSize", uint32(1_000_000))
	require.NoError(t, err)

	out, err := exec.Execute(ctx, st, &vm.Message{Sender: aurum.Address{1}, To: &to, GasLimit: 100000, Data: data}, to)
	require.NoError(t, err)
	assert.Equal(t, vm.ExceptionRevert, out.Exception)

	out, err = exec.Execute(ctx, st, &vm.Message{Sender: admin, To: &to, GasLimit: 100000, Data: data}, to)
	require.NoError(t, err)
	assert.Equal(t, vm.ExceptionNone, out.Exception)
	apply(st, out)

	tooSmall, _ := ParamsABI.Pack("setBlockSize", uint32(10))
	out, _ = exec.Execute(ctx, st, &vm.Message{Sender: admin, To: &to, GasLimit: 100000, Data: tooSmall}, to)
	assert.Equal(t, vm.ExceptionRevert, out.Exception)

	db, _ := lvldb.NewMem()
	defer db.Close()
	g := dgp.NewGovernor(db, &cfg)
	require.NoError(t, g.Load())
	change, err := g.Stage(5, st)
	require.NoError(t, err)
	require.NotNil(t, change)
	assert.Equal(t, uint32(1_000_000), change.Params.MaxBlockSerSize)
	assert.Equal(t, uint32(4_000_000), change.Params.MaxBlockWeight)
}

func TestFallback(t *testing.T) {
	cfg := aurum.DefaultChainConfig()
	st := newState(t)
	other := aurum.BytesToAddress([]byte("contract"))
	msg := &vm.Message{To: &other, GasLimit: 50000, Data: (&vmtest.Script{GasUsed: 100}).Encode()}

	out, err := New(&cfg, nil).Execute(&vm.BlockContext{}, st, msg, other)
	require.NoError(t, err)
	assert.Equal(t, vm.ExceptionBadInstruction, out.Exception)
	assert.Equal(t, uint64(50000), out.GasUsed)

	out, err = New(&cfg, vmtest.Executor{}).Execute(&vm.BlockContext{}, st, msg, other)
	require.NoError(t, err)
	assert.Equal(t, vm.ExceptionNone, out.Exception)
	assert.Equal(t, uint64(100), out.GasUsed)

	_, err = New(&cfg, nil).Execute(&vm.BlockContext{Network: 9}, st, msg, other)
	var execErr *vm.ExecError
	assert.ErrorAs(t, err, &execErr)

	// unknown selector
	to := aurum.DelegationContractAddress
	out, _ = New(&cfg, nil).Execute(&vm.BlockContext{}, st, &vm.Message{To: &to, GasLimit: 1000, Data: []byte{1, 2, 3, 4}}, to)
	assert.Equal(t, vm.ExceptionRevert, out.Exception)
}
