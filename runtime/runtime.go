// Copyright (c) 2025 The Aurum developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package runtime replays the transactions of a block against the utxo view
// and the contract state.
package runtime

import (
	"fmt"

	"github.com/aurumchain/aurum/aurum"
	"github.com/aurumchain/aurum/dgp"
	"github.com/aurumchain/aurum/state"
	"github.com/aurumchain/aurum/tx"
	"github.com/aurumchain/aurum/utxo"
	"github.com/aurumchain/aurum/vm"
	"github.com/inconshreveable/log15"
	"github.com/pkg/errors"
)

var log = log15.New("pkg", "runtime")

// Errors that reject the whole block.
var (
	ErrGasExceedsBlockLimit = errors.New("gas exceeds block remaining gas")
	ErrGasLimitTooLow       = errors.New("gas limit too low")
	ErrGasPriceTooLow       = errors.New("gas price too low")
	ErrFeeNotEnough         = errors.New("fee does not cover gas")
	ErrNoSender             = errors.New("no sender for contract output")
	ErrBadContractOutput    = errors.New("malformed contract output")
	ErrMissingInputs        = utxo.ErrMissingCoin
	ErrBadPhase             = errors.New("bad runtime phase")
)

// Phase is the lifecycle position of a block execution.
type Phase uint8

// Phases.
const (
	Pending Phase = iota
	Executing
	Finalizing
	Committed
	Rejected
)

func (p Phase) String() string {
	switch p {
	case Pending:
		return "pending"
	case Executing:
		return "executing"
	case Finalizing:
		return "finalizing"
	case Committed:
		return "committed"
	case Rejected:
		return "rejected"
	}
	return fmt.Sprintf("phase(%d)", uint8(p))
}

// Runtime executes one block.
type Runtime struct {
	state    *state.State
	utxos    *utxo.View
	ctx      *vm.BlockContext
	params   dgp.GasParams
	executor vm.Executor

	phase   Phase
	gasUsed uint64
}

// New create a Runtime object. ctx.GasLimit is set from params.
func New(
	st *state.State,
	utxos *utxo.View,
	ctx vm.BlockContext,
	params dgp.GasParams,
	executor vm.Executor,
) *Runtime {
	ctx.GasLimit = params.BlockGasLimit
	return &Runtime{
		state:    st,
		utxos:    utxos,
		ctx:      &ctx,
		params:   params,
		executor: executor,
	}
}

func (rt *Runtime) State() *state.State       { return rt.state }
func (rt *Runtime) UTXOs() *utxo.View         { return rt.utxos }
func (rt *Runtime) Context() *vm.BlockContext { return rt.ctx }
func (rt *Runtime) Params() dgp.GasParams     { return rt.params }
func (rt *Runtime) Phase() Phase              { return rt.phase }
func (rt *Runtime) GasUsed() uint64           { return rt.gasUsed }

// ExecuteBlock executes txs in order. Any returned error rejects the block
// and leaves the runtime in the Rejected phase.
func (rt *Runtime) ExecuteBlock(txs tx.Transactions) (receipts tx.Receipts, err error) {
	if rt.phase != Pending {
		return nil, errors.Wrapf(ErrBadPhase, "execute in %v", rt.phase)
	}
	rt.phase = Executing
	defer func() {
		if err != nil {
			rt.phase = Rejected
			return
		}
		rt.phase = Finalizing
	}()

	for _, t := range txs {
		rs, err := rt.executeTransaction(t)
		if err != nil {
			return nil, errors.WithMessagef(err, "tx %v", t.ID())
		}
		receipts = append(receipts, rs...)
	}
	log.Debug("block executed", "height", rt.ctx.Height, "txs", len(txs), "receipts", len(receipts), "gas", rt.gasUsed)
	return receipts, nil
}

// Commit marks the executed block committed.
func (rt *Runtime) Commit() error {
	if rt.phase != Finalizing {
		return errors.Wrapf(ErrBadPhase, "commit in %v", rt.phase)
	}
	rt.phase = Committed
	return nil
}

// Reject marks the block rejected.
func (rt *Runtime) Reject() {
	rt.phase = Rejected
}

func (rt *Runtime) executeTransaction(t *tx.Transaction) (tx.Receipts, error) {
	calls, err := t.ContractCalls()
	if err != nil {
		return nil, errors.Wrap(ErrBadContractOutput, err.Error())
	}
	if len(calls) == 0 {
		if !t.IsCoinBase() && !t.IsCoinStake() {
			if _, err := rt.checkValue(t); err != nil {
				return nil, err
			}
		}
		return nil, rt.utxos.ApplyTx(t, rt.ctx.Height, rt.ctx.Time)
	}

	sender, err := rt.checkContractTx(t, calls)
	if err != nil {
		return nil, err
	}

	// plain outputs become visible before contracts run
	if err := rt.utxos.ApplyTx(t, rt.ctx.Height, rt.ctx.Time); err != nil {
		return nil, err
	}

	receipts := make(tx.Receipts, 0, len(calls))
	for _, call := range calls {
		r, err := rt.executeCall(t, sender, call)
		if err != nil {
			return nil, err
		}
		receipts = append(receipts, r)
	}
	return receipts, nil
}

// checkContractTx resolves the sender and checks gas rules of all contract outputs.
func (rt *Runtime) checkContractTx(t *tx.Transaction, calls []*tx.ContractCall) (aurum.Address, error) {
	msg := t.MsgTx()
	if t.IsCoinBase() {
		return aurum.Address{}, ErrNoSender
	}

	first, err := rt.utxos.GetCoin(msg.TxIn[0].PreviousOutPoint)
	if err != nil {
		return aurum.Address{}, err
	}
	if first == nil {
		return aurum.Address{}, errors.Wrapf(ErrMissingInputs, "%v", msg.TxIn[0].PreviousOutPoint)
	}
	sender, ok := tx.ExtractOwner(first.Script)
	if !ok {
		return aurum.Address{}, ErrNoSender
	}
	fee, err := rt.checkValue(t)
	if err != nil {
		return aurum.Address{}, err
	}

	var gasFee uint64
	for _, call := range calls {
		cs := call.Script
		if cs.GasLimit < aurum.MinContractGasLimit {
			return aurum.Address{}, errors.Wrapf(ErrGasLimitTooLow, "output %d: %d", call.Index, cs.GasLimit)
		}
		if cs.GasPrice < rt.params.MinGasPrice {
			return aurum.Address{}, errors.Wrapf(ErrGasPriceTooLow, "output %d: %d", call.Index, cs.GasPrice)
		}
		if cs.GasPrice != 0 && cs.GasLimit > ^uint64(0)/cs.GasPrice {
			return aurum.Address{}, errors.Wrapf(ErrFeeNotEnough, "output %d: gas fee overflow", call.Index)
		}
		callFee := cs.GasLimit * cs.GasPrice
		if gasFee+callFee < gasFee {
			return aurum.Address{}, errors.Wrap(ErrFeeNotEnough, "gas fee overflow")
		}
		gasFee += callFee
	}
	if uint64(fee) < gasFee {
		return aurum.Address{}, errors.Wrapf(ErrFeeNotEnough, "fee %d < gas %d", fee, gasFee)
	}
	return sender, nil
}

// checkValue returns the fee of t, the value of its inputs minus the value of its outputs.
func (rt *Runtime) checkValue(t *tx.Transaction) (int64, error) {
	msg := t.MsgTx()
	var inputs int64
	for _, in := range msg.TxIn {
		coin, err := rt.utxos.GetCoin(in.PreviousOutPoint)
		if err != nil {
			return 0, err
		}
		if coin == nil {
			return 0, errors.Wrapf(ErrMissingInputs, "%v", in.PreviousOutPoint)
		}
		inputs += coin.Value
	}
	var outputs int64
	for _, out := range msg.TxOut {
		outputs += out.Value
	}
	if inputs < outputs {
		return 0, errors.Wrapf(ErrFeeNotEnough, "inputs %d < outputs %d", inputs, outputs)
	}
	return inputs - outputs, nil
}

func (rt *Runtime) executeCall(t *tx.Transaction, sender aurum.Address, call *tx.ContractCall) (*tx.Receipt, error) {
	cs := call.Script
	if cs.GasLimit > rt.params.BlockGasLimit-rt.gasUsed {
		return nil, errors.Wrapf(ErrGasExceedsBlockLimit, "output %d: gas %d remaining %d",
			call.Index, cs.GasLimit, rt.params.BlockGasLimit-rt.gasUsed)
	}

	msg := &vm.Message{
		Sender:   sender,
		To:       cs.To,
		Value:    call.Value,
		GasLimit: cs.GasLimit,
		GasPrice: cs.GasPrice,
		Data:     cs.Data,
	}
	contract := tx.CreateContractAddress(t.ID(), call.Index)
	if !msg.IsCreate() {
		contract = *msg.To
	}
	receipt := &tx.Receipt{
		TxID:            t.ID(),
		OutputIndex:     call.Index,
		Sender:          sender,
		ContractAddress: contract,
	}

	var out *vm.Output
	if msg.IsCreate() && msg.Value > 0 {
		out = vm.Failed(msg, vm.ExceptionCreateWithValue)
	} else {
		checkpoint := rt.state.NewCheckpoint()
		var err error
		if out, err = rt.executor.Execute(rt.ctx, rt.state, msg, contract); err != nil {
			return nil, err
		}
		if out.GasUsed > msg.GasLimit {
			out.GasUsed = msg.GasLimit
		}
		if out.Exception == vm.ExceptionNone {
			if err := rt.applyOutput(msg, contract, out); err != nil {
				rt.state.RevertTo(checkpoint)
				return nil, err
			}
		} else {
			rt.state.RevertTo(checkpoint)
		}
	}

	if out.Exception != vm.ExceptionNone {
		rt.refund(t, call, sender)
		log.Debug("contract excepted", "tx", t.ID(), "output", call.Index, "exception", out.Exception)
	} else {
		receipt.Deltas = out.Storage
		receipt.Logs = out.Logs
	}
	receipt.GasUsed = out.GasUsed
	receipt.Excepted = out.Exception
	rt.gasUsed += out.GasUsed
	return receipt, nil
}

func (rt *Runtime) applyOutput(msg *vm.Message, contract aurum.Address, out *vm.Output) error {
	for _, d := range out.Storage {
		rt.state.SetStorage(d.Address, d.Key, d.Value)
	}
	if msg.IsCreate() && len(out.Code) > 0 {
		if err := rt.state.SetCode(contract, out.Code); err != nil {
			return err
		}
	}
	if msg.Value > 0 {
		return rt.state.AddBalance(contract, msg.Value)
	}
	return nil
}

// refund returns the value of an excepted contract output to the sender,
// as a coin at the contract output.
func (rt *Runtime) refund(t *tx.Transaction, call *tx.ContractCall, sender aurum.Address) {
	if call.Value == 0 {
		return
	}
	rt.utxos.AddCoin(t.OutPoint(call.Index), &utxo.Coin{
		Value:  int64(call.Value),
		Script: tx.PayToAddrScript(sender),
		Height: rt.ctx.Height,
		Time:   rt.ctx.Time,
	})
}
