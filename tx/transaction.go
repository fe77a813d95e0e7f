// Copyright (c) 2025 The Aurum developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package tx

import (
	"bytes"
	"io"
	"sync/atomic"

	"github.com/aurumchain/aurum/aurum"
	"github.com/btcsuite/btcd/blockchain"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/pkg/errors"
)

// Transaction is an immutable UTXO transaction.
type Transaction struct {
	msg *wire.MsgTx

	cache struct {
		id atomic.Value
	}
}

// New wraps the wire transaction. The msg must not be modified afterwards.
func New(msg *wire.MsgTx) *Transaction {
	return &Transaction{msg: msg}
}

// MsgTx returns the underlying wire transaction.
func (t *Transaction) MsgTx() *wire.MsgTx {
	return t.msg
}

// ID returns the transaction hash excluding witness.
func (t *Transaction) ID() aurum.Bytes32 {
	if cached := t.cache.id.Load(); cached != nil {
		return cached.(aurum.Bytes32)
	}
	id := aurum.Bytes32(t.msg.TxHash())
	t.cache.id.Store(id)
	return id
}

// OutPoint returns the outpoint of output n.
func (t *Transaction) OutPoint(n uint32) wire.OutPoint {
	return wire.OutPoint{Hash: t.msg.TxHash(), Index: n}
}

// IsCoinBase returns whether the tx is a coinbase.
func (t *Transaction) IsCoinBase() bool {
	return blockchain.IsCoinBaseTx(t.msg)
}

// IsCoinStake returns whether the tx is a coinstake: it spends a real coin
// and its first output is empty.
func (t *Transaction) IsCoinStake() bool {
	if len(t.msg.TxIn) == 0 || len(t.msg.TxOut) < 2 {
		return false
	}
	prev := t.msg.TxIn[0].PreviousOutPoint
	if prev.Index == wire.MaxPrevOutIndex && prev.Hash == (chainhash.Hash{}) {
		return false
	}
	first := t.msg.TxOut[0]
	return first.Value == 0 && len(first.PkScript) == 0
}

// ContractCall is one contract output of a transaction.
type ContractCall struct {
	Index  uint32
	Value  uint64
	Script *ContractScript
}

// HasContractOutputs returns whether any output uses a contract opcode.
func (t *Transaction) HasContractOutputs() bool {
	for _, out := range t.msg.TxOut {
		if IsContractScript(out.PkScript) {
			return true
		}
	}
	return false
}

// ContractCalls decodes all contract outputs in output order.
func (t *Transaction) ContractCalls() ([]*ContractCall, error) {
	var calls []*ContractCall
	for i, out := range t.msg.TxOut {
		if !IsContractScript(out.PkScript) {
			continue
		}
		cs, err := ParseContractScript(out.PkScript)
		if err != nil {
			return nil, errors.Wrapf(err, "output %d", i)
		}
		if out.Value < 0 {
			return nil, errors.Errorf("output %d: negative value", i)
		}
		calls = append(calls, &ContractCall{Index: uint32(i), Value: uint64(out.Value), Script: cs})
	}
	return calls, nil
}

// SigOps counts legacy signature operations.
func (t *Transaction) SigOps() int {
	return blockchain.CountSigOps(btcutil.NewTx(t.msg))
}

// Size returns serialized size including witness.
func (t *Transaction) Size() int {
	return t.msg.SerializeSize()
}

// Weight returns the transaction weight.
func (t *Transaction) Weight() int64 {
	return blockchain.GetTransactionWeight(btcutil.NewTx(t.msg))
}

// EncodeRLP implements rlp.Encoder.
func (t *Transaction) EncodeRLP(w io.Writer) error {
	var buf bytes.Buffer
	buf.Grow(t.msg.SerializeSize())
	if err := t.msg.Serialize(&buf); err != nil {
		return err
	}
	return rlp.Encode(w, buf.Bytes())
}

// DecodeRLP implements rlp.Decoder.
func (t *Transaction) DecodeRLP(s *rlp.Stream) error {
	raw, err := s.Bytes()
	if err != nil {
		return err
	}
	var msg wire.MsgTx
	if err := msg.Deserialize(bytes.NewReader(raw)); err != nil {
		return errors.Wrap(err, "deserialize tx")
	}
	*t = Transaction{msg: &msg}
	return nil
}
