// Copyright (c) 2025 The Aurum developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package tx

import (
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
)

// Builder to make it easy to build transaction.
type Builder struct {
	msg wire.MsgTx
}

// Version set tx version.
func (b *Builder) Version(v int32) *Builder {
	b.msg.Version = v
	return b
}

// Input adds an input spending prevout.
func (b *Builder) Input(prevout wire.OutPoint, sigScript []byte) *Builder {
	b.msg.AddTxIn(wire.NewTxIn(&prevout, sigScript, nil))
	return b
}

// CoinbaseInput adds the null input of a coinbase, tagged by height.
func (b *Builder) CoinbaseInput(height uint32) *Builder {
	prev := wire.NewOutPoint(&chainhash.Hash{}, wire.MaxPrevOutIndex)
	script := []byte{4, byte(height), byte(height >> 8), byte(height >> 16), byte(height >> 24)}
	b.msg.AddTxIn(wire.NewTxIn(prev, script, nil))
	return b
}

// Output adds an output.
func (b *Builder) Output(value int64, pkScript []byte) *Builder {
	b.msg.AddTxOut(wire.NewTxOut(value, pkScript))
	return b
}

// EmptyOutput adds the empty marker output of a coinstake.
func (b *Builder) EmptyOutput() *Builder {
	return b.Output(0, nil)
}

// LockTime set lock time.
func (b *Builder) LockTime(t uint32) *Builder {
	b.msg.LockTime = t
	return b
}

// Build builds a tx object.
func (b *Builder) Build() *Transaction {
	if b.msg.Version == 0 {
		b.msg.Version = wire.TxVersion
	}
	return New(b.msg.Copy())
}
