// Copyright (c) 2025 The Aurum developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package packer

import (
	"github.com/aurumchain/aurum/aurum"
	"github.com/aurumchain/aurum/block"
	"github.com/aurumchain/aurum/chain"
	"github.com/aurumchain/aurum/cry"
	"github.com/aurumchain/aurum/delegation"
	"github.com/aurumchain/aurum/reconcile"
	"github.com/aurumchain/aurum/runtime"
	"github.com/aurumchain/aurum/tx"
	"github.com/aurumchain/aurum/vm"
	"github.com/btcsuite/btcd/wire"
	"github.com/pkg/errors"
)

// Flow the flow of packing a new block.
type Flow struct {
	packer    *Packer
	parent    *chain.BlockIndex
	kernel    wire.OutPoint
	timestamp uint32
	bits      uint32
	txs       tx.Transactions
	known     map[aurum.Bytes32]bool
}

func newFlow(p *Packer, parent *chain.BlockIndex, kernel wire.OutPoint, timestamp, bits uint32, txs tx.Transactions) *Flow {
	known := make(map[aurum.Bytes32]bool)
	for _, t := range txs {
		known[t.ID()] = true
	}
	return &Flow{
		packer:    p,
		parent:    parent,
		kernel:    kernel,
		timestamp: timestamp,
		bits:      bits,
		txs:       txs,
		known:     known,
	}
}

// Parent returns the index of the block being built on.
func (f *Flow) Parent() *chain.BlockIndex {
	return f.parent
}

// When the target time of the new block.
func (f *Flow) When() uint32 {
	return f.timestamp
}

// Bits returns the target of the new block.
func (f *Flow) Bits() uint32 {
	return f.bits
}

// Adopt appends the tx to the new block. Txs are executed by Pack.
func (f *Flow) Adopt(t *tx.Transaction) error {
	switch {
	case t.IsCoinBase():
		return badTxError{"coinbase"}
	case t.IsCoinStake():
		return badTxError{"coinstake"}
	case f.known[t.ID()]:
		return errKnownTx
	}
	f.known[t.ID()] = true
	f.txs = append(f.txs, t)
	return nil
}

// Pack executes the adopted txs, fills in the roots and signs the block.
func (f *Flow) Pack() (*block.Block, tx.Receipts, error) {
	p := f.packer
	cs := p.cs
	cs.Lock()
	defer cs.Unlock()

	if best := cs.Best(); best == nil || best.ID != f.parent.ID {
		return nil, nil, errParentChange
	}

	height := f.parent.Height + 1
	st, coins := cs.NewViews()
	rt := runtime.New(st, coins, vm.BlockContext{
		Network:  vm.Network(cs.Config().Network),
		Height:   height,
		Time:     f.timestamp,
		Staker:   p.staker,
		Bits:     f.bits,
		ParentID: f.parent.ID,
	}, cs.Governor().CurrentParams(height), p.executor)

	receipts, err := rt.ExecuteBlock(f.txs)
	if err != nil {
		return nil, nil, errors.Wrap(err, "execute")
	}

	changes := new(reconcile.Changes)
	if changes.State, err = st.Changes(); err != nil {
		return nil, nil, err
	}
	if changes.UTXO, err = coins.Changes(); err != nil {
		return nil, nil, err
	}
	roots, err := cs.Reconciler().Compute(changes)
	if err != nil {
		return nil, nil, err
	}

	builder := new(block.Builder).
		ParentID(f.parent.ID).
		Height(height).
		Time(f.timestamp).
		Bits(f.bits).
		StateRoot(roots.State).
		UTXORoot(roots.UTXO).
		PrevoutStake(f.kernel)
	for _, t := range f.txs {
		builder.Transaction(t)
	}
	blk := builder.Build()

	sig := cry.Sign(blk.Header().SigningHash(), p.key)
	blk = blk.WithSignature(delegation.JoinHeaderSignature(sig, p.pod))
	log.Debug("block packed", "id", blk.Header().ID(), "height", height, "txs", len(f.txs))
	return blk, receipts, nil
}
