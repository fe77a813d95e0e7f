// Copyright (c) 2025 The Aurum developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package genesis

import (
	"github.com/aurumchain/aurum/aurum"
	"github.com/aurumchain/aurum/block"
	"github.com/aurumchain/aurum/dgp"
	"github.com/aurumchain/aurum/lvldb"
	"github.com/aurumchain/aurum/reconcile"
	"github.com/aurumchain/aurum/runtime"
	"github.com/aurumchain/aurum/state"
	"github.com/aurumchain/aurum/tx"
	"github.com/aurumchain/aurum/utxo"
	"github.com/aurumchain/aurum/vm"
	"github.com/pkg/errors"
)

// Builder helper to build genesis block.
type Builder struct {
	time   uint32
	bits   uint32
	allocs []aurum.Allocation
}

// FromConfig returns a builder preset by the genesis section of cfg.
func FromConfig(cfg *aurum.ChainConfig) *Builder {
	b := new(Builder).Time(cfg.Genesis.Time).Bits(cfg.Genesis.Bits)
	for _, a := range cfg.Genesis.Allocations {
		b.Alloc(a.Address, a.Value)
	}
	return b
}

// Time set timestamp.
func (b *Builder) Time(t uint32) *Builder {
	b.time = t
	return b
}

// Bits set compact target.
func (b *Builder) Bits(bits uint32) *Builder {
	b.bits = bits
	return b
}

// Alloc adds a coinbase output paying value to addr.
func (b *Builder) Alloc(addr aurum.Address, value int64) *Builder {
	b.allocs = append(b.allocs, aurum.Allocation{Address: addr, Value: value})
	return b
}

// Build builds the genesis block. Roots are computed over an empty
// in-memory store.
func (b *Builder) Build() (*block.Block, error) {
	cb := new(tx.Builder).CoinbaseInput(0)
	for _, a := range b.allocs {
		if a.Value <= 0 {
			return nil, errors.Errorf("allocation to %v: non-positive value %d", a.Address, a.Value)
		}
		cb.Output(a.Value, tx.PayToAddrScript(a.Address))
	}
	if len(b.allocs) == 0 {
		cb.EmptyOutput()
	}
	txs := tx.Transactions{cb.Build()}

	db, err := lvldb.NewMem()
	if err != nil {
		return nil, err
	}
	defer db.Close()

	reconciler := reconcile.New(db)
	st := state.New(reconciler.StateGetter())
	coins := utxo.NewView(reconciler.UTXOGetter())
	rt := runtime.New(st, coins, vm.BlockContext{Time: b.time, Bits: b.bits}, dgp.GasParams{}, nil)
	if _, err := rt.ExecuteBlock(txs); err != nil {
		return nil, errors.Wrap(err, "execute genesis")
	}

	changes := new(reconcile.Changes)
	if changes.State, err = st.Changes(); err != nil {
		return nil, err
	}
	if changes.UTXO, err = coins.Changes(); err != nil {
		return nil, err
	}
	roots, err := reconciler.Compute(changes)
	if err != nil {
		return nil, errors.Wrap(err, "compute roots")
	}

	builder := new(block.Builder).
		Height(0).
		Time(b.time).
		Bits(b.bits).
		StateRoot(roots.State).
		UTXORoot(roots.UTXO)
	for _, t := range txs {
		builder.Transaction(t)
	}
	return builder.Build(), nil
}

// Build builds the genesis block of cfg.
func Build(cfg *aurum.ChainConfig) (*block.Block, error) {
	return FromConfig(cfg).Build()
}
