// Copyright (c) 2025 The Aurum developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package packer builds proof-of-stake blocks on top of the best block.
package packer

import (
	"github.com/aurumchain/aurum/aurum"
	"github.com/aurumchain/aurum/chain"
	"github.com/aurumchain/aurum/chainstate"
	"github.com/aurumchain/aurum/cry"
	"github.com/aurumchain/aurum/pos"
	"github.com/aurumchain/aurum/tx"
	"github.com/aurumchain/aurum/vm"
	"github.com/btcsuite/btcd/wire"
	"github.com/inconshreveable/log15"
	"github.com/pkg/errors"
)

var log = log15.New("pkg", "packer")

// Packer to pack txs and build new blocks.
type Packer struct {
	cs       *chainstate.ChainState
	executor vm.Executor
	key      *cry.PrivateKey
	staker   aurum.Address
	pod      []byte
}

// New create a new Packer instance signing blocks with key.
func New(cs *chainstate.ChainState, executor vm.Executor, key *cry.PrivateKey) *Packer {
	return &Packer{
		cs:       cs,
		executor: executor,
		key:      key,
		staker:   cry.KeyToAddress(key),
	}
}

// Staker returns the address blocks are signed by.
func (p *Packer) Staker() aurum.Address {
	return p.staker
}

// SetPoD sets the proof of delegation appended to block signatures, used when
// staking coins of a delegator. nil stakes own coins.
func (p *Packer) SetPoD(pod []byte) {
	p.pod = append([]byte(nil), pod...)
}

func (p *Packer) parents() (parent, grandparent *chain.BlockIndex, err error) {
	parent = p.cs.Best()
	if parent == nil {
		return nil, nil, errors.New("chain has no genesis")
	}
	grandparent, err = p.cs.Repo().GetParent(parent)
	return
}

func (p *Packer) nextBits(parent, grandparent *chain.BlockIndex) uint32 {
	var gp *pos.Ancestor
	if grandparent != nil {
		gp = grandparent.Ancestor()
	}
	return pos.NextTargetRequired(p.cs.Config(), parent.Ancestor(), gp)
}

// Schedule searches coins for a kernel meeting the next target with a
// timestamp in [from, to].
func (p *Packer) Schedule(prevouts []wire.OutPoint, from, to uint32) (*pos.SearchResult, error) {
	parent, grandparent, err := p.parents()
	if err != nil {
		return nil, err
	}
	if from <= parent.Time {
		from = parent.Time + 1
	}

	_, view := p.cs.NewViews()
	coins := make([]pos.StakeCoin, 0, len(prevouts))
	for _, op := range prevouts {
		c, err := view.GetCoin(op)
		if err != nil {
			return nil, err
		}
		if c != nil {
			coins = append(coins, pos.StakeCoin{Prevout: op, Coin: c})
		}
	}

	res := pos.Search(p.cs.Config(), parent.StakeModifier(), coins, parent.Height+1, p.nextBits(parent, grandparent), from, to)
	if res == nil {
		return nil, errNoKernel
	}
	log.Debug("kernel found", "prevout", res.Kernel.Prevout, "time", res.Kernel.Timestamp)
	return res, nil
}

// Mock prepares a flow staking kernel at timestamp on top of the best block.
func (p *Packer) Mock(kernel wire.OutPoint, timestamp uint32) (*Flow, error) {
	parent, grandparent, err := p.parents()
	if err != nil {
		return nil, err
	}
	_, view := p.cs.NewViews()
	coin, err := view.GetCoin(kernel)
	if err != nil {
		return nil, err
	}
	if coin == nil {
		return nil, errors.Errorf("kernel coin %v missing", kernel)
	}

	height := parent.Height + 1
	coinbase := new(tx.Builder).CoinbaseInput(height).EmptyOutput().Build()
	coinstake := new(tx.Builder).
		Input(kernel, nil).
		EmptyOutput().
		Output(coin.Value, coin.Script).
		Build()

	return newFlow(p, parent, kernel, timestamp, p.nextBits(parent, grandparent), tx.Transactions{coinbase, coinstake}), nil
}
