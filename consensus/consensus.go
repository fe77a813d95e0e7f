// Copyright (c) 2025 The Aurum developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package consensus decides whether a block is accepted, and connects
// accepted blocks to the chain.
package consensus

import (
	"time"

	"github.com/aurumchain/aurum/block"
	"github.com/aurumchain/aurum/chain"
	"github.com/aurumchain/aurum/chainstate"
	"github.com/aurumchain/aurum/dgp"
	"github.com/aurumchain/aurum/kv"
	"github.com/aurumchain/aurum/reconcile"
	"github.com/aurumchain/aurum/runtime"
	"github.com/aurumchain/aurum/tx"
	"github.com/aurumchain/aurum/vm"
	"github.com/inconshreveable/log15"
	"github.com/pkg/errors"
)

var log = log15.New("pkg", "consensus")

// Consensus checks blocks against the chain state.
type Consensus struct {
	executor vm.Executor
}

// New create a Consensus instance running contracts with executor.
func New(executor vm.Executor) *Consensus {
	return &Consensus{executor}
}

// Executor returns the contract executor blocks are run with.
func (c *Consensus) Executor() vm.Executor {
	return c.executor
}

// Stage is a validated block ready to be connected.
type Stage struct {
	Block     *block.Block
	Parent    *chain.BlockIndex // nil for genesis
	Index     *chain.BlockIndex
	Receipts  tx.Receipts
	Changes   *reconcile.Changes
	Roots     reconcile.Roots
	GasChange *dgp.Change

	rt *runtime.Runtime
}

// Process validates blk on top of the best block. now is the local unix time.
// A returned RejectError means the block is invalid.
func (c *Consensus) Process(cs *chainstate.ChainState, blk *block.Block, now uint64) (stage *Stage, err error) {
	startTime := time.Now()
	header := blk.Header()
	defer func() {
		if reason := RejectReason(err); reason != "" {
			metricBlockRejectedCount().AddWithLabel(1, map[string]string{"reason": reason})
			log.Debug("block rejected", "id", header.ID(), "height", header.Height(), "err", err)
			return
		}
		if err == nil {
			metricBlockValidationMillis().Observe(time.Since(startTime).Milliseconds())
		}
	}()

	// detached blocks stay in the repository and may be connected again
	if id, err := cs.Repo().GetCanonicalID(header.Height()); err != nil {
		if !chain.IsNotFound(err) {
			return nil, err
		}
	} else if id == header.ID() {
		return nil, errKnownBlock
	}

	parent, grandparent, err := c.parents(cs, header)
	if err != nil {
		return nil, err
	}
	if err := c.validateBlockHeader(cs, header, parent, grandparent, now); err != nil {
		return nil, err
	}
	if err := c.validateBlockBody(cs, blk); err != nil {
		return nil, err
	}

	cs.Lock()
	defer cs.Unlock()
	if best := cs.Best(); !sameBlock(best, parent) {
		return nil, errNotOnBest
	}
	return c.verifyBlock(cs, blk, parent)
}

func (c *Consensus) parents(cs *chainstate.ChainState, header *block.Header) (parent, grandparent *chain.BlockIndex, err error) {
	if header.Height() == 0 && header.ParentID().IsZero() {
		return nil, nil, nil
	}
	parent, err = cs.Repo().GetBlockIndex(header.ParentID())
	if err != nil {
		if chain.IsNotFound(err) {
			return nil, nil, errParentMissing
		}
		return nil, nil, err
	}
	if grandparent, err = cs.Repo().GetParent(parent); err != nil {
		return nil, nil, err
	}
	return parent, grandparent, nil
}

func sameBlock(a, b *chain.BlockIndex) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.ID == b.ID
}

func parentRoots(parent *chain.BlockIndex) reconcile.Roots {
	if parent == nil {
		return reconcile.EmptyRoots()
	}
	return reconcile.Roots{State: parent.StateRoot, UTXO: parent.UTXORoot}
}

// Connect commits the stage atomically and makes it the best block.
func (c *Consensus) Connect(cs *chainstate.ChainState, stage *Stage) error {
	cs.Lock()
	defer cs.Unlock()

	if !sameBlock(cs.Best(), stage.Parent) {
		return errNotOnBest
	}

	var (
		repo     = cs.Repo()
		governor = cs.Governor()
		idx      = stage.Index
	)
	if _, err := cs.Reconciler().Commit(idx.ID, parentRoots(stage.Parent), stage.Changes, func(w kv.Putter) error {
		if err := repo.WriteBlock(w, stage.Block, idx, stage.Receipts); err != nil {
			return err
		}
		if err := repo.SetBest(w, idx); err != nil {
			return err
		}
		if stage.GasChange != nil {
			return governor.Write(w, stage.GasChange)
		}
		return nil
	}); err != nil {
		return errors.Wrap(err, "commit block")
	}

	if stage.GasChange != nil {
		governor.Apply(stage.GasChange)
	}
	repo.UpdateBest(idx)
	if err := stage.rt.Commit(); err != nil {
		return err
	}

	metricBlockConnectedCount().Add(1)
	log.Info("block connected", "id", idx.ID, "height", idx.Height, "staker", idx.Staker,
		"txs", len(stage.Block.Transactions()), "receipts", len(stage.Receipts))
	return nil
}

// Disconnect rolls back the best block and returns the new best, nil if the
// chain became empty.
func (c *Consensus) Disconnect(cs *chainstate.ChainState) (*chain.BlockIndex, error) {
	cs.Lock()
	defer cs.Unlock()

	best := cs.Best()
	if best == nil {
		return nil, errors.New("chain is empty")
	}
	parent, err := cs.Repo().GetParent(best)
	if err != nil {
		return nil, errors.Wrap(err, "get parent")
	}

	var (
		repo     = cs.Repo()
		governor = cs.Governor()
	)
	if _, err := cs.Reconciler().Rollback(best.ID, func(w kv.Putter) error {
		if err := repo.Detach(w, best); err != nil {
			return err
		}
		return governor.Erase(w, best.Height)
	}); err != nil {
		return nil, errors.Wrap(err, "rollback block")
	}

	governor.Disconnect(best.Height)
	repo.UpdateBest(parent)
	log.Info("block disconnected", "id", best.ID, "height", best.Height)
	return parent, nil
}
