// Copyright (c) 2025 The Aurum developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package chainstate bundles everything a chain needs to validate and
// commit blocks into one explicit context.
package chainstate

import (
	"sync"

	"github.com/aurumchain/aurum/aurum"
	"github.com/aurumchain/aurum/chain"
	"github.com/aurumchain/aurum/dgp"
	"github.com/aurumchain/aurum/kv"
	"github.com/aurumchain/aurum/reconcile"
	"github.com/aurumchain/aurum/state"
	"github.com/aurumchain/aurum/utxo"
	"github.com/inconshreveable/log15"
	"github.com/pkg/errors"
)

var log = log15.New("pkg", "chainstate")

// ChainState is the shared context of one chain. Its lock is the single
// critical section for executing, committing and rolling back blocks.
type ChainState struct {
	store      kv.Store
	repo       *chain.Repository
	governor   *dgp.Governor
	reconciler *reconcile.Reconciler
	config     *aurum.ChainConfig

	lock sync.Mutex
}

// New opens the chain state over store and checks the committed roots
// agree with the best block.
func New(store kv.Store, config *aurum.ChainConfig) (*ChainState, error) {
	repo, err := chain.NewRepository(store)
	if err != nil {
		return nil, errors.Wrap(err, "open repository")
	}
	governor := dgp.NewGovernor(store, config)
	if err := governor.Load(); err != nil {
		return nil, errors.Wrap(err, "load gas governor")
	}
	reconciler := reconcile.New(store)

	roots, err := reconciler.Roots()
	if err != nil {
		return nil, err
	}
	want := reconcile.EmptyRoots()
	if best := repo.BestIndex(); best != nil {
		want = reconcile.Roots{State: best.StateRoot, UTXO: best.UTXORoot}
		log.Debug("chain state opened", "best", best.ID, "height", best.Height)
	}
	if roots != want {
		return nil, errors.Errorf("store at %v, best block at %v", roots, want)
	}

	return &ChainState{
		store:      store,
		repo:       repo,
		governor:   governor,
		reconciler: reconciler,
		config:     config,
	}, nil
}

// Lock enters the critical section.
func (cs *ChainState) Lock() { cs.lock.Lock() }

// Unlock leaves the critical section.
func (cs *ChainState) Unlock() { cs.lock.Unlock() }

func (cs *ChainState) Store() kv.Store                   { return cs.store }
func (cs *ChainState) Repo() *chain.Repository           { return cs.repo }
func (cs *ChainState) Governor() *dgp.Governor           { return cs.governor }
func (cs *ChainState) Reconciler() *reconcile.Reconciler { return cs.reconciler }
func (cs *ChainState) Config() *aurum.ChainConfig        { return cs.config }

// Best returns the index of the best block, or nil before genesis.
func (cs *ChainState) Best() *chain.BlockIndex {
	return cs.repo.BestIndex()
}

// NewViews opens fresh views of the VM state and the utxo set at the committed tip.
func (cs *ChainState) NewViews() (*state.State, *utxo.View) {
	return state.New(cs.reconciler.StateGetter()), utxo.NewView(cs.reconciler.UTXOGetter())
}
