// Copyright (c) 2025 The Aurum developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package reconcile commits the VM state and the utxo set together,
// and binds both to the roots declared in block headers.
package reconcile

import (
	"fmt"

	"github.com/aurumchain/aurum/aurum"
	"github.com/aurumchain/aurum/block"
	"github.com/aurumchain/aurum/kv"
	"github.com/aurumchain/aurum/metrics"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/inconshreveable/log15"
	"github.com/pkg/errors"
)

const (
	// StateBucket holds the VM account state.
	StateBucket = kv.Bucket("S")
	// UTXOBucket holds the unspent coins.
	UTXOBucket = kv.Bucket("U")

	undoBucket = kv.Bucket("D")
	tipBucket  = kv.Bucket("T")
)

var (
	log = log15.New("pkg", "reconcile")

	rootsKey = []byte("roots")

	// EmptyRoot is the root of an empty store.
	EmptyRoot = aurum.Bytes32(types.EmptyRootHash)

	metricCommitCount   = metrics.LazyLoadCounter("reconcile_commit_count")
	metricRollbackCount = metrics.LazyLoadCounter("reconcile_rollback_count")
)

// ErrParentMismatch is returned when the store is not at the expected parent roots.
var ErrParentMismatch = errors.New("store is not at parent roots")

// Roots is the pair of roots committed by a block header.
type Roots struct {
	State aurum.Bytes32
	UTXO  aurum.Bytes32
}

// EmptyRoots returns the roots of an empty store.
func EmptyRoots() Roots {
	return Roots{EmptyRoot, EmptyRoot}
}

// HeaderRoots returns the roots declared by the header.
func HeaderRoots(h *block.Header) Roots {
	return Roots{h.StateRoot(), h.UTXORoot()}
}

func (r Roots) String() string {
	return fmt.Sprintf("state %v utxo %v", r.State, r.UTXO)
}

// Changes are the pending writes of one block. They must not be modified
// once computed.
type Changes struct {
	State []kv.Change
	UTXO  []kv.Change

	computed *computed
}

// computed holds the roots of changes applied on base, and the trie nodes
// they introduced.
type computed struct {
	base  Roots
	roots Roots
	nodes map[common.Hash][]byte
}

// RootKind names one of the two roots.
type RootKind uint8

// Root kinds.
const (
	StateRoot RootKind = iota + 1
	UTXORoot
)

func (k RootKind) String() string {
	switch k {
	case StateRoot:
		return "state"
	case UTXORoot:
		return "utxo"
	}
	return fmt.Sprintf("root(%d)", uint8(k))
}

// RootMismatch is returned when a computed root differs from the declared one.
type RootMismatch struct {
	Which RootKind
	Want  aurum.Bytes32
	Have  aurum.Bytes32
}

func (e *RootMismatch) Error() string {
	return fmt.Sprintf("%v root mismatch: header %v, computed %v", e.Which, e.Want, e.Have)
}

// ValidateHeader checks the computed roots against the header, bit for bit.
// The state root is checked first.
func ValidateHeader(h *block.Header, computed Roots) error {
	if h.StateRoot() != computed.State {
		return &RootMismatch{StateRoot, h.StateRoot(), computed.State}
	}
	if h.UTXORoot() != computed.UTXO {
		return &RootMismatch{UTXORoot, h.UTXORoot(), computed.UTXO}
	}
	return nil
}

// Reconciler owns the state and utxo buckets of a store.
// It does no locking; callers serialize Commit and Rollback.
type Reconciler struct {
	store kv.Store
	state kv.Store
	utxo  kv.Store
	nodes *nodeDatabase
}

// New creates a reconciler over the unbucketed store.
func New(store kv.Store) *Reconciler {
	return &Reconciler{
		store: store,
		state: StateBucket.NewStore(store),
		utxo:  UTXOBucket.NewStore(store),
		nodes: newNodeDatabase(store),
	}
}

// StateGetter returns the reader of committed VM state.
func (r *Reconciler) StateGetter() kv.Getter { return r.state }

// UTXOGetter returns the reader of committed coins.
func (r *Reconciler) UTXOGetter() kv.Getter { return r.utxo }

// Roots returns the roots the store is currently at.
func (r *Reconciler) Roots() (Roots, error) {
	data, err := kv.GetOrNil(tipBucket.NewGetter(r.store), rootsKey)
	if err != nil {
		return Roots{}, errors.Wrap(err, "get roots")
	}
	if data == nil {
		return EmptyRoots(), nil
	}
	var roots Roots
	if err := rlp.DecodeBytes(data, &roots); err != nil {
		return Roots{}, errors.Wrap(err, "decode roots")
	}
	return roots, nil
}

// Compute computes the roots of the committed store with changes applied.
// Only the trie paths of changed keys are touched. The store is not modified,
// and the result is kept in changes for Commit.
func (r *Reconciler) Compute(changes *Changes) (Roots, error) {
	base, err := r.Roots()
	if err != nil {
		return Roots{}, err
	}
	if c := changes.computed; c != nil && c.base == base {
		return c.roots, nil
	}

	stateRoot, nodes, err := r.nodes.update(base.State, changes.State)
	if err != nil {
		return Roots{}, errors.Wrap(err, "state root")
	}
	utxoRoot, utxoNodes, err := r.nodes.update(base.UTXO, changes.UTXO)
	if err != nil {
		return Roots{}, errors.Wrap(err, "utxo root")
	}
	if nodes == nil {
		nodes = utxoNodes
	} else {
		for hash, blob := range utxoNodes {
			nodes[hash] = blob
		}
	}

	roots := Roots{stateRoot, utxoRoot}
	changes.computed = &computed{base, roots, nodes}
	return roots, nil
}

type undoEntry struct {
	Key    []byte
	Value  []byte
	Exists bool
}

type undoRecord struct {
	Parent Roots
	Roots  Roots
	State  []undoEntry
	UTXO   []undoEntry
}

// Commit writes changes on top of the parent roots. State changes, utxo changes,
// the undo record of blockID, the new roots and the writes of extra go into
// one bulk, so either both roots are committed or neither.
func (r *Reconciler) Commit(blockID aurum.Bytes32, parent Roots, changes *Changes, extra func(kv.Putter) error) (Roots, error) {
	current, err := r.Roots()
	if err != nil {
		return Roots{}, err
	}
	if current != parent {
		return Roots{}, errors.Wrapf(ErrParentMismatch, "at %v, want %v", current, parent)
	}
	roots, err := r.Compute(changes)
	if err != nil {
		return Roots{}, err
	}

	undo := undoRecord{Parent: parent, Roots: roots}
	if undo.State, err = undoEntries(r.state, changes.State); err != nil {
		return Roots{}, err
	}
	if undo.UTXO, err = undoEntries(r.utxo, changes.UTXO); err != nil {
		return Roots{}, err
	}

	bulk := r.store.Bulk()
	if err := kv.ApplyChanges(StateBucket.NewPutter(bulk), changes.State); err != nil {
		return Roots{}, err
	}
	if err := kv.ApplyChanges(UTXOBucket.NewPutter(bulk), changes.UTXO); err != nil {
		return Roots{}, err
	}
	if err := writeNodes(bulk, changes.computed.nodes); err != nil {
		return Roots{}, err
	}
	if err := saveRLP(undoBucket.NewPutter(bulk), blockID[:], &undo); err != nil {
		return Roots{}, err
	}
	if err := saveRLP(tipBucket.NewPutter(bulk), rootsKey, &roots); err != nil {
		return Roots{}, err
	}
	if extra != nil {
		if err := extra(bulk); err != nil {
			return Roots{}, err
		}
	}
	if err := bulk.Write(); err != nil {
		return Roots{}, errors.Wrap(err, "write bulk")
	}

	metricCommitCount().Add(1)
	log.Debug("committed", "block", blockID, "state", roots.State, "utxo", roots.UTXO,
		"stateChanges", len(changes.State), "utxoChanges", len(changes.UTXO), "nodes", len(changes.computed.nodes))
	return roots, nil
}

// Rollback reverts the changes committed by blockID, which must be the last
// committed block, and returns the parent roots. extra writes join the same bulk.
func (r *Reconciler) Rollback(blockID aurum.Bytes32, extra func(kv.Putter) error) (Roots, error) {
	var undo undoRecord
	data, err := kv.GetOrNil(undoBucket.NewGetter(r.store), blockID[:])
	if err != nil {
		return Roots{}, errors.Wrap(err, "get undo")
	}
	if data == nil {
		return Roots{}, errors.Errorf("no undo record for block %v", blockID)
	}
	if err := rlp.DecodeBytes(data, &undo); err != nil {
		return Roots{}, errors.Wrap(err, "decode undo")
	}

	current, err := r.Roots()
	if err != nil {
		return Roots{}, err
	}
	if current != undo.Roots {
		return Roots{}, errors.Errorf("block %v is not the last committed", blockID)
	}

	bulk := r.store.Bulk()
	if err := applyUndo(StateBucket.NewPutter(bulk), undo.State); err != nil {
		return Roots{}, err
	}
	if err := applyUndo(UTXOBucket.NewPutter(bulk), undo.UTXO); err != nil {
		return Roots{}, err
	}
	if err := undoBucket.NewPutter(bulk).Delete(blockID[:]); err != nil {
		return Roots{}, err
	}
	if err := saveRLP(tipBucket.NewPutter(bulk), rootsKey, &undo.Parent); err != nil {
		return Roots{}, err
	}
	if extra != nil {
		if err := extra(bulk); err != nil {
			return Roots{}, err
		}
	}
	if err := bulk.Write(); err != nil {
		return Roots{}, errors.Wrap(err, "write bulk")
	}

	metricRollbackCount().Add(1)
	log.Info("rolled back", "block", blockID, "state", undo.Parent.State, "utxo", undo.Parent.UTXO)
	return undo.Parent, nil
}

func undoEntries(src kv.Getter, changes []kv.Change) ([]undoEntry, error) {
	entries := make([]undoEntry, 0, len(changes))
	for _, c := range changes {
		val, err := src.Get(c.Key)
		if err != nil {
			if !src.IsNotFound(err) {
				return nil, errors.Wrap(err, "get previous value")
			}
			entries = append(entries, undoEntry{Key: c.Key})
			continue
		}
		entries = append(entries, undoEntry{Key: c.Key, Value: val, Exists: true})
	}
	return entries, nil
}

func applyUndo(p kv.Putter, entries []undoEntry) error {
	for _, e := range entries {
		if !e.Exists {
			if err := p.Delete(e.Key); err != nil {
				return err
			}
			continue
		}
		if err := p.Put(e.Key, e.Value); err != nil {
			return err
		}
	}
	return nil
}

func saveRLP(w kv.Putter, key []byte, val any) error {
	data, err := rlp.EncodeToBytes(val)
	if err != nil {
		return err
	}
	return w.Put(key, data)
}
