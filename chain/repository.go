// Copyright (c) 2025 The Aurum developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package chain

import (
	"encoding/binary"
	"sync/atomic"

	"github.com/aurumchain/aurum/aurum"
	"github.com/aurumchain/aurum/block"
	"github.com/aurumchain/aurum/cache"
	"github.com/aurumchain/aurum/kv"
	"github.com/aurumchain/aurum/tx"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/pkg/errors"
)

const (
	blockBucket   = kv.Bucket("b") // block id => block
	indexBucket   = kv.Bucket("i") // block id => block index
	receiptBucket = kv.Bucket("r") // block id => receipts
	propBucket    = kv.Bucket("m") // property-named values such as best block
	heightBucket  = kv.Bucket("h") // height => canonical block id
)

var (
	errNotFound    = errors.New("not found")
	bestBlockIDKey = []byte("best-block-id")
)

// IsNotFound returns whether an error indicates that the block or index was not found.
func IsNotFound(err error) bool {
	return errors.Is(err, errNotFound)
}

// Repository stores blocks, block indexes and receipts.
//
// Reads are thread-safe. Writes go into the putter given by the caller,
// and the in-memory best is switched by UpdateBest once they are written.
type Repository struct {
	store        kv.Store
	blockStore   kv.Store
	indexStore   kv.Store
	receiptStore kv.Store
	propStore    kv.Store
	heightStore  kv.Store

	best atomic.Value // *BlockIndex

	caches struct {
		indexes  *cache.LRU[aurum.Bytes32, *BlockIndex]
		blocks   *cache.LRU[aurum.Bytes32, *block.Block]
		receipts *cache.LRU[aurum.Bytes32, tx.Receipts]
	}
}

// NewRepository creates a repository over the unbucketed store, loading the best block if any.
func NewRepository(store kv.Store) (*Repository, error) {
	repo := &Repository{
		store:        store,
		blockStore:   blockBucket.NewStore(store),
		indexStore:   indexBucket.NewStore(store),
		receiptStore: receiptBucket.NewStore(store),
		propStore:    propBucket.NewStore(store),
		heightStore:  heightBucket.NewStore(store),
	}
	var err error
	if repo.caches.indexes, err = cache.NewLRU[aurum.Bytes32, *BlockIndex](2048); err != nil {
		return nil, err
	}
	if repo.caches.blocks, err = cache.NewLRU[aurum.Bytes32, *block.Block](256); err != nil {
		return nil, err
	}
	if repo.caches.receipts, err = cache.NewLRU[aurum.Bytes32, tx.Receipts](256); err != nil {
		return nil, err
	}

	val, err := kv.GetOrNil(repo.propStore, bestBlockIDKey)
	if err != nil {
		return nil, errors.Wrap(err, "get best block id")
	}
	if val != nil {
		best, err := repo.GetBlockIndex(aurum.BytesToBytes32(val))
		if err != nil {
			return nil, errors.Wrap(err, "get best block")
		}
		repo.best.Store(best)
	}
	return repo, nil
}

// BestIndex returns the index of the best block, or nil if the chain is empty.
func (r *Repository) BestIndex() *BlockIndex {
	if best, ok := r.best.Load().(*BlockIndex); ok {
		return best
	}
	return nil
}

// UpdateBest switches the in-memory best after SetBest has been written.
func (r *Repository) UpdateBest(idx *BlockIndex) {
	r.best.Store(idx)
}

// WriteBlock writes the block, its index and receipts into w.
func (r *Repository) WriteBlock(w kv.Putter, blk *block.Block, idx *BlockIndex, receipts tx.Receipts) error {
	id := idx.ID
	if err := saveRLP(blockBucket.NewPutter(w), id[:], blk); err != nil {
		return err
	}
	if err := saveRLP(indexBucket.NewPutter(w), id[:], idx); err != nil {
		return err
	}
	if err := saveRLP(receiptBucket.NewPutter(w), id[:], receipts); err != nil {
		return err
	}
	r.caches.indexes.Add(id, idx)
	metricBlockRepositoryCounter().AddWithLabel(1, map[string]string{"type": "write", "target": "db"})
	return nil
}

// SetBest writes idx as the best block and its canonical height entry into w.
func (r *Repository) SetBest(w kv.Putter, idx *BlockIndex) error {
	if err := propBucket.NewPutter(w).Put(bestBlockIDKey, idx.ID[:]); err != nil {
		return err
	}
	return heightBucket.NewPutter(w).Put(heightKey(idx.Height), idx.ID[:])
}

// Detach writes idx's parent as the best block and drops the canonical height entry of idx.
// The block itself is kept.
func (r *Repository) Detach(w kv.Putter, idx *BlockIndex) error {
	if err := heightBucket.NewPutter(w).Delete(heightKey(idx.Height)); err != nil {
		return err
	}
	if idx.Height == 0 {
		return propBucket.NewPutter(w).Delete(bestBlockIDKey)
	}
	return propBucket.NewPutter(w).Put(bestBlockIDKey, idx.ParentID[:])
}

// GetBlockIndex returns the index of the block.
func (r *Repository) GetBlockIndex(id aurum.Bytes32) (*BlockIndex, error) {
	return r.caches.indexes.GetOrLoad(id, func(id aurum.Bytes32) (*BlockIndex, error) {
		var idx BlockIndex
		if err := loadRLP(r.indexStore, id[:], &idx); err != nil {
			return nil, err
		}
		metricBlockRepositoryCounter().AddWithLabel(1, map[string]string{"type": "read", "target": "db"})
		return &idx, nil
	})
}

// HasBlock returns whether the block is stored.
func (r *Repository) HasBlock(id aurum.Bytes32) (bool, error) {
	if _, ok := r.caches.indexes.Get(id); ok {
		return true, nil
	}
	return r.indexStore.Has(id[:])
}

// GetBlock returns the block.
func (r *Repository) GetBlock(id aurum.Bytes32) (*block.Block, error) {
	return r.caches.blocks.GetOrLoad(id, func(id aurum.Bytes32) (*block.Block, error) {
		var dec block.Decoder
		if err := loadRLP(r.blockStore, id[:], &dec); err != nil {
			return nil, err
		}
		return dec.Result, nil
	})
}

// GetReceipts returns the receipts of the block.
func (r *Repository) GetReceipts(id aurum.Bytes32) (tx.Receipts, error) {
	return r.caches.receipts.GetOrLoad(id, func(id aurum.Bytes32) (tx.Receipts, error) {
		var receipts tx.Receipts
		if err := loadRLP(r.receiptStore, id[:], &receipts); err != nil {
			return nil, err
		}
		metricReceiptRepositoryCounter().AddWithLabel(1, map[string]string{"type": "read", "target": "db"})
		return receipts, nil
	})
}

// GetCanonicalID returns the id of the best chain block at height.
func (r *Repository) GetCanonicalID(height uint32) (aurum.Bytes32, error) {
	val, err := kv.GetOrNil(r.heightStore, heightKey(height))
	if err != nil {
		return aurum.Bytes32{}, err
	}
	if val == nil {
		return aurum.Bytes32{}, errNotFound
	}
	return aurum.BytesToBytes32(val), nil
}

// GetParent returns the parent index, or nil for genesis.
func (r *Repository) GetParent(idx *BlockIndex) (*BlockIndex, error) {
	if idx.Height == 0 {
		return nil, nil
	}
	return r.GetBlockIndex(idx.ParentID)
}

func heightKey(h uint32) []byte {
	var k [4]byte
	binary.BigEndian.PutUint32(k[:], h)
	return k[:]
}

func saveRLP(w kv.Putter, key []byte, val any) error {
	data, err := rlp.EncodeToBytes(val)
	if err != nil {
		return err
	}
	return w.Put(key, data)
}

func loadRLP(r kv.Getter, key []byte, val any) error {
	data, err := kv.GetOrNil(r, key)
	if err != nil {
		return err
	}
	if data == nil {
		return errNotFound
	}
	return rlp.DecodeBytes(data, val)
}
