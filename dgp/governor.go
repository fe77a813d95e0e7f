// Copyright (c) 2025 The Aurum developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package dgp

import (
	"encoding/binary"
	"sort"
	"sync"

	"github.com/aurumchain/aurum/aurum"
	"github.com/aurumchain/aurum/cache"
	"github.com/aurumchain/aurum/kv"
	"github.com/aurumchain/aurum/metrics"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/inconshreveable/log15"
	"github.com/pkg/errors"
)

var (
	log = log15.New("pkg", "dgp")

	metricChangeCount = metrics.LazyLoadCounter("dgp_change_count")
)

// Bucket holds recorded changes keyed by height.
const Bucket = kv.Bucket("g")

const paramsCacheSize = 512

// Change is a params change recorded when the block at Height connects.
// It is in effect from Height+1.
type Change struct {
	Height uint32
	Params GasParams
}

// StorageReader reads governance contract storage.
type StorageReader interface {
	GetStorage(addr aurum.Address, key aurum.Bytes32) (aurum.Bytes32, error)
}

// Governor derives the params in effect at any height from the recorded history.
type Governor struct {
	store    kv.Store
	contract aurum.Address
	genesis  GasParams

	lock    sync.RWMutex
	history []Change // ascending heights
	cache   *cache.LRU[uint32, GasParams]
}

// NewGovernor creates a governor over store, which must not be bucketed.
// Load must be called before use.
func NewGovernor(store kv.Store, cfg *aurum.ChainConfig) *Governor {
	c, _ := cache.NewLRU[uint32, GasParams](paramsCacheSize)
	return &Governor{
		store:    Bucket.NewStore(store),
		contract: aurum.DGPContractAddress,
		genesis:  GenesisParams(cfg),
		cache:    c,
	}
}

func changeKey(height uint32) []byte {
	var k [4]byte
	binary.BigEndian.PutUint32(k[:], height)
	return k[:]
}

// Load replays all recorded changes.
func (g *Governor) Load() error {
	it := g.store.Iterate(kv.Range{})
	defer it.Release()

	var history []Change
	for it.Next() {
		var p GasParams
		if err := rlp.DecodeBytes(it.Value(), &p); err != nil {
			return errors.Wrap(err, "decode gas params")
		}
		history = append(history, Change{binary.BigEndian.Uint32(it.Key()), p})
	}
	if err := it.Error(); err != nil {
		return err
	}

	g.lock.Lock()
	defer g.lock.Unlock()
	g.history = history
	g.cache.Purge()
	log.Debug("governance history loaded", "changes", len(history))
	return nil
}

// CurrentParams returns the params in effect for the block at height.
func (g *Governor) CurrentParams(height uint32) GasParams {
	if p, ok := g.cache.Get(height); ok {
		return p
	}
	g.lock.RLock()
	defer g.lock.RUnlock()

	// the last change recorded below height
	i := sort.Search(len(g.history), func(i int) bool {
		return g.history[i].Height >= height
	})
	p := g.genesis
	if i > 0 {
		p = g.history[i-1].Params
	}
	g.cache.Add(height, p)
	return p
}

func (g *Governor) readWord(reader StorageReader, key aurum.Bytes32) (uint64, error) {
	w, err := reader.GetStorage(g.contract, key)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(w[24:]), nil
}

// Stage detects a params change made by the block at height, given the
// governance contract storage after executing it. It returns nil if
// nothing changed.
func (g *Governor) Stage(height uint32, reader StorageReader) (*Change, error) {
	cur := g.CurrentParams(height)
	next := cur

	size, err := g.readWord(reader, aurum.KeyBlockSize)
	if err != nil {
		return nil, err
	}
	if size != 0 && uint32(size) != cur.MaxBlockSerSize {
		next = ApplyGovernanceChange(next, uint32(size))
	}
	if v, err := g.readWord(reader, aurum.KeyBlockGasLimit); err != nil {
		return nil, err
	} else if v != 0 {
		next.BlockGasLimit = v
	}
	if v, err := g.readWord(reader, aurum.KeyMinGasPrice); err != nil {
		return nil, err
	} else if v != 0 {
		next.MinGasPrice = v
	}

	if next == cur {
		return nil, nil
	}
	return &Change{height, next}, nil
}

// Write puts the change into the putter, usually the block commit bulk.
func (g *Governor) Write(putter kv.Putter, c *Change) error {
	data, err := rlp.EncodeToBytes(&c.Params)
	if err != nil {
		return err
	}
	return Bucket.NewPutter(putter).Put(changeKey(c.Height), data)
}

// Erase deletes the change at height from the putter.
func (g *Governor) Erase(putter kv.Putter, height uint32) error {
	return Bucket.NewPutter(putter).Delete(changeKey(height))
}

// Apply adds a committed change to the history.
func (g *Governor) Apply(c *Change) {
	g.lock.Lock()
	defer g.lock.Unlock()

	// drop any stale change at or above the height
	i := sort.Search(len(g.history), func(i int) bool {
		return g.history[i].Height >= c.Height
	})
	g.history = append(g.history[:i:i], *c)
	g.cache.Purge()

	metricChangeCount().Add(1)
	log.Info("gas params changed", "height", c.Height, "params", c.Params)
}

// Disconnect forgets changes made by blocks at or above height.
func (g *Governor) Disconnect(height uint32) {
	g.lock.Lock()
	defer g.lock.Unlock()

	i := sort.Search(len(g.history), func(i int) bool {
		return g.history[i].Height >= height
	})
	if i == len(g.history) {
		return
	}
	g.history = g.history[:i:i]
	g.cache.Purge()
	log.Info("gas params rolled back", "height", height)
}

// History returns a copy of recorded changes.
func (g *Governor) History() []Change {
	g.lock.RLock()
	defer g.lock.RUnlock()
	return append([]Change(nil), g.history...)
}
