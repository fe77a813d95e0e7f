// Copyright (c) 2025 The Aurum developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package reconcile

import (
	"github.com/aurumchain/aurum/aurum"
	"github.com/aurumchain/aurum/cache"
	"github.com/aurumchain/aurum/kv"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/trie"
	"github.com/ethereum/go-ethereum/trie/trienode"
	"github.com/ethereum/go-ethereum/triedb/database"
	"github.com/pkg/errors"
)

const nodeCacheSize = 16384

// nodeBucket holds trie nodes keyed by hash. Nodes are never deleted, so the
// trie of any committed root stays readable after a rollback.
const nodeBucket = kv.Bucket("N")

// nodeDatabase serves trie nodes from the node bucket.
type nodeDatabase struct {
	getter kv.Getter
	cache  *cache.LRU[common.Hash, []byte]
}

func newNodeDatabase(store kv.Store) *nodeDatabase {
	c, _ := cache.NewLRU[common.Hash, []byte](nodeCacheSize)
	return &nodeDatabase{nodeBucket.NewGetter(store), c}
}

// Reader implements database.Database. Nodes are content addressed,
// so one reader serves every root.
func (db *nodeDatabase) Reader(common.Hash) (database.Reader, error) {
	return db, nil
}

// Node implements database.Reader. A missing node is returned as nil.
func (db *nodeDatabase) Node(_ common.Hash, _ []byte, hash common.Hash) ([]byte, error) {
	if blob, ok := db.cache.Get(hash); ok {
		return blob, nil
	}
	blob, err := kv.GetOrNil(db.getter, hash[:])
	if err != nil {
		return nil, errors.Wrap(err, "get trie node")
	}
	if blob != nil {
		db.cache.Add(hash, blob)
	}
	return blob, nil
}

// update applies changes to the trie at root and returns the new root with
// the nodes it introduced. Leaves are keyed by keccak256 of the store key,
// and empty values delete.
func (db *nodeDatabase) update(root aurum.Bytes32, changes []kv.Change) (aurum.Bytes32, map[common.Hash][]byte, error) {
	if len(changes) == 0 {
		return root, nil, nil
	}
	tr, err := trie.New(trie.TrieID(common.Hash(root)), db)
	if err != nil {
		return aurum.Bytes32{}, nil, errors.Wrap(err, "open trie")
	}
	for _, c := range changes {
		key := aurum.Keccak256(c.Key)
		if err := tr.Update(key[:], c.Value); err != nil {
			return aurum.Bytes32{}, nil, errors.Wrap(err, "update trie")
		}
	}
	hash, set := tr.Commit(false)
	return aurum.Bytes32(hash), liveNodes(set), nil
}

func liveNodes(set *trienode.NodeSet) map[common.Hash][]byte {
	if set == nil {
		return nil
	}
	nodes := make(map[common.Hash][]byte, len(set.Nodes))
	for _, n := range set.Nodes {
		if n.IsDeleted() {
			continue
		}
		nodes[n.Hash] = n.Blob
	}
	return nodes
}

func writeNodes(w kv.Putter, nodes map[common.Hash][]byte) error {
	p := nodeBucket.NewPutter(w)
	for hash, blob := range nodes {
		hash := hash
		if err := p.Put(hash[:], blob); err != nil {
			return errors.Wrap(err, "put trie node")
		}
	}
	return nil
}
