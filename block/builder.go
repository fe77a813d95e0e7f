// Copyright (c) 2025 The Aurum developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package block

import (
	"github.com/aurumchain/aurum/aurum"
	"github.com/aurumchain/aurum/tx"
	"github.com/btcsuite/btcd/wire"
)

// Builder to make it easy to build a block object.
type Builder struct {
	headerBody headerBody
	txs        tx.Transactions
}

// Version set header version.
func (b *Builder) Version(v uint32) *Builder {
	b.headerBody.Version = v
	return b
}

// ParentID set parent id.
func (b *Builder) ParentID(id aurum.Bytes32) *Builder {
	b.headerBody.ParentID = id
	return b
}

// Height set block height.
func (b *Builder) Height(h uint32) *Builder {
	b.headerBody.Height = h
	return b
}

// Time set timestamp.
func (b *Builder) Time(t uint32) *Builder {
	b.headerBody.Time = t
	return b
}

// Bits set compact target.
func (b *Builder) Bits(bits uint32) *Builder {
	b.headerBody.Bits = bits
	return b
}

// Nonce set proof-of-work nonce.
func (b *Builder) Nonce(n uint32) *Builder {
	b.headerBody.Nonce = n
	return b
}

// StateRoot set contract state root.
func (b *Builder) StateRoot(root aurum.Bytes32) *Builder {
	b.headerBody.StateRoot = root
	return b
}

// UTXORoot set utxo root.
func (b *Builder) UTXORoot(root aurum.Bytes32) *Builder {
	b.headerBody.UTXORoot = root
	return b
}

// PrevoutStake set the kernel coin.
func (b *Builder) PrevoutStake(op wire.OutPoint) *Builder {
	b.headerBody.PrevoutStake = op
	return b
}

// Transaction add a transaction.
func (b *Builder) Transaction(t *tx.Transaction) *Builder {
	b.txs = append(b.txs, t)
	return b
}

// Build build a block object.
func (b *Builder) Build() *Block {
	header := Header{body: b.headerBody}
	header.body.MerkleRoot = b.txs.MerkleRoot()

	return &Block{
		header: &header,
		txs:    append(tx.Transactions(nil), b.txs...),
	}
}
