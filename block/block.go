// Copyright (c) 2025 The Aurum developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package block

import (
	"fmt"
	"io"
	"sync/atomic"

	"github.com/aurumchain/aurum/aurum"
	"github.com/aurumchain/aurum/tx"
	"github.com/ethereum/go-ethereum/rlp"
)

// Block is an immutable block type.
type Block struct {
	header *Header
	txs    tx.Transactions

	cache struct {
		size atomic.Value
	}
}

// New create a block instance.
// Note: This method is usually to recover a block by its portions, and the MerkleRoot is not verified.
// To build up a block, use a Builder.
func New(header *Header, txs tx.Transactions) *Block {
	return &Block{
		header: header,
		txs:    append(tx.Transactions(nil), txs...),
	}
}

// WithSignature create a new block object with the combined signature field set.
func (b *Block) WithSignature(sigDlgt []byte) *Block {
	return &Block{
		header: b.header.WithSignature(sigDlgt),
		txs:    b.txs,
	}
}

// Header returns the block header.
func (b *Block) Header() *Header {
	return b.header
}

// Transactions returns a copy of transactions.
func (b *Block) Transactions() tx.Transactions {
	return append(tx.Transactions(nil), b.txs...)
}

// MerkleRoot computes the merkle root of contained txs.
func (b *Block) MerkleRoot() aurum.Bytes32 {
	return b.txs.MerkleRoot()
}

// CoinStake returns the coinstake of a proof-of-stake block, the second tx.
func (b *Block) CoinStake() *tx.Transaction {
	if len(b.txs) < 2 || !b.txs[1].IsCoinStake() {
		return nil
	}
	return b.txs[1]
}

// Size returns the rlp encoded size of the block.
func (b *Block) Size() int {
	if cached := b.cache.size.Load(); cached != nil {
		return cached.(int)
	}
	var size counter
	rlp.Encode(&size, b)
	b.cache.size.Store(int(size))
	return int(size)
}

// Weight returns the block weight: txs weight plus the header scaled as base data.
func (b *Block) Weight() int64 {
	hs, _ := rlp.EncodeToBytes(b.header)
	weight := int64(len(hs)) * aurum.WitnessScaleFactor
	for _, t := range b.txs {
		weight += t.Weight()
	}
	return weight
}

// SigOpsCost returns scaled legacy sig-op count of all txs.
func (b *Block) SigOpsCost() int64 {
	var n int64
	for _, t := range b.txs {
		n += int64(t.SigOps()) * aurum.WitnessScaleFactor
	}
	return n
}

// EncodeRLP implements rlp.Encoder.
func (b *Block) EncodeRLP(w io.Writer) error {
	return rlp.Encode(w, []any{
		b.header,
		b.txs,
	})
}

func (b *Block) String() string {
	return fmt.Sprintf(`Block(%v)
%v
Transactions: %v`, b.Size(), b.header, len(b.txs))
}

// Decoder to decode block from bytes.
// Since Block is immutable, it's not suitable to implement rlp.Decoder.
type Decoder struct {
	Result *Block
}

// DecodeRLP implements rlp.Decoder.
func (d *Decoder) DecodeRLP(s *rlp.Stream) error {
	payload := struct {
		Header Header
		Txs    tx.Transactions
	}{}

	if err := s.Decode(&payload); err != nil {
		return err
	}
	d.Result = &Block{
		header: &payload.Header,
		txs:    payload.Txs,
	}
	return nil
}

type counter int

func (c *counter) Write(b []byte) (int, error) {
	*c += counter(len(b))
	return len(b), nil
}
