// Copyright (c) 2025 The Aurum developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package utxo

import (
	"encoding/binary"
	"io"

	"github.com/btcsuite/btcd/wire"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/pkg/errors"
)

// Coin is an unspent transaction output.
type Coin struct {
	Value     int64
	Script    []byte
	Height    uint32
	Time      uint32
	Coinbase  bool
	Coinstake bool
}

type coinBody struct {
	Value     uint64
	Script    []byte
	Height    uint32
	Time      uint32
	Coinbase  bool
	Coinstake bool
}

// EncodeRLP implements rlp.Encoder.
func (c *Coin) EncodeRLP(w io.Writer) error {
	if c.Value < 0 {
		return errors.New("negative coin value")
	}
	return rlp.Encode(w, &coinBody{uint64(c.Value), c.Script, c.Height, c.Time, c.Coinbase, c.Coinstake})
}

// DecodeRLP implements rlp.Decoder.
func (c *Coin) DecodeRLP(s *rlp.Stream) error {
	var body coinBody
	if err := s.Decode(&body); err != nil {
		return err
	}
	if body.Value > 1<<62 {
		return errors.New("coin value overflow")
	}
	*c = Coin{int64(body.Value), body.Script, body.Height, body.Time, body.Coinbase, body.Coinstake}
	return nil
}

// KeyLength is the length of coin keys.
const KeyLength = 32 + 4

// Key returns the store key of the outpoint: txid || index(BE).
func Key(op wire.OutPoint) []byte {
	k := make([]byte, KeyLength)
	copy(k, op.Hash[:])
	binary.BigEndian.PutUint32(k[32:], op.Index)
	return k
}

// ParseKey reverts Key.
func ParseKey(k []byte) (op wire.OutPoint, err error) {
	if len(k) != KeyLength {
		return op, errors.New("invalid coin key length")
	}
	copy(op.Hash[:], k)
	op.Index = binary.BigEndian.Uint32(k[32:])
	return
}
