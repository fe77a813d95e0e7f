// Copyright (c) 2025 The Aurum developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package utxo maintains the unspent output set.
package utxo

import (
	"bytes"
	"sort"

	"github.com/aurumchain/aurum/kv"
	"github.com/aurumchain/aurum/tx"
	"github.com/btcsuite/btcd/wire"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/pkg/errors"
)

// ErrMissingCoin is returned when spending a missing or spent coin.
var ErrMissingCoin = errors.New("missing or spent coin")

// View is a pending overlay of the utxo set.
type View struct {
	src   kv.Getter
	coins map[wire.OutPoint]*Coin // nil means spent
	cache map[wire.OutPoint]*Coin
}

// NewView creates a view reading committed coins from src.
func NewView(src kv.Getter) *View {
	return &View{
		src:   src,
		coins: make(map[wire.OutPoint]*Coin),
		cache: make(map[wire.OutPoint]*Coin),
	}
}

// GetCoin returns the coin at op, or nil if missing or spent.
func (v *View) GetCoin(op wire.OutPoint) (*Coin, error) {
	if c, ok := v.coins[op]; ok {
		return c, nil
	}
	if c, ok := v.cache[op]; ok {
		return c, nil
	}
	data, err := kv.GetOrNil(v.src, Key(op))
	if err != nil {
		return nil, errors.Wrap(err, "get coin")
	}
	var c *Coin
	if data != nil {
		c = new(Coin)
		if err := rlp.DecodeBytes(data, c); err != nil {
			return nil, errors.Wrap(err, "decode coin")
		}
	}
	v.cache[op] = c
	return c, nil
}

// AddCoin adds a coin at op.
func (v *View) AddCoin(op wire.OutPoint, c *Coin) {
	cpy := *c
	v.coins[op] = &cpy
}

// SpendCoin removes the coin at op and returns it.
func (v *View) SpendCoin(op wire.OutPoint) (*Coin, error) {
	c, err := v.GetCoin(op)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, errors.Wrapf(ErrMissingCoin, "%v", op)
	}
	v.coins[op] = nil
	return c, nil
}

// ApplyTx spends the inputs of t and adds its plain outputs.
// Contract outputs and empty outputs never become coins.
func (v *View) ApplyTx(t *tx.Transaction, height, time uint32) error {
	msg := t.MsgTx()
	if !t.IsCoinBase() {
		for _, in := range msg.TxIn {
			if _, err := v.SpendCoin(in.PreviousOutPoint); err != nil {
				return err
			}
		}
	}
	coinstake := t.IsCoinStake()
	for i, out := range msg.TxOut {
		if len(out.PkScript) == 0 || tx.IsContractScript(out.PkScript) {
			continue
		}
		v.AddCoin(t.OutPoint(uint32(i)), &Coin{
			Value:     out.Value,
			Script:    out.PkScript,
			Height:    height,
			Time:      time,
			Coinbase:  t.IsCoinBase(),
			Coinstake: coinstake,
		})
	}
	return nil
}

// Changes returns pending writes sorted by key.
func (v *View) Changes() ([]kv.Change, error) {
	changes := make([]kv.Change, 0, len(v.coins))
	for op, c := range v.coins {
		change := kv.Change{Key: Key(op)}
		if c != nil {
			data, err := rlp.EncodeToBytes(c)
			if err != nil {
				return nil, err
			}
			change.Value = data
		}
		changes = append(changes, change)
	}
	sort.Slice(changes, func(i, j int) bool {
		return bytes.Compare(changes[i].Key, changes[j].Key) < 0
	})
	return changes, nil
}
