// Copyright (c) 2025 The Aurum developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package tx

import (
	"github.com/aurumchain/aurum/aurum"
	"github.com/btcsuite/btcd/blockchain"
	"github.com/btcsuite/btcd/btcutil"
)

// Transactions a slice of transactions.
type Transactions []*Transaction

// MerkleRoot computes the merkle root of tx ids.
func (txs Transactions) MerkleRoot() aurum.Bytes32 {
	if len(txs) == 0 {
		return aurum.Bytes32{}
	}
	utxs := make([]*btcutil.Tx, 0, len(txs))
	for _, t := range txs {
		utxs = append(utxs, btcutil.NewTx(t.msg))
	}
	return aurum.Bytes32(blockchain.CalcMerkleRoot(utxs, false))
}
