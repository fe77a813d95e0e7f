// Copyright (c) 2025 The Aurum developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package tx

import (
	"github.com/aurumchain/aurum/aurum"
	"github.com/aurumchain/aurum/vm"
)

// Receipt represents the result of one contract output execution.
type Receipt struct {
	TxID            aurum.Bytes32
	OutputIndex     uint32
	Sender          aurum.Address
	ContractAddress aurum.Address
	GasUsed         uint64
	Excepted        vm.Exception
	Deltas          []vm.StorageDelta
	Logs            []*vm.Log
}

// Receipts slice of receipts.
type Receipts []*Receipt

// GasUsed sums gas used by all receipts.
func (rs Receipts) GasUsed() (total uint64) {
	for _, r := range rs {
		total += r.GasUsed
	}
	return
}
