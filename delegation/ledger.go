// Copyright (c) 2025 The Aurum developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package delegation

import (
	"bytes"
	"encoding/binary"

	"github.com/aurumchain/aurum/aurum"
	"github.com/aurumchain/aurum/cry"
	"github.com/aurumchain/aurum/vm"
	"github.com/inconshreveable/log15"
)

var log = log15.New("pkg", "delegation")

// Delegation is an active delegation record.
type Delegation struct {
	Staker      aurum.Address
	Fee         uint8
	BlockHeight uint32
	PoD         []byte
}

// IsNull returns whether all fields are default.
func (d *Delegation) IsNull() bool {
	return d.Staker.IsZero() && d.Fee == 0 && d.BlockHeight == 0 && len(d.PoD) == 0
}

// Equal compares all fields.
func (d *Delegation) Equal(other *Delegation) bool {
	return d.Staker == other.Staker &&
		d.Fee == other.Fee &&
		d.BlockHeight == other.BlockHeight &&
		bytes.Equal(d.PoD, other.PoD)
}

// StorageGetter reads contract storage.
type StorageGetter interface {
	GetStorage(addr aurum.Address, key aurum.Bytes32) (aurum.Bytes32, error)
}

// record fields, in slot order
const (
	slotStaker = iota
	slotFee
	slotHeight
	slotPoD0
	slotPoD1
	slotPoD2
	numSlots
)

// Slot returns the storage key of field i of the delegator's record.
func Slot(delegator aurum.Address, i int) aurum.Bytes32 {
	var buf [64]byte
	copy(buf[32-aurum.AddressLength:32], delegator[:])
	binary.BigEndian.PutUint64(buf[56:], uint64(i))
	return aurum.Keccak256(buf[:])
}

// StorageDeltas returns the writes storing d for delegator. A nil d clears the record.
func StorageDeltas(contract, delegator aurum.Address, d *Delegation) []vm.StorageDelta {
	var words [numSlots]aurum.Bytes32
	if d != nil {
		words[slotStaker] = aurum.BytesToBytes32(d.Staker[:])
		words[slotFee] = aurum.BytesToBytes32([]byte{d.Fee})
		var h [4]byte
		binary.BigEndian.PutUint32(h[:], d.BlockHeight)
		words[slotHeight] = aurum.BytesToBytes32(h[:])
		pod := make([]byte, 3*32)
		copy(pod, d.PoD)
		copy(words[slotPoD0][:], pod[0:32])
		copy(words[slotPoD1][:], pod[32:64])
		copy(words[slotPoD2][:], pod[64:96])
	}
	deltas := make([]vm.StorageDelta, 0, numSlots)
	for i, w := range words {
		deltas = append(deltas, vm.StorageDelta{Address: contract, Key: Slot(delegator, i), Value: w})
	}
	return deltas
}

// Ledger reads delegation records from the delegation contract storage.
type Ledger struct {
	contract aurum.Address
	storage  StorageGetter
}

// NewLedger creates a ledger over the contract's storage.
func NewLedger(contract aurum.Address, storage StorageGetter) *Ledger {
	return &Ledger{contract, storage}
}

// Get returns the delegation of delegator, or nil if none.
func (l *Ledger) Get(delegator aurum.Address) (*Delegation, error) {
	var words [numSlots]aurum.Bytes32
	for i := range words {
		w, err := l.storage.GetStorage(l.contract, Slot(delegator, i))
		if err != nil {
			return nil, err
		}
		words[i] = w
	}
	if words[slotStaker].IsZero() {
		return nil, nil
	}
	pod := make([]byte, 0, 3*32)
	pod = append(pod, words[slotPoD0][:]...)
	pod = append(pod, words[slotPoD1][:]...)
	pod = append(pod, words[slotPoD2][:]...)

	return &Delegation{
		Staker:      aurum.BytesToAddress(words[slotStaker][32-aurum.AddressLength:]),
		Fee:         words[slotFee][31],
		BlockHeight: binary.BigEndian.Uint32(words[slotHeight][28:]),
		PoD:         pod[:aurum.CompactSignatureSize],
	}, nil
}

// Verify re-reads the record of delegator and compares it with claimed field
// by field. The PoD must also recover to the claimed staker.
func (l *Ledger) Verify(delegator aurum.Address, claimed *Delegation) (bool, error) {
	rec, err := l.Get(delegator)
	if err != nil {
		return false, err
	}
	if rec == nil || claimed == nil || !rec.Equal(claimed) {
		return false, nil
	}
	staker, err := cry.RecoverPoDStaker(claimed.PoD, delegator)
	if err != nil {
		log.Debug("pod recover failed", "delegator", delegator, "err", err)
		return false, nil
	}
	return staker == claimed.Staker, nil
}
