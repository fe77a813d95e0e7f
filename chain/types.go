// Copyright (c) 2025 The Aurum developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package chain

import (
	"fmt"

	"github.com/aurumchain/aurum/aurum"
	"github.com/aurumchain/aurum/block"
	"github.com/aurumchain/aurum/pos"
	"github.com/holiman/uint256"
)

// BlockIndex is the per-block metadata kept for connected blocks.
type BlockIndex struct {
	ID         aurum.Bytes32
	ParentID   aurum.Bytes32
	Height     uint32
	Time       uint32
	Bits       uint32
	Modifier   aurum.Bytes32
	ProofHash  aurum.Bytes32
	ChainTrust aurum.Bytes32 // big-endian accumulated block proof
	StateRoot  aurum.Bytes32
	UTXORoot   aurum.Bytes32
	Staker     aurum.Address
	PoS        bool
}

var _ pos.ModifierSource = (*BlockIndex)(nil)

// NewBlockIndex creates the index of header connected on top of parent.
// parent is nil for genesis.
func NewBlockIndex(parent *BlockIndex, header *block.Header, modifier, proofHash aurum.Bytes32, staker aurum.Address) *BlockIndex {
	trust := pos.BlockProof(header.Bits())
	if parent != nil {
		trust.Add(trust, parent.Trust())
	}
	return &BlockIndex{
		ID:         header.ID(),
		ParentID:   header.ParentID(),
		Height:     header.Height(),
		Time:       header.Time(),
		Bits:       header.Bits(),
		Modifier:   modifier,
		ProofHash:  proofHash,
		ChainTrust: aurum.Bytes32(trust.Bytes32()),
		StateRoot:  header.StateRoot(),
		UTXORoot:   header.UTXORoot(),
		Staker:     staker,
		PoS:        header.IsProofOfStake(),
	}
}

// StakeModifier implements pos.ModifierSource.
func (bi *BlockIndex) StakeModifier() aurum.Bytes32 {
	return bi.Modifier
}

// Trust returns the accumulated chain trust.
func (bi *BlockIndex) Trust() *uint256.Int {
	return new(uint256.Int).SetBytes(bi.ChainTrust[:])
}

// Ancestor returns the time and bits used for retargeting.
func (bi *BlockIndex) Ancestor() *pos.Ancestor {
	return &pos.Ancestor{Time: bi.Time, Bits: bi.Bits}
}

func (bi *BlockIndex) String() string {
	return fmt.Sprintf("BlockIndex(%v #%d staker %v trust %v)", bi.ID, bi.Height, bi.Staker, bi.Trust())
}
