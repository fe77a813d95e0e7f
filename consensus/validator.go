// Copyright (c) 2025 The Aurum developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package consensus

import (
	"github.com/aurumchain/aurum/aurum"
	"github.com/aurumchain/aurum/block"
	"github.com/aurumchain/aurum/chain"
	"github.com/aurumchain/aurum/chainstate"
	"github.com/aurumchain/aurum/pos"
)

func (c *Consensus) validateBlockHeader(
	cs *chainstate.ChainState,
	header *block.Header,
	parent, grandparent *chain.BlockIndex,
	nowTimestamp uint64,
) error {
	cfg := cs.Config()
	if parent == nil {
		if header.Height() != 0 {
			return reject(ReasonHeight, "genesis height %d", header.Height())
		}
		if header.IsProofOfStake() {
			return reject(ReasonCoinstake, "proof-of-stake genesis")
		}
		if header.Bits() != cfg.Genesis.Bits {
			return reject(ReasonDiffBits, "genesis bits: want %#x, have %#x", cfg.Genesis.Bits, header.Bits())
		}
		return nil
	}

	if header.Height() != parent.Height+1 {
		return reject(ReasonHeight, "parent %d, current %d", parent.Height, header.Height())
	}
	if header.Time() <= parent.Time {
		return reject(ReasonTimestamp, "block timestamp behind parent: parent %v, current %v", parent.Time, header.Time())
	}
	if uint64(header.Time()) > nowTimestamp+uint64(cfg.MaxFutureDrift) {
		return errFutureBlock
	}

	if header.Height() <= cfg.LastPOWBlock {
		if header.IsProofOfStake() {
			return reject(ReasonPoW, "proof-of-stake block at proof-of-work height %d", header.Height())
		}
		return checkProofOfWork(cfg.PowLimitBits, header)
	}

	if !header.IsProofOfStake() {
		return reject(ReasonCoinstake, "proof-of-work block at height %d", header.Height())
	}
	if header.Time()&cfg.StakeTimestampMask != 0 {
		return reject(ReasonTimestampMask, "timestamp %d, mask %#x", header.Time(), cfg.StakeTimestampMask)
	}
	var gp *pos.Ancestor
	if grandparent != nil {
		gp = grandparent.Ancestor()
	}
	if want := pos.NextTargetRequired(cfg, parent.Ancestor(), gp); header.Bits() != want {
		return reject(ReasonDiffBits, "want %#x, have %#x", want, header.Bits())
	}
	return nil
}

// checkProofOfWork checks the block hash against its own bits, which must
// not be easier than limitBits.
func checkProofOfWork(limitBits uint32, header *block.Header) error {
	target, negative, overflow := pos.CompactToTarget(header.Bits())
	limit, _, _ := pos.CompactToTarget(limitBits)
	if negative || overflow || target.IsZero() || target.Gt(limit) {
		return reject(ReasonDiffBits, "bits %#x out of range", header.Bits())
	}
	if pos.HashToInt(header.ID()).Gt(target) {
		return reject(ReasonPoW, "hash %v above target", header.ID())
	}
	return nil
}

func (c *Consensus) validateBlockBody(cs *chainstate.ChainState, blk *block.Block) error {
	header := blk.Header()
	txs := blk.Transactions()
	if header.MerkleRoot() != blk.MerkleRoot() {
		return reject(ReasonMerkleRoot, "want %v, have %v", header.MerkleRoot(), blk.MerkleRoot())
	}

	if len(txs) == 0 || !txs[0].IsCoinBase() {
		return reject(ReasonCoinbaseMissing, "first tx is not coinbase")
	}
	for _, t := range txs[1:] {
		if t.IsCoinBase() {
			return reject(ReasonCoinbaseMulti, "more than one coinbase")
		}
	}

	if header.IsProofOfStake() {
		cstake := blk.CoinStake()
		if cstake == nil {
			return reject(ReasonCoinstake, "second tx is not coinstake")
		}
		if prevout := cstake.MsgTx().TxIn[0].PreviousOutPoint; prevout != header.PrevoutStake() {
			return reject(ReasonCoinstakeKernel, "coinstake spends %v, header claims %v", prevout, header.PrevoutStake())
		}
		for _, t := range txs[2:] {
			if t.IsCoinStake() {
				return reject(ReasonCoinstakeMulti, "more than one coinstake")
			}
		}
	}

	params := cs.Governor().CurrentParams(header.Height())
	if size := blk.Size(); size > int(params.MaxBlockSerSize) {
		return reject(ReasonBlockLength, "size %d, limit %d", size, params.MaxBlockSerSize)
	}
	if weight := blk.Weight(); weight > int64(params.MaxBlockWeight) {
		return reject(ReasonBlockWeight, "weight %d, limit %d", weight, params.MaxBlockWeight)
	}
	if sigOps := blk.SigOpsCost(); sigOps > int64(params.MaxBlockSigOps) {
		return reject(ReasonBlockSigOps, "sigops cost %d, limit %d", sigOps, params.MaxBlockSigOps)
	}
	for _, t := range txs {
		if cost := t.SigOps() * aurum.WitnessScaleFactor; cost > int(params.MaxTxSigOps) {
			return reject(ReasonTxSigOps, "tx %v sigops cost %d, limit %d", t.ID(), cost, params.MaxTxSigOps)
		}
	}
	return nil
}
