// Copyright (c) 2025 The Aurum developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package dgp implements the on-chain adjustable consensus parameters.
package dgp

import (
	"fmt"

	"github.com/aurumchain/aurum/aurum"
)

// GasParams is the set of governed limits in effect for a block.
type GasParams struct {
	MaxBlockSerSize   uint32
	MaxBlockWeight    uint32
	MaxBlockSigOps    uint32
	MaxTxSigOps       uint32
	MaxProtoMsgLength uint32
	BlockGasLimit     uint64
	MinGasPrice       uint64
}

// ApplyGovernanceChange returns p with the block size replaced and every
// size dependent limit recomputed from it.
func ApplyGovernanceChange(p GasParams, newBlockSize uint32) GasParams {
	weight := newBlockSize * aurum.WitnessScaleFactor
	sigOps := weight / 100

	p.MaxBlockSerSize = newBlockSize
	p.MaxBlockWeight = weight
	p.MaxBlockSigOps = sigOps
	p.MaxTxSigOps = sigOps / 5
	p.MaxProtoMsgLength = weight
	return p
}

// GenesisParams returns the params configured for the chain start.
func GenesisParams(cfg *aurum.ChainConfig) GasParams {
	return ApplyGovernanceChange(GasParams{
		BlockGasLimit: cfg.BlockGasLimit,
		MinGasPrice:   cfg.MinGasPrice,
	}, cfg.BlockSize)
}

func (p GasParams) String() string {
	return fmt.Sprintf("GasParams(size=%d weight=%d sigops=%d txsigops=%d gaslimit=%d mingasprice=%d)",
		p.MaxBlockSerSize, p.MaxBlockWeight, p.MaxBlockSigOps, p.MaxTxSigOps, p.BlockGasLimit, p.MinGasPrice)
}
