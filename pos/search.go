// Copyright (c) 2025 The Aurum developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pos

import (
	"github.com/aurumchain/aurum/aurum"
	"github.com/aurumchain/aurum/co"
	"github.com/aurumchain/aurum/utxo"
	"github.com/btcsuite/btcd/wire"
)

// StakeCoin is a coin owned by the local staker.
type StakeCoin struct {
	Prevout wire.OutPoint
	Coin    *utxo.Coin
}

// SearchResult is a kernel found by Search.
type SearchResult struct {
	Kernel CandidateKernel
	Proof  aurum.Bytes32
	Target aurum.Bytes32
}

// Search looks for a kernel among coins for coarse timestamps in [from, to].
// Coins are searched in parallel. The earliest timestamp wins, ties are
// broken by the smaller proof, so the result does not depend on scheduling.
func Search(cfg *aurum.ChainConfig, modifier aurum.Bytes32, coins []StakeCoin, spendHeight, bits, from, to uint32) *SearchResult {
	mask := cfg.StakeTimestampMask
	step := mask + 1
	start := from &^ mask
	if start < from {
		start += step
	}

	found := make([]*SearchResult, len(coins))
	<-co.Parallel(func(queue chan<- func()) {
		for i, sc := range coins {
			i, sc := i, sc
			queue <- func() {
				e := StakeCacheEntry{BlockFromTime: sc.Coin.Time, Amount: sc.Coin.Value, Height: sc.Coin.Height}
				for ts := start; ts <= to && ts >= start; ts += step {
					if CheckMaturity(cfg, e, spendHeight, ts) != nil {
						continue
					}
					c := CandidateKernel{
						Prevout:       sc.Prevout,
						Amount:        e.Amount,
						BlockFromTime: e.BlockFromTime,
						Timestamp:     ts,
					}
					proof, target, err := CheckKernelHash(modifier, &c, bits, mask)
					if err == nil {
						found[i] = &SearchResult{c, proof, target}
						return
					}
					if IsKernelError(err, BadTarget) {
						return
					}
				}
			}
		}
	})

	var best *SearchResult
	for _, r := range found {
		if r == nil {
			continue
		}
		if best == nil ||
			r.Kernel.Timestamp < best.Kernel.Timestamp ||
			(r.Kernel.Timestamp == best.Kernel.Timestamp && HashToInt(r.Proof).Lt(HashToInt(best.Proof))) {
			best = r
		}
	}
	if best != nil {
		log.Debug("kernel found", "prevout", best.Kernel.Prevout, "time", best.Kernel.Timestamp)
	}
	return best
}
