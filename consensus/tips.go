// Copyright (c) 2025 The Aurum developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package consensus

import (
	"bytes"

	"github.com/aurumchain/aurum/block"
	"github.com/aurumchain/aurum/chainstate"
	"golang.org/x/sync/errgroup"
)

// TipResult is the outcome of validating one candidate block.
type TipResult struct {
	Stage *Stage
	Err   error
}

// ValidateTips validates competing candidates on top of the best block
// concurrently. Each candidate takes the chain state lock for execution.
// Errors other than rejections and non-fatal block errors abort the whole call.
func (c *Consensus) ValidateTips(cs *chainstate.ChainState, blks []*block.Block, now uint64) ([]TipResult, error) {
	results := make([]TipResult, len(blks))

	var g errgroup.Group
	for i, blk := range blks {
		i, blk := i, blk
		g.Go(func() error {
			stage, err := c.Process(cs, blk, now)
			if err != nil && !IsRejected(err) && !IsFutureBlock(err) &&
				!IsParentMissing(err) && !IsKnownBlock(err) && !IsNotOnBest(err) {
				return err
			}
			results[i] = TipResult{stage, err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// BestTip returns the valid stage with the most chain trust. Ties go to the
// smaller block id. It returns nil if no candidate is valid.
func BestTip(results []TipResult) *Stage {
	var best *Stage
	for _, r := range results {
		if r.Stage == nil {
			continue
		}
		if best == nil {
			best = r.Stage
			continue
		}
		switch r.Stage.Index.Trust().Cmp(best.Index.Trust()) {
		case 1:
			best = r.Stage
		case 0:
			if id, bestID := r.Stage.Index.ID, best.Index.ID; bytes.Compare(id[:], bestID[:]) < 0 {
				best = r.Stage
			}
		}
	}
	return best
}
