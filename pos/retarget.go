// Copyright (c) 2025 The Aurum developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pos

import (
	"github.com/aurumchain/aurum/aurum"
	"github.com/holiman/uint256"
)

// Ancestor is the time and bits of a connected block.
type Ancestor struct {
	Time uint32
	Bits uint32
}

// NextTargetRequired returns the bits a child of parent must carry.
// The target moves toward the spacing of the last two blocks,
// bounded by ten spacings, and never eases beyond the limit.
func NextTargetRequired(cfg *aurum.ChainConfig, parent, grandparent *Ancestor) uint32 {
	limit, _, _ := CompactToTarget(cfg.PosLimitBits)
	if parent == nil || grandparent == nil {
		return TargetToCompact(limit)
	}

	spacing := uint64(cfg.TargetSpacing)
	actual := spacing
	if parent.Time >= grandparent.Time {
		actual = uint64(parent.Time - grandparent.Time)
	}
	if actual > spacing*10 {
		actual = spacing * 10
	}
	interval := uint64(cfg.TargetTimespan) / spacing

	target, negative, overflow := CompactToTarget(parent.Bits)
	if negative || overflow || target.IsZero() {
		return TargetToCompact(limit)
	}
	next, over := new(uint256.Int).MulDivOverflow(
		target,
		uint256.NewInt((interval-1)*spacing+2*actual),
		uint256.NewInt((interval+1)*spacing),
	)
	if over || next.IsZero() || next.Gt(limit) {
		return TargetToCompact(limit)
	}
	return TargetToCompact(next)
}
