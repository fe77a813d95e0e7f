// Copyright (c) 2025 The Aurum developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pos

import (
	"github.com/aurumchain/aurum/aurum"
	"github.com/holiman/uint256"
)

// CompactToTarget expands the compact difficulty encoding into a 256-bit target.
// The mantissa sign bit and the size overflow are reported as they are by
// the proof-of-work encoding; a negative or overflowed target is still returned.
func CompactToTarget(bits uint32) (target *uint256.Int, negative bool, overflow bool) {
	size := bits >> 24
	word := uint64(bits & 0x007fffff)

	target = new(uint256.Int)
	if size <= 3 {
		word >>= 8 * (3 - size)
		target.SetUint64(word)
	} else {
		target.Lsh(target.SetUint64(word), uint(8*(size-3)))
	}

	negative = word != 0 && bits&0x00800000 != 0
	overflow = word != 0 && (size > 34 ||
		(word > 0xff && size > 33) ||
		(word > 0xffff && size > 32))
	return
}

// TargetToCompact encodes target into compact form.
func TargetToCompact(target *uint256.Int) uint32 {
	size := uint32((target.BitLen() + 7) / 8)
	var compact uint32
	if size <= 3 {
		compact = uint32(target.Uint64() << (8 * (3 - size)))
	} else {
		compact = uint32(new(uint256.Int).Rsh(target, uint(8*(size-3))).Uint64())
	}
	// the sign bit is set, move one byte into the exponent
	if compact&0x00800000 != 0 {
		compact >>= 8
		size++
	}
	return compact | size<<24
}

// HashToInt reads a chain hash as a little-endian 256-bit integer.
func HashToInt(h aurum.Bytes32) *uint256.Int {
	r := h.Reverse()
	return new(uint256.Int).SetBytes(r[:])
}

// IntToHash writes a 256-bit integer in chain hash byte order.
func IntToHash(v *uint256.Int) aurum.Bytes32 {
	return aurum.Bytes32(v.Bytes32()).Reverse()
}

// BlockProof returns the expected number of hashes to meet bits,
// 2^256 / (target+1). Invalid targets prove nothing.
func BlockProof(bits uint32) *uint256.Int {
	target, negative, overflow := CompactToTarget(bits)
	if negative || overflow || target.IsZero() {
		return new(uint256.Int)
	}
	// (~target / (target+1)) + 1 avoids the 2^256 overflow
	inv := new(uint256.Int).Not(target)
	inv.Div(inv, new(uint256.Int).AddUint64(target, 1))
	return inv.AddUint64(inv, 1)
}
