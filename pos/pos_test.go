// Copyright (c) 2025 The Aurum developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pos

import (
	"encoding/binary"
	"testing"

	"github.com/aurumchain/aurum/aurum"
	"github.com/aurumchain/aurum/utxo"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// bitsEasy expands to 2^250, so a 1 COIN kernel hits with probability 1/64.
const bitsEasy = 0x22000004

func TestCompact(t *testing.T) {
	tests := []struct {
		bits     uint32
		target   string
		compact  uint32
		negative bool
		overflow bool
	}{
		{0x00000000, "0x0", 0x00000000, false, false},
		{0x01003456, "0x0", 0x00000000, false, false},
		{0x01123456, "0x12", 0x01120000, false, false},
		{0x02008000, "0x80", 0x02008000, false, false},
		{0x05009234, "0x92340000", 0x05009234, false, false},
		{0x04923456, "0x12345600", 0x04123456, true, false},
		{0x1d00ffff, "0xffff0000000000000000000000000000000000000000000000000000", 0x1d00ffff, false, false},
		{0x20123456, "0x1234560000000000000000000000000000000000000000000000000000000000", 0x20123456, false, false},
	}
	for _, tt := range tests {
		target, negative, overflow := CompactToTarget(tt.bits)
		assert.Equal(t, tt.target, target.Hex(), "bits %08x", tt.bits)
		assert.Equal(t, tt.negative, negative, "bits %08x", tt.bits)
		assert.Equal(t, tt.overflow, overflow, "bits %08x", tt.bits)
		assert.Equal(t, tt.compact, TargetToCompact(target), "bits %08x", tt.bits)
	}

	_, _, overflow := CompactToTarget(0xff123456)
	assert.True(t, overflow)

	target, _, _ := CompactToTarget(bitsEasy)
	assert.Equal(t, new(uint256.Int).Lsh(uint256.NewInt(1), 250), target)
}

func TestHashToInt(t *testing.T) {
	var h aurum.Bytes32
	h[0] = 1
	assert.Equal(t, uint256.NewInt(1), HashToInt(h))
	assert.Equal(t, h, IntToHash(uint256.NewInt(1)))
}

type testModifier aurum.Bytes32

func (m testModifier) StakeModifier() aurum.Bytes32 { return aurum.Bytes32(m) }

func TestBlockProof(t *testing.T) {
	assert.Equal(t, uint64(0x100010001), BlockProof(0x1d00ffff).Uint64())
	assert.True(t, BlockProof(0).IsZero())
	assert.True(t, BlockProof(0x04923456).IsZero(), "negative")
	assert.True(t, BlockProof(bitsEasy).Lt(BlockProof(0x1d00ffff)))
}

func TestComputeStakeModifier(t *testing.T) {
	kernel := aurum.Bytes32{7}
	assert.Equal(t, aurum.Bytes32{}, ComputeStakeModifier(nil, kernel))

	parent := testModifier{9}
	m := ComputeStakeModifier(parent, kernel)
	assert.Equal(t, aurum.DoubleSHA256(append(kernel.Bytes(), aurum.Bytes32(parent).Bytes()...)), m)
	assert.NotEqual(t, m, ComputeStakeModifier(parent, aurum.Bytes32{8}))
}

func TestKernelHashCoarseTime(t *testing.T) {
	c := CandidateKernel{
		Prevout:       wire.OutPoint{Hash: chainhash.Hash{1}, Index: 1},
		Amount:        100 * aurum.COIN,
		BlockFromTime: 1000,
		Timestamp:     1600,
	}
	h := ComputeKernelHash(aurum.Bytes32{1}, &c, 15)
	c.Timestamp = 1615
	assert.Equal(t, h, ComputeKernelHash(aurum.Bytes32{1}, &c, 15))
	c.Timestamp = 1616
	assert.NotEqual(t, h, ComputeKernelHash(aurum.Bytes32{1}, &c, 15))
}

func TestWeightedTarget(t *testing.T) {
	target := uint256.NewInt(1000)
	assert.Equal(t, uint256.NewInt(100000), WeightedTarget(target, 100*aurum.COIN))
	assert.Equal(t, uint256.NewInt(500), WeightedTarget(target, aurum.COIN/2))
	assert.True(t, WeightedTarget(target, 0).IsZero())

	huge, _, _ := CompactToTarget(bitsEasy)
	assert.Equal(t, new(uint256.Int).SetAllOne(), WeightedTarget(huge, 1000*aurum.COIN))
}

func TestCheckKernelHashScenario(t *testing.T) {
	modifier := aurum.DoubleSHA256([]byte("modifier"))
	c := CandidateKernel{
		Prevout:       wire.OutPoint{Hash: chainhash.Hash{2}, Index: 0},
		Amount:        100 * aurum.COIN,
		BlockFromTime: 5000,
		Timestamp:     123456 &^ 15,
	}
	bits := uint32(0x1f00ffff)
	run := func() (bool, aurum.Bytes32) {
		proof, target, err := CheckKernelHash(modifier, &c, bits, 15)
		if err != nil {
			assert.True(t, IsKernelError(err, BelowTarget))
		}
		d, _, _ := CompactToTarget(bits)
		want := !HashToInt(ComputeKernelHash(modifier, &c, 15)).Gt(new(uint256.Int).Mul(d, uint256.NewInt(100)))
		assert.Equal(t, want, err == nil)
		assert.Equal(t, IntToHash(new(uint256.Int).Mul(d, uint256.NewInt(100))), target)
		return err == nil, proof
	}
	ok1, proof1 := run()
	ok2, proof2 := run()
	assert.Equal(t, ok1, ok2)
	assert.Equal(t, proof1, proof2)

	_, _, err := CheckKernelHash(modifier, &c, 0x04923456, 15)
	assert.True(t, IsKernelError(err, BadTarget))
	_, _, err = CheckKernelHash(modifier, &c, 0, 15)
	assert.True(t, IsKernelError(err, BadTarget))
}

func TestKernelMonteCarlo(t *testing.T) {
	const rounds = 4096
	hits := func(amount int64) int {
		n := 0
		for i := 0; i < rounds; i++ {
			var seed [8]byte
			binary.BigEndian.PutUint64(seed[:], uint64(i))
			c := CandidateKernel{
				Prevout:       wire.OutPoint{Hash: chainhash.Hash{3}, Index: 0},
				Amount:        amount,
				BlockFromTime: 100,
				Timestamp:     1 << 20,
			}
			if _, _, err := CheckKernelHash(aurum.DoubleSHA256(seed[:]), &c, bitsEasy, 15); err == nil {
				n++
			}
		}
		return n
	}
	// expected 64 and 256
	one := hits(aurum.COIN)
	four := hits(4 * aurum.COIN)
	assert.InDelta(t, 64, one, 40)
	assert.InDelta(t, 256, four, 80)
	assert.Greater(t, four, one)
}

type countingCoins struct {
	coins map[wire.OutPoint]*utxo.Coin
	reads int
}

func (c *countingCoins) GetCoin(op wire.OutPoint) (*utxo.Coin, error) {
	c.reads++
	return c.coins[op], nil
}

func TestCheckStakeKernel(t *testing.T) {
	cfg := aurum.DefaultChainConfig()
	op := wire.OutPoint{Hash: chainhash.Hash{4}, Index: 1}
	coins := &countingCoins{coins: map[wire.OutPoint]*utxo.Coin{
		op: {Value: 1000 * aurum.COIN, Height: 10, Time: 1000},
	}}
	cache := make(StakeCache)

	_, _, err := CheckStakeKernel(&cfg, aurum.Bytes32{}, op, coins, 10+cfg.CoinbaseMaturity-1, 5000, bitsEasy, cache)
	assert.True(t, IsKernelError(err, Immature))

	// 1000 coins saturate the easy target
	_, _, err = CheckStakeKernel(&cfg, aurum.Bytes32{}, op, coins, 10+cfg.CoinbaseMaturity, 5000, bitsEasy, cache)
	assert.NoError(t, err)
	assert.Equal(t, 1, coins.reads)

	_, _, err = CheckStakeKernel(&cfg, aurum.Bytes32{}, op, coins, 10+cfg.CoinbaseMaturity, 999, bitsEasy, cache)
	assert.True(t, IsKernelError(err, Immature))

	_, _, err = CheckStakeKernel(&cfg, aurum.Bytes32{}, wire.OutPoint{Index: 9}, coins, 1000, 5000, bitsEasy, nil)
	assert.ErrorIs(t, err, ErrStakeCoinMissing)
}

func TestSearch(t *testing.T) {
	cfg := aurum.DefaultChainConfig()
	var coins []StakeCoin
	for i := 0; i < 8; i++ {
		coins = append(coins, StakeCoin{
			Prevout: wire.OutPoint{Hash: chainhash.Hash{byte(i + 1)}, Index: uint32(i)},
			Coin:    &utxo.Coin{Value: aurum.COIN, Height: 1, Time: 100},
		})
	}
	modifier := aurum.DoubleSHA256([]byte("search"))

	r1 := Search(&cfg, modifier, coins, 1000, bitsEasy, 10001, 20000)
	require.NotNil(t, r1)
	r2 := Search(&cfg, modifier, coins, 1000, bitsEasy, 10001, 20000)
	assert.Equal(t, r1, r2)

	assert.Zero(t, r1.Kernel.Timestamp&cfg.StakeTimestampMask)
	assert.GreaterOrEqual(t, r1.Kernel.Timestamp, uint32(10001))

	proof, _, err := CheckKernelHash(modifier, &r1.Kernel, bitsEasy, cfg.StakeTimestampMask)
	assert.NoError(t, err)
	assert.Equal(t, r1.Proof, proof)

	// immature coins never win
	assert.Nil(t, Search(&cfg, modifier, coins, 2, bitsEasy, 10001, 20000))
}

func TestNextTargetRequired(t *testing.T) {
	cfg := aurum.DefaultChainConfig()
	limit := cfg.PosLimitBits
	assert.Equal(t, limit, NextTargetRequired(&cfg, nil, nil))

	bits := uint32(0x1c00ffff)
	onTime := NextTargetRequired(&cfg, &Ancestor{Time: 1000 + cfg.TargetSpacing, Bits: bits}, &Ancestor{Time: 1000})
	assert.Equal(t, bits, onTime)

	fast := NextTargetRequired(&cfg, &Ancestor{Time: 1001, Bits: bits}, &Ancestor{Time: 1000})
	slow := NextTargetRequired(&cfg, &Ancestor{Time: 1000 + 5*cfg.TargetSpacing, Bits: bits}, &Ancestor{Time: 1000})
	ft, _, _ := CompactToTarget(fast)
	st, _, _ := CompactToTarget(slow)
	bt, _, _ := CompactToTarget(bits)
	assert.True(t, ft.Lt(bt))
	assert.True(t, st.Gt(bt))

	// never easier than the limit
	assert.Equal(t, limit, NextTargetRequired(&cfg, &Ancestor{Time: 1000000, Bits: limit}, &Ancestor{Time: 1000}))
}
