// Copyright (c) 2025 The Aurum developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pos

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/aurumchain/aurum/aurum"
	"github.com/aurumchain/aurum/utxo"
	"github.com/btcsuite/btcd/wire"
	"github.com/holiman/uint256"
	"github.com/inconshreveable/log15"
	"github.com/pkg/errors"
)

var log = log15.New("pkg", "pos")

// KernelErrorKind classifies a failed kernel check.
type KernelErrorKind uint8

// Kernel error kinds.
const (
	BelowTarget KernelErrorKind = iota + 1
	Immature
	BadTarget
)

func (k KernelErrorKind) String() string {
	switch k {
	case BelowTarget:
		return "below target"
	case Immature:
		return "immature"
	case BadTarget:
		return "bad target"
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// KernelError is the expected failure of a kernel check. A staker should
// move on to the next coin or timestamp.
type KernelError struct {
	Kind   KernelErrorKind
	Detail string
}

func (e *KernelError) Error() string {
	if e.Detail == "" {
		return "kernel: " + e.Kind.String()
	}
	return "kernel: " + e.Kind.String() + ": " + e.Detail
}

// IsKernelError returns whether err is a kernel error of the kind.
func IsKernelError(err error, kind KernelErrorKind) bool {
	var ke *KernelError
	return errors.As(err, &ke) && ke.Kind == kind
}

// ModifierSource provides the stake modifier of a connected block.
type ModifierSource interface {
	StakeModifier() aurum.Bytes32
}

// ComputeStakeModifier derives the modifier of a new block from its parent's
// modifier and the kernel, the kernel proof hash of a stake block or the id
// of a work block. Genesis has no parent and a zero modifier.
func ComputeStakeModifier(parent ModifierSource, kernel aurum.Bytes32) aurum.Bytes32 {
	if parent == nil {
		return aurum.Bytes32{}
	}
	modifier := parent.StakeModifier()
	return aurum.DoubleSHA256(kernel[:], modifier[:])
}

// CandidateKernel is the tuple hashed by the kernel protocol.
type CandidateKernel struct {
	Prevout       wire.OutPoint
	Amount        int64
	BlockFromTime uint32
	Timestamp     uint32
}

// ComputeKernelHash hashes the candidate with the coarse timestamp.
func ComputeKernelHash(modifier aurum.Bytes32, c *CandidateKernel, mask uint32) aurum.Bytes32 {
	return aurum.DoubleSHA256Fn(func(w io.Writer) {
		var b [8]byte
		w.Write(modifier[:])
		binary.LittleEndian.PutUint32(b[:4], c.BlockFromTime)
		w.Write(b[:4])
		binary.LittleEndian.PutUint64(b[:], uint64(c.Amount))
		w.Write(b[:])
		w.Write(c.Prevout.Hash[:])
		binary.LittleEndian.PutUint32(b[:4], c.Prevout.Index)
		w.Write(b[:4])
		binary.LittleEndian.PutUint32(b[:4], c.Timestamp&^mask)
		w.Write(b[:4])
	})
}

var coin = uint256.NewInt(uint64(aurum.COIN))

// WeightedTarget returns target × amount / COIN, saturating at 2^256-1.
func WeightedTarget(target *uint256.Int, amount int64) *uint256.Int {
	if amount <= 0 {
		return new(uint256.Int)
	}
	weighted, overflow := new(uint256.Int).MulDivOverflow(target, uint256.NewInt(uint64(amount)), coin)
	if overflow {
		return weighted.SetAllOne()
	}
	return weighted
}

// CheckKernelHash checks the kernel hash of the candidate against the
// stake-weighted target of bits. Both results are in chain hash byte order.
func CheckKernelHash(modifier aurum.Bytes32, c *CandidateKernel, bits, mask uint32) (proof, target aurum.Bytes32, err error) {
	t, negative, overflow := CompactToTarget(bits)
	if negative || overflow || t.IsZero() {
		return proof, target, &KernelError{Kind: BadTarget, Detail: fmt.Sprintf("bits %08x", bits)}
	}
	weighted := WeightedTarget(t, c.Amount)

	proof = ComputeKernelHash(modifier, c, mask)
	target = IntToHash(weighted)

	if HashToInt(proof).Gt(weighted) {
		return proof, target, &KernelError{Kind: BelowTarget}
	}
	return proof, target, nil
}

// CoinGetter reads unspent coins.
type CoinGetter interface {
	GetCoin(op wire.OutPoint) (*utxo.Coin, error)
}

// StakeCacheEntry memoizes the kernel relevant fields of a coin.
type StakeCacheEntry struct {
	BlockFromTime uint32
	Amount        int64
	Height        uint32
}

// StakeCache memoizes coins for one validation pass or one search.
type StakeCache map[wire.OutPoint]StakeCacheEntry

// Load returns the entry of op, reading coins at most once.
// The bool result is false if the coin does not exist.
func (c StakeCache) Load(op wire.OutPoint, coins CoinGetter) (StakeCacheEntry, bool, error) {
	if e, ok := c[op]; ok {
		return e, true, nil
	}
	cn, err := coins.GetCoin(op)
	if err != nil {
		return StakeCacheEntry{}, false, err
	}
	if cn == nil {
		return StakeCacheEntry{}, false, nil
	}
	e := StakeCacheEntry{BlockFromTime: cn.Time, Amount: cn.Value, Height: cn.Height}
	c[op] = e
	return e, true, nil
}

// ErrStakeCoinMissing is returned when the kernel coin is missing or spent.
var ErrStakeCoinMissing = errors.New("stake coin missing")

// CheckMaturity rejects coins too young to stake at the given height and time.
func CheckMaturity(cfg *aurum.ChainConfig, e StakeCacheEntry, spendHeight, timestamp uint32) error {
	if spendHeight < e.Height || spendHeight-e.Height < cfg.CoinbaseMaturity {
		return &KernelError{Kind: Immature, Detail: fmt.Sprintf("depth %d", int64(spendHeight)-int64(e.Height))}
	}
	if timestamp < e.BlockFromTime || timestamp-e.BlockFromTime < cfg.StakeMinAge {
		return &KernelError{Kind: Immature, Detail: "min age"}
	}
	return nil
}

// CheckStakeKernel checks maturity of the coin at prevout and then its kernel hash.
func CheckStakeKernel(
	cfg *aurum.ChainConfig,
	modifier aurum.Bytes32,
	prevout wire.OutPoint,
	coins CoinGetter,
	spendHeight, timestamp, bits uint32,
	cache StakeCache,
) (proof, target aurum.Bytes32, err error) {
	if cache == nil {
		cache = make(StakeCache)
	}
	e, ok, err := cache.Load(prevout, coins)
	if err != nil {
		return proof, target, err
	}
	if !ok {
		return proof, target, errors.Wrapf(ErrStakeCoinMissing, "%v", prevout)
	}
	if err := CheckMaturity(cfg, e, spendHeight, timestamp); err != nil {
		return proof, target, err
	}
	return CheckKernelHash(modifier, &CandidateKernel{
		Prevout:       prevout,
		Amount:        e.Amount,
		BlockFromTime: e.BlockFromTime,
		Timestamp:     timestamp,
	}, bits, cfg.StakeTimestampMask)
}
