// Copyright (c) 2025 The Aurum developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package consensus

import (
	"fmt"

	"github.com/aurumchain/aurum/runtime"
	"github.com/aurumchain/aurum/vm"
	"github.com/pkg/errors"
)

var (
	errFutureBlock   = errors.New("block in the future")
	errParentMissing = errors.New("parent block is missing")
	errKnownBlock    = errors.New("block already in the chain")
	errNotOnBest     = errors.New("parent is not the best block")
)

// Reject reasons.
const (
	ReasonHeight          = "bad-height"
	ReasonTimestamp       = "bad-timestamp"
	ReasonTimestampMask   = "bad-timestamp-mask"
	ReasonDiffBits        = "bad-diffbits"
	ReasonPoW             = "bad-pow"
	ReasonMerkleRoot      = "bad-txnmrklroot"
	ReasonCoinbaseMissing = "bad-cb-missing"
	ReasonCoinbaseMulti   = "bad-cb-multiple"
	ReasonCoinstake       = "bad-cs-missing"
	ReasonCoinstakeMulti  = "bad-cs-multiple"
	ReasonCoinstakeKernel = "bad-cs-kernel"
	ReasonBlockLength     = "bad-blk-length"
	ReasonBlockWeight     = "bad-blk-weight"
	ReasonBlockSigOps     = "bad-blk-sigops"
	ReasonTxSigOps        = "bad-txns-too-many-sigops"
	ReasonPoSKernel       = "bad-pos-kernel"
	ReasonPoDLength       = "bad-pod-length"
	ReasonBlockSignature  = "bad-block-signature"
	ReasonDelegation      = "bad-delegation"
	ReasonTxGasLimit      = "bad-tx-gas-limit"
	ReasonTxGasPrice      = "bad-tx-gas-price"
	ReasonFeeNotEnough    = "bad-txns-fee-notenough"
	ReasonInputsMissing   = "bad-txns-inputs-missing"
	ReasonTxSender        = "bad-tx-sender"
	ReasonContractOutput  = "bad-txns-contract-output"
	ReasonVMExec          = "bad-vm-exec"
	ReasonStateRoot       = "bad-state-root"
	ReasonUTXORoot        = "bad-utxo-root"
)

// RejectError means the block is invalid and must never be accepted.
type RejectError struct {
	Reason string
	Detail string
}

func (e *RejectError) Error() string {
	if e.Detail == "" {
		return e.Reason
	}
	return e.Reason + ": " + e.Detail
}

func reject(reason string, format string, args ...any) error {
	return &RejectError{reason, fmt.Sprintf(format, args...)}
}

// IsRejected returns whether the error rejects the block outright.
func IsRejected(err error) bool {
	var re *RejectError
	return errors.As(err, &re)
}

// RejectReason returns the reject reason, or "" if err is not a rejection.
func RejectReason(err error) string {
	var re *RejectError
	if errors.As(err, &re) {
		return re.Reason
	}
	return ""
}

// IsFutureBlock returns if the error indicates that the block should be
// processed later.
func IsFutureBlock(err error) bool {
	return errors.Is(err, errFutureBlock)
}

// IsParentMissing returns if the error indicates that the parent block is missing.
func IsParentMissing(err error) bool {
	return errors.Is(err, errParentMissing)
}

// IsKnownBlock returns if the error means the block was already connected.
func IsKnownBlock(err error) bool {
	return errors.Is(err, errKnownBlock)
}

// IsNotOnBest returns if the block does not extend the current best block.
func IsNotOnBest(err error) bool {
	return errors.Is(err, errNotOnBest)
}

// runtimeReject converts block fatal execution errors into rejections.
func runtimeReject(err error) error {
	var execErr *vm.ExecError
	switch {
	case errors.Is(err, runtime.ErrGasExceedsBlockLimit), errors.Is(err, runtime.ErrGasLimitTooLow):
		return &RejectError{ReasonTxGasLimit, err.Error()}
	case errors.Is(err, runtime.ErrGasPriceTooLow):
		return &RejectError{ReasonTxGasPrice, err.Error()}
	case errors.Is(err, runtime.ErrFeeNotEnough):
		return &RejectError{ReasonFeeNotEnough, err.Error()}
	case errors.Is(err, runtime.ErrMissingInputs):
		return &RejectError{ReasonInputsMissing, err.Error()}
	case errors.Is(err, runtime.ErrNoSender):
		return &RejectError{ReasonTxSender, err.Error()}
	case errors.Is(err, runtime.ErrBadContractOutput):
		return &RejectError{ReasonContractOutput, err.Error()}
	case errors.As(err, &execErr):
		return &RejectError{ReasonVMExec, err.Error()}
	}
	return err
}
