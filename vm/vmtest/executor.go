// Copyright (c) 2025 The Aurum developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package vmtest provides a scripted deterministic executor for tests.
package vmtest

import (
	"github.com/aurumchain/aurum/aurum"
	"github.com/aurumchain/aurum/vm"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/pkg/errors"
)

// Write is one scripted storage write.
type Write struct {
	Key   aurum.Bytes32
	Value aurum.Bytes32
}

// Script is the rlp payload carried as message data.
// Exception forces the output exception; GasUsed is charged as is.
type Script struct {
	Writes    []Write
	GasUsed   uint64
	Exception uint8
}

// Encode encodes the script into message data.
func (s *Script) Encode() []byte {
	data, err := rlp.EncodeToBytes(s)
	if err != nil {
		panic(err)
	}
	return data
}

// Executor executes rlp encoded scripts. Creation deploys the message data as code.
type Executor struct{}

var _ vm.Executor = Executor{}

// Execute implements vm.Executor.
func (Executor) Execute(ctx *vm.BlockContext, _ vm.StateReader, msg *vm.Message, contract aurum.Address) (*vm.Output, error) {
	if !ctx.Network.IsValid() {
		return nil, &vm.ExecError{Op: "execute", Err: errors.Errorf("unsupported network %d", ctx.Network)}
	}

	var script Script
	if len(msg.Data) > 0 {
		if err := rlp.DecodeBytes(msg.Data, &script); err != nil {
			return vm.Failed(msg, vm.ExceptionBadInstruction), nil
		}
	}
	if script.GasUsed > msg.GasLimit {
		return vm.Failed(msg, vm.ExceptionOutOfGas), nil
	}
	if ex := vm.Exception(script.Exception); ex != vm.ExceptionNone {
		return &vm.Output{GasUsed: script.GasUsed, Exception: ex}, nil
	}

	out := &vm.Output{GasUsed: script.GasUsed}
	for _, w := range script.Writes {
		out.Storage = append(out.Storage, vm.StorageDelta{Address: contract, Key: w.Key, Value: w.Value})
	}
	if msg.IsCreate() {
		out.Code = append([]byte(nil), msg.Data...)
	}
	return out, nil
}
