// Copyright (c) 2025 The Aurum developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package vm defines the boundary to deterministic contract executors.
package vm

import (
	"fmt"

	"github.com/aurumchain/aurum/aurum"
)

// Exception is the outcome of a contract execution recorded in receipts.
type Exception uint8

// Exceptions.
const (
	ExceptionNone Exception = iota
	ExceptionOutOfGas
	ExceptionCreateWithValue
	ExceptionRevert
	ExceptionBadInstruction
	ExceptionInvalidNetwork
)

func (e Exception) String() string {
	switch e {
	case ExceptionNone:
		return "none"
	case ExceptionOutOfGas:
		return "out of gas"
	case ExceptionCreateWithValue:
		return "create with value"
	case ExceptionRevert:
		return "revert"
	case ExceptionBadInstruction:
		return "bad instruction"
	case ExceptionInvalidNetwork:
		return "invalid network"
	}
	return fmt.Sprintf("exception(%d)", uint8(e))
}

// Message is one contract invocation.
// To is nil for contract creation.
type Message struct {
	Sender   aurum.Address
	To       *aurum.Address
	Value    uint64
	GasLimit uint64
	GasPrice uint64
	Data     []byte
}

// IsCreate returns whether the message creates a contract.
func (m *Message) IsCreate() bool {
	return m.To == nil
}

// Network selects executor rule set.
type Network uint8

// Networks.
const (
	Mainnet Network = iota
	Testnet
	Regtest
	numNetworks
)

// IsValid returns whether the network is known.
func (n Network) IsValid() bool {
	return n < numNetworks
}

// BlockContext is the environment of the block being executed.
type BlockContext struct {
	Network  Network
	Height   uint32
	Time     uint32
	Staker   aurum.Address
	Bits     uint32
	ParentID aurum.Bytes32
	GasLimit uint64
}

// StateReader reads committed and pending contract state.
type StateReader interface {
	GetBalance(addr aurum.Address) (uint64, error)
	GetCode(addr aurum.Address) ([]byte, error)
	GetStorage(addr aurum.Address, key aurum.Bytes32) (aurum.Bytes32, error)
}

// StorageDelta is one storage word written by an execution.
type StorageDelta struct {
	Address aurum.Address
	Key     aurum.Bytes32
	Value   aurum.Bytes32
}

// Log is an event emitted by a contract.
type Log struct {
	Address aurum.Address
	Topics  []aurum.Bytes32
	Data    []byte
}

// Output is the result of an execution. Deltas are only meaningful
// when Exception is ExceptionNone.
type Output struct {
	ReturnData []byte
	GasUsed    uint64
	Exception  Exception
	Storage    []StorageDelta
	Code       []byte // deployed code, for creations
	Logs       []*Log
}

// Failed returns an output consuming all gas with the exception.
func Failed(msg *Message, ex Exception) *Output {
	return &Output{GasUsed: msg.GasLimit, Exception: ex}
}

// Executor executes messages deterministically. An error is returned only
// for invalid invocation, never for contract level faults.
type Executor interface {
	Execute(ctx *BlockContext, state StateReader, msg *Message, contract aurum.Address) (*Output, error)
}

// ExecError is a fault at the executor boundary, fatal to the block.
type ExecError struct {
	Op  string
	Err error
}

func (e *ExecError) Error() string {
	return fmt.Sprintf("vm %s: %v", e.Op, e.Err)
}

func (e *ExecError) Unwrap() error {
	return e.Err
}
