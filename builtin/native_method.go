// Copyright (c) 2025 The Aurum developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package builtin

import (
	"github.com/aurumchain/aurum/aurum"
	"github.com/aurumchain/aurum/vm"
	"github.com/ethereum/go-ethereum/accounts/abi"
)

// nativeMethod describes a native call.
type nativeMethod struct {
	method abi.Method
	gas    uint64
	run    func(env *environment) (vm.Exception, error)
}

// call runs the method. Errors are state read faults, never contract faults.
func (n *nativeMethod) call(env *environment) (*vm.Output, error) {
	env.method = n.method
	if !env.UseGas(n.gas) {
		return vm.Failed(env.msg, vm.ExceptionOutOfGas), nil
	}
	if env.msg.Value != 0 {
		// native methods are not payable
		return env.fail(vm.ExceptionRevert), nil
	}
	ex, err := n.run(env)
	if err != nil {
		return nil, err
	}
	if ex != vm.ExceptionNone {
		return env.fail(ex), nil
	}
	return env.out, nil
}

// environment of native call invocation.
type environment struct {
	config   *aurum.ChainConfig
	ctx      *vm.BlockContext
	state    vm.StateReader
	msg      *vm.Message
	contract aurum.Address
	method   abi.Method
	out      *vm.Output
}

// UseGas charges gas, returns false if the limit is exceeded.
func (env *environment) UseGas(gas uint64) bool {
	if env.msg.GasLimit-env.out.GasUsed < gas {
		return false
	}
	env.out.GasUsed += gas
	return true
}

func (env *environment) fail(ex vm.Exception) *vm.Output {
	return &vm.Output{GasUsed: env.out.GasUsed, Exception: ex}
}

// args unpacks the call arguments.
func (env *environment) args() ([]any, error) {
	return env.method.Inputs.Unpack(env.msg.Data[4:])
}

func (env *environment) setStorage(key, value aurum.Bytes32) {
	env.out.Storage = append(env.out.Storage, vm.StorageDelta{Address: env.contract, Key: key, Value: value})
}

func (env *environment) log(event abi.Event, topics []aurum.Bytes32, data []byte) {
	env.out.Logs = append(env.out.Logs, &vm.Log{
		Address: env.contract,
		Topics:  append([]aurum.Bytes32{aurum.Bytes32(event.ID)}, topics...),
		Data:    data,
	})
}
