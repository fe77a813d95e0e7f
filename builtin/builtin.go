// Copyright (c) 2025 The Aurum developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package builtin executes the native contracts of the chain: the delegation
// registry and the governance parameters.
package builtin

import (
	"strings"

	"github.com/aurumchain/aurum/aurum"
	"github.com/aurumchain/aurum/vm"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/inconshreveable/log15"
	"github.com/pkg/errors"
)

var log = log15.New("pkg", "builtin")

const delegationABI = `[
	{"type":"function","name":"addDelegation","inputs":[{"name":"staker","type":"address"},{"name":"fee","type":"uint8"},{"name":"PoD","type":"bytes"}],"outputs":[]},
	{"type":"function","name":"removeDelegation","inputs":[],"outputs":[]},
	{"type":"event","name":"AddDelegation","inputs":[{"name":"staker","type":"address","indexed":true},{"name":"delegator","type":"address","indexed":true},{"name":"fee","type":"uint8","indexed":false},{"name":"blockHeight","type":"uint256","indexed":false}]},
	{"type":"event","name":"RemoveDelegation","inputs":[{"name":"staker","type":"address","indexed":true},{"name":"delegator","type":"address","indexed":true}]}
]`

const paramsABI = `[
	{"type":"function","name":"setBlockSize","inputs":[{"name":"size","type":"uint32"}],"outputs":[]},
	{"type":"function","name":"setBlockGasLimit","inputs":[{"name":"limit","type":"uint64"}],"outputs":[]},
	{"type":"function","name":"setMinGasPrice","inputs":[{"name":"price","type":"uint64"}],"outputs":[]}
]`

// DelegationABI and ParamsABI describe the native contracts.
var (
	DelegationABI = mustParseABI(delegationABI)
	ParamsABI     = mustParseABI(paramsABI)
)

func mustParseABI(def string) abi.ABI {
	a, err := abi.JSON(strings.NewReader(def))
	if err != nil {
		panic(err)
	}
	return a
}

type addressAndMethodID struct {
	aurum.Address
	ID [4]byte
}

var nativeMethods = make(map[addressAndMethodID]*nativeMethod)

func register(addr aurum.Address, contractABI abi.ABI, name string, gas uint64, run func(env *environment) (vm.Exception, error)) {
	method, ok := contractABI.Methods[name]
	if !ok {
		panic("method not found: " + name)
	}
	var id [4]byte
	copy(id[:], method.ID)
	nativeMethods[addressAndMethodID{addr, id}] = &nativeMethod{
		method: method,
		gas:    gas,
		run:    run,
	}
}

func init() {
	initDelegationMethods()
	initParamsMethods()
}

// Executor executes native contracts and hands any other message to the fallback.
type Executor struct {
	config   *aurum.ChainConfig
	fallback vm.Executor
}

var _ vm.Executor = (*Executor)(nil)

// New creates an executor. fallback may be nil, in which case messages to
// non-native contracts fail with a bad instruction.
func New(config *aurum.ChainConfig, fallback vm.Executor) *Executor {
	return &Executor{config, fallback}
}

// IsNative returns whether addr is a native contract.
func IsNative(addr aurum.Address) bool {
	return addr == aurum.DelegationContractAddress || addr == aurum.DGPContractAddress
}

// Execute implements vm.Executor.
func (e *Executor) Execute(ctx *vm.BlockContext, state vm.StateReader, msg *vm.Message, contract aurum.Address) (*vm.Output, error) {
	if !ctx.Network.IsValid() {
		return nil, &vm.ExecError{Op: "execute", Err: errors.Errorf("unsupported network %d", ctx.Network)}
	}
	if msg.IsCreate() || !IsNative(contract) {
		if e.fallback == nil {
			return vm.Failed(msg, vm.ExceptionBadInstruction), nil
		}
		return e.fallback.Execute(ctx, state, msg, contract)
	}

	var id [4]byte
	if len(msg.Data) >= 4 {
		copy(id[:], msg.Data)
	}
	nm, ok := nativeMethods[addressAndMethodID{contract, id}]
	if !ok {
		return &vm.Output{GasUsed: msg.GasLimit, Exception: vm.ExceptionRevert}, nil
	}
	out, err := nm.call(&environment{
		config:   e.config,
		ctx:      ctx,
		state:    state,
		msg:      msg,
		contract: contract,
		out:      &vm.Output{},
	})
	if err != nil {
		return nil, &vm.ExecError{Op: nm.method.Name, Err: err}
	}
	return out, nil
}
