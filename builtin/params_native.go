// Copyright (c) 2025 The Aurum developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package builtin

import (
	"encoding/binary"

	"github.com/aurumchain/aurum/aurum"
	"github.com/aurumchain/aurum/vm"
	ethparams "github.com/ethereum/go-ethereum/params"
)

// Bounds of governed values.
const (
	MinBlockSize     = 500_000
	MaxBlockSize     = 32_000_000
	MinBlockGasLimit = 1_000_000
)

// ParamWord encodes a governed value as a storage word.
func ParamWord(v uint64) (w aurum.Bytes32) {
	binary.BigEndian.PutUint64(w[24:], v)
	return
}

func initParamsMethods() {
	addr := aurum.DGPContractAddress

	defines := []struct {
		name  string
		key   aurum.Bytes32
		valid func(v uint64) bool
	}{
		{"setBlockSize", aurum.KeyBlockSize, func(v uint64) bool { return v >= MinBlockSize && v <= MaxBlockSize }},
		{"setBlockGasLimit", aurum.KeyBlockGasLimit, func(v uint64) bool { return v >= MinBlockGasLimit }},
		{"setMinGasPrice", aurum.KeyMinGasPrice, func(v uint64) bool { return v > 0 }},
	}
	for _, def := range defines {
		def := def
		register(addr, ParamsABI, def.name, ethparams.SstoreSetGas, func(env *environment) (vm.Exception, error) {
			if !env.config.IsGovernanceAdmin(env.msg.Sender) {
				log.Debug("governance call from non admin", "method", def.name, "sender", env.msg.Sender)
				return vm.ExceptionRevert, nil
			}
			args, err := env.args()
			if err != nil || len(args) != 1 {
				return vm.ExceptionRevert, nil
			}
			var v uint64
			switch a := args[0].(type) {
			case uint32:
				v = uint64(a)
			case uint64:
				v = a
			default:
				return vm.ExceptionRevert, nil
			}
			if !def.valid(v) {
				return vm.ExceptionRevert, nil
			}
			env.setStorage(def.key, ParamWord(v))
			return vm.ExceptionNone, nil
		})
	}
}
