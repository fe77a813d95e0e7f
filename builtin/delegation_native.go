// Copyright (c) 2025 The Aurum developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package builtin

import (
	"math/big"

	"github.com/aurumchain/aurum/aurum"
	"github.com/aurumchain/aurum/cry"
	"github.com/aurumchain/aurum/delegation"
	"github.com/aurumchain/aurum/vm"
	ethparams "github.com/ethereum/go-ethereum/params"
)

const delegationSlots = 6

const (
	addDelegationGas    = ethparams.EcrecoverGas + delegationSlots*ethparams.SstoreSetGas + ethparams.LogGas + 3*ethparams.LogTopicGas
	removeDelegationGas = delegationSlots*ethparams.SstoreResetGas + ethparams.LogGas + 3*ethparams.LogTopicGas
)

func initDelegationMethods() {
	addr := aurum.DelegationContractAddress

	register(addr, DelegationABI, "addDelegation", addDelegationGas, func(env *environment) (vm.Exception, error) {
		call, err := delegation.DecodeAddDelegation(env.msg.Data)
		if err != nil {
			log.Debug("bad addDelegation call", "sender", env.msg.Sender, "err", err)
			return vm.ExceptionRevert, nil
		}
		if call.Staker == env.msg.Sender {
			return vm.ExceptionRevert, nil
		}
		staker, err := cry.RecoverPoDStaker(call.PoD, env.msg.Sender)
		if err != nil || staker != call.Staker {
			log.Debug("pod does not match staker", "sender", env.msg.Sender, "staker", call.Staker)
			return vm.ExceptionRevert, nil
		}

		for _, d := range delegation.StorageDeltas(env.contract, env.msg.Sender, &delegation.Delegation{
			Staker:      call.Staker,
			Fee:         call.Fee,
			BlockHeight: env.ctx.Height,
			PoD:         call.PoD,
		}) {
			env.setStorage(d.Key, d.Value)
		}

		event := DelegationABI.Events["AddDelegation"]
		data, err := event.Inputs.NonIndexed().Pack(call.Fee, new(big.Int).SetUint64(uint64(env.ctx.Height)))
		if err != nil {
			return vm.ExceptionNone, err
		}
		env.log(event, []aurum.Bytes32{
			aurum.BytesToBytes32(call.Staker[:]),
			aurum.BytesToBytes32(env.msg.Sender[:]),
		}, data)
		return vm.ExceptionNone, nil
	})

	register(addr, DelegationABI, "removeDelegation", removeDelegationGas, func(env *environment) (vm.Exception, error) {
		rec, err := delegation.NewLedger(env.contract, env.state).Get(env.msg.Sender)
		if err != nil {
			return vm.ExceptionNone, err
		}
		if rec == nil {
			return vm.ExceptionRevert, nil
		}
		for _, d := range delegation.StorageDeltas(env.contract, env.msg.Sender, nil) {
			env.setStorage(d.Key, d.Value)
		}
		env.log(DelegationABI.Events["RemoveDelegation"], []aurum.Bytes32{
			aurum.BytesToBytes32(rec.Staker[:]),
			aurum.BytesToBytes32(env.msg.Sender[:]),
		}, nil)
		return vm.ExceptionNone, nil
	})
}
