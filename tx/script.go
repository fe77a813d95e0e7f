// Copyright (c) 2025 The Aurum developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package tx

import (
	"encoding/binary"

	"github.com/aurumchain/aurum/aurum"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/txscript"
	"github.com/pkg/errors"
)

// Reserved opcodes of contract outputs.
const (
	OpCreate byte = 0xc1
	OpCall   byte = 0xc2
)

// ContractVersion is the only accepted contract output version.
const ContractVersion = 4

// ContractScript is a decoded contract output script:
// <version> <gasLimit le64> <gasPrice le64> <data> [<address>] OP_CREATE|OP_CALL
type ContractScript struct {
	GasLimit uint64
	GasPrice uint64
	Data     []byte
	To       *aurum.Address // nil for creation
}

// IsCreate returns whether the script creates a contract.
func (cs *ContractScript) IsCreate() bool {
	return cs.To == nil
}

func le64(v uint64) []byte {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	return b[:]
}

// NewCreateScript builds a contract creation output script.
func NewCreateScript(gasLimit, gasPrice uint64, code []byte) ([]byte, error) {
	return txscript.NewScriptBuilder().
		AddInt64(ContractVersion).
		AddData(le64(gasLimit)).
		AddData(le64(gasPrice)).
		AddFullData(code).
		AddOp(OpCreate).
		Script()
}

// NewCallScript builds a contract call output script.
func NewCallScript(gasLimit, gasPrice uint64, data []byte, to aurum.Address) ([]byte, error) {
	return txscript.NewScriptBuilder().
		AddInt64(ContractVersion).
		AddData(le64(gasLimit)).
		AddData(le64(gasPrice)).
		AddFullData(data).
		AddData(to.Bytes()).
		AddOp(OpCall).
		Script()
}

// IsContractScript reports whether the script ends with a contract opcode.
func IsContractScript(script []byte) bool {
	if len(script) == 0 {
		return false
	}
	last := script[len(script)-1]
	return last == OpCreate || last == OpCall
}

// pushedData returns data pushed by the current token, including small ints.
func pushedData(tok *txscript.ScriptTokenizer) ([]byte, bool) {
	op := tok.Opcode()
	switch {
	case op == txscript.OP_0:
		return []byte{}, true
	case op >= txscript.OP_1 && op <= txscript.OP_16:
		return []byte{op - txscript.OP_1 + 1}, true
	case op == txscript.OP_1NEGATE:
		return []byte{0x81}, true
	case op <= txscript.OP_PUSHDATA4:
		return tok.Data(), true
	}
	return nil, false
}

// ParseContractScript decodes a contract output script.
func ParseContractScript(script []byte) (*ContractScript, error) {
	if !IsContractScript(script) {
		return nil, errors.New("not a contract script")
	}
	var pushes [][]byte
	tok := txscript.MakeScriptTokenizer(0, script)
	var last byte
	for tok.Next() {
		if d, ok := pushedData(&tok); ok {
			pushes = append(pushes, d)
			continue
		}
		if !tok.Done() {
			return nil, errors.Errorf("unexpected opcode 0x%x", tok.Opcode())
		}
		last = tok.Opcode()
	}
	if err := tok.Err(); err != nil {
		return nil, errors.Wrap(err, "tokenize contract script")
	}

	want := 4
	if last == OpCall {
		want = 5
	}
	if len(pushes) != want {
		return nil, errors.Errorf("contract script has %d pushes, want %d", len(pushes), want)
	}
	if len(pushes[0]) != 1 || pushes[0][0] != ContractVersion {
		return nil, errors.New("unsupported contract version")
	}
	if len(pushes[1]) != 8 || len(pushes[2]) != 8 {
		return nil, errors.New("malformed gas fields")
	}

	cs := &ContractScript{
		GasLimit: binary.LittleEndian.Uint64(pushes[1]),
		GasPrice: binary.LittleEndian.Uint64(pushes[2]),
		Data:     pushes[3],
	}
	if last == OpCall {
		if len(pushes[4]) != aurum.AddressLength {
			return nil, errors.New("malformed contract address")
		}
		to := aurum.BytesToAddress(pushes[4])
		cs.To = &to
	}
	return cs, nil
}

// PayToAddrScript builds a pay-to-pubkey-hash script.
func PayToAddrScript(addr aurum.Address) []byte {
	script, _ := txscript.NewScriptBuilder().
		AddOp(txscript.OP_DUP).
		AddOp(txscript.OP_HASH160).
		AddData(addr.Bytes()).
		AddOp(txscript.OP_EQUALVERIFY).
		AddOp(txscript.OP_CHECKSIG).
		Script()
	return script
}

// PayToPubKeyScript builds a pay-to-pubkey script.
func PayToPubKeyScript(pubKey []byte) []byte {
	script, _ := txscript.NewScriptBuilder().
		AddData(pubKey).
		AddOp(txscript.OP_CHECKSIG).
		Script()
	return script
}

// ExtractOwner returns the address owning a P2PKH or P2PK output.
func ExtractOwner(script []byte) (aurum.Address, bool) {
	class, addrs, _, err := txscript.ExtractPkScriptAddrs(script, &chaincfg.MainNetParams)
	if err != nil || len(addrs) != 1 {
		return aurum.Address{}, false
	}
	switch class {
	case txscript.PubKeyHashTy:
		return aurum.BytesToAddress(addrs[0].ScriptAddress()), true
	case txscript.PubKeyTy:
		return aurum.Hash160(addrs[0].ScriptAddress()), true
	}
	return aurum.Address{}, false
}

// CreateContractAddress derives the address of a contract created by output n of txid.
func CreateContractAddress(txid aurum.Bytes32, n uint32) aurum.Address {
	var buf [36]byte
	copy(buf[:], txid[:])
	binary.LittleEndian.PutUint32(buf[32:], n)
	return aurum.Hash160(buf[:])
}
