// Copyright (c) 2025 The Aurum developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package tx

import (
	"testing"

	"github.com/aurumchain/aurum/aurum"
	"github.com/aurumchain/aurum/vm"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContractScript(t *testing.T) {
	code := []byte{0x60, 0x80, 0x60, 0x40}
	script, err := NewCreateScript(250000, 40, code)
	require.NoError(t, err)
	assert.True(t, IsContractScript(script))

	cs, err := ParseContractScript(script)
	require.NoError(t, err)
	assert.True(t, cs.IsCreate())
	assert.Equal(t, uint64(250000), cs.GasLimit)
	assert.Equal(t, uint64(40), cs.GasPrice)
	assert.Equal(t, code, cs.Data)

	to := aurum.BytesToAddress([]byte("contract"))
	script, err = NewCallScript(100000, 41, nil, to)
	require.NoError(t, err)
	cs, err = ParseContractScript(script)
	require.NoError(t, err)
	assert.False(t, cs.IsCreate())
	assert.Equal(t, to, *cs.To)
	assert.Empty(t, cs.Data)

	// single byte data is pushed as small int
	script, _ = NewCallScript(100000, 41, []byte{7}, to)
	cs, err = ParseContractScript(script)
	require.NoError(t, err)
	assert.Equal(t, []byte{7}, cs.Data)

	_, err = ParseContractScript(PayToAddrScript(to))
	assert.NotNil(t, err)

	bad := append([]byte{}, script...)
	bad[0] = 0x53 // OP_3
	_, err = ParseContractScript(bad)
	assert.NotNil(t, err)
}

func TestExtractOwner(t *testing.T) {
	addr := aurum.BytesToAddress([]byte("owner"))
	got, ok := ExtractOwner(PayToAddrScript(addr))
	assert.True(t, ok)
	assert.Equal(t, addr, got)

	_, ok = ExtractOwner([]byte{0x6a})
	assert.False(t, ok)
}

func TestCoinbaseAndCoinstake(t *testing.T) {
	addr := aurum.BytesToAddress([]byte("owner"))
	cb := new(Builder).CoinbaseInput(1).Output(50*aurum.COIN, PayToAddrScript(addr)).Build()
	assert.True(t, cb.IsCoinBase())
	assert.False(t, cb.IsCoinStake())

	prev := wire.OutPoint{Hash: chainhash.Hash{1}, Index: 0}
	cs := new(Builder).Input(prev, nil).EmptyOutput().Output(100*aurum.COIN, PayToAddrScript(addr)).Build()
	assert.False(t, cs.IsCoinBase())
	assert.True(t, cs.IsCoinStake())

	plain := new(Builder).Input(prev, nil).Output(1, PayToAddrScript(addr)).Build()
	assert.False(t, plain.IsCoinStake())
}

func TestTransactionRLP(t *testing.T) {
	to := aurum.BytesToAddress([]byte("contract"))
	call, _ := NewCallScript(100000, 40, []byte("data"), to)
	trx := new(Builder).
		Input(wire.OutPoint{Hash: chainhash.Hash{2}, Index: 1}, []byte{1, 2}).
		Output(10, call).
		Build()

	data, err := rlp.EncodeToBytes(trx)
	require.NoError(t, err)
	var decoded Transaction
	require.NoError(t, rlp.DecodeBytes(data, &decoded))
	assert.Equal(t, trx.ID(), decoded.ID())

	calls, err := decoded.ContractCalls()
	require.NoError(t, err)
	require.Len(t, calls, 1)
	assert.Equal(t, uint32(0), calls[0].Index)
	assert.Equal(t, uint64(10), calls[0].Value)
	assert.True(t, decoded.HasContractOutputs())
}

func TestMerkleRoot(t *testing.T) {
	addr := aurum.BytesToAddress([]byte("owner"))
	cb := new(Builder).CoinbaseInput(1).Output(1, PayToAddrScript(addr)).Build()

	// single tx root is its id
	assert.Equal(t, cb.ID(), Transactions{cb}.MerkleRoot())

	other := new(Builder).CoinbaseInput(2).Output(1, PayToAddrScript(addr)).Build()
	r1 := Transactions{cb, other}.MerkleRoot()
	r2 := Transactions{other, cb}.MerkleRoot()
	assert.NotEqual(t, r1, r2)
	assert.Equal(t, aurum.DoubleSHA256(cb.ID().Bytes(), other.ID().Bytes()), r1)
}

func TestCreateContractAddress(t *testing.T) {
	id := aurum.BytesToBytes32([]byte{1})
	a0 := CreateContractAddress(id, 0)
	a1 := CreateContractAddress(id, 1)
	assert.NotEqual(t, a0, a1)
	assert.Equal(t, a0, CreateContractAddress(id, 0))
}

func TestReceiptsGasUsed(t *testing.T) {
	rs := Receipts{{GasUsed: 10}, {GasUsed: 20, Excepted: vm.ExceptionOutOfGas}}
	assert.Equal(t, uint64(30), rs.GasUsed())
}
