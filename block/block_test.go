// Copyright (c) 2025 The Aurum developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package block

import (
	"testing"

	"github.com/aurumchain/aurum/aurum"
	"github.com/aurumchain/aurum/cry"
	"github.com/aurumchain/aurum/delegation"
	"github.com/aurumchain/aurum/tx"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBlock(height uint32) *Block {
	key, _ := cry.GenerateKey()
	owner := cry.KeyToAddress(key)
	coinbase := new(tx.Builder).CoinbaseInput(height).EmptyOutput().Build()
	stake := wire.OutPoint{Hash: chainhash.Hash{1}, Index: 2}
	coinstake := new(tx.Builder).
		Input(stake, nil).
		EmptyOutput().
		Output(100*aurum.COIN, tx.PayToAddrScript(owner)).
		Build()

	return new(Builder).
		Version(1).
		ParentID(aurum.Bytes32{0xaa}).
		Height(height).
		Time(1600).
		Bits(0x1d00ffff).
		StateRoot(aurum.Bytes32{1}).
		UTXORoot(aurum.Bytes32{2}).
		PrevoutStake(stake).
		Transaction(coinbase).
		Transaction(coinstake).
		Build()
}

func TestBuilder(t *testing.T) {
	blk := newTestBlock(10)
	h := blk.Header()

	assert.Equal(t, uint32(10), h.Height())
	assert.Equal(t, aurum.Bytes32{0xaa}, h.ParentID())
	assert.Equal(t, uint32(1600), h.Time())
	assert.Equal(t, blk.MerkleRoot(), h.MerkleRoot())
	assert.True(t, h.IsProofOfStake())
	assert.NotNil(t, blk.CoinStake())
	assert.Equal(t, h.PrevoutStake(), blk.CoinStake().MsgTx().TxIn[0].PreviousOutPoint)

	assert.False(t, new(Builder).Build().Header().IsProofOfStake())
}

func TestSigner(t *testing.T) {
	key, _ := cry.GenerateKey()
	blk := newTestBlock(10)

	sig := cry.Sign(blk.Header().SigningHash(), key)
	signed := blk.WithSignature(sig)

	assert.Equal(t, blk.Header().SigningHash(), signed.Header().SigningHash())
	assert.NotEqual(t, blk.Header().ID(), signed.Header().ID())

	signer, err := signed.Header().Signer()
	require.NoError(t, err)
	assert.Equal(t, cry.KeyToAddress(key), signer)
	assert.False(t, signed.Header().HasPoD())
	assert.Nil(t, signed.Header().PoD())

	// appending a pod keeps the signer
	delegatorKey, _ := cry.GenerateKey()
	pod := cry.SignPoD(key, cry.KeyToAddress(delegatorKey))
	withPoD := blk.WithSignature(delegation.JoinHeaderSignature(sig, pod))
	signer, err = withPoD.Header().Signer()
	require.NoError(t, err)
	assert.Equal(t, cry.KeyToAddress(key), signer)
	assert.Equal(t, pod, withPoD.Header().PoD())
	assert.Equal(t, sig, withPoD.Header().Signature())

	var signing = cry.NewSigning()
	signer, err = signing.Signer(withPoD.Header())
	require.NoError(t, err)
	assert.Equal(t, cry.KeyToAddress(key), signer)

	genesis := new(Builder).Build()
	signer, err = genesis.Header().Signer()
	assert.NoError(t, err)
	assert.True(t, signer.IsZero())

	_, err = blk.Header().Signer()
	assert.Error(t, err)
}

func TestBlockRLP(t *testing.T) {
	key, _ := cry.GenerateKey()
	blk := newTestBlock(3)
	blk = blk.WithSignature(cry.Sign(blk.Header().SigningHash(), key))

	data, err := rlp.EncodeToBytes(blk)
	require.NoError(t, err)
	assert.Equal(t, len(data), blk.Size())

	var dec Decoder
	require.NoError(t, rlp.DecodeBytes(data, &dec))
	assert.Equal(t, blk.Header().ID(), dec.Result.Header().ID())
	assert.Equal(t, blk.Header().PrevoutStake(), dec.Result.Header().PrevoutStake())
	assert.Equal(t, blk.MerkleRoot(), dec.Result.MerkleRoot())
	assert.Len(t, dec.Result.Transactions(), 2)
}

func TestStateRootFlipChangesID(t *testing.T) {
	blk := newTestBlock(3)
	flipped := new(Builder).
		Version(1).
		ParentID(aurum.Bytes32{0xaa}).
		Height(3).
		Time(1600).
		Bits(0x1d00ffff).
		StateRoot(aurum.Bytes32{1 ^ 0x80}).
		UTXORoot(aurum.Bytes32{2}).
		PrevoutStake(blk.Header().PrevoutStake())
	for _, trx := range blk.Transactions() {
		flipped.Transaction(trx)
	}
	other := flipped.Build()
	assert.NotEqual(t, blk.Header().SigningHash(), other.Header().SigningHash())
	assert.NotEqual(t, blk.Header().ID(), other.Header().ID())
}

func TestWeightAndSigOps(t *testing.T) {
	blk := newTestBlock(3)
	var txWeight int64
	for _, trx := range blk.Transactions() {
		txWeight += trx.Weight()
	}
	assert.Greater(t, blk.Weight(), txWeight)
	// p2pkh output carries one checksig
	assert.Equal(t, int64(aurum.WitnessScaleFactor), blk.SigOpsCost())
}
