// Copyright (c) 2025 The Aurum developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package packer_test

import (
	"testing"

	"github.com/aurumchain/aurum/aurum"
	"github.com/aurumchain/aurum/chainstate"
	"github.com/aurumchain/aurum/consensus"
	"github.com/aurumchain/aurum/cry"
	"github.com/aurumchain/aurum/delegation"
	"github.com/aurumchain/aurum/genesis"
	"github.com/aurumchain/aurum/lvldb"
	"github.com/aurumchain/aurum/packer"
	"github.com/aurumchain/aurum/tx"
	"github.com/aurumchain/aurum/vm/vmtest"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPacker(t *testing.T) {
	key, err := cry.GenerateKey()
	require.NoError(t, err)
	addr := cry.KeyToAddress(key)

	cfg := aurum.DefaultChainConfig()
	cfg.CoinbaseMaturity = 1
	cfg.PosLimitBits = 0x20040000
	cfg.Genesis = aurum.GenesisConfig{
		Time: 1600000000,
		Bits: 0x20040000,
		Allocations: []aurum.Allocation{
			{Address: addr, Value: 50 * aurum.COIN},
			{Address: addr, Value: 10 * aurum.COIN},
		},
	}

	db, err := lvldb.NewMem()
	require.NoError(t, err)
	defer db.Close()
	cs, err := chainstate.New(db, &cfg)
	require.NoError(t, err)

	p := packer.New(cs, vmtest.Executor{}, key)
	assert.Equal(t, addr, p.Staker())
	_, err = p.Schedule(nil, 0, 100)
	assert.Error(t, err, "no genesis yet")

	cons := consensus.New(vmtest.Executor{})
	gen, err := genesis.Init(cs, cons)
	require.NoError(t, err)
	kernel := gen.Transactions()[0].OutPoint(0)

	// unknown coins are skipped
	_, err = p.Schedule([]wire.OutPoint{{Hash: chainhash.Hash{1}}}, 0, cfg.Genesis.Time+3600)
	assert.True(t, packer.IsNoKernel(err))
	_, err = p.Mock(wire.OutPoint{Hash: chainhash.Hash{1}}, cfg.Genesis.Time+16)
	assert.Error(t, err)

	res, err := p.Schedule([]wire.OutPoint{kernel}, 0, cfg.Genesis.Time+3600)
	require.NoError(t, err)
	assert.Equal(t, kernel, res.Kernel.Prevout)
	assert.Greater(t, res.Kernel.Timestamp, cfg.Genesis.Time)

	flow, err := p.Mock(kernel, res.Kernel.Timestamp)
	require.NoError(t, err)
	assert.Equal(t, gen.Header().ID(), flow.Parent().ID)
	assert.Equal(t, res.Kernel.Timestamp, flow.When())

	coinbase := new(tx.Builder).CoinbaseInput(9).EmptyOutput().Build()
	assert.True(t, packer.IsBadTx(flow.Adopt(coinbase)))

	transfer := new(tx.Builder).
		Input(gen.Transactions()[0].OutPoint(1), nil).
		Output(aurum.COIN, tx.PayToAddrScript(addr)).
		Build()
	assert.NoError(t, flow.Adopt(transfer))
	assert.Error(t, flow.Adopt(transfer), "known tx")

	blk, receipts, err := flow.Pack()
	require.NoError(t, err)
	assert.Empty(t, receipts)
	header := blk.Header()
	assert.Equal(t, uint32(1), header.Height())
	assert.Equal(t, kernel, header.PrevoutStake())
	assert.Equal(t, flow.Bits(), header.Bits())
	require.Len(t, blk.Transactions(), 3)
	assert.True(t, blk.Transactions()[1].IsCoinStake())

	signer, err := header.Signer()
	require.NoError(t, err)
	assert.Equal(t, addr, signer)
	assert.False(t, header.HasPoD())

	pod := cry.SignPoD(key, aurum.BytesToAddress([]byte("delegator")))
	p.SetPoD(pod)
	blk, _, err = flow.Pack()
	require.NoError(t, err)
	sig, err := delegation.ParseHeaderSignature(blk.Header().BlockSigDlgt())
	require.NoError(t, err)
	assert.Equal(t, delegation.WithPoD, sig.Kind)
	assert.Equal(t, pod, sig.PoD)
}
