// Copyright (c) 2025 The Aurum developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package genesis_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/aurumchain/aurum/aurum"
	"github.com/aurumchain/aurum/chainstate"
	"github.com/aurumchain/aurum/consensus"
	"github.com/aurumchain/aurum/genesis"
	"github.com/aurumchain/aurum/lvldb"
	"github.com/aurumchain/aurum/reconcile"
	"github.com/aurumchain/aurum/vm/vmtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const chainYAML = `
network: 2
coinbase-maturity: 10
last-pow-block: 5
governance-admins:
  - "0x7567d83b7b8d80addcb281a71d54fc7b3364ffed"
genesis:
  time: 1600000000
  bits: 0x1d00ffff
  allocations:
    - address: "0x7567d83b7b8d80addcb281a71d54fc7b3364ffed"
      value: 500000000
`

func TestLoadConfig(t *testing.T) {
	cfg, err := genesis.LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, aurum.DefaultChainConfig(), *cfg)

	path := filepath.Join(t.TempDir(), "chain.yaml")
	require.NoError(t, os.WriteFile(path, []byte(chainYAML), 0o600))
	cfg, err = genesis.LoadConfig(path)
	require.NoError(t, err)

	admin := aurum.MustParseAddress("0x7567d83b7b8d80addcb281a71d54fc7b3364ffed")
	assert.Equal(t, uint8(2), cfg.Network)
	assert.Equal(t, uint32(10), cfg.CoinbaseMaturity)
	assert.Equal(t, uint32(5), cfg.LastPOWBlock)
	assert.Equal(t, []aurum.Address{admin}, cfg.GovernanceAdmins)
	assert.Equal(t, uint32(1600000000), cfg.Genesis.Time)
	assert.Equal(t, uint32(0x1d00ffff), cfg.Genesis.Bits)
	assert.Equal(t, []aurum.Allocation{{Address: admin, Value: 5 * aurum.COIN}}, cfg.Genesis.Allocations)
	// untouched fields keep defaults
	assert.Equal(t, aurum.DefaultTargetSpacing, cfg.TargetSpacing)
	assert.Equal(t, aurum.DefaultBlockGasLimit, cfg.BlockGasLimit)

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("target-spacing: 0\n"), 0o600))
	_, err = genesis.LoadConfig(bad)
	assert.Error(t, err)

	_, err = genesis.LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestBuild(t *testing.T) {
	empty, err := new(genesis.Builder).Time(1600000000).Bits(0x1d00ffff).Build()
	require.NoError(t, err)
	assert.Equal(t, reconcile.EmptyRoot, empty.Header().StateRoot())
	assert.Equal(t, reconcile.EmptyRoot, empty.Header().UTXORoot())
	require.Len(t, empty.Transactions(), 1)
	assert.True(t, empty.Transactions()[0].IsCoinBase())

	addr := aurum.BytesToAddress([]byte("alloc"))
	b1, err := new(genesis.Builder).Time(1600000000).Bits(0x1d00ffff).Alloc(addr, aurum.COIN).Build()
	require.NoError(t, err)
	b2, err := new(genesis.Builder).Time(1600000000).Bits(0x1d00ffff).Alloc(addr, aurum.COIN).Build()
	require.NoError(t, err)
	assert.Equal(t, b1.Header().ID(), b2.Header().ID())
	assert.Equal(t, uint32(0), b1.Header().Height())
	assert.True(t, b1.Header().ParentID().IsZero())
	assert.Equal(t, reconcile.EmptyRoot, b1.Header().StateRoot())
	assert.NotEqual(t, reconcile.EmptyRoot, b1.Header().UTXORoot())
	assert.NotEqual(t, empty.Header().ID(), b1.Header().ID())

	_, err = new(genesis.Builder).Alloc(addr, 0).Build()
	assert.Error(t, err)
}

func TestInit(t *testing.T) {
	cfg := aurum.DefaultChainConfig()
	cfg.Genesis.Allocations = []aurum.Allocation{{Address: aurum.BytesToAddress([]byte("alloc")), Value: aurum.COIN}}

	db, err := lvldb.NewMem()
	require.NoError(t, err)
	defer db.Close()
	cs, err := chainstate.New(db, &cfg)
	require.NoError(t, err)
	cons := consensus.New(vmtest.Executor{})

	blk, err := genesis.Init(cs, cons)
	require.NoError(t, err)
	best := cs.Best()
	require.NotNil(t, best)
	assert.Equal(t, blk.Header().ID(), best.ID)
	assert.Equal(t, blk.Header().UTXORoot(), best.UTXORoot)

	// idempotent
	again, err := genesis.Init(cs, cons)
	require.NoError(t, err)
	assert.Equal(t, blk.Header().ID(), again.Header().ID())

	// reopened with another genesis
	other := cfg
	other.Genesis.Time++
	cs2, err := chainstate.New(db, &other)
	require.NoError(t, err)
	_, err = genesis.Init(cs2, cons)
	assert.Error(t, err)
}
