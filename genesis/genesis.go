// Copyright (c) 2025 The Aurum developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package genesis builds the first block and loads chain parameters.
package genesis

import (
	"os"

	"github.com/aurumchain/aurum/aurum"
	"github.com/aurumchain/aurum/block"
	"github.com/aurumchain/aurum/chainstate"
	"github.com/aurumchain/aurum/consensus"
	"github.com/inconshreveable/log15"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

var log = log15.New("pkg", "genesis")

// LoadConfig reads chain parameters from a yaml file. Fields absent from the
// file keep their default values. An empty path yields the defaults.
func LoadConfig(path string) (*aurum.ChainConfig, error) {
	cfg := aurum.DefaultChainConfig()
	if path == "" {
		return &cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read chain config")
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrap(err, "decode chain config")
	}
	if cfg.TargetSpacing == 0 || cfg.TargetTimespan < cfg.TargetSpacing {
		return nil, errors.New("invalid target spacing or timespan")
	}
	return &cfg, nil
}

// Init connects the genesis block of the chain config if the chain is empty.
// Otherwise it checks the stored genesis matches.
func Init(cs *chainstate.ChainState, cons *consensus.Consensus) (*block.Block, error) {
	blk, err := Build(cs.Config())
	if err != nil {
		return nil, errors.Wrap(err, "build genesis")
	}
	id := blk.Header().ID()

	if cs.Best() != nil {
		existing, err := cs.Repo().GetCanonicalID(0)
		if err != nil {
			return nil, errors.Wrap(err, "get existing genesis id")
		}
		if existing != id {
			return nil, errors.Errorf("genesis mismatch: stored %v, config %v", existing, id)
		}
		return blk, nil
	}

	stage, err := cons.Process(cs, blk, uint64(blk.Header().Time()))
	if err != nil {
		return nil, errors.Wrap(err, "process genesis")
	}
	if err := cons.Connect(cs, stage); err != nil {
		return nil, errors.Wrap(err, "connect genesis")
	}
	log.Info("genesis initialized", "id", id, "allocations", len(cs.Config().Genesis.Allocations))
	return blk, nil
}
