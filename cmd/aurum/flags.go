// Copyright (c) 2025 The Aurum developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"github.com/inconshreveable/log15"
	cli "gopkg.in/urfave/cli.v1"
)

var (
	dataDirFlag = cli.StringFlag{
		Name:  "data-dir",
		Value: defaultDataDir(),
		Usage: "directory for block-chain databases",
	}
	configFlag = cli.StringFlag{
		Name:  "config",
		Usage: "path to the chain parameters yaml file, defaults used if absent",
	}
	verbosityFlag = cli.IntFlag{
		Name:  "verbosity",
		Value: int(log15.LvlInfo),
		Usage: "log verbosity (0-5)",
	}
	dbEngineFlag = cli.StringFlag{
		Name:  "db-engine",
		Value: "leveldb",
		Usage: "storage engine (leveldb|bolt)",
	}
	cacheFlag = cli.IntFlag{
		Name:  "cache",
		Value: 128,
		Usage: "megabytes of ram allocated to the leveldb cache",
	}
	metricsAddrFlag = cli.StringFlag{
		Name:  "metrics-addr",
		Usage: "serve prometheus metrics on this address while running",
	}

	keyFlag = cli.StringFlag{
		Name:  "key",
		Usage: "hex private key of the staker",
	}
	podFlag = cli.StringFlag{
		Name:  "pod",
		Usage: "hex proof of delegation, stakes coins of --delegator",
	}
	delegatorFlag = cli.StringFlag{
		Name:  "delegator",
		Usage: "address whose coins are staked under delegation",
	}
	spanFlag = cli.UintFlag{
		Name:  "span",
		Value: 3600,
		Usage: "seconds after the best block searched for a kernel",
	}
	addressFlag = cli.StringFlag{
		Name:  "address",
		Usage: "address to report balance and coins of",
	}
	countFlag = cli.UintFlag{
		Name:  "count",
		Value: 1,
		Usage: "number of blocks to roll back",
	}
	dataFlag = cli.StringFlag{
		Name:  "data",
		Usage: "hex encoded addDelegation call data with an unsigned staker",
	}
	sigFlag = cli.StringFlag{
		Name:  "sig",
		Usage: "base64 proof of delegation signed by the staker",
	}
)
