// Copyright (c) 2025 The Aurum developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"fmt"
	"os"

	"github.com/inconshreveable/log15"
	cli "gopkg.in/urfave/cli.v1"
)

var (
	version   string
	gitCommit string
	gitTag    string
	log       = log15.New()
)

func fullVersion() string {
	versionMeta := "release"
	if gitTag == "" {
		versionMeta = "dev"
	}
	return fmt.Sprintf("%s-%s-%s", version, gitCommit, versionMeta)
}

func main() {
	chainFlags := []cli.Flag{
		dataDirFlag,
		configFlag,
		verbosityFlag,
		dbEngineFlag,
		cacheFlag,
		metricsAddrFlag,
	}
	with := func(flags ...cli.Flag) []cli.Flag {
		return append(append([]cli.Flag(nil), chainFlags...), flags...)
	}

	app := cli.App{
		Version: fullVersion(),
		Name:    "Aurum",
		Usage:   "Consensus core of the Aurum chain",
		Commands: []cli.Command{
			{
				Name:   "init",
				Usage:  "create the database and connect the genesis block",
				Flags:  with(),
				Action: initAction,
			},
			{
				Name:   "status",
				Usage:  "print the best block, gas params and optionally the holdings of an address",
				Flags:  with(addressFlag),
				Action: statusAction,
			},
			{
				Name:      "import",
				Usage:     "validate and connect blocks read from a file of hex encoded blocks",
				ArgsUsage: "<file>",
				Flags:     with(),
				Action:    importAction,
			},
			{
				Name:   "rollback",
				Usage:  "disconnect blocks from the tip",
				Flags:  with(countFlag),
				Action: rollbackAction,
			},
			{
				Name:   "kernel",
				Usage:  "search coins of the staker for a kernel on top of the best block",
				Flags:  with(keyFlag, delegatorFlag, spanFlag),
				Action: kernelAction,
			},
			{
				Name:   "stake",
				Usage:  "pack, sign and connect a proof-of-stake block",
				Flags:  with(keyFlag, podFlag, delegatorFlag, spanFlag),
				Action: stakeAction,
			},
			{
				Name:   "gasparams",
				Usage:  "print gas params and governance changes",
				Flags:  with(),
				Action: gasParamsAction,
			},
			{
				Name:  "delegation",
				Usage: "proof of delegation helpers",
				Subcommands: []cli.Command{
					{
						Name:   "embed",
						Usage:  "embed a signed staker into addDelegation call data",
						Flags:  []cli.Flag{dataFlag, sigFlag},
						Action: embedAction,
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
