// Copyright (c) 2025 The Aurum developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/aurumchain/aurum/aurum"
	"github.com/aurumchain/aurum/boltdb"
	"github.com/aurumchain/aurum/builtin"
	"github.com/aurumchain/aurum/chainstate"
	"github.com/aurumchain/aurum/co"
	"github.com/aurumchain/aurum/consensus"
	"github.com/aurumchain/aurum/cry"
	"github.com/aurumchain/aurum/genesis"
	"github.com/aurumchain/aurum/kv"
	"github.com/aurumchain/aurum/lvldb"
	"github.com/aurumchain/aurum/metrics"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/inconshreveable/log15"
	cli "gopkg.in/urfave/cli.v1"
)

func fatal(args ...any) {
	var w io.Writer
	if runtime.GOOS == "windows" {
		// The SameFile check below doesn't work on Windows.
		w = os.Stdout
	} else {
		outf, _ := os.Stdout.Stat()
		errf, _ := os.Stderr.Stat()
		if outf != nil && errf != nil && os.SameFile(outf, errf) {
			w = os.Stderr
		} else {
			w = io.MultiWriter(os.Stdout, os.Stderr)
		}
	}
	fmt.Fprint(w, "Fatal: ")
	fmt.Fprintln(w, args...)
	os.Exit(1)
}

func initLogger(ctx *cli.Context) {
	logLevel := ctx.Int(verbosityFlag.Name)
	log15.Root().SetHandler(log15.LvlFilterHandler(log15.Lvl(logLevel), log15.StderrHandler))
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".aurum")
}

func makeDataDir(ctx *cli.Context) string {
	dataDir := ctx.String(dataDirFlag.Name)
	if dataDir == "" {
		fatal(fmt.Sprintf("unable to infer default data dir, use -%s to specify", dataDirFlag.Name))
	}
	if err := os.MkdirAll(dataDir, 0o700); err != nil {
		fatal(fmt.Sprintf("create data dir [%v]: %v", dataDir, err))
	}
	return dataDir
}

func openStore(ctx *cli.Context) kv.StoreCloser {
	dataDir := makeDataDir(ctx)
	switch engine := ctx.String(dbEngineFlag.Name); engine {
	case "leveldb":
		dir := filepath.Join(dataDir, "chain.db")
		db, err := lvldb.New(dir, lvldb.Options{
			CacheSize:              ctx.Int(cacheFlag.Name),
			OpenFilesCacheCapacity: 512,
		})
		if err != nil {
			fatal(fmt.Sprintf("open chain database [%v]: %v", dir, err))
		}
		return db
	case "bolt":
		file := filepath.Join(dataDir, "chain.bolt")
		db, err := boltdb.New(file)
		if err != nil {
			fatal(fmt.Sprintf("open chain database [%v]: %v", file, err))
		}
		return db
	default:
		fatal(fmt.Sprintf("unknown db engine %q", engine))
		return nil
	}
}

type node struct {
	config *aurum.ChainConfig
	store  kv.StoreCloser
	cs     *chainstate.ChainState
	cons   *consensus.Consensus
	stop   func()
}

func (n *node) Close() {
	n.stop()
	log.Info("closing chain database...")
	if err := n.store.Close(); err != nil {
		log.Warn("close chain database", "err", err)
	}
}

// openNode opens the chain of the data dir. The genesis block is connected
// when the chain is empty.
func openNode(ctx *cli.Context) *node {
	initLogger(ctx)
	config, err := genesis.LoadConfig(ctx.String(configFlag.Name))
	if err != nil {
		fatal(err)
	}
	store := openStore(ctx)
	cs, err := chainstate.New(store, config)
	if err != nil {
		store.Close()
		fatal("open chain state:", err)
	}
	cons := consensus.New(builtin.New(config, nil))
	if _, err := genesis.Init(cs, cons); err != nil {
		store.Close()
		fatal("initialize genesis:", err)
	}
	return &node{config, store, cs, cons, startMetricsServer(ctx)}
}

func startMetricsServer(ctx *cli.Context) func() {
	addr := ctx.String(metricsAddrFlag.Name)
	if addr == "" {
		return func() {}
	}
	metrics.InitializePrometheusMetrics()

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		fatal(fmt.Sprintf("listen metrics addr [%v]: %v", addr, err))
	}
	srv := &http.Server{Handler: newMetricsHandler(), ReadHeaderTimeout: time.Second, ReadTimeout: 5 * time.Second}

	var goes co.Goes
	goes.Go(func() {
		srv.Serve(listener)
	})
	log.Info("metrics server started", "url", "http://"+listener.Addr().String()+"/metrics")
	return func() {
		log.Info("stopping metrics server...")
		srv.Close()
		goes.Wait()
	}
}

func newMetricsHandler() http.Handler {
	router := mux.NewRouter()
	router.PathPrefix("/metrics").Handler(metrics.HTTPHandler())
	return handlers.CompressHandler(router)
}

func loadKey(ctx *cli.Context) *cry.PrivateKey {
	s := ctx.String(keyFlag.Name)
	if s == "" {
		fatal(fmt.Sprintf("-%s is required", keyFlag.Name))
	}
	key, err := cry.HexToKey(s)
	if err != nil {
		fatal("invalid key:", err)
	}
	return key
}

func parseAddress(s string) aurum.Address {
	addr, err := aurum.ParseAddress(s)
	if err != nil {
		fatal(fmt.Sprintf("invalid address %q: %v", s, err))
	}
	return addr
}
