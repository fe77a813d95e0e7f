// Copyright (c) 2025 The Aurum developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/aurumchain/aurum/aurum"
	"github.com/aurumchain/aurum/block"
	"github.com/aurumchain/aurum/consensus"
	"github.com/aurumchain/aurum/cry"
	"github.com/aurumchain/aurum/delegation"
	"github.com/aurumchain/aurum/kv"
	"github.com/aurumchain/aurum/packer"
	"github.com/aurumchain/aurum/reconcile"
	"github.com/aurumchain/aurum/tx"
	"github.com/aurumchain/aurum/utxo"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/wire"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/pkg/errors"
	cli "gopkg.in/urfave/cli.v1"
)

func formatAmount(v int64) string {
	return fmt.Sprintf("%.8f AUR", btcutil.Amount(v).ToBTC())
}

func initAction(ctx *cli.Context) error {
	n := openNode(ctx)
	defer n.Close()
	best := n.cs.Best()
	fmt.Printf("genesis %v\n", best.ID)
	return nil
}

func statusAction(ctx *cli.Context) error {
	n := openNode(ctx)
	defer n.Close()

	best := n.cs.Best()
	fmt.Printf("best      %v\n", best.ID)
	fmt.Printf("height    %d\n", best.Height)
	fmt.Printf("time      %v\n", time.Unix(int64(best.Time), 0).UTC())
	fmt.Printf("staker    %v\n", best.Staker)
	fmt.Printf("trust     %v\n", best.Trust())
	fmt.Printf("stateRoot %v\n", best.StateRoot)
	fmt.Printf("utxoRoot  %v\n", best.UTXORoot)
	fmt.Printf("params    %v\n", n.cs.Governor().CurrentParams(best.Height+1))

	if s := ctx.String(addressFlag.Name); s != "" {
		addr := parseAddress(s)
		st, _ := n.cs.NewViews()
		bal, err := st.GetBalance(addr)
		if err != nil {
			return err
		}
		coins, err := ownedCoins(n.cs.Store(), addr)
		if err != nil {
			return err
		}
		var total int64
		for _, c := range coins {
			total += c.coin.Value
		}
		fmt.Printf("account   %v\n", formatAmount(int64(bal)))
		fmt.Printf("coins     %v in %d outputs\n", formatAmount(total), len(coins))
		for _, c := range coins {
			fmt.Printf("  %v %v height %d\n", c.prevout, formatAmount(c.coin.Value), c.coin.Height)
		}
	}
	return nil
}

func importAction(ctx *cli.Context) error {
	if ctx.NArg() != 1 {
		return errors.New("expect one block file")
	}
	file, err := os.Open(ctx.Args().First())
	if err != nil {
		return err
	}
	defer file.Close()

	n := openNode(ctx)
	defer n.Close()

	var imported int
	scanner := bufio.NewScanner(file)
	scanner.Buffer(nil, 64*1024*1024)
	for line := 1; scanner.Scan(); line++ {
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		data, err := hexutil.Decode(text)
		if err != nil {
			return errors.Wrapf(err, "line %d", line)
		}
		var dec block.Decoder
		if err := rlp.DecodeBytes(data, &dec); err != nil {
			return errors.Wrapf(err, "line %d: decode block", line)
		}
		stage, err := n.cons.Process(n.cs, dec.Result, uint64(time.Now().Unix()))
		if err != nil {
			if consensus.IsKnownBlock(err) {
				continue
			}
			return errors.Wrapf(err, "line %d: process block %v", line, dec.Result.Header().ID())
		}
		if err := n.cons.Connect(n.cs, stage); err != nil {
			return errors.Wrapf(err, "line %d: connect block", line)
		}
		imported++
	}
	if err := scanner.Err(); err != nil {
		return err
	}
	log.Info("import done", "blocks", imported, "best", n.cs.Best().Height)
	return nil
}

func rollbackAction(ctx *cli.Context) error {
	n := openNode(ctx)
	defer n.Close()

	for i := uint(0); i < ctx.Uint(countFlag.Name); i++ {
		if best := n.cs.Best(); best == nil || best.Height == 0 {
			return errors.New("cannot roll back genesis")
		}
		parent, err := n.cons.Disconnect(n.cs)
		if err != nil {
			return err
		}
		fmt.Printf("best %v height %d\n", parent.ID, parent.Height)
	}
	return nil
}

// stakeOwner returns the owner of the coins to stake: the delegator when set,
// the staker otherwise.
func stakeOwner(ctx *cli.Context, key *cry.PrivateKey) aurum.Address {
	if s := ctx.String(delegatorFlag.Name); s != "" {
		return parseAddress(s)
	}
	return cry.KeyToAddress(key)
}

func searchKernel(ctx *cli.Context, n *node, p *packer.Packer, owner aurum.Address) (wire.OutPoint, uint32, error) {
	coins, err := ownedCoins(n.cs.Store(), owner)
	if err != nil {
		return wire.OutPoint{}, 0, err
	}
	prevouts := make([]wire.OutPoint, 0, len(coins))
	for _, c := range coins {
		prevouts = append(prevouts, c.prevout)
	}
	best := n.cs.Best()
	res, err := p.Schedule(prevouts, best.Time+1, best.Time+uint32(ctx.Uint(spanFlag.Name)))
	if err != nil {
		return wire.OutPoint{}, 0, err
	}
	return res.Kernel.Prevout, res.Kernel.Timestamp, nil
}

func kernelAction(ctx *cli.Context) error {
	n := openNode(ctx)
	defer n.Close()

	key := loadKey(ctx)
	p := packer.New(n.cs, nil, key)
	kernel, ts, err := searchKernel(ctx, n, p, stakeOwner(ctx, key))
	if err != nil {
		return err
	}
	fmt.Printf("kernel %v at %d (%v)\n", kernel, ts, time.Unix(int64(ts), 0).UTC())
	return nil
}

func stakeAction(ctx *cli.Context) error {
	n := openNode(ctx)
	defer n.Close()

	key := loadKey(ctx)
	p := packer.New(n.cs, n.cons.Executor(), key)
	if s := ctx.String(podFlag.Name); s != "" {
		pod, err := hexutil.Decode(s)
		if err != nil {
			return errors.Wrap(err, "decode pod")
		}
		if ctx.String(delegatorFlag.Name) == "" {
			return errors.Errorf("-%s requires -%s", podFlag.Name, delegatorFlag.Name)
		}
		p.SetPoD(pod)
	}

	kernel, ts, err := searchKernel(ctx, n, p, stakeOwner(ctx, key))
	if err != nil {
		return err
	}
	flow, err := p.Mock(kernel, ts)
	if err != nil {
		return err
	}
	blk, _, err := flow.Pack()
	if err != nil {
		return err
	}
	stage, err := n.cons.Process(n.cs, blk, uint64(ts))
	if err != nil {
		return errors.Wrap(err, "process packed block")
	}
	if err := n.cons.Connect(n.cs, stage); err != nil {
		return err
	}
	data, err := rlp.EncodeToBytes(blk)
	if err != nil {
		return err
	}
	fmt.Printf("block %v height %d\n%v\n", blk.Header().ID(), blk.Header().Height(), hexutil.Encode(data))
	return nil
}

func gasParamsAction(ctx *cli.Context) error {
	n := openNode(ctx)
	defer n.Close()

	governor := n.cs.Governor()
	best := n.cs.Best()
	fmt.Printf("current %v\n", governor.CurrentParams(best.Height+1))
	for _, c := range governor.History() {
		fmt.Printf("changed at %d: %v\n", c.Height, c.Params)
	}
	return nil
}

func embedAction(ctx *cli.Context) error {
	data, err := hexutil.Decode(ctx.String(dataFlag.Name))
	if err != nil {
		return errors.Wrap(err, "decode data")
	}
	staker, err := delegation.ExtractUnsignedStaker(data)
	if err != nil {
		return err
	}
	if err := delegation.EmbedSignedStaker(data, ctx.String(sigFlag.Name)); err != nil {
		return err
	}
	fmt.Printf("staker %v\n%v\n", staker, hexutil.Encode(data))
	return nil
}

type ownedCoin struct {
	prevout wire.OutPoint
	coin    *utxo.Coin
}

// ownedCoins scans the coin set for outputs paying owner.
func ownedCoins(store kv.Store, owner aurum.Address) ([]ownedCoin, error) {
	it := reconcile.UTXOBucket.NewStore(store).Iterate(kv.Range{})
	defer it.Release()

	var coins []ownedCoin
	for it.Next() {
		var c utxo.Coin
		if err := rlp.DecodeBytes(it.Value(), &c); err != nil {
			return nil, err
		}
		if addr, ok := tx.ExtractOwner(c.Script); !ok || addr != owner {
			continue
		}
		op, err := utxo.ParseKey(it.Key())
		if err != nil {
			return nil, err
		}
		coins = append(coins, ownedCoin{op, &c})
	}
	return coins, it.Error()
}
