// Copyright (c) 2025 The Aurum developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package consensus

import (
	"github.com/aurumchain/aurum/aurum"
	"github.com/aurumchain/aurum/block"
	"github.com/aurumchain/aurum/chain"
	"github.com/aurumchain/aurum/chainstate"
	"github.com/aurumchain/aurum/delegation"
	"github.com/aurumchain/aurum/pos"
	"github.com/aurumchain/aurum/reconcile"
	"github.com/aurumchain/aurum/runtime"
	"github.com/aurumchain/aurum/state"
	"github.com/aurumchain/aurum/tx"
	"github.com/aurumchain/aurum/utxo"
	"github.com/aurumchain/aurum/vm"
	"github.com/pkg/errors"
)

// verifyBlock runs the stake check and the block transactions against views at
// the best block, then checks the resulting roots. Called under the chain state lock.
func (c *Consensus) verifyBlock(cs *chainstate.ChainState, blk *block.Block, parent *chain.BlockIndex) (*Stage, error) {
	header := blk.Header()
	st, coins := cs.NewViews()

	// proof-of-work blocks and genesis use the block id as proof
	proofHash := header.ID()
	var staker aurum.Address

	if header.IsProofOfStake() {
		var err error
		if proofHash, staker, err = c.validateStake(cs, blk, parent, st, coins); err != nil {
			return nil, err
		}
	}

	rt := runtime.New(st, coins, vm.BlockContext{
		Network:  vm.Network(cs.Config().Network),
		Height:   header.Height(),
		Time:     header.Time(),
		Staker:   staker,
		Bits:     header.Bits(),
		ParentID: header.ParentID(),
	}, cs.Governor().CurrentParams(header.Height()), c.executor)

	receipts, err := rt.ExecuteBlock(blk.Transactions())
	if err != nil {
		return nil, runtimeReject(err)
	}

	gasChange, err := cs.Governor().Stage(header.Height(), st)
	if err != nil {
		rt.Reject()
		return nil, errors.Wrap(err, "stage gas params")
	}

	changes := new(reconcile.Changes)
	if changes.State, err = st.Changes(); err != nil {
		rt.Reject()
		return nil, err
	}
	if changes.UTXO, err = coins.Changes(); err != nil {
		rt.Reject()
		return nil, err
	}
	roots, err := cs.Reconciler().Compute(changes)
	if err != nil {
		rt.Reject()
		return nil, err
	}
	if err := reconcile.ValidateHeader(header, roots); err != nil {
		rt.Reject()
		var mismatch *reconcile.RootMismatch
		if errors.As(err, &mismatch) && mismatch.Which == reconcile.UTXORoot {
			return nil, &RejectError{ReasonUTXORoot, err.Error()}
		}
		return nil, &RejectError{ReasonStateRoot, err.Error()}
	}

	var modifierSrc pos.ModifierSource
	if parent != nil {
		modifierSrc = parent
	}
	modifier := pos.ComputeStakeModifier(modifierSrc, proofHash)
	return &Stage{
		Block:     blk,
		Parent:    parent,
		Index:     chain.NewBlockIndex(parent, header, modifier, proofHash, staker),
		Receipts:  receipts,
		Changes:   changes,
		Roots:     roots,
		GasChange: gasChange,
		rt:        rt,
	}, nil
}

// validateStake checks the kernel of the coinstake and who signed the block.
// The signer must own the kernel coin, or hold an active delegation of its owner.
// It returns the kernel proof hash and the signer.
func (c *Consensus) validateStake(
	cs *chainstate.ChainState,
	blk *block.Block,
	parent *chain.BlockIndex,
	st *state.State,
	coins *utxo.View,
) (proof aurum.Bytes32, signer aurum.Address, err error) {
	var (
		cfg     = cs.Config()
		header  = blk.Header()
		prevout = header.PrevoutStake()
	)
	coin, err := coins.GetCoin(prevout)
	if err != nil {
		return proof, signer, err
	}
	if coin == nil {
		return proof, signer, reject(ReasonCoinstakeKernel, "kernel coin %v missing or spent", prevout)
	}

	proof, _, err = pos.CheckStakeKernel(cfg, parent.StakeModifier(), prevout, coins,
		header.Height(), header.Time(), header.Bits(), nil)
	if err != nil {
		var kerr *pos.KernelError
		if errors.As(err, &kerr) {
			return proof, signer, &RejectError{ReasonPoSKernel, err.Error()}
		}
		return proof, signer, err
	}

	owner, ok := tx.ExtractOwner(coin.Script)
	if !ok {
		return proof, signer, reject(ReasonCoinstakeKernel, "kernel coin %v has no owner", prevout)
	}

	sig, err := delegation.ParseHeaderSignature(header.BlockSigDlgt())
	if err != nil {
		return proof, signer, &RejectError{ReasonPoDLength, err.Error()}
	}
	if signer, err = header.Signer(); err != nil {
		return proof, signer, reject(ReasonBlockSignature, "block signer unavailable: %v", err)
	}

	if sig.Kind == delegation.NoPoD {
		if signer != owner {
			return proof, signer, reject(ReasonBlockSignature, "signer %v does not own kernel coin of %v", signer, owner)
		}
		return proof, signer, nil
	}

	ledger := delegation.NewLedger(aurum.DelegationContractAddress, st)
	rec, err := ledger.Get(owner)
	if err != nil {
		return proof, signer, err
	}
	if rec == nil {
		return proof, signer, reject(ReasonDelegation, "%v has no delegation", owner)
	}
	if rec.BlockHeight >= header.Height() {
		return proof, signer, reject(ReasonDelegation, "delegation of %v active after %d", owner, rec.BlockHeight)
	}
	ok, err = ledger.Verify(owner, &delegation.Delegation{
		Staker:      signer,
		Fee:         rec.Fee,
		BlockHeight: rec.BlockHeight,
		PoD:         sig.PoD,
	})
	if err != nil {
		return proof, signer, err
	}
	if !ok {
		return proof, signer, reject(ReasonDelegation, "signer %v is not the delegated staker of %v", signer, owner)
	}
	if err := checkCustody(blk.CoinStake(), owner, coin.Value, rec.Fee); err != nil {
		return proof, signer, err
	}
	return proof, signer, nil
}

// checkCustody requires a delegated coinstake to pay the kernel value back to
// its owner, less at most fee percent kept by the staker. The staker share
// rounds down.
func checkCustody(cstake *tx.Transaction, owner aurum.Address, value int64, fee uint8) error {
	want := value - value*int64(fee)/100
	var paid int64
	for _, out := range cstake.MsgTx().TxOut {
		if addr, ok := tx.ExtractOwner(out.PkScript); ok && addr == owner {
			paid += out.Value
		}
	}
	if paid < want {
		return reject(ReasonDelegation, "coinstake pays %d to %v, want at least %d", paid, owner, want)
	}
	return nil
}
