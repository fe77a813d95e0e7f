// Copyright (c) 2025 The Aurum developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package block

import (
	"fmt"
	"io"
	"sync/atomic"

	"github.com/aurumchain/aurum/aurum"
	"github.com/aurumchain/aurum/cry"
	"github.com/aurumchain/aurum/delegation"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/ethereum/go-ethereum/rlp"
)

// Header contains almost all information about a block, except block body.
// It's immutable.
type Header struct {
	body headerBody

	cache struct {
		signingHash atomic.Value
		signer      atomic.Value
		id          atomic.Value
	}
}

// headerBody body of header
type headerBody struct {
	Version    uint32
	ParentID   aurum.Bytes32
	Height     uint32
	MerkleRoot aurum.Bytes32
	Time       uint32
	Bits       uint32
	Nonce      uint32

	StateRoot    aurum.Bytes32
	UTXORoot     aurum.Bytes32
	PrevoutStake wire.OutPoint

	BlockSigDlgt []byte
}

// Version returns the header version.
func (h *Header) Version() uint32 {
	return h.body.Version
}

// ParentID returns id of parent block.
func (h *Header) ParentID() aurum.Bytes32 {
	return h.body.ParentID
}

// Height returns sequential number of this block.
func (h *Header) Height() uint32 {
	return h.body.Height
}

// MerkleRoot returns merkle root of txs contained in this block.
func (h *Header) MerkleRoot() aurum.Bytes32 {
	return h.body.MerkleRoot
}

// Time returns timestamp of this block.
func (h *Header) Time() uint32 {
	return h.body.Time
}

// Bits returns the compact target.
func (h *Header) Bits() uint32 {
	return h.body.Bits
}

// Nonce returns the proof-of-work nonce.
func (h *Header) Nonce() uint32 {
	return h.body.Nonce
}

// StateRoot returns contract state root just after this block being applied.
func (h *Header) StateRoot() aurum.Bytes32 {
	return h.body.StateRoot
}

// UTXORoot returns the unspent output set root just after this block being applied.
func (h *Header) UTXORoot() aurum.Bytes32 {
	return h.body.UTXORoot
}

// PrevoutStake returns the coin claimed to satisfy the stake kernel.
func (h *Header) PrevoutStake() wire.OutPoint {
	return h.body.PrevoutStake
}

// IsProofOfStake returns whether the block claims a stake kernel.
func (h *Header) IsProofOfStake() bool {
	return h.body.PrevoutStake.Hash != (chainhash.Hash{})
}

// ID computes id of block, the double-SHA256 of the whole header.
func (h *Header) ID() (id aurum.Bytes32) {
	if cached := h.cache.id.Load(); cached != nil {
		return cached.(aurum.Bytes32)
	}
	defer func() { h.cache.id.Store(id) }()

	return aurum.DoubleSHA256Fn(func(w io.Writer) {
		rlp.Encode(w, &h.body)
	})
}

// SigningHash computes hash of all header fields excluding signature.
func (h *Header) SigningHash() (hash aurum.Bytes32) {
	if cached := h.cache.signingHash.Load(); cached != nil {
		return cached.(aurum.Bytes32)
	}
	defer func() { h.cache.signingHash.Store(hash) }()

	return aurum.DoubleSHA256Fn(func(w io.Writer) {
		rlp.Encode(w, []any{
			h.body.Version,
			h.body.ParentID,
			h.body.Height,
			h.body.MerkleRoot,
			h.body.Time,
			h.body.Bits,
			h.body.Nonce,

			h.body.StateRoot,
			h.body.UTXORoot,
			h.body.PrevoutStake,
		})
	})
}

// BlockSigDlgt returns the combined signature field, signature || optional PoD.
func (h *Header) BlockSigDlgt() []byte {
	return append([]byte(nil), h.body.BlockSigDlgt...)
}

// Signature returns the block signature part.
func (h *Header) Signature() []byte {
	sig, _ := delegation.SplitHeaderSignature(h.body.BlockSigDlgt)
	return append([]byte(nil), sig...)
}

// PoD returns the proof of delegation, nil if absent.
func (h *Header) PoD() []byte {
	_, pod := delegation.SplitHeaderSignature(h.body.BlockSigDlgt)
	if pod == nil {
		return nil
	}
	return append([]byte(nil), pod...)
}

// HasPoD returns whether the header carries a proof of delegation.
func (h *Header) HasPoD() bool {
	return len(h.body.BlockSigDlgt) >= 2*aurum.CompactSignatureSize
}

// WithSignature create a new Header object with the combined signature field set.
func (h *Header) WithSignature(sigDlgt []byte) *Header {
	cpy := Header{body: h.body}
	cpy.body.BlockSigDlgt = append([]byte(nil), sigDlgt...)
	return &cpy
}

// Signer extract signer of the block from signature.
func (h *Header) Signer() (signer aurum.Address, err error) {
	if h.body.Height == 0 {
		// special case for genesis block
		return aurum.Address{}, nil
	}

	if cached := h.cache.signer.Load(); cached != nil {
		return cached.(aurum.Address), nil
	}
	defer func() {
		if err == nil {
			h.cache.signer.Store(signer)
		}
	}()

	sig, _ := delegation.SplitHeaderSignature(h.body.BlockSigDlgt)
	return cry.RecoverAddress(h.SigningHash(), sig)
}

// EncodeRLP implements rlp.Encoder
func (h *Header) EncodeRLP(w io.Writer) error {
	return rlp.Encode(w, &h.body)
}

// DecodeRLP implements rlp.Decoder.
func (h *Header) DecodeRLP(s *rlp.Stream) error {
	var body headerBody

	if err := s.Decode(&body); err != nil {
		return err
	}
	*h = Header{body: body}
	return nil
}

func (h *Header) String() string {
	var signerStr string
	if signer, err := h.Signer(); err != nil {
		signerStr = "N/A"
	} else {
		signerStr = signer.String()
	}

	return fmt.Sprintf(`Header(%v):
	Height:			%v
	ParentID:		%v
	Version:		%v
	Time:			%v
	Bits:			%08x
	Nonce:			%v
	Signer:			%v
	MerkleRoot:		%v
	StateRoot:		%v
	UTXORoot:		%v
	PrevoutStake:	%v
	BlockSigDlgt:	0x%x`, h.ID(), h.body.Height, h.body.ParentID, h.body.Version, h.body.Time,
		h.body.Bits, h.body.Nonce, signerStr, h.body.MerkleRoot, h.body.StateRoot,
		h.body.UTXORoot, h.body.PrevoutStake, h.body.BlockSigDlgt)
}
