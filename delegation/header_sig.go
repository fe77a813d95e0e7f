// Copyright (c) 2025 The Aurum developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package delegation

import (
	"github.com/aurumchain/aurum/aurum"
	"github.com/pkg/errors"
)

// ErrBadPoDLength is returned for header signature blobs of unexpected size.
var ErrBadPoDLength = errors.New("delegation: bad header signature length")

// SigKind tells whether a header signature carries a proof of delegation.
type SigKind uint8

// Signature kinds.
const (
	NoPoD SigKind = iota
	WithPoD
)

// HeaderSignature is a parsed block signature field.
type HeaderSignature struct {
	Signature []byte
	Kind      SigKind
	PoD       []byte // nil unless Kind is WithPoD
}

// SplitHeaderSignature splits the blob into signature and optional PoD.
// The PoD is present iff the blob holds at least two compact signatures.
func SplitHeaderSignature(blob []byte) (sig, pod []byte) {
	n := len(blob)
	if n >= 2*aurum.CompactSignatureSize {
		return blob[:n-aurum.CompactSignatureSize], blob[n-aurum.CompactSignatureSize:]
	}
	return blob, nil
}

// JoinHeaderSignature concatenates signature and PoD.
func JoinHeaderSignature(sig, pod []byte) []byte {
	blob := make([]byte, 0, len(sig)+len(pod))
	return append(append(blob, sig...), pod...)
}

// ParseHeaderSignature strictly parses the blob: one compact signature, or
// a compact signature followed by a PoD.
func ParseHeaderSignature(blob []byte) (*HeaderSignature, error) {
	switch len(blob) {
	case aurum.CompactSignatureSize:
		return &HeaderSignature{Signature: blob, Kind: NoPoD}, nil
	case 2 * aurum.CompactSignatureSize:
		sig, pod := SplitHeaderSignature(blob)
		return &HeaderSignature{Signature: sig, Kind: WithPoD, PoD: pod}, nil
	}
	return nil, errors.Wrapf(ErrBadPoDLength, "have %d", len(blob))
}

// Bytes re-encodes the header signature.
func (hs *HeaderSignature) Bytes() []byte {
	if hs.Kind == WithPoD {
		return JoinHeaderSignature(hs.Signature, hs.PoD)
	}
	return JoinHeaderSignature(hs.Signature, nil)
}
