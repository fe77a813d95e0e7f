// Copyright (c) 2025 The Aurum developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package cry

import (
	"github.com/aurumchain/aurum/aurum"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
	"github.com/pkg/errors"
)

// Sign produces a 65 bytes compact recoverable signature of hash.
func Sign(hash aurum.Bytes32, key *PrivateKey) []byte {
	return ecdsa.SignCompact(key, hash[:], true)
}

// Recover recovers the public key that produced the compact signature.
func Recover(hash aurum.Bytes32, sig []byte) (*PublicKey, error) {
	if len(sig) != aurum.CompactSignatureSize {
		return nil, errors.Errorf("invalid signature length %d", len(sig))
	}
	pub, _, err := ecdsa.RecoverCompact(sig, hash[:])
	if err != nil {
		return nil, errors.Wrap(err, "recover signature")
	}
	return pub, nil
}

// RecoverAddress recovers the signer address of the compact signature.
// Uncompressed signatures map to the hash160 of the uncompressed key.
func RecoverAddress(hash aurum.Bytes32, sig []byte) (aurum.Address, error) {
	if len(sig) != aurum.CompactSignatureSize {
		return aurum.Address{}, errors.Errorf("invalid signature length %d", len(sig))
	}
	pub, compressed, err := ecdsa.RecoverCompact(sig, hash[:])
	if err != nil {
		return aurum.Address{}, errors.Wrap(err, "recover signature")
	}
	if !compressed {
		return aurum.Hash160(pub.SerializeUncompressed()), nil
	}
	return PubkeyToAddress(pub), nil
}

// ParsePubKey parses a serialized public key.
func ParsePubKey(b []byte) (*PublicKey, error) {
	return secp256k1.ParsePubKey(b)
}
