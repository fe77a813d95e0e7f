// Copyright (c) 2025 The Aurum developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package cry provides key handling and compact signatures.
package cry

import (
	"encoding/hex"

	"github.com/aurumchain/aurum/aurum"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/pkg/errors"
)

// PrivateKey is a secp256k1 private key.
type PrivateKey = secp256k1.PrivateKey

// PublicKey is a secp256k1 public key.
type PublicKey = secp256k1.PublicKey

// GenerateKey creates a new random private key.
func GenerateKey() (*PrivateKey, error) {
	return secp256k1.GeneratePrivateKey()
}

// KeyFromBytes parses a 32 bytes private key.
func KeyFromBytes(b []byte) (*PrivateKey, error) {
	if len(b) != 32 {
		return nil, errors.New("invalid private key length, need 256 bits")
	}
	return secp256k1.PrivKeyFromBytes(b), nil
}

// HexToKey parses a hex encoded private key.
func HexToKey(s string) (*PrivateKey, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, errors.Wrap(err, "decode private key")
	}
	return KeyFromBytes(b)
}

// PubkeyToAddress returns hash160 of the compressed public key.
func PubkeyToAddress(pub *PublicKey) aurum.Address {
	return aurum.Hash160(pub.SerializeCompressed())
}

// KeyToAddress returns the address owned by the private key.
func KeyToAddress(key *PrivateKey) aurum.Address {
	return PubkeyToAddress(key.PubKey())
}
