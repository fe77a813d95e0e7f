// Copyright (c) 2025 The Aurum developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package aurum

import (
	"io"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/ethereum/go-ethereum/crypto"
	"golang.org/x/crypto/ripemd160" //nolint:staticcheck
)

// DoubleSHA256 computes the chain hash of the concatenated data.
func DoubleSHA256(data ...[]byte) Bytes32 {
	if len(data) == 1 {
		return Bytes32(chainhash.DoubleHashH(data[0]))
	}
	return DoubleSHA256Fn(func(w io.Writer) {
		for _, b := range data {
			w.Write(b)
		}
	})
}

// DoubleSHA256Fn computes the chain hash of what fn writes.
func DoubleSHA256Fn(fn func(w io.Writer)) Bytes32 {
	return Bytes32(chainhash.DoubleHashRaw(func(w io.Writer) error {
		fn(w)
		return nil
	}))
}

// Hash160 computes ripemd160(sha256(data)).
func Hash160(data []byte) Address {
	hw := ripemd160.New()
	hw.Write(chainhash.HashB(data))
	return BytesToAddress(hw.Sum(nil))
}

// Keccak256 computes keccak256 checksum for given data.
func Keccak256(data ...[]byte) Bytes32 {
	return Bytes32(crypto.Keccak256Hash(data...))
}
