// Copyright (c) 2025 The Aurum developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package cry

import (
	"github.com/aurumchain/aurum/aurum"
	"github.com/aurumchain/aurum/cache"
)

const signerCacheSize = 1024

// Signable interface of signable object.
type Signable interface {
	SigningHash() aurum.Bytes32
	Signature() []byte
	ID() aurum.Bytes32
}

// Signing signs signable objects and extracts signers with a cache keyed by ID.
type Signing struct {
	cache *cache.LRU[aurum.Bytes32, aurum.Address]
}

// NewSigning create a signing object.
func NewSigning() *Signing {
	c, _ := cache.NewLRU[aurum.Bytes32, aurum.Address](signerCacheSize)
	return &Signing{c}
}

// Sign signs the target with given private key.
func (s *Signing) Sign(target Signable, key *PrivateKey) []byte {
	return Sign(target.SigningHash(), key)
}

// Signer extracts signer from signed target.
func (s *Signing) Signer(target Signable) (aurum.Address, error) {
	return s.cache.GetOrLoad(target.ID(), func(aurum.Bytes32) (aurum.Address, error) {
		return RecoverAddress(target.SigningHash(), target.Signature())
	})
}
