// Copyright (c) 2025 The Aurum developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package cry

import (
	"testing"

	"github.com/aurumchain/aurum/aurum"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKeyHex = "289c2857d4598e37fb9647507e47a309d6133539bf21a8b9cb6df88fd5232032"

func TestSignRecover(t *testing.T) {
	key, err := HexToKey(testKeyHex)
	require.NoError(t, err)

	hash := aurum.DoubleSHA256([]byte("foo"))
	sig := Sign(hash, key)
	assert.Len(t, sig, aurum.CompactSignatureSize)

	addr, err := RecoverAddress(hash, sig)
	assert.Nil(t, err)
	assert.Equal(t, KeyToAddress(key), addr)

	other := aurum.DoubleSHA256([]byte("bar"))
	addr, err = RecoverAddress(other, sig)
	if err == nil {
		assert.NotEqual(t, KeyToAddress(key), addr)
	}

	_, err = RecoverAddress(hash, sig[:64])
	assert.NotNil(t, err)

	_, err = HexToKey("abcd")
	assert.NotNil(t, err)
}

type signable struct {
	id  aurum.Bytes32
	sig []byte
}

func (s *signable) SigningHash() aurum.Bytes32 { return aurum.DoubleSHA256(s.id[:]) }
func (s *signable) Signature() []byte          { return s.sig }
func (s *signable) ID() aurum.Bytes32          { return s.id }

func TestSigningCache(t *testing.T) {
	key, _ := GenerateKey()
	signing := NewSigning()

	target := &signable{id: aurum.BytesToBytes32([]byte{1})}
	target.sig = signing.Sign(target, key)

	signer, err := signing.Signer(target)
	assert.Nil(t, err)
	assert.Equal(t, KeyToAddress(key), signer)

	// served from cache
	target.sig = nil
	signer, err = signing.Signer(target)
	assert.Nil(t, err)
	assert.Equal(t, KeyToAddress(key), signer)
}

func TestPoD(t *testing.T) {
	staker, _ := GenerateKey()
	delegator := aurum.BytesToAddress([]byte("delegator"))

	pod := SignPoD(staker, delegator)
	got, err := RecoverPoDStaker(pod, delegator)
	assert.Nil(t, err)
	assert.Equal(t, KeyToAddress(staker), got)

	got, err = RecoverPoDStaker(pod, aurum.BytesToAddress([]byte("someone else")))
	if err == nil {
		assert.NotEqual(t, KeyToAddress(staker), got)
	}
}
