// Copyright (c) 2025 The Aurum developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package cry

import (
	"io"

	"github.com/aurumchain/aurum/aurum"
	"github.com/btcsuite/btcd/wire"
)

// MessageMagic prefixes every signed text message.
const MessageMagic = "Aurum Signed Message:\n"

// MessageHash hashes a text message the way wallets sign it:
// double-SHA256(varstr(magic) || varstr(msg)).
func MessageHash(msg string) aurum.Bytes32 {
	return aurum.DoubleSHA256Fn(func(w io.Writer) {
		wire.WriteVarString(w, 0, MessageMagic)
		wire.WriteVarString(w, 0, msg)
	})
}

// SignPoD signs the delegator's address with the staker key, producing the
// proof of delegation.
func SignPoD(staker *PrivateKey, delegator aurum.Address) []byte {
	return Sign(MessageHash(delegator.Hex()), staker)
}

// RecoverPoDStaker recovers the staker address from a proof of delegation.
func RecoverPoDStaker(pod []byte, delegator aurum.Address) (aurum.Address, error) {
	return RecoverAddress(MessageHash(delegator.Hex()), pod)
}
