// Copyright (c) 2025 The Aurum developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package aurum

// Constants of block chain.
const (
	COIN int64 = 100000000 // satoshis per coin

	CompactSignatureSize = 65 // recoverable secp256k1 signature, header byte + r + s
	WitnessScaleFactor   = 4

	DefaultCoinbaseMaturity   uint32 = 500
	DefaultStakeTimestampMask uint32 = 15 // low 4 bits of a stake timestamp must be zero
	DefaultTargetSpacing      uint32 = 128
	DefaultTargetTimespan     uint32 = 16 * 60
	DefaultMaxFutureDrift     uint32 = 15
	DefaultPosLimitBits       uint32 = 0x1d00ffff

	DefaultBlockSize     uint32 = 2000000
	DefaultBlockGasLimit uint64 = 40000000
	DefaultMinGasPrice   uint64 = 40

	// MinContractGasLimit is the floor of a contract output's gas limit.
	MinContractGasLimit uint64 = 10000
)

// Addresses of the native contracts.
var (
	DGPContractAddress        = BytesToAddress([]byte{0x81})
	DelegationContractAddress = BytesToAddress([]byte{0x86})
)

// Storage keys of governance params kept by the DGP contract.
var (
	KeyBlockSize     = BytesToBytes32([]byte("block-size"))
	KeyBlockGasLimit = BytesToBytes32([]byte("block-gas-limit"))
	KeyMinGasPrice   = BytesToBytes32([]byte("min-gas-price"))
)
