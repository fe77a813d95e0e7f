// Copyright (c) 2025 The Aurum developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package delegation

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"

	"github.com/aurumchain/aurum/aurum"
	"github.com/pkg/errors"
)

// Layout of addDelegation(address,uint8,bytes) call data.
const (
	selectorLen   = 4
	wordLen       = 32
	stakerOffset  = selectorLen
	feeOffset     = stakerOffset + wordLen
	bytesOffset   = feeOffset + wordLen
	lengthOffset  = bytesOffset + wordLen // 100
	podOffset     = lengthOffset + wordLen
	podRegionLen  = 3 * wordLen
	addCallLength = podOffset + podRegionLen // 228

	// bytes argument starts after the three head words
	bytesArgPointer = 3 * wordLen
	hexAddressLen   = 2 * aurum.AddressLength
)

// Method selectors of the delegation contract.
var (
	AddDelegationSelector    = [4]byte{0x4c, 0x0e, 0x96, 0x8c} // addDelegation(address,uint8,bytes)
	RemoveDelegationSelector = [4]byte{0x3d, 0x66, 0x6e, 0x8b} // removeDelegation()
)

// Codec errors.
var (
	ErrBadLength            = errors.New("delegation: bad signature length")
	ErrNotDelegationCall    = errors.New("delegation: not an addDelegation call")
	ErrMalformedPlaceholder = errors.New("delegation: malformed staker placeholder")
	ErrBadFee               = errors.New("delegation: fee out of range")
)

// MaxFee is the highest fee percentage a staker may take.
const MaxFee = 100

// AddDelegationCall is a decoded addDelegation call.
type AddDelegationCall struct {
	Staker aurum.Address
	Fee    uint8
	PoD    []byte
}

func putWord(dst []byte, v uint64) {
	binary.BigEndian.PutUint64(dst[wordLen-8:wordLen], v)
}

func encodeHead(staker aurum.Address, fee uint8) []byte {
	data := make([]byte, addCallLength)
	copy(data, AddDelegationSelector[:])
	copy(data[stakerOffset+wordLen-aurum.AddressLength:], staker[:])
	putWord(data[feeOffset:], uint64(fee))
	putWord(data[bytesOffset:], bytesArgPointer)
	putWord(data[lengthOffset:], aurum.CompactSignatureSize)
	return data
}

// EncodeAddDelegation encodes a signed addDelegation call.
func EncodeAddDelegation(staker aurum.Address, fee uint8, pod []byte) ([]byte, error) {
	if len(pod) != aurum.CompactSignatureSize {
		return nil, ErrBadLength
	}
	if fee > MaxFee {
		return nil, ErrBadFee
	}
	data := encodeHead(staker, fee)
	copy(data[podOffset:], pod)
	return data, nil
}

// EncodeUnsignedAddDelegation encodes an addDelegation call whose PoD region
// holds the staker address in hex, to be replaced by the staker's signature.
func EncodeUnsignedAddDelegation(staker aurum.Address, fee uint8) ([]byte, error) {
	if fee > MaxFee {
		return nil, ErrBadFee
	}
	data := encodeHead(staker, fee)
	copy(data[podOffset:], staker.Hex())
	return data, nil
}

// EncodeRemoveDelegation encodes a removeDelegation call.
func EncodeRemoveDelegation() []byte {
	return append([]byte(nil), RemoveDelegationSelector[:]...)
}

// IsDelegationCall checks the selector and the bytes length marker.
func IsDelegationCall(data []byte) bool {
	if len(data) < podOffset || !bytes.Equal(data[:selectorLen], AddDelegationSelector[:]) {
		return false
	}
	var want [wordLen]byte
	putWord(want[:], aurum.CompactSignatureSize)
	return bytes.Equal(data[lengthOffset:podOffset], want[:])
}

// IsRemoveDelegationCall checks the removeDelegation selector.
func IsRemoveDelegationCall(data []byte) bool {
	return len(data) >= selectorLen && bytes.Equal(data[:selectorLen], RemoveDelegationSelector[:])
}

// ExtractUnsignedStaker returns the staker address published in the
// placeholder. The trailing region must not be valid hex, otherwise the
// placeholder is ambiguous.
func ExtractUnsignedStaker(data []byte) (aurum.Address, error) {
	if !IsDelegationCall(data) || len(data) < addCallLength {
		return aurum.Address{}, ErrNotDelegationCall
	}
	region := data[podOffset : podOffset+podRegionLen]
	hexAddr := region[:hexAddressLen]
	if !aurum.IsHex(hexAddr) || aurum.IsHex(region[hexAddressLen:]) {
		return aurum.Address{}, ErrMalformedPlaceholder
	}
	addr, err := aurum.ParseAddress(string(hexAddr))
	if err != nil {
		return aurum.Address{}, ErrMalformedPlaceholder
	}
	return addr, nil
}

// EmbedSignedStaker decodes the base64 signature and overwrites the
// placeholder with it in place.
func EmbedSignedStaker(data []byte, b64Signature string) error {
	sig, err := base64.StdEncoding.DecodeString(b64Signature)
	if err != nil {
		return errors.Wrap(err, "delegation: decode signature")
	}
	if len(sig) != aurum.CompactSignatureSize {
		return ErrBadLength
	}
	if !IsDelegationCall(data) || len(data) < addCallLength {
		return ErrNotDelegationCall
	}
	region := data[podOffset : podOffset+podRegionLen]
	copy(region, sig)
	for i := len(sig); i < len(region); i++ {
		region[i] = 0
	}
	return nil
}

// DecodeAddDelegation decodes a signed addDelegation call.
func DecodeAddDelegation(data []byte) (*AddDelegationCall, error) {
	if !IsDelegationCall(data) || len(data) < addCallLength {
		return nil, ErrNotDelegationCall
	}
	for _, b := range data[stakerOffset : stakerOffset+wordLen-aurum.AddressLength] {
		if b != 0 {
			return nil, errors.New("delegation: dirty address word")
		}
	}
	if !bytes.Equal(data[feeOffset:feeOffset+wordLen-1], make([]byte, wordLen-1)) {
		return nil, ErrBadFee
	}
	fee := data[feeOffset+wordLen-1]
	if fee > MaxFee {
		return nil, ErrBadFee
	}
	return &AddDelegationCall{
		Staker: aurum.BytesToAddress(data[stakerOffset+wordLen-aurum.AddressLength : feeOffset]),
		Fee:    fee,
		PoD:    append([]byte(nil), data[podOffset:podOffset+aurum.CompactSignatureSize]...),
	}, nil
}
