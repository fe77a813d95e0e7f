// Copyright (c) 2025 The Aurum developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package state maintains contract account state on top of a kv store.
package state

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/aurumchain/aurum/aurum"
	"github.com/aurumchain/aurum/kv"
	"github.com/aurumchain/aurum/stackedmap"
	"github.com/ethereum/go-ethereum/rlp"
)

// Key prefixes inside the state bucket.
const (
	accountPrefix = 'a'
	codePrefix    = 'c'
	storagePrefix = 's'
)

// Error is the error caused by state access failure.
type Error struct {
	cause error
}

func (e *Error) Error() string {
	return fmt.Sprintf("state: %v", e.cause)
}

func (e *Error) Unwrap() error {
	return e.cause
}

type (
	codeKey    aurum.Address
	storageKey struct {
		addr aurum.Address
		key  aurum.Bytes32
	}
)

// State manages the contract world state.
type State struct {
	src kv.Getter
	sm  *stackedmap.StackedMap[any, any]
}

// New create state object reading committed state from src.
func New(src kv.Getter) *State {
	s := &State{src: src}
	s.sm = stackedmap.New[any, any](s.load)
	return s
}

func (s *State) get(k []byte) ([]byte, error) {
	return kv.GetOrNil(s.src, k)
}

// load implements stackedmap.MapGetter.
func (s *State) load(key any) (any, bool, error) {
	switch k := key.(type) {
	case aurum.Address:
		data, err := s.get(AccountKey(k))
		if err != nil {
			return nil, false, err
		}
		acc := emptyAccount()
		if len(data) > 0 {
			if err := rlp.DecodeBytes(data, acc); err != nil {
				return nil, false, err
			}
		}
		return acc, true, nil
	case codeKey:
		code, err := s.get(CodeKey(aurum.Address(k)))
		if err != nil {
			return nil, false, err
		}
		return code, true, nil
	case storageKey:
		data, err := s.get(StorageKey(k.addr, k.key))
		if err != nil {
			return nil, false, err
		}
		return rlp.RawValue(data), true, nil
	}
	panic(fmt.Errorf("unexpected key type %+v", key))
}

func (s *State) getAccount(addr aurum.Address) (*Account, error) {
	v, _, err := s.sm.Get(addr)
	if err != nil {
		return nil, err
	}
	return v.(*Account), nil
}

func (s *State) getAccountCopy(addr aurum.Address) (Account, error) {
	acc, err := s.getAccount(addr)
	if err != nil {
		return Account{}, err
	}
	return *acc, nil
}

// GetBalance returns balance for the given address.
func (s *State) GetBalance(addr aurum.Address) (uint64, error) {
	acc, err := s.getAccount(addr)
	if err != nil {
		return 0, &Error{err}
	}
	return acc.Balance, nil
}

// SetBalance set balance for the given address.
func (s *State) SetBalance(addr aurum.Address, balance uint64) error {
	cpy, err := s.getAccountCopy(addr)
	if err != nil {
		return &Error{err}
	}
	cpy.Balance = balance
	s.sm.Put(addr, &cpy)
	return nil
}

// AddBalance adds amount to the balance of addr.
func (s *State) AddBalance(addr aurum.Address, amount uint64) error {
	bal, err := s.GetBalance(addr)
	if err != nil {
		return err
	}
	if bal+amount < bal {
		return &Error{fmt.Errorf("balance overflow: %v", addr)}
	}
	return s.SetBalance(addr, bal+amount)
}

// GetCode returns code for the given address.
func (s *State) GetCode(addr aurum.Address) ([]byte, error) {
	v, _, err := s.sm.Get(codeKey(addr))
	if err != nil {
		return nil, &Error{err}
	}
	return v.([]byte), nil
}

// GetCodeHash returns code hash for the given address.
func (s *State) GetCodeHash(addr aurum.Address) (aurum.Bytes32, error) {
	acc, err := s.getAccount(addr)
	if err != nil {
		return aurum.Bytes32{}, &Error{err}
	}
	return aurum.BytesToBytes32(acc.CodeHash), nil
}

// SetCode set code for the given address.
func (s *State) SetCode(addr aurum.Address, code []byte) error {
	cpy, err := s.getAccountCopy(addr)
	if err != nil {
		return &Error{err}
	}
	if len(code) > 0 {
		cpy.CodeHash = aurum.Keccak256(code).Bytes()
		s.sm.Put(codeKey(addr), append([]byte(nil), code...))
	} else {
		cpy.CodeHash = nil
		s.sm.Put(codeKey(addr), []byte(nil))
	}
	s.sm.Put(addr, &cpy)
	return nil
}

// Exists returns whether an account exists at the given address.
func (s *State) Exists(addr aurum.Address) (bool, error) {
	acc, err := s.getAccount(addr)
	if err != nil {
		return false, &Error{err}
	}
	return !acc.IsEmpty(), nil
}

// GetStorage returns storage value for the given address and key.
func (s *State) GetStorage(addr aurum.Address, key aurum.Bytes32) (aurum.Bytes32, error) {
	v, _, err := s.sm.Get(storageKey{addr, key})
	if err != nil {
		return aurum.Bytes32{}, &Error{err}
	}
	raw := v.(rlp.RawValue)
	if len(raw) == 0 {
		return aurum.Bytes32{}, nil
	}
	var content []byte
	if err := rlp.DecodeBytes(raw, &content); err != nil {
		return aurum.Bytes32{}, &Error{err}
	}
	return aurum.BytesToBytes32(content), nil
}

// SetStorage set storage value for the given address and key.
// Leading zero bytes are trimmed; zero value deletes the slot.
func (s *State) SetStorage(addr aurum.Address, key, value aurum.Bytes32) {
	if value.IsZero() {
		s.sm.Put(storageKey{addr, key}, rlp.RawValue(nil))
		return
	}
	v, _ := rlp.EncodeToBytes(bytes.TrimLeft(value[:], "\x00"))
	s.sm.Put(storageKey{addr, key}, rlp.RawValue(v))
}

// NewCheckpoint makes a checkpoint of current state.
// It returns revision of the checkpoint.
func (s *State) NewCheckpoint() int {
	return s.sm.Push()
}

// RevertTo revert to checkpoint specified by revision.
func (s *State) RevertTo(revision int) {
	s.sm.PopTo(revision)
}

// Changes returns all pending writes as kv changes sorted by key.
func (s *State) Changes() ([]kv.Change, error) {
	latest := make(map[string][]byte)
	var err error
	s.sm.Journal(func(k, v any) bool {
		switch key := k.(type) {
		case aurum.Address:
			acc := v.(*Account)
			if acc.IsEmpty() {
				latest[string(AccountKey(key))] = nil
				return true
			}
			var data []byte
			if data, err = rlp.EncodeToBytes(acc); err != nil {
				return false
			}
			latest[string(AccountKey(key))] = data
		case codeKey:
			latest[string(CodeKey(aurum.Address(key)))] = nilIfEmpty(v.([]byte))
		case storageKey:
			latest[string(StorageKey(key.addr, key.key))] = nilIfEmpty(v.(rlp.RawValue))
		}
		return true
	})
	if err != nil {
		return nil, &Error{err}
	}

	changes := make([]kv.Change, 0, len(latest))
	for k, v := range latest {
		changes = append(changes, kv.Change{Key: []byte(k), Value: v})
	}
	sort.Slice(changes, func(i, j int) bool {
		return bytes.Compare(changes[i].Key, changes[j].Key) < 0
	})
	return changes, nil
}

func nilIfEmpty(b []byte) []byte {
	if len(b) == 0 {
		return nil
	}
	return b
}

// AccountKey returns the store key of an account.
func AccountKey(addr aurum.Address) []byte {
	return append([]byte{accountPrefix}, addr[:]...)
}

// CodeKey returns the store key of contract code.
func CodeKey(addr aurum.Address) []byte {
	return append([]byte{codePrefix}, addr[:]...)
}

// StorageKey returns the store key of a storage slot.
func StorageKey(addr aurum.Address, key aurum.Bytes32) []byte {
	k := make([]byte, 0, 1+len(addr)+len(key))
	k = append(k, storagePrefix)
	k = append(k, addr[:]...)
	return append(k, key[:]...)
}
