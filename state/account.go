// Copyright (c) 2025 The Aurum developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

// Account is the contract account model.
type Account struct {
	Balance  uint64
	CodeHash []byte // nil for non-contract
}

// IsEmpty returns if an account is empty.
func (a *Account) IsEmpty() bool {
	return a.Balance == 0 && len(a.CodeHash) == 0
}

func emptyAccount() *Account {
	return &Account{}
}
