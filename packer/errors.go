// Copyright (c) 2025 The Aurum developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package packer

import "errors"

var (
	errNoKernel     = errors.New("no kernel found")
	errKnownTx      = errors.New("known tx")
	errParentChange = errors.New("best block changed")
)

// IsNoKernel no coin met the target in the searched time range.
func IsNoKernel(err error) bool {
	return errors.Is(err, errNoKernel)
}

// IsBadTx not a valid tx.
func IsBadTx(err error) bool {
	return errors.As(err, &badTxError{})
}

type badTxError struct {
	msg string
}

func (e badTxError) Error() string {
	return "bad tx: " + e.msg
}
