// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package balanceread defines the scheduler's single external read
// contract: the authoritative balance of an account as of a settled
// accumulator version.
package balanceread

import (
	"github.com/holiman/uint256"

	"github.com/luxfi/balance-scheduler/withdraw"
)

// AccountBalanceRead returns the authoritative balance of an account as of
// a settled version. Implementations must be callable from the scheduler's
// critical section: they must not take the scheduler's own lock and must
// not block indefinitely. An account that has never been seen reads as
// zero, never an error.
type AccountBalanceRead interface {
	GetAccountBalance(account withdraw.AccountID, version withdraw.Version) *uint256.Int
}
