// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package withdraw defines the wire-level data model shared by the balance
// withdraw scheduler: account and transaction identifiers, the accumulator
// version axis, and the reservation/result shapes the scheduler accepts and
// produces.
package withdraw

import (
	"math/big"
	"sort"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// AccountID identifies a balance account. It is a fixed-width, totally
// ordered identifier, matching the address type the rest of the pack uses
// to key per-account state.
type AccountID = common.Address

// TxDigest identifies a single transaction, echoed back verbatim in its
// ScheduleResult.
type TxDigest = common.Hash

// Version is a monotonically increasing accumulator version. Every withdraw
// is submitted under a version and every settlement closes exactly one.
type Version uint64

// Next returns the version that immediately follows v.
func (v Version) Next() Version {
	return v + 1
}

// Prev returns the version that immediately precedes v, saturating at 0:
// there is no version before the first one. The scheduler only calls Prev
// after a settlement has advanced the last-settled version, so it never
// reaches the saturating case itself.
func (v Version) Prev() Version {
	if v == 0 {
		return 0
	}
	return v - 1
}

// Reservations maps an account to the amount a single withdraw wants to
// reserve from it. Iteration over a Go map has no defined order, so callers
// that need the deterministic, account-id-ordered traversal spec.md
// requires must use SortedAccounts.
type Reservations map[AccountID]*uint256.Int

// SortedAccounts returns the accounts touched by r in ascending byte order,
// giving deterministic, reproducible probing order across concurrent runs.
func SortedAccounts(r Reservations) []AccountID {
	accounts := make([]AccountID, 0, len(r))
	for account := range r {
		accounts = append(accounts, account)
	}
	sort.Slice(accounts, func(i, j int) bool {
		return lessAccount(accounts[i], accounts[j])
	})
	return accounts
}

func lessAccount(a, b AccountID) bool {
	for i := range a {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}

// TxBalanceWithdraw is a single transaction's reservation request: which
// accounts it needs funds from, and how much from each.
type TxBalanceWithdraw struct {
	TxDigest     TxDigest
	Reservations Reservations
}

// ScheduleStatus is the verdict delivered exactly once for every pending
// withdraw.
type ScheduleStatus int

const (
	// SufficientBalance means the reservation committed on every account
	// the withdraw touches.
	SufficientBalance ScheduleStatus = iota
	// InsufficientBalance means the withdraw's version settled while at
	// least one of its accounts still could not serve it.
	InsufficientBalance
	// AlreadyExecuted means the withdraw arrived tagged with a version at
	// or below the already-settled one, and was rejected without ever
	// entering scheduler state.
	AlreadyExecuted
)

// String implements fmt.Stringer.
func (s ScheduleStatus) String() string {
	switch s {
	case SufficientBalance:
		return "SufficientBalance"
	case InsufficientBalance:
		return "InsufficientBalance"
	case AlreadyExecuted:
		return "AlreadyExecuted"
	default:
		return "Unknown"
	}
}

// ScheduleResult is delivered on a withdraw's one-shot result channel.
type ScheduleResult struct {
	TxDigest TxDigest
	Status   ScheduleStatus
}

// BalanceSettlement carries the net signed balance deltas for every account
// touched while a version was open. Positive values are deposits, negative
// values are withdrawals; the sum of reservations and deltas for any
// account must never go negative — a violation is a caller bug the
// scheduler treats as an invariant break (see accountState.releaseVersion in
// package scheduler).
type BalanceSettlement struct {
	BalanceChanges map[AccountID]*big.Int
}
