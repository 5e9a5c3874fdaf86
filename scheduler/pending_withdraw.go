// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package scheduler

import (
	"sync"

	"github.com/holiman/uint256"

	"github.com/luxfi/balance-scheduler/withdraw"
)

// pendingWithdraw is the scheduler's internal view of a single
// TxBalanceWithdraw, shared by pointer among the account queues it sits in: immutable after construction except for two
// mutation points, each behind its own lock so that delivering a result
// never blocks on — or is blocked by — the accounts it still needs to
// reserve from.
//
//   - pendingMu guards the still-unreserved account map; it shrinks as
//     accountState.commitReservation consumes entries.
//   - resultMu guards the one-shot result channel; takeResult exchanges it
//     for nothing exactly once, so two accounts that reject the same
//     withdraw in the same drain never both try to send.
type pendingWithdraw struct {
	version  withdraw.Version
	txDigest withdraw.TxDigest

	pendingMu sync.Mutex
	pending   withdraw.Reservations

	resultMu sync.Mutex
	result   chan<- withdraw.ScheduleResult
}

func newPendingWithdraw(version withdraw.Version, w withdraw.TxBalanceWithdraw, result chan<- withdraw.ScheduleResult) *pendingWithdraw {
	// Copy the caller's map: commitAccount deletes from pending, and the
	// caller's TxBalanceWithdraw must stay unchanged.
	pending := make(withdraw.Reservations, len(w.Reservations))
	for account, amount := range w.Reservations {
		pending[account] = amount
	}
	return &pendingWithdraw{
		version:  version,
		txDigest: w.TxDigest,
		pending:  pending,
		result:   result,
	}
}

// pendingAmount returns the amount still to reserve from account. The
// account must have an entry in the pending map; it is a scheduler bug to
// probe an account a withdraw never named.
func (w *pendingWithdraw) pendingAmount(account withdraw.AccountID) *uint256.Int {
	w.pendingMu.Lock()
	defer w.pendingMu.Unlock()

	amount, ok := w.pending[account]
	if !ok {
		panic("scheduler: pendingAmount probed for an account this withdraw does not reference")
	}
	return amount
}

// commitAccount removes and returns the amount pending for account, and
// reports whether the pending map is now empty, i.e. the withdraw is fully
// reserved.
func (w *pendingWithdraw) commitAccount(account withdraw.AccountID) (amount *uint256.Int, fullyReserved bool) {
	w.pendingMu.Lock()
	defer w.pendingMu.Unlock()

	amount, ok := w.pending[account]
	if !ok {
		panic("scheduler: commitAccount called for an account this withdraw does not reference")
	}
	delete(w.pending, account)
	return amount, len(w.pending) == 0
}

// takeResult exchanges the result sender for nothing, atomically. It
// returns nil if the sender was already taken by a previous commit or
// rejection.
func (w *pendingWithdraw) takeResult() chan<- withdraw.ScheduleResult {
	w.resultMu.Lock()
	defer w.resultMu.Unlock()

	result := w.result
	w.result = nil
	return result
}

// deliver sends status on the withdraw's result channel if it has not
// already been delivered, then closes the channel. Sending never blocks:
// the channel is always created with capacity 1 and written to at most
// once.
func (w *pendingWithdraw) deliver(status withdraw.ScheduleStatus) {
	result := w.takeResult()
	if result == nil {
		return
	}
	result <- withdraw.ScheduleResult{TxDigest: w.txDigest, Status: status}
	close(result)
}
