// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package scheduler implements the eager balance-withdraw scheduler: an
// admission-control component that decides, for each incoming transaction,
// whether it may reserve the funds it needs from one or more per-account
// balances, given an externally-advancing accumulator version that is the
// unit of settlement.
package scheduler

import (
	"context"
	"sync"

	"github.com/luxfi/balance-scheduler/balanceread"
	"github.com/luxfi/balance-scheduler/log"
	"github.com/luxfi/balance-scheduler/withdraw"
)

// BalanceWithdrawScheduler is the scheduler's public surface. Both methods
// are serialized by a single internal mutex; see EagerScheduler.
type BalanceWithdrawScheduler interface {
	// ScheduleWithdraws admits a batch of withdraws tagged with version.
	// The i-th returned channel corresponds to the i-th item and receives
	// exactly one ScheduleResult before being closed.
	ScheduleWithdraws(ctx context.Context, version withdraw.Version, items []withdraw.TxBalanceWithdraw) []<-chan withdraw.ScheduleResult

	// SettleBalances advances the last-settled version by exactly one and
	// applies the given signed net balance deltas.
	SettleBalances(ctx context.Context, settlement withdraw.BalanceSettlement)
}

// EagerScheduler is the only BalanceWithdrawScheduler implementation: it
// reserves optimistically, as soon as a withdraw's turn in its accounts'
// FIFO queues arrives and the guaranteed balance covers it, rather than
// waiting for settlement to confirm every withdraw at once.
type EagerScheduler struct {
	mu    sync.Mutex
	inner *innerState
}

var _ BalanceWithdrawScheduler = (*EagerScheduler)(nil)

// NewEagerScheduler creates a scheduler that starts accepting withdraws at
// startingVersion, reading initial balances through balanceRead.
func NewEagerScheduler(balanceRead balanceread.AccountBalanceRead, startingVersion withdraw.Version) *EagerScheduler {
	return &EagerScheduler{
		inner: newInnerState(balanceRead, startingVersion),
	}
}

// ScheduleWithdraws implements BalanceWithdrawScheduler.
func (s *EagerScheduler) ScheduleWithdraws(_ context.Context, version withdraw.Version, items []withdraw.TxBalanceWithdraw) []<-chan withdraw.ScheduleResult {
	receivers := make([]<-chan withdraw.ScheduleResult, len(items))

	s.mu.Lock()
	defer s.mu.Unlock()

	lastSettledVersion := s.inner.lastSettledVersion

	if version < lastSettledVersion {
		log.Debug("accumulator version already settled", "version", version, "lastSettledVersion", lastSettledVersion)
		for i, item := range items {
			ch := make(chan withdraw.ScheduleResult, 1)
			ch <- withdraw.ScheduleResult{TxDigest: item.TxDigest, Status: withdraw.AlreadyExecuted}
			close(ch)
			receivers[i] = ch
		}
		return receivers
	}

	touched := newAccountSet()

	for i, item := range items {
		ch := make(chan withdraw.ScheduleResult, 1)
		receivers[i] = ch

		accounts := withdraw.SortedAccounts(item.Reservations)
		w := newPendingWithdraw(version, item, ch)

		set, ok := s.inner.pendingSettlements[version]
		if !ok {
			set = newAccountSet()
			s.inner.pendingSettlements[version] = set
		}
		set.addAll(accounts)
		touched.addAll(accounts)

		for _, account := range accounts {
			state := s.inner.accountStateFor(account)
			committed := state.tryReserve(w)
			log.Debug("reserving for account", "txDigest", item.TxDigest, "account", account, "committed", committed)
		}
	}

	// Re-probe every account this batch touched, at the still-current
	// lastSettledVersion: a later arrival in the same batch may have just
	// rejected or unblocked an earlier sibling's queue head, and an account
	// newly tracked by this batch still needs its queue examined even
	// though nothing has settled yet.
	for _, account := range touched.sorted() {
		s.inner.tracked[account].drainPending(lastSettledVersion)
	}
	return receivers
}

// SettleBalances implements BalanceWithdrawScheduler.
func (s *EagerScheduler) SettleBalances(_ context.Context, settlement withdraw.BalanceSettlement) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.inner.lastSettledVersion = s.inner.lastSettledVersion.Next()
	s.inner.processSettlement(settlement.BalanceChanges)
}
