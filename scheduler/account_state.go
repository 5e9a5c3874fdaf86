// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package scheduler

import (
	"container/list"
	"math/big"

	"github.com/holiman/uint256"

	"github.com/luxfi/balance-scheduler/balanceread"
	"github.com/luxfi/balance-scheduler/log"
	"github.com/luxfi/balance-scheduler/withdraw"
)

// accountState is the per-account bookkeeping entry: the minimum
// guaranteed balance not already spoken for, the FIFO queue of withdraws
// that could not yet be admitted, and the per-version totals currently
// reserved so they can be returned to the guaranteed balance on
// settlement.
type accountState struct {
	account withdraw.AccountID

	minGuaranteedBalance *uint256.Int
	reservedPerVersion   map[withdraw.Version]*uint256.Int
	pendingQueue         *list.List // of *pendingWithdraw, FIFO

	gauge interface {
		Update(int64)
	}
}

func newAccountState(read balanceread.AccountBalanceRead, account withdraw.AccountID, lastSettledVersion withdraw.Version) *accountState {
	balance := read.GetAccountBalance(account, lastSettledVersion)
	return &accountState{
		account:              account,
		minGuaranteedBalance: new(uint256.Int).Set(balance),
		reservedPerVersion:   make(map[withdraw.Version]*uint256.Int),
		pendingQueue:         list.New(),
		gauge:                reservedGauge(account),
	}
}

// isEmpty reports whether this account has no live reservations and no
// queued pendings, i.e. it can be dropped from the tracked-accounts map.
func (a *accountState) isEmpty() bool {
	return len(a.reservedPerVersion) == 0 && a.pendingQueue.Len() == 0
}

// tryReserve admits w against this account if, and only if, the queue is
// empty and w's requested amount fits within the current guaranteed
// balance. Otherwise w is queued behind whatever is already waiting, which
// enforces strict FIFO per account: a later arrival may never leapfrog an
// earlier one on the same account.
func (a *accountState) tryReserve(w *pendingWithdraw) bool {
	toReserve := w.pendingAmount(a.account)
	if a.pendingQueue.Len() > 0 || toReserve.Cmp(a.minGuaranteedBalance) > 0 {
		a.pendingQueue.PushBack(w)
		return false
	}
	a.commitReservation(w)
	return true
}

// commitReservation reserves w's full requested amount from this account:
// it moves the amount out of w's pending map and the guaranteed balance,
// and into this account's per-version reserved total. If that empties w's
// pending map, w is fully reserved and SufficientBalance is delivered.
func (a *accountState) commitReservation(w *pendingWithdraw) {
	toReserve, fullyReserved := w.commitAccount(a.account)

	if toReserve.Cmp(a.minGuaranteedBalance) > 0 {
		panic("scheduler: commitReservation would drive min_guaranteed_balance negative")
	}
	a.minGuaranteedBalance = new(uint256.Int).Sub(a.minGuaranteedBalance, toReserve)

	reserved, ok := a.reservedPerVersion[w.version]
	if !ok {
		reserved = uint256.NewInt(0)
	}
	a.reservedPerVersion[w.version] = new(uint256.Int).Add(reserved, toReserve)
	a.updateGauge()

	if fullyReserved {
		log.Debug("withdraw fully reserved", "txDigest", w.txDigest, "account", a.account)
		w.deliver(withdraw.SufficientBalance)
	}
}

// releaseVersion retires the reservation this account was holding for
// version v, folding it back into the guaranteed balance together with the
// signed net delta settlement produced for v. The combined value is
// guaranteed non-negative by the scheduler's contract with its settlement
// feed; a violation is an implementation bug and panics rather than
// silently corrupting state.
func (a *accountState) releaseVersion(v withdraw.Version, signedDelta *big.Int) {
	reserved, ok := a.reservedPerVersion[v]
	if !ok {
		reserved = uint256.NewInt(0)
	}
	delete(a.reservedPerVersion, v)

	net := new(big.Int).Add(reserved.ToBig(), signedDelta)
	if net.Sign() < 0 {
		panic("scheduler: settlement released a negative net balance for account " + a.account.String())
	}
	a.minGuaranteedBalance = new(uint256.Int).Add(a.minGuaranteedBalance, uint256.MustFromBig(net))
	a.updateGauge()
}

// drainPending walks the FIFO queue from the head, admitting every
// withdraw whose requested amount now fits, rejecting the head once (and
// only once) its own version has settled and it still does not fit, and
// stopping as soon as a head's verdict cannot yet be determined.
func (a *accountState) drainPending(lastSettledVersion withdraw.Version) {
	for a.pendingQueue.Len() > 0 {
		front := a.pendingQueue.Front()
		w := front.Value.(*pendingWithdraw)

		pendingAmount := w.pendingAmount(a.account)
		switch {
		case pendingAmount.Cmp(a.minGuaranteedBalance) <= 0:
			a.pendingQueue.Remove(front)
			a.commitReservation(w)
		case w.version == lastSettledVersion:
			a.pendingQueue.Remove(front)
			log.Debug("insufficient balance for withdraw", "txDigest", w.txDigest, "account", a.account)
			w.deliver(withdraw.InsufficientBalance)
		default:
			return
		}
	}
}

// updateGauge reports the sum of this account's per-version reserved
// totals, the amount actually held away from the guaranteed balance and
// what reservationsGaugeName promises. Uint64 truncates a u128 sum for the
// gauge; acceptable for a metric, since no single account's reservations
// are expected to approach 2^64.
func (a *accountState) updateGauge() {
	reserved := uint256.NewInt(0)
	for _, v := range a.reservedPerVersion {
		reserved.Add(reserved, v)
	}
	a.gauge.Update(int64(reserved.Uint64()))
}
