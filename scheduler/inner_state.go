// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package scheduler

import (
	"math/big"

	"github.com/luxfi/balance-scheduler/balanceread"
	"github.com/luxfi/balance-scheduler/log"
	"github.com/luxfi/balance-scheduler/withdraw"
)

// innerState is the scheduler's global, mutex-guarded bookkeeping: every
// account currently tracked, the index from version to the accounts that
// have at least one withdraw scheduled against that version, and the last
// version this scheduler has settled.
type innerState struct {
	balanceRead balanceread.AccountBalanceRead

	tracked            map[withdraw.AccountID]*accountState
	pendingSettlements map[withdraw.Version]accountSet
	lastSettledVersion withdraw.Version
}

func newInnerState(balanceRead balanceread.AccountBalanceRead, startingVersion withdraw.Version) *innerState {
	return &innerState{
		balanceRead:        balanceRead,
		tracked:            make(map[withdraw.AccountID]*accountState),
		pendingSettlements: make(map[withdraw.Version]accountSet),
		lastSettledVersion: startingVersion,
	}
}

func (s *innerState) accountStateFor(account withdraw.AccountID) *accountState {
	state, ok := s.tracked[account]
	if !ok {
		state = newAccountState(s.balanceRead, account, s.lastSettledVersion)
		s.tracked[account] = state
		trackedAccountsGauge.Update(int64(len(s.tracked)))
	}
	return state
}

// processSettlement runs at the tail of every settle call. It retires the
// version that just became final — last_settled_version - 1 —
// folding each touched account's reservation for that version back into
// its guaranteed balance together with the settlement's signed delta, then
// re-drains that account's pending queue. The cleanup version is
// deliberately one behind last_settled_version, not equal to it: spec.md
// requires mirroring this offset exactly, since a withdraw scheduled under
// version V only becomes final once V itself retires, which happens when
// last_settled_version advances past V.
func (s *innerState) processSettlement(deltas map[withdraw.AccountID]*big.Int) {
	cleanupVersion := s.lastSettledVersion.Prev()

	touched := s.pendingSettlements[cleanupVersion]
	delete(s.pendingSettlements, cleanupVersion)
	if touched == nil {
		touched = newAccountSet()
	}
	for account := range deltas {
		touched.add(account)
	}

	for _, account := range touched.sorted() {
		state, ok := s.tracked[account]
		if !ok {
			if _, inDeltas := deltas[account]; !inDeltas {
				panic("scheduler: untracked account touched by settlement sweep without a matching delta")
			}
			continue
		}

		delta, ok := deltas[account]
		if !ok {
			delta = big.NewInt(0)
		}
		state.releaseVersion(cleanupVersion, delta)
		state.drainPending(s.lastSettledVersion)

		if state.isEmpty() {
			delete(s.tracked, account)
			trackedAccountsGauge.Update(int64(len(s.tracked)))
			log.Debug("dropping empty account state", "account", account)
		}
	}
}
