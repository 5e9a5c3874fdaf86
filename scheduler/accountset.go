// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package scheduler

import (
	"sort"

	"github.com/luxfi/balance-scheduler/withdraw"
)

// accountSet is a set of account identifiers. It backs innerState's
// pending-settlements index (version -> accounts with a withdraw scheduled
// against that version), the same role a generic Set[T] plays elsewhere in
// the pack, specialized here to withdraw.AccountID and given the
// deterministic iteration order the scheduler's FIFO guarantees depend on.
type accountSet map[withdraw.AccountID]struct{}

func newAccountSet() accountSet {
	return make(accountSet)
}

func (s accountSet) add(account withdraw.AccountID) {
	s[account] = struct{}{}
}

func (s accountSet) addAll(accounts []withdraw.AccountID) {
	for _, account := range accounts {
		s.add(account)
	}
}

// sorted returns the set's members in ascending byte order, so that the
// settlement sweep and the schedule-time re-probe visit accounts in a
// reproducible order even though the underlying map has none.
func (s accountSet) sorted() []withdraw.AccountID {
	accounts := make([]withdraw.AccountID, 0, len(s))
	for account := range s {
		accounts = append(accounts, account)
	}
	sort.Slice(accounts, func(i, j int) bool {
		return lessAccount(accounts[i], accounts[j])
	})
	return accounts
}

func lessAccount(a, b withdraw.AccountID) bool {
	for i := range a {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}
