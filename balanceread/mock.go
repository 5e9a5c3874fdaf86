// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package balanceread

import (
	"math/big"
	"sync"

	"github.com/holiman/uint256"

	"github.com/luxfi/balance-scheduler/withdraw"
)

// MockBalanceRead is a test double for AccountBalanceRead. It is driven in
// lockstep with a scheduler's settlement feed by the test harness: whenever
// the harness settles a version on the scheduler, it must also call
// ApplyNetChanges on this mock with the same deltas, so that the next
// account the scheduler starts tracking reads an up-to-date balance.
type MockBalanceRead struct {
	mu       sync.Mutex
	version  withdraw.Version
	balances map[withdraw.AccountID]*uint256.Int
}

// NewMockBalanceRead creates a mock seeded with the given initial balances
// as of initVersion.
func NewMockBalanceRead(initVersion withdraw.Version, initBalances map[withdraw.AccountID]*uint256.Int) *MockBalanceRead {
	balances := make(map[withdraw.AccountID]*uint256.Int, len(initBalances))
	for account, balance := range initBalances {
		balances[account] = new(uint256.Int).Set(balance)
	}
	return &MockBalanceRead{
		version:  initVersion,
		balances: balances,
	}
}

// GetAccountBalance implements AccountBalanceRead. An account never seen
// before reads as zero.
func (m *MockBalanceRead) GetAccountBalance(account withdraw.AccountID, _ withdraw.Version) *uint256.Int {
	m.mu.Lock()
	defer m.mu.Unlock()

	balance, ok := m.balances[account]
	if !ok {
		return uint256.NewInt(0)
	}
	return new(uint256.Int).Set(balance)
}

// ApplyNetChanges advances the mock's notion of the settled version by one
// and applies the given signed net balance changes, mirroring the same
// settlement the test harness is about to (or has just) applied to the
// scheduler under test. A change that would drive an account's balance
// negative is a test-harness bug and panics, matching the scheduler's own
// non-negativity invariant on settlement.
func (m *MockBalanceRead) ApplyNetChanges(changes map[withdraw.AccountID]*big.Int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.version = m.version.Next()
	for account, change := range changes {
		current, ok := m.balances[account]
		if !ok {
			current = uint256.NewInt(0)
		}
		next := new(big.Int).Add(current.ToBig(), change)
		if next.Sign() < 0 {
			panic("balanceread: settlement change would drive balance negative")
		}
		m.balances[account] = uint256.MustFromBig(next)
	}
}

// Version returns the mock's current notion of the last-settled version.
func (m *MockBalanceRead) Version() withdraw.Version {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.version
}
