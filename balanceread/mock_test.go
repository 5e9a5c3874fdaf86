// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package balanceread_test

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luxfi/balance-scheduler/balanceread"
	"github.com/luxfi/balance-scheduler/withdraw"
)

func TestGetAccountBalanceUnseenAccountIsZero(t *testing.T) {
	m := balanceread.NewMockBalanceRead(0, nil)
	balance := m.GetAccountBalance(common.HexToAddress("0x1"), 0)
	assert.True(t, balance.IsZero())
}

func TestGetAccountBalanceSeenAccount(t *testing.T) {
	account := common.HexToAddress("0x1")
	m := balanceread.NewMockBalanceRead(0, map[withdraw.AccountID]*uint256.Int{account: uint256.NewInt(100)})
	assert.Equal(t, uint256.NewInt(100), m.GetAccountBalance(account, 0))
}

func TestApplyNetChangesAdvancesVersionAndAppliesDeltas(t *testing.T) {
	account := common.HexToAddress("0x1")
	m := balanceread.NewMockBalanceRead(0, map[withdraw.AccountID]*uint256.Int{account: uint256.NewInt(100)})

	m.ApplyNetChanges(map[withdraw.AccountID]*big.Int{account: big.NewInt(-40)})

	assert.Equal(t, withdraw.Version(1), m.Version())
	assert.Equal(t, uint256.NewInt(60), m.GetAccountBalance(account, 1))
}

func TestApplyNetChangesPanicsOnNegativeBalance(t *testing.T) {
	account := common.HexToAddress("0x1")
	m := balanceread.NewMockBalanceRead(0, map[withdraw.AccountID]*uint256.Int{account: uint256.NewInt(10)})

	assert.Panics(t, func() {
		m.ApplyNetChanges(map[withdraw.AccountID]*big.Int{account: big.NewInt(-20)})
	})
}

func TestGetAccountBalanceReturnsACopy(t *testing.T) {
	account := common.HexToAddress("0x1")
	m := balanceread.NewMockBalanceRead(0, map[withdraw.AccountID]*uint256.Int{account: uint256.NewInt(100)})

	balance := m.GetAccountBalance(account, 0)
	balance.AddUint64(balance, 1)

	require.Equal(t, uint256.NewInt(100), m.GetAccountBalance(account, 0))
}
