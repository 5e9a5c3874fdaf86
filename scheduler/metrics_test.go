// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package scheduler_test

import (
	"context"
	"testing"

	"github.com/holiman/uint256"
	"github.com/luxfi/geth/metrics"
	"github.com/stretchr/testify/require"

	"github.com/luxfi/balance-scheduler/scheduler"
	"github.com/luxfi/balance-scheduler/withdraw"
)

// TestMetricsGathererReportsReservedAndTrackedAccounts drives a real
// reservation through a scheduler and asserts the scheduler's own gauges
// come back out through MetricsGatherer, the same path an embedding
// process's scrape endpoint would read.
func TestMetricsGathererReportsReservedAndTrackedAccounts(t *testing.T) {
	prevEnabled := metrics.Enabled
	metrics.Enabled = true
	t.Cleanup(func() { metrics.Enabled = prevEnabled })

	account := randomAccount(t)
	h := newTestHarness(t, 0, map[withdraw.AccountID]*uint256.Int{account: u256(100)})

	w := withdraw.TxBalanceWithdraw{TxDigest: randomDigest(t), Reservations: withdraw.Reservations{account: u256(60)}}
	receivers := h.scheduler.ScheduleWithdraws(context.Background(), 0, []withdraw.TxBalanceWithdraw{w})
	waitForResults(t, receivers, map[withdraw.TxDigest]withdraw.ScheduleStatus{w.TxDigest: withdraw.SufficientBalance})

	mfs, err := scheduler.MetricsGatherer().Gather()
	require.NoError(t, err)

	wantReservedName := "balance_scheduler_reserved_" + account.String()
	var foundReserved, foundTracked bool
	for _, mf := range mfs {
		switch mf.Name {
		case wantReservedName:
			foundReserved = true
			require.Len(t, mf.Metrics, 1)
			require.Equal(t, float64(60), mf.Metrics[0].Value.Value, "reserved gauge must report the committed amount, not the remaining guaranteed balance")
		case "balance_scheduler_tracked_accounts":
			foundTracked = true
			require.GreaterOrEqual(t, mf.Metrics[0].Value.Value, float64(1))
		}
	}
	require.True(t, foundReserved, "expected a reserved-balance gauge for the withdraw's account")
	require.True(t, foundTracked, "expected the tracked-accounts gauge")
}
