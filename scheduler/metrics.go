// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package scheduler

import (
	"fmt"

	"github.com/luxfi/geth/metrics"

	"github.com/luxfi/balance-scheduler/metrics/gatherer"
)

// reservationsGaugeName is the prefix of the per-account currently-reserved
// balance gauge. One gauge per tracked account reports the sum, across every
// version still open, of the amount already committed away from that
// account's guaranteed balance, so operators can sanity-check that no
// account is holding an implausible share of total reservations.
const reservationsGaugeName = "balance_scheduler/reserved"

func reservedGauge(account fmt.Stringer) metrics.Gauge {
	if !metrics.Enabled {
		return metrics.NilGauge{}
	}
	name := fmt.Sprintf("%s/%s", reservationsGaugeName, account.String())
	return metrics.GetOrRegisterGauge(name, nil)
}

// trackedAccountsGauge reports the number of accounts the scheduler
// currently has state for, i.e. len(innerState.tracked).
var trackedAccountsGauge = metrics.NewRegisteredGauge("balance_scheduler/tracked_accounts", nil)

// MetricsGatherer exposes every metric this package registers into the
// default geth metrics registry (the tracked-account count and each
// account's reservation gauge) as a metric.Gatherer, so an embedding
// process can fold the scheduler's own metrics into its scrape endpoint
// alongside its other subsystems.
func MetricsGatherer() *gatherer.Gatherer {
	return gatherer.NewGatherer(metrics.DefaultRegistry)
}
