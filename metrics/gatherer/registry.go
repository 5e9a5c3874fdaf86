// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package gatherer

import "github.com/luxfi/geth/metrics"

// Registry is the subset of metrics.Registry a Gatherer needs to walk every
// metric that has been registered into it.
type Registry interface {
	// Each calls the given function for every registered metric.
	Each(func(string, any))
	// Get returns the metric registered under name, or nil if none is.
	Get(string) any
}

var _ Registry = (*metrics.StandardRegistry)(nil)
