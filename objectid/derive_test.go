// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package objectid_test

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"

	"github.com/luxfi/balance-scheduler/objectid"
)

func TestDeriveIsDeterministic(t *testing.T) {
	parent := common.HexToAddress("0x2")
	key := []byte("foo")

	id1 := objectid.Derive(parent, "vector<u8>", key)
	id2 := objectid.Derive(parent, "vector<u8>", key)
	assert.Equal(t, id1, id2)
}

func TestDeriveDependsOnEveryInput(t *testing.T) {
	parent := common.HexToAddress("0x2")
	base := objectid.Derive(parent, "ns", []byte("foo"))

	assert.NotEqual(t, base, objectid.Derive(common.HexToAddress("0x3"), "ns", []byte("foo")))
	assert.NotEqual(t, base, objectid.Derive(parent, "other-ns", []byte("foo")))
	assert.NotEqual(t, base, objectid.Derive(parent, "ns", []byte("bar")))
}

func TestDeriveKeyLengthIsNotAmbiguous(t *testing.T) {
	// Without length-prefixing, ("foo", "bar") and ("foob", "ar") over a
	// naive concatenation could collide. The length prefix must prevent it.
	parent := common.HexToAddress("0x2")

	a := objectid.Derive(parent, "bar", []byte("foo"))
	b := objectid.Derive(parent, "ar", []byte("foob"))
	assert.NotEqual(t, a, b)
}
