// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package objectid derives deterministic child object addresses from a
// parent account and a namespaced key, the same shape derived_object.move
// uses on-chain to mint IDs for dynamically-created child objects. It is a
// flat, hash-only utility with no dependency on scheduler state: it does not
// produce byte-identical output to the Move-level original, since the
// original's key type tag is BCS-encoded Move type metadata that has no Go
// equivalent here; namespace is instead an opaque caller-supplied string.
package objectid

import (
	"crypto/sha256"
	"encoding/binary"

	"github.com/ethereum/go-ethereum/common"

	"github.com/luxfi/balance-scheduler/withdraw"
)

// Derive computes a child object address from parent, namespace (standing in
// for the original's Move key type tag) and key (the raw, already-encoded
// key bytes): the full 32-byte sha256(parent || len(key) as little-endian
// uint64 || key || namespace), returned untruncated as a common.Hash.
func Derive(parent withdraw.AccountID, namespace string, key []byte) common.Hash {
	h := sha256.New()
	h.Write(parent[:])

	var lenBuf [8]byte
	binary.LittleEndian.PutUint64(lenBuf[:], uint64(len(key)))
	h.Write(lenBuf[:])

	h.Write(key)
	h.Write([]byte(namespace))

	var id common.Hash
	copy(id[:], h.Sum(nil))
	return id
}
