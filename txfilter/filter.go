// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package txfilter builds SQL predicates for an indexer's read path that
// narrows transactions to a checkpoint range, mirroring the GraphQL
// transaction filter of the system this scheduler is part of. It has no
// dependency on scheduler state and uses only database/sql: no SQL-builder
// or ORM dependency appears anywhere in the retrieved example pack, so it is
// built directly on the standard library.
package txfilter

import (
	"database/sql"
	"fmt"
)

// Filter narrows transactions by checkpoint. A nil field means unbounded in
// that direction. The zero value matches every transaction.
type Filter struct {
	AfterCheckpoint  *uint64
	AtCheckpoint     *uint64
	BeforeCheckpoint *uint64
}

// Intersect returns the filter whose matches are exactly the intersection
// of f's and other's, or false if the two filters set different
// AtCheckpoint values. Other empty intersections (for example an
// AfterCheckpoint at or above a BeforeCheckpoint) are not detected: they
// are returned as a filter with true.
func (f Filter) Intersect(other Filter) (Filter, bool) {
	after, ok := intersectByMax(f.AfterCheckpoint, other.AfterCheckpoint)
	if !ok {
		return Filter{}, false
	}
	at, ok := intersectByEq(f.AtCheckpoint, other.AtCheckpoint)
	if !ok {
		return Filter{}, false
	}
	before, ok := intersectByMin(f.BeforeCheckpoint, other.BeforeCheckpoint)
	if !ok {
		return Filter{}, false
	}
	return Filter{AfterCheckpoint: after, AtCheckpoint: at, BeforeCheckpoint: before}, true
}

func intersectByMax(a, b *uint64) (*uint64, bool) {
	switch {
	case a == nil:
		return b, true
	case b == nil:
		return a, true
	case *a >= *b:
		return a, true
	default:
		return b, true
	}
}

func intersectByMin(a, b *uint64) (*uint64, bool) {
	switch {
	case a == nil:
		return b, true
	case b == nil:
		return a, true
	case *a <= *b:
		return a, true
	default:
		return b, true
	}
}

func intersectByEq(a, b *uint64) (*uint64, bool) {
	switch {
	case a == nil:
		return b, true
	case b == nil:
		return a, true
	case *a == *b:
		return a, true
	default:
		return nil, false
	}
}

// Where renders f as a SQL WHERE fragment (without the leading "WHERE")
// referencing tableAlias.cp_sequence_number, and the positional arguments
// for it. An empty filter renders "TRUE" and no arguments.
func (f Filter) Where(tableAlias string) (string, []any) {
	column := fmt.Sprintf("%s.cp_sequence_number", tableAlias)

	var clauses []string
	var args []any

	if f.AfterCheckpoint != nil {
		clauses = append(clauses, fmt.Sprintf("%s > ?", column))
		args = append(args, asNullInt64(*f.AfterCheckpoint))
	}
	if f.AtCheckpoint != nil {
		clauses = append(clauses, fmt.Sprintf("%s = ?", column))
		args = append(args, asNullInt64(*f.AtCheckpoint))
	}
	if f.BeforeCheckpoint != nil {
		clauses = append(clauses, fmt.Sprintf("%s < ?", column))
		args = append(args, asNullInt64(*f.BeforeCheckpoint))
	}

	if len(clauses) == 0 {
		return "TRUE", nil
	}

	where := clauses[0]
	for _, clause := range clauses[1:] {
		where += " AND " + clause
	}
	return where, args
}

func asNullInt64(v uint64) sql.NullInt64 {
	return sql.NullInt64{Int64: int64(v), Valid: true}
}
