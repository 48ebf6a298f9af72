// Package store persists linked-calendar configurations and provides the
// local event repository contract the sync engine imports into and exports
// from. Two implementations exist for each: an in-memory one used by tests
// and single-process setups, and a postgres one (pgx) for the household
// app's database.
//
// Config saves are optimistic: a save whose Version no longer matches the
// stored row fails with ErrVersionConflict, so a pass cannot clobber a
// token pair rotated by a concurrent writer.
package store
