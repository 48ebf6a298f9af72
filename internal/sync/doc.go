// Package sync drives one synchronization pass between the household
// event store and one linked external calendar, and exposes the engine
// facade the rest of the application calls.
//
// A pass walks a fixed sequence of states: token check, import, export,
// then merge/persist. Per-item failures are accumulated and never abort
// the pass; only a failed token check (or a failure to load the
// configuration) does. The engine schedules nothing itself — a failed
// pass is re-run by the caller, and passes for the same configuration id
// must be serialized by the caller.
package sync
