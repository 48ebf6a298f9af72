// Package provider turns provider-agnostic calendar operations into Google
// Calendar REST calls (calendar/v3). Exported events carry a correlation
// key in their private extended properties so a later pass can re-find and
// update them instead of duplicating; lookups use the server-side
// privateExtendedProperty filter.
//
// Lookup failures never abort a sync: FindByCorrelationKey returns nil on
// transport errors, which only disables dedup for that item.
package provider
