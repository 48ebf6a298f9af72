// Package model defines the provider-agnostic data model shared by the
// calendar synchronization engine: linked-calendar configurations, external
// event values, sync pass results and the error taxonomy.
package model
