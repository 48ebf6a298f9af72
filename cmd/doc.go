// Package cmd implements the command-line interface for calsync.
//
// This package provides the following commands:
//   - sync: Run one synchronization pass for a linked calendar
//   - calendars: Link, list and unlink external calendars
//   - auth: Obtain and exchange Google OAuth authorization codes
//   - export: Render a time window of the household planning as iCal
//   - version: Display version information
package cmd
