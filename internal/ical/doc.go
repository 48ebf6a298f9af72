// Package ical implements the RFC 5545 subset used to exchange events with
// generic calendar feeds: a serializer for publishing household events as a
// VCALENDAR document, a permissive whole-document parser for imported
// feeds, and an HTTP fetcher for subscription URLs.
//
// The parser deliberately skips malformed VEVENT blocks instead of failing
// the document; external feeds are not under our control.
package ical
