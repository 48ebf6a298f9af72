// Package google manages the OAuth2 token lifecycle for providers reached
// through Google's REST APIs: building user authorization URLs, exchanging
// authorization codes for the initial token pair, and rotating expired
// access tokens with the stored refresh token.
//
// Tokens live on the linked-calendar configuration record, not on disk.
// Refresh mutates the record in place and leaves persistence to the
// caller, which must store the rotated pair before first use.
package google
