// Package token issues and verifies the signed session tokens carried by the
// gatekeeper session cookie.
//
// Tokens are HS256 JWTs. The claim set binds the user identity (id, email,
// name, role) together with the per-session CSRF secret, so a single verify
// call recovers everything the request pipeline needs.
//
// # Verification contract
//
// Verify never fails a request on a bad token: a missing, malformed, expired,
// or tamper-signed token yields (nil, nil) and the caller treats the request
// as anonymous. Errors are reserved for conditions the deployment must fix,
// and those are all caught by NewManager at construction time.
//
// # What this package must NOT do
//
//   - Read cookies or headers; callers hand it the raw compact string.
//   - Consult Redis or any user store.
//
// Docs: docs/session-tokens.md
package token
