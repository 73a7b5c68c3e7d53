// Package password hashes and verifies user credentials with argon2id.
//
// Hashes are stored in PHC string format
// ($argon2id$v=19$m=...,t=...,p=...$salt$hash, unpadded base64) so parameters
// travel with the hash and old records keep verifying after a cost bump.
// NeedsRehash reports when a stored hash was produced with weaker parameters
// than the current configuration; the engine rehashes on the next successful
// login.
//
// # What this package must NOT do
//
//   - Touch the user store; callers persist rehashed values themselves.
package password
