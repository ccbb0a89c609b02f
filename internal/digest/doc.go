// Package digest computes content-addressed identities for configuration
// documents.
//
// Two digests are defined:
//
//   - Config hashes the resolved document (effective names and listen
//     addresses filled in), so two files that bind the same descriptors the
//     same way share a digest regardless of syntax, key order, or whether a
//     default was spelled out.
//   - Source hashes the raw file bytes.
//
// Both use SHA-256 with domain separation over a canonical JSON encoding
// (RFC 8785 key ordering, NFC-normalized strings, no floats, no null).
package digest
