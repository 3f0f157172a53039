// Package crypto provides the cryptographic primitives for clavis sessions.
//
// Design goals:
//   - Forward secrecy via ephemeral X25519 key exchange
//   - AEAD encryption via ChaCha20-Poly1305 (RFC 8439)
//   - Key derivation via HKDF-SHA256, bound to the handshake transcript
//     and an optional pre-shared key
//   - Key material zeroised as soon as it is no longer needed
package crypto
