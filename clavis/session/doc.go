// Package session establishes encrypted packet sessions over a reliable
// byte stream.
//
// Handshake runs an ephemeral X25519 exchange, optionally bound to a
// pre-shared key, and derives one key per direction. The resulting
// Session splits into a Reader and a Writer so one receiving task and
// one sending task can run concurrently; each half owns its direction's
// key and nonce counter outright and no state is shared between them.
package session
