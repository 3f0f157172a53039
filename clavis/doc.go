// Package clavis provides an encrypted, message-oriented transport layer
// over any reliable, ordered byte stream such as a TCP connection.
//
// Two endpoints run an ephemeral X25519 handshake, optionally bound to a
// pre-shared key, and exchange typed application packets inside
// authenticated ChaCha20-Poly1305 frames. The established stream splits
// into independent read and write halves so one receiving task and one
// sending task operate concurrently without shared state.
package clavis
