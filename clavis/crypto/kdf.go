package crypto

import (
	"crypto/sha256"
	"io"

	"golang.org/x/crypto/hkdf"
)

// kdfContext is the protocol-versioned context string mixed into every
// key derivation. Bumping the protocol version changes it, so sessions
// from different protocol versions can never share keys.
const kdfContext = "clavis-go v1 session keys"

// DeriveKey derives a key of the given length using HKDF-SHA256.
// salt may be nil (zero salt); info provides context binding.
func DeriveKey(secret, salt, info []byte, length int) ([]byte, error) {
	hk := hkdf.New(sha256.New, secret, salt, info)
	key := make([]byte, length)
	if _, err := io.ReadFull(hk, key); err != nil {
		return nil, err
	}
	return key, nil
}

// DeriveSessionKeys derives the two directional session keys from the raw
// X25519 shared secret. The optional pre-shared key enters as the HKDF
// salt, so both sides must hold the same PSK to arrive at the same keys;
// the info binds the keys to this exact handshake transcript.
//
// Returns (initiator→responder key, responder→initiator key), 32 bytes each.
// The two directions never share key material, so an endpoint's own frames
// replayed back to it fail authentication.
func DeriveSessionKeys(sharedSecret, psk []byte, initiatorPub, responderPub [KeySize]byte) ([]byte, []byte, error) {
	info := make([]byte, 0, len(kdfContext)+2*KeySize)
	info = append(info, kdfContext...)
	info = append(info, initiatorPub[:]...)
	info = append(info, responderPub[:]...)

	keyMaterial, err := DeriveKey(sharedSecret, psk, info, 2*KeySize)
	if err != nil {
		return nil, nil, err
	}
	return keyMaterial[:KeySize], keyMaterial[KeySize:], nil
}
