package crypto

import (
	"crypto/rand"
	"errors"
	"io"

	"golang.org/x/crypto/curve25519"
)

// KeySize is the size of an X25519 key and of a derived session key.
const KeySize = 32

// X25519KeyPair is an ephemeral ECDH keypair. It lives only for the
// duration of a handshake; call Zero once the shared secret is derived.
type X25519KeyPair struct {
	PublicKey  [KeySize]byte
	PrivateKey [KeySize]byte
}

var ErrInvalidPublicKey = errors.New("crypto: invalid X25519 public key")

// GenerateX25519 generates a fresh ephemeral X25519 keypair.
func GenerateX25519() (X25519KeyPair, error) {
	var kp X25519KeyPair
	if _, err := io.ReadFull(rand.Reader, kp.PrivateKey[:]); err != nil {
		return X25519KeyPair{}, err
	}
	// Clamp private key per RFC 7748
	kp.PrivateKey[0] &= 248
	kp.PrivateKey[31] &= 127
	kp.PrivateKey[31] |= 64

	curve25519.ScalarBaseMult(&kp.PublicKey, &kp.PrivateKey)
	return kp, nil
}

// Zero wipes the private half of the keypair.
func (kp *X25519KeyPair) Zero() {
	Zero(kp.PrivateKey[:])
}

// ECDH computes the raw X25519 shared secret. The result must be passed
// through DeriveSessionKeys before use as key material.
func ECDH(privateKey, peerPublicKey [KeySize]byte) ([]byte, error) {
	// All-zero input would produce an all-zero shared secret.
	var zero [KeySize]byte
	if peerPublicKey == zero {
		return nil, ErrInvalidPublicKey
	}
	shared, err := curve25519.X25519(privateKey[:], peerPublicKey[:])
	if err != nil {
		return nil, ErrInvalidPublicKey
	}
	return shared, nil
}
