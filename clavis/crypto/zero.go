package crypto

import "crypto/subtle"

// Zero overwrites b with zeros. Used to discard ephemeral private keys
// and raw shared secrets once session keys are derived.
func Zero(b []byte) {
	if len(b) == 0 {
		return
	}
	subtle.ConstantTimeCopy(1, b, make([]byte, len(b)))
}
