// Package guid generates identifiers for which uniqueness matters but
// unpredictability does not.
package guid

import (
	"encoding/binary"
	"math/rand/v2"

	"github.com/google/uuid"
)

// NewNotCryptoQuality returns a random UUID drawn from math/rand/v2. It is much
// cheaper than uuid.New but must not be used where an attacker could benefit
// from guessing identifiers.
func NewNotCryptoQuality() uuid.UUID {
	var id uuid.UUID
	binary.LittleEndian.PutUint64(id[:8], rand.Uint64())
	binary.LittleEndian.PutUint64(id[8:], rand.Uint64())

	// Mark it as a version 4, RFC 4122 UUID so it round-trips through
	// tooling that validates the layout.
	id[6] = (id[6] & 0x0f) | 0x40
	id[8] = (id[8] & 0x3f) | 0x80
	return id
}
