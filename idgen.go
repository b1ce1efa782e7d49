package nedb

import (
	"encoding/hex"

	"github.com/google/uuid"
)

// newID returns a 16 hex-character opaque identifier (spec §3/§6). It
// reuses uuid.New()'s CSPRNG-backed byte source rather than rolling an
// independent one, hex-encoding the first 8 bytes of a fresh v4 UUID.
// Byte 6 carries the UUID version, so the 13th character is always '4'
// and the identifier holds 60 random bits; the variant bits live in byte
// 8, outside the encoded slice.
func newID() string {
	u := uuid.New()
	return hex.EncodeToString(u[:8])
}
