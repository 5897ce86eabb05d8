package fingerprint

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"io"
)

// Fingerprint is a fixed-width lowercase hex SHA-1 digest of a file's raw
// content. Two byte-identical files always produce the same fingerprint,
// regardless of host, locale or process.
type Fingerprint string

// HexLen is the encoded length of a fingerprint.
const HexLen = sha1.Size * 2

// Sum computes the fingerprint of b. It is total over any byte sequence,
// including empty content.
func Sum(b []byte) Fingerprint {
	h := sha1.Sum(b)
	return Fingerprint(hex.EncodeToString(h[:]))
}

// SumReader computes the fingerprint of everything readable from r.
// The only possible error is a read error from r itself.
func SumReader(r io.Reader) (Fingerprint, error) {
	h := sha1.New()
	if _, err := io.Copy(h, r); err != nil {
		return "", fmt.Errorf("failed to hash content: %w", err)
	}
	return Fingerprint(hex.EncodeToString(h.Sum(nil))), nil
}

// Valid reports whether f looks like an encoded SHA-1 digest.
func Valid(f Fingerprint) bool {
	if len(f) != HexLen {
		return false
	}
	_, err := hex.DecodeString(string(f))
	return err == nil
}
