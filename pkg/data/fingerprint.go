package data

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Fingerprint computes a stable content hash of the table, used as the
// cache key for validation results and recorded on quality reports for
// auditability.
func Fingerprint(table *RawTable) string {
	h := sha256.New()
	h.Write([]byte(strings.Join(table.Header, "\x1f")))
	h.Write([]byte{'\n'})
	for _, record := range table.Records {
		h.Write([]byte(strings.Join(record, "\x1f")))
		h.Write([]byte{'\n'})
	}
	return hex.EncodeToString(h.Sum(nil))
}
