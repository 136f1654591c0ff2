package checksum

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"hash"
	"time"

	"github.com/starford/notegraph/internal/models"
)

// Sum returns the hex-encoded SHA-256 digest of data.
func Sum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

// Notes returns a digest of the note set in order. Two sets with equal
// digests produce the same graph.
func Notes(notes []models.Note) string {
	h := sha256.New()
	writeInt(h, len(notes))
	for _, n := range notes {
		writeString(h, n.ID)
		writeString(h, n.Content)
		writeInt(h, len(n.Tags))
		for _, t := range n.Tags {
			writeString(h, t)
		}
		writeTime(h, n.Created)
		writeTime(h, n.Modified)
	}
	return hex.EncodeToString(h.Sum(nil))
}

func writeString(h hash.Hash, s string) {
	writeInt(h, len(s))
	h.Write([]byte(s))
}

func writeInt(h hash.Hash, n int) {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(n))
	h.Write(buf[:])
}

func writeTime(h hash.Hash, t time.Time) {
	writeInt(h, int(t.UnixNano()))
}
