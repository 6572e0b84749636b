package httpx

import (
	"crypto/rand"
	"encoding/hex"
	"strconv"
	"sync/atomic"
)

var idSeq atomic.Uint64

// genID returns a 16-hex random request ID, or a process-local sequence
// number if the random source fails.
func genID() string {
	var b [8]byte
	if _, err := rand.Read(b[:]); err == nil {
		return hex.EncodeToString(b[:])
	}
	return "seq-" + strconv.FormatUint(idSeq.Add(1), 10)
}
