package utils

import (
	"io"
)

// DrainClose discards up to limit bytes of rc and closes it, so the
// underlying HTTP connection goes back to the pool.
func DrainClose(rc io.ReadCloser, limit int64) {
	if rc == nil {
		return
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(rc, limit))
	_ = rc.Close()
}
