package worker

import (
	"sync"

	"github.com/banshee-data/pointselect/internal/selection"
)

// maxPooledMask bounds the masks kept for reuse. Larger masks are left to
// the garbage collector to avoid pinning memory after a one-off huge
// selection.
const maxPooledMask = 4 << 20

// maskPool reduces allocations by reusing mask buffers between requests.
var maskPool = sync.Pool{
	New: func() interface{} {
		// Sized for a typical single-sensor frame.
		return make([]uint8, 0, 75000)
	},
}

// getMask returns a mask of length n. Contents are unspecified; the kernel
// overwrites every byte.
func getMask(n int) selection.Mask {
	s := maskPool.Get().([]uint8)
	if cap(s) < n {
		maskPool.Put(s)
		return make(selection.Mask, n)
	}
	return selection.Mask(s[:n])
}

// putMask returns a mask to the pool.
func putMask(m selection.Mask) {
	if cap(m) > 0 && cap(m) <= maxPooledMask {
		maskPool.Put([]uint8(m[:0]))
	}
}
