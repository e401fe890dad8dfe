package passhash

import "sync"
import "sync/atomic"


//============================================= Frame Pool


// FramePool recycles the pending frame buffers of spilled partitions.
//	Every pass allocates NumPartitions partitions, so buffers are reused across passes instead of reallocated.
type FramePool struct {
	// MaxSize: buffers kept once returned, extra buffers are left to the garbage collector
	MaxSize int64
	// Size: buffers put back and not yet taken, advisory since sync.Pool may drop buffers during GC
	Size int64
	// FrameSize: capacity of a new buffer
	FrameSize int
	// Pool: the underlying pool
	Pool *sync.Pool
}


// NewFramePool
//	Creates a pool holding at most maxSize buffers of frameSize capacity.
func NewFramePool(maxSize int64, frameSize int) *FramePool {
	pool := &sync.Pool{
		New: func() any {
			buf := make([]byte, 0, frameSize)
			return &buf
		},
	}

	return &FramePool{ MaxSize: maxSize, FrameSize: frameSize, Pool: pool }
}

// Get
//	Takes an empty buffer from the pool, allocating one if the pool is empty.
func (framePool *FramePool) Get() *[]byte {
	buf := framePool.Pool.Get().(*[]byte)
	if atomic.LoadInt64(&framePool.Size) > 0 { atomic.AddInt64(&framePool.Size, -1) }

	return buf
}

// Put
//	Returns a buffer to the pool. Buffers that grew past twice the frame size, or arrive while the pool is full, are dropped.
//	Size only approximates the pooled buffers, so a drifted count just means fewer buffers are recycled.
func (framePool *FramePool) Put(buf *[]byte) {
	if buf == nil || cap(*buf) > 2 * framePool.FrameSize { return }

	if atomic.LoadInt64(&framePool.Size) < framePool.MaxSize {
		*buf = (*buf)[:0]
		framePool.Pool.Put(buf)
		atomic.AddInt64(&framePool.Size, 1)
	}
}
