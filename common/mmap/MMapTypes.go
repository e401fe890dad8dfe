package mmap

import "errors"
import "os"


// MMap is a memory mapped region. Slices of it are only valid until Unmap.
type MMap []byte

// Protection selects how a region may be accessed.
type Protection int


const (
	// RDONLY maps the region read only
	RDONLY Protection = 0
	// RDWR maps the region read/write, shared with the file
	RDWR Protection = 1 << iota
	// COPY maps the region copy-on-write, writes never reach the file
	COPY
	// EXEC additionally allows execution
	EXEC
)


// PageSize is the OS page size, usually 4KiB.
var PageSize = os.Getpagesize()

var (
	ErrUnalignedOffset = errors.New("mmap: offset must be a multiple of the page size")
	ErrEmptyRegion = errors.New("mmap: region length must be positive")
	ErrFlushRange = errors.New("mmap: flush range out of bounds")
)
