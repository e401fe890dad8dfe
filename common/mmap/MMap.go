// Package mmap is a thin wrapper over unix mmap used to back spill files.
package mmap

import "os"

import "golang.org/x/sys/unix"


//============================================= MMap


// Map
//	Maps the whole file.
//
// Parameters:
//	file: an open file, its current size is the mapped length
//	prot: RDONLY, RDWR or COPY, optionally with EXEC
//
// Returns:
//	The mapped region or an error
func Map(file *os.File, prot Protection) (MMap, error) {
	stat, statErr := file.Stat()
	if statErr != nil { return nil, statErr }

	return MapRegion(file, int(stat.Size()), prot, 0)
}

// MapRegion
//	Maps length bytes of the file starting at offset, which must be page aligned.
func MapRegion(file *os.File, length int, prot Protection, offset int64) (MMap, error) {
	if offset % int64(PageSize) != 0 { return nil, ErrUnalignedOffset }
	if length <= 0 { return nil, ErrEmptyRegion }

	unixProt, flags := translate(prot)
	region, mmapErr := unix.Mmap(int(file.Fd()), offset, length, unixProt, flags)
	if mmapErr != nil { return nil, mmapErr }

	return region, nil
}

// Anonymous
//	Maps length bytes of zeroed memory that is not backed by a file.
func Anonymous(length int) (MMap, error) {
	if length <= 0 { return nil, ErrEmptyRegion }

	region, mmapErr := unix.Mmap(-1, 0, length, unix.PROT_READ | unix.PROT_WRITE, unix.MAP_ANON | unix.MAP_PRIVATE)
	if mmapErr != nil { return nil, mmapErr }

	return region, nil
}

// Flush
//	Synchronously writes the whole region back to the file.
func (mapped MMap) Flush() error {
	return unix.Msync(mapped, unix.MS_SYNC)
}

// FlushRange
//	Writes back only [start, end). msync requires a page aligned start, so start is rounded down to its page.
func (mapped MMap) FlushRange(start, end int) error {
	if start < 0 || end > len(mapped) || start > end { return ErrFlushRange }
	if start == end { return nil }

	startOfPage := start &^ (PageSize - 1)
	return unix.Msync(mapped[startOfPage:end], unix.MS_SYNC)
}

// Unmap
//	Releases the region. The MMap and every slice of it must not be used afterwards.
func (mapped MMap) Unmap() error {
	return unix.Munmap(mapped)
}

// translate
//	COPY maps privately so writes stay in memory, everything else is shared with the file.
func translate(prot Protection) (int, int) {
	unixProt := unix.PROT_READ
	flags := unix.MAP_SHARED

	switch {
		case prot & COPY != 0:
			unixProt |= unix.PROT_WRITE
			flags = unix.MAP_PRIVATE
		case prot & RDWR != 0:
			unixProt |= unix.PROT_WRITE
	}

	if prot & EXEC != 0 { unixProt |= unix.PROT_EXEC }

	return unixProt, flags
}
