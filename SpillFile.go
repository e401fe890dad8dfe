package passhash

import "encoding/binary"
import "os"
import "sync"

import "github.com/sirgallo/utils"

import "github.com/sirgallo/passhash/common/mmap"


//============================================= Spill File


// SpillFile is an append only, memory mapped file of length prefixed frames.
type SpillFile struct {
	// Filepath: path of the backing file, cleared on Remove
	Filepath string
	// File: the backing file
	File *os.File
	// Data: the mapped file, nil until the first append
	Data mmap.MMap
	// EndOffset: the offset where the next frame is written
	EndOffset uint64
	// frames: number of frames appended
	frames int
	// closed: set by Remove
	closed bool
	// rwLock: appends and resizes exclude readers
	rwLock sync.RWMutex
}


const (
	// frameLenSize is the size of the length prefix in front of every frame
	frameLenSize = 4
	// initialSpillPages is the number of pages allocated on the first append
	initialSpillPages = 64
	// MaxResize is the step, 1GiB, past which spill files grow linearly instead of doubling
	MaxResize = 1 << 30
)

/*
spill file layout

	every frame:
		0 FrameLength - 4 bytes
		4 Frame - FrameLength bytes

	the file is truncated ahead of EndOffset, bytes past EndOffset are zero and never read
*/


// OpenSpillFile
//	Creates a new uniquely named spill file inside dir.
//	Nothing is mapped until the first frame is appended.
func OpenSpillFile(dir string) (*SpillFile, error) {
	file, createErr := os.CreateTemp(dir, "passhash-*.spill")
	if createErr != nil { return nil, createErr }

	return &SpillFile{ Filepath: file.Name(), File: file }, nil
}

// Append
//	Writes a length prefixed frame at EndOffset, growing the mapping first when the frame does not fit.
//
// Parameters:
//	frame: the frame bytes, copied into the mapping
//
// Returns:
//	nil or an error, ErrSpillClosed once the file has been removed
func (spillFile *SpillFile) Append(frame []byte) error {
	spillFile.rwLock.Lock()
	defer spillFile.rwLock.Unlock()

	if spillFile.closed { return ErrSpillClosed }

	startOffset := spillFile.EndOffset
	endOffset := startOffset + frameLenSize + uint64(len(frame))

	for endOffset > uint64(len(spillFile.Data)) {
		resizeErr := spillFile.resizeMmap()
		if resizeErr != nil { return resizeErr }
	}

	binary.LittleEndian.PutUint32(spillFile.Data[startOffset:], uint32(len(frame)))
	copy(spillFile.Data[startOffset + frameLenSize:endOffset], frame)

	spillFile.EndOffset = endOffset
	spillFile.frames++
	return nil
}

// Frames
//	Calls fn with every frame in append order.
//	The frame slices point into the mapping, so fn must copy anything it keeps and must not append to the same file.
func (spillFile *SpillFile) Frames(fn func(frame []byte) error) error {
	spillFile.rwLock.RLock()
	defer spillFile.rwLock.RUnlock()

	if spillFile.closed { return ErrSpillClosed }

	offset := uint64(0)
	for offset < spillFile.EndOffset {
		if offset + frameLenSize > spillFile.EndOffset { return ErrCorruptFrame }

		frameLen := uint64(binary.LittleEndian.Uint32(spillFile.Data[offset:offset + frameLenSize]))
		start := offset + frameLenSize
		end := start + frameLen
		if end > spillFile.EndOffset { return ErrCorruptFrame }

		fnErr := fn(spillFile.Data[start:end:end])
		if fnErr != nil { return fnErr }

		offset = end
	}

	return nil
}

// Len
//	The number of frames appended.
func (spillFile *SpillFile) Len() int {
	spillFile.rwLock.RLock()
	defer spillFile.rwLock.RUnlock()

	return spillFile.frames
}

// Flush
//	Writes the used region of the mapping back to the file.
func (spillFile *SpillFile) Flush() error {
	spillFile.rwLock.RLock()
	defer spillFile.rwLock.RUnlock()

	if spillFile.closed { return ErrSpillClosed }
	if len(spillFile.Data) == 0 { return nil }

	return spillFile.Data.FlushRange(0, int(spillFile.EndOffset))
}

// Remove
//	Unmaps, closes and deletes the spill file. Calling Remove again is a no-op.
func (spillFile *SpillFile) Remove() error {
	spillFile.rwLock.Lock()
	defer spillFile.rwLock.Unlock()

	if spillFile.closed { return nil }
	spillFile.closed = true

	unmapErr := spillFile.munmap()
	closeErr := spillFile.File.Close()
	removeErr := os.Remove(spillFile.Filepath)

	spillFile.Filepath = utils.GetZero[string]()
	spillFile.EndOffset = 0

	switch {
		case unmapErr != nil:
			return unmapErr
		case closeErr != nil:
			return closeErr
		default:
			return removeErr
	}
}

// resizeMmap
//	Grows the backing file and remaps it.
//	The first allocation is initialSpillPages pages, then the mapping doubles until MaxResize, after which it grows by MaxResize.
func (spillFile *SpillFile) resizeMmap() error {
	allocateSize := func() int64 {
		switch {
			case len(spillFile.Data) == 0:
				return int64(mmap.PageSize) * initialSpillPages
			case len(spillFile.Data) >= MaxResize:
				return int64(len(spillFile.Data) + MaxResize)
			default:
				return int64(len(spillFile.Data) * 2)
		}
	}()

	unmapErr := spillFile.munmap()
	if unmapErr != nil { return unmapErr }

	truncateErr := spillFile.File.Truncate(allocateSize)
	if truncateErr != nil { return truncateErr }

	mMap, mmapErr := mmap.Map(spillFile.File, mmap.RDWR)
	if mmapErr != nil { return mmapErr }

	cLog.Debug("spill file resized:", spillFile.Filepath, "bytes:", allocateSize)
	spillFile.Data = mMap
	return nil
}

// munmap
//	Unmaps the current mapping, if any.
func (spillFile *SpillFile) munmap() error {
	if len(spillFile.Data) == 0 { return nil }

	unmapErr := spillFile.Data.Unmap()
	if unmapErr != nil { return unmapErr }

	spillFile.Data = nil
	return nil
}
