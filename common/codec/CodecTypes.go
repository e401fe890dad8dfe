package codec

import "errors"


// Compression selects how spill frames are compressed.
type Compression uint8


const (
	// None stores frames as is
	None Compression = 0
	// LZ4 block compression, fast and the default for spilled partitions
	LZ4 Compression = 1
	// Zstd trades speed for a better ratio
	Zstd Compression = 2
)

const (
	// HeaderSize is the size of the block header in bytes
	HeaderSize = 9
	// index of the uncompressed length in the header
	uncompressedLenIdx = 0
	// index of the compressed length in the header, 0 means the payload is stored raw
	compressedLenIdx = 4
	// index of the codec tag in the header
	codecIdx = 8
)

/*
block layout

	0 UncompressedLength - 4 bytes
	4 CompressedLength - 4 bytes, 0 when stored raw
	8 Codec - 1 byte
	9 Payload -->
*/


var (
	ErrUnknownCompression = errors.New("codec: unknown compression")
	ErrShortBlock = errors.New("codec: block too small")
	ErrSizeMismatch = errors.New("codec: decompressed size mismatch")
)

func (c Compression) String() string {
	switch c {
		case None:
			return "none"
		case LZ4:
			return "lz4"
		case Zstd:
			return "zstd"
		default:
			return "unknown"
	}
}
