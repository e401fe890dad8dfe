// Package codec frames and compresses the blocks written to spill files.
package codec

import "encoding/binary"
import "fmt"
import "sync"

import "github.com/klauspost/compress/zstd"
import "github.com/pierrec/lz4/v4"


//============================================= Block Codec


var (
	zstdOnce sync.Once
	zstdEncoder *zstd.Encoder
	zstdDecoder *zstd.Decoder
	zstdErr error
)

// Compress
//	Compresses data and prepends the block header.
//	If the codec cannot shrink the data, the payload is stored raw and the header records a compressed length of 0.
//
// Parameters:
//	compression: the codec to apply
//	data: the uncompressed payload
//
// Returns:
//	The framed block or an error
func Compress(compression Compression, data []byte) ([]byte, error) {
	var compressed []byte

	switch compression {
		case None:
		case LZ4:
			bound := make([]byte, lz4.CompressBlockBound(len(data)))
			n, compressErr := lz4.CompressBlock(data, bound, nil)
			if compressErr != nil { return nil, compressErr }
			compressed = bound[:n]
		case Zstd:
			encoder, _, initErr := zstdCodec()
			if initErr != nil { return nil, initErr }
			compressed = encoder.EncodeAll(data, nil)
		default:
			return nil, fmt.Errorf("%w: %d", ErrUnknownCompression, compression)
	}

	if len(compressed) == 0 || len(compressed) >= len(data) {
		return frame(compression, len(data), 0, data), nil
	}

	return frame(compression, len(data), len(compressed), compressed), nil
}

// Decompress
//	Reads the header of a block produced by Compress and returns the original payload.
//	Raw payloads are returned without copying, so they alias block.
func Decompress(block []byte) ([]byte, error) {
	if len(block) < HeaderSize { return nil, ErrShortBlock }

	uncompressedLen := int(binary.LittleEndian.Uint32(block[uncompressedLenIdx:compressedLenIdx]))
	compressedLen := int(binary.LittleEndian.Uint32(block[compressedLenIdx:codecIdx]))
	compression := Compression(block[codecIdx])
	payload := block[HeaderSize:]

	if compressedLen == 0 {
		if len(payload) < uncompressedLen { return nil, ErrShortBlock }
		return payload[:uncompressedLen], nil
	}

	if len(payload) < compressedLen { return nil, ErrShortBlock }
	payload = payload[:compressedLen]

	switch compression {
		case LZ4:
			decoded := make([]byte, uncompressedLen)
			n, decodeErr := lz4.UncompressBlock(payload, decoded)
			if decodeErr != nil { return nil, decodeErr }
			if n != uncompressedLen { return nil, ErrSizeMismatch }
			return decoded, nil
		case Zstd:
			_, decoder, initErr := zstdCodec()
			if initErr != nil { return nil, initErr }

			decoded, decodeErr := decoder.DecodeAll(payload, make([]byte, 0, uncompressedLen))
			if decodeErr != nil { return nil, decodeErr }
			if len(decoded) != uncompressedLen { return nil, ErrSizeMismatch }
			return decoded, nil
		default:
			return nil, fmt.Errorf("%w: %d", ErrUnknownCompression, compression)
	}
}

// frame
//	Writes the header followed by the payload into a new buffer.
func frame(compression Compression, uncompressedLen, compressedLen int, payload []byte) []byte {
	block := make([]byte, HeaderSize + len(payload))
	binary.LittleEndian.PutUint32(block[uncompressedLenIdx:], uint32(uncompressedLen))
	binary.LittleEndian.PutUint32(block[compressedLenIdx:], uint32(compressedLen))
	block[codecIdx] = byte(compression)

	copy(block[HeaderSize:], payload)
	return block
}

// zstdCodec
//	The zstd encoder and decoder are safe for concurrent EncodeAll / DecodeAll, so one of each is shared.
func zstdCodec() (*zstd.Encoder, *zstd.Decoder, error) {
	zstdOnce.Do(func() {
		zstdEncoder, zstdErr = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if zstdErr != nil { return }
		zstdDecoder, zstdErr = zstd.NewReader(nil)
	})

	return zstdEncoder, zstdDecoder, zstdErr
}
