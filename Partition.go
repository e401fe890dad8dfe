package passhash

import "encoding/binary"

import "github.com/sirgallo/passhash/common/codec"


//============================================= Partitions


// memPartition keeps its records in a slice.
type memPartition struct {
	records []Record
}

// spillPartition buffers encoded records and writes them to a spill file one compressed frame at a time.
//	The spill file is created on the first full frame, so small partitions never touch the disk.
type spillPartition struct {
	dir string
	compression codec.Compression
	frameSize int
	framePool *FramePool
	file *SpillFile
	pending *[]byte
	len int
	closed bool
}


func (partition *memPartition) Add(record Record) error {
	partition.records = append(partition.records, record)
	return nil
}

func (partition *memPartition) Len() int { return len(partition.records) }

func (partition *memPartition) Iterate(fn func(record Record) error) error {
	return Records(partition.records).Iterate(fn)
}

func (partition *memPartition) Close() error {
	partition.records = nil
	return nil
}

// Add
//	Encodes the record into the pending frame and flushes the frame once it reaches frameSize.
func (partition *spillPartition) Add(record Record) error {
	if partition.closed { return ErrSpillClosed }
	if partition.pending == nil { partition.pending = partition.framePool.Get() }

	*partition.pending = appendRecord(*partition.pending, record)
	partition.len++

	if len(*partition.pending) >= partition.frameSize { return partition.flushFrame() }
	return nil
}

func (partition *spillPartition) Len() int { return partition.len }

// Iterate
//	Replays the spilled frames in order, followed by the records still pending in memory.
func (partition *spillPartition) Iterate(fn func(record Record) error) error {
	if partition.closed { return ErrSpillClosed }

	if partition.file != nil {
		framesErr := partition.file.Frames(func(frame []byte) error {
			payload, decompressErr := codec.Decompress(frame)
			if decompressErr != nil { return decompressErr }

			return decodeRecords(payload, fn)
		})

		if framesErr != nil { return framesErr }
	}

	if partition.pending == nil { return nil }
	return decodeRecords(*partition.pending, fn)
}

// Close
//	Returns the pending buffer to the pool and removes the spill file, if one was created.
func (partition *spillPartition) Close() error {
	if partition.closed { return nil }
	partition.closed = true

	partition.framePool.Put(partition.pending)
	partition.pending = nil

	if partition.file == nil { return nil }
	return partition.file.Remove()
}

// flushFrame
//	Compresses the pending records into a single frame and appends it to the spill file.
func (partition *spillPartition) flushFrame() error {
	if partition.file == nil {
		spillFile, openErr := OpenSpillFile(partition.dir)
		if openErr != nil { return openErr }

		cLog.Debug("spilling partition to:", spillFile.Filepath)
		partition.file = spillFile
	}

	block, compressErr := codec.Compress(partition.compression, *partition.pending)
	if compressErr != nil { return compressErr }

	appendErr := partition.file.Append(block)
	if appendErr != nil { return appendErr }

	*partition.pending = (*partition.pending)[:0]
	return nil
}

// appendRecord
//	Encodes a record as key field then value field.
func appendRecord(buf []byte, record Record) []byte {
	buf = appendField(buf, record.Key)
	return appendField(buf, record.Value)
}

// appendField
//	A field is a uvarint prefix followed by its bytes. The prefix is the length plus one, and 0 marks a nil field,
//	so spilled records read back exactly as they were added.
func appendField(buf []byte, field []byte) []byte {
	if field == nil { return binary.AppendUvarint(buf, 0) }

	buf = binary.AppendUvarint(buf, uint64(len(field)) + 1)
	return append(buf, field...)
}

// decodeRecords
//	Decodes every record in payload. Keys and values are copied since payload may point into a mapping.
func decodeRecords(payload []byte, fn func(record Record) error) error {
	for len(payload) > 0 {
		key, rest, keyErr := decodeField(payload)
		if keyErr != nil { return keyErr }

		value, rest, valueErr := decodeField(rest)
		if valueErr != nil { return valueErr }

		fnErr := fn(Record{ Key: key, Value: value })
		if fnErr != nil { return fnErr }

		payload = rest
	}

	return nil
}

func decodeField(buf []byte) ([]byte, []byte, error) {
	prefix, n := binary.Uvarint(buf)
	if n <= 0 { return nil, nil, ErrCorruptFrame }
	if prefix == 0 { return nil, buf[n:], nil }

	fieldLen := prefix - 1
	if uint64(len(buf) - n) < fieldLen { return nil, nil, ErrCorruptFrame }

	field := make([]byte, fieldLen)
	copy(field, buf[n:])
	return field, buf[n + int(fieldLen):], nil
}


var (
	_ Partition = (*memPartition)(nil)
	_ Partition = (*spillPartition)(nil)
)
