package passhash

import "sync/atomic"

import "github.com/RoaringBitmap/roaring/v2"

import "github.com/sirgallo/passhash/common/codec"
import "github.com/sirgallo/passhash/common/hashfunc"


// Record is a key/value pair flowing through the operators. Keys are the canonical byte encoding of the join or grouping key.
type Record struct {
	Key []byte
	Value []byte
}

// JoinedRecord is one match of an equi-join.
type JoinedRecord struct {
	Key []byte
	Left []byte
	Right []byte
}

// Group holds every value seen for a key, in arrival order.
type Group struct {
	Key []byte
	Values [][]byte
}

// RecordSource is anything that can replay its records. Iteration stops at the first error returned by fn.
type RecordSource interface {
	Iterate(fn func(record Record) error) error
}

// Records is an in-memory RecordSource.
type Records []Record

// Partition holds the records routed to one bucket during a pass.
type Partition interface {
	RecordSource
	// Add appends a record to the partition
	Add(record Record) error
	// Len is the number of records added so far
	Len() int
	// Close releases any spill file backing the partition
	Close() error
}

// PartitionSet is the outcome of a single partitioning pass.
type PartitionSet struct {
	// Pass: the hash function pass used to route records
	Pass int
	// Partitions: one partition per bucket, empty ones included
	Partitions []Partition
	// NonEmpty: indexes of the partitions that received at least one record
	NonEmpty *roaring.Bitmap
}

// Bucket is a leaf of recursive partitioning.
type Bucket struct {
	// Pass: the pass that produced this bucket
	Pass int
	// Path: the partition index chosen at every pass, starting with the first
	Path []int
	// Partition: the records of the bucket
	Partition Partition
}

// PassHashOpts configure the partitioning operators. Nil fields take the package defaults.
type PassHashOpts struct {
	// number of partitions created by every pass
	NumPartitions *int
	// total passes available, starting at hashfunc.FastPass
	MaxPasses *int
	// number of records a partition may hold before it is partitioned again
	MemoryBudget *int
	// bound on concurrently processed partitions
	Workers *int
	// directory for spill files, partitions stay in memory when empty
	SpillDir *string
	// codec applied to spill frames
	Compression *codec.Compression
	// size in bytes a spilled partition buffers before writing a frame
	FrameSize *int
}

// PassHash runs hash partitioning, grace hash joins and hash grouping over the pass indexed hash family.
type PassHash struct {
	// NumPartitions: fan out of every pass
	NumPartitions int
	// MaxPasses: passes available before a partition is processed regardless of size
	MaxPasses int
	// MemoryBudget: record count above which a partition is partitioned again
	MemoryBudget int
	// Workers: limit on partitions processed in parallel
	Workers int
	// SpillDir: where spilled partitions live, empty keeps everything in memory
	SpillDir string
	// Compression: codec for spill frames
	Compression codec.Compression
	// FrameSize: bytes buffered by a spilled partition before a frame is written
	FrameSize int
	// framePool: pending frame buffers shared by spilled partitions
	framePool *FramePool
	// closed: set once Close is called
	closed atomic.Bool
}


const (
	// FirstPass is the pass every operator starts with, using the fast identity hash
	FirstPass = hashfunc.FastPass
	// DefaultNumPartitions is the default fan out
	DefaultNumPartitions = 16
	// DefaultMaxPasses is the default number of passes
	DefaultMaxPasses = 5
	// DefaultMemoryBudget is the default number of records held by a partition in memory
	DefaultMemoryBudget = 1024
	// DefaultFrameSize is the default spill frame size, 64KiB
	DefaultFrameSize = 64 * 1024
	// DefaultCompression is the default spill codec
	DefaultCompression = codec.LZ4
	// records between context checks while partitioning
	ctxCheckInterval = 1024
)


func (records Records) Iterate(fn func(record Record) error) error {
	for _, record := range records {
		if fnErr := fn(record); fnErr != nil { return fnErr }
	}

	return nil
}
