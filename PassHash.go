// Package passhash implements partition based operators over a pass indexed hash family.
//
// Every pass routes records with a different member of the family, so a partition that is still
// too large after one pass is split again by an independent hash instead of repeating the same
// collisions.
package passhash

import "fmt"
import "os"
import "runtime"

import clog "github.com/sirgallo/logger"


var cLog = clog.NewCustomLog("PassHash")


//============================================= PassHash


// NewPassHash
//	Resolves the options against the package defaults and validates them.
//	If a spill directory is configured, it is created when missing.
//
// Parameters:
//	opts: optional settings, nil fields take the defaults
//
// Returns:
//	The configured operator set or an error
func NewPassHash(opts PassHashOpts) (*PassHash, error) {
	passHash := &PassHash{
		NumPartitions: valueOrDefault(opts.NumPartitions, DefaultNumPartitions),
		MaxPasses: valueOrDefault(opts.MaxPasses, DefaultMaxPasses),
		MemoryBudget: valueOrDefault(opts.MemoryBudget, DefaultMemoryBudget),
		Workers: valueOrDefault(opts.Workers, runtime.NumCPU()),
		SpillDir: valueOrDefault(opts.SpillDir, ""),
		Compression: valueOrDefault(opts.Compression, DefaultCompression),
		FrameSize: valueOrDefault(opts.FrameSize, DefaultFrameSize),
	}

	switch {
		case passHash.NumPartitions < 2:
			return nil, ErrInvalidPartitionCount
		case passHash.MaxPasses < 1:
			return nil, ErrInvalidMaxPasses
		case passHash.MemoryBudget < 1:
			return nil, ErrInvalidMemoryBudget
		case passHash.Workers < 1:
			return nil, ErrInvalidWorkers
		case passHash.FrameSize < 1:
			return nil, ErrInvalidFrameSize
	}

	if passHash.SpillDir != "" {
		mkdirErr := os.MkdirAll(passHash.SpillDir, 0700)
		if mkdirErr != nil { return nil, fmt.Errorf("create spill dir: %w", mkdirErr) }

		passHash.framePool = NewFramePool(int64(passHash.NumPartitions * passHash.Workers), passHash.FrameSize)
	}

	cLog.Debug("passhash opened with partitions:", passHash.NumPartitions, "passes:", passHash.MaxPasses, "budget:", passHash.MemoryBudget)
	return passHash, nil
}

// Close
//	Marks the operator set closed. Operators started afterwards return ErrClosed.
//	Partitions and buckets already handed out stay valid until they are closed by their owner.
func (passHash *PassHash) Close() error {
	if passHash.closed.Swap(true) { return nil }

	cLog.Debug("passhash closed")
	return nil
}

// LastPass
//	The final pass an operator may use. Partitions reaching it are processed regardless of size.
func (passHash *PassHash) LastPass() int {
	return FirstPass + passHash.MaxPasses - 1
}

// ensureOpen
//	Guard used by every operator entry point.
func (passHash *PassHash) ensureOpen() error {
	if passHash.closed.Load() { return ErrClosed }
	return nil
}

// newPartition
//	Partitions spill to disk when a spill directory is configured, otherwise they stay in memory.
func (passHash *PassHash) newPartition() Partition {
	if passHash.SpillDir == "" { return &memPartition{} }

	return &spillPartition{
		dir: passHash.SpillDir,
		compression: passHash.Compression,
		frameSize: passHash.FrameSize,
		framePool: passHash.framePool,
	}
}

func valueOrDefault[T any](value *T, defaultValue T) T {
	if value == nil { return defaultValue }
	return *value
}
