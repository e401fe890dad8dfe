package passhash

import "errors"
import "fmt"


var (
	// ErrInvalidPartitionCount is returned when NumPartitions is below 2.
	ErrInvalidPartitionCount = errors.New("passhash: number of partitions must be at least 2")
	// ErrInvalidMaxPasses is returned when MaxPasses is not positive.
	ErrInvalidMaxPasses = errors.New("passhash: max passes must be positive")
	// ErrInvalidMemoryBudget is returned when MemoryBudget is not positive.
	ErrInvalidMemoryBudget = errors.New("passhash: memory budget must be positive")
	// ErrInvalidWorkers is returned when Workers is not positive.
	ErrInvalidWorkers = errors.New("passhash: workers must be positive")
	// ErrInvalidFrameSize is returned when FrameSize is not positive.
	ErrInvalidFrameSize = errors.New("passhash: frame size must be positive")
	// ErrClosed is returned by operators called after Close.
	ErrClosed = errors.New("passhash: closed")
	// ErrSpillClosed is returned when a removed spill file is used.
	ErrSpillClosed = errors.New("passhash: spill file closed")
	// ErrCorruptFrame is returned when a spill frame cannot be decoded.
	ErrCorruptFrame = errors.New("passhash: corrupt spill frame")
)

// PartitionError reports a failure while processing a single partition.
//
// The underlying error can be accessed via errors.Unwrap.
type PartitionError struct {
	Pass int
	Index int
	cause error
}

func (e *PartitionError) Error() string {
	return fmt.Sprintf("partition %d on pass %d: %v", e.Index, e.Pass, e.cause)
}

func (e *PartitionError) Unwrap() error { return e.cause }

func newPartitionError(pass, index int, cause error) error {
	var partitionErr *PartitionError
	if errors.As(cause, &partitionErr) { return cause }

	return &PartitionError{ Pass: pass, Index: index, cause: cause }
}
