package passhash

import "context"
import "errors"
import "io/fs"
import "os"
import "path/filepath"
import "testing"

import "github.com/stretchr/testify/assert"
import "github.com/stretchr/testify/require"

import "github.com/sirgallo/passhash/common/hashfunc"


func TestPartition(t *testing.T) {
	t.Run("Test Routes By Pass Hash", func(t *testing.T) {
		passHash := newTestPassHash(t, PassHashOpts{ NumPartitions: ptr(8) })
		records := intRecords(500, "v")

		for _, pass := range []int{ FirstPass, 2, 3 } {
			set, partitionErr := passHash.Partition(context.Background(), records, pass)
			require.NoError(t, partitionErr)

			assert.Equal(t, pass, set.Pass)
			assert.Len(t, set.Partitions, 8)

			hash := hashfunc.GetHashFunction(pass)
			total := 0
			for index, partition := range set.Partitions {
				assert.Equal(t, partition.Len() > 0, set.NonEmpty.Contains(uint32(index)))
				total += partition.Len()

				for _, record := range collect(t, partition) {
					assert.Equal(t, index, hashfunc.BucketIndex(hash(hashfunc.Bytes(record.Key)), 8))
				}
			}

			assert.Equal(t, len(records), total)
			require.NoError(t, set.Close())
		}
	})

	t.Run("Test Cancelled Context", func(t *testing.T) {
		passHash := newTestPassHash(t, PassHashOpts{})

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, partitionErr := passHash.Partition(ctx, intRecords(10, "v"), FirstPass)
		assert.ErrorIs(t, partitionErr, context.Canceled)
	})

	t.Run("Test Source Error", func(t *testing.T) {
		passHash := newTestPassHash(t, PassHashOpts{})
		sourceErr := errors.New("source failed")

		_, partitionErr := passHash.Partition(context.Background(), failingSource{ err: sourceErr }, FirstPass)
		assert.ErrorIs(t, partitionErr, sourceErr)
	})

	t.Run("Test Spill Failure Reports Partition", func(t *testing.T) {
		spillDir := filepath.Join(t.TempDir(), "spill")
		passHash := newTestPassHash(t, PassHashOpts{ SpillDir: ptr(spillDir), FrameSize: ptr(1) })
		require.NoError(t, os.RemoveAll(spillDir))

		_, partitionErr := passHash.Partition(context.Background(), intRecords(1, "v"), FirstPass)

		var partitionError *PartitionError
		require.ErrorAs(t, partitionErr, &partitionError)
		assert.Equal(t, FirstPass, partitionError.Pass)
		assert.ErrorIs(t, partitionErr, fs.ErrNotExist)
		assert.Contains(t, partitionErr.Error(), "on pass 1")
	})
}

func TestPartitionRecursive(t *testing.T) {
	t.Run("Test Buckets Fit Budget", func(t *testing.T) {
		for _, spill := range []bool{ false, true } {
			opts := PassHashOpts{ NumPartitions: ptr(4), MemoryBudget: ptr(10), FrameSize: ptr(96) }
			spillDir := t.TempDir()
			if spill { opts.SpillDir = ptr(spillDir) }

			passHash := newTestPassHash(t, opts)
			records := intRecords(1000, "v")

			buckets, partitionErr := passHash.PartitionRecursive(context.Background(), records)
			require.NoError(t, partitionErr)

			seen := make(map[string]int)
			maxPass := FirstPass
			for _, bucket := range buckets {
				assert.LessOrEqual(t, bucket.Partition.Len(), 10)
				assert.Len(t, bucket.Path, bucket.Pass - FirstPass + 1)
				if bucket.Pass > maxPass { maxPass = bucket.Pass }

				for _, record := range collect(t, bucket.Partition) {
					seen[string(record.Key)]++

					// every pass along the path routed the key to the recorded partition
					for depth, index := range bucket.Path {
						hash := hashfunc.GetHashFunction(FirstPass + depth)(hashfunc.Bytes(record.Key))
						assert.Equal(t, index, hashfunc.BucketIndex(hash, 4))
					}
				}
			}

			assert.Len(t, seen, len(records))
			for key, count := range seen { assert.Equal(t, 1, count, "key %x", key) }
			assert.Greater(t, maxPass, FirstPass)

			require.NoError(t, CloseBuckets(buckets))
			assertDirEmpty(t, spillDir)
		}
	})

	t.Run("Test Duplicate Keys Stop At Last Pass", func(t *testing.T) {
		passHash := newTestPassHash(t, PassHashOpts{ NumPartitions: ptr(4), MemoryBudget: ptr(10), MaxPasses: ptr(3) })

		records := make(Records, 500)
		for i := range records { records[i] = Record{ Key: []byte("same"), Value: []byte{ byte(i) } } }

		buckets, partitionErr := passHash.PartitionRecursive(context.Background(), records)
		require.NoError(t, partitionErr)
		defer CloseBuckets(buckets)

		require.Len(t, buckets, 1)
		assert.Equal(t, 3, buckets[0].Pass)
		assert.Len(t, buckets[0].Path, 3)
		assert.Equal(t, 500, buckets[0].Partition.Len())
	})

	t.Run("Test Single Pass", func(t *testing.T) {
		passHash := newTestPassHash(t, PassHashOpts{ NumPartitions: ptr(2), MemoryBudget: ptr(1), MaxPasses: ptr(1) })

		buckets, partitionErr := passHash.PartitionRecursive(context.Background(), intRecords(100, "v"))
		require.NoError(t, partitionErr)
		defer CloseBuckets(buckets)

		total := 0
		for _, bucket := range buckets {
			assert.Equal(t, FirstPass, bucket.Pass)
			total += bucket.Partition.Len()
		}

		assert.Len(t, buckets, 2)
		assert.Equal(t, 100, total)
	})

	t.Run("Test Empty Source", func(t *testing.T) {
		passHash := newTestPassHash(t, PassHashOpts{})

		buckets, partitionErr := passHash.PartitionRecursive(context.Background(), Records{})
		require.NoError(t, partitionErr)
		assert.Empty(t, buckets)
	})
}


type failingSource struct {
	err error
}

func (source failingSource) Iterate(fn func(record Record) error) error {
	if fnErr := fn(Record{ Key: []byte("first") }); fnErr != nil { return fnErr }
	return source.err
}
