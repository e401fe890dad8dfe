package passhash

import "testing"

import "github.com/stretchr/testify/assert"
import "github.com/stretchr/testify/require"

import "github.com/sirgallo/passhash/common/codec"


func collect(t *testing.T, src RecordSource) Records {
	var records Records
	require.NoError(t, src.Iterate(func(record Record) error {
		records = append(records, record)
		return nil
	}))

	return records
}


func TestPartitions(t *testing.T) {
	input := append(intRecords(200, "value-"), Record{ Key: []byte{}, Value: nil }, Record{ Key: []byte("k"), Value: []byte{} })

	t.Run("Test Memory Partition", func(t *testing.T) {
		partition := &memPartition{}
		for _, record := range input { require.NoError(t, partition.Add(record)) }

		assert.Equal(t, len(input), partition.Len())
		assert.Equal(t, input, collect(t, partition))
		assert.NoError(t, partition.Close())
	})

	for _, compression := range []codec.Compression{ codec.None, codec.LZ4, codec.Zstd } {
		t.Run("Test Spill Partition " + compression.String(), func(t *testing.T) {
			dir := t.TempDir()
			partition := &spillPartition{ dir: dir, compression: compression, frameSize: 64, framePool: NewFramePool(1, 64) }

			for _, record := range input { require.NoError(t, partition.Add(record)) }

			require.NotNil(t, partition.file)
			assert.Greater(t, partition.file.Len(), 1)
			assert.Equal(t, len(input), partition.Len())

			read := collect(t, partition)
			require.Len(t, read, len(input))
			for idx := range input {
				assert.Equal(t, input[idx].Key, read[idx].Key)
				assert.Equal(t, input[idx].Value, read[idx].Value)
			}

			// replaying twice yields the same records
			assert.Len(t, collect(t, partition), len(input))

			require.NoError(t, partition.Close())
			require.NoError(t, partition.Close())
			assert.ErrorIs(t, partition.Add(input[0]), ErrSpillClosed)
			assertDirEmpty(t, dir)
		})
	}

	t.Run("Test Small Spill Partition Stays In Memory", func(t *testing.T) {
		dir := t.TempDir()
		partition := &spillPartition{ dir: dir, compression: codec.LZ4, frameSize: DefaultFrameSize, framePool: NewFramePool(1, DefaultFrameSize) }

		require.NoError(t, partition.Add(Record{ Key: []byte("a"), Value: []byte("1") }))
		assert.Nil(t, partition.file)
		assertDirEmpty(t, dir)

		read := collect(t, partition)
		require.Len(t, read, 1)
		assert.Equal(t, []byte("a"), read[0].Key)
		require.NoError(t, partition.Close())
	})

	t.Run("Test Corrupt Records", func(t *testing.T) {
		noop := func(Record) error { return nil }

		assert.ErrorIs(t, decodeRecords([]byte{ 0x05, 'a' }, noop), ErrCorruptFrame)
		assert.ErrorIs(t, decodeRecords([]byte{ 0x02, 'a', 0x03 }, noop), ErrCorruptFrame)
		assert.ErrorIs(t, decodeRecords([]byte{ 0x02, 'a' }, noop), ErrCorruptFrame)
		assert.ErrorIs(t, decodeRecords([]byte{ 0x80 }, noop), ErrCorruptFrame)

		encoded := appendRecord(nil, Record{ Key: []byte("key"), Value: []byte("value") })
		assert.Equal(t, []byte("\x04key\x06value"), encoded)
	})

	t.Run("Test Nil And Empty Fields Round Trip", func(t *testing.T) {
		encoded := appendRecord(nil, Record{ Key: []byte{}, Value: nil })
		assert.Equal(t, []byte{ 0x01, 0x00 }, encoded)

		var read Records
		require.NoError(t, decodeRecords(encoded, func(record Record) error {
			read = append(read, record)
			return nil
		}))

		require.Len(t, read, 1)
		assert.NotNil(t, read[0].Key)
		assert.Empty(t, read[0].Key)
		assert.Nil(t, read[0].Value)
	})
}
