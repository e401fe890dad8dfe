package passhash

import "bytes"
import "testing"

import "github.com/stretchr/testify/assert"
import "github.com/stretchr/testify/require"

import "github.com/sirgallo/passhash/common/mmap"


func TestSpillFile(t *testing.T) {
	t.Run("Test Append And Read Frames", func(t *testing.T) {
		spillFile, openErr := OpenSpillFile(t.TempDir())
		require.NoError(t, openErr)
		defer spillFile.Remove()

		frames := [][]byte{ []byte("first"), {}, []byte("third frame") }
		for _, frame := range frames { require.NoError(t, spillFile.Append(frame)) }

		assert.Equal(t, len(frames), spillFile.Len())
		assert.Equal(t, uint64(3 * frameLenSize + 5 + 0 + 11), spillFile.EndOffset)
		require.NoError(t, spillFile.Flush())

		var read [][]byte
		require.NoError(t, spillFile.Frames(func(frame []byte) error {
			read = append(read, bytes.Clone(frame))
			return nil
		}))

		assert.Equal(t, frames, read)
	})

	t.Run("Test Resize", func(t *testing.T) {
		spillFile, openErr := OpenSpillFile(t.TempDir())
		require.NoError(t, openErr)
		defer spillFile.Remove()

		frame := bytes.Repeat([]byte{ 0xab }, 4096)
		total := 3 * initialSpillPages * mmap.PageSize / len(frame)
		for i := 0; i < total; i++ {
			frame[0] = byte(i)
			require.NoError(t, spillFile.Append(frame))
		}

		assert.Greater(t, len(spillFile.Data), initialSpillPages * mmap.PageSize)

		count := 0
		require.NoError(t, spillFile.Frames(func(read []byte) error {
			assert.Len(t, read, len(frame))
			assert.Equal(t, byte(count), read[0])
			count++
			return nil
		}))

		assert.Equal(t, total, count)
	})

	t.Run("Test Oversized Frame", func(t *testing.T) {
		spillFile, openErr := OpenSpillFile(t.TempDir())
		require.NoError(t, openErr)
		defer spillFile.Remove()

		frame := make([]byte, 5 * initialSpillPages * mmap.PageSize)
		require.NoError(t, spillFile.Append(frame))
		assert.GreaterOrEqual(t, len(spillFile.Data), len(frame) + frameLenSize)
	})

	t.Run("Test Remove", func(t *testing.T) {
		dir := t.TempDir()
		spillFile, openErr := OpenSpillFile(dir)
		require.NoError(t, openErr)

		path := spillFile.Filepath
		require.NoError(t, spillFile.Append([]byte("frame")))
		require.NoError(t, spillFile.Remove())
		require.NoError(t, spillFile.Remove())

		assert.NoFileExists(t, path)
		assert.Empty(t, spillFile.Filepath)
		assert.ErrorIs(t, spillFile.Append([]byte("late")), ErrSpillClosed)
		assert.ErrorIs(t, spillFile.Frames(func([]byte) error { return nil }), ErrSpillClosed)
		assertDirEmpty(t, dir)
	})
}
