package segment

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSegment_AppendSyncReadAll(t *testing.T) {
	dir := t.TempDir()
	seg, err := Open(dir, 3)
	require.NoError(t, err)

	payloads := [][]byte{[]byte("first"), []byte(""), []byte("third record")}
	var positions []Position
	for _, p := range payloads {
		pos, err := seg.Append(p)
		require.NoError(t, err)
		positions = append(positions, pos)
	}

	assert.Equal(t, Position{Segment: 3, Offset: 0}, positions[0])
	assert.Equal(t, Position{Segment: 3, Offset: 13}, positions[1])
	assert.Equal(t, Position{Segment: 3, Offset: 21}, positions[2])
	assert.Equal(t, int64(41), seg.Size())

	// Buffered records are not on disk before Sync.
	info, err := os.Stat(seg.Path())
	require.NoError(t, err)
	assert.Equal(t, int64(0), info.Size())

	require.NoError(t, seg.Sync())

	records, err := ReadAll(seg.Path())
	require.NoError(t, err)
	require.Len(t, records, 3)
	for i := range payloads {
		assert.Equal(t, payloads[i], records[i])
	}

	require.NoError(t, seg.Close())
	require.NoError(t, seg.Close(), "second close is a no-op")

	_, err = seg.Append([]byte("late"))
	require.ErrorIs(t, err, ErrClosed)
	require.ErrorIs(t, seg.Sync(), ErrClosed)
}

func TestSegment_ReopenContinuesOffset(t *testing.T) {
	dir := t.TempDir()

	seg, err := Open(dir, 1)
	require.NoError(t, err)
	_, err = seg.Append([]byte("abc"))
	require.NoError(t, err)
	require.NoError(t, seg.Close())

	seg, err = Open(dir, 1)
	require.NoError(t, err)
	defer seg.Close()

	pos, err := seg.Append([]byte("def"))
	require.NoError(t, err)
	assert.Equal(t, int64(11), pos.Offset)
	require.NoError(t, seg.Sync())

	records, err := ReadAll(filepath.Join(dir, FileName(1)))
	require.NoError(t, err)
	assert.Equal(t, [][]byte{[]byte("abc"), []byte("def")}, records)
}

func TestReadAll_Damage(t *testing.T) {
	write := func(t *testing.T) string {
		t.Helper()
		seg, err := Open(t.TempDir(), 0)
		require.NoError(t, err)
		_, err = seg.Append([]byte("intact"))
		require.NoError(t, err)
		_, err = seg.Append([]byte("damaged"))
		require.NoError(t, err)
		require.NoError(t, seg.Close())
		return seg.Path()
	}

	t.Run("torn tail", func(t *testing.T) {
		path := write(t)
		info, err := os.Stat(path)
		require.NoError(t, err)
		require.NoError(t, os.Truncate(path, info.Size()-3))

		records, err := ReadAll(path)
		require.ErrorIs(t, err, ErrTruncated)
		assert.Equal(t, [][]byte{[]byte("intact")}, records)
	})

	t.Run("torn header", func(t *testing.T) {
		path := write(t)
		require.NoError(t, os.Truncate(path, headerSize+6+4))

		records, err := ReadAll(path)
		require.ErrorIs(t, err, ErrTruncated)
		assert.Len(t, records, 1)
	})

	t.Run("flipped byte", func(t *testing.T) {
		path := write(t)
		data, err := os.ReadFile(path)
		require.NoError(t, err)
		data[len(data)-1] ^= 0xff
		require.NoError(t, os.WriteFile(path, data, 0o644))

		records, err := ReadAll(path)
		require.ErrorIs(t, err, ErrCorrupt)
		assert.Len(t, records, 1)
	})
}
