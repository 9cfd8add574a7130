package mirror

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func openComposite(t *testing.T, numMirrors int) *Composite {
	t.Helper()
	dir := t.TempDir()
	mirrorPaths := make([]string, numMirrors)
	for i := range mirrorPaths {
		mirrorPaths[i] = filepath.Join(dir, "mirror"+string(rune('0'+i)))
	}
	c, err := Open(filepath.Join(dir, "primary"), mirrorPaths, os.O_RDWR|os.O_CREATE, 0o600)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestWriteReadRoundTrip(t *testing.T) {
	c := openComposite(t, 2)
	data := []byte("hello mirrored world")
	require.NoError(t, c.WriteAt(data, 0))

	buf := make([]byte, len(data))
	require.NoError(t, c.ReadAt(buf, 0))
	require.Equal(t, data, buf)
	require.False(t, c.Bad())
}

func TestMirrorCorruptionDetected(t *testing.T) {
	c := openComposite(t, 1)

	record := make([]byte, 16)
	for i := 0; i < 100; i++ {
		for j := range record {
			record[j] = byte(i)
		}
		require.NoError(t, c.WriteAt(record, int64(i*len(record))))
	}

	// Flip a byte in the mirror behind the composite's back (S3).
	require.NoError(t, FlipMirrorByte(c, 0, 5))

	buf := make([]byte, len(record))
	err := c.ReadAt(buf, 0)
	require.Error(t, err)
	var corrupt *ErrCorrupt
	require.ErrorAs(t, err, &corrupt)
	require.Equal(t, int64(5), corrupt.Offset)
	require.True(t, c.Bad())
}

func TestTooManyMirrorsRejected(t *testing.T) {
	dir := t.TempDir()
	mirrorPaths := make([]string, MaxMirrors+1)
	for i := range mirrorPaths {
		mirrorPaths[i] = filepath.Join(dir, "m"+string(rune('a'+i)))
	}
	_, err := Open(filepath.Join(dir, "primary"), mirrorPaths, os.O_RDWR|os.O_CREATE, 0o600)
	require.Error(t, err)
}

func TestTruncateBroadcasts(t *testing.T) {
	c := openComposite(t, 1)
	require.NoError(t, c.WriteAt([]byte("0123456789"), 0))
	require.NoError(t, c.Truncate(5))

	n, err := c.Len()
	require.NoError(t, err)
	require.Equal(t, int64(5), n)
}
