package vfat_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/iris-fs/vfat"
)

// fixedClock gives tests deterministic Created/Modified timestamps.
type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

func testClock() vfat.Option {
	return vfat.WithClock(fixedClock{now: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)})
}

// S1: mounting reads the volume label, and an otherwise empty root
// enumerates to exactly one entry: the volume-id slot named after the label.
func TestMountAndEnumerateEmptyRoot(t *testing.T) {
	fsHandle, _ := mount(defaultFixture(), testClock())

	require.Equal(t, "IRISVOL", fsHandle.Label())

	root, err := fsHandle.Root()
	require.NoError(t, err)

	entries, err := root.Contents()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "IRISVOL", entries[0].Name)
	require.True(t, entries[0].IsVolumeID())
}

// S2: create a file, write to it, read it back, then delete it.
func TestFileWriteReadDeleteRoundTrip(t *testing.T) {
	fsHandle, _ := mount(defaultFixture(), testClock())

	root, err := fsHandle.Root()
	require.NoError(t, err)

	file, err := root.CreateFile("hello.txt")
	require.NoError(t, err)

	n, err := file.Write([]byte("hello, world"))
	require.NoError(t, err)
	require.Equal(t, 12, n)
	require.EqualValues(t, 12, file.Size())

	reopened, err := fsHandle.OpenFile("/hello.txt")
	require.NoError(t, err)
	buf := make([]byte, reopened.Size())
	n, err = reopened.Read(buf)
	require.NoError(t, err)
	require.Equal(t, "hello, world", string(buf[:n]))

	require.NoError(t, root.Delete("hello.txt"))

	_, err = fsHandle.GetPath("/hello.txt")
	require.Error(t, err)
}

// S3: a long file name round-trips through LFN slots and Contents().
func TestLongFileNameRoundTrip(t *testing.T) {
	fsHandle, _ := mount(defaultFixture(), testClock())

	root, err := fsHandle.Root()
	require.NoError(t, err)

	const longName = "a-much-longer-descriptive-file-name.txt"
	_, err = root.CreateFile(longName)
	require.NoError(t, err)

	entries, err := root.Contents()
	require.NoError(t, err)

	var found bool
	for _, e := range entries {
		if e.Name == longName {
			found = true
		}
	}
	require.True(t, found, "expected to find %q among %v", longName, entries)
}

// S4: writing past a single cluster's worth of data grows the chain and the
// bytes remain readable back in order across the boundary.
func TestWriteAcrossClusterBoundary(t *testing.T) {
	f := defaultFixture()
	fsHandle, _ := mount(f, testClock())

	root, err := fsHandle.Root()
	require.NoError(t, err)

	file, err := root.CreateFile("big.bin")
	require.NoError(t, err)

	payload := strings.Repeat("x", f.SectorSize) + strings.Repeat("y", f.SectorSize/2)
	n, err := file.Write([]byte(payload))
	require.NoError(t, err)
	require.Equal(t, len(payload), n)

	reopened, err := fsHandle.OpenFile("/big.bin")
	require.NoError(t, err)
	buf := make([]byte, reopened.Size())
	n, err = reopened.Read(buf)
	require.NoError(t, err)
	require.Equal(t, payload, string(buf[:n]))
}

// S5: a non-empty directory cannot be deleted; once emptied, it can.
func TestNonEmptyDirectoryDeletionIsRejected(t *testing.T) {
	fsHandle, _ := mount(defaultFixture(), testClock())

	root, err := fsHandle.Root()
	require.NoError(t, err)

	sub, err := root.CreateDirectory("docs")
	require.NoError(t, err)

	_, err = sub.CreateFile("note.txt")
	require.NoError(t, err)

	err = root.Delete("docs")
	require.ErrorIs(t, err, vfat.ErrNonEmptyDirectory)

	require.NoError(t, sub.Delete("note.txt"))
	require.NoError(t, root.Delete("docs"))
}

// S6: a freshly created file has no allocated cluster until the first
// write, and Size starts at 0.
func TestEmptyFileHasNoClusterUntilFirstWrite(t *testing.T) {
	fsHandle, _ := mount(defaultFixture(), testClock())

	root, err := fsHandle.Root()
	require.NoError(t, err)

	file, err := root.CreateFile("empty.txt")
	require.NoError(t, err)
	require.EqualValues(t, 0, file.Size())

	info, err := file.Stat()
	require.NoError(t, err)
	require.Equal(t, vfat.FreeClusterSentinel, info.Sys().(vfat.Metadata).FirstCluster)

	buf := make([]byte, 16)
	n, err := file.Read(buf)
	require.NoError(t, err)
	require.Equal(t, 0, n)

	n, err = file.Write([]byte("now it has data"))
	require.NoError(t, err)
	require.Equal(t, len("now it has data"), n)

	info, err = file.Stat()
	require.NoError(t, err)
	require.NotEqual(t, vfat.FreeClusterSentinel, info.Sys().(vfat.Metadata).FirstCluster)
}

// Subdirectories created under a directory get working '.' and '..' pseudo
// entries, and nested path resolution works through GetPath.
func TestNestedDirectoryPseudoEntriesAndPathResolution(t *testing.T) {
	fsHandle, _ := mount(defaultFixture(), testClock())

	root, err := fsHandle.Root()
	require.NoError(t, err)

	sub, err := root.CreateDirectory("a")
	require.NoError(t, err)
	_, err = sub.CreateDirectory("b")
	require.NoError(t, err)

	entries, err := sub.Contents()
	require.NoError(t, err)

	names := map[string]bool{}
	for _, e := range entries {
		names[e.Name] = true
	}
	require.True(t, names["."])
	require.True(t, names[".."])
	require.True(t, names["b"])

	meta, err := fsHandle.GetPath("/a/b")
	require.NoError(t, err)
	require.True(t, meta.IsDirectory())
}

// Creating an entry with a name already in use is rejected.
func TestCreateDuplicateNameRejected(t *testing.T) {
	fsHandle, _ := mount(defaultFixture(), testClock())

	root, err := fsHandle.Root()
	require.NoError(t, err)

	_, err = root.CreateFile("dup.txt")
	require.NoError(t, err)

	_, err = root.CreateFile("dup.txt")
	require.ErrorIs(t, err, vfat.ErrNameAlreadyInUse)
}
