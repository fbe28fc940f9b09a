package vfat

import (
	"fmt"
	"os"

	"github.com/iris-fs/vfat/checkpoint"
)

// File is a façade over a cluster chain backing a single file: metadata
// plus a byte cursor. It is created by Directory.CreateFile or by looking
// up an existing entry through Fs.Open.
type File struct {
	fs     *Fs
	meta   Metadata
	parent *Directory
	cursor int64
}

// Name returns the file's base name.
func (f *File) Name() string {
	return f.meta.Name
}

// Size returns the file's recorded size.
func (f *File) Size() int64 {
	return int64(f.meta.Size)
}

// Read reads up to len(buf) bytes starting at the current cursor, bounded
// by the file's recorded size. It is a no-op returning (0, nil) if the
// file's cluster is unallocated or the cursor is already past the size.
func (f *File) Read(buf []byte) (int, error) {
	if f.meta.FirstCluster == FreeClusterSentinel {
		return 0, nil
	}
	if f.cursor >= int64(f.meta.Size) {
		return 0, nil
	}

	remaining := int64(f.meta.Size) - f.cursor
	want := buf
	if int64(len(want)) > remaining {
		want = want[:remaining]
	}

	reader := NewClusterChainReader(f.fs.table, f.fs.partition, f.meta.FirstCluster)
	if err := reader.Seek(f.cursor); err != nil {
		return 0, err
	}
	n, err := reader.Read(want)
	f.cursor += int64(n)
	return n, err
}

// ReadAt reads len(buf) bytes (bounded by size) starting at off, without
// disturbing the file's cursor.
func (f *File) ReadAt(buf []byte, off int64) (int, error) {
	saved := f.cursor
	f.cursor = off
	n, err := f.Read(buf)
	f.cursor = saved
	return n, err
}

// Write writes buf at the current cursor, allocating a first cluster and
// persisting the updated parent directory slot if this is the file's first
// write, and extending its recorded size if the write grows past it.
func (f *File) Write(buf []byte) (int, error) {
	if len(buf) == 0 {
		return 0, nil
	}

	if f.meta.FirstCluster == FreeClusterSentinel {
		cluster, err := f.fs.table.AllocateNewEntry()
		if err != nil {
			return 0, err
		}
		f.meta.FirstCluster = cluster
		if f.parent != nil {
			if err := f.parent.updateEntry(f.meta.Name, f.meta); err != nil {
				return 0, err
			}
		}
	}

	writer, err := NewClusterChainWriter(f.fs.table, f.fs.partition, f.meta.FirstCluster)
	if err != nil {
		return 0, err
	}
	if err := writer.Seek(f.cursor); err != nil {
		return 0, err
	}

	n, err := writer.Write(buf)
	f.cursor += int64(n)

	if uint32(f.cursor) > f.meta.Size {
		f.meta.Size = uint32(f.cursor)
		f.meta.Modified = f.fs.clock.Now()
		if f.parent != nil {
			if updateErr := f.parent.updateEntry(f.meta.Name, f.meta); updateErr != nil && err == nil {
				err = updateErr
			}
		}
	}

	return n, err
}

// WriteAt writes buf at off without leaving the cursor there afterward.
func (f *File) WriteAt(buf []byte, off int64) (int, error) {
	saved := f.cursor
	f.cursor = off
	n, err := f.Write(buf)
	f.cursor = saved
	return n, err
}

// WriteString writes s as UTF-8 bytes via Write.
func (f *File) WriteString(s string) (int, error) {
	return f.Write([]byte(s))
}

// Seek repositions the cursor per io.Seeker semantics (absolute,
// current-relative, end-relative). A resulting negative cursor is rejected.
func (f *File) Seek(offset int64, whence int) (int64, error) {
	var target int64
	switch whence {
	case os.SEEK_SET:
		target = offset
	case os.SEEK_CUR:
		target = f.cursor + offset
	case os.SEEK_END:
		target = int64(f.meta.Size) + offset
	default:
		return 0, checkpoint.From(fmt.Errorf("%w: unknown whence %d", ErrInvalidInput, whence))
	}

	if target < 0 {
		return 0, checkpoint.From(fmt.Errorf("%w: negative seek result", ErrInvalidInput))
	}

	f.cursor = target
	return f.cursor, nil
}

// Truncate sets the file's recorded size only: the backing chain is neither
// extended nor shrunk, so shrinking does not free trailing clusters.
func (f *File) Truncate(size int64) error {
	f.meta.Size = uint32(size)
	f.meta.Modified = f.fs.clock.Now()
	if f.parent != nil {
		return f.parent.updateEntry(f.meta.Name, f.meta)
	}
	return nil
}

// Close is a no-op: there is no buffered state to flush beyond what each
// Write already persisted.
func (f *File) Close() error {
	return nil
}

// Sync is a no-op for the same reason as Close.
func (f *File) Sync() error {
	return nil
}

// Stat returns an os.FileInfo view of the file's metadata.
func (f *File) Stat() (os.FileInfo, error) {
	return metadataFileInfo{meta: f.meta}, nil
}

// Readdir is only meaningful for directories opened through the afero
// adapter; File (a regular file handle) always returns ErrInvalidInput.
func (f *File) Readdir(count int) ([]os.FileInfo, error) {
	return nil, checkpoint.From(fmt.Errorf("%w: Readdir on a regular file", ErrInvalidInput))
}

// Readdirnames mirrors Readdir's restriction.
func (f *File) Readdirnames(n int) ([]string, error) {
	return nil, checkpoint.From(fmt.Errorf("%w: Readdirnames on a regular file", ErrInvalidInput))
}
