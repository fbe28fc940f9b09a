package vfat

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/afero"

	"github.com/iris-fs/vfat/checkpoint"
)

// AferoFs adapts Fs to afero.Fs, making the engine usable anywhere afero's
// filesystem abstraction is expected (the CLI's rm command goes through it).
type AferoFs struct {
	fs *Fs
}

// NewAferoFs wraps fs as an afero.Fs.
func NewAferoFs(fs *Fs) *AferoFs {
	return &AferoFs{fs: fs}
}

var _ afero.Fs = (*AferoFs)(nil)

// Name returns a human-readable label for this filesystem implementation.
func (a *AferoFs) Name() string {
	return "vfat:" + a.fs.Label()
}

// aferoHandle adapts either a File or a Directory to afero.File.
type aferoHandle struct {
	file *File
	dir  *Directory
}

var _ afero.File = (*aferoHandle)(nil)

func (h *aferoHandle) Read(p []byte) (int, error) {
	if h.file == nil {
		return 0, checkpoint.From(fmt.Errorf("%w: read on a directory", ErrInvalidInput))
	}
	n, err := h.file.Read(p)
	if n == 0 && err == nil && len(p) > 0 {
		return 0, io.EOF
	}
	return n, err
}

func (h *aferoHandle) ReadAt(p []byte, off int64) (int, error) {
	if h.file == nil {
		return 0, checkpoint.From(fmt.Errorf("%w: read on a directory", ErrInvalidInput))
	}
	return h.file.ReadAt(p, off)
}

func (h *aferoHandle) Write(p []byte) (int, error) {
	if h.file == nil {
		return 0, checkpoint.From(fmt.Errorf("%w: write on a directory", ErrInvalidInput))
	}
	return h.file.Write(p)
}

func (h *aferoHandle) WriteAt(p []byte, off int64) (int, error) {
	if h.file == nil {
		return 0, checkpoint.From(fmt.Errorf("%w: write on a directory", ErrInvalidInput))
	}
	return h.file.WriteAt(p, off)
}

func (h *aferoHandle) WriteString(s string) (int, error) {
	return h.Write([]byte(s))
}

func (h *aferoHandle) Seek(offset int64, whence int) (int64, error) {
	if h.file == nil {
		return 0, checkpoint.From(fmt.Errorf("%w: seek on a directory", ErrInvalidInput))
	}
	return h.file.Seek(offset, whence)
}

func (h *aferoHandle) Close() error { return nil }
func (h *aferoHandle) Sync() error  { return nil }

func (h *aferoHandle) Truncate(size int64) error {
	if h.file == nil {
		return checkpoint.From(fmt.Errorf("%w: truncate on a directory", ErrInvalidInput))
	}
	return h.file.Truncate(size)
}

func (h *aferoHandle) Name() string {
	if h.file != nil {
		return h.file.Name()
	}
	return h.dir.Meta.Name
}

func (h *aferoHandle) Stat() (os.FileInfo, error) {
	if h.file != nil {
		return h.file.Stat()
	}
	return metadataFileInfo{meta: h.dir.Meta}, nil
}

func (h *aferoHandle) Readdir(count int) ([]os.FileInfo, error) {
	if h.dir == nil {
		return nil, checkpoint.From(fmt.Errorf("%w: readdir on a file", ErrInvalidInput))
	}
	entries, err := h.dir.Contents()
	if err != nil {
		return nil, err
	}

	infos := make([]os.FileInfo, 0, len(entries))
	for _, e := range entries {
		if e.Name == "." || e.Name == ".." {
			continue
		}
		infos = append(infos, metadataFileInfo{meta: e})
	}
	if count > 0 && count < len(infos) {
		infos = infos[:count]
	}
	return infos, nil
}

func (h *aferoHandle) Readdirnames(n int) ([]string, error) {
	infos, err := h.Readdir(n)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(infos))
	for i, info := range infos {
		names[i] = info.Name()
	}
	return names, nil
}

// Open resolves name read-only, returning either a file or directory
// handle.
func (a *AferoFs) Open(name string) (afero.File, error) {
	meta, err := a.fs.GetPath(name)
	if err != nil {
		return nil, err
	}
	if meta.IsDirectory() {
		return &aferoHandle{dir: &Directory{fs: a.fs, Meta: meta}}, nil
	}
	parentDir, err := a.fs.OpenDir(meta.ParentPath)
	if err != nil {
		return nil, err
	}
	return &aferoHandle{file: &File{fs: a.fs, meta: meta, parent: parentDir}}, nil
}

// OpenFile implements afero.Fs; flag/perm beyond O_CREATE are accepted but
// not enforced (no permission model beyond the READ_ONLY attribute bit).
func (a *AferoFs) OpenFile(name string, flag int, perm os.FileMode) (afero.File, error) {
	exists, err := a.fs.PathExists(name)
	if err != nil {
		return nil, err
	}
	if !exists {
		if flag&os.O_CREATE == 0 {
			return nil, checkpoint.From(fmt.Errorf("%w: %s", ErrFileNotFound, name))
		}
		if _, err := a.Create(name); err != nil {
			return nil, err
		}
	}
	return a.Open(name)
}

// Create creates an empty file at name, whose parent directory must
// already exist.
func (a *AferoFs) Create(name string) (afero.File, error) {
	dirPath, base := splitParent(name)
	parent, err := a.fs.OpenDir(dirPath)
	if err != nil {
		return nil, err
	}
	file, err := parent.CreateFile(base)
	if err != nil {
		return nil, err
	}
	return &aferoHandle{file: file}, nil
}

// Mkdir creates a single directory level at name.
func (a *AferoFs) Mkdir(name string, _ os.FileMode) error {
	dirPath, base := splitParent(name)
	parent, err := a.fs.OpenDir(dirPath)
	if err != nil {
		return err
	}
	_, err = parent.CreateDirectory(base)
	return err
}

// MkdirAll creates name and any missing parents.
func (a *AferoFs) MkdirAll(name string, perm os.FileMode) error {
	parts := SplitPath(name)
	current := "/"
	for _, part := range parts {
		next := JoinPath(current, part)
		exists, err := a.fs.PathExists(next)
		if err != nil {
			return err
		}
		if !exists {
			if err := a.Mkdir(next, perm); err != nil {
				return err
			}
		}
		current = next
	}
	return nil
}

// Remove deletes a single entry (must already be empty if a directory).
func (a *AferoFs) Remove(name string) error {
	dirPath, base := splitParent(name)
	parent, err := a.fs.OpenDir(dirPath)
	if err != nil {
		return err
	}
	return parent.Delete(base)
}

// RemoveAll recursively deletes name and, if it is a directory, its
// contents, aggregating any non-fatal per-child failures.
func (a *AferoFs) RemoveAll(name string) error {
	return removeAllPath(a.fs, name)
}

// Rename is not supported: the spec's directory façade has no in-place
// rename/move primitive (creation always allocates a new slot run, and
// deletion only ever marks a slot Deleted).
func (a *AferoFs) Rename(oldname, newname string) error {
	return checkpoint.From(fmt.Errorf("%w: rename is not supported", ErrInvalidInput))
}

// Stat resolves name and returns its FileInfo.
func (a *AferoFs) Stat(name string) (os.FileInfo, error) {
	meta, err := a.fs.GetPath(name)
	if err != nil {
		return nil, err
	}
	return metadataFileInfo{meta: meta}, nil
}

// Chmod, Chtimes, and Chown have no on-disk representation beyond the
// attribute byte and timestamps the spec already covers through normal
// writes; they are accepted as no-ops rather than returning an error since
// afero.Walk and similar helpers call Stat, not these, for their decisions.
func (a *AferoFs) Chmod(name string, mode os.FileMode) error                   { return nil }
func (a *AferoFs) Chtimes(name string, atime, mtime time.Time) error           { return nil }
func (a *AferoFs) Chown(name string, uid, gid int) error                      { return nil }

func splitParent(p string) (dir, base string) {
	parts := SplitPath(p)
	if len(parts) == 0 {
		return "/", ""
	}
	base = parts[len(parts)-1]
	dir = "/" + joinParts(parts[:len(parts)-1])
	return dir, base
}

func joinParts(parts []string) string {
	out := ""
	for i, p := range parts {
		if i > 0 {
			out += "/"
		}
		out += p
	}
	return out
}
