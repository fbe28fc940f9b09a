package vfat

import (
	"io"
	"io/fs"
	"strings"
)

// IOFs adapts Fs to io/fs.FS, so the engine can be consumed by anything
// that accepts the standard library's filesystem abstraction (fs.WalkDir,
// fs.Glob, html/template.ParseFS, ...).
type IOFs struct {
	fs *Fs
}

// NewIOFs wraps fs as an io/fs.FS.
func NewIOFs(fsHandle *Fs) *IOFs {
	return &IOFs{fs: fsHandle}
}

var _ fs.FS = (*IOFs)(nil)
var _ fs.ReadDirFS = (*IOFs)(nil)

func toIOFSPath(name string) string {
	if name == "." {
		return "/"
	}
	return "/" + strings.TrimPrefix(name, "/")
}

// Open implements fs.FS.
func (i *IOFs) Open(name string) (fs.File, error) {
	if !fs.ValidPath(name) {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrInvalid}
	}

	meta, err := i.fs.GetPath(toIOFSPath(name))
	if err != nil {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
	}

	if meta.IsDirectory() {
		return &ioFsDir{dir: &Directory{fs: i.fs, Meta: meta}}, nil
	}

	parent, err := i.fs.OpenDir(meta.ParentPath)
	if err != nil {
		return nil, err
	}
	return &ioFsFile{file: &File{fs: i.fs, meta: meta, parent: parent}}, nil
}

// ReadDir implements fs.ReadDirFS.
func (i *IOFs) ReadDir(name string) ([]fs.DirEntry, error) {
	meta, err := i.fs.GetPath(toIOFSPath(name))
	if err != nil {
		return nil, &fs.PathError{Op: "readdir", Path: name, Err: fs.ErrNotExist}
	}
	dir := &Directory{fs: i.fs, Meta: meta}
	children, err := dir.Contents()
	if err != nil {
		return nil, err
	}

	entries := make([]fs.DirEntry, 0, len(children))
	for _, c := range children {
		if c.Name == "." || c.Name == ".." {
			continue
		}
		entries = append(entries, ioFsDirEntry{meta: c})
	}
	return entries, nil
}

type ioFsDirEntry struct {
	meta Metadata
}

func (e ioFsDirEntry) Name() string { return e.meta.Name }
func (e ioFsDirEntry) IsDir() bool  { return e.meta.IsDirectory() }
func (e ioFsDirEntry) Type() fs.FileMode {
	if e.meta.IsDirectory() {
		return fs.ModeDir
	}
	return 0
}
func (e ioFsDirEntry) Info() (fs.FileInfo, error) {
	return metadataFileInfo{meta: e.meta}, nil
}

type ioFsFile struct {
	file *File
}

func (f *ioFsFile) Stat() (fs.FileInfo, error) { return f.file.Stat() }
func (f *ioFsFile) Close() error               { return f.file.Close() }

// Read reports io.EOF once the file has nothing more to give, as fs.File
// readers such as fs.ReadFile expect.
func (f *ioFsFile) Read(p []byte) (int, error) {
	n, err := f.file.Read(p)
	if n == 0 && err == nil && len(p) > 0 {
		return 0, io.EOF
	}
	return n, err
}

type ioFsDir struct {
	dir *Directory
}

func (d *ioFsDir) Stat() (fs.FileInfo, error) { return metadataFileInfo{meta: d.dir.Meta}, nil }
func (d *ioFsDir) Read([]byte) (int, error) {
	return 0, &fs.PathError{Op: "read", Path: d.dir.Meta.Path, Err: fs.ErrInvalid}
}
func (d *ioFsDir) Close() error { return nil }

func (d *ioFsDir) ReadDir(n int) ([]fs.DirEntry, error) {
	children, err := d.dir.Contents()
	if err != nil {
		return nil, err
	}
	entries := make([]fs.DirEntry, 0, len(children))
	for _, c := range children {
		if c.Name == "." || c.Name == ".." {
			continue
		}
		entries = append(entries, ioFsDirEntry{meta: c})
	}
	if n > 0 && n < len(entries) {
		entries = entries[:n]
	}
	return entries, nil
}

var _ fs.ReadDirFile = (*ioFsDir)(nil)
