package vfat

import (
	"os"
	"time"
)

// metadataFileInfo adapts Metadata to os.FileInfo for Stat calls and afero
// directory listings.
type metadataFileInfo struct {
	meta Metadata
}

func (i metadataFileInfo) Name() string { return i.meta.Name }
func (i metadataFileInfo) Size() int64  { return int64(i.meta.Size) }

func (i metadataFileInfo) Mode() os.FileMode {
	mode := os.FileMode(0644)
	if i.meta.IsDirectory() {
		mode = os.ModeDir | 0755
	}
	if i.meta.Attributes&AttrReadOnly != 0 {
		mode &^= 0222
	}
	return mode
}

func (i metadataFileInfo) ModTime() time.Time { return i.meta.Modified }
func (i metadataFileInfo) IsDir() bool        { return i.meta.IsDirectory() }
func (i metadataFileInfo) Sys() interface{}   { return i.meta }
