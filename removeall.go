package vfat

import (
	"github.com/hashicorp/go-multierror"
)

// removeAllPath recursively deletes path and, for a directory, everything
// beneath it, bottom-up so every child is empty by the time its parent is
// deleted. Per-child failures are aggregated with go-multierror instead of
// aborting early, matching the "best-effort cleanup" idiom: a single
// unreadable descendant shouldn't block removal of its unrelated siblings.
func removeAllPath(fs *Fs, p string) error {
	meta, err := fs.GetPath(p)
	if err != nil {
		if errIsEntryNotFound(err) {
			return nil
		}
		return err
	}

	var errs *multierror.Error

	if meta.IsDirectory() {
		dir := &Directory{fs: fs, Meta: meta}
		children, err := dir.Contents()
		if err != nil {
			return err
		}
		for _, child := range children {
			if child.Name == "." || child.Name == ".." {
				continue
			}
			if err := removeAllPath(fs, child.Path); err != nil {
				errs = multierror.Append(errs, err)
			}
		}
	}

	if errs.ErrorOrNil() != nil {
		return errs
	}

	dirPath, base := splitParent(p)
	parent, err := fs.OpenDir(dirPath)
	if err != nil {
		return err
	}
	return parent.Delete(base)
}
