package vfat

import "errors"

// Canonical error kinds surfaced by the engine. Callers match these with
// errors.Is; internal code wraps them with checkpoint.Wrap so the original
// caller site is retained for diagnostics.
var (
	ErrMBRInvalid           = errors.New("mbr: no valid fat32 partition found")
	ErrFreeClusterNotFound  = errors.New("fat table: no free cluster available")
	ErrNameAlreadyInUse     = errors.New("directory: name already in use")
	ErrIO                   = errors.New("block device i/o error")
	ErrInvalidVfat          = errors.New("not a valid vfat filesystem")
	ErrNonEmptyDirectory    = errors.New("directory is not empty")
	ErrFileNotFound         = errors.New("file not found")
	ErrEntryNotFound        = errors.New("directory entry not found")
	ErrCannotDeletePseudoDir = errors.New("cannot delete '.' or '..'")
	ErrInvalidInput         = errors.New("invalid input")

	// errOverflow is an internal safety-check variant, not part of the
	// canonical surfaced kinds but used the same way.
	errOverflow = errors.New("arithmetic overflow")
)
