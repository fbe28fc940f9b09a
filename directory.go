package vfat

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/iris-fs/vfat/checkpoint"
)

// Directory is a lightweight façade over a directory's cluster chain:
// enumeration, creation, deletion, and in-place metadata update. It carries
// a copy of Metadata and a handle back to the owning filesystem; it holds
// no file descriptor and does no I/O beyond what each call performs.
type Directory struct {
	fs   *Fs
	Meta Metadata
}

// scannedSlot is one physical 32-byte slot read off the directory's chain,
// tagged with its position for update/delete callers.
type scannedSlot struct {
	index int
	kind  entryKind
	raw   RawDirEntry
}

// scan reads the directory's entire cluster chain as a sequence of 32-byte
// slots. It does not stop at EndOfEntries: callers that need enumeration
// semantics stop early themselves (see Contents); callers that need to find
// free runs spanning a prior EndOfEntries marker need the full sequence.
func (d *Directory) scan() ([]scannedSlot, error) {
	d.fs.log.WithField("path", d.Meta.Path).Trace("directory: scan")

	if d.Meta.FirstCluster == FreeClusterSentinel {
		return nil, nil
	}

	reader := NewClusterChainReader(d.fs.table, d.fs.partition, d.Meta.FirstCluster)
	var slots []scannedSlot
	buf := make([]byte, rawDirEntrySize)

	for index := 0; ; index++ {
		n, err := reader.Read(buf)
		if err != nil {
			return nil, err
		}
		if n < rawDirEntrySize {
			break
		}
		raw := unmarshalRawDirEntry(buf)
		slots = append(slots, scannedSlot{index: index, kind: classifySlot(raw), raw: raw})
	}

	d.fs.log.WithFields(logrus.Fields{"path": d.Meta.Path, "slots": len(slots)}).Debug("directory: scan complete")
	return slots, nil
}

// Contents enumerates the directory, reconstructing each live entry's
// Metadata. Enumeration stops at the first EndOfEntries slot.
func (d *Directory) Contents() ([]Metadata, error) {
	slots, err := d.scan()
	if err != nil {
		return nil, err
	}

	var result []Metadata
	var lfnBuf []lfnSlot

	for _, s := range slots {
		switch s.kind {
		case entryEndOfEntries:
			return result, nil
		case entryDeleted:
			lfnBuf = nil
		case entryLFN:
			lfnBuf = append(lfnBuf, decodeRawLFN(marshalRawDirEntry(s.raw)))
		case entryRegular:
			longName := ""
			if len(lfnBuf) > 0 {
				longName = decodeLFNName(lfnBuf)
			}
			lfnBuf = nil
			result = append(result, metadataFromRegular(s.raw, longName, d.Meta.Path))
		}
	}
	return result, nil
}

// GetEntry looks up a live child by exact byte-for-byte name match.
func (d *Directory) GetEntry(name string) (Metadata, error) {
	entries, err := d.Contents()
	if err != nil {
		return Metadata{}, err
	}
	for _, e := range entries {
		if e.Name == name {
			return e, nil
		}
	}
	return Metadata{}, checkpoint.From(fmt.Errorf("%w: %s", ErrEntryNotFound, name))
}

// Contains reports whether a live entry named name exists in the directory.
func (d *Directory) Contains(name string) (bool, error) {
	_, err := d.GetEntry(name)
	if err != nil {
		if errIsEntryNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func errIsEntryNotFound(err error) bool {
	return errors.Is(err, ErrEntryNotFound) || errors.Is(err, ErrFileNotFound)
}

// liveEntryCount returns the number of non-pseudo live entries, used by the
// NonEmptyDirectory check.
func liveEntryCount(entries []Metadata) int {
	n := 0
	for _, e := range entries {
		if e.Name == "." || e.Name == ".." {
			continue
		}
		n++
	}
	return n
}

// create builds and writes the LFN+Regular slot sequence for a new entry
// named name, performing the uniqueness check, slot-run search, and (for
// directories) pseudo-entry population.
func (d *Directory) create(name string, isDirectory bool) (Metadata, error) {
	if exists, err := d.Contains(name); err != nil {
		return Metadata{}, err
	} else if exists {
		return Metadata{}, checkpoint.From(fmt.Errorf("%w: %s", ErrNameAlreadyInUse, name))
	}

	now := d.fs.clock.Now()
	meta := Metadata{
		Name:       name,
		Size:       0,
		Created:    now,
		Modified:   now,
		Path:       JoinPath(d.Meta.Path, name),
		ParentPath: d.Meta.Path,
	}
	if isDirectory {
		meta.Attributes = AttrDirectory
		cluster, err := d.fs.table.AllocateNewEntry()
		if err != nil {
			return Metadata{}, err
		}
		meta.FirstCluster = cluster
	}

	body, ext := deriveShortName(name)
	checksum := shortNameChecksum(body, ext)
	lfnSlots := buildLFNSlots(name, checksum)
	regular := buildRegularEntry(body, ext, meta)

	slotBytes := make([][]byte, 0, len(lfnSlots)+1)
	for _, s := range lfnSlots {
		slotBytes = append(slotBytes, marshalRawLFN(encodeRawLFN(s)))
	}
	slotBytes = append(slotBytes, marshalRawDirEntry(regular))

	if err := d.writeSlotsAtFreeRun(slotBytes); err != nil {
		return Metadata{}, err
	}

	if isDirectory {
		if err := d.writePseudoEntries(meta.FirstCluster); err != nil {
			return Metadata{}, err
		}
	}

	return meta, nil
}

// CreateFile creates an empty file named name. Its first cluster is 0 until
// the first write (see File.Write).
func (d *Directory) CreateFile(name string) (*File, error) {
	meta, err := d.create(name, false)
	if err != nil {
		return nil, err
	}
	return &File{fs: d.fs, meta: meta, parent: d}, nil
}

// CreateDirectory creates a new subdirectory named name, with '.' and '..'
// pseudo-entries populated in its first cluster.
func (d *Directory) CreateDirectory(name string) (*Directory, error) {
	meta, err := d.create(name, true)
	if err != nil {
		return nil, err
	}
	return &Directory{fs: d.fs, Meta: meta}, nil
}

// writePseudoEntries writes the '.' and '..' Regular slots into the first
// cluster of a newly created directory. '..' uses cluster 0 when the
// parent is this filesystem's root, per the spec's resolved convention.
func (d *Directory) writePseudoEntries(selfCluster ClusterID) error {
	parentCluster := d.Meta.FirstCluster
	if d.Meta.Path == "/" {
		parentCluster = 0
	}

	now := d.fs.clock.Now()
	dot := Metadata{Name: ".", Attributes: AttrDirectory, FirstCluster: selfCluster, Created: now, Modified: now}
	dotdot := Metadata{Name: "..", Attributes: AttrDirectory, FirstCluster: parentCluster, Created: now, Modified: now}

	dotBody, dotExt := pseudoShortName(".")
	dotDotBody, dotDotExt := pseudoShortName("..")

	writer, err := NewClusterChainWriter(d.fs.table, d.fs.partition, selfCluster)
	if err != nil {
		return err
	}
	if _, err := writer.Write(marshalRawDirEntry(buildRegularEntry(dotBody, dotExt, dot))); err != nil {
		return err
	}
	if _, err := writer.Write(marshalRawDirEntry(buildRegularEntry(dotDotBody, dotDotExt, dotdot))); err != nil {
		return err
	}
	return nil
}

// pseudoShortName renders "." or ".." directly as fixed short-name bytes
// rather than through deriveShortName, since neither is a legal long name.
func pseudoShortName(name string) (body [8]byte, ext [3]byte) {
	for i := range body {
		body[i] = ' '
	}
	copy(body[:], name)
	ext = [3]byte{' ', ' ', ' '}
	return body, ext
}

// writeSlotsAtFreeRun finds a contiguous run of free slots at least
// len(slots) long and writes them there, extending the directory's chain by
// one cluster and retrying if no such run exists.
func (d *Directory) writeSlotsAtFreeRun(slots [][]byte) error {
	required := len(slots)

	for {
		all, err := d.scan()
		if err != nil {
			return err
		}

		startIndex := -1
		run := 0
		for _, s := range all {
			if s.kind == entryEndOfEntries {
				if run == 0 {
					startIndex = s.index
				}
				run++
				if run >= required {
					break
				}
				continue
			}
			run = 0
			startIndex = -1
		}

		if run >= required {
			return d.writeSlotsAt(startIndex, slots)
		}

		// Not enough contiguous free slots in the chain: extend by one
		// cluster (or allocate the first one for an empty directory) and
		// retry from the beginning.
		if d.Meta.FirstCluster == FreeClusterSentinel {
			cluster, err := d.fs.table.AllocateNewEntry()
			if err != nil {
				return err
			}
			d.Meta.FirstCluster = cluster
			continue
		}
		if _, err := d.fs.table.AllocateToChain(d.Meta.FirstCluster); err != nil {
			return err
		}
	}
}

func (d *Directory) writeSlotsAt(startIndex int, slots [][]byte) error {
	writer, err := NewClusterChainWriter(d.fs.table, d.fs.partition, d.Meta.FirstCluster)
	if err != nil {
		return err
	}
	if err := writer.Seek(int64(startIndex) * rawDirEntrySize); err != nil {
		return err
	}
	for _, s := range slots {
		if _, err := writer.Write(s); err != nil {
			return err
		}
	}
	return nil
}

// Delete removes the named live entry: '.'/'..' are rejected, a non-empty
// directory is rejected, the entry's cluster chain is freed, and its
// Regular slot is marked Deleted in place.
func (d *Directory) Delete(name string) error {
	if name == "." || name == ".." {
		return checkpoint.From(fmt.Errorf("%w", ErrCannotDeletePseudoDir))
	}

	slots, err := d.scan()
	if err != nil {
		return err
	}

	var lfnBuf []lfnSlot
	for _, s := range slots {
		switch s.kind {
		case entryEndOfEntries:
			return checkpoint.From(fmt.Errorf("%w: %s", ErrFileNotFound, name))
		case entryDeleted:
			lfnBuf = nil
		case entryLFN:
			raw := marshalRawDirEntry(s.raw)
			lfnBuf = append(lfnBuf, decodeRawLFN(raw))
		case entryRegular:
			longName := ""
			if len(lfnBuf) > 0 {
				longName = decodeLFNName(lfnBuf)
			}
			lfnBuf = nil

			entryName := longName
			if entryName == "" {
				entryName = shortNameToString(s.raw.Name)
			}
			if entryName != name {
				continue
			}

			meta := metadataFromRegular(s.raw, longName, d.Meta.Path)
			if meta.IsDirectory() {
				child := &Directory{fs: d.fs, Meta: meta}
				contents, err := child.Contents()
				if err != nil {
					return err
				}
				if liveEntryCount(contents) > 0 {
					return checkpoint.From(fmt.Errorf("%w: %s", ErrNonEmptyDirectory, name))
				}
			}

			if meta.FirstCluster != FreeClusterSentinel {
				if err := d.fs.table.DeleteChain(meta.FirstCluster); err != nil {
					return err
				}
			}

			deleted := s.raw
			deleted.Name[0] = dirEntryDeletedMarker
			return d.rewriteSlot(s.index, deleted)
		}
	}

	return checkpoint.From(fmt.Errorf("%w: %s", ErrFileNotFound, name))
}

// rewriteSlot writes the given raw entry over the slot at index.
func (d *Directory) rewriteSlot(index int, raw RawDirEntry) error {
	writer, err := NewClusterChainWriter(d.fs.table, d.fs.partition, d.Meta.FirstCluster)
	if err != nil {
		return err
	}
	if err := writer.Seek(int64(index) * rawDirEntrySize); err != nil {
		return err
	}
	_, err = writer.Write(marshalRawDirEntry(raw))
	return err
}

// updateEntry finds the Regular slot for name and rewrites it from updated,
// used by File.Write when size or first-cluster changes after creation.
func (d *Directory) updateEntry(name string, updated Metadata) error {
	slots, err := d.scan()
	if err != nil {
		return err
	}

	var lfnBuf []lfnSlot
	for _, s := range slots {
		switch s.kind {
		case entryEndOfEntries:
			return checkpoint.From(fmt.Errorf("%w: %s", ErrFileNotFound, name))
		case entryDeleted:
			lfnBuf = nil
		case entryLFN:
			lfnBuf = append(lfnBuf, decodeRawLFN(marshalRawDirEntry(s.raw)))
		case entryRegular:
			longName := ""
			if len(lfnBuf) > 0 {
				longName = decodeLFNName(lfnBuf)
			}
			lfnBuf = nil

			entryName := longName
			if entryName == "" {
				entryName = shortNameToString(s.raw.Name)
			}
			if entryName != name {
				continue
			}

			var body [8]byte
			var ext [3]byte
			copy(body[:], s.raw.Name[0:8])
			copy(ext[:], s.raw.Name[8:11])
			newRaw := buildRegularEntry(body, ext, updated)
			return d.rewriteSlot(s.index, newRaw)
		}
	}
	return checkpoint.From(fmt.Errorf("%w: %s", ErrFileNotFound, name))
}
