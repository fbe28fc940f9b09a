package vfat

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/iris-fs/vfat/checkpoint"
)

// Fs is the filesystem handle: the wiring point for the cached partition,
// FAT table, clock, and logger, plus root access and path resolution. It is
// cheap to copy/share; all its state is reference-counted collaborators
// (the cached partition owns the single device lock).
type Fs struct {
	partition *CachedPartition
	table     *FATTable
	clock     Clock
	log       *logrus.Logger

	label string
}

// Option configures an Fs at mount time.
type Option func(*Fs)

// WithClock overrides the wall-clock time source used for new/modified
// directory entries. Tests use this to get deterministic timestamps.
func WithClock(clock Clock) Option {
	return func(fs *Fs) { fs.clock = clock }
}

// WithLogger overrides the structured logger used for FAT-lookup and
// allocation tracing.
func WithLogger(log *logrus.Logger) Option {
	return func(fs *Fs) { fs.log = log }
}

// Open mounts a FAT32/VFAT filesystem from dev, whose partition begins at
// partitionStart. It reads and validates the BPB/EBPB, reads FAT[0] as the
// end-of-chain sentinel, and computes geometry.
func Open(dev BlockDevice, partitionStart SectorID, opts ...Option) (*Fs, error) {
	fsHandle := &Fs{clock: RealClock{}, log: logrus.StandardLogger()}
	for _, opt := range opts {
		opt(fsHandle)
	}

	geo, label, err := readBPB(dev, partitionStart)
	if err != nil {
		return nil, checkpoint.Wrap(err, ErrInvalidVfat)
	}

	fsHandle.partition = NewCachedPartition(dev, geo, fsHandle.log)
	fsHandle.table = NewFATTable(fsHandle.partition)
	fsHandle.label = label

	eoc, err := fsHandle.table.ReadEntry(0)
	if err != nil {
		return nil, checkpoint.Wrap(err, ErrInvalidVfat)
	}
	fsHandle.partition.geo.EOCMarker = eoc.encode()

	return fsHandle, nil
}

// readBPB reads and decodes the BPB+EBPB at partitionStart, validating the
// extended signature, and derives the Geometry.
func readBPB(dev BlockDevice, partitionStart SectorID) (Geometry, string, error) {
	sectorSize := dev.SectorSize()
	if sectorSize <= 0 {
		sectorSize = 512
	}

	buf := make([]byte, sectorSize)
	if _, err := dev.ReadSectorOffset(partitionStart, 0, buf); err != nil {
		return Geometry{}, "", checkpoint.Wrap(err, ErrIO)
	}

	var bpb BPB
	r := bytes.NewReader(buf[0:36])
	if err := binary.Read(r, binary.LittleEndian, &bpb); err != nil {
		return Geometry{}, "", checkpoint.From(fmt.Errorf("%w: malformed bpb: %v", ErrInvalidVfat, err))
	}

	var ebpb EBPB
	er := bytes.NewReader(buf[36:90])
	if err := binary.Read(er, binary.LittleEndian, &ebpb); err != nil {
		return Geometry{}, "", checkpoint.From(fmt.Errorf("%w: malformed ebpb: %v", ErrInvalidVfat, err))
	}

	if ebpb.BootSignature != ebpbSignature28 && ebpb.BootSignature != ebpbSignature29 {
		return Geometry{}, "", checkpoint.From(fmt.Errorf("%w: bad extended signature 0x%02x", ErrInvalidVfat, ebpb.BootSignature))
	}

	geo := Geometry{
		SectorSize:        int(bpb.BytesPerSector),
		SectorsPerCluster: int(bpb.SectorsPerCluster),
		FATStartSector:    partitionStart + SectorID(bpb.ReservedSectorCount),
		SectorsPerFAT:     ebpb.FATSize32,
		FATCount:          int(bpb.NumFATs),
		RootCluster:       ClusterID(ebpb.RootCluster),
	}
	geo.DataStartSector = geo.FATStartSector + SectorID(uint32(geo.FATCount)*geo.SectorsPerFAT)

	label := trimSpacePadded(ebpb.VolumeLabel[:])
	return geo, label, nil
}

func trimSpacePadded(b []byte) string {
	end := len(b)
	for end > 0 && b[end-1] == ' ' {
		end--
	}
	return string(b[:end])
}

// Label returns the volume label read from the EBPB.
func (fs *Fs) Label() string {
	return fs.label
}

// Geometry returns the mounted filesystem's geometry.
func (fs *Fs) Geometry() Geometry {
	return fs.partition.Geometry()
}

// Root reads the root directory's volume-id entry and returns a Directory
// handle for "/". The first slot of the root cluster must be a Regular
// entry with AttrVolumeID set.
func (fs *Fs) Root() (*Directory, error) {
	geo := fs.Geometry()

	reader := NewClusterChainReader(fs.table, fs.partition, geo.RootCluster)
	buf := make([]byte, rawDirEntrySize)
	if _, err := reader.Read(buf); err != nil {
		return nil, err
	}
	raw := unmarshalRawDirEntry(buf)

	if classifySlot(raw) != entryRegular || raw.Attr&AttrVolumeID == 0 {
		return nil, checkpoint.From(fmt.Errorf("%w: root volume-id entry not found", ErrEntryNotFound))
	}

	meta := Metadata{
		Name:         "/",
		Path:         "/",
		ParentPath:   "",
		Attributes:   AttrDirectory,
		FirstCluster: geo.RootCluster,
	}
	return &Directory{fs: fs, Meta: meta}, nil
}

// GetPath resolves p ("/"-separated, root is "/") to the Metadata of the
// entry it names, descending child-by-child; each intermediate component
// must be a directory. A missing component surfaces EntryNotFound{target}.
func (fs *Fs) GetPath(p string) (Metadata, error) {
	if p == "" || p == "/" {
		root, err := fs.Root()
		if err != nil {
			return Metadata{}, err
		}
		return root.Meta, nil
	}

	current, err := fs.Root()
	if err != nil {
		return Metadata{}, err
	}

	parts := SplitPath(p)
	for i, part := range parts {
		child, err := current.GetEntry(part)
		if err != nil {
			if errIsEntryNotFound(err) {
				return Metadata{}, checkpoint.From(fmt.Errorf("%w: %s", ErrEntryNotFound, part))
			}
			return Metadata{}, err
		}
		if i == len(parts)-1 {
			return child, nil
		}
		if !child.IsDirectory() {
			return Metadata{}, checkpoint.From(fmt.Errorf("%w: %s is not a directory", ErrEntryNotFound, part))
		}
		current = &Directory{fs: fs, Meta: child}
	}
	return current.Meta, nil
}

// PathExists adapts GetPath to a boolean, treating EntryNotFound/
// FileNotFound as false and surfacing any other error.
func (fs *Fs) PathExists(p string) (bool, error) {
	_, err := fs.GetPath(p)
	if err != nil {
		if errIsEntryNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// OpenDir resolves p to a Directory handle; it is an error if p names a
// file.
func (fs *Fs) OpenDir(p string) (*Directory, error) {
	meta, err := fs.GetPath(p)
	if err != nil {
		return nil, err
	}
	if !meta.IsDirectory() {
		return nil, checkpoint.From(fmt.Errorf("%w: %s is not a directory", ErrInvalidInput, p))
	}
	return &Directory{fs: fs, Meta: meta}, nil
}

// OpenFile resolves p to a File handle positioned at offset 0.
func (fs *Fs) OpenFile(p string) (*File, error) {
	meta, err := fs.GetPath(p)
	if err != nil {
		return nil, err
	}
	if meta.IsDirectory() {
		return nil, checkpoint.From(fmt.Errorf("%w: %s is a directory", ErrInvalidInput, p))
	}

	parentPath := meta.ParentPath
	parentDir, err := fs.OpenDir(parentPath)
	if err != nil {
		return nil, err
	}
	return &File{fs: fs, meta: meta, parent: parentDir}, nil
}
