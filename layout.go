// Package vfat implements a read/write FAT32 filesystem engine with the VFAT
// long-file-name extension, layered over an abstract BlockDevice.
package vfat

// BPB is the 36-byte BIOS Parameter Block common to FAT12/16/32 volumes.
// All multi-byte fields are little-endian on disk.
type BPB struct {
	BSJumpBoot          [3]byte
	BSOEMName           [8]byte
	BytesPerSector      uint16
	SectorsPerCluster   byte
	ReservedSectorCount uint16
	NumFATs             byte
	RootEntryCount      uint16 // unused for FAT32
	TotalSectors16      uint16
	Media               byte
	FATSize16           uint16 // unused for FAT32
	SectorsPerTrack     uint16
	NumberOfHeads       uint16
	HiddenSectors       uint32
	TotalSectors32      uint32
}

// EBPB is the FAT32-specific Extended BPB that follows the BPB.
type EBPB struct {
	FATSize32       uint32
	ExtFlags        uint16
	FSVersion       uint16
	RootCluster     uint32
	FSInfoSector    uint16
	BackupBootSector uint16
	Reserved        [12]byte
	DriveNumber     byte
	Reserved1       byte
	BootSignature   byte // must be 0x28 or 0x29
	VolumeSerial    uint32
	VolumeLabel     [11]byte
	FileSystemType  [8]byte
}

const (
	ebpbSignature28 = 0x28
	ebpbSignature29 = 0x29
)

// MBRPartitionEntry is one of the four 16-byte partition table rows in an MBR.
type MBRPartitionEntry struct {
	Status          byte
	CHSFirst        [3]byte
	PartitionType   byte
	CHSLast         [3]byte
	StartSector     uint32
	TotalSectors    uint32
}

// Bootable reports whether the partition's active flag (0x80) is set.
func (p MBRPartitionEntry) Bootable() bool {
	return p.Status == 0x80
}

// IsFAT32 reports whether the partition type byte marks it as FAT32
// (0x0B or 0x0C, the LBA variant).
func (p MBRPartitionEntry) IsFAT32() bool {
	return p.PartitionType == 0x0B || p.PartitionType == 0x0C
}

// MBR is the 512-byte Master Boot Record.
type MBR struct {
	BootstrapCode [436]byte
	DiskID        [10]byte
	Partitions    [4]MBRPartitionEntry
	Signature     uint16 // must be 0x55AA
}

const mbrSignature = 0x55AA

// RawDirEntry is the raw, 32-byte on-disk layout shared by Regular and LFN
// directory slots; which logical kind a slot represents is determined by
// the codec in direntry.go, not by this struct alone.
type RawDirEntry struct {
	Name         [11]byte
	Attr         byte
	NTRes        byte
	CrtTimeTenth byte
	CrtTime      uint16
	CrtDate      uint16
	LstAccDate   uint16
	FstClusHI    uint16
	WrtTime      uint16
	WrtDate      uint16
	FstClusLO    uint16
	FileSize     uint32
}

const rawDirEntrySize = 32

// Attribute bits, per §3 of the format specification.
const (
	AttrReadOnly  = 0x01
	AttrHidden    = 0x02
	AttrSystem    = 0x04
	AttrVolumeID  = 0x08
	AttrDirectory = 0x10
	AttrArchive   = 0x20
	AttrLongName  = AttrReadOnly | AttrHidden | AttrSystem | AttrVolumeID
)

const (
	dirEntryFreeMarker    = 0x00 // end-of-entries
	dirEntryDeletedMarker = 0xE5
)
