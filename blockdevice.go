package vfat

import "time"

// SectorID identifies a sector on the underlying block device.
type SectorID uint32

// BlockDevice is the sole external collaborator the engine depends on for
// persistence. Implementations provide sector-granular, byte-offset
// addressable reads and writes. CachedPartition is itself a BlockDevice,
// decorating another one.
type BlockDevice interface {
	// SectorSize returns the size in bytes of one sector.
	SectorSize() int

	// ReadSectorOffset reads into buf starting at byte offset within the
	// given sector. The number of bytes transferred is at most
	// min(len(buf), SectorSize()-offset).
	ReadSectorOffset(sector SectorID, offset int, buf []byte) (int, error)

	// WriteSectorOffset writes buf starting at byte offset within the given
	// sector, symmetric to ReadSectorOffset.
	WriteSectorOffset(sector SectorID, offset int, buf []byte) (int, error)
}

// ReadSector reads a whole sector (offset 0) from dev.
func ReadSector(dev BlockDevice, sector SectorID, buf []byte) (int, error) {
	return dev.ReadSectorOffset(sector, 0, buf)
}

// WriteSector writes a whole sector (offset 0) to dev.
func WriteSector(dev BlockDevice, sector SectorID, buf []byte) (int, error) {
	return dev.WriteSectorOffset(sector, 0, buf)
}

// Clock supplies the current time for newly created/modified directory
// entries. Tests inject a fixed clock for deterministic timestamps; hosted
// programs use RealClock.
type Clock interface {
	Now() time.Time
}

// RealClock is the default Clock, backed by time.Now.
type RealClock struct{}

// Now returns the current wall-clock time.
func (RealClock) Now() time.Time {
	return time.Now()
}
