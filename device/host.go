// Package device provides BlockDevice implementations that sit outside the
// core engine's scope: a host-file-backed device for the CLI, and a
// constructor for an in-memory device used by tests.
package device

import (
	"io"

	"github.com/xaionaro-go/bytesextra"

	"github.com/iris-fs/vfat"
)

// SeekerDevice adapts any io.ReadWriteSeeker (an *os.File, or an in-memory
// buffer via bytesextra) to vfat.BlockDevice.
type SeekerDevice struct {
	rw         io.ReadWriteSeeker
	sectorSize int
}

// NewSeekerDevice wraps rw as a BlockDevice with the given sector size
// (512 if sectorSize <= 0).
func NewSeekerDevice(rw io.ReadWriteSeeker, sectorSize int) *SeekerDevice {
	if sectorSize <= 0 {
		sectorSize = 512
	}
	return &SeekerDevice{rw: rw, sectorSize: sectorSize}
}

// NewMemoryDevice builds an in-memory BlockDevice over a fixed-size byte
// buffer, the backing store for the test fixtures.
func NewMemoryDevice(image []byte, sectorSize int) *SeekerDevice {
	return NewSeekerDevice(bytesextra.NewReadWriteSeeker(image), sectorSize)
}

var _ vfat.BlockDevice = (*SeekerDevice)(nil)

// SectorSize implements vfat.BlockDevice.
func (d *SeekerDevice) SectorSize() int {
	return d.sectorSize
}

func (d *SeekerDevice) byteOffset(sector vfat.SectorID, offset int) int64 {
	return int64(sector)*int64(d.sectorSize) + int64(offset)
}

// ReadSectorOffset implements vfat.BlockDevice.
func (d *SeekerDevice) ReadSectorOffset(sector vfat.SectorID, offset int, buf []byte) (int, error) {
	max := d.sectorSize - offset
	if max < 0 {
		max = 0
	}
	if len(buf) > max {
		buf = buf[:max]
	}

	if _, err := d.rw.Seek(d.byteOffset(sector, offset), io.SeekStart); err != nil {
		return 0, err
	}
	n, err := io.ReadFull(d.rw, buf)
	if err == io.ErrUnexpectedEOF {
		err = nil
	}
	return n, err
}

// WriteSectorOffset implements vfat.BlockDevice.
func (d *SeekerDevice) WriteSectorOffset(sector vfat.SectorID, offset int, buf []byte) (int, error) {
	max := d.sectorSize - offset
	if max < 0 {
		max = 0
	}
	if len(buf) > max {
		buf = buf[:max]
	}

	if _, err := d.rw.Seek(d.byteOffset(sector, offset), io.SeekStart); err != nil {
		return 0, err
	}
	return d.rw.Write(buf)
}
