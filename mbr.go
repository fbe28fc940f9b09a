package vfat

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/iris-fs/vfat/checkpoint"
)

// ReadMBR decodes the 512-byte Master Boot Record from sector 0 of dev and
// returns it. This is an external-collaborator decoder: conformant callers
// may obtain a partition start sector by any means, but this helper covers
// the common case of a single MBR-partitioned disk.
func ReadMBR(dev BlockDevice) (MBR, error) {
	buf := make([]byte, 512)
	if _, err := ReadSector(dev, 0, buf); err != nil {
		return MBR{}, checkpoint.Wrap(err, ErrIO)
	}

	var mbr MBR
	if err := binary.Read(bytes.NewReader(buf[:436]), binary.LittleEndian, &mbr.BootstrapCode); err != nil {
		return MBR{}, checkpoint.Wrap(err, ErrMBRInvalid)
	}
	copy(mbr.DiskID[:], buf[436:446])

	r := bytes.NewReader(buf[446:510])
	for i := range mbr.Partitions {
		if err := binary.Read(r, binary.LittleEndian, &mbr.Partitions[i]); err != nil {
			return MBR{}, checkpoint.Wrap(err, ErrMBRInvalid)
		}
	}

	mbr.Signature = binary.LittleEndian.Uint16(buf[510:512])
	if mbr.Signature != mbrSignature {
		return MBR{}, checkpoint.From(fmt.Errorf("%w: bad mbr signature 0x%04x", ErrMBRInvalid, mbr.Signature))
	}

	return mbr, nil
}

// FindFAT32Partition returns the start sector of the first bootable-or-not
// partition entry marked as FAT32 (type 0x0B or 0x0C). Non-bootable entries
// are accepted: the spec only requires a valid FAT32 type byte.
func FindFAT32Partition(mbr MBR) (SectorID, error) {
	for i, p := range mbr.Partitions {
		if p.IsFAT32() && p.TotalSectors > 0 {
			return SectorID(p.StartSector), nil
		}
		_ = i
	}
	return 0, checkpoint.From(fmt.Errorf("%w: no fat32 partition in mbr", ErrMBRInvalid))
}
