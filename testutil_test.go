package vfat_test

import (
	"encoding/binary"

	"github.com/iris-fs/vfat"
	"github.com/iris-fs/vfat/device"
)

// fixtureImage is the layout of a small hand-built FAT32 image used across
// the integration tests: 1 reserved sector, 1 FAT, a handful of data
// clusters, one sector per cluster.
type fixtureImage struct {
	SectorSize        int
	SectorsPerCluster int
	ReservedSectors   int
	FATCount          int
	SectorsPerFAT     uint32
	DataClusters      int
	Label             string
}

func defaultFixture() fixtureImage {
	return fixtureImage{
		SectorSize:        512,
		SectorsPerCluster: 1,
		ReservedSectors:   1,
		FATCount:          1,
		SectorsPerFAT:     4,
		DataClusters:      64,
		Label:             "IRISVOL",
	}
}

// build formats an in-memory FAT32 image per the fixture's geometry,
// writing a valid BPB/EBPB and a root directory whose first slot is the
// volume-id entry carrying Label.
func (f fixtureImage) build() []byte {
	dataStartSector := f.ReservedSectors + f.FATCount*int(f.SectorsPerFAT)
	totalSectors := dataStartSector + f.DataClusters*f.SectorsPerCluster

	image := make([]byte, totalSectors*f.SectorSize)

	// BPB (bytes 0-35)
	binary.LittleEndian.PutUint16(image[11:], uint16(f.SectorSize))
	image[13] = byte(f.SectorsPerCluster)
	binary.LittleEndian.PutUint16(image[14:], uint16(f.ReservedSectors))
	image[16] = byte(f.FATCount)
	image[21] = 0xF8 // media
	binary.LittleEndian.PutUint32(image[32:], uint32(totalSectors))

	// EBPB (bytes 36-89)
	binary.LittleEndian.PutUint32(image[36:], f.SectorsPerFAT)
	binary.LittleEndian.PutUint32(image[44:], 2) // root cluster
	image[66] = 0x29                             // extended signature
	copy(image[71:82], padLabel(f.Label))

	// FAT[0] sentinel (media descriptor in low byte, all 1s above).
	fatStart := f.ReservedSectors * f.SectorSize
	binary.LittleEndian.PutUint32(image[fatStart:], 0x0FFFFFF8)
	// FAT[1] reserved.
	binary.LittleEndian.PutUint32(image[fatStart+4:], 0x0FFFFFFF)
	// FAT[2] (root cluster): last cluster.
	binary.LittleEndian.PutUint32(image[fatStart+8:], 0x0FFFFFF8)

	// Root directory's first slot: volume-id entry named after Label.
	rootSector := dataStartSector * f.SectorSize
	copy(image[rootSector:rootSector+11], padLabel(f.Label))
	image[rootSector+11] = vfat.AttrVolumeID

	return image
}

func padLabel(label string) []byte {
	buf := []byte("           ")
	copy(buf, label)
	return buf
}

// mount formats a fresh fixture image and mounts it, returning the handle
// and the backing image bytes (so tests can inspect raw FAT/dir bytes).
func mount(f fixtureImage, opts ...vfat.Option) (*vfat.Fs, []byte) {
	image := f.build()
	dev := device.NewMemoryDevice(image, f.SectorSize)
	fsHandle, err := vfat.Open(dev, 0, opts...)
	if err != nil {
		panic(err)
	}
	return fsHandle, image
}
