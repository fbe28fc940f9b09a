package vfat

import (
	"sync"

	"github.com/noxer/bytewriter"
	"github.com/sirupsen/logrus"

	"github.com/iris-fs/vfat/checkpoint"
)

// Geometry holds the filesystem layout derived once at mount time from the
// BPB/EBPB and held immutable thereafter.
type Geometry struct {
	SectorSize        int
	SectorsPerCluster int
	FATStartSector    SectorID
	SectorsPerFAT     uint32
	FATCount          int
	DataStartSector   SectorID
	RootCluster       ClusterID
	EOCMarker         uint32
}

// ClusterToSector converts a cluster id to the first sector of its data,
// per cluster_to_sector(c) = data_start_sector + (c-2)*sectors_per_cluster.
func (g Geometry) ClusterToSector(c ClusterID) SectorID {
	return g.DataStartSector + SectorID((uint32(c)-2)*uint32(g.SectorsPerCluster))
}

// ClusterSizeBytes returns the number of bytes in a single cluster.
func (g Geometry) ClusterSizeBytes() int64 {
	return int64(g.SectorSize) * int64(g.SectorsPerCluster)
}

// CachedPartition wraps a BlockDevice with the filesystem's geometry and
// serializes all access behind a single coarse lock, the only concurrency
// primitive the design requires. It is itself a BlockDevice, decorating the
// one it wraps; the FAT table and the cluster readers/writers hold it as the
// concrete *CachedPartition.
type CachedPartition struct {
	mu     sync.Mutex
	device BlockDevice
	geo    Geometry
	log    *logrus.Logger
}

// NewCachedPartition constructs a CachedPartition around dev with the given
// geometry.
func NewCachedPartition(dev BlockDevice, geo Geometry, log *logrus.Logger) *CachedPartition {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &CachedPartition{device: dev, geo: geo, log: log}
}

// Geometry returns the partition's immutable geometry.
func (p *CachedPartition) Geometry() Geometry {
	return p.geo
}

// SectorSize implements BlockDevice.
func (p *CachedPartition) SectorSize() int {
	return p.geo.SectorSize
}

// ReadSectorOffset implements BlockDevice, serializing access on the
// partition's device lock.
func (p *CachedPartition) ReadSectorOffset(sector SectorID, offset int, buf []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	n, err := p.device.ReadSectorOffset(sector, offset, buf)
	if err != nil {
		return n, checkpoint.Wrap(err, ErrIO)
	}
	return n, nil
}

// WriteSectorOffset implements BlockDevice, serializing access on the
// partition's device lock. The write is cut off at the end of the sector,
// so it never spills into the next sector, and the remaining bytes are
// copied into a staging buffer that is handed to the device at the same
// offset.
func (p *CachedPartition) WriteSectorOffset(sector SectorID, offset int, buf []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	max := p.geo.SectorSize - offset
	if max < 0 {
		max = 0
	}
	truncated := buf
	if len(buf) > max {
		truncated = buf[:max]
	}

	staged := make([]byte, len(truncated))
	bw := bytewriter.New(staged)
	if _, err := bw.Write(truncated); err != nil {
		return 0, checkpoint.Wrap(err, ErrIO)
	}

	n, err := p.device.WriteSectorOffset(sector, offset, staged)
	if err != nil {
		return n, checkpoint.Wrap(err, ErrIO)
	}
	return n, nil
}

// ReadSector reads a whole sector from the partition.
func (p *CachedPartition) ReadSector(sector SectorID, buf []byte) (int, error) {
	return p.ReadSectorOffset(sector, 0, buf)
}

// WriteSector writes a whole sector to the partition.
func (p *CachedPartition) WriteSector(sector SectorID, buf []byte) (int, error) {
	return p.WriteSectorOffset(sector, 0, buf)
}
