package vfat

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestPartition(t *testing.T, totalClusters int) (*CachedPartition, *FATTable) {
	t.Helper()

	const sectorSize = 512
	const sectorsPerFAT = 4
	reservedSectors := 1
	dataStart := reservedSectors + sectorsPerFAT

	image := make([]byte, (dataStart+totalClusters)*sectorSize)
	dev := &memDevice{buf: image, sectorSize: sectorSize}

	geo := Geometry{
		SectorSize:        sectorSize,
		SectorsPerCluster: 1,
		FATStartSector:    SectorID(reservedSectors),
		SectorsPerFAT:     sectorsPerFAT,
		FATCount:          1,
		DataStartSector:   SectorID(dataStart),
		RootCluster:       2,
		EOCMarker:         0x0FFFFFF8,
	}

	partition := NewCachedPartition(dev, geo, nil)
	return partition, NewFATTable(partition)
}

// memDevice is a minimal in-package BlockDevice for unit tests that don't
// need a full mounted filesystem, avoiding a dependency on the device
// package (which itself imports this one, which would be an import cycle
// from an internal _test.go file).
type memDevice struct {
	buf        []byte
	sectorSize int
}

func (d *memDevice) SectorSize() int { return d.sectorSize }

func (d *memDevice) ReadSectorOffset(sector SectorID, offset int, buf []byte) (int, error) {
	start := int(sector)*d.sectorSize + offset
	n := copy(buf, d.buf[start:])
	return n, nil
}

func (d *memDevice) WriteSectorOffset(sector SectorID, offset int, buf []byte) (int, error) {
	start := int(sector)*d.sectorSize + offset
	n := copy(d.buf[start:], buf)
	return n, nil
}

func TestClusterToSector(t *testing.T) {
	geo := Geometry{DataStartSector: 10, SectorsPerCluster: 4}
	require.Equal(t, SectorID(10), geo.ClusterToSector(2))
	require.Equal(t, SectorID(14), geo.ClusterToSector(3))
	require.Equal(t, SectorID(34), geo.ClusterToSector(8))
}

func TestAllocateNewEntryIsLastCluster(t *testing.T) {
	_, table := newTestPartition(t, 16)

	f, err := table.AllocateNewEntry()
	require.NoError(t, err)

	entry, err := table.ReadEntry(f)
	require.NoError(t, err)
	require.True(t, entry.isLastCluster())
}

func TestAllocateToChainLinksAndTerminates(t *testing.T) {
	_, table := newTestPartition(t, 16)

	head, err := table.AllocateNewEntry()
	require.NoError(t, err)

	tail, err := table.AllocateToChain(head)
	require.NoError(t, err)

	next, ok, err := table.NextCluster(head)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, tail, next)

	tailEntry, err := table.ReadEntry(tail)
	require.NoError(t, err)
	require.True(t, tailEntry.isLastCluster())
}

func TestDeleteChainFreesEveryCluster(t *testing.T) {
	_, table := newTestPartition(t, 16)

	head, err := table.AllocateNewEntry()
	require.NoError(t, err)
	mid, err := table.AllocateToChain(head)
	require.NoError(t, err)
	tail, err := table.AllocateToChain(head)
	require.NoError(t, err)

	require.NoError(t, table.DeleteChain(head))

	for _, c := range []ClusterID{head, mid, tail} {
		entry, err := table.ReadEntry(c)
		require.NoError(t, err)
		require.True(t, entry.isUnused(), "cluster %d should be unused", c)
	}
}

func TestDeleteChainOnUnusedHeadIsNoOp(t *testing.T) {
	_, table := newTestPartition(t, 16)
	require.NoError(t, table.DeleteChain(5))

	entry, err := table.ReadEntry(5)
	require.NoError(t, err)
	require.True(t, entry.isUnused())
}

func TestFindFreeClusterExhaustion(t *testing.T) {
	// The free-cluster scan covers every slot of the FAT (4 sectors of 128
	// entries = 512 slots), independent of the data region's size, so
	// clusters 2..511 are allocatable before exhaustion.
	_, table := newTestPartition(t, 4)
	require.EqualValues(t, 512, table.ClusterCount())

	first, err := table.AllocateNewEntry() // takes cluster 2
	require.NoError(t, err)
	require.Equal(t, ClusterID(2), first)
	for c := 3; c < 512; c++ {
		_, err = table.AllocateNewEntry()
		require.NoError(t, err)
	}

	_, err = table.AllocateNewEntry()
	require.ErrorIs(t, err, ErrFreeClusterNotFound)
}
