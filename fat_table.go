package vfat

import (
	"encoding/binary"
	"fmt"
	"sync"

	"github.com/boljen/go-bitmap"
	"github.com/sirupsen/logrus"

	"github.com/iris-fs/vfat/checkpoint"
)

const fatEntrySize = 4 // bytes per on-disk FAT32 slot

// FATTable is the FAT-table layer: cluster-id-to-(sector,offset) addressing,
// single-entry read/write, chain traversal, chain deletion, and free-cluster
// allocation. It keeps a free-cluster bitmap (go-bitmap) as a cache over the
// partition's free/used state so repeated allocations don't re-scan the
// whole FAT from the device each time; the cache is built lazily on first
// use and kept in lockstep with every SetEntry call.
type FATTable struct {
	partition *CachedPartition

	bitmapOnce sync.Once
	bitmapMu   sync.Mutex
	free       bitmap.Bitmap // true bit = free; built lazily, sized to ClusterCount()
}

// NewFATTable constructs a FATTable layer over partition.
func NewFATTable(partition *CachedPartition) *FATTable {
	return &FATTable{partition: partition}
}

// ClusterCount returns the number of cluster slots addressable by the FAT
// table, i.e. the FAT's capacity in 32-bit entries.
func (t *FATTable) ClusterCount() uint32 {
	geo := t.partition.Geometry()
	entriesPerFAT := (uint32(geo.SectorSize) / fatEntrySize) * geo.SectorsPerFAT
	return entriesPerFAT
}

// addr computes the (sector, byte-offset) pair that stores cluster c's FAT
// entry, per §4.2's addressing formula.
func (t *FATTable) addr(c ClusterID) (SectorID, int) {
	geo := t.partition.Geometry()
	entriesPerSector := uint32(geo.SectorSize) / fatEntrySize
	containingSector := uint32(c) / entriesPerSector
	offsetInSector := int((uint32(c) % entriesPerSector) * fatEntrySize)
	return geo.FATStartSector + SectorID(containingSector), offsetInSector
}

func (t *FATTable) readRaw(c ClusterID) (fatEntry, error) {
	sector, offset := t.addr(c)
	buf := make([]byte, fatEntrySize)
	if _, err := t.partition.ReadSectorOffset(sector, offset, buf); err != nil {
		return fatEntry{}, checkpoint.Wrap(err, ErrIO)
	}
	return decodeFatEntry(binary.LittleEndian.Uint32(buf)), nil
}

func (t *FATTable) writeRaw(c ClusterID, e fatEntry) error {
	sector, offset := t.addr(c)
	buf := make([]byte, fatEntrySize)
	binary.LittleEndian.PutUint32(buf, e.encode())
	if _, err := t.partition.WriteSectorOffset(sector, offset, buf); err != nil {
		return checkpoint.Wrap(err, ErrIO)
	}
	t.markCache(c, e.isUnused())
	return nil
}

func (t *FATTable) markCache(c ClusterID, free bool) {
	t.bitmapMu.Lock()
	defer t.bitmapMu.Unlock()
	if t.free == nil {
		return
	}
	if uint32(c) >= t.ClusterCount() {
		return
	}
	t.free.Set(int(c), free)
}

func (t *FATTable) ensureCache() error {
	var buildErr error
	t.bitmapOnce.Do(func() {
		count := t.ClusterCount()
		b := bitmap.New(int(count))
		for c := uint32(0); c < count; c++ {
			entry, err := t.readRaw(ClusterID(c))
			if err != nil {
				buildErr = err
				return
			}
			b.Set(int(c), entry.isUnused())
		}
		t.bitmapMu.Lock()
		t.free = b
		t.bitmapMu.Unlock()
	})
	return buildErr
}

// log returns the partition's logger, the FAT table's only collaborator
// that carries one.
func (t *FATTable) log() *logrus.Logger {
	return t.partition.log
}

// ReadEntry reads and decodes the FAT entry for cluster c.
func (t *FATTable) ReadEntry(c ClusterID) (fatEntry, error) {
	t.log().WithField("cluster", c).Trace("fat table: read entry")
	return t.readRaw(c)
}

// SetEntry writes the given logical entry for cluster c.
func (t *FATTable) SetEntry(c ClusterID, e fatEntry) error {
	t.log().WithFields(logrus.Fields{"cluster": c, "kind": e.kind}).Debug("fat table: set entry")
	return t.writeRaw(c, e)
}

// NextCluster returns the next cluster in the chain after c, or false if c
// is a dead end (Unused, Reserved, or LastCluster).
func (t *FATTable) NextCluster(c ClusterID) (ClusterID, bool, error) {
	entry, err := t.readRaw(c)
	if err != nil {
		return 0, false, err
	}
	next, ok := entry.nextCluster()
	return next, ok, nil
}

// DeleteChain frees every cluster reachable from head, setting each visited
// entry to Unused. A head that already decodes as Unused is a no-op.
func (t *FATTable) DeleteChain(head ClusterID) error {
	current := head
	entry, err := t.readRaw(current)
	if err != nil {
		return err
	}
	if entry.isUnused() {
		return nil
	}

	for {
		next, hasNext, err := t.NextCluster(current)
		if err != nil {
			return err
		}
		if err := t.writeRaw(current, fatEntry{kind: fatUnused}); err != nil {
			return err
		}
		if !hasNext {
			return nil
		}
		current = next
	}
}

// FindFreeCluster scans the FAT and returns the first cluster whose entry is
// Unused, consulting the bitmap cache when available.
func (t *FATTable) FindFreeCluster() (ClusterID, error) {
	if err := t.ensureCache(); err != nil {
		return 0, err
	}

	t.bitmapMu.Lock()
	defer t.bitmapMu.Unlock()

	count := int(t.ClusterCount())
	for c := 2; c < count; c++ {
		if t.free.Get(c) {
			t.log().WithField("cluster", c).Debug("fat table: free cluster found")
			return ClusterID(c), nil
		}
	}
	return 0, checkpoint.From(fmt.Errorf("%w", ErrFreeClusterNotFound))
}

// AllocateNewEntry finds a free cluster, marks it LastCluster, and returns
// it.
func (t *FATTable) AllocateNewEntry() (ClusterID, error) {
	free, err := t.FindFreeCluster()
	if err != nil {
		return 0, err
	}

	geo := t.partition.Geometry()
	if err := t.writeRaw(free, newLastClusterEntry(geo.EOCMarker)); err != nil {
		return 0, err
	}
	t.log().WithField("cluster", free).Debug("fat table: allocated cluster")
	return free, nil
}

// AllocateToChain walks from head to the chain's tail, allocates a new
// cluster, and links tail -> new. Allocate-then-link ordering ensures a
// crash leaves at worst a leaked cluster, never a dangling pointer.
func (t *FATTable) AllocateToChain(head ClusterID) (ClusterID, error) {
	tail := head
	for {
		next, ok, err := t.NextCluster(tail)
		if err != nil {
			return 0, err
		}
		if !ok {
			break
		}
		tail = next
	}

	newCluster, err := t.AllocateNewEntry()
	if err != nil {
		return 0, err
	}

	if err := t.writeRaw(tail, newDataClusterEntry(newCluster)); err != nil {
		return 0, err
	}

	return newCluster, nil
}
