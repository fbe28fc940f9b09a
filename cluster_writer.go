package vfat

import (
	"fmt"

	"github.com/iris-fs/vfat/checkpoint"
)

// ClusterChainWriter mirrors ClusterChainReader's positional model but
// extends the chain on demand: writing past the current cluster's end
// allocates a new cluster and links it in, and seeking past the chain's end
// does the same. It is append-and-seek capable but not backward-seek
// capable without reconstruction from the chain head.
type ClusterChainWriter struct {
	table *FATTable
	part  *CachedPartition
	geo   Geometry

	currentCluster  ClusterID
	sectorInCluster int
	offsetInSector  int
}

// NewClusterChainWriter constructs a writer positioned at the start of the
// chain rooted at head. head must already be an allocated cluster (non-zero);
// it is a caller invariant violation to construct a writer over cluster 0.
func NewClusterChainWriter(table *FATTable, part *CachedPartition, head ClusterID) (*ClusterChainWriter, error) {
	if head == FreeClusterSentinel {
		return nil, checkpoint.From(fmt.Errorf("%w: cluster chain writer requires an allocated head cluster", ErrInvalidInput))
	}
	return &ClusterChainWriter{
		table:          table,
		part:           part,
		geo:            part.Geometry(),
		currentCluster: head,
	}, nil
}

// Write writes buf into the chain, extending it with freshly allocated
// clusters as needed. Under normal operation it returns len(buf) because
// allocation is on demand; a write error aborts and returns the count
// accepted so far.
func (w *ClusterChainWriter) Write(buf []byte) (int, error) {
	total := 0
	for total < len(buf) {
		sector := w.geo.ClusterToSector(w.currentCluster) + SectorID(w.sectorInCluster)
		chunk := buf[total:]
		if len(chunk) > w.geo.SectorSize-w.offsetInSector {
			chunk = chunk[:w.geo.SectorSize-w.offsetInSector]
		}

		n, err := w.part.WriteSectorOffset(sector, w.offsetInSector, chunk)
		if err != nil {
			return total, err
		}
		total += n
		w.offsetInSector += n

		if w.offsetInSector >= w.geo.SectorSize {
			w.offsetInSector = 0
			w.sectorInCluster++
		}

		if w.sectorInCluster >= w.geo.SectorsPerCluster {
			w.sectorInCluster = 0
			next, ok, err := w.table.NextCluster(w.currentCluster)
			if err != nil {
				return total, err
			}
			if !ok {
				next, err = w.table.AllocateToChain(w.currentCluster)
				if err != nil {
					return total, err
				}
			}
			w.currentCluster = next
		}
	}
	return total, nil
}

// Seek positions the writer at absolute byte offset from the chain's start,
// allocating new clusters as it walks past the chain's current end.
func (w *ClusterChainWriter) Seek(offset int64) error {
	clusterBytes := w.geo.ClusterSizeBytes()
	clusterIndex := offset / clusterBytes
	withinCluster := offset % clusterBytes

	cluster := w.currentCluster
	for i := int64(0); i < clusterIndex; i++ {
		next, ok, err := w.table.NextCluster(cluster)
		if err != nil {
			return err
		}
		if !ok {
			next, err = w.table.AllocateToChain(cluster)
			if err != nil {
				return err
			}
		}
		cluster = next
	}

	w.currentCluster = cluster
	w.sectorInCluster = int(withinCluster) / w.geo.SectorSize
	w.offsetInSector = int(withinCluster) % w.geo.SectorSize
	return nil
}
