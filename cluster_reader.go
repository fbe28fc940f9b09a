package vfat

// ClusterChainReader virtualizes a contiguous byte stream over a
// non-contiguous chain of clusters, consulting the FAT table at cluster
// boundaries. It is forward-only across Seek calls: reading backward
// requires reconstructing a fresh reader from the chain head.
type ClusterChainReader struct {
	table   *FATTable
	part    *CachedPartition
	geo     Geometry

	currentCluster ClusterID
	sectorInCluster int // index of the current sector within currentCluster
	offsetInSector  int

	lastCluster ClusterID // last cluster actually consumed, for slot-update callers
	exhausted   bool
}

// NewClusterChainReader constructs a reader positioned at the start of the
// chain rooted at head.
func NewClusterChainReader(table *FATTable, part *CachedPartition, head ClusterID) *ClusterChainReader {
	return &ClusterChainReader{
		table:          table,
		part:           part,
		geo:            part.Geometry(),
		currentCluster: head,
		lastCluster:    head,
		exhausted:      head == FreeClusterSentinel,
	}
}

// Read fills buf by repeatedly reading from the current position, advancing
// across sector and cluster boundaries and consulting the FAT table when a
// cluster is exhausted. It returns the number of bytes produced, which may
// be less than len(buf) if the chain ends first; reaching the end of chain
// is not an error. Read returns 0 iff buf is empty or the chain was already
// exhausted.
func (r *ClusterChainReader) Read(buf []byte) (int, error) {
	if len(buf) == 0 || r.exhausted {
		return 0, nil
	}

	total := 0
	for total < len(buf) {
		sector := r.geo.ClusterToSector(r.currentCluster) + SectorID(r.sectorInCluster)
		want := len(buf) - total
		n, err := r.part.ReadSectorOffset(sector, r.offsetInSector, buf[total:total+min(want, r.geo.SectorSize-r.offsetInSector)])
		if err != nil {
			return total, err
		}
		total += n
		r.offsetInSector += n

		if n == 0 {
			// device produced nothing; treat as end of data to avoid spinning.
			r.exhausted = true
			return total, nil
		}

		if r.offsetInSector >= r.geo.SectorSize {
			r.offsetInSector = 0
			r.sectorInCluster++
		}

		if r.sectorInCluster >= r.geo.SectorsPerCluster {
			r.sectorInCluster = 0
			r.lastCluster = r.currentCluster
			next, ok, err := r.table.NextCluster(r.currentCluster)
			if err != nil {
				return total, err
			}
			if !ok {
				r.exhausted = true
				return total, nil
			}
			r.currentCluster = next
		}
	}

	return total, nil
}

// Seek positions the reader at absolute byte offset from the chain's start,
// walking the FAT chain as many links as required.
func (r *ClusterChainReader) Seek(offset int64) error {
	clusterBytes := r.geo.ClusterSizeBytes()
	clusterIndex := offset / clusterBytes
	withinCluster := offset % clusterBytes

	cluster := r.currentCluster
	for i := int64(0); i < clusterIndex; i++ {
		next, ok, err := r.table.NextCluster(cluster)
		if err != nil {
			return err
		}
		if !ok {
			r.exhausted = true
			r.currentCluster = cluster
			return nil
		}
		cluster = next
	}

	r.currentCluster = cluster
	r.sectorInCluster = int(withinCluster) / r.geo.SectorSize
	r.offsetInSector = int(withinCluster) % r.geo.SectorSize
	r.exhausted = false
	return nil
}

// LastCluster returns the last cluster actually consumed by Read, used by
// callers that need to rewrite a slot they just scanned past.
func (r *ClusterChainReader) LastCluster() ClusterID {
	return r.lastCluster
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
