package vfat

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShortNameChecksum(t *testing.T) {
	cases := []struct {
		body, ext string
		want      byte
	}{
		{"4CS~1   ", "E  ", 75},
		{"8CHARSSI", "EXT", 251},
		{"8CHARSSI", "EX ", 199},
		{"8CHARSSI", "E  ", 171},
	}

	for _, c := range cases {
		var body [8]byte
		var ext [3]byte
		copy(body[:], c.body)
		copy(ext[:], c.ext)
		assert.Equal(t, c.want, shortNameChecksum(body, ext), "checksum(%q, %q)", c.body, c.ext)
	}
}

func TestDeriveShortName(t *testing.T) {
	body, ext := deriveShortName("4cs.e")
	require.Equal(t, "4CS   ~1", string(body[:]))
	require.Equal(t, "E  ", string(ext[:]))
}

func TestLFNRoundTrip(t *testing.T) {
	name := "a-super-very-long-file-name-entry.txt"
	body, ext := deriveShortName(name)
	checksum := shortNameChecksum(body, ext)

	slots := buildLFNSlots(name, checksum)
	// Required = ceil(len/13); this name is 37 characters, so 3 LFN slots.
	require.Len(t, slots, 3)

	// Physical order: highest sequence (last logical) first.
	require.Equal(t, byte(3)|lfnLastLogicalBit, slots[0].sequenceNumber)
	require.Equal(t, byte(2), slots[1].sequenceNumber)
	require.Equal(t, byte(1), slots[2].sequenceNumber)

	for _, s := range slots {
		require.Equal(t, checksum, s.checksum)
	}

	got := decodeLFNName(slots)
	require.Equal(t, name, got)
}

func TestLFNRoundTripExactMultiple(t *testing.T) {
	// Exactly 13 chars: one full slot, no padding terminator needed within
	// the data itself but a 0x0000 terminator is still absent since data
	// fills every position.
	name := "abcdefghijklm"
	slots := buildLFNSlots(name, 0)
	require.Len(t, slots, 1)
	require.Equal(t, name, decodeLFNName(slots))
}

func TestClusterIDHighLowRoundTrip(t *testing.T) {
	n := ClusterID(0b1000_1000_0001_0001_1000_1000_0001_0001)
	hi, lo := n.HighLow()
	require.Equal(t, n, ClusterIDFromHighLow(hi, lo))
}

func TestFatEntryDecodeBoundaries(t *testing.T) {
	require.True(t, decodeFatEntry(0x00000000).isUnused())

	e := decodeFatEntry(0x00000002)
	next, ok := e.nextCluster()
	require.True(t, ok)
	require.Equal(t, ClusterID(2), next)

	require.True(t, decodeFatEntry(0x0FFFFFF8).isLastCluster())
	require.True(t, decodeFatEntry(0xFFFFFFF8).isLastCluster()) // upper 4 bits ignored

	reserved := decodeFatEntry(0x00000001)
	require.Equal(t, fatReserved, reserved.kind)
}

func TestClassifySlot(t *testing.T) {
	var free RawDirEntry
	require.Equal(t, entryEndOfEntries, classifySlot(free))

	deleted := RawDirEntry{}
	deleted.Name[0] = dirEntryDeletedMarker
	require.Equal(t, entryDeleted, classifySlot(deleted))

	lfn := RawDirEntry{Attr: AttrLongName}
	lfn.Name[0] = 'X'
	require.Equal(t, entryLFN, classifySlot(lfn))

	regular := RawDirEntry{Attr: AttrArchive}
	regular.Name[0] = 'X'
	require.Equal(t, entryRegular, classifySlot(regular))
}

func TestVfatTimestampPacking(t *testing.T) {
	tm, err := time.Parse(time.RFC3339, "2023-06-15T13:45:30Z")
	require.NoError(t, err)

	ts := newVfatTimestamp(tm)
	got := ts.Time(0)
	require.Equal(t, 2023, got.Year())
	require.Equal(t, 6, int(got.Month()))
	require.Equal(t, 15, got.Day())
	require.Equal(t, 13, got.Hour())
	require.Equal(t, 45, got.Minute())
	require.Equal(t, 30, got.Second())
}
