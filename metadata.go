package vfat

import (
	"encoding/binary"
	"path"
	"strings"
	"time"
)

// Metadata is the in-memory representation of a directory entry, assembled
// either from an LFN chain plus its Regular anchor or from the anchor's
// short name alone.
type Metadata struct {
	Name         string
	Size         uint32
	FirstCluster ClusterID
	Attributes   byte
	Created      time.Time
	Modified     time.Time
	Path         string
	ParentPath   string
}

// IsDirectory reports whether the entry's attribute byte has the directory
// bit set.
func (m Metadata) IsDirectory() bool {
	return m.Attributes&AttrDirectory != 0
}

// IsVolumeID reports whether the entry's attribute byte has the volume-id
// bit set.
func (m Metadata) IsVolumeID() bool {
	return m.Attributes&AttrVolumeID != 0
}

// JoinPath builds the full path of a child named name under parentPath.
func JoinPath(parentPath, name string) string {
	if parentPath == "/" {
		return "/" + name
	}
	return path.Join(parentPath, name)
}

// SplitPath splits a path into its non-empty, '/'-separated components.
func SplitPath(p string) []string {
	trimmed := strings.Trim(p, "/")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "/")
}

// metadataFromRegular reconstructs Metadata from a Regular directory slot
// plus an optional long name (empty if none preceded it, in which case the
// short name fields are rendered instead).
func metadataFromRegular(raw RawDirEntry, longName, parentPath string) Metadata {
	name := longName
	if name == "" {
		name = shortNameToString(raw.Name)
	}

	cluster := ClusterIDFromHighLow(raw.FstClusHI, raw.FstClusLO)
	created := newVfatCombinedTime(raw.CrtDate, raw.CrtTime, Milliseconds(raw.CrtTimeTenth))
	modified := splitDateTime(raw.WrtDate, raw.WrtTime)

	return Metadata{
		Name:         name,
		Size:         raw.FileSize,
		FirstCluster: cluster,
		Attributes:   raw.Attr,
		Created:      created,
		Modified:     modified,
		Path:         JoinPath(parentPath, name),
		ParentPath:   parentPath,
	}
}

// newVfatCombinedTime decodes the creation date/time pair the same way
// splitDateTime does for last-write; the combined "32-bit packed" wording
// in the data model refers to this (date<<16 | time) pairing as stored
// across CrtDate/CrtTime, with CrtTimeTenth folded in for sub-second
// resolution.
func newVfatCombinedTime(date, timeField uint16, tenths Milliseconds) time.Time {
	t := splitDateTime(date, timeField)
	if tenths > 0 {
		extraSeconds := int(tenths) / 100
		extraNanos := (int(tenths) % 100) * 10 * int(time.Millisecond)
		t = t.Add(time.Duration(extraSeconds)*time.Second + time.Duration(extraNanos))
	}
	return t
}

// buildRegularEntry encodes Metadata into the 32-byte Regular slot layout,
// given the already-derived short-name body/extension.
func buildRegularEntry(body [8]byte, ext [3]byte, m Metadata) RawDirEntry {
	var name [11]byte
	copy(name[0:8], body[:])
	copy(name[8:11], ext[:])

	hi, lo := m.FirstCluster.HighLow()

	return RawDirEntry{
		Name:         name,
		Attr:         m.Attributes,
		CrtTimeTenth: byte(m.Created.Nanosecond()/10000000) + byte((m.Created.Second()%2)*100),
		CrtTime:      packTime(m.Created),
		CrtDate:      packDate(m.Created),
		LstAccDate:   packDate(m.Modified),
		FstClusHI:    hi,
		WrtTime:      packTime(m.Modified),
		WrtDate:      packDate(m.Modified),
		FstClusLO:    lo,
		FileSize:     m.Size,
	}
}

// marshalRawDirEntry encodes a RawDirEntry to its 32-byte on-disk form.
func marshalRawDirEntry(r RawDirEntry) []byte {
	buf := make([]byte, rawDirEntrySize)
	copy(buf[0:11], r.Name[:])
	buf[11] = r.Attr
	buf[12] = r.NTRes
	buf[13] = r.CrtTimeTenth
	binary.LittleEndian.PutUint16(buf[14:], r.CrtTime)
	binary.LittleEndian.PutUint16(buf[16:], r.CrtDate)
	binary.LittleEndian.PutUint16(buf[18:], r.LstAccDate)
	binary.LittleEndian.PutUint16(buf[20:], r.FstClusHI)
	binary.LittleEndian.PutUint16(buf[22:], r.WrtTime)
	binary.LittleEndian.PutUint16(buf[24:], r.WrtDate)
	binary.LittleEndian.PutUint16(buf[26:], r.FstClusLO)
	binary.LittleEndian.PutUint32(buf[28:], r.FileSize)
	return buf
}

// unmarshalRawDirEntry decodes a 32-byte on-disk slot into a RawDirEntry.
func unmarshalRawDirEntry(buf []byte) RawDirEntry {
	var r RawDirEntry
	copy(r.Name[:], buf[0:11])
	r.Attr = buf[11]
	r.NTRes = buf[12]
	r.CrtTimeTenth = buf[13]
	r.CrtTime = binary.LittleEndian.Uint16(buf[14:])
	r.CrtDate = binary.LittleEndian.Uint16(buf[16:])
	r.LstAccDate = binary.LittleEndian.Uint16(buf[18:])
	r.FstClusHI = binary.LittleEndian.Uint16(buf[20:])
	r.WrtTime = binary.LittleEndian.Uint16(buf[22:])
	r.WrtDate = binary.LittleEndian.Uint16(buf[24:])
	r.FstClusLO = binary.LittleEndian.Uint16(buf[26:])
	r.FileSize = binary.LittleEndian.Uint32(buf[28:])
	return r
}
