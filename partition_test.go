package vfat_test

import (
	"errors"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"

	"github.com/iris-fs/vfat"
	"github.com/iris-fs/vfat/mocks"
)

func TestCachedPartitionWrapsDeviceReadError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	dev := mocks.NewMockBlockDevice(ctrl)
	underlying := errors.New("disk gone")
	dev.EXPECT().
		ReadSectorOffset(vfat.SectorID(3), 0, gomock.Any()).
		Return(0, underlying)

	geo := vfat.Geometry{SectorSize: 512, SectorsPerCluster: 1}
	partition := vfat.NewCachedPartition(dev, geo, nil)

	_, err := partition.ReadSector(3, make([]byte, 512))
	require.Error(t, err)
	require.ErrorIs(t, err, vfat.ErrIO)
	require.ErrorIs(t, err, underlying)
}

func TestCachedPartitionDelegatesWriteWithinBounds(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	dev := mocks.NewMockBlockDevice(ctrl)
	dev.EXPECT().
		WriteSectorOffset(vfat.SectorID(5), 10, []byte("hi")).
		Return(2, nil)

	geo := vfat.Geometry{SectorSize: 512, SectorsPerCluster: 1}
	partition := vfat.NewCachedPartition(dev, geo, nil)

	n, err := partition.WriteSectorOffset(5, 10, []byte("hi"))
	require.NoError(t, err)
	require.Equal(t, 2, n)
}

func TestCachedPartitionTruncatesWriteAtSectorEnd(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	dev := mocks.NewMockBlockDevice(ctrl)
	// offset 510 in a 512-byte sector leaves room for only 2 bytes.
	dev.EXPECT().
		WriteSectorOffset(vfat.SectorID(1), 510, []byte("ab")).
		Return(2, nil)

	geo := vfat.Geometry{SectorSize: 512, SectorsPerCluster: 1}
	partition := vfat.NewCachedPartition(dev, geo, nil)

	n, err := partition.WriteSectorOffset(1, 510, []byte("abcdef"))
	require.NoError(t, err)
	require.Equal(t, 2, n)
}
