// Written by hand in the shape of MockGen output.
// Source: github.com/iris-fs/vfat (interfaces: BlockDevice)

// Package mocks contains a hand-authored golang/mock-style double for
// vfat.BlockDevice, used to unit test CachedPartition's error-wrapping and
// sector-end truncation behavior in isolation from any real device.
package mocks

import (
	reflect "reflect"

	gomock "github.com/golang/mock/gomock"

	vfat "github.com/iris-fs/vfat"
)

// MockBlockDevice is a mock of the BlockDevice interface.
type MockBlockDevice struct {
	ctrl     *gomock.Controller
	recorder *MockBlockDeviceMockRecorder
}

// MockBlockDeviceMockRecorder is the mock recorder for MockBlockDevice.
type MockBlockDeviceMockRecorder struct {
	mock *MockBlockDevice
}

// NewMockBlockDevice creates a new mock instance.
func NewMockBlockDevice(ctrl *gomock.Controller) *MockBlockDevice {
	mock := &MockBlockDevice{ctrl: ctrl}
	mock.recorder = &MockBlockDeviceMockRecorder{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use.
func (m *MockBlockDevice) EXPECT() *MockBlockDeviceMockRecorder {
	return m.recorder
}

// SectorSize mocks base method.
func (m *MockBlockDevice) SectorSize() int {
	ret := m.ctrl.Call(m, "SectorSize")
	ret0, _ := ret[0].(int)
	return ret0
}

// SectorSize indicates an expected call of SectorSize.
func (mr *MockBlockDeviceMockRecorder) SectorSize() *gomock.Call {
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "SectorSize", reflect.TypeOf((*MockBlockDevice)(nil).SectorSize))
}

// ReadSectorOffset mocks base method.
func (m *MockBlockDevice) ReadSectorOffset(sector vfat.SectorID, offset int, buf []byte) (int, error) {
	ret := m.ctrl.Call(m, "ReadSectorOffset", sector, offset, buf)
	ret0, _ := ret[0].(int)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// ReadSectorOffset indicates an expected call of ReadSectorOffset.
func (mr *MockBlockDeviceMockRecorder) ReadSectorOffset(sector, offset, buf interface{}) *gomock.Call {
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "ReadSectorOffset", reflect.TypeOf((*MockBlockDevice)(nil).ReadSectorOffset), sector, offset, buf)
}

// WriteSectorOffset mocks base method.
func (m *MockBlockDevice) WriteSectorOffset(sector vfat.SectorID, offset int, buf []byte) (int, error) {
	ret := m.ctrl.Call(m, "WriteSectorOffset", sector, offset, buf)
	ret0, _ := ret[0].(int)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// WriteSectorOffset indicates an expected call of WriteSectorOffset.
func (mr *MockBlockDeviceMockRecorder) WriteSectorOffset(sector, offset, buf interface{}) *gomock.Call {
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "WriteSectorOffset", reflect.TypeOf((*MockBlockDevice)(nil).WriteSectorOffset), sector, offset, buf)
}

var _ vfat.BlockDevice = (*MockBlockDevice)(nil)
