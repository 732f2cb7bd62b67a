//go:build !pixy2 || !cgo

package pixy2

func newUSBDevice() (Device, error) {
	return nil, ErrNoUSBSupport
}
