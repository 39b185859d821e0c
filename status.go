package ydev

import "errors"

// Dispatch and driver errors. Read and Write report partial completion
// with a short count and a nil error; these sentinels mark true failures.
var (
	ErrInvalidParam   = errors.New("ydev: invalid parameter")
	ErrNotFound       = errors.New("ydev: no driver registered for device type")
	ErrNotSupported   = errors.New("ydev: operation not supported")
	ErrNotInitialized = errors.New("ydev: handle not initialized")
	ErrTimeout        = errors.New("ydev: operation timed out")
	ErrSPI            = errors.New("ydev: short SPI transfer")
	ErrInvalidAddress = errors.New("ydev: address out of range")
	ErrChipNotFound   = errors.New("ydev: flash chip not identified")
	ErrWriteFail      = errors.New("ydev: page program failed")
	ErrEraseFail      = errors.New("ydev: erase failed")
)

// Errno accumulates driver-level failure bits on a handle. It survives
// across calls until cleared, so a caller can tell a short read caused
// by a timeout apart from one caused by a slow bus.
type Errno uint32

const (
	ErrnoNotFound Errno = 1 << iota
	ErrnoNotInit
	ErrnoBusy
	ErrnoWriteProtected
	ErrnoEraseFail
	ErrnoProgramFail
	ErrnoInvalidAddress
	ErrnoInvalidSize
	ErrnoSPIError
	ErrnoTimeout
	ErrnoChipNotFound
	ErrnoInvalidParam
	ErrnoWriteFail
)

// Has reports whether all bits in mask are set.
func (e Errno) Has(mask Errno) bool { return e&mask == mask }
