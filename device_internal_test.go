package ydev

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// A table entry without an init must reject the handle unbound: a
// caller that ignores the error gets ErrNotInitialized from dispatch,
// never a half-initialized handle.
func TestInitNilEntryLeavesHandleUnbound(t *testing.T) {
	saved := opsTable[TypeDma]
	opsTable[TypeDma].Init = nil
	defer func() { opsTable[TypeDma] = saved }()

	h := &DmaHandle{}
	assert.ErrorIs(t, Init(NewDmaConfig(0), h), ErrNotSupported)

	_, err := Read(h, make([]byte, 1))
	assert.ErrorIs(t, err, ErrNotInitialized)
	assert.ErrorIs(t, Deinit(h), ErrNotInitialized)
	assert.Zero(t, h.TimeoutMS)
}
