package ydev

// DmaConfig reserves a transfer channel slot. The kind registers init
// and deinit only; per the dispatch contract its Read and Write move no
// data and its Ioctl is not supported. Register-level DMA programming
// belongs to the platform layer.
type DmaConfig struct {
	BaseConfig
	Channel uint8
}

// NewDmaConfig reserves the given channel.
func NewDmaConfig(channel uint8) *DmaConfig {
	return &DmaConfig{
		BaseConfig: BaseConfig{Type: TypeDma},
		Channel:    channel,
	}
}

// DmaHandle marks a claimed channel.
type DmaHandle struct {
	BaseHandle
	channel uint8
	claimed bool
}

// Channel returns the claimed channel number.
func (h *DmaHandle) Channel() uint8 { return h.channel }

func dmaInit(cfg Config, h Handle) error {
	dc, ok := cfg.(*DmaConfig)
	if !ok {
		return ErrInvalidParam
	}
	dh, ok := h.(*DmaHandle)
	if !ok {
		return ErrInvalidParam
	}
	dh.channel = dc.Channel
	dh.claimed = true
	return nil
}

func dmaDeinit(h Handle) error {
	dh, ok := h.(*DmaHandle)
	if !ok {
		return ErrInvalidParam
	}
	dh.claimed = false
	dh.channel = 0
	return nil
}
