package ydev

import "io"

// UsartConfig attaches a byte-stream port: a tty, a pipe, anything
// implementing io.ReadWriter. Register-level UART setup stays with
// whoever opened the port.
type UsartConfig struct {
	BaseConfig
	Port io.ReadWriter
}

// NewUsartConfig wraps an open port.
func NewUsartConfig(port io.ReadWriter) *UsartConfig {
	return &UsartConfig{
		BaseConfig: BaseConfig{Type: TypeUsart},
		Port:       port,
	}
}

// UsartHandle forwards Read and Write to the underlying port. The kind
// has no ioctl; dispatch reports ErrNotSupported for it.
type UsartHandle struct {
	BaseHandle
	port io.ReadWriter
}

func usartInit(cfg Config, h Handle) error {
	uc, ok := cfg.(*UsartConfig)
	if !ok {
		return ErrInvalidParam
	}
	uh, ok := h.(*UsartHandle)
	if !ok {
		return ErrInvalidParam
	}
	if uc.Port == nil {
		return ErrInvalidParam
	}
	uh.port = uc.Port
	return nil
}

func usartDeinit(h Handle) error {
	uh, ok := h.(*UsartHandle)
	if !ok {
		return ErrInvalidParam
	}
	if c, ok := uh.port.(io.Closer); ok {
		if err := c.Close(); err != nil {
			return err
		}
	}
	uh.port = nil
	return nil
}

func usartRead(h Handle, buf []byte) (int, error) {
	uh, ok := h.(*UsartHandle)
	if !ok || uh.port == nil {
		return 0, ErrInvalidParam
	}
	n, err := uh.port.Read(buf)
	if err == io.EOF {
		// Stream drained: a short read, not a device failure.
		return n, nil
	}
	return n, err
}

func usartWrite(h Handle, buf []byte) (int, error) {
	uh, ok := h.(*UsartHandle)
	if !ok || uh.port == nil {
		return 0, ErrInvalidParam
	}
	return uh.port.Write(buf)
}
