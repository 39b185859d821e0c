package ydev

// Bus is the byte-oriented SPI transport the drivers run on: duplex
// transfer plus chip-select control for one attached device. A nil tx
// clocks out 0xFF dummy bytes; a nil rx discards the returned bytes.
// Transfer reports the number of bytes actually exchanged; a short
// count aborts whatever multi-step command sequence was in progress.
type Bus interface {
	Transfer(tx, rx []byte) (int, error)
	AssertCS() error
	DeassertCS() error
	Close() error
}

// SpeedLevel selects a bus clock class. The mapping to a concrete
// frequency belongs to the transport; the levels only order slow to
// fast.
type SpeedLevel uint8

const (
	SpeedLevel0 SpeedLevel = iota // slowest, safe bring-up speed
	SpeedLevel1
	SpeedLevel2
	SpeedLevel3 // fastest the transport supports
)

// CSMode selects who drives chip select.
type CSMode uint8

const (
	CSSoft CSMode = iota // transport toggles a GPIO around transfers
	CSHard               // controller hardware owns the line
)

// BusConfig describes one SPI bus attachment. Pin names are resolved by
// the transport opener; transports that hard-wire their pins ignore
// them.
type BusConfig struct {
	BusID    string     `yaml:"bus"`
	Mode     uint8      `yaml:"mode"` // SPI mode 0-3; NOR flash wants mode 0
	DataBits uint8      `yaml:"data_bits"`
	Speed    SpeedLevel `yaml:"speed"`
	CS       CSMode     `yaml:"cs_mode"`
	SCKPin   string     `yaml:"sck"`
	MISOPin  string     `yaml:"miso"`
	MOSIPin  string     `yaml:"mosi"`
	CSPin    string     `yaml:"cs"`
}

// BusOpener turns a BusConfig into a live Bus. Drivers open their
// sub-device through this seam so the same driver runs against real
// hardware or a simulated chip.
type BusOpener interface {
	Open(cfg BusConfig) (Bus, error)
}
