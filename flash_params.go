package ydev

// FlashType enumerates the chips the driver can identify.
type FlashType uint8

const (
	FlashW25Q16 FlashType = iota
	FlashW25Q32
	FlashW25Q64
	FlashW25Q128
	FlashN25Q032
	FlashUnknown
)

func (t FlashType) String() string {
	if p, ok := flashParamsFor(t); ok {
		return p.name
	}
	return "unknown"
}

type flashParams struct {
	typ      FlashType
	name     string
	capacity uint32 // derived per chip, never from the raw JEDEC capacity byte

	// BUSY polling is manufacturer-specific: opcode of the status
	// register holding the busy flag, and the flag's bit mask.
	busyCmd  byte
	busyMask byte

	// Chips without the 0xD8 command erase with 4KB sectors only.
	has64KErase bool

	// Wait-busy ceilings in milliseconds, from the AC characteristics
	// tables of the respective datasheets.
	tPageProgram uint32
	tSectorErase uint32
	tBlockErase  uint32
	tChipErase   uint32
}

// knownFlash maps 24-bit JEDEC IDs to chip parameters.
//
//	[W25Q64JV|9.6 AC Electrical Characteristics]: tPP, tSE, tBE2, tCE
//	[N25Q32|Table 38: AC Characteristics and Operating Conditions]
var knownFlash = map[uint32]flashParams{
	0xEF4016: {
		typ: FlashW25Q16, name: "Winbond W25Q16", capacity: 2 << 20,
		busyCmd: flashCmdReadStatus1, busyMask: 1 << 0, has64KErase: true,
		tPageProgram: FlashTimeoutPageProgramMS,
		tSectorErase: FlashTimeoutSectorEraseMS,
		tBlockErase:  FlashTimeoutBlockEraseMS,
		tChipErase:   FlashTimeoutChipEraseMS,
	},
	0xEF4017: {
		typ: FlashW25Q32, name: "Winbond W25Q32", capacity: 4 << 20,
		busyCmd: flashCmdReadStatus1, busyMask: 1 << 0, has64KErase: true,
		tPageProgram: FlashTimeoutPageProgramMS,
		tSectorErase: FlashTimeoutSectorEraseMS,
		tBlockErase:  FlashTimeoutBlockEraseMS,
		tChipErase:   FlashTimeoutChipEraseMS,
	},
	0xEF4018: {
		typ: FlashW25Q64, name: "Winbond W25Q64", capacity: 8 << 20,
		busyCmd: flashCmdReadStatus1, busyMask: 1 << 0, has64KErase: true,
		tPageProgram: FlashTimeoutPageProgramMS,
		tSectorErase: FlashTimeoutSectorEraseMS,
		tBlockErase:  FlashTimeoutBlockEraseMS,
		tChipErase:   FlashTimeoutChipEraseMS,
	},
	0xEF4019: {
		typ: FlashW25Q128, name: "Winbond W25Q128", capacity: 16 << 20,
		busyCmd: flashCmdReadStatus1, busyMask: 1 << 0, has64KErase: true,
		tPageProgram: FlashTimeoutPageProgramMS,
		tSectorErase: FlashTimeoutSectorEraseMS,
		tBlockErase:  FlashTimeoutBlockEraseMS,
		tChipErase:   FlashTimeoutChipEraseMS,
	},
	0x20BA16: {
		typ: FlashN25Q032, name: "Micron N25Q032", capacity: 4 << 20,
		busyCmd: flashCmdReadStatus1, busyMask: 1 << 0, has64KErase: true,
		// [N25Q32]: tPP page program, tSSE subsector erase,
		// tSE sector erase, tBE bulk erase
		tPageProgram: 5,
		tSectorErase: 800,
		tBlockErase:  3000,
		tChipErase:   60000,
	},
}

func identifyFlash(jedecID uint32) (flashParams, bool) {
	p, ok := knownFlash[jedecID]
	return p, ok
}

func flashParamsFor(t FlashType) (flashParams, bool) {
	for _, p := range knownFlash {
		if p.typ == t {
			return p, true
		}
	}
	return flashParams{}, false
}
