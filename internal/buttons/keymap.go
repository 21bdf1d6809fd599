package buttons

import "encoding/binary"

// Linux input-event-codes.h
const (
	evKey = 0x01

	keyEsc     = 1
	keyQ       = 16
	keyR       = 19
	keyP       = 25
	keyEnter   = 28
	keyS       = 31
	keySpace   = 57
	keyF4      = 62
	keyKPEnter = 96
	keyCamera  = 212
)

// DefaultKeyMap binds keyboard keys to the four camera controls.
var DefaultKeyMap = map[uint16]Event{
	keySpace:   Toggle,
	keyS:       Toggle,
	keyEnter:   Capture,
	keyKPEnter: Capture,
	keyP:       Capture,
	keyCamera:  Capture,
	keyR:       Rotate,
	keyQ:       Quit,
	keyEsc:     Quit,
	keyF4:      Quit,
}

// decodeKeyEvents parses a buffer of input_event records and returns the
// mapped events for key presses. Releases and autorepeat are ignored.
func decodeKeyEvents(buf []byte, tvSize int, keymap map[uint16]Event) []Event {
	eventSize := tvSize + 8
	var out []Event
	for off := 0; off+eventSize <= len(buf); off += eventSize {
		rec := buf[off : off+eventSize]
		// type and code are immediately after timeval.
		typ := binary.LittleEndian.Uint16(rec[tvSize : tvSize+2])
		code := binary.LittleEndian.Uint16(rec[tvSize+2 : tvSize+4])
		value := int32(binary.LittleEndian.Uint32(rec[tvSize+4 : tvSize+8]))
		if typ != evKey || value != 1 {
			continue
		}
		if ev, ok := keymap[code]; ok {
			out = append(out, ev)
		}
	}
	return out
}
