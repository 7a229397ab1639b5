package lookup

import (
	"encoding/binary"
	"errors"
)

// SCALE compact-u32 codec, shared by the header-persisted lookup and the
// grid's payload length prefixes.

var errCompact = errors.New("lookup: malformed compact integer")

func AppendCompactU32(b []byte, v uint32) []byte {
	switch {
	case v < 1<<6:
		return append(b, byte(v)<<2)
	case v < 1<<14:
		return binary.LittleEndian.AppendUint16(b, uint16(v)<<2|0b01)
	case v < 1<<30:
		return binary.LittleEndian.AppendUint32(b, v<<2|0b10)
	default:
		b = append(b, 0b11)
		return binary.LittleEndian.AppendUint32(b, v)
	}
}

// DecodeCompactU32 reads one compact integer and returns it with the
// remaining bytes.
func DecodeCompactU32(b []byte) (uint32, []byte, error) {
	if len(b) == 0 {
		return 0, nil, errCompact
	}
	switch b[0] & 0b11 {
	case 0b00:
		return uint32(b[0] >> 2), b[1:], nil
	case 0b01:
		if len(b) < 2 {
			return 0, nil, errCompact
		}
		return uint32(binary.LittleEndian.Uint16(b) >> 2), b[2:], nil
	case 0b10:
		if len(b) < 4 {
			return 0, nil, errCompact
		}
		return binary.LittleEndian.Uint32(b) >> 2, b[4:], nil
	default:
		// Big-integer mode: only the single 4-byte limb form fits a u32.
		if b[0]>>2 != 0 || len(b) < 5 {
			return 0, nil, errCompact
		}
		return binary.LittleEndian.Uint32(b[1:]), b[5:], nil
	}
}
