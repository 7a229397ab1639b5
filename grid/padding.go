package grid

import (
	"fmt"

	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
)

// padIEC97971 appends the 0x80 end-of-data marker and zero-fills up to a
// whole number of DataChunkSize chunks (IEC 9797-1 method 2, stretched to
// the chunk size).
func padIEC97971(data []byte) []byte {
	padded := make([]byte, 0, PaddedLen(uint32(len(data))))
	padded = append(padded, data...)
	padded = append(padded, 0x80)
	for len(padded)%DataChunkSize != 0 {
		padded = append(padded, 0)
	}
	return padded
}

// PaddedLen precomputes the length padIEC97971 produces for a payload of
// the given length.
func PaddedLen(n uint32) uint32 {
	withMarker := n + 1
	offset := (DataChunkSize - withMarker%DataChunkSize) % DataChunkSize
	return withMarker + offset
}

// UnpadData strips the zero fill and the 0x80 marker, recovering the
// payload bytes.
func UnpadData(padded []byte) ([]byte, error) {
	i := len(padded)
	for i > 0 && padded[i-1] == 0 {
		i--
	}
	if i == 0 || padded[i-1] != 0x80 {
		return nil, fmt.Errorf("grid: missing padding marker")
	}
	return padded[:i-1], nil
}

// scalarsFromPadded packs DataChunkSize-byte chunks of an already padded
// buffer into scalars. Each 31-byte chunk is below the field modulus by
// construction.
func scalarsFromPadded(padded []byte) []fr.Element {
	out := make([]fr.Element, 0, len(padded)/DataChunkSize)
	for i := 0; i < len(padded); i += DataChunkSize {
		var e fr.Element
		e.SetBytes(padded[i : i+DataChunkSize])
		out = append(out, e)
	}
	return out
}

// ScalarToChunk recovers the DataChunkSize payload bytes a data scalar was
// built from.
func ScalarToChunk(e fr.Element) [DataChunkSize]byte {
	b := e.Bytes()
	var out [DataChunkSize]byte
	copy(out[:], b[ScalarSize-DataChunkSize:])
	return out
}
