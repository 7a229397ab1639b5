package cell

import (
	"encoding/binary"
	"fmt"
	"math"
)

// GCellBlockSize is the serialized size of a GCellBlock.
const GCellBlockSize = 16

// GCellBlock is a half-open rectangular [start, end) sub-range of
// (column, row) grid coordinates covered by one multiproof. X addresses
// columns, Y rows.
type GCellBlock struct {
	StartX uint32
	StartY uint32
	EndX   uint32
	EndY   uint32
}

// Width returns the number of covered columns.
func (g *GCellBlock) Width() uint32 { return g.EndX - g.StartX }

// Height returns the number of covered rows.
func (g *GCellBlock) Height() uint32 { return g.EndY - g.StartY }

// ToBytes serializes the block as four little-endian u32s.
func (g *GCellBlock) ToBytes() [GCellBlockSize]byte {
	var out [GCellBlockSize]byte
	binary.LittleEndian.PutUint32(out[0:4], g.StartX)
	binary.LittleEndian.PutUint32(out[4:8], g.StartY)
	binary.LittleEndian.PutUint32(out[8:12], g.EndX)
	binary.LittleEndian.PutUint32(out[12:16], g.EndY)
	return out
}

// GCellBlockFromBytes parses a 16-byte block descriptor.
func GCellBlockFromBytes(b []byte) (*GCellBlock, error) {
	if len(b) != GCellBlockSize {
		return nil, fmt.Errorf("%w: GCellBlock must be exactly %d bytes", ErrBadLength, GCellBlockSize)
	}
	return &GCellBlock{
		StartX: binary.LittleEndian.Uint32(b[0:4]),
		StartY: binary.LittleEndian.Uint32(b[4:8]),
		EndX:   binary.LittleEndian.Uint32(b[8:12]),
		EndY:   binary.LittleEndian.Uint32(b[12:16]),
	}, nil
}

// MultiProofCell carries a batch of evaluations covered by a single
// aggregated opening proof. Scalars are stored as 4 uint64 limbs,
// least-significant limb first, and are ordered row-major within the
// block's own coordinate frame.
type MultiProofCell struct {
	Position Position
	Proof    [ProofSize]byte
	Block    GCellBlock
	Scalars  [][4]uint64
}

// Data flattens the scalars into bytes, each limb big-endian.
func (c *MultiProofCell) Data() []byte {
	out := make([]byte, 0, len(c.Scalars)*ScalarSize)
	for _, scalar := range c.Scalars {
		for _, limb := range scalar {
			out = binary.BigEndian.AppendUint64(out, limb)
		}
	}
	return out
}

// ToBytes serializes the cell:
// proof(48) | GCellBlock(16) | scalar count (u32 LE) | scalars.
func (c *MultiProofCell) ToBytes() []byte {
	out := make([]byte, 0, ProofSize+GCellBlockSize+4+len(c.Scalars)*ScalarSize)
	out = append(out, c.Proof[:]...)
	block := c.Block.ToBytes()
	out = append(out, block[:]...)
	out = binary.LittleEndian.AppendUint32(out, uint32(len(c.Scalars)))
	return append(out, c.Data()...)
}

// MultiProofCellFromBytes parses a multiproof cell, rejecting truncated or
// oversized input.
func MultiProofCellFromBytes(pos Position, b []byte) (*MultiProofCell, error) {
	const header = ProofSize + GCellBlockSize + 4
	if len(b) < header {
		return nil, fmt.Errorf("%w: multiproof cell needs at least %d bytes", ErrBadLength, header)
	}
	c := &MultiProofCell{Position: pos}
	copy(c.Proof[:], b[:ProofSize])
	block, err := GCellBlockFromBytes(b[ProofSize : ProofSize+GCellBlockSize])
	if err != nil {
		return nil, err
	}
	c.Block = *block

	count := binary.LittleEndian.Uint32(b[ProofSize+GCellBlockSize : header])
	rest := b[header:]
	if uint64(count) > math.MaxInt32 || uint64(len(rest)) != uint64(count)*ScalarSize {
		return nil, fmt.Errorf("%w: scalar section is %d bytes, count says %d scalars", ErrBadLength, len(rest), count)
	}
	c.Scalars = make([][4]uint64, count)
	for i := range c.Scalars {
		for j := 0; j < 4; j++ {
			c.Scalars[i][j] = binary.BigEndian.Uint64(rest[i*ScalarSize+j*8:])
		}
	}
	return c, nil
}
