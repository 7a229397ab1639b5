// Package cell defines the ephemeral proof-delivery artifacts exchanged
// between provers and samplers: single proved cells, multiproof cells and
// the rectangular sub-block descriptor a multiproof covers. All layouts
// are byte-exact wire contracts.
package cell

import (
	"errors"
	"fmt"
)

const (
	// ProofSize is the compressed G1 witness size.
	ProofSize = 48
	// ScalarSize is the serialized field element size.
	ScalarSize = 32
	// ContentSize is the single-cell payload: proof followed by value.
	ContentSize = ProofSize + ScalarSize
)

var ErrBadLength = errors.New("cell: wrong content length")

// Position of a cell in the extended matrix.
type Position struct {
	Row uint32
	Col uint16
}

// Reference builds the canonical cache key of a cell within a block.
func (p Position) Reference(block uint32) string {
	return fmt.Sprintf("%d:%d:%d", block, p.Col, p.Row)
}

// SingleCell carries one proved cell: a 48-byte opening proof followed by
// the 32-byte evaluation.
type SingleCell struct {
	Position Position
	Content  [ContentSize]byte
}

// NewSingleCell assembles a cell from its proof and value parts.
func NewSingleCell(pos Position, proof [ProofSize]byte, value [ScalarSize]byte) *SingleCell {
	c := &SingleCell{Position: pos}
	copy(c.Content[:ProofSize], proof[:])
	copy(c.Content[ProofSize:], value[:])
	return c
}

// SingleCellFromBytes parses an 80-byte cell payload.
func SingleCellFromBytes(pos Position, content []byte) (*SingleCell, error) {
	if len(content) != ContentSize {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrBadLength, len(content), ContentSize)
	}
	c := &SingleCell{Position: pos}
	copy(c.Content[:], content)
	return c, nil
}

// Data returns the trailing 32-byte evaluation.
func (c *SingleCell) Data() [ScalarSize]byte {
	var out [ScalarSize]byte
	copy(out[:], c.Content[ProofSize:])
	return out
}

// Proof returns the leading 48-byte opening proof.
func (c *SingleCell) Proof() [ProofSize]byte {
	var out [ProofSize]byte
	copy(out[:], c.Content[:ProofSize])
	return out
}
