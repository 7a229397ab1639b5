// Package extension holds the versioned commitment container persisted
// in a block header: the per-row KZG commitments, the extended grid
// dimensions, the data root and the application index.
package extension

import (
	"github.com/availproject/avail-core-go/lookup"
)

// KateCommitment is the commitment section shared by every extension
// version: the extended grid's dimensions, the concatenated 48-byte row
// commitments in row order, and the Merkle root of the block's data.
type KateCommitment struct {
	Rows       uint16
	Cols       uint16
	Commitment []byte
	DataRoot   [32]byte
}

// V3 pairs the commitments with the application range index.
type V3 struct {
	AppLookup  *lookup.DataLookup
	Commitment KateCommitment
}

// V4 additionally tracks per-transaction row spans in the lookup, which
// V3 headers predate. The container shape is otherwise identical.
type V4 struct {
	AppLookup  *lookup.DataLookup
	Commitment KateCommitment
}

// Extension is the versioned header extension. Exactly one of the
// variant pointers is set; every accessor dispatches on the variant in
// one place so adding a version touches a single switch per operation.
type Extension struct {
	v3 *V3
	v4 *V4
}

// NewV3 wraps a V3 payload.
func NewV3(v *V3) Extension { return Extension{v3: v} }

// NewV4 wraps a V4 payload.
func NewV4(v *V4) Extension { return Extension{v4: v} }

// NewEmpty is the extension of a block with no data: an empty lookup and
// zero-dimension commitment, at the current version.
func NewEmpty() Extension {
	return NewV4(&V4{AppLookup: lookup.NewEmpty()})
}

// NewFaulty marks a block whose commitment generation failed. The error
// state travels in the lookup so verifiers reject the block's ranges
// without a separate flag.
func NewFaulty() Extension {
	return NewV4(&V4{AppLookup: lookup.NewError()})
}

func (e *Extension) commitment() *KateCommitment {
	switch {
	case e.v4 != nil:
		return &e.v4.Commitment
	case e.v3 != nil:
		return &e.v3.Commitment
	default:
		return &KateCommitment{}
	}
}

// Version reports the variant number.
func (e *Extension) Version() uint8 {
	if e.v4 != nil {
		return 4
	}
	return 3
}

// AppLookup returns the application range index of whichever variant is
// set.
func (e *Extension) AppLookup() *lookup.DataLookup {
	switch {
	case e.v4 != nil:
		return e.v4.AppLookup
	case e.v3 != nil:
		return e.v3.AppLookup
	default:
		return lookup.NewEmpty()
	}
}

// DataRoot returns the data root of the active variant.
func (e *Extension) DataRoot() [32]byte { return e.commitment().DataRoot }

// Rows returns the extended grid's row count.
func (e *Extension) Rows() uint16 { return e.commitment().Rows }

// Cols returns the extended grid's column count.
func (e *Extension) Cols() uint16 { return e.commitment().Cols }

// Commitments returns the concatenated row commitment bytes.
func (e *Extension) Commitments() []byte { return e.commitment().Commitment }
