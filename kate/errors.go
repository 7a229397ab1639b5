package kate

import (
	"errors"

	"github.com/availproject/avail-core-go/grid"
)

var (
	// ErrInvalidData covers proof, value or commitment bytes that do not
	// deserialize to valid field or group elements, and structurally
	// inconsistent proof inputs.
	ErrInvalidData = errors.New("kate: proof, data or commitment is not valid")
	// ErrInvalidDomain is the grid's domain-size sentinel, shared so both
	// layers report the same condition.
	ErrInvalidDomain = grid.ErrInvalidDomain
	// ErrInvalidDegree signals public parameters too small for the
	// requested dimensions.
	ErrInvalidDegree = errors.New("kate: public parameters degree is too small for given dimensions")
	// ErrInvalidPositionInDomain signals a cell position outside the grid.
	ErrInvalidPositionInDomain = errors.New("kate: position isn't in domain")

	ErrFailedToConvertEvals       = errors.New("kate: failed to convert evals to scalar")
	ErrFailedToParseProof         = errors.New("kate: failed to parse proof")
	ErrFailedToExtractCommitments = errors.New("kate: failed to extract commitments")
	// ErrFailedToVerifyProof covers pairing-check plumbing failures, as
	// opposed to a legitimate negative verification result.
	ErrFailedToVerifyProof = errors.New("kate: failed to verify proof")
)
