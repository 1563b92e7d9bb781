// Package codemerr defines the distinguishable error kinds the
// co-registration core raises, per spec.md section 7. Callers use
// errors.Is against these sentinels; wrapping preserves detail with
// fmt.Errorf("%w: ...", codemerr.ErrX).
package codemerr

import "errors"

var (
	// ErrUnsupportedFormat means the file extension matched no
	// recognized raster, mesh, or point-cloud set.
	ErrUnsupportedFormat = errors.New("unsupported format")

	// ErrMissingTransform means a raster had an identity or absent
	// affine transform.
	ErrMissingTransform = errors.New("missing transform")

	// ErrNonConformalTransform means a raster's transform has
	// rotation or unequal X/Y pixel scales.
	ErrNonConformalTransform = errors.New("non-conformal transform")

	// ErrEmptyInput means a DSM array was entirely nodata, or a point
	// cloud had fewer points than required for normal generation.
	ErrEmptyInput = errors.New("empty input")

	// ErrCRSMissingOrMismatch means tight-search clipping was
	// requested but the two datasets' CRS were absent or unequal.
	ErrCRSMissingOrMismatch = errors.New("CRS missing or mismatched")

	// ErrDisjointBounds means the inflated AOI and foundation
	// bounding boxes do not overlap.
	ErrDisjointBounds = errors.New("disjoint bounds")

	// ErrUnsafeUnitsCast is a warning-grade condition: the units
	// factor could not be applied to the raster dtype without loss.
	// Per spec.md policy this is logged, not fatal: the DSM reader only
	// logs a warning and scales anyway, and no operation in this module
	// returns this error.
	ErrUnsafeUnitsCast = errors.New("unsafe units cast")

	// ErrInvalidResolution means a non-positive resolution was set.
	ErrInvalidResolution = errors.New("invalid resolution")

	// ErrUnexpectedTransformKind means the applier received a
	// transform of the wrong shape for the target data kind.
	ErrUnexpectedTransformKind = errors.New("unexpected transform kind")
)
