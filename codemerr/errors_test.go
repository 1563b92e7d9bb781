package codemerr_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ncalm/codem-core/codemerr"
)

func TestSentinelsAreDistinguishableThroughWrapping(t *testing.T) {
	t.Parallel()
	wrapped := fmt.Errorf("%w: %s", codemerr.ErrUnsupportedFormat, "model.gltf")

	assert.True(t, errors.Is(wrapped, codemerr.ErrUnsupportedFormat))
	assert.False(t, errors.Is(wrapped, codemerr.ErrMissingTransform))
}

func TestSentinelsAreDistinctFromEachOther(t *testing.T) {
	t.Parallel()
	sentinels := []error{
		codemerr.ErrUnsupportedFormat,
		codemerr.ErrMissingTransform,
		codemerr.ErrNonConformalTransform,
		codemerr.ErrEmptyInput,
		codemerr.ErrCRSMissingOrMismatch,
		codemerr.ErrDisjointBounds,
		codemerr.ErrUnsafeUnitsCast,
		codemerr.ErrInvalidResolution,
		codemerr.ErrUnexpectedTransformKind,
	}
	for i, a := range sentinels {
		for j, b := range sentinels {
			if i == j {
				continue
			}
			assert.False(t, errors.Is(a, b), "sentinel %d should not match sentinel %d", i, j)
		}
	}
}
