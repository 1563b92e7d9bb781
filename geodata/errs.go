package geodata

import (
	"fmt"

	"github.com/ncalm/codem-core/codemerr"
)

func errInvalidResolution(v float64) error {
	return fmt.Errorf("%w: %v", codemerr.ErrInvalidResolution, v)
}

func errUnsupportedFormat(path string) error {
	return fmt.Errorf("%w: %s", codemerr.ErrUnsupportedFormat, path)
}

func errMissingTransform(path string) error {
	return fmt.Errorf("%w: %s", codemerr.ErrMissingTransform, path)
}

func errNonConformal(path string) error {
	return fmt.Errorf("%w: %s", codemerr.ErrNonConformalTransform, path)
}

func errEmptyInput(detail string) error {
	return fmt.Errorf("%w: %s", codemerr.ErrEmptyInput, detail)
}

func errCRSUndefinedOrMismatch() error {
	return codemerr.ErrCRSMissingOrMismatch
}

func errDisjointBounds() error {
	return codemerr.ErrDisjointBounds
}
