package apply

import (
	"fmt"

	"github.com/ncalm/codem-core/codemerr"
)

func errNoPoints(detail string) error {
	return fmt.Errorf("%w: %s", codemerr.ErrEmptyInput, detail)
}

func errTooFewResiduals(n int) error {
	return fmt.Errorf("%w: need at least 3 residual origins to triangulate, got %d", codemerr.ErrEmptyInput, n)
}
