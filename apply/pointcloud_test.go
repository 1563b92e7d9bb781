package apply

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestForwardOrOverrideDefaultsToSourceValue(t *testing.T) {
	t.Parallel()
	assert.Equal(t, 1234.5, forwardOrOverride(1234.5, ""))
	assert.Equal(t, 1234.5, forwardOrOverride(1234.5, "auto"))
}

func TestForwardOrOverrideParsesExplicitValue(t *testing.T) {
	t.Parallel()
	assert.Equal(t, 500.0, forwardOrOverride(1234.5, "500.0"))
}

func TestForwardOrOverrideFallsBackOnUnparsableValue(t *testing.T) {
	t.Parallel()
	assert.Equal(t, 1234.5, forwardOrOverride(1234.5, "not-a-number"))
}
