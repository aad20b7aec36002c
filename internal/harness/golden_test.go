package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckoutFlowGolden(t *testing.T) {
	scenario := loadTestdataScenario(t, "checkout_flow.yaml")

	result, err := RunWithGolden(t, scenario)
	require.NoError(t, err)
	assert.True(t, result.Passed(), "assertion failures: %v", result.Errors)
}
