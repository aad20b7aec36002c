package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCartAddDefaultsToFirstVariant(t *testing.T) {
	srv := newCatalogServer(t)
	configPath, _ := writeTestConfig(t, srv.URL)

	out, err := runCommand(t, "--config", configPath, "cart", "add", "1")
	require.NoError(t, err)

	// smartphones enrich to tech colors and storage sizes; first of each
	// is selected and 128GB carries no multiplier.
	assert.Contains(t, out, "Aster Phone X")
	assert.Contains(t, out, "Space Grey")
	assert.Contains(t, out, "128GB")
	assert.Contains(t, out, "$899.99")
}

func TestCartAddSizeAffectsFrozenPrice(t *testing.T) {
	srv := newCatalogServer(t)
	configPath, _ := writeTestConfig(t, srv.URL)

	out, err := runCommand(t, "--config", configPath, "cart", "add", "1", "--size", "512GB")
	require.NoError(t, err)
	assert.Contains(t, out, "$1,124.99")

	out, err = runCommand(t, "--config", configPath, "cart", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "1-Space Grey-512GB")
	assert.Contains(t, out, "$1,124.99")
}

func TestCartMergesSameVariant(t *testing.T) {
	srv := newCatalogServer(t)
	configPath, _ := writeTestConfig(t, srv.URL)

	for i := 0; i < 3; i++ {
		_, err := runCommand(t, "--config", configPath, "cart", "add", "2")
		require.NoError(t, err)
	}

	out, err := runCommand(t, "--config", configPath, "cart", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "x3")
	assert.Contains(t, out, "Total: $59.97")
}

func TestCartDistinctVariantsAreSeparateLines(t *testing.T) {
	srv := newCatalogServer(t)
	configPath, _ := writeTestConfig(t, srv.URL)

	_, err := runCommand(t, "--config", configPath, "cart", "add", "2", "--color", "Black")
	require.NoError(t, err)
	_, err = runCommand(t, "--config", configPath, "cart", "add", "2", "--color", "Navy")
	require.NoError(t, err)

	out, err := runCommand(t, "--config", configPath, "cart", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "2-Black-XS")
	assert.Contains(t, out, "2-Navy-XS")
}

func TestCartUpdateClampsToOne(t *testing.T) {
	srv := newCatalogServer(t)
	configPath, _ := writeTestConfig(t, srv.URL)

	_, err := runCommand(t, "--config", configPath, "cart", "add", "3")
	require.NoError(t, err)

	out, err := runCommand(t, "--config", configPath, "cart", "update", "3-Oak-Standard", "0")
	require.NoError(t, err)
	assert.Contains(t, out, "x1")

	out, err = runCommand(t, "--config", configPath, "cart", "update", "3-Oak-Standard", "5")
	require.NoError(t, err)
	assert.Contains(t, out, "x5")
	assert.Contains(t, out, "Total: $122.50")
}

func TestCartUpdateUnknownLine(t *testing.T) {
	srv := newCatalogServer(t)
	configPath, _ := writeTestConfig(t, srv.URL)

	_, err := runCommand(t, "--config", configPath, "cart", "update", "9-none-none", "2")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
}

func TestCartRemoveAndClear(t *testing.T) {
	srv := newCatalogServer(t)
	configPath, _ := writeTestConfig(t, srv.URL)

	_, err := runCommand(t, "--config", configPath, "cart", "add", "1")
	require.NoError(t, err)
	_, err = runCommand(t, "--config", configPath, "cart", "add", "2")
	require.NoError(t, err)

	out, err := runCommand(t, "--config", configPath, "cart", "remove", "1-Space Grey-128GB")
	require.NoError(t, err)
	assert.Contains(t, out, "Removed")

	out, err = runCommand(t, "--config", configPath, "cart", "list")
	require.NoError(t, err)
	assert.NotContains(t, out, "Aster Phone X")
	assert.Contains(t, out, "Plain Tee")

	_, err = runCommand(t, "--config", configPath, "cart", "clear")
	require.NoError(t, err)

	out, err = runCommand(t, "--config", configPath, "cart", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Your cart is empty")
}

func TestCartSurvivesAcrossInvocations(t *testing.T) {
	srv := newCatalogServer(t)
	configPath, _ := writeTestConfig(t, srv.URL)

	_, err := runCommand(t, "--config", configPath, "cart", "add", "1")
	require.NoError(t, err)

	// A fresh command tree reads the same database.
	out, err := runCommand(t, "--config", configPath, "cart", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Aster Phone X")
}
