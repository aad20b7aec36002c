package cli

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var validFormArgs = []string{
	"--name", "John Doe",
	"--email", "john@example.com",
	"--address", "123 Main St",
	"--city", "Springfield",
	"--zip", "12345",
	"--card", "4242424242424242",
	"--exp", "12/30",
	"--cvc", "123",
}

func TestCheckoutEmptyCart(t *testing.T) {
	srv := newCatalogServer(t)
	configPath, _ := writeTestConfig(t, srv.URL)

	args := append([]string{"--config", configPath, "checkout"}, validFormArgs...)
	_, err := runCommand(t, args...)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cart is empty")
	assert.Equal(t, ExitFailure, GetExitCode(err))
}

func TestCheckoutInvalidFormListsFields(t *testing.T) {
	srv := newCatalogServer(t)
	configPath, _ := writeTestConfig(t, srv.URL)

	_, err := runCommand(t, "--config", configPath, "cart", "add", "1")
	require.NoError(t, err)

	out, err := runCommand(t, "--config", configPath, "checkout",
		"--name", "John Doe",
		"--email", "not-an-email",
		"--address", "123 Main St",
		"--city", "Springfield",
		"--zip", "12ab5",
		"--card", "42",
		"--exp", "13/30",
		"--cvc", "12",
	)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "email")
	assert.Contains(t, out, "zip")
	assert.Contains(t, out, "card")
	assert.Contains(t, out, "exp")
	assert.Contains(t, out, "cvc")
	assert.NotContains(t, out, "Name is required")

	// Nothing was submitted: the cart is intact and no order exists.
	out, err = runCommand(t, "--config", configPath, "orders")
	require.NoError(t, err)
	assert.Contains(t, out, "No orders yet")
}

func TestCheckoutPlacesOrderAndClearsCart(t *testing.T) {
	srv := newCatalogServer(t)
	configPath, _ := writeTestConfig(t, srv.URL)

	_, err := runCommand(t, "--config", configPath, "cart", "add", "1", "--size", "256GB")
	require.NoError(t, err)
	_, err = runCommand(t, "--config", configPath, "cart", "add", "2")
	require.NoError(t, err)

	args := append([]string{"--config", configPath, "checkout"}, validFormArgs...)
	out, err := runCommand(t, args...)
	require.NoError(t, err)

	// 899.99 * 1.10 = 989.99 plus the tee.
	assert.Contains(t, out, "Order ORD-")
	assert.Contains(t, out, "John Doe")
	assert.Contains(t, out, "Total: $1,009.98")

	out, err = runCommand(t, "--config", configPath, "cart", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Your cart is empty")

	out, err = runCommand(t, "--config", configPath, "orders")
	require.NoError(t, err)
	assert.Contains(t, out, "ORD-")
	assert.Contains(t, out, "placed")
	assert.Contains(t, out, "$1,009.98")
}

func TestOrdersNewestFirst(t *testing.T) {
	srv := newCatalogServer(t)
	configPath, _ := writeTestConfig(t, srv.URL)

	for _, id := range []string{"1", "2"} {
		_, err := runCommand(t, "--config", configPath, "cart", "add", id)
		require.NoError(t, err)
		args := append([]string{"--config", configPath, "checkout"}, validFormArgs...)
		_, err = runCommand(t, args...)
		require.NoError(t, err)
	}

	out, err := runCommand(t, "--config", configPath, "--verbose", "orders")
	require.NoError(t, err)

	// Second order (the tee) is listed before the first (the phone).
	teePos := strings.Index(out, "Plain Tee")
	phonePos := strings.Index(out, "Aster Phone X")
	require.GreaterOrEqual(t, teePos, 0)
	require.GreaterOrEqual(t, phonePos, 0)
	assert.Less(t, teePos, phonePos)
}

func TestOrdersProgressRendering(t *testing.T) {
	srv := newCatalogServer(t)
	configPath, _ := writeTestConfig(t, srv.URL)

	_, err := runCommand(t, "--config", configPath, "cart", "add", "3")
	require.NoError(t, err)
	args := append([]string{"--config", configPath, "checkout"}, validFormArgs...)
	_, err = runCommand(t, args...)
	require.NoError(t, err)

	out, err := runCommand(t, "--config", configPath, "orders")
	require.NoError(t, err)
	assert.Contains(t, out, "placed    [#----]")
}
