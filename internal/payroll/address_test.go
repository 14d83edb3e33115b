package payroll

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	mainnetP2PKH  = "1BvBMSEYstWetqTFn5Au4m4GFg7xJaNVN2"
	mainnetP2SH   = "3J98t1WpEZ73CNmQviecrnyiWrnqRhWNLy"
	mainnetBech32 = "bc1qw508d6qejxtdg4y5r3zarvary0c5xw7kv8f3t4"
	mainnetP2WSH  = "bc1qrp33g0q5c5txsp9arysrx4k6zdkfs4nce4xj0gdcccefvpysxf3qccfmv3"
	testnetBech32 = "tb1qw508d6qejxtdg4y5r3zarvary0c5xw7kxpjzsx"
)

func TestAddressValidatorMainnet(t *testing.T) {
	v, err := NewAddressValidator("mainnet")
	require.NoError(t, err)

	for _, addr := range []string{mainnetP2PKH, mainnetP2SH, mainnetBech32, mainnetP2WSH} {
		got, err := v.Validate(addr)
		assert.NoError(t, err)
		assert.Equal(t, addr, got)
	}

	got, err := v.Validate("  " + mainnetBech32 + "  ")
	assert.NoError(t, err)
	assert.Equal(t, mainnetBech32, got)

	for _, addr := range []string{"", "not-an-address", testnetBech32} {
		_, err := v.Validate(addr)
		assert.Error(t, err, addr)
	}
}

func TestAddressValidatorCanonicalizesBech32Case(t *testing.T) {
	v, err := NewAddressValidator("mainnet")
	require.NoError(t, err)

	got, err := v.Validate(strings.ToUpper(mainnetBech32))
	require.NoError(t, err)
	assert.Equal(t, mainnetBech32, got)

	// mixed case is invalid bech32
	_, err = v.Validate("bc1QW508d6qejxtdg4y5r3zarvary0c5xw7kv8f3t4")
	assert.Error(t, err)
}

func TestAddressValidatorTestnet(t *testing.T) {
	v, err := NewAddressValidator("testnet")
	require.NoError(t, err)

	_, err = v.Validate(testnetBech32)
	assert.NoError(t, err)
	_, err = v.Validate(mainnetBech32)
	assert.Error(t, err)
}

func TestAddressValidatorUnknownNetwork(t *testing.T) {
	_, err := NewAddressValidator("litecoin")
	assert.Error(t, err)
}
