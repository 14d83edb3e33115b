package payroll

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeAmount(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"42.00", "42"},
		{"42", "42"},
		{"42.50", "42.5"},
		{"0.00010000", "0.0001"},
		{"1000.000", "1000"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			d, err := ParseAmount(tt.in)
			require.NoError(t, err)
			got := NormalizeAmount(d)
			assert.True(t, got.Equal(decimal.RequireFromString(tt.want)))
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestNormalizeAmountDropsExponentForWholeNumbers(t *testing.T) {
	d, err := ParseAmount("42.00")
	require.NoError(t, err)
	assert.Equal(t, int32(0), NormalizeAmount(d).Exponent())

	d, err = ParseAmount("42.50")
	require.NoError(t, err)
	assert.Equal(t, "42.50", NormalizeAmount(d).StringFixed(2))
}

func TestParseAmount(t *testing.T) {
	d, err := ParseAmount(" 12,5 ")
	require.NoError(t, err)
	assert.Equal(t, "12.5", d.String())

	_, err = ParseAmount("twelve")
	assert.Error(t, err)

	_, err = ParseAmount("")
	assert.Error(t, err)
}

func TestParseAmountBounds(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr error
	}{
		{in: "999999999999.99999999", want: "999999999999.99999999"},
		{in: "0.00000001", want: "0.00000001"},
		{in: "42.000000000", want: "42"},
		{in: "1000000000000", wantErr: ErrAmountOutOfRange},
		{in: "-1000000000000", wantErr: ErrAmountOutOfRange},
		{in: "0.000000001", wantErr: ErrAmountOutOfRange},
		{in: "1.123456789", wantErr: ErrAmountOutOfRange},
		{in: "1e3", wantErr: errAmountSyntax},
		{in: "1E3", wantErr: errAmountSyntax},
		{in: "1e3000000", wantErr: errAmountSyntax},
		{in: "1e-20", wantErr: errAmountSyntax},
		{in: "1" + strings.Repeat("0", 40), wantErr: errAmountSyntax},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			d, err := ParseAmount(tt.in)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, NormalizeAmount(d).String())
		})
	}
}
