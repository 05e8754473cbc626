package core

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr error
	}{
		{in: "12.34", want: "12.34"},
		{in: "12,34", want: "12.34"},
		{in: " 1000 ", want: "1000"},
		{in: "0", want: "0"},
		{in: "0.00", want: "0"},
		{in: ".5", want: "0.5"},
		{in: "+7", want: "7"},
		{in: "-5", wantErr: ErrNegativeAmount},
		{in: "", wantErr: ErrInvalidAmount},
		{in: "abc", wantErr: ErrInvalidAmount},
		{in: "1.2.3", wantErr: ErrInvalidAmount},
		{in: ".", wantErr: ErrInvalidAmount},
		{in: "1e3", wantErr: ErrInvalidAmount},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseAmount(tt.in)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
			assert.True(t, got.Equal(decimal.RequireFromString(tt.want)), "got %s want %s", got, tt.want)
		})
	}
}

func TestFormatDollars(t *testing.T) {
	cases := map[string]string{
		"0":         "$0.00",
		"5":         "$5.00",
		"1000":      "$1,000.00",
		"1234567.5": "$1,234,567.50",
		"-950":      "-$950.00",
		"999.999":   "$1,000.00",
	}
	for in, want := range cases {
		assert.Equal(t, want, FormatDollars(decimal.RequireFromString(in)), "input %s", in)
	}
}
