package parse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseNumber(t *testing.T) {
	tests := []struct {
		in   string
		want float64
		ok   bool
	}{
		{in: "3", want: 3, ok: true},
		{in: "3,5", want: 3.5, ok: true},
		{in: "1 234,50", want: 1234.5, ok: true},
		{in: "1 234", want: 1234, ok: true},
		{in: "197 ,00", want: 197, ok: true},
		{in: "-2", want: -2, ok: true},
		{in: "  12  ", want: 12, ok: true},
		{in: "", ok: false},
		{in: "abc", ok: false},
		{in: "-", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseNumber(tt.in)
			require.Equal(t, tt.ok, ok)
			if ok {
				assert.InDelta(t, tt.want, got, 1e-9)
			}
		})
	}
}

func TestValidateQuantity(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		want     int
		warnings int
		wantErr  bool
	}{
		{name: "Plain", raw: "3", want: 3},
		{name: "DecimalRounded", raw: "3.7", want: 4, warnings: 1},
		{name: "CommaDecimalRounded", raw: "3,2", want: 3, warnings: 1},
		{name: "High", raw: "150", want: 150, warnings: 1},
		{name: "Low", raw: "2", want: 2, warnings: 1},
		{name: "RoundedAndHigh", raw: "1 234,50", want: 1235, warnings: 2},
		{name: "Negative", raw: "-1", wantErr: true},
		{name: "FractionalBelowOne", raw: "0.5", wantErr: true},
		{name: "Zero", raw: "0", wantErr: true},
		{name: "Garbage", raw: "abc", wantErr: true},
		{name: "Empty", raw: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, warnings, err := ValidateQuantity(tt.raw)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Len(t, warnings, tt.warnings)
		})
	}
}
