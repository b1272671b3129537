package cli

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		input   string
		want    float64
		wantErr error
	}{
		{input: "50.75", want: 50.75},
		{input: "50,75", want: 50.75},
		{input: "1200", want: 1200},
		{input: "  R$ 12,50 ", want: 12.5},
		{input: "$3", want: 3},
		{input: "1.234,56", want: 1234.56},
		{input: "1,234.56", want: 1234.56},
		{input: "0", wantErr: ErrNonPositiveAmount},
		{input: "-5", wantErr: ErrNonPositiveAmount},
		{input: "abc", wantErr: ErrInvalidAmount},
		{input: "", wantErr: ErrInvalidAmount},
		{input: "12,5,0", wantErr: ErrInvalidAmount},
		{input: "r$7", want: 7},
		{input: "US$ 9.90", want: 9.9},
		{input: "x12,50", wantErr: ErrInvalidAmount},
		{input: "e5", wantErr: ErrInvalidAmount},
		{input: "valor 7", wantErr: ErrInvalidAmount},
		{input: "R$", wantErr: ErrInvalidAmount},
		{input: "R$ R$ 5", wantErr: ErrInvalidAmount},
		{input: "1e3", wantErr: ErrInvalidAmount},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseAmount(tt.input)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestParseAmount_ExtraCurrency(t *testing.T) {
	got, err := ParseAmount("€ 12,50", "€")
	require.NoError(t, err)
	assert.InDelta(t, 12.5, got, 1e-9)

	_, err = ParseAmount("€ 12,50")
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestParseDate(t *testing.T) {
	want := time.Date(2024, time.February, 29, 0, 0, 0, 0, time.Local)

	for _, input := range []string{"29/02/2024", "2024-02-29", " 29/2/2024 "} {
		got, err := ParseDate(input)
		require.NoError(t, err, input)
		assert.True(t, want.Equal(got), input)
	}

	_, err := ParseDate("31/02/2024")
	assert.ErrorIs(t, err, ErrInvalidDate)
	_, err = ParseDate("ontem")
	assert.ErrorIs(t, err, ErrInvalidDate)
}
