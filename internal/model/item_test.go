package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeName_TrimsWhitespace(t *testing.T) {
	assert.Equal(t, "Milk", NormalizeName("  Milk\t\n"))
	assert.Equal(t, "Oat milk", NormalizeName("Oat milk"))
}

func TestNormalizeName_NFC(t *testing.T) {
	// "e" + combining acute accent composes to U+00E9
	decomposed := "Cafe\u0301"
	assert.Equal(t, "Caf\u00e9", NormalizeName(decomposed))
}

func TestValidateName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr error
	}{
		{"plain", "Bread", "Bread", nil},
		{"padded", "  Eggs ", "Eggs", nil},
		{"empty", "", "", ErrBlankName},
		{"spaces only", "   ", "", ErrBlankName},
		{"unicode spaces", "\u00a0\u2003", "", ErrBlankName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ValidateName(tt.input)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
