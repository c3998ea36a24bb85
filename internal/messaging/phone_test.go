package messaging_test

import (
	"testing"

	"github.com/gulfassure/quoting-api/internal/messaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"already normalized", "+97336001234", "+97336001234"},
		{"double-zero prefix", "0097336001234", "+97336001234"},
		{"bare local number", "36001234", "+97336001234"},
		{"country code without plus", "97336001234", "+97336001234"},
		{"spaces stripped", "+973 3600 1234", "+97336001234"},
		{"dashes stripped", "3600-1234", "+97336001234"},
		{"parentheses stripped", "(973) 36001234", "+97336001234"},
		{"foreign number kept", "+447911123456", "+447911123456"},
		{"foreign double-zero", "00447911123456", "+447911123456"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := messaging.NormalizePhone(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizePhone_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"whitespace only", "   "},
		{"letters", "call me"},
		{"letters mixed with digits", "3600abcd"},
		{"too short international", "+9733600"},
		{"too long international", "+9733600123412345678"},
		{"wrong local length", "360012"},
		{"nine digits without country code", "360012345"},
		{"plus only", "+"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := messaging.NormalizePhone(tt.input)
			assert.Error(t, err)
		})
	}
}
