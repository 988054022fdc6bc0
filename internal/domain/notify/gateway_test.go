package notify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeKenyanPhone(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"local 07", "0712345678", "254712345678", false},
		{"local 01", "0110345678", "254110345678", false},
		{"bare 7", "712345678", "254712345678", false},
		{"already normalized", "254712345678", "254712345678", false},
		{"international plus", "+254712345678", "254712345678", false},
		{"with spaces", "0712 345 678", "254712345678", false},
		{"with dashes", "0712-345-678", "254712345678", false},
		{"empty", "", "", true},
		{"too short", "07123", "", true},
		{"too long", "07123456789012", "", true},
		{"wrong country", "14155552671", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeKenyanPhone(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
