package constants

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStore(t *testing.T) {
	tests := []struct {
		in   string
		want Store
		ok   bool
	}{
		{"costco", Costco, true},
		{" Costco ", Costco, true},
		{"Sam's Club", SamsClub, true},
		{"sams-club", SamsClub, true},
		{"SC", SamsClub, true},
		{"walmart", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseStore(tt.in)
			if !tt.ok {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStoreFormatTraits(t *testing.T) {
	assert.True(t, Costco.HasItemCodes())
	assert.False(t, SamsClub.HasItemCodes())
	assert.True(t, SamsClub.HasPackSizes())
	assert.False(t, Costco.HasPackSizes())

	assert.Equal(t, "sams_club_items.csv", IntermediateFile(SamsClub))
	assert.Equal(t, "costco_collated.xlsx", CollatedXLSXFile(Costco))
	assert.Equal(t, []Store{Costco, SamsClub}, AllStores())
}
