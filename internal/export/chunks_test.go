package export

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBandChunks(t *testing.T) {
	tests := []struct {
		name  string
		bands []string
		want  [][]string
	}{
		{
			name:  "seven bands overlap the tail",
			bands: []string{"b1", "b2", "b3", "b4", "b5", "b6", "b7"},
			want:  [][]string{{"b1", "b2", "b3"}, {"b4", "b5", "b6"}, {"b5", "b6", "b7"}},
		},
		{
			name:  "six bands split evenly",
			bands: []string{"b1", "b2", "b3", "b4", "b5", "b6"},
			want:  [][]string{{"b1", "b2", "b3"}, {"b4", "b5", "b6"}},
		},
		{
			name:  "three bands are one chunk",
			bands: []string{"b1", "b2", "b3"},
			want:  [][]string{{"b1", "b2", "b3"}},
		},
		{
			name:  "two bands stay a short chunk",
			bands: []string{"b1", "b2"},
			want:  [][]string{{"b1", "b2"}},
		},
		{
			name:  "single band",
			bands: []string{"b1"},
			want:  [][]string{{"b1"}},
		},
		{
			name:  "empty",
			bands: nil,
			want:  nil,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, BandChunks(tc.bands))
		})
	}
}
