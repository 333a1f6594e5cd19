package sreality

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractSizeAndLayout(t *testing.T) {
	tests := []struct {
		name       string
		title      string
		wantSize   *int
		wantLayout *string
	}{
		{
			name:       "size and layout",
			title:      "Pronájem bytu 2+kk 45 m²",
			wantSize:   intPtr(45),
			wantLayout: strPtr("2+kk"),
		},
		{
			name:       "size with no whitespace before unit",
			title:      "Pronájem bytu 35m²",
			wantSize:   intPtr(35),
			wantLayout: nil,
		},
		{
			name:       "layout only",
			title:      "Pronájem bytu 3+1 Praha",
			wantSize:   nil,
			wantLayout: strPtr("3+1"),
		},
		{
			name:       "neither",
			title:      "Pronájem bytu Praha",
			wantSize:   nil,
			wantLayout: nil,
		},
		{
			name:       "first occurrence wins",
			title:      "Byt 1+kk 28 m², možno i 2+1 54 m²",
			wantSize:   intPtr(28),
			wantLayout: strPtr("1+kk"),
		},
		{
			name:       "empty title",
			title:      "",
			wantSize:   nil,
			wantLayout: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			size, layout := ExtractSizeAndLayout(tt.title)

			if tt.wantSize == nil {
				assert.Nil(t, size)
			} else {
				require.NotNil(t, size)
				assert.Equal(t, *tt.wantSize, *size)
			}

			if tt.wantLayout == nil {
				assert.Nil(t, layout)
			} else {
				require.NotNil(t, layout)
				assert.Equal(t, *tt.wantLayout, *layout)
			}
		})
	}
}

func TestIsPragueLocality(t *testing.T) {
	prague := []string{
		"Praha 5",
		"Hlavní město Praha",
		"Praze 10",
		"Prague 1",
		"ulice Vinohradská, Praha 2 - Vinohrady",
	}
	for _, locality := range prague {
		assert.True(t, IsPragueLocality(locality), locality)
	}

	other := []string{
		"Brno",
		"Ostrava",
		"",
		// substring match is case-sensitive on purpose
		"praha 5",
		"PRAHA",
	}
	for _, locality := range other {
		assert.False(t, IsPragueLocality(locality), locality)
	}
}

func TestHasGarage(t *testing.T) {
	tests := []struct {
		name      string
		labels    []string
		labelsAll [][]string
		want      bool
	}{
		{
			name:   "garage in primary labels",
			labels: []string{"Garáž", "Sklep"},
			want:   true,
		},
		{
			name:   "case-insensitive match",
			labels: []string{"GARAGE included"},
			want:   true,
		},
		{
			name:      "parking in nested labels",
			labelsAll: [][]string{{"Výtah"}, {"Parkování u domu"}},
			want:      true,
		},
		{
			name:      "parking_lots token",
			labelsAll: [][]string{{"parking_lots"}},
			want:      true,
		},
		{
			name:      "no garage anywhere",
			labels:    []string{"Sklep", "Balkon"},
			labelsAll: [][]string{{"Výtah"}},
			want:      false,
		},
		{
			name: "both collections empty",
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HasGarage(tt.labels, tt.labelsAll))
		})
	}
}

func TestExtractImages(t *testing.T) {
	links := Links{Images: []ImageLink{
		{Href: "https://img.example/1.jpg"},
		{Href: "https://img.example/2.jpg"},
		{Href: "https://img.example/3.jpg"},
	}}

	images := ExtractImages(links)
	assert.Equal(t, []string{
		"https://img.example/1.jpg",
		"https://img.example/2.jpg",
		"https://img.example/3.jpg",
	}, images)

	assert.Empty(t, ExtractImages(Links{}))
}

func intPtr(n int) *int       { return &n }
func strPtr(s string) *string { return &s }
