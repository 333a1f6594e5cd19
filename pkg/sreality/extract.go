package sreality

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	sizeRe   = regexp.MustCompile(`(\d+)\s*m²`)
	layoutRe = regexp.MustCompile(`(\d+\+\w+)`)
)

// Localities are matched case-sensitively, label keywords are not. The
// asymmetry is deliberate and covered by tests.
var pragueKeywords = []string{"Praha", "Prague", "Praze"}

var garageKeywords = []string{"garage", "Garáž", "Parkování", "parking_lots"}

// ExtractSizeAndLayout derives the size in m² and the room layout (e.g.
// "2+kk") from a listing name. Either value is nil when its pattern does not
// occur; only the first occurrence counts.
func ExtractSizeAndLayout(name string) (*int, *string) {
	var size *int
	if m := sizeRe.FindStringSubmatch(name); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			size = &n
		}
	}

	var layout *string
	if m := layoutRe.FindStringSubmatch(name); m != nil {
		layout = &m[1]
	}

	return size, layout
}

// IsPragueLocality reports whether the locality string refers to Prague.
func IsPragueLocality(locality string) bool {
	for _, keyword := range pragueKeywords {
		if strings.Contains(locality, keyword) {
			return true
		}
	}
	return false
}

// HasGarage reports whether any label in labels or in any group of labelsAll
// mentions a garage or parking.
func HasGarage(labels []string, labelsAll [][]string) bool {
	for _, label := range labels {
		if labelMentionsGarage(label) {
			return true
		}
	}
	for _, group := range labelsAll {
		for _, label := range group {
			if labelMentionsGarage(label) {
				return true
			}
		}
	}
	return false
}

func labelMentionsGarage(label string) bool {
	lower := strings.ToLower(label)
	for _, keyword := range garageKeywords {
		if strings.Contains(lower, strings.ToLower(keyword)) {
			return true
		}
	}
	return false
}

// ExtractImages returns the image URLs of a listing in upstream order.
func ExtractImages(links Links) []string {
	images := make([]string, 0, len(links.Images))
	for _, link := range links.Images {
		images = append(images, link.Href)
	}
	return images
}
