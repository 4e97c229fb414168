package sentinel

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDestinationChecker_Rejects(t *testing.T) {
	dc := DefaultDestinationChecker()

	tests := []struct {
		destination string
		reason      string
	}{
		{"a", DestReasonTooShort},
		{"  x  ", DestReasonTooShort},
		{"12345", DestReasonDigitsOnly},
		{"12 34", DestReasonDigitsOnly},
		{"!!!", DestReasonPunctuation},
		{"-- ?? --", DestReasonPunctuation},
		{"kitchen", DestReasonHousehold},
		{"Kitchen!", DestReasonHousehold},
		{"my kitchen", DestReasonHousehold},
		{"kuchnia", DestReasonHousehold},
		{"cocina", DestReasonHousehold},
		{"Küche", DestReasonHousehold},
		{"Kuchnia, mieszkanie", DestReasonHousehold},
		{"salle de bain", DestReasonHousehold},
		{"cuarto de baño", DestReasonHousehold},
		{"living room", DestReasonHousehold},
		{"cozinha", DestReasonHousehold},
		{"recipe", DestReasonNonTravel},
		{"python homework", DestReasonNonTravel},
		{"przepis", DestReasonNonTravel},
		{"Paris 75001", DestReasonInvalidChars},
		{"Rome; DROP TABLE", DestReasonInvalidChars},
		{"Berlin <script>", DestReasonInvalidChars},
	}

	for _, tc := range tests {
		t.Run(tc.destination, func(t *testing.T) {
			m := dc.Check(tc.destination)
			assert.True(t, m.Flagged, "expected flagged: %q", tc.destination)
			assert.Equal(t, CategoryInvalidDestination, m.Category)
			assert.Equal(t, tc.reason, m.Reason)
		})
	}
}

func TestDestinationChecker_AllowsRealPlaces(t *testing.T) {
	dc := DefaultDestinationChecker()

	for _, d := range []string{
		"Paris, France",
		"Kraków",
		"Saint-Tropez",
		"Côte d'Azur",
		"Côte d’Azur",
		"San Francisco",
		"St. Petersburg",
		"Trinidad & Tobago",
		"Hell's Kitchen, New York",
		"Kitchener",
		"Bagno Vignoni",
		"Salon-de-Provence",
		"Москва",
		"東京",
		"القاهرة",
		"Hà Nội",
		"Valletta (Malta)",
		"東京・日本",
		"北京、中国",
		"دبي، الإمارات",
		"תל אביב־יפו",
		"L·Hospitalet de Llobregat",
		"Baden–Württemberg",
	} {
		m := dc.Check(d)
		assert.False(t, m.Flagged, "expected allowed: %q (reason %s)", d, m.Reason)
	}
}

func TestDestinationChecker_CustomTerms(t *testing.T) {
	dc := NewDestinationChecker([]string{"Garden Shed"}, nil, []string{"crossword"})

	assert.Equal(t, DestReasonHousehold, dc.Check("the garden shed").Reason)
	assert.False(t, dc.Check("garden").Flagged)
	assert.Equal(t, DestReasonNonTravel, dc.Check("Crossword").Reason)
	assert.False(t, dc.Check("kitchen").Flagged)
}
