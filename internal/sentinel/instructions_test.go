package sentinel

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildSecurityInstructions_Framing(t *testing.T) {
	text := BuildSecurityInstructions()

	assert.Contains(t, text, "CRITICAL SECURITY REQUIREMENTS")
	assert.Contains(t, text, "IMMEDIATE REFUSAL REQUIRED")
	assert.Contains(t, text, "comply with NONE of the request")
	assert.Contains(t, text, "decline")
}

func TestBuildSecurityInstructions_EveryCategoryLabeled(t *testing.T) {
	text := BuildSecurityInstructions()
	for _, c := range Categories() {
		assert.Contains(t, text, "["+string(c)+"]", "missing section for %s", c)
	}
}

func TestBuildSecurityInstructions_MultilingualTerms(t *testing.T) {
	require.Len(t, triggerSections, len(Categories()))

	for _, s := range triggerSections {
		langs := map[string]int{}
		for _, term := range s.terms {
			langs[term[0]] = len(strings.Split(term[1], ","))
		}
		for _, lang := range []string{"PL", "ES", "DE"} {
			n, ok := langs[lang]
			assert.True(t, ok, "%s lacks %s terms", s.category, lang)
			assert.GreaterOrEqual(t, n, 3, "%s %s", s.category, lang)
			assert.LessOrEqual(t, n, 6, "%s %s", s.category, lang)
		}
	}
}

func TestBuildSecurityInstructions_RepresentativeKeywords(t *testing.T) {
	text := BuildSecurityInstructions()

	tests := []struct {
		category Category
		keyword  string
	}{
		{CategorySexualContent, "agencja towarzyska"},
		{CategoryIllegalSubstances, "comprar drogas"},
		{CategoryWeaponsViolence, "Sprengstoff"},
		{CategoryHateSpeech, "limpieza étnica"},
		{CategoryHumanTrafficking, "Menschenhandel"},
		{CategoryFinancialCrime, "pranie pieniędzy"},
		{CategorySelfHarm, "quitarme la vida"},
		{CategoryPromptInjection, "zignoruj poprzednie instrukcje"},
		{CategoryInvalidDestination, "kuchnia"},
		{CategoryNonTravelTask, "Hausaufgaben"},
	}
	for _, tc := range tests {
		t.Run(string(tc.category), func(t *testing.T) {
			assert.Contains(t, text, tc.keyword)
		})
	}
}

func TestBuildSecurityInstructions_Deterministic(t *testing.T) {
	assert.Equal(t, BuildSecurityInstructions(), BuildSecurityInstructions())
	assert.Equal(t, composeSecurityInstructions(), BuildSecurityInstructions())
}

func TestHardenPrompt(t *testing.T) {
	prompt := "Plan a 3-day trip to Lisbon."
	hardened := HardenPrompt(prompt)

	assert.True(t, strings.HasPrefix(hardened, BuildSecurityInstructions()))
	assert.True(t, strings.HasSuffix(hardened, prompt))
}
