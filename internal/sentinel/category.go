package sentinel

import "slices"

// Category is the closed set of reasons an input can be rejected for.
type Category string

const (
	CategorySexualContent      Category = "sexual_content"
	CategoryIllegalSubstances  Category = "illegal_substances"
	CategoryWeaponsViolence    Category = "weapons_violence_terrorism"
	CategoryHateSpeech         Category = "hate_speech"
	CategoryHumanTrafficking   Category = "human_trafficking"
	CategoryFinancialCrime     Category = "financial_crime"
	CategorySelfHarm           Category = "self_harm_dangerous_activity"
	CategoryPromptInjection    Category = "prompt_injection"
	CategoryInvalidDestination Category = "invalid_destination"
	CategoryNonTravelTask      Category = "non_travel_task"
)

// severityOrder lists categories from most to least severe.
var severityOrder = []Category{
	CategoryHumanTrafficking,
	CategoryWeaponsViolence,
	CategorySexualContent,
	CategoryHateSpeech,
	CategoryIllegalSubstances,
	CategorySelfHarm,
	CategoryFinancialCrime,
	CategoryPromptInjection,
	CategoryNonTravelTask,
	CategoryInvalidDestination,
}

// Categories returns every category, most severe first.
func Categories() []Category {
	return slices.Clone(severityOrder)
}

// ParseCategory maps a label to a known category.
func ParseCategory(s string) (Category, bool) {
	c := Category(s)
	return c, slices.Contains(severityOrder, c)
}

func (c Category) rank() int {
	if i := slices.Index(severityOrder, c); i >= 0 {
		return i
	}
	return len(severityOrder)
}

// PrimaryCategory returns the most severe of the given categories, or ""
// when none is known.
func PrimaryCategory(cats ...Category) Category {
	var best Category
	for _, c := range cats {
		if c.rank() < best.rank() {
			best = c
		}
	}
	return best
}

// Inappropriate reports whether c is an abusive-content category, as
// opposed to manipulation or off-topic input.
func (c Category) Inappropriate() bool {
	switch c {
	case CategorySexualContent, CategoryIllegalSubstances, CategoryWeaponsViolence,
		CategoryHateSpeech, CategoryHumanTrafficking, CategoryFinancialCrime, CategorySelfHarm:
		return true
	}
	return false
}

// Sensitive reports whether incident records for c must not keep any
// excerpt of the offending text.
func (c Category) Sensitive() bool {
	switch c {
	case CategorySexualContent, CategoryHateSpeech, CategoryHumanTrafficking, CategorySelfHarm:
		return true
	}
	return false
}

// User-facing reasons. These never name a category or describe a rule.
const (
	reasonDestination   = "Please enter a real travel destination."
	reasonHousehold     = "Please enter a real travel destination (not a household location)."
	reasonMissingDest   = "Please enter a travel destination."
	reasonDestTooLong   = "That destination name is too long. Please enter a city, region or country."
	reasonNotesTooShort = "Please tell us a little more about your trip."
	reasonNotesTooLong  = "Your trip notes are too long. Please shorten them and try again."
	reasonNonTravel     = "Please describe your travel plans. We can only help with trip planning."
	reasonManipulation  = "Your request contains instructions we can't process. Please describe only your travel plans."
	reasonInappropriate = "Your request contains content we can't help with. Please keep it to travel planning."
	reasonUnavailable   = "Validation is temporarily unavailable. Please try again in a moment."
)

func (c Category) userReason() string {
	switch {
	case c == CategoryInvalidDestination:
		return reasonDestination
	case c == CategoryNonTravelTask:
		return reasonNonTravel
	case c == CategoryPromptInjection:
		return reasonManipulation
	case c.Inappropriate():
		return reasonInappropriate
	}
	return reasonNonTravel
}
