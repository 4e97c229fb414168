package sentinel

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Reasons reported by the destination checker. They are diagnostic and
// feed incident details, not the user-facing reason.
const (
	DestReasonTooShort     = "too short"
	DestReasonDigitsOnly   = "digits only"
	DestReasonPunctuation  = "punctuation only"
	DestReasonHousehold    = "household location"
	DestReasonNonTravel    = "non-travel task"
	DestReasonInvalidChars = "invalid characters"
)

// DestinationMatch is the result of a destination shape check.
type DestinationMatch struct {
	Flagged  bool
	Category Category
	Reason   string
}

var (
	digitsOnly      = regexp.MustCompile(`^[0-9\s]+$`)
	punctuationOnly = regexp.MustCompile(`^[\p{P}\p{S}\s]+$`)
	// Letters and marks in any script, spaces, and the separators real
	// place names use ("Saint-Tropez", "Côte d'Azur", "Trinidad & Tobago",
	// "東京・日本", "北京、中国", "دبي، الإمارات", "תל אביב־יפו").
	placeShape = regexp.MustCompile(`^[\p{L}\p{M}\p{Pd}\s,.'’()&/\x{00B7}\x{30FB}\x{3001}\x{060C}\x{05BE}]+$`)
)

// householdTerms are rooms and household objects across the seed
// languages. Words that double as place names or travel vocabulary
// (salon, bagno, quarto, cave, cantina, balcony) are left out.
var householdTerms = []string{
	// en
	"kitchen", "bathroom", "bedroom", "living room", "dining room", "laundry room",
	"toilet", "garage", "basement", "attic", "closet", "hallway", "backyard", "pantry",
	"fridge", "sofa", "couch", "my house", "my room", "my bed", "my home",
	// pl
	"kuchnia", "kuchni", "kuchnię", "łazienka", "łazience", "sypialnia", "sypialni",
	"toaleta", "piwnica", "garaż", "strych", "przedpokój", "lodówka", "kanapa", "mój dom",
	// es
	"cocina", "baño", "cuarto de baño", "dormitorio", "sala de estar", "garaje",
	"sótano", "nevera", "mi casa", "mi cuarto",
	// de
	"küche", "kueche", "badezimmer", "schlafzimmer", "wohnzimmer", "toilette",
	"dachboden", "kühlschrank", "mein haus", "mein zimmer",
	// fr
	"salle de bain", "salle de bains", "chambre à coucher", "toilettes", "grenier",
	"frigo", "ma maison", "ma chambre",
	// it
	"cucina", "camera da letto", "soffitta", "frigorifero", "casa mia",
	// pt
	"cozinha", "banheiro", "casa de banho", "garagem", "porão", "sótão", "geladeira",
	"minha casa",
}

// householdExceptions are real places that contain a household term.
var householdExceptions = []string{
	"hell's kitchen", "hells kitchen", "devil's kitchen",
}

// taskTerms mark a destination field used for something other than a place.
var taskTerms = []string{
	"recipe", "recipes", "homework", "essay", "poem", "python", "javascript",
	"source code", "przepis", "zadanie domowe", "receta", "tarea", "rezept",
	"hausaufgaben", "recette", "devoirs", "ricetta", "compiti", "receita",
}

// DestinationChecker rejects strings that are clearly not places. It
// errs toward passing input on: anything in a non-Latin script that has
// a plausible shape is left for the classifier.
type DestinationChecker struct {
	household  []string
	exceptions []string
	tasks      []string
}

// NewDestinationChecker builds a checker from term lists. Multi-word
// terms match as whole phrases.
func NewDestinationChecker(household, exceptions, tasks []string) *DestinationChecker {
	return &DestinationChecker{
		household:  normalizeTerms(household),
		exceptions: normalizeTerms(exceptions),
		tasks:      normalizeTerms(tasks),
	}
}

// DefaultDestinationChecker uses the built-in multilingual term lists.
func DefaultDestinationChecker() *DestinationChecker {
	return NewDestinationChecker(householdTerms, householdExceptions, taskTerms)
}

// Check inspects the destination alone.
func (dc *DestinationChecker) Check(destination string) DestinationMatch {
	d := strings.TrimSpace(Normalize(destination))

	switch {
	case utf8.RuneCountInString(d) < 2:
		return flagDestination(DestReasonTooShort)
	case digitsOnly.MatchString(d):
		return flagDestination(DestReasonDigitsOnly)
	case punctuationOnly.MatchString(d):
		return flagDestination(DestReasonPunctuation)
	}

	words := " " + strings.Join(tokenize(d), " ") + " "
	if containsPhrase(words, dc.household) && !containsPhrase(words, dc.exceptions) {
		return flagDestination(DestReasonHousehold)
	}
	if containsPhrase(words, dc.tasks) {
		return flagDestination(DestReasonNonTravel)
	}

	if !placeShape.MatchString(d) {
		return flagDestination(DestReasonInvalidChars)
	}
	return DestinationMatch{}
}

func flagDestination(reason string) DestinationMatch {
	return DestinationMatch{Flagged: true, Category: CategoryInvalidDestination, Reason: reason}
}

// tokenize splits on anything that is not a letter or mark, so
// "Kitchen!" and "my-kitchen" both yield the word "kitchen".
func tokenize(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsMark(r)
	})
}

func normalizeTerms(terms []string) []string {
	out := make([]string, 0, len(terms))
	for _, t := range terms {
		if words := tokenize(Normalize(t)); len(words) > 0 {
			out = append(out, strings.Join(words, " "))
		}
	}
	return out
}

// containsPhrase reports whether any term occurs in padded as a run of
// whole words. padded is a space-joined token list with a leading and
// trailing space.
func containsPhrase(padded string, terms []string) bool {
	for _, t := range terms {
		if strings.Contains(padded, " "+t+" ") {
			return true
		}
	}
	return false
}
