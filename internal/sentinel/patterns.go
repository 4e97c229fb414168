package sentinel

import "regexp"

// Pattern is a named regex tagged with the category it detects.
type Pattern struct {
	Name     string
	Category Category
	Regexp   *regexp.Regexp
}

// PatternMatch is the result of a pattern check.
type PatternMatch struct {
	Flagged  bool
	Category Category
	Rule     string
}

// PatternMatcher is a cheap pre-filter. A miss proves nothing; a hit is
// grounds for early rejection.
type PatternMatcher struct {
	patterns []Pattern
}

// NewPatternMatcher creates a PatternMatcher from compiled patterns.
// Patterns are tried in order.
func NewPatternMatcher(patterns []Pattern) *PatternMatcher {
	return &PatternMatcher{patterns: patterns}
}

// patternTable is the built-in rule set. Rules run against normalized
// (lowercased, NFKC) text. Vocabulary shared with educational requests
// (red-light district history, cannabis museum, war museums) is
// deliberately absent; intent is left to the classifier.
var patternTable = []struct {
	category Category
	rules    [][2]string
}{
	{CategoryPromptInjection, [][2]string{
		{"ignore_instructions", `(?i)\bignore\s+(all\s+)?(of\s+)?(the\s+|your\s+)?(previous|prior|above|earlier|preceding)\s+(instructions?|prompts?|rules?|guidelines?|messages?)`},
		{"disregard_above", `(?i)\bdisregard\s+(all\s+)?(of\s+)?(the\s+|your\s+)?(previous|prior|above|earlier|preceding|instructions?|rules?)`},
		{"forget_instructions", `(?i)\b(forget|override)\s+(all\s+)?(of\s+)?(your|the|previous|prior)\s+(previous\s+|prior\s+)?(instructions?|rules?|guidelines?|prompts?|programming)`},
		// needs an imperative or second-person lead-in, so "a guide who can act as a translator" passes
		{"act_as", `(?i)(^|[.!?:;,]\s*|\b(you|now|please|must|should|shall|will|always|instead)\s+)act\s+as\s+(if\s+you\s+(are|were)\b|an?\s+|the\s+|my\s+)`},
		{"pretend_to_be", `(?i)\bpretend\s+(to\s+be|you\s+are|you're|that\s+you)\b`},
		{"you_are_now", `(?i)\byou\s+are\s+now\s+(an?|the|my|dan|in\s+\w+\s+mode)\b`},
		{"system_tag", `(?i)(\[\s*/?\s*(system|inst|admin)\s*\]|<\s*/?\s*(system|assistant|instructions?)\s*>|<\|im_start\|>|\bsystem\s*prompt\s*:)`},
		{"system_prompt_extract", `(?i)\b(repeat|show|print|reveal|output|display)\s+(me\s+)?(your\s+(system\s+prompt|prompt|initial\s+instructions|hidden\s+instructions|instructions|rules)|the\s+system\s+prompt)`},
		{"jailbreak", `(?i)(\bjailbreak|\bdo\s+anything\s+now\b|\bdeveloper\s+mode\b)`},
		{"code_request", `(?i)\b(write|generate|create|build|code)\s+(me\s+)?(a\s+|an\s+|some\s+|the\s+)?(python|javascript|typescript|java|sql|html|css|php|c\+\+|rust|golang|bash)?\s*(code|script|function|snippet)\b`},
		{"code_language", `(?i)\b(python|javascript|typescript|sql|php|bash)\s+(code|script|function|program|snippet)\b`},
		{"recipe_request", `(?i)\b(tell|give|write|send|share)\s+me\s+(a\s+|the\s+|your\s+)?recipes?\b`},
		{"homework_request", `(?i)\b(do|solve|write|finish|answer)\s+(my\s+)?(homework|essay|assignment|exam)\b`},
		{"story_request", `(?i)\b(write|tell|compose)\s+(me\s+)?(a|an)\s+(story|poem|essay|song|joke|novel)\b`},
		// common non-English override phrasings
		{"ignore_instructions_pl", `(?i)(zignoruj|zapomnij|pomiń)\s+(wszystkie\s+)?(poprzednie|wcześniejsze)\s+(instrukcje|polecenia|zasady)`},
		{"ignore_instructions_es", `(?i)(ignora|olvida)\s+(todas\s+)?(las\s+)?(instrucciones|reglas)\s+(anteriores|previas)`},
		{"ignore_instructions_de", `(?i)(ignoriere|vergiss)\s+(alle\s+)?(vorherigen|bisherigen|vorigen)\s+(anweisungen|instruktionen|regeln)`},
		{"ignore_instructions_fr", `(?i)(ignore[zs]?|oublie[zs]?)\s+(toutes\s+)?(les\s+)?(instructions|règles|consignes)\s+(précédentes|antérieures)`},
		{"ignore_instructions_it", `(?i)(ignora|dimentica)\s+(tutte\s+)?(le\s+)?(istruzioni|regole)\s+(precedenti)`},
		{"ignore_instructions_pt", `(?i)(ignore|ignora|esqueça)\s+(todas\s+)?(as\s+)?(instruções|regras)\s+(anteriores)`},
	}},
	{CategorySexualContent, [][2]string{
		{"sexual_venues", `(?i)\bsex\s*(clubs?|shows?|parties|party|tourism|shops?)\b`},
		{"adult_entertainment", `(?i)\badult\s+(entertainment|services|clubs?|massage)\b`},
		{"escorts", `(?i)\b(escort\s+(services?|girls?|agency|agencies)|hookers?|call\s+girls?)\b`},
		{"strip_clubs", `(?i)\b(strip\s*clubs?|striptease)\b`},
		{"explicit_terms", `(?i)\b(porn(o|os|s|ography|ographic)?|erotic\s+massage|happy\s+ending\s+massage|nude\s+girls|sex\s+with)\b`},
	}},
	{CategoryHateSpeech, [][2]string{
		{"profanity", `(?i)\b(fuck\w*|motherfuck\w*|shit|shitty|bullshit|bitch(es)?|cunts?|assholes?|dickheads?|wankers?)\b`},
		{"slurs", `(?i)\b(nigg(er|a)s?|faggots?|fags|retards?|kikes?|spics?|chinks?|wetbacks?|trann(y|ies))\b`},
		{"profanity_intl", `(?i)\b(kurw\w*|pierdol\w*|jeba\w*|chuj\w*|hijo\s+de\s+puta|putas?|gilipollas|cabr[oó]n\w*|arschloch|schei(ss|ß)e|hurensohn|putain|salope|connard|merda|stronz\w*|vaffanculo|caralho)\b`},
	}},
	{CategoryNonTravelTask, [][2]string{
		{"spam_phrases", `(?i)\b(buy\s+now|click\s+here|free\s+money|make\s+money\s+fast|limited\s+time\s+offer|casino\s+bonus|crypto\s+(giveaway|airdrop)|work\s+from\s+home\s+opportunity|viagra|cialis)\b`},
		{"link_farm", `(?i)(https?://\S+.*?){3,}`},
	}},
}

// DefaultPatterns returns the built-in detection patterns.
func DefaultPatterns() []Pattern {
	var patterns []Pattern
	for _, group := range patternTable {
		for _, r := range group.rules {
			patterns = append(patterns, Pattern{
				Name:     r[0],
				Category: group.category,
				Regexp:   regexp.MustCompile(r[1]),
			})
		}
	}
	return patterns
}

// Check scans text and stops at the first matching pattern. Callers pass
// the normalized concatenation of destination and notes.
func (pm *PatternMatcher) Check(text string) PatternMatch {
	for _, p := range pm.patterns {
		if p.Regexp.MatchString(text) {
			return PatternMatch{Flagged: true, Category: p.Category, Rule: p.Name}
		}
	}
	return PatternMatch{}
}
