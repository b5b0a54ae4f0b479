package qualification

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// MinPlausibleBudget is the sanity floor for budgets. Anything at or below it
// is almost always a stray number (a house number, a count of rooms) rather
// than a remodeling budget.
const MinPlausibleBudget = 1000

// ---------- package-level compiled regexes ----------

var (
	emailRE = regexp.MustCompile(`(?i)\b[a-z0-9._%+-]+@[a-z0-9.-]+\.[a-z]{2,}\b`)
	phoneRE = regexp.MustCompile(`(?:\(\d{3}\)\s?|\b\d{3}[-.\s]?)\d{3}[-.\s]?\d{4}\b`)

	// Budget candidates, most explicit first.
	budgetPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\$\s?(\d{1,3}(?:,\d{3})+|\d+)(\.\d+)?(?:\s*(k|thousand)\b)?`),
		regexp.MustCompile(`(?i)\b(\d{1,3}(?:,\d{3})+|\d+)(\.\d+)?\s*(k|thousand)\b`),
		regexp.MustCompile(`(?i)\b(\d{1,3}(?:,\d{3})+|\d+)(\.\d+)?\s*dollars?\b`),
	}

	timelineRE = regexp.MustCompile(`(?i)\b(\d{1,3})\s*(month|week|year)s?\b`)
	zipRE      = regexp.MustCompile(`\b\d{5}\b`)
)

// ---------- project vocabulary ----------

// projectPatterns is checked in order; specific phrases come before the
// shorter words they contain.
var projectPatterns = []struct {
	pattern string
	name    string
}{
	{"master bathroom", "bathroom"},
	{"master bath", "bathroom"},
	{"master suite", "master suite"},
	{"living room", "living room"},
	{"family room", "family room"},
	{"dining room", "dining room"},
	{"whole house", "whole home"},
	{"whole home", "whole home"},
	{"full remodel", "whole home"},
	{"home addition", "addition"},
	{"room addition", "addition"},
	{"kitchen", "kitchen"},
	{"bathroom", "bathroom"},
	{"bath", "bathroom"},
	{"bedroom", "bedroom"},
	{"basement", "basement"},
	{"addition", "addition"},
	{"extension", "addition"},
	{"attic", "attic"},
	{"garage", "garage"},
	{"office", "office"},
	{"den", "den"},
	{"renovation", "renovation"},
}

var projectMatchers = buildProjectMatchers()

type projectMatcher struct {
	re   *regexp.Regexp
	name string
}

func buildProjectMatchers() []projectMatcher {
	matchers := make([]projectMatcher, 0, len(projectPatterns))
	for _, p := range projectPatterns {
		phrase := strings.ReplaceAll(regexp.QuoteMeta(p.pattern), " ", `\s+`)
		matchers = append(matchers, projectMatcher{
			re:   regexp.MustCompile(`(?i)\b` + phrase + `s?\b`),
			name: p.name,
		})
	}
	return matchers
}

// ---------- name extraction ----------

const nameWordPattern = `\p{L}[\p{L}'-]*`

var (
	namePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\bmy name is\s+(` + nameWordPattern + `)\s+(` + nameWordPattern + `)`),
		regexp.MustCompile(`(?i)\bi'?m\s+(` + nameWordPattern + `)\s+(` + nameWordPattern + `)`),
		regexp.MustCompile(`(?i)\bi am\s+(` + nameWordPattern + `)\s+(` + nameWordPattern + `)`),
		regexp.MustCompile(`(?i)\bthis is\s+(` + nameWordPattern + `)\s+(` + nameWordPattern + `)`),
	}
	bareNameRE = regexp.MustCompile(`^(` + nameWordPattern + `)\s+(` + nameWordPattern + `)$`)
	// A line opening with a self-introduction only yields a name through
	// namePatterns, which need both first and last name.
	selfIntroRE = regexp.MustCompile(`(?i)^(my name is|i'?m|i am|this is)\b`)
)

// contractionSuffixes follow the apostrophe in "I'm", "don't", "we're" and
// friends, none of which are names.
var contractionSuffixes = map[string]bool{
	"m": true, "t": true, "re": true, "s": true, "d": true, "ll": true, "ve": true,
}

var nameTextNormalizer = strings.NewReplacer(
	"’", "'",
	"‘", "'",
	"′", "'",
)

// Extract scans a single message for lead fields. It does not look at any
// earlier state and never fails: a field that is not found is left unset.
//
// Stages run in a fixed order and each one marks the text it used, so a
// phone number can never also be read as a budget or a zip code.
func Extract(message string) LeadFields {
	var fields LeadFields
	if strings.TrimSpace(message) == "" {
		return fields
	}

	var used consumed

	if loc := emailRE.FindStringIndex(message); loc != nil {
		fields.Email = message[loc[0]:loc[1]]
		used.add(loc)
	}

	for _, loc := range phoneRE.FindAllStringIndex(message, -1) {
		if used.overlaps(loc) {
			continue
		}
		fields.Phone = strings.TrimSpace(message[loc[0]:loc[1]])
		used.add(loc)
		break
	}

	if budget, loc, ok := extractBudget(message, used); ok {
		fields.Budget = budget
		used.add(loc)
	}

	if months, loc, ok := extractTimeline(message, used); ok {
		fields.TimelineMonths = months
		used.add(loc)
	}

	for _, loc := range zipRE.FindAllStringIndex(message, -1) {
		if used.overlaps(loc) {
			continue
		}
		fields.ZipCode = message[loc[0]:loc[1]]
		used.add(loc)
		break
	}

	fields.ProjectType = matchProjectType(message)
	fields.Name = extractName(message)

	return fields
}

func extractBudget(message string, used consumed) (int, []int, bool) {
	for _, re := range budgetPatterns {
		for _, m := range re.FindAllStringSubmatchIndex(message, -1) {
			loc := m[:2]
			if used.overlaps(loc) {
				continue
			}
			amount, ok := parseBudget(message, m)
			if !ok || amount <= MinPlausibleBudget {
				continue
			}
			return amount, loc, true
		}
	}
	return 0, nil, false
}

// parseBudget turns a budget submatch into whole currency units. Groups are
// integer part, optional fraction, optional multiplier.
func parseBudget(message string, m []int) (int, bool) {
	digits := strings.ReplaceAll(message[m[2]:m[3]], ",", "")
	if m[4] >= 0 {
		digits += message[m[4]:m[5]]
	}
	value, err := strconv.ParseFloat(digits, 64)
	if err != nil {
		return 0, false
	}
	matched := strings.ToLower(message[m[0]:m[1]])
	if strings.Contains(matched, "k") || strings.Contains(matched, "thousand") {
		value *= 1000
	}
	if value > math.MaxInt32 {
		return 0, false
	}
	return int(math.Round(value)), true
}

func extractTimeline(message string, used consumed) (int, []int, bool) {
	for _, m := range timelineRE.FindAllStringSubmatchIndex(message, -1) {
		loc := m[:2]
		if used.overlaps(loc) {
			continue
		}
		n, err := strconv.Atoi(message[m[2]:m[3]])
		if err != nil || n <= 0 {
			continue
		}
		return toMonths(n, strings.ToLower(message[m[4]:m[5]])), loc, true
	}
	return 0, nil, false
}

func toMonths(n int, unit string) int {
	switch unit {
	case "week":
		return (n + 3) / 4
	case "year":
		return n * 12
	default:
		return n
	}
}

func matchProjectType(message string) string {
	for _, m := range projectMatchers {
		if m.re.MatchString(message) {
			return m.name
		}
	}
	return ""
}

func extractName(message string) string {
	normalized := nameTextNormalizer.Replace(message)
	for _, re := range namePatterns {
		for _, match := range re.FindAllStringSubmatch(normalized, -1) {
			if name := fullName(match[1], match[2]); name != "" {
				return name
			}
		}
	}

	line := strings.TrimSpace(normalized)
	line = strings.TrimRight(line, ".!?,")
	if selfIntroRE.MatchString(line) {
		return ""
	}
	if match := bareNameRE.FindStringSubmatch(line); match != nil {
		return fullName(match[1], match[2])
	}
	return ""
}

func fullName(first, last string) string {
	first = cleanNameToken(first)
	last = cleanNameToken(last)
	if !looksLikeNameWord(first) || !looksLikeNameWord(last) {
		return ""
	}
	return capitalizeNameWord(first) + " " + capitalizeNameWord(last)
}

func cleanNameToken(word string) string {
	return strings.Trim(strings.TrimSpace(word), "'-")
}

func looksLikeNameWord(word string) bool {
	count := utf8.RuneCountInString(word)
	if count < 2 || count > 30 {
		return false
	}
	for _, r := range word {
		if !unicode.IsLetter(r) && r != '\'' && r != '-' {
			return false
		}
	}
	return !isCommonWord(word) && !isContraction(word)
}

func isContraction(word string) bool {
	i := strings.LastIndex(word, "'")
	if i < 0 {
		return false
	}
	return contractionSuffixes[strings.ToLower(word[i+1:])]
}

func capitalizeNameWord(word string) string {
	firstRune, size := utf8.DecodeRuneInString(word)
	if firstRune == utf8.RuneError || size == 0 {
		return word
	}
	return strings.ToUpper(string(firstRune)) + strings.ToLower(word[size:])
}

// commonWords are conversational filler and remodeling vocabulary that can
// sit where a name would in "I'm ..." or in a two-word reply.
var commonWords = map[string]bool{
	"the": true, "and": true, "for": true, "are": true, "but": true,
	"not": true, "you": true, "all": true, "can": true, "was": true,
	"one": true, "our": true, "out": true, "new": true, "now": true,
	"old": true, "see": true, "who": true, "did": true, "get": true,
	"yes": true, "yeah": true, "yep": true, "no": true, "nope": true,
	"hi": true, "hey": true, "hello": true, "thanks": true, "thank": true,
	"please": true, "ok": true, "okay": true, "sure": true, "good": true,
	"great": true, "fine": true, "well": true, "just": true, "like": true,
	"want": true, "need": true, "have": true, "sounds": true, "perfect": true,
	"awesome": true, "cool": true, "maybe": true, "probably": true,
	"interested": true, "looking": true, "planning": true, "thinking": true,
	"hoping": true, "trying": true, "wondering": true, "asking": true,
	"ready": true, "excited": true, "happy": true, "glad": true,
	"in": true, "on": true, "at": true, "to": true, "of": true, "is": true,
	"it": true, "an": true, "as": true, "be": true, "by": true, "do": true,
	"if": true, "or": true, "so": true, "up": true, "we": true, "me": true,
	"my": true, "he": true, "she": true, "a": true,
	"about": true, "with": true, "from": true, "this": true, "that": true,
	"what": true, "when": true, "your": true, "some": true, "also": true,
	"very": true, "more": true, "here": true, "there": true, "next": true,
	"last": true, "year": true, "years": true,
	"month": true, "months": true, "week": true, "weeks": true, "soon": true,
	"asap": true, "budget": true, "around": true, "roughly": true,
	"remodel": true, "remodeling": true, "renovation": true, "renovate": true,
	"project": true, "kitchen": true, "bathroom": true, "bath": true,
	"bedroom": true, "basement": true, "addition": true, "extension": true,
	"living": true, "room": true, "family": true, "dining": true,
	"whole": true, "house": true, "home": true, "full": true, "master": true,
	"suite": true, "office": true, "den": true, "attic": true, "garage": true,
	"zip": true, "code": true, "email": true, "phone": true, "number": true,
	"name": true, "call": true, "text": true, "contact": true,
}

func isCommonWord(word string) bool {
	return commonWords[strings.ToLower(word)]
}

// consumed tracks byte ranges already claimed by an earlier stage.
type consumed [][2]int

func (c *consumed) add(loc []int) {
	*c = append(*c, [2]int{loc[0], loc[1]})
}

func (c consumed) overlaps(loc []int) bool {
	for _, s := range c {
		if loc[0] < s[1] && s[0] < loc[1] {
			return true
		}
	}
	return false
}
