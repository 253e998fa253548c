// Package normalize implements the Title Normalizer (spec §4.1): it
// collapses scene-release strings, RSS titles, and upload-catalog names
// to a canonical, comparable title, and scores similarity between two
// titles with a token-set ratio. Grounded on original_source's
// core/matching.py TitleMatcher, which is itself a pure string component
// with no database dependency — the Go port keeps that property.
package normalize

import (
	"regexp"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// overrideTable holds well-known acronym/brand titles that bypass
// default title-casing (spec §4.1 step 7).
var overrideTable = map[string]string{
	"national geographic": "National Geographic",
	"pcgamer":              "PC Gamer",
	"pc gamer":             "PC Gamer",
	"pc world":             "PC World",
	"mac world":            "Mac World",
	"e-news":               "E-News",
	"wired":                "Wired",
	"2600":                 "2600",
}

var (
	reNoIssue     = regexp.MustCompile(`(?i)\bno\.?\s*\d+\b`)
	reIssueWord   = regexp.MustCompile(`(?i)\bissue\s*\d+\b`)
	reYearMonth   = regexp.MustCompile(`\b((?:19|20)\d{2})(-\d{2})?\b`)
	reReleaseTag  = regexp.MustCompile(`(?i)-[a-z][a-z0-9]+-xpost$`)
	reHashTag     = regexp.MustCompile(`(?i)\s*\[[a-z0-9]+\]-xpost$`)
	reTrailXpost  = regexp.MustCompile(`(?i)-xpost$`)
	reCamel       = regexp.MustCompile(`([a-z0-9])([A-Z])`)
	reTrailingMag = regexp.MustCompile(`(?i)\s+(magazine|mag|mag\.)$`)
	reMultiSpace  = regexp.MustCompile(`\s{2,}`)
)

// releaseKeywords are stripped case-insensitively, whitespace/dot
// delimited (spec §4.1 step 2).
var releaseKeywords = []string{
	"GERMAN", "HYBRID", "MAGAZINE", "EBOOK", "PDF", "EPUB",
	"RETAIL", "READNFO", "REPACK", "UNPACK", "DIRFIX",
}

var titleCaser = cases.Title(language.English)

// Clean applies the ordered, all-or-nothing transformation sequence from
// spec §4.1 step 1-8 to a raw release-style title, producing a canonical
// title. Clean is idempotent: Clean(Clean(x)) == Clean(x). One pass can
// expose a token that its own earlier steps could not match (a keyword
// glued to a release tag, "Issue_12" before underscores become spaces),
// so the sequence is re-applied until the title stops changing.
func Clean(raw string) string {
	s := cleanOnce(raw)
	for {
		next := cleanOnce(s)
		if next == s {
			return s
		}
		s = next
	}
}

// cleanOnce runs steps 1-8 a single time.
func cleanOnce(raw string) string {
	s := raw

	// Step 1: strip issue/date tokens.
	s = reNoIssue.ReplaceAllString(s, "")
	s = reIssueWord.ReplaceAllString(s, "")
	s = reYearMonth.ReplaceAllString(s, "")

	// Step 2: strip known release keywords, including a leading UNPACK_.
	s = stripLeadingUnpack(s)
	for _, kw := range releaseKeywords {
		s = stripKeyword(s, kw)
	}

	// Step 3: strip trailing release-group tags.
	s = reReleaseTag.ReplaceAllString(s, "")
	s = reHashTag.ReplaceAllString(s, "")
	s = reTrailXpost.ReplaceAllString(s, "")

	// Step 4: dots/underscores to spaces; collapse whitespace.
	s = strings.ReplaceAll(s, ".", " ")
	s = strings.ReplaceAll(s, "_", " ")
	s = reMultiSpace.ReplaceAllString(s, " ")

	// Step 5: split camelCase.
	s = reCamel.ReplaceAllString(s, "$1 $2")

	// Step 6: strip trailing "Magazine"/"Mag"/"Mag.".
	s = reTrailingMag.ReplaceAllString(s, "")

	s = reMultiSpace.ReplaceAllString(s, " ")
	s = strings.TrimSpace(s)

	// Step 7/8: override table, else title-case.
	if canonical, ok := overrideTable[strings.ToLower(s)]; ok {
		return canonical
	}
	if s == "" {
		return s
	}
	return titleCaser.String(strings.ToLower(s))
}

func stripLeadingUnpack(s string) string {
	if len(s) >= 7 && strings.EqualFold(s[:7], "UNPACK_") {
		return s[7:]
	}
	return s
}

// stripKeyword removes a release keyword wherever it appears delimited
// by whitespace or dots, case-insensitively.
func stripKeyword(s, keyword string) string {
	re := regexp.MustCompile(`(?i)(^|[\s.])` + regexp.QuoteMeta(keyword) + `([\s.]|$)`)
	for {
		loc := re.FindStringIndex(s)
		if loc == nil {
			return s
		}
		match := s[loc[0]:loc[1]]
		// Preserve at most one delimiter when both sides had one.
		repl := ""
		if strings.ContainsAny(match[:1], " \t\n\f\r\v.") && strings.ContainsAny(match[len(match)-1:], " \t\n\f\r\v.") {
			repl = " "
		}
		s = s[:loc[0]] + repl + s[loc[1]:]
	}
}

// Similarity returns a token-set similarity score in [0,100] between a
// and b: order-insensitive, multiset-aware, over lowercased strings.
// Grounded on fuzzywuzzy's token_set_ratio algorithm used by
// original_source's TitleMatcher.match.
func Similarity(a, b string) int {
	ta := tokenize(a)
	tb := tokenize(b)

	intersection, onlyA, onlyB := splitTokens(ta, tb)

	sorted := func(toks []string) string { return strings.Join(toks, " ") }

	base := sorted(intersection)
	combinedA := strings.TrimSpace(base + " " + sorted(onlyA))
	combinedB := strings.TrimSpace(base + " " + sorted(onlyB))

	scores := []int{
		ratio(base, combinedA),
		ratio(base, combinedB),
		ratio(combinedA, combinedB),
	}
	best := scores[0]
	for _, sc := range scores[1:] {
		if sc > best {
			best = sc
		}
	}
	return best
}

// Matches reports whether Similarity(a, b) is at or above threshold.
func Matches(a, b string, threshold int) bool {
	return Similarity(a, b) >= threshold
}

func tokenize(s string) []string {
	return strings.Fields(strings.ToLower(s))
}

// splitTokens computes the sorted, deduplicated intersection and the
// sorted remainders, multiset-aware (token_set_ratio semantics).
func splitTokens(a, b []string) (intersection, onlyA, onlyB []string) {
	countA := map[string]int{}
	for _, t := range a {
		countA[t]++
	}
	countB := map[string]int{}
	for _, t := range b {
		countB[t]++
	}

	seen := map[string]bool{}
	for t := range countA {
		if n := countB[t]; n > 0 {
			intersection = append(intersection, t)
			seen[t] = true
		}
	}
	sort.Strings(intersection)

	for t, n := range countA {
		if !seen[t] {
			for i := 0; i < n; i++ {
				onlyA = append(onlyA, t)
			}
		}
	}
	sort.Strings(onlyA)

	for t, n := range countB {
		if !seen[t] {
			for i := 0; i < n; i++ {
				onlyB = append(onlyB, t)
			}
		}
	}
	sort.Strings(onlyB)

	return intersection, onlyA, onlyB
}

// ratio computes a Levenshtein-distance-based similarity ratio in
// [0,100], the same primitive fuzzywuzzy builds token_set_ratio from.
func ratio(a, b string) int {
	if a == "" && b == "" {
		return 100
	}
	dist := levenshtein(a, b)
	maxLen := len(a)
	if len(b) > maxLen {
		maxLen = len(b)
	}
	if maxLen == 0 {
		return 100
	}
	return int((1.0 - float64(dist)/float64(maxLen)) * 100)
}

// levenshtein computes the classic edit distance between two strings.
// Hand-rolled: no example repo in the retrieval pack imports a
// fuzzy-string-matching or edit-distance library, so this one primitive
// stays on the standard library (see DESIGN.md).
func levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	la, lb := len(ra), len(rb)
	if la == 0 {
		return lb
	}
	if lb == 0 {
		return la
	}

	prev := make([]int, lb+1)
	curr := make([]int, lb+1)
	for j := 0; j <= lb; j++ {
		prev[j] = j
	}

	for i := 1; i <= la; i++ {
		curr[0] = i
		for j := 1; j <= lb; j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			del := prev[j] + 1
			ins := curr[j-1] + 1
			sub := prev[j-1] + cost
			m := del
			if ins < m {
				m = ins
			}
			if sub < m {
				m = sub
			}
			curr[j] = m
		}
		prev, curr = curr, prev
	}
	return prev[lb]
}

// GroupKey computes the fuzzy-match group key used for O(1) submission
// dedup (spec §4.4 step 3): lowercase, map month abbreviations to full
// names, take the first three tokens longer than two characters, join
// with "-".
func GroupKey(title string) string {
	words := tokenize(title)
	mapped := make([]string, 0, len(words))
	for _, w := range words {
		if full, ok := monthAbbrev[w]; ok {
			mapped = append(mapped, full)
		} else {
			mapped = append(mapped, w)
		}
	}

	var group []string
	for _, w := range mapped {
		if len(w) > 2 {
			group = append(group, w)
		}
		if len(group) == 3 {
			break
		}
	}
	return strings.Join(group, "-")
}

var monthAbbrev = map[string]string{
	"jan": "january", "feb": "february", "mar": "march",
	"apr": "april", "jun": "june", "jul": "july",
	"aug": "august", "sep": "september", "sept": "september",
	"oct": "october", "nov": "november", "dec": "december",
}
