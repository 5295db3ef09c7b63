package routing

import (
	"regexp"
	"strings"
)

// containsWord reports whether phrase occurs in lower (both already
// lower-cased) as a whole word/phrase match rather than a raw substring —
// e.g. "hi" must not match inside "history".
func containsWord(lower, phrase string) bool {
	idx := strings.Index(lower, phrase)
	for idx >= 0 {
		before := idx == 0 || !isWordByte(lower[idx-1])
		afterIdx := idx + len(phrase)
		after := afterIdx == len(lower) || !isWordByte(lower[afterIdx])
		if before && after {
			return true
		}
		next := strings.Index(lower[idx+1:], phrase)
		if next < 0 {
			return false
		}
		idx = idx + 1 + next
	}
	return false
}

func isWordByte(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= '0' && b <= '9')
}

var conceptQueryPattern = regexp.MustCompile(`^\s*what\s+is\s+(.+?)\??\s*$`)

// tierA runs the six ordered, deterministic rules against englishText
// (already lower-cased internally) and reports the matched decision, if
// any. It never calls the model and never blocks.
func tierA(table *Table, englishText string) (Decision, bool) {
	lower := strings.ToLower(englishText)

	// 1. Recency.
	if table.Recency.matches(lower) {
		return toolDecision("search_web", englishText), true
	}

	// 2. Social.
	if table.Social.matches(lower) {
		return directDecision(englishText), true
	}

	// 3. Concept query ("what is X").
	if m := conceptQueryPattern.FindStringSubmatch(lower); m != nil {
		term := strings.TrimSpace(m[1])
		if table.TechnicalTerms[term] || containsKnownTerm(table, term) {
			return toolDecision("search_web", englishText), true
		}
		return directDecision(englishText), true
	}

	// 4. Calculation.
	if table.Calculation.matches(lower) {
		return toolDecision("calculate", englishText), true
	}

	// 5. Coding.
	if table.Coding.matches(lower) {
		return reasonerDecision(englishText), true
	}

	// 6. Weather/News/Search/Time/Command keyword tables. A historical-time
	// modifier alongside a weather query routes to search_web instead: the
	// weather backend has no history.
	if table.Weather.matches(lower) {
		if table.HistoricalTime.matches(lower) {
			return toolDecision("search_web", englishText), true
		}
		return toolDecision("get_weather", englishText), true
	}
	if table.News.matches(lower) {
		return toolDecision("search_news", englishText), true
	}
	if table.Time.matches(lower) {
		return toolDecision("get_current_time", englishText), true
	}
	if table.Command.matches(lower) {
		return toolDecision("execute_command", englishText), true
	}
	if table.Search.matches(lower) {
		return toolDecision("search_web", englishText), true
	}
	// Version/installed checks naming a known CLI or runtime ("uv
	// version?", "is python installed") are command executions, not
	// searches. Gated on a recognized target so prose mentioning
	// "version" alone doesn't reach a shell.
	if table.CommandVersion.matches(lower) && table.hasCommandTarget(lower) {
		return toolDecision("execute_command", englishText), true
	}

	return Decision{}, false
}

// containsKnownTerm reports whether term contains any of the table's known
// technical terms as a substring, so "what is a kubernetes pod" still
// matches the "kubernetes" entry even though the full phrase isn't a key.
func containsKnownTerm(table *Table, term string) bool {
	for known := range table.TechnicalTerms {
		if strings.Contains(term, known) {
			return true
		}
	}
	return false
}
