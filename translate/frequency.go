package translate

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// functionWords lists a handful of high-frequency closed-class words per
// language. A text matching several of a language's function words is
// almost certainly written in it — this is the probabilistic classifier
// detector.py's primary path (langdetect) stands in for; a langdetect-class
// model is out of scope for a dependency-light Go port, so we approximate
// its "cheap, high-confidence primary signal" role with the corpus's
// cheapest reliable signal instead of reaching for Unicode ranges first.
var functionWords = map[Lang][]string{
	English: {"the", "is", "are", "and", "of", "to", "in", "a", "what", "how"},
	Russian: {"и", "не", "в", "на", "что", "как", "это", "для"},
	Arabic:  {"في", "من", "على", "إلى", "هذا", "ما", "هل"},
	Thai:    {"และ", "ที่", "เป็น", "ใน", "ของ", "มี"},
}

// detectByFrequency scores text against each language's function-word list
// and reports the best match when it clears a minimal confidence bar. CJK
// and Korean are deliberately excluded here: whitespace tokenization does
// not segment them meaningfully, so they fall through to the Unicode
// range heuristic instead, matching detector.py's own script-range fallback
// for those languages.
func detectByFrequency(text string) (Lang, bool) {
	// Normalize to NFC first: function-word matching is exact-string, and
	// Arabic/Thai input arriving in decomposed form would otherwise miss
	// every entry in functionWords even on an exact semantic match.
	lower := strings.ToLower(norm.NFC.String(text))
	words := strings.Fields(lower)
	if len(words) == 0 {
		return English, false
	}

	wordSet := make(map[string]struct{}, len(words))
	for _, w := range words {
		wordSet[strings.Trim(w, ".,!?;:\"'()")] = struct{}{}
	}

	type score struct {
		lang Lang
		hits int
	}
	var best score
	order := []Lang{English, Russian, Arabic, Thai}
	for _, lang := range order {
		hits := 0
		for _, fw := range functionWords[lang] {
			if _, ok := wordSet[fw]; ok {
				hits++
			}
		}
		if hits > best.hits {
			best = score{lang, hits}
		}
	}

	// Require at least two function-word hits before trusting the
	// frequency signal over the Unicode fallback.
	if best.hits < 2 {
		return English, false
	}
	return best.lang, true
}
