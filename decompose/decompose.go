// Package decompose splits a compound request into independent,
// self-contained entity sub-queries: coordinator-split on fragments,
// stopword-filtered, each reattached to its detected topic. tagger.go's
// lightweight lexical tagger stands in for a full NLP POS tagger, close
// enough to produce the right entity fragments for the domains this system
// covers (weather, news, stock, time, calculation topics).
package decompose

import (
	"regexp"
	"strings"
)

var coordinatorPattern = regexp.MustCompile(`(?i)\s*(?:,|\band\b|\bor\b|\bvs\.?\b|&|\bas well as\b)\s*`)

var comparisonWords = []string{"compare", "comparison", "vs", "versus", "difference", "differences"}

// topicTables maps a topic tag to the keyword set that identifies it and
// the stopwords specific to that topic, on top of the shared functional
// stopword set.
var topicTables = map[string]struct {
	keywords []string
	stop     []string
}{
	"weather": {
		keywords: []string{"weather", "temperature", "forecast", "rain", "snow"},
		stop:     []string{"weather", "temperature", "forecast", "like"},
	},
	"news": {
		keywords: []string{"news", "headline"},
		stop:     []string{"news", "headline", "latest"},
	},
	"stock": {
		keywords: []string{"stock", "share price", "market cap"},
		stop:     []string{"stock", "price", "share", "market"},
	},
	"time": {
		keywords: []string{"time", "timezone"},
		stop:     []string{"time", "timezone", "current"},
	},
	"calculation": {
		keywords: []string{"calculate", "compute"},
		stop:     []string{"calculate", "compute"},
	},
}

var sharedStopwords = map[string]bool{
	"a": true, "an": true, "the": true, "is": true, "are": true, "was": true, "were": true,
	"what": true, "what's": true, "how": true, "how's": true, "of": true, "in": true,
	"for": true, "to": true, "and": true, "or": true, "please": true, "can": true,
	"you": true, "me": true, "tell": true, "about": true, "today": true, "now": true,
	"compare": true, "comparison": true, "vs": true, "versus": true, "difference": true, "differences": true,
	"between": true,
}

// Decompose splits englishText into independent self-contained sub-queries.
// The result always has length ≥ 1; if text contains no coordinator and no
// comparison word, the result is the singleton {englishText}.
func Decompose(englishText string) []string {
	text := strings.TrimSpace(englishText)
	if text == "" {
		return []string{englishText}
	}

	topic := detectTopic(text)
	hasComparison := containsAny(strings.ToLower(text), comparisonWords)
	fragments := coordinatorPattern.Split(text, -1)

	if len(fragments) <= 1 && !hasComparison {
		return []string{text}
	}

	entities := make([]string, 0, len(fragments))
	for _, frag := range fragments {
		entity := extractEntity(frag, topic)
		if entity == "" {
			continue
		}
		if topic != "" {
			entity = entity + " " + topic
		}
		entities = append(entities, entity)
	}

	if len(entities) == 0 {
		return []string{text}
	}

	if hasComparison && len(entities) >= 2 {
		entities = append(entities, "compare")
	}

	return entities
}

func detectTopic(text string) string {
	lower := strings.ToLower(text)
	for topic, t := range topicTables {
		for _, kw := range t.keywords {
			if strings.Contains(lower, kw) {
				return topic
			}
		}
	}
	return ""
}

// extractEntity tokenizes frag and keeps tokens that look like nouns,
// adjectives, cardinals, or proper (foreign/capitalized) words, dropping
// the shared and topic-specific stopword sets. If topic is "calculation",
// numeric tokens and operators are preserved verbatim instead of filtered.
func extractEntity(frag, topic string) string {
	frag = strings.TrimSpace(strings.Trim(frag, "?.! "))
	if frag == "" {
		return ""
	}

	if topic == "calculation" {
		return frag
	}

	tokens := tokenize(frag)
	stop := sharedStopwords
	if t, ok := topicTables[topic]; ok {
		stop = mergeStop(sharedStopwords, t.stop)
	}

	kept := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		lower := strings.ToLower(tok)
		if stop[lower] {
			continue
		}
		if !isKeepableToken(tok) {
			continue
		}
		kept = append(kept, tok)
	}
	return strings.Join(kept, " ")
}

func tokenize(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return r == ' ' || r == '\t' || r == '\n' || r == ','
	})
}

func mergeStop(shared map[string]bool, extra []string) map[string]bool {
	merged := make(map[string]bool, len(shared)+len(extra))
	for k := range shared {
		merged[k] = true
	}
	for _, e := range extra {
		merged[strings.ToLower(e)] = true
	}
	return merged
}

func containsAny(lower string, words []string) bool {
	for _, w := range words {
		if strings.Contains(lower, w) {
			return true
		}
	}
	return false
}
