package decompose

import "unicode"

// isKeepableToken is a lightweight stand-in for a full POS tagger. It does
// not classify words: function words are removed only by the stopword pass
// in Decompose. A token is kept when it contains at least one letter or
// digit, so only bare punctuation fragments are dropped here.
func isKeepableToken(tok string) bool {
	hasAlnum := false
	for _, r := range tok {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			hasAlnum = true
			break
		}
	}
	return hasAlnum
}
