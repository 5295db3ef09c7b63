package translate

import "testing"

func TestDetectLanguageUnicodeHeuristic(t *testing.T) {
	cases := []struct {
		text string
		want Lang
	}{
		{"", English},
		{"   ", English},
		{"Hello, how are you?", English},
		{"안녕하세요, 오늘 날씨가 좋네요.", Korean},
		{"こんにちは、元気ですか？", Japanese},
		{"你好，今天天气很好。", Chinese},
		{"Привет, как дела?", Russian},
	}
	for _, tc := range cases {
		got := DetectLanguage(tc.text)
		if got != tc.want {
			t.Errorf("DetectLanguage(%q) = %q, want %q", tc.text, got, tc.want)
		}
	}
}

func TestDetectLanguagePrefersJapaneseOverHanOverlap(t *testing.T) {
	// Mixed kanji + hiragana: shared Han characters must not misclassify
	// this as Chinese.
	got := DetectLanguage("今日は天気がいいですね")
	if got != Japanese {
		t.Errorf("DetectLanguage(mixed kanji/hiragana) = %q, want %q", got, Japanese)
	}
}

func TestIsEnglish(t *testing.T) {
	if !IsEnglish("What is the weather today?") {
		t.Error("expected English text to be classified as English")
	}
	if IsEnglish("안녕하세요") {
		t.Error("expected Korean text to not be classified as English")
	}
}
