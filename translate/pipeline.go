package translate

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/gyunggyung/Tiny-MoA/aiclient"
	"github.com/gyunggyung/Tiny-MoA/logger"
)

// Context carries the provenance of one translation round trip: it lets
// the caller run the model purely in English and still answer back in the
// caller's language.
type Context struct {
	OriginalText  string
	OriginalLang  Lang
	EnglishText   string
	WasTranslated bool
}

// Pipeline is the bidirectional translation wrapper around a Gateway.
type Pipeline struct {
	gateway aiclient.Gateway
	log     logger.Logger
}

// New builds a Pipeline that calls gateway for the actual translation work.
// A nil logger defaults to a no-op sink.
func New(gateway aiclient.Gateway, log logger.Logger) *Pipeline {
	if log == nil {
		log = logger.NoOp{}
	}
	return &Pipeline{gateway: gateway, log: log}
}

// ToEnglish detects text's language and, unless it is already English, asks
// the model to translate it. Translation failure never propagates to the
// caller: it falls back to the original text with WasTranslated=false.
func (p *Pipeline) ToEnglish(ctx context.Context, text string) Context {
	if isBlank(text) {
		return Context{OriginalText: text, OriginalLang: English, EnglishText: text}
	}

	lang := DetectLanguage(text)
	if lang == English {
		return Context{OriginalText: text, OriginalLang: English, EnglishText: text}
	}

	english, err := p.translate(ctx, text, lang, English)
	if err != nil {
		p.log.Warn("translation to English failed, using original text", map[string]interface{}{
			"lang": string(lang), "error": err.Error(),
		})
		return Context{OriginalText: text, OriginalLang: lang, EnglishText: text, WasTranslated: false}
	}

	p.log.Info("translated to English", map[string]interface{}{"from": string(lang)})
	return Context{OriginalText: text, OriginalLang: lang, EnglishText: english, WasTranslated: true}
}

var codeBlockPattern = regexp.MustCompile("(?s)```.*?```")

// FromEnglish translates an English response back into tc's original
// language, if any translation actually happened. Fenced code blocks are
// extracted, replaced with placeholders, excluded from translation, and
// restored verbatim afterward, so filenames, command output, and other
// technical data never get mangled by the translator.
func (p *Pipeline) FromEnglish(ctx context.Context, response string, tc Context) string {
	if !tc.WasTranslated || tc.OriginalLang == English {
		return response
	}
	if isBlank(response) {
		return response
	}

	codeBlocks := codeBlockPattern.FindAllString(response, -1)
	withPlaceholders := response
	placeholders := make([]string, len(codeBlocks))
	for i, block := range codeBlocks {
		placeholder := fmt.Sprintf("__CODE_BLOCK_%d__", i)
		placeholders[i] = placeholder
		withPlaceholders = strings.Replace(withPlaceholders, block, placeholder, 1)
	}

	translated := withPlaceholders
	if !isBlank(withPlaceholders) {
		var err error
		translated, err = p.translate(ctx, withPlaceholders, English, tc.OriginalLang)
		if err != nil {
			p.log.Warn("translation from English failed, returning English response", map[string]interface{}{
				"lang": string(tc.OriginalLang), "error": err.Error(),
			})
			return response
		}
	}

	for i, placeholder := range placeholders {
		translated = strings.Replace(translated, placeholder, codeBlocks[i], 1)
	}

	p.log.Info("translated from English", map[string]interface{}{
		"to": string(tc.OriginalLang), "code_blocks_preserved": len(codeBlocks),
	})
	return translated
}

// translate issues a single constrained completion asking the model to
// translate text between two languages — just another prompt through the
// same opaque Gateway, not a dedicated translation API.
func (p *Pipeline) translate(ctx context.Context, text string, from, to Lang) (string, error) {
	prompt := fmt.Sprintf(
		"Translate the following text from %s to %s. Return ONLY the translation, no commentary:\n\n%s",
		Name(from), Name(to), text,
	)
	resp, err := p.gateway.Complete(ctx, prompt, aiclient.Options{
		Temperature: 0,
		SystemPrompt: "You are a precise translation engine. Preserve meaning, tone, and any " +
			"placeholder tokens shaped like __CODE_BLOCK_N__ exactly as given.",
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(resp.Content), nil
}
