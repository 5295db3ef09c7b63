package translate

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/gyunggyung/Tiny-MoA/aiclient"
	"github.com/stretchr/testify/require"
)

func mockGateway(fn func(prompt string) (string, error)) aiclient.Gateway {
	m := aiclient.NewMock()
	m.Responder = func(prompt string, opts aiclient.Options) (*aiclient.Response, error) {
		content, err := fn(prompt)
		if err != nil {
			return nil, err
		}
		return &aiclient.Response{Content: content}, nil
	}
	return aiclient.NewLockedGateway(m)
}

func TestPipelineToEnglishSkipsAlreadyEnglish(t *testing.T) {
	p := New(mockGateway(func(string) (string, error) {
		t.Fatal("should not call the model for English input")
		return "", nil
	}), nil)

	tc := p.ToEnglish(context.Background(), "What is the weather in Seoul?")
	require.False(t, tc.WasTranslated)
	require.Equal(t, English, tc.OriginalLang)
	require.Equal(t, "What is the weather in Seoul?", tc.EnglishText)
}

func TestPipelineToEnglishTranslatesNonEnglish(t *testing.T) {
	p := New(mockGateway(func(prompt string) (string, error) {
		require.Contains(t, prompt, "안녕하세요")
		return "Hello, how is the weather today?", nil
	}), nil)

	tc := p.ToEnglish(context.Background(), "안녕하세요, 오늘 날씨 어때요?")
	require.True(t, tc.WasTranslated)
	require.Equal(t, Korean, tc.OriginalLang)
	require.Equal(t, "Hello, how is the weather today?", tc.EnglishText)
}

func TestPipelineToEnglishFallsBackOnFailure(t *testing.T) {
	p := New(mockGateway(func(string) (string, error) {
		return "", errors.New("boom")
	}), nil)

	original := "안녕하세요"
	tc := p.ToEnglish(context.Background(), original)
	require.False(t, tc.WasTranslated)
	require.Equal(t, original, tc.EnglishText)
}

func TestPipelineFromEnglishNoopWhenNotTranslated(t *testing.T) {
	p := New(mockGateway(func(string) (string, error) {
		t.Fatal("should not call the model")
		return "", nil
	}), nil)

	out := p.FromEnglish(context.Background(), "hello", Context{WasTranslated: false, OriginalLang: Korean})
	require.Equal(t, "hello", out)
}

func TestPipelineFromEnglishPreservesCodeBlocks(t *testing.T) {
	p := New(mockGateway(func(prompt string) (string, error) {
		require.Contains(t, prompt, "__CODE_BLOCK_0__")
		require.NotContains(t, prompt, "func main")
		return strings.Replace(prompt, "Translate the following text from English to Korean. Return ONLY the translation, no commentary:\n\n", "", 1), nil
	}), nil)

	response := "Here is the code:\n```go\nfunc main() {}\n```\nThat should work."
	tc := Context{WasTranslated: true, OriginalLang: Korean}
	out := p.FromEnglish(context.Background(), response, tc)

	require.Contains(t, out, "```go\nfunc main() {}\n```")
}
