// Package format implements deterministic structured-to-text rendering
// with an LLM fallback for data it can't render deterministically. Map keys
// are sorted and floats formatted explicitly for stable output, since Go
// maps give no iteration-order guarantee to rely on implicitly.
package format

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/gyunggyung/Tiny-MoA/aiclient"
)

// Section is one `[TASK: name] DATA: payload` block extracted from an
// aggregate.
type Section struct {
	Task       string
	RawData    string
	Structured map[string]interface{} // nil if the payload didn't parse as a mapping
}

var taskHeaderPattern = regexp.MustCompile(`(?s)\[TASK:\s*(.*?)\]\s*DATA:\s*`)

// Split breaks aggregate into sections framed by `[TASK: …] DATA: …`
// blocks. If no such framing is present, the whole input is returned as a
// single unframed, unstructured section.
func Split(aggregate string) []Section {
	headers := taskHeaderPattern.FindAllStringSubmatchIndex(aggregate, -1)
	if len(headers) == 0 {
		return []Section{{RawData: aggregate}}
	}

	sections := make([]Section, 0, len(headers))
	for i, h := range headers {
		end := len(aggregate)
		if i+1 < len(headers) {
			end = headers[i+1][0]
		}
		data := strings.TrimSpace(aggregate[h[1]:end])
		sections = append(sections, Section{
			Task:       strings.TrimSpace(aggregate[h[2]:h[3]]),
			RawData:    data,
			Structured: tryParseMapping(data),
		})
	}
	return sections
}

// Formatter renders a heterogeneous task-result aggregate into final text.
type Formatter struct {
	gateway aiclient.Gateway
}

// New builds a Formatter. gateway may be nil; in that case the LLM
// fallback pass is skipped and unstructured payloads are returned as-is.
func New(gateway aiclient.Gateway) *Formatter {
	return &Formatter{gateway: gateway}
}

// Render applies the typed-renderer / LLM-fallback pipeline. If any section
// rendered deterministically, the LLM pass is short-circuited and the
// concatenated deterministic blocks are returned instead — the guard
// against model hallucination of URLs or values.
func (f *Formatter) Render(ctx context.Context, aggregate string) string {
	sections := Split(aggregate)

	var rendered []string
	anyDeterministic := false

	for _, s := range sections {
		block, ok := renderTyped(s)
		if ok {
			anyDeterministic = true
			rendered = append(rendered, block)
		} else {
			rendered = append(rendered, s.RawData)
		}
	}

	if anyDeterministic {
		return strings.Join(rendered, "\n\n")
	}

	if f.gateway == nil {
		return strings.Join(rendered, "\n\n")
	}

	llmRendered, err := f.renderWithLLM(ctx, aggregate)
	if err != nil {
		return strings.Join(rendered, "\n\n")
	}

	// Safety net: programmatically append any source links the LLM pass
	// might have omitted.
	return appendReferences(llmRendered, collectReferences(sections))
}

// Integrate always runs the Integration LLM pass over aggregate, even when
// every payload could render deterministically — used for aggregates that
// need synthesis across sections (a comparison over several search
// results), where a deterministic per-section dump would answer the wrong
// question. Source links from parsed results are appended programmatically
// afterward, so the model can never omit or rewrite them. Falls back to
// the deterministic rendering when the model is unavailable or errors.
func (f *Formatter) Integrate(ctx context.Context, aggregate string) string {
	sections := Split(aggregate)
	refs := collectReferences(sections)

	if f.gateway == nil {
		return f.Render(ctx, aggregate)
	}
	integrated, err := f.renderWithLLM(ctx, aggregate)
	if err != nil {
		return f.Render(ctx, aggregate)
	}
	return appendReferences(integrated, refs)
}

// collectReferences gathers "* [title](url)" markdown links from every
// structured search/news section, URLs byte-exact.
func collectReferences(sections []Section) []string {
	var refs []string
	for _, s := range sections {
		if s.Structured == nil {
			continue
		}
		results, ok := s.Structured["results"].([]interface{})
		if !ok {
			continue
		}
		for _, item := range results {
			m, ok := item.(map[string]interface{})
			if !ok {
				continue
			}
			title := fmt.Sprint(firstNonEmpty(m["title"], "No Title"))
			link := fmt.Sprint(firstNonEmpty(m["url"], m["link"]))
			if link == "" || link == "<nil>" {
				continue
			}
			refs = append(refs, fmt.Sprintf("* [%s](%s)", title, link))
		}
	}
	return dedupe(refs)
}

// appendReferences attaches the collected source links under a fixed
// appendix heading, if any exist.
func appendReferences(text string, refs []string) string {
	if len(refs) == 0 {
		return text
	}
	return text + "\n\n### 🔗 관련 뉴스/자료 (자동 첨부)\n" + strings.Join(refs, "\n")
}

const formatterSystemPrompt = `You are a result formatter. Render the given structured data as clear, concise prose with one bullet per item.
Do not alter, shorten, or invent any URL. Do not add commentary outside the rendered content.`

func (f *Formatter) renderWithLLM(ctx context.Context, aggregate string) (string, error) {
	resp, err := f.gateway.Complete(ctx, aggregate, aiclient.Options{
		Temperature:  0,
		SystemPrompt: formatterSystemPrompt,
	})
	if err != nil {
		return "", err
	}
	return resp.Content, nil
}

func dedupe(links []string) []string {
	seen := make(map[string]bool, len(links))
	out := make([]string, 0, len(links))
	for _, l := range links {
		if !seen[l] {
			seen[l] = true
			out = append(out, l)
		}
	}
	return out
}

// renderTyped applies the typed renderer to s.Structured when present:
// search/news -> titled list with byte-exact URLs; weather -> compact
// card; generic mapping -> sorted key-value bullets. Returns ok=false for
// unstructured or unrecognized payloads.
func renderTyped(s Section) (block string, ok bool) {
	if s.Structured == nil {
		return "", false
	}

	if results, isSearch := s.Structured["results"]; isSearch {
		return renderSearchLike(s.Task, results)
	}
	if _, isWeather := s.Structured["temperature"]; isWeather {
		return renderWeather(s.Structured), true
	}
	return renderGenericMapping(s.Task, s.Structured), true
}

func renderSearchLike(taskName string, results interface{}) (string, bool) {
	list, ok := results.([]interface{})
	if !ok {
		if typed, okTyped := results.([]map[string]interface{}); okTyped {
			list = make([]interface{}, len(typed))
			for i, m := range typed {
				list[i] = m
			}
		} else {
			return "", false
		}
	}

	var b strings.Builder
	if taskName != "" {
		fmt.Fprintf(&b, "%s:\n", taskName)
	}
	for _, item := range list {
		m, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		title := fmt.Sprint(m["title"])
		linkURL := fmt.Sprint(firstNonEmpty(m["url"], m["link"]))
		summary := fmt.Sprint(firstNonEmpty(m["snippet"], m["summary"]))
		fmt.Fprintf(&b, "- %s: %s (%s)\n", title, summary, linkURL)
	}
	return strings.TrimRight(b.String(), "\n"), true
}

func firstNonEmpty(vals ...interface{}) interface{} {
	for _, v := range vals {
		if v != nil && fmt.Sprint(v) != "" {
			return v
		}
	}
	return ""
}

// renderWeather renders a single-line card beginning with
// "### 🌦️ **<Location> Weather**", temperature and condition passed
// through verbatim. The location comes from the payload itself rather than
// the task label, so two parallel weather cards stay self-identifying
// regardless of completion order.
func renderWeather(m map[string]interface{}) string {
	return fmt.Sprintf("### 🌦️ **%v Weather** %s°, %v (humidity %s%%, wind %s)",
		m["location"], formatNumber(m["temperature"]), m["condition"],
		formatNumber(m["humidity"]), formatNumber(m["wind"]))
}

func renderGenericMapping(taskName string, m map[string]interface{}) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	if taskName != "" {
		fmt.Fprintf(&b, "%s:\n", taskName)
	}
	for _, k := range keys {
		fmt.Fprintf(&b, "- %s: %s\n", k, formatValue(m[k]))
	}
	return strings.TrimRight(b.String(), "\n")
}

func formatValue(v interface{}) string {
	switch n := v.(type) {
	case float64:
		return formatNumber(n)
	default:
		return fmt.Sprint(v)
	}
}

// formatNumber renders a float with the minimal digits that round-trip, so
// an upstream 21.3 stays "21.3" rather than picking up padding or losing
// precision.
func formatNumber(v interface{}) string {
	f, ok := v.(float64)
	if !ok {
		return fmt.Sprint(v)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}
