package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
)

// searchWebTool queries DuckDuckGo's keyless HTML endpoint. DuckDuckGo has
// no official JSON API for keyless web search, so results are scraped from
// the lightweight HTML endpoint (html.duckduckgo.com) instead.
func searchWebTool(timeoutSeconds int) Definition {
	return Definition{
		Schema: Schema{
			Name:        "search_web",
			Description: "Searches the web for a query and returns a list of results.",
			Parameters: []Param{
				{Name: "query", Type: "string", Required: true},
				{Name: "num_results", Type: "int", Required: false},
			},
		},
		Handler: func(ctx context.Context, args map[string]interface{}) (map[string]interface{}, error) {
			return handleWebSearch(ctx, args, timeoutSeconds)
		},
	}
}

func handleWebSearch(ctx context.Context, args map[string]interface{}, timeoutSeconds int) (map[string]interface{}, error) {
	query, _ := args["query"].(string)
	if query == "" {
		return nil, fmt.Errorf("search_web: query is required")
	}
	numResults := intArg(args, "num_results", 5)

	ctx, cancel := withTimeout(ctx, timeoutSeconds)
	defer cancel()

	body, err := fetchBody(ctx, "https://html.duckduckgo.com/html/?q="+url.QueryEscape(query))
	if err != nil {
		return nil, fmt.Errorf("search_web: %w", err)
	}

	results := parseDuckDuckGoResults(body, numResults)
	return map[string]interface{}{
		"query":   query,
		"results": results,
	}, nil
}

var ddgResultPattern = regexp.MustCompile(
	`(?s)<a[^>]+class="result__a"[^>]+href="([^"]+)"[^>]*>(.*?)</a>.*?class="result__snippet"[^>]*>(.*?)</a>`,
)

var htmlTagPattern = regexp.MustCompile(`<[^>]+>`)

func parseDuckDuckGoResults(body string, limit int) []map[string]interface{} {
	matches := ddgResultPattern.FindAllStringSubmatch(body, -1)
	results := make([]map[string]interface{}, 0, limit)
	for _, m := range matches {
		if len(results) >= limit {
			break
		}
		results = append(results, map[string]interface{}{
			"title":   stripTags(m[2]),
			"url":     decodeDDGRedirect(m[1]),
			"snippet": stripTags(m[3]),
		})
	}
	return results
}

func stripTags(s string) string {
	return strings.TrimSpace(htmlTagPattern.ReplaceAllString(s, ""))
}

// decodeDDGRedirect unwraps DuckDuckGo's "/l/?uddg=<encoded target>"
// tracking redirect links so the URL the formatter preserves byte-exact is
// the real source link, not DDG's wrapper.
func decodeDDGRedirect(href string) string {
	if !strings.Contains(href, "uddg=") {
		return href
	}
	parsed, err := url.Parse(href)
	if err != nil {
		return href
	}
	if target := parsed.Query().Get("uddg"); target != "" {
		return target
	}
	return href
}

// searchNewsTool reuses the same DuckDuckGo HTML surface scoped to its news
// vertical, returning the news-shaped result the registry table demands
// (title/url/date/source instead of title/url/snippet).
func searchNewsTool(timeoutSeconds int) Definition {
	return Definition{
		Schema: Schema{
			Name:        "search_news",
			Description: "Searches recent news for a query.",
			Parameters: []Param{
				{Name: "query", Type: "string", Required: true},
				{Name: "num_results", Type: "int", Required: false},
			},
		},
		Handler: func(ctx context.Context, args map[string]interface{}) (map[string]interface{}, error) {
			query, _ := args["query"].(string)
			if query == "" {
				return nil, fmt.Errorf("search_news: query is required")
			}
			numResults := intArg(args, "num_results", 5)

			ctx, cancel := withTimeout(ctx, timeoutSeconds)
			defer cancel()

			body, err := fetchBody(ctx, "https://html.duckduckgo.com/html/?q="+url.QueryEscape(query+" news")+"&iar=news")
			if err != nil {
				return nil, fmt.Errorf("search_news: %w", err)
			}

			raw := parseDuckDuckGoResults(body, numResults)
			results := make([]map[string]interface{}, 0, len(raw))
			for _, r := range raw {
				results = append(results, map[string]interface{}{
					"title":  r["title"],
					"url":    r["url"],
					"date":   "",
					"source": hostOf(fmt.Sprint(r["url"])),
				})
			}
			return map[string]interface{}{"query": query, "results": results}, nil
		},
	}
}

func hostOf(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return parsed.Host
}

type wikipediaSummary struct {
	Title   string `json:"title"`
	Extract string `json:"extract"`
	URL     struct {
		Page string `json:"page"`
	} `json:"content_urls"`
}

// searchWikipediaTool calls Wikipedia's REST summary endpoint.
func searchWikipediaTool(timeoutSeconds int) Definition {
	return Definition{
		Schema: Schema{
			Name:        "search_wikipedia",
			Description: "Looks up a Wikipedia article summary.",
			Parameters: []Param{
				{Name: "query", Type: "string", Required: true},
				{Name: "lang", Type: "string", Required: false},
			},
		},
		Handler: func(ctx context.Context, args map[string]interface{}) (map[string]interface{}, error) {
			query, _ := args["query"].(string)
			if query == "" {
				return nil, fmt.Errorf("search_wikipedia: query is required")
			}
			lang, _ := args["lang"].(string)
			if lang == "" {
				lang = "en"
			}

			ctx, cancel := withTimeout(ctx, timeoutSeconds)
			defer cancel()

			endpoint := fmt.Sprintf("https://%s.wikipedia.org/api/rest_v1/page/summary/%s", lang, url.PathEscape(strings.ReplaceAll(query, " ", "_")))
			var summary wikipediaSummary
			if err := getJSON(ctx, endpoint, &summary); err != nil {
				return nil, fmt.Errorf("search_wikipedia: %w", err)
			}

			return map[string]interface{}{
				"title":   summary.Title,
				"extract": summary.Extract,
				"url":     summary.URL.Page,
			}, nil
		},
	}
}

// readURLTool fetches an arbitrary URL and returns its body, truncated to
// max_chars.
func readURLTool(timeoutSeconds int) Definition {
	return Definition{
		Schema: Schema{
			Name:        "read_url",
			Description: "Fetches a URL and returns its text content.",
			Parameters: []Param{
				{Name: "url", Type: "string", Required: true},
				{Name: "max_chars", Type: "int", Required: false},
			},
		},
		Handler: func(ctx context.Context, args map[string]interface{}) (map[string]interface{}, error) {
			target, _ := args["url"].(string)
			if target == "" {
				return nil, fmt.Errorf("read_url: url is required")
			}
			maxChars := intArg(args, "max_chars", 2000)

			ctx, cancel := withTimeout(ctx, timeoutSeconds)
			defer cancel()

			body, err := fetchBody(ctx, target)
			if err != nil {
				return nil, fmt.Errorf("read_url: %w", err)
			}

			text := stripTags(body)
			totalLength := len(text)
			truncated := false
			if totalLength > maxChars {
				text = text[:maxChars]
				truncated = true
			}

			return map[string]interface{}{
				"url":          target,
				"content":      text,
				"total_length": totalLength,
				"truncated":    truncated,
			}, nil
		},
	}
}

func fetchBody(ctx context.Context, target string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; tiny-moa/1.0)")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %d from %s", resp.StatusCode, target)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func intArg(args map[string]interface{}, key string, def int) int {
	v, ok := args[key]
	if !ok {
		return def
	}
	switch n := v.(type) {
	case int:
		return n
	case float64:
		return int(n)
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return def
		}
		return int(i)
	default:
		return def
	}
}
