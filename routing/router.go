package routing

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/gyunggyung/Tiny-MoA/aiclient"
	"github.com/gyunggyung/Tiny-MoA/logger"
)

// tracer emits spans around routing decisions, grabbed from the global
// provider rather than a dedicated SDK/exporter pipeline — the global
// provider is a no-op until a caller installs its own, so this adds
// observability hooks without taking on an exporter dependency.
var tracer = otel.Tracer("tiny-moa/routing")

// Router is a two-tier classifier that never suspends on user interaction
// and always produces exactly one Decision.
type Router struct {
	table   *Table
	gateway aiclient.Gateway
	log     logger.Logger
}

// New builds a Router over table, falling back to the model through gateway
// when Tier A finds no match. A nil table uses DefaultTable(); a nil logger
// defaults to a no-op sink.
func New(table *Table, gateway aiclient.Gateway, log logger.Logger) *Router {
	if table == nil {
		table = DefaultTable()
	}
	if log == nil {
		log = logger.NoOp{}
	}
	return &Router{table: table, gateway: gateway, log: log}
}

// Route classifies englishText (already translated to English) into
// exactly one Decision. Tier A is tried first; on no match, Tier B (a
// constrained LLM call) runs; on Tier B failure or malformed output, a
// secondary Tier A pass over a looser paraphrase is tried, and failing that
// the Router defaults to DIRECT. The Router never returns an error — the
// invariant is that it always produces a decision.
func (r *Router) Route(ctx context.Context, englishText string) Decision {
	ctx, span := tracer.Start(ctx, "router.route")
	defer span.End()

	if d, ok := tierA(r.table, englishText); ok {
		span.SetAttributes(attribute.String("route.tier", "A"), attribute.String("route.kind", string(d.Kind)))
		return d
	}

	if r.gateway != nil {
		d, err := tierB(ctx, r.gateway, englishText)
		if err == nil {
			span.SetAttributes(attribute.String("route.tier", "B"), attribute.String("route.kind", string(d.Kind)))
			return d
		}
		r.log.Warn("tier B routing failed, falling back", map[string]interface{}{"error": err.Error()})
	}

	// Secondary keyword pass: re-run Tier A without requiring an exact
	// phrase match by stripping common question scaffolding.
	if d, ok := tierA(r.table, stripQuestionScaffolding(englishText)); ok {
		span.SetAttributes(attribute.String("route.tier", "A-secondary"), attribute.String("route.kind", string(d.Kind)))
		return d
	}

	span.SetAttributes(attribute.String("route.tier", "default"), attribute.String("route.kind", string(Direct)))
	return directDecision(englishText)
}

// ContainsToolKeyword reports whether englishText names an entry in any of
// the weather/news/search/time keyword tables, regardless of which rule
// would win a full Tier A pass. Used for hybrid RAG+tool detection, where
// "summarize this document and tell me the weather" must still register
// its tool half even though the social rule would win the route.
func (r *Router) ContainsToolKeyword(englishText string) bool {
	lower := strings.ToLower(englishText)
	return r.table.Weather.matches(lower) || r.table.News.matches(lower) ||
		r.table.Search.matches(lower) || r.table.Time.matches(lower)
}

var questionPrefixes = []string{
	"can you ", "could you ", "please ", "i want to know ", "tell me ",
}

func stripQuestionScaffolding(text string) string {
	lower := text
	for _, prefix := range questionPrefixes {
		if len(lower) >= len(prefix) && equalFold(lower[:len(prefix)], prefix) {
			return text[len(prefix):]
		}
	}
	return text
}

func equalFold(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := 0; i < len(a); i++ {
		ca, cb := a[i], b[i]
		if ca >= 'A' && ca <= 'Z' {
			ca += 'a' - 'A'
		}
		if cb >= 'A' && cb <= 'Z' {
			cb += 'a' - 'A'
		}
		if ca != cb {
			return false
		}
	}
	return true
}
