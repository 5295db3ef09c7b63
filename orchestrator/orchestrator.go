// Package orchestrator implements the top-level Orchestrator: the single
// `Run(ctx, goal)` entry point that ties translation, routing, pipelines,
// decomposition, planning, execution, and formatting into one call.
package orchestrator

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/gyunggyung/Tiny-MoA/aiclient"
	"github.com/gyunggyung/Tiny-MoA/decompose"
	"github.com/gyunggyung/Tiny-MoA/errs"
	"github.com/gyunggyung/Tiny-MoA/format"
	"github.com/gyunggyung/Tiny-MoA/logger"
	"github.com/gyunggyung/Tiny-MoA/pipeline"
	"github.com/gyunggyung/Tiny-MoA/routing"
	"github.com/gyunggyung/Tiny-MoA/tools"
	"github.com/gyunggyung/Tiny-MoA/translate"
	"github.com/gyunggyung/Tiny-MoA/worker"
)

// DefaultCacheTTL is how long Run's rendered output is reused for an
// identical (goal, history) pair when Config.CacheTTL is left at zero.
const DefaultCacheTTL = 2 * time.Minute

var tracer = otel.Tracer("tiny-moa/orchestrator")

var comparisonWords = []string{"compare", "vs", "versus", "difference"}

// Orchestrator is the top-level entry point. It is single-threaded itself:
// the only internal concurrency is the bounded parallel phase the Runner
// drives.
type Orchestrator struct {
	gateway    aiclient.Gateway
	router     *routing.Router
	dispatcher *tools.Dispatcher
	translator *translate.Pipeline
	formatter  *format.Formatter
	retriever  worker.Retriever
	officeGen  worker.OfficeGenerator
	log        logger.Logger
	reportPath string
	breaker    *circuitBreaker
	cache      *responseCache
}

// Config bundles the collaborators an Orchestrator needs. Retriever and
// OfficeGen are external collaborators and may be nil if research/office
// tasks are never expected; attempting
// one without a collaborator configured surfaces as a task failure, not a
// panic. CacheTTL defaults to DefaultCacheTTL; a negative value disables
// response caching outright.
type Config struct {
	Gateway    aiclient.Gateway
	Table      *routing.Table
	Registry   *tools.Registry
	Retriever  worker.Retriever
	OfficeGen  worker.OfficeGenerator
	Logger     logger.Logger
	CacheTTL   time.Duration
	ReportPath string // Cowork auto-save destination; defaults to worker.DefaultReportPath
}

// New builds an Orchestrator from cfg.
func New(cfg Config) *Orchestrator {
	log := cfg.Logger
	if log == nil {
		log = logger.NoOp{}
	}
	registry := cfg.Registry
	if registry == nil {
		registry = tools.NewDefaultRegistry(tools.DefaultHTTPTimeouts())
	}

	cacheTTL := cfg.CacheTTL
	if cacheTTL == 0 {
		cacheTTL = DefaultCacheTTL
	}
	if cacheTTL < 0 {
		cacheTTL = 0
	}

	reportPath := cfg.ReportPath
	if reportPath == "" {
		reportPath = worker.DefaultReportPath
	}

	return &Orchestrator{
		gateway:    cfg.Gateway,
		router:     routing.New(cfg.Table, cfg.Gateway, log),
		dispatcher: tools.NewDispatcher(registry, cfg.Gateway),
		translator: translate.New(cfg.Gateway, log),
		formatter:  format.New(cfg.Gateway),
		retriever:  cfg.Retriever,
		officeGen:  cfg.OfficeGen,
		log:        log,
		reportPath: reportPath,
		breaker:    newCircuitBreaker(),
		cache:      newResponseCache(cacheTTL),
	}
}

// Run executes the canonical single-call flow and returns a user-visible
// string under all non-fatal conditions. history is optional prior
// conversation context threaded into Direct/Writer workers.
//
// Run is wrapped in a response cache and a circuit breaker: an identical
// (goal, history) pair served within CacheTTL skips the
// whole pipeline, and a run of sustained internal failures trips the
// breaker so a caller gets an immediate bounded-error response instead of
// repeatedly paying for a pipeline that's already failing. Neither changes
// Run's externally observable semantics on the success path — caching is a
// pure optimization, and the breaker only affects availability once
// failures are already well past the point of being useful to retry.
func (o *Orchestrator) Run(ctx context.Context, goal string, history string) string {
	ctx, span := tracer.Start(ctx, "orchestrator.run")
	defer span.End()

	cacheKey := goal + "\x00" + history
	if cached, ok := o.cache.get(cacheKey); ok {
		span.SetAttributes(attribute.Bool("cache.hit", true))
		return cached
	}
	span.SetAttributes(attribute.Bool("cache.hit", false))

	if !o.breaker.allow() {
		span.SetAttributes(attribute.String("circuit.state", "open"))
		o.log.Warn("circuit open, rejecting run", map[string]interface{}{"goal": goal})
		return errs.Newf(errs.CodeCircuitOpen, "temporarily unavailable, please retry shortly").Error()
	}

	result := o.run(ctx, goal, history)
	o.cache.put(cacheKey, result)
	return result
}

// run is the canonical single-call flow itself, unwrapped by caching so
// that concern stays outside the pipeline logic it protects. It records
// its own outcome with the breaker: a recovered panic counts as a
// failure, everything else (including tool/worker errors, which already
// surface as bounded in-band error text rather than panics) counts as a
// success.
func (o *Orchestrator) run(ctx context.Context, goal string, history string) (result string) {
	succeeded := true
	defer func() {
		if r := recover(); r != nil {
			o.log.Error("fatal orchestrator error", map[string]interface{}{"panic": fmt.Sprint(r)})
			succeeded = false
		}
		if succeeded {
			o.breaker.recordSuccess()
		} else {
			o.breaker.recordFailure()
		}
	}()

	// 1. Resolve @[file] references.
	paths, strippedGoal := worker.ExtractFileReferences(goal)

	// 2. Translate to English, before the reference material is attached so
	// language detection sees only the user's own words.
	tc := o.translator.ToEnglish(ctx, strippedGoal)
	englishGoal := tc.EnglishText

	contextBlock := ""
	if len(paths) > 0 && o.retriever != nil {
		contextBlock = o.resolveReferences(ctx, paths, strippedGoal)
	}
	forcedDirect := contextBlock != ""
	augmented := englishGoal
	if contextBlock != "" {
		augmented = englishGoal + "\n\n--- Reference Material ---\n" + contextBlock
	}

	// A hybrid request carries both a resolved @[file] reference and an
	// explicit tool keyword of its own: it forces the Cowork Plan path with
	// the RAG stage swapped ahead of the tool stage so the summarization
	// informs the tool stage that follows, rather than the plain DIRECT
	// forcing rule below.
	hybrid := forcedDirect && o.router.ContainsToolKeyword(englishGoal)

	// 3/4/5. Build a pipeline; else decompose a compound query; else route
	// a single request.
	isCowork := isCoworkGoal(englishGoal) || hybrid
	switch {
	case isCowork:
		result = o.runCowork(ctx, englishGoal, contextBlock, history, hybrid)
	default:
		decision := o.router.Route(ctx, englishGoal)
		// File-reference forcing rule: an @[file] reference forces DIRECT
		// unless the text also matched an explicit tool keyword on its own.
		if forcedDirect && decision.Kind != routing.Tool {
			decision = routing.Decision{Kind: routing.Direct, Description: augmented}
		} else if decision.Kind == routing.Direct && contextBlock != "" {
			decision.Description = augmented
		}

		pl := pipeline.Build(englishGoal, decision)
		subqueries := decompose.Decompose(englishGoal)
		switch {
		case len(pl) > 1:
			result = o.runPipeline(ctx, pl, history)
		case isCompound(englishGoal) || (decision.Kind == routing.Tool && len(subqueries) > 1):
			// Comparisons always decompose; a coordinated tool request
			// ("Seoul and Tokyo weather") decomposes too, so each entity
			// gets its own tool call instead of one mangled argument.
			result = o.runDecomposition(ctx, subqueries, history)
		default:
			result = o.runSingleRoute(ctx, decision, history, englishGoal)
		}
	}

	// Translate the result back to the caller's language.
	final := o.translator.FromEnglish(ctx, result, tc)

	// Cowork calls auto-save the synthesized, translated report, overwriting
	// any prior file.
	if isCowork {
		if err := worker.WriteReport(o.reportPath, final); err != nil {
			o.log.Warn("failed to auto-save cowork report", map[string]interface{}{"error": err.Error()})
		}
	}

	return final
}

func (o *Orchestrator) resolveReferences(ctx context.Context, paths []string, goal string) string {
	rw := worker.NewResearchWorker(o.retriever)
	out, err := rw.Execute(ctx, goal+" "+joinRefs(paths))
	if err != nil {
		o.log.Warn("retrieval failed, dropping reference", map[string]interface{}{"error": err.Error()})
		return ""
	}
	return out
}

func joinRefs(paths []string) string {
	var b strings.Builder
	for _, p := range paths {
		b.WriteString("@[")
		b.WriteString(p)
		b.WriteString("] ")
	}
	return strings.TrimSpace(b.String())
}

func isCompound(text string) bool {
	lower := strings.ToLower(text)
	for _, w := range comparisonWords {
		if strings.Contains(lower, w) {
			return true
		}
	}
	return false
}

// isCoworkGoal identifies multi-task, file-producing requests that need
// the full Planner rather than router/pipeline alone: office-document asks
// and explicit multi-step writing requests.
func isCoworkGoal(text string) bool {
	lower := strings.ToLower(text)
	markers := []string{"slide deck", "presentation", "spreadsheet", "write a report", "create_ppt", "create_word", "create_excel"}
	for _, m := range markers {
		if strings.Contains(lower, m) {
			return true
		}
	}
	return false
}
