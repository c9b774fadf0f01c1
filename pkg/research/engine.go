package research

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"deepscout/pkg/search"
	"deepscout/pkg/splitter"
)

// State names one stage of a research run.
type State string

const (
	StateAwaitingFeedback  State = "awaiting_feedback"
	StateGeneratingQueries State = "generating_queries"
	StateSearching         State = "searching"
	StateAnalyzing         State = "analyzing"
	StateReporting         State = "reporting"
)

// interChunkPause separates consecutive analysis calls to stay under
// upstream rate limits.
const interChunkPause = 2 * time.Second

// Generator produces structured model output for a run.
type Generator interface {
	FeedbackQuestions(ctx context.Context, query string, n int) ([]string, error)
	SearchQueries(ctx context.Context, query string, n int) ([]string, error)
	Analyze(ctx context.Context, query, content string) (Analysis, error)
}

// Searcher retrieves web content for one query. Implementations absorb
// their own failures and return an empty slice instead of erroring.
type Searcher interface {
	Search(ctx context.Context, query string, depth int) []search.Result
}

// Engine sequences a research run through its states:
// AwaitingFeedback -> GeneratingQueries -> Searching -> Analyzing ->
// Reporting, no state revisited. It never fails a run outright; every stage
// degrades into a report-shaped result with Report.Err describing what went
// wrong.
type Engine struct {
	Gen      Generator
	Searcher Searcher
	Logger   *slog.Logger

	// OnState, when set, observes state transitions.
	OnState func(State)

	pause func(context.Context, time.Duration)
}

func NewEngine(gen Generator, searcher Searcher) *Engine {
	return &Engine{
		Gen:      gen,
		Searcher: searcher,
		Logger:   slog.Default(),
		pause:    sleepCtx,
	}
}

// Run executes one research request. In sentinel mode (breadth and depth
// both 1, used to harvest clarifying questions before the real run) it
// produces up to three feedback questions and an empty report, skipping all
// later states. Otherwise it runs the full pipeline on the (possibly
// context-enriched) query.
func (e *Engine) Run(ctx context.Context, req Request) Result {
	req = req.Normalize()
	e.Logger.Info("starting research run", "query", req.Query, "breadth", req.Breadth, "depth", req.Depth)

	if req.Sentinel() {
		return e.harvestQuestions(ctx, req)
	}

	var runErrs []string

	e.setState(StateGeneratingQueries)
	queries, err := e.Gen.SearchQueries(ctx, req.Query, req.Breadth)
	if err != nil {
		e.Logger.Error("query generation failed, using mechanical fallback", "error", err)
		runErrs = append(runErrs, fmt.Sprintf("query generation: %v", err))
		queries = FallbackQueries(req.Query, req.Breadth)
	}
	e.Logger.Info("generated search queries", "queries", queries)

	e.setState(StateSearching)
	var pages []search.Result
	for _, q := range queries {
		pages = append(pages, e.Searcher.Search(ctx, q, req.Depth)...)
	}
	e.Logger.Info("search complete", "pages", len(pages))

	e.setState(StateAnalyzing)
	var merged Analysis
	contents := formatPages(pages)
	if len(contents) == 0 {
		runErrs = append(runErrs, "search produced no usable content")
	} else {
		analyses, errs := e.analyzeChunks(ctx, req.Query, contents)
		runErrs = append(runErrs, errs...)
		merged = MergeAnalyses(analyses)
	}

	e.setState(StateReporting)
	report := Report{
		ExecutiveSummary: merged.Summary,
		KeyFindings:      merged.Findings,
		Sources:          unionSources(merged.Sources, pages),
	}
	if len(runErrs) > 0 {
		report.Err = strings.Join(runErrs, "; ")
	}

	e.Logger.Info("research run complete",
		"queries", len(queries), "findings", len(report.KeyFindings), "sources", len(report.Sources))

	return Result{Queries: queries, Report: report}
}

func (e *Engine) harvestQuestions(ctx context.Context, req Request) Result {
	e.setState(StateAwaitingFeedback)
	questions, err := e.Gen.FeedbackQuestions(ctx, req.Query, DefaultNumQuestions)
	if err != nil {
		e.Logger.Error("feedback generation failed, using canned questions", "error", err)
		return Result{
			Questions: FallbackQuestions(req.Query, DefaultNumQuestions),
			Report:    Report{Err: fmt.Sprintf("feedback generation: %v", err)},
		}
	}
	e.Logger.Info("harvested clarifying questions", "count", len(questions))
	return Result{Questions: questions}
}

// analyzeChunks packs the content items into bounded chunks and analyzes
// them strictly sequentially with a fixed pause between chunks.
func (e *Engine) analyzeChunks(ctx context.Context, query string, contents []string) ([]Analysis, []string) {
	chunks := splitter.Batch(contents, splitter.MaxContentChars)
	e.Logger.Info("analyzing retrieved content", "items", len(contents), "chunks", len(chunks))

	var errs []string
	analyses := make([]Analysis, 0, len(chunks))
	for i, chunk := range chunks {
		if i > 0 {
			e.pause(ctx, interChunkPause)
		}
		block := strings.Join(chunk, "\n\n---\n\n")
		a, err := e.Gen.Analyze(ctx, query, block)
		if err != nil {
			e.Logger.Error("chunk analysis failed, keeping raw content", "chunk", i+1, "error", err)
			errs = append(errs, fmt.Sprintf("analysis chunk %d: %v", i+1, err))
			a = FallbackAnalysis(block)
		}
		analyses = append(analyses, a)
	}
	return analyses, errs
}

func (e *Engine) setState(s State) {
	if e.OnState != nil {
		e.OnState(s)
	}
}

// formatPages renders each page as a source-attributed block for the
// analysis prompt.
func formatPages(pages []search.Result) []string {
	out := make([]string, 0, len(pages))
	for _, p := range pages {
		if p.Content == "" {
			continue
		}
		out = append(out, fmt.Sprintf("-----\n# URL: %s\n-----\n\n%s", p.URL, p.Content))
	}
	return out
}

// MergeAnalyses folds per-chunk analyses into one: summaries concatenated,
// findings flattened with first-occurrence-wins title dedup, sources
// deduplicated by exact string equality.
func MergeAnalyses(analyses []Analysis) Analysis {
	var merged Analysis
	var summaries []string
	seenTitle := make(map[string]bool)
	seenSource := make(map[string]bool)

	for _, a := range analyses {
		if s := strings.TrimSpace(a.Summary); s != "" {
			summaries = append(summaries, s)
		}
		for _, f := range a.Findings {
			if seenTitle[f.Title] {
				continue
			}
			seenTitle[f.Title] = true
			merged.Findings = append(merged.Findings, f)
		}
		for _, src := range a.Sources {
			if src == "" || seenSource[src] {
				continue
			}
			seenSource[src] = true
			merged.Sources = append(merged.Sources, src)
		}
	}
	merged.Summary = strings.Join(summaries, "\n\n")
	return merged
}

// unionSources appends searched URLs the analyses did not already cite,
// keeping the cited ones first and the whole list duplicate-free.
func unionSources(cited []string, pages []search.Result) []string {
	seen := make(map[string]bool, len(cited))
	out := make([]string, 0, len(cited))
	for _, s := range cited {
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	for _, p := range pages {
		if p.URL == "" || seen[p.URL] {
			continue
		}
		seen[p.URL] = true
		out = append(out, p.URL)
	}
	return out
}

func sleepCtx(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
