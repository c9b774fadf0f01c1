// Package generate turns natural-language instructions into validated,
// typed results from a language model, degrading deterministically when the
// model cannot be made to cooperate.
package generate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/tmc/langchaingo/llms"

	"deepscout/pkg/config"
	"deepscout/pkg/extract"
	"deepscout/pkg/limiter"
	"deepscout/pkg/research"
	"deepscout/pkg/retry"
)

const (
	// Query generation and analysis calls are the heavyweight path.
	heavyConcurrent = 2
	// Feedback questions are cheap, so more may run at once.
	feedbackConcurrent = 5
)

// ErrInvalidOutput marks model replies that failed extraction or validation
// even after the amended retry. Callers fall back deterministically on it;
// plain model-call errors propagate instead.
var ErrInvalidOutput = errors.New("invalid model output")

// Client issues structured-generation requests through a concurrency limiter
// and the retry wrapper.
type Client struct {
	llm         llms.Model
	feedbackLim *limiter.Limiter
	heavyLim    *limiter.Limiter
	retrier     *retry.Retrier
}

func NewClient(llm llms.Model, cfg *config.Config) *Client {
	return &Client{
		llm:         llm,
		feedbackLim: limiter.New(feedbackConcurrent),
		heavyLim:    limiter.New(heavyConcurrent),
		retrier:     retry.New(cfg.MaxRetries, time.Duration(cfg.RetryBaseMillis)*time.Millisecond),
	}
}

// FeedbackQuestions asks for up to n clarifying questions about query. A
// reply that cannot be coaxed into shape yields the canned fallback
// questions; only exhausted model-call failures return an error.
func (c *Client) FeedbackQuestions(ctx context.Context, query string, n int) ([]string, error) {
	if n <= 0 {
		n = research.DefaultNumQuestions
	}

	var out struct {
		Questions []string `json:"questions"`
	}
	err := c.generateStructured(ctx, c.feedbackLim, "feedback",
		feedbackSystem+responseFormat(questionsSchema),
		fmt.Sprintf("Research topic: %s\n\nGenerate up to %d clarifying questions to pin down what the user wants from this research.", query, n),
		func(raw string) error {
			out.Questions = nil
			if err := json.Unmarshal([]byte(raw), &out); err != nil {
				return fmt.Errorf("json parse error: %w", err)
			}
			qs, err := validQuestions(out.Questions)
			if err != nil {
				return err
			}
			out.Questions = qs
			return nil
		})
	if err != nil {
		if errors.Is(err, ErrInvalidOutput) {
			slog.Warn("falling back to canned feedback questions", "error", err)
			return research.FallbackQuestions(query, n), nil
		}
		return nil, err
	}
	return truncateList(out.Questions, n), nil
}

// SearchQueries asks for up to n distinct web search queries for query,
// falling back to mechanical variations when the model output is unusable.
func (c *Client) SearchQueries(ctx context.Context, query string, n int) ([]string, error) {
	if n <= 0 {
		n = 1
	}

	var out struct {
		Queries []string `json:"queries"`
	}
	err := c.generateStructured(ctx, c.heavyLim, "queries",
		queriesSystem+responseFormat(queriesSchema),
		fmt.Sprintf("Research topic: %s\n\nGenerate up to %d distinct web search queries that together cover the topic's key angles.", query, n),
		func(raw string) error {
			out.Queries = nil
			if err := json.Unmarshal([]byte(raw), &out); err != nil {
				return fmt.Errorf("json parse error: %w", err)
			}
			qs, err := validQueries(out.Queries)
			if err != nil {
				return err
			}
			out.Queries = qs
			return nil
		})
	if err != nil {
		if errors.Is(err, ErrInvalidOutput) {
			slog.Warn("falling back to mechanical query variations", "error", err)
			return research.FallbackQueries(query, n), nil
		}
		return nil, err
	}
	return truncateList(out.Queries, n), nil
}

// Analyze summarizes one chunk of retrieved content against the research
// query. Unusable model output degrades to an analysis that preserves the
// raw content as its key finding.
func (c *Client) Analyze(ctx context.Context, query, content string) (research.Analysis, error) {
	var out research.Analysis
	err := c.generateStructured(ctx, c.heavyLim, "analysis",
		analysisSystem+responseFormat(analysisSchema),
		fmt.Sprintf("Research topic: %s\n\nAnalyze the following retrieved web content. Produce an executive summary, titled key findings with supporting details, and the source URLs you drew from.\n\n%s", query, content),
		func(raw string) error {
			out = research.Analysis{}
			if err := json.Unmarshal([]byte(raw), &out); err != nil {
				return fmt.Errorf("json parse error: %w", err)
			}
			if strings.TrimSpace(out.Summary) == "" {
				return fmt.Errorf("empty executive summary")
			}
			return nil
		})
	if err != nil {
		if errors.Is(err, ErrInvalidOutput) {
			slog.Warn("falling back to degraded analysis", "error", err)
			return research.FallbackAnalysis(content), nil
		}
		return research.Analysis{}, err
	}
	return out, nil
}

// generate issues one JSON-mode model call through the limiter and retry
// wrapper and returns the raw text of the first choice.
func (c *Client) generate(ctx context.Context, lim *limiter.Limiter, op, system, user string) (string, error) {
	prompts := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, system),
		llms.TextParts(llms.ChatMessageTypeHuman, user),
	}

	var content string
	err := c.retrier.Do(ctx, op, func(ctx context.Context) error {
		return lim.Do(ctx, func() error {
			resp, err := c.llm.GenerateContent(ctx, prompts, llms.WithJSONMode())
			if err != nil {
				return fmt.Errorf("llm generation failed: %w", err)
			}
			if len(resp.Choices) == 0 {
				return fmt.Errorf("llm returned no choices")
			}
			content = resp.Choices[0].Content
			return nil
		})
	})
	return content, err
}

// generateStructured extracts and validates a JSON object from the model
// reply. A malformed or invalid reply earns exactly one more attempt with an
// amended prompt; a second bad reply returns ErrInvalidOutput. Model-call
// errors are returned unchanged.
func (c *Client) generateStructured(ctx context.Context, lim *limiter.Limiter, op, system, user string, validate func(string) error) error {
	parse := func(content string) error {
		raw, ok := extract.JSONObject(content)
		if !ok {
			return fmt.Errorf("no JSON object in model output")
		}
		return validate(raw)
	}

	content, err := c.generate(ctx, lim, op, system, user)
	if err != nil {
		return err
	}
	perr := parse(content)
	if perr == nil {
		return nil
	}

	slog.Warn("model output failed validation, retrying with amended prompt", "op", op, "error", perr)
	amended := user + "\n\nYour previous reply could not be parsed. Respond with ONLY a single valid JSON object matching the schema: no markdown fences, no commentary."
	content, err = c.generate(ctx, lim, op, system, amended)
	if err != nil {
		return err
	}
	if perr = parse(content); perr != nil {
		return fmt.Errorf("%w: %v", ErrInvalidOutput, perr)
	}
	return nil
}

func validQuestions(raw []string) ([]string, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("empty questions list")
	}
	out := make([]string, 0, len(raw))
	for _, q := range raw {
		q = strings.TrimSpace(q)
		if q == "" || !strings.Contains(q, "?") {
			return nil, fmt.Errorf("question %q lacks a question mark", q)
		}
		out = append(out, q)
	}
	return out, nil
}

func validQueries(raw []string) ([]string, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("empty queries list")
	}
	out := make([]string, 0, len(raw))
	for _, q := range raw {
		q = strings.TrimSpace(q)
		if q == "" {
			return nil, fmt.Errorf("blank search query in model output")
		}
		out = append(out, q)
	}
	return out, nil
}

func truncateList(items []string, n int) []string {
	if n > 0 && len(items) > n {
		return items[:n]
	}
	return items
}
