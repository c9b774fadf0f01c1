package research

import (
	"fmt"

	"deepscout/pkg/splitter"
)

// DefaultNumQuestions is how many clarifying questions a run harvests.
const DefaultNumQuestions = 3

const fallbackExcerptChars = 2000

var questionTemplates = []string{
	"What specific aspect of %q matters most to you?",
	"What will the findings about %q be used for?",
	"Should the research on %q favor particular sources, regions, or time frames?",
	"Are there subtopics of %q you want excluded?",
	"How technical should the report on %q be?",
}

// FallbackQuestions returns deterministic clarifying questions for when the
// model cannot produce usable ones: exactly n non-empty questions, each
// containing a question mark.
func FallbackQuestions(query string, n int) []string {
	if n <= 0 {
		n = DefaultNumQuestions
	}
	out := make([]string, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, fmt.Sprintf(questionTemplates[i%len(questionTemplates)], query))
	}
	return out
}

var querySuffixes = []string{
	"",
	" comparison",
	" review",
	" analysis",
	" latest developments",
	" case studies",
	" trends",
	" criticism",
	" overview",
	" examples",
}

// FallbackQueries returns the original query plus mechanical variations of
// it, exactly n entries.
func FallbackQueries(query string, n int) []string {
	if n <= 0 {
		n = 1
	}
	out := make([]string, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, query+querySuffixes[i%len(querySuffixes)])
	}
	return out
}

// FallbackAnalysis preserves raw content as the single key finding when
// structured analysis is unavailable, so nothing retrieved is silently lost.
func FallbackAnalysis(content string) Analysis {
	return Analysis{
		Summary: "Automated analysis was unavailable for part of the retrieved content; the raw material is preserved under key findings.",
		Findings: []Finding{
			{
				Title:   "Raw research content",
				Details: []string{splitter.Truncate(content, fallbackExcerptChars)},
			},
		},
	}
}
