package splitter

import (
	"unicode/utf8"

	"github.com/tmc/langchaingo/textsplitter"
)

// MaxContentChars is the per-item and per-chunk character budget used to
// keep model inputs inside context limits.
const MaxContentChars = 15000

// Truncate shortens text to at most limit characters, cutting at a natural
// boundary rather than mid-word. Text already within the limit comes back
// unchanged.
func Truncate(text string, limit int) string {
	if limit <= 0 || utf8.RuneCountInString(text) <= limit {
		return text
	}

	ts := textsplitter.NewRecursiveCharacter(
		textsplitter.WithChunkSize(limit),
		textsplitter.WithChunkOverlap(0),
	)
	chunks, err := ts.SplitText(text)
	if err == nil && len(chunks) > 0 && utf8.RuneCountInString(chunks[0]) <= limit {
		return chunks[0]
	}

	// Last resort: hard cut on a rune boundary.
	runes := []rune(text)
	return string(runes[:limit])
}

// Batch groups items greedily into chunks whose combined length stays within
// limit: a chunk closes once appending the next item would exceed it. An
// item larger than limit forms a chunk of its own. Item order is preserved.
func Batch(items []string, limit int) [][]string {
	var (
		chunks  [][]string
		current []string
		size    int
	)
	for _, item := range items {
		n := utf8.RuneCountInString(item)
		if len(current) > 0 && size+n > limit {
			chunks = append(chunks, current)
			current = nil
			size = 0
		}
		current = append(current, item)
		size += n
	}
	if len(current) > 0 {
		chunks = append(chunks, current)
	}
	return chunks
}
