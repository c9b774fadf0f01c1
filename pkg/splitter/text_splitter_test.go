package splitter

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestTruncateShortInput(t *testing.T) {
	text := "short text stays as it is"
	if got := Truncate(text, 100); got != text {
		t.Errorf("Truncate() = %q, want input unchanged", got)
	}
	if got := Truncate("", 100); got != "" {
		t.Errorf("Truncate(\"\") = %q, want empty", got)
	}
}

func TestTruncateCutsAtWordBoundary(t *testing.T) {
	text := strings.TrimSpace(strings.Repeat("word ", 5000))
	const limit = 1000

	got := Truncate(text, limit)

	if n := utf8.RuneCountInString(got); n > limit {
		t.Errorf("truncated length = %d runes, want <= %d", n, limit)
	}
	if got == "" {
		t.Fatal("truncated to nothing")
	}
	for _, tok := range strings.Fields(got) {
		if tok != "word" {
			t.Errorf("token %q split mid-word", tok)
		}
	}
}

func TestTruncateMultibyte(t *testing.T) {
	text := strings.TrimSpace(strings.Repeat("héllo wörld ", 2000))
	const limit = 500

	got := Truncate(text, limit)

	if !utf8.ValidString(got) {
		t.Error("truncation produced invalid UTF-8")
	}
	if n := utf8.RuneCountInString(got); n > limit {
		t.Errorf("truncated length = %d runes, want <= %d", n, limit)
	}
	for _, tok := range strings.Fields(got) {
		if tok != "héllo" && tok != "wörld" {
			t.Errorf("token %q split mid-word", tok)
		}
	}
}

func TestBatch(t *testing.T) {
	a := strings.Repeat("a", 6000)
	b := strings.Repeat("b", 6000)
	c := strings.Repeat("c", 6000)

	chunks := Batch([]string{a, b, c}, 15000)

	if len(chunks) != 2 {
		t.Fatalf("len(chunks) = %d, want 2", len(chunks))
	}
	if len(chunks[0]) != 2 || chunks[0][0] != a || chunks[0][1] != b {
		t.Errorf("first chunk holds %d items, want the first two", len(chunks[0]))
	}
	if len(chunks[1]) != 1 || chunks[1][0] != c {
		t.Errorf("second chunk holds %d items, want just the third", len(chunks[1]))
	}
}

func TestBatchExactFit(t *testing.T) {
	items := []string{"aaaaa", "bbbbb", "ccccc"}

	chunks := Batch(items, 15)

	if len(chunks) != 1 || len(chunks[0]) != 3 {
		t.Fatalf("chunks = %v, want one chunk holding all items at the exact bound", chunks)
	}
}

func TestBatchOversizedItem(t *testing.T) {
	big := strings.Repeat("x", 20000)
	small := "small"

	chunks := Batch([]string{big, small}, 15000)

	if len(chunks) != 2 {
		t.Fatalf("len(chunks) = %d, want 2", len(chunks))
	}
	if len(chunks[0]) != 1 || chunks[0][0] != big {
		t.Error("oversized item should sit alone in its own chunk")
	}
	if len(chunks[1]) != 1 || chunks[1][0] != small {
		t.Error("item after an oversized one should start a new chunk")
	}
}

func TestBatchEmpty(t *testing.T) {
	if chunks := Batch(nil, 15000); len(chunks) != 0 {
		t.Errorf("Batch(nil) = %v, want none", chunks)
	}
}
