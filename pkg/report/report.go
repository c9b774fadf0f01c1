// Package report renders finished research runs as Markdown documents and
// saves them to disk.
package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"deepscout/pkg/research"
)

const maxSlugLen = 60

// Slug converts a query into a filesystem-friendly file stem: lowercased,
// with runs of non-alphanumeric characters collapsed into single hyphens.
func Slug(query string) string {
	var b strings.Builder
	pending := false
	for _, r := range strings.ToLower(query) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pending && b.Len() > 0 {
				b.WriteByte('-')
			}
			b.WriteRune(r)
			pending = false
		} else {
			pending = true
		}
	}
	s := b.String()
	if runes := []rune(s); len(runes) > maxSlugLen {
		s = strings.TrimRight(string(runes[:maxSlugLen]), "-")
	}
	if s == "" {
		return "research"
	}
	return s
}

// Filename returns the report file name for a query on a given date.
func Filename(query string, now time.Time) string {
	return fmt.Sprintf("%s-%s.md", Slug(query), now.Format("2006-01-02"))
}

// Render produces the Markdown report for a finished run.
func Render(query string, res research.Result, now time.Time) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("# Research Report: %s\n\n", query))
	if res.Report.Err != "" {
		b.WriteString(fmt.Sprintf("> **Note:** parts of this run failed and the report may be incomplete: %s\n\n", res.Report.Err))
	}
	b.WriteString(fmt.Sprintf("**Query:** %s\n\n", query))
	b.WriteString(fmt.Sprintf("**Generated:** %s\n\n", now.Format(time.RFC1123)))

	if len(res.Queries) > 0 {
		b.WriteString("## Search Queries\n\n")
		for i, q := range res.Queries {
			b.WriteString(fmt.Sprintf("%d. %s\n", i+1, q))
		}
		b.WriteString("\n")
	}

	b.WriteString("## Executive Summary\n\n")
	if s := strings.TrimSpace(res.Report.ExecutiveSummary); s != "" {
		b.WriteString(s)
		b.WriteString("\n\n")
	} else {
		b.WriteString("_No summary was produced._\n\n")
	}

	if len(res.Report.KeyFindings) > 0 {
		b.WriteString("## Key Findings\n\n")
		for _, f := range res.Report.KeyFindings {
			b.WriteString(fmt.Sprintf("### %s\n\n", f.Title))
			for _, d := range f.Details {
				b.WriteString(fmt.Sprintf("- %s\n", d))
			}
			b.WriteString("\n")
		}
	}

	if len(res.Report.Sources) > 0 {
		b.WriteString("## Sources\n\n")
		for i, s := range res.Report.Sources {
			b.WriteString(fmt.Sprintf("%d. %s\n", i+1, s))
		}
		b.WriteString("\n")
	}

	return b.String()
}

// Write renders the report and saves it under dir, creating the directory
// if needed. It returns the path of the written file.
func Write(dir, query string, res research.Result, now time.Time) (string, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("creating report directory: %w", err)
	}
	path := filepath.Join(dir, Filename(query, now))
	if err := os.WriteFile(path, []byte(Render(query, res, now)), 0644); err != nil {
		return "", fmt.Errorf("writing report: %w", err)
	}
	return path, nil
}
