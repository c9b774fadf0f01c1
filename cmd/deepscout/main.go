package main

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"deepscout/pkg/clients"
	"deepscout/pkg/config"
	"deepscout/pkg/generate"
	"deepscout/pkg/report"
	"deepscout/pkg/research"
	"deepscout/pkg/search"
)

var (
	query     string
	breadth   int
	depth     int
	outputDir string
)

func main() {
	// Setup structured logging
	handler := slog.NewTextHandler(os.Stdout, nil)
	slog.SetDefault(slog.New(handler))

	// Load .env file
	if err := godotenv.Load(); err != nil {
		// It's okay if .env doesn't exist, as long as env vars are set
	}

	rootCmd := &cobra.Command{
		Use:   "deepscout",
		Short: "A terminal-based deep research assistant",
		Long: `deepscout researches a topic by generating targeted search queries,
collecting web content, and distilling it into a Markdown report.`,
		Run: run,
	}

	rootCmd.Flags().StringVarP(&query, "query", "q", "", "The research query")
	rootCmd.Flags().IntVarP(&breadth, "breadth", "b", research.DefaultBreadth, "Number of search queries to generate (1-10)")
	rootCmd.Flags().IntVarP(&depth, "depth", "d", research.DefaultDepth, "Results per search query (1-5)")
	rootCmd.Flags().StringVarP(&outputDir, "output", "o", "", "Directory for the report file (defaults to REPORT_DIR)")

	if err := rootCmd.Execute(); err != nil {
		slog.Error("Command execution failed", "error", err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		slog.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}
	if outputDir != "" {
		cfg.ReportDir = outputDir
	}

	interactive := !cmd.Flags().Changed("query")
	reader := bufio.NewReader(os.Stdin)

	if interactive {
		fmt.Print("Enter research query: ")
		input, _ := reader.ReadString('\n')
		query = strings.TrimSpace(input)
		if !cmd.Flags().Changed("breadth") {
			breadth = promptInt(reader, "Research breadth", research.DefaultBreadth, research.MinBreadth, research.MaxBreadth)
		}
		if !cmd.Flags().Changed("depth") {
			depth = promptInt(reader, "Research depth", research.DefaultDepth, research.MinDepth, research.MaxDepth)
		}
	}
	if query == "" {
		slog.Error("Query cannot be empty")
		os.Exit(1)
	}

	ctx := context.Background()

	llm, err := clients.NewModel(ctx, cfg)
	if err != nil {
		slog.Error("Failed to initialize language model", "error", err)
		os.Exit(1)
	}

	gen := generate.NewClient(llm, cfg)
	searcher := search.NewClient(cfg)
	engine := research.NewEngine(gen, searcher)

	req := research.Request{Query: query, Breadth: breadth, Depth: depth}.Normalize()

	if interactive && !req.Sentinel() {
		req.Query = refineQuery(ctx, engine, reader, req.Query)
	}

	slog.Info("Starting research", "query", req.Query, "breadth", req.Breadth, "depth", req.Depth)
	res := engine.Run(ctx, req)

	if req.Sentinel() {
		fmt.Println("\nClarifying questions:")
		for i, q := range res.Questions {
			fmt.Printf("%d. %s\n", i+1, q)
		}
		return
	}

	path, err := report.Write(cfg.ReportDir, query, res, time.Now())
	if err != nil {
		slog.Error("Failed to write report", "error", err)
		os.Exit(1)
	}

	fmt.Printf("\nReport saved to %s\n\n", path)
	if res.Report.ExecutiveSummary != "" {
		fmt.Println(res.Report.ExecutiveSummary)
	}
	if res.Report.Err != "" {
		slog.Warn("Run finished with degraded stages", "detail", res.Report.Err)
	}
}

// refineQuery runs a feedback-harvest pass and folds the user's answers
// into the query before the real run.
func refineQuery(ctx context.Context, engine *research.Engine, reader *bufio.Reader, query string) string {
	harvest := engine.Run(ctx, research.Request{Query: query, Breadth: 1, Depth: 1})
	if len(harvest.Questions) == 0 {
		return query
	}

	fmt.Println("\nAnswer a few questions to sharpen the research (enter to skip):")
	var b strings.Builder
	b.WriteString(query)
	b.WriteString("\n\nAdditional context from follow-up questions:\n")
	answered := false
	for _, q := range harvest.Questions {
		fmt.Printf("%s\n> ", q)
		input, _ := reader.ReadString('\n')
		answer := strings.TrimSpace(input)
		if answer == "" {
			continue
		}
		fmt.Fprintf(&b, "Q: %s\nA: %s\n", q, answer)
		answered = true
	}
	if !answered {
		return query
	}
	return b.String()
}

func promptInt(reader *bufio.Reader, label string, def, lo, hi int) int {
	fmt.Printf("%s [%d-%d] (default %d): ", label, lo, hi, def)
	input, _ := reader.ReadString('\n')
	input = strings.TrimSpace(input)
	if input == "" {
		return def
	}
	v, err := strconv.Atoi(input)
	if err != nil {
		fmt.Printf("Not a number, using default %d\n", def)
		return def
	}
	if v < lo {
		v = lo
	}
	if v > hi {
		v = hi
	}
	return v
}
