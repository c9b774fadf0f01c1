package research

// Request describes one research run.
type Request struct {
	Query   string `json:"query"`
	Breadth int    `json:"breadth"`
	Depth   int    `json:"depth"`
}

const (
	MinBreadth     = 1
	MaxBreadth     = 10
	DefaultBreadth = 6

	MinDepth     = 1
	MaxDepth     = 5
	DefaultDepth = 3
)

// Normalize clamps breadth and depth into their valid ranges, substituting
// the defaults for unset values.
func (r Request) Normalize() Request {
	if r.Breadth == 0 {
		r.Breadth = DefaultBreadth
	}
	if r.Depth == 0 {
		r.Depth = DefaultDepth
	}
	r.Breadth = clamp(r.Breadth, MinBreadth, MaxBreadth)
	r.Depth = clamp(r.Depth, MinDepth, MaxDepth)
	return r
}

// Sentinel reports whether the request is the feedback-harvest mode: a run
// with breadth 1 and depth 1 only collects clarifying questions.
func (r Request) Sentinel() bool {
	return r.Breadth == 1 && r.Depth == 1
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Finding is one titled insight in the final report.
type Finding struct {
	Title   string   `json:"title"`
	Details []string `json:"details"`
}

// Analysis is the structured outcome of analyzing one content chunk.
type Analysis struct {
	Summary  string    `json:"executiveSummary"`
	Findings []Finding `json:"keyFindings"`
	Sources  []string  `json:"sources"`
}

// Report is the terminal artifact of a research run. Err carries a run-level
// failure description; the report around it stays well-formed.
type Report struct {
	ExecutiveSummary string    `json:"executiveSummary"`
	KeyFindings      []Finding `json:"keyFindings"`
	Sources          []string  `json:"sources"`
	Err              string    `json:"error,omitempty"`
}

// Result is everything a run produces: harvested clarifying questions in
// sentinel mode, otherwise the queries that were searched and the report.
type Result struct {
	Questions []string `json:"questions,omitempty"`
	Queries   []string `json:"queries,omitempty"`
	Report    Report   `json:"report"`
}
