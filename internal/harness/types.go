package harness

// TraceEvent is one observed effect during a scenario run: a shopper
// step, a catalog fetch, or a placed order. Seq is assigned in
// observation order starting at 1.
type TraceEvent struct {
	Seq    int            `json:"seq"`
	Op     string         `json:"op"`
	Detail map[string]any `json:"detail,omitempty"`
}

// FinalState snapshots the stores after the last step.
type FinalState struct {
	Step      string   `json:"step"`
	CartLines int      `json:"cart_lines"`
	CartTotal float64  `json:"cart_total"`
	Orders    int      `json:"orders"`
	OrderIDs  []string `json:"order_ids,omitempty"`
	Visible   int      `json:"visible"`
	Total     int      `json:"total"`
	HasMore   bool     `json:"has_more"`
}

// Result holds everything a scenario run produced.
type Result struct {
	Trace      []TraceEvent
	FinalState FinalState

	// Errors collects assertion failures. Empty means the run passed.
	Errors []string
}

// Passed reports whether every assertion held.
func (r *Result) Passed() bool {
	return len(r.Errors) == 0
}

// AddError records an assertion failure.
func (r *Result) AddError(msg string) {
	r.Errors = append(r.Errors, msg)
}
