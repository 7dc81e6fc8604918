package harness

// TraceEvent records one executed operation.
type TraceEvent struct {
	Seq    int64  `json:"seq"`
	Phase  string `json:"phase"` // "setup" or "flow"
	Op     string `json:"op"`
	Args   any    `json:"args,omitempty"`
	Status string `json:"status"` // "ok" or "error"
	Code   string `json:"code,omitempty"`
	Data   any    `json:"data,omitempty"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true if every expect clause and assertion held.
	Pass bool `json:"pass"`

	// Trace contains every executed operation in order.
	Trace []TraceEvent `json:"trace"`

	// Errors contains one message per failed expectation.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddTrace appends an executed operation to the trace.
func (r *Result) AddTrace(event TraceEvent) {
	r.Trace = append(r.Trace, event)
}
