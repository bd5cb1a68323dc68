package harness

// TraceEvent is one executed step's observable outcome. Field values are
// deterministic across runs, which is what makes golden comparison work.
type TraceEvent struct {
	Op        string `json:"op"`
	Contact   string `json:"contact,omitempty"`
	Profile   string `json:"profile,omitempty"`
	Tier      string `json:"tier,omitempty"`
	Template  string `json:"template,omitempty"`
	Content   string `json:"content,omitempty"`
	EventID   string `json:"event_id,omitempty"`
	MessageID string `json:"message_id,omitempty"`
	Status    string `json:"status,omitempty"`
	Advanced  bool   `json:"advanced,omitempty"`
	Resolved  string `json:"resolved,omitempty"`
	Error     string `json:"error,omitempty"`
}

// Result holds a scenario run's trace and any failures.
type Result struct {
	Trace  []TraceEvent
	Errors []string
}

// NewResult creates an empty result.
func NewResult() *Result {
	return &Result{}
}

// AddError records a failure message.
func (r *Result) AddError(msg string) {
	r.Errors = append(r.Errors, msg)
}

// Passed reports whether the run produced no failures.
func (r *Result) Passed() bool {
	return len(r.Errors) == 0
}
