package driver

// Record is the outcome for one processed payload. Exactly one record is
// emitted per input item, failures included.
type Record struct {
	Input      string   `json:"input"`
	Label      string   `json:"label,omitempty"`
	Confidence *float64 `json:"confidence,omitempty"`
	Rationale  string   `json:"rationale,omitempty"`
	Source     string   `json:"source,omitempty"`
	ZeroShot   bool     `json:"zero_shot,omitempty"`
	Stored     bool     `json:"stored,omitempty"`
	Cached     bool     `json:"cached,omitempty"`
	Err        string   `json:"error,omitempty"`
}

// Failed reports whether the item errored.
func (r *Record) Failed() bool {
	return r.Err != ""
}
