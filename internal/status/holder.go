package status

import (
	"net/http"
	"sync"
	"time"
)

// FailingCheck describes one check that contributed to an unavailable
// verdict. The JSON field names are part of the public endpoint
// contract.
type FailingCheck struct {
	CheckName     string `json:"check_name"`
	FailureReason string `json:"failure_reason"`
}

// Results is the aggregated verdict published after every check cycle.
// FailingChecks is empty iff StatusCode is 200, and is never nil so the
// endpoint always serializes a JSON array.
type Results struct {
	Timestamp     time.Time
	StatusCode    int
	FailingChecks []FailingCheck
}

// Holder is the single cell shared between the check loop (sole
// writer) and the HTTP exposure layer (any number of concurrent
// readers). The verdict is replaced wholesale, never mutated in place,
// so readers can hold the returned value without copying.
type Holder struct {
	mu      sync.RWMutex
	current Results
}

// NewHolder creates a holder in the initial-failed state: until the
// first cycle has run, the instance reports unavailable with a single
// synthetic entry.
func NewHolder() *Holder {
	return &Holder{
		current: Results{
			Timestamp:  time.Now(),
			StatusCode: http.StatusServiceUnavailable,
			FailingChecks: []FailingCheck{{
				CheckName:     "Initial Check",
				FailureReason: "Cannot determine status: checks weren't executed yet",
			}},
		},
	}
}

// Current returns the latest verdict. Safe for unlimited concurrent
// callers and never blocks longer than a verdict installation.
func (h *Holder) Current() Results {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.current
}

func (h *Holder) set(results Results) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.current = results
}
