package policy

import (
	"fmt"
	"time"

	"github.com/voyagecm/policy-api/models"
)

// Decision is the outcome of a policy evaluation
type Decision string

const (
	DecisionAllow Decision = "ALLOW"
	DecisionDeny  Decision = "DENY"
)

// TraceEntry records the outcome of a single predicate
type TraceEntry struct {
	Predicate string `json:"predicate"`
	Passed    bool   `json:"passed"`
	Detail    string `json:"detail,omitempty"`
}

// Line renders the entry in the "PASS <Predicate>: <detail>" form
func (e TraceEntry) Line() string {
	verdict := "PASS"
	if !e.Passed {
		verdict = "FAIL"
	}
	if e.Detail == "" {
		return fmt.Sprintf("%s %s", verdict, e.Predicate)
	}
	return fmt.Sprintf("%s %s: %s", verdict, e.Predicate, e.Detail)
}

// Trace is the ordered list of predicate outcomes for one evaluation.
// All predicates are recorded even after the first failure.
type Trace []TraceEntry

// Add appends a predicate outcome and returns whether it passed
func (t *Trace) Add(predicate string, passed bool, detail string) bool {
	*t = append(*t, TraceEntry{Predicate: predicate, Passed: passed, Detail: detail})
	return passed
}

// Addf appends a predicate outcome with a formatted detail
func (t *Trace) Addf(predicate string, passed bool, format string, args ...interface{}) bool {
	return t.Add(predicate, passed, fmt.Sprintf(format, args...))
}

// AllPassed reports whether every recorded predicate passed
func (t Trace) AllPassed() bool {
	for _, e := range t {
		if !e.Passed {
			return false
		}
	}
	return len(t) > 0
}

// Lines renders every entry
func (t Trace) Lines() []string {
	lines := make([]string, len(t))
	for i, e := range t {
		lines[i] = e.Line()
	}
	return lines
}

// Result is the complete outcome of one policy evaluation
type Result struct {
	Policy    models.PolicyName `json:"policy"`
	Decision  Decision          `json:"decision"`
	Trace     Trace             `json:"trace"`
	Timestamp time.Time         `json:"timestamp"`

	// Populated on ALLOW where the policy produced an entity
	TripID        *int64 `json:"trip_id,omitempty"`
	ReservationID *int64 `json:"reservation_id,omitempty"`
	ReservationNo string `json:"reservation_no,omitempty"`
}

// Allowed reports whether the evaluation ended in ALLOW
func (r *Result) Allowed() bool {
	return r.Decision == DecisionAllow
}

// Explanation renders the trace as display lines
func (r *Result) Explanation() []string {
	return r.Trace.Lines()
}
