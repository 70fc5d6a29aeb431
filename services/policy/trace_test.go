package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTraceEntry_Line(t *testing.T) {
	t.Run("pass with detail", func(t *testing.T) {
		e := TraceEntry{Predicate: "BusAvailable", Passed: true, Detail: "status=AVAILABLE"}
		assert.Equal(t, "PASS BusAvailable: status=AVAILABLE", e.Line())
	})

	t.Run("fail with detail", func(t *testing.T) {
		e := TraceEntry{Predicate: "PaymentFeasible", Passed: false, Detail: "balance=100.00 amount=200.00"}
		assert.Equal(t, "FAIL PaymentFeasible: balance=100.00 amount=200.00", e.Line())
	})

	t.Run("no detail", func(t *testing.T) {
		e := TraceEntry{Predicate: "BusExists", Passed: true}
		assert.Equal(t, "PASS BusExists", e.Line())
	})
}

func TestTrace_Add(t *testing.T) {
	var trace Trace

	assert.True(t, trace.Add("First", true, "ok"))
	assert.False(t, trace.Addf("Second", false, "%d of %d", 5, 5))

	assert.Len(t, trace, 2)
	assert.Equal(t, "5 of 5", trace[1].Detail)
}

func TestTrace_AllPassed(t *testing.T) {
	t.Run("empty trace never passes", func(t *testing.T) {
		var trace Trace
		assert.False(t, trace.AllPassed())
	})

	t.Run("all passing", func(t *testing.T) {
		var trace Trace
		trace.Add("A", true, "")
		trace.Add("B", true, "")
		assert.True(t, trace.AllPassed())
	})

	t.Run("one failure denies", func(t *testing.T) {
		var trace Trace
		trace.Add("A", true, "")
		trace.Add("B", false, "")
		trace.Add("C", true, "")
		assert.False(t, trace.AllPassed())
	})
}

func TestResult_Explanation(t *testing.T) {
	result := &Result{Decision: DecisionDeny}
	result.Trace.Add("A", true, "fine")
	result.Trace.Add("B", false, "broken")

	lines := result.Explanation()
	assert.Equal(t, []string{"PASS A: fine", "FAIL B: broken"}, lines)
	assert.False(t, result.Allowed())
}
