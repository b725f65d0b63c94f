package run_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/multidom/domainsync/internal/domain/run"
)

func twoStepPlan() *run.Plan {
	return &run.Plan{
		Home: "a.com",
		Steps: []run.Step{
			{Host: "b.com", Code: "code-b"},
			{Host: "c.com", Code: "code-c"},
		},
	}
}

func TestAdvance_StepSequence(t *testing.T) {
	plan := twoStepPlan()

	first := run.Advance(plan, 0)
	assert.Equal(t, run.ActionStep, first.Kind)
	assert.Equal(t, 0, first.Index)
	assert.Equal(t, "b.com", first.Step.Host)

	second := run.Advance(plan, 1)
	assert.Equal(t, run.ActionStep, second.Kind)
	assert.Equal(t, "c.com", second.Step.Host)

	done := run.Advance(plan, 2)
	assert.Equal(t, run.ActionDone, done.Kind)
	assert.Equal(t, 2, done.Index)

	// Indexes past the step count are still terminal.
	assert.Equal(t, run.ActionDone, run.Advance(plan, 99).Kind)
}

func TestAdvance_NegativeIndexClampsToFirstStep(t *testing.T) {
	action := run.Advance(twoStepPlan(), -3)
	assert.Equal(t, run.ActionStep, action.Kind)
	assert.Equal(t, 0, action.Index)
	assert.Equal(t, "b.com", action.Step.Host)
}

func TestAdvance_MalformedPlans(t *testing.T) {
	assert.Equal(t, run.ActionNotFound, run.Advance(nil, 0).Kind)
	assert.Equal(t, run.ActionNotFound, run.Advance(&run.Plan{Home: "a.com"}, 0).Kind)
	assert.Equal(t, run.ActionNotFound, run.Advance(&run.Plan{Steps: []run.Step{{Host: "b.com"}}}, 0).Kind)
}
