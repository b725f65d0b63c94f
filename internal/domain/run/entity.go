package run

// Step is one per-target hop of a run plan: the host to visit and the
// signed code its receiver consumes.
type Step struct {
	Host string `json:"host"`
	Code string `json:"code"`
}

// Plan is the persisted, TTL-bounded sequence of synchronization steps
// created by one login/logout event. Order follows target enumeration at
// plan-creation time; the first step is the entry point of the chain.
type Plan struct {
	Home  string `json:"home"`
	Steps []Step `json:"steps"`
}

// ActionKind classifies the runner's next move for a given step index.
type ActionKind int

const (
	// ActionStep visits the receiver of Steps[Index].
	ActionStep ActionKind = iota
	// ActionDone means the index reached the step count; the run is
	// complete and should be deleted.
	ActionDone
	// ActionNotFound means the plan is absent, expired or malformed.
	ActionNotFound
)

// NextAction is the outcome of advancing a run to a step index.
type NextAction struct {
	Kind  ActionKind
	Index int
	Step  Step
}

// Advance is the pure transition function of the redirect chain. It never
// touches storage; the caller loads the plan and applies the outcome.
func Advance(p *Plan, index int) NextAction {
	if p == nil || p.Home == "" || len(p.Steps) == 0 {
		return NextAction{Kind: ActionNotFound}
	}
	if index < 0 {
		index = 0
	}
	if index >= len(p.Steps) {
		return NextAction{Kind: ActionDone, Index: index}
	}
	return NextAction{Kind: ActionStep, Index: index, Step: p.Steps[index]}
}
