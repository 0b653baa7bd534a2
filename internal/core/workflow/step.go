package workflow

// Step is the position of a cashier session inside the transaction workflow.
type Step string

const (
	StepSelectingMethod  Step = "selecting_method"
	StepCollectingFields Step = "collecting_fields"
	StepConfirming       Step = "confirming"
	StepSubmitting       Step = "submitting"
	StepSucceeded        Step = "succeeded"
	StepFailed           Step = "failed"
	StepClosed           Step = "closed"
)

// allowedTransitions defines the legal moves. The key is the current step,
// the value the set of steps reachable from it. Submitting deliberately has
// no user-driven exits: only the in-flight call's resolution leaves it.
var allowedTransitions = map[Step][]Step{
	StepSelectingMethod:  {StepCollectingFields, StepClosed},
	StepCollectingFields: {StepConfirming, StepClosed},
	StepConfirming:       {StepCollectingFields, StepSubmitting, StepClosed},
	StepSubmitting:       {StepSucceeded, StepFailed},
	StepSucceeded:        {StepClosed},
	StepFailed:           {StepCollectingFields, StepClosed},
	StepClosed:           {},
}

func canTransition(from, to Step) bool {
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Terminal reports whether the only move left is closing the session.
func (s Step) Terminal() bool {
	return s == StepSucceeded || s == StepFailed || s == StepClosed
}
