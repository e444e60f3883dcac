package agent

// MaxConsecutiveTimeouts is the circuit-breaker threshold. A single timeout
// is plausibly transient and the loop itself is the retry mechanism; two in
// a row indicate a dependency unlikely to heal within the remaining budget.
const MaxConsecutiveTimeouts = 2

// IterationState tracks loop state across iterations of one controller run.
// Always local to the run — never shared between branches.
type IterationState struct {
	CurrentIteration           int
	MaxIterations              int
	LastInteractionFailed      bool
	LastErrorMessage           string
	ConsecutiveTimeoutFailures int
}

// ShouldAbortOnTimeouts returns true if consecutive timeout failures
// have reached the threshold.
func (s *IterationState) ShouldAbortOnTimeouts() bool {
	return s.ConsecutiveTimeoutFailures >= MaxConsecutiveTimeouts
}

// RecordSuccess resets failure tracking after a successful interaction.
func (s *IterationState) RecordSuccess() {
	s.LastInteractionFailed = false
	s.LastErrorMessage = ""
	s.ConsecutiveTimeoutFailures = 0
}

// RecordFailure records a failed interaction. Timeout-classified failures
// increment the consecutive counter; any other failure resets it.
func (s *IterationState) RecordFailure(errMsg string, isTimeout bool) {
	s.LastInteractionFailed = true
	s.LastErrorMessage = errMsg
	if isTimeout {
		s.ConsecutiveTimeoutFailures++
	} else {
		s.ConsecutiveTimeoutFailures = 0
	}
}
