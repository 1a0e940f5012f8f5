package pipeline

import "time"

// Outcome classifies how a stage attempt ended.
type Outcome int

const (
	OutcomeSuccess Outcome = iota
	OutcomeRetry
	OutcomeTerminal
)

// Decision is the value a stage returns to the worker runtime instead of
// signalling retries through errors. OutcomeSuccess covers both completed
// work and the documented no-op skips.
type Decision struct {
	Outcome Outcome
	Delay   time.Duration
	Err     error
}

// Success reports a completed attempt or a deliberate no-op.
func Success() Decision {
	return Decision{Outcome: OutcomeSuccess}
}

// RetryAfter asks the runtime to re-deliver the job after the delay.
func RetryAfter(delay time.Duration) Decision {
	return Decision{Outcome: OutcomeRetry, Delay: delay}
}

// TerminalFailure reports an exhausted attempt budget. The stage has
// already written the terminal status before returning this.
func TerminalFailure(err error) Decision {
	return Decision{Outcome: OutcomeTerminal, Err: err}
}

// RetryPolicy bounds a stage's attempts. Delay is fixed between attempts.
type RetryPolicy struct {
	MaxAttempts int
	Delay       time.Duration
}

// Exhausted reports whether the given attempt is the last one allowed.
func (p RetryPolicy) Exhausted(attempt int) bool {
	return attempt >= p.MaxAttempts
}
