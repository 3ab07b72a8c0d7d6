package retry

import (
	"github.com/cenkalti/backoff/v4"
)

// NewExponentialBackoff builds the backoff schedule for a policy. A zero
// MaxElapsedTime means attempts are bounded only by MaxAttempts.
func NewExponentialBackoff(policy Policy) backoff.BackOff {
	exp := backoff.NewExponentialBackOff()
	if policy.InitialInterval > 0 {
		exp.InitialInterval = policy.InitialInterval
	}
	if policy.MaxInterval > 0 {
		exp.MaxInterval = policy.MaxInterval
	}
	if policy.Multiplier > 0 {
		exp.Multiplier = policy.Multiplier
	}
	exp.MaxElapsedTime = policy.MaxElapsedTime
	exp.Reset()
	return exp
}
