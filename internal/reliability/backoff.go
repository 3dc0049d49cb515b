// Package reliability holds the deterministic delay policies shared by the
// synthesis retry controller.
package reliability

import "time"

// rateLimitFloor is the minimum cool-down after a rate-limit response.
// Rate limits need multi-second recovery regardless of attempt count, so
// they get a higher floor than generic transient failures.
const rateLimitFloor = 2 * time.Second

// TransientBackoff returns factor * 2^attempt seconds, the delay before
// retrying a generic transient failure. No floor is applied.
func TransientBackoff(attempt int, factor float64) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	if factor <= 0 {
		factor = 1
	}
	return time.Duration(factor * float64(uint64(1)<<uint(attempt)) * float64(time.Second))
}

// RateLimitBackoff returns the delay before retrying after a rate-limit
// response with no provider-supplied wait hint: the transient formula with
// a two-second floor.
func RateLimitBackoff(attempt int, factor float64) time.Duration {
	d := TransientBackoff(attempt, factor)
	if d < rateLimitFloor {
		return rateLimitFloor
	}
	return d
}
