// Package throttle provides fixed-window rate limiting for background job
// execution. Each job type takes from its own window; when the window's
// capacity is exhausted, Take returns a RetryAfterError carrying the time
// until the window rolls over, so the caller's scheduling layer can delay
// the execution instead of dropping it.
//
// Two backends are provided: Memory for single-process setups and tests,
// and Redis for limits shared across processes. Both update the counter
// with an atomic check-and-increment.
package throttle
