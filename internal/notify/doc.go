// Package notify consumes digest fan-out events and delivers them as
// emails. Each consumer takes one rate-limiter slot per event, then sends
// through a single memoized step keyed by the event's idempotency key, so a
// redelivered event never double-sends and an exhausted window delays
// delivery instead of dropping it.
package notify
