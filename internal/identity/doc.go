// Package identity reconciles identity-provider webhooks into the local
// entity store. Each delivery runs as a resumable step sequence keyed by the
// provider event ID (verify, mutate, invalidate cache), so redelivered
// events skip already-completed steps and never mutate twice.
package identity
