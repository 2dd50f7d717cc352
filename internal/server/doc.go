// Package server exposes the HTTP surface: webhook ingress, which validates
// the envelope and hands the delivery to the queue with a deduplicating
// key, and readiness probes. Signature verification happens in the
// reconciliation job, not here; ingress only acks receipt.
package server
