// Package settings holds the notification preference actions. Callers are
// resolved outside this package; an action invoked without a resolved user
// or organization fails with a PermissionError, which is a structured
// refusal, not a system fault, and is never retried.
package settings
