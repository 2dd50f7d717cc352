// Package digest plans the daily notification fan-out. Two cron-triggered
// planners load recipients and recent activity, group and filter per
// recipient, and emit one fan-out event per recipient with a non-empty
// result. Event keys derive from the planner run and the recipient, so a
// re-run after a partial emission never double-delivers.
package digest
