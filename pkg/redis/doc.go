// Package redis provides connection plumbing for Redis: URL-based client
// construction with startup retry, a ping healthcheck, and a shutdown hook.
package redis
