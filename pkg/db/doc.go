// Package db provides PostgreSQL plumbing: pgx pool connection with retry,
// goose migrations from an embedded filesystem, and a transaction helper.
package db
