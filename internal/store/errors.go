package store

import "errors"

var (
	ErrNotFound     = errors.New("store: not found")
	ErrPoolRequired = errors.New("store: pgx pool is required")
)
