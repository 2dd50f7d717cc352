package db

import "errors"

var (
	ErrParseConfig     = errors.New("db: failed to parse connection string")
	ErrOpenConnection  = errors.New("db: failed to open connection")
	ErrSetDialect      = errors.New("db: failed to set migration dialect")
	ErrApplyMigrations = errors.New("db: failed to apply migrations")
)
