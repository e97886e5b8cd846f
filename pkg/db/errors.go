package db

import "errors"

var (
	ErrInvalidConfig     = errors.New("db: invalid connection config")
	ErrConnectionFailed  = errors.New("db: connection failed")
	ErrHealthcheckFailed = errors.New("db: healthcheck failed")
	ErrMigrationDialect  = errors.New("db: failed to set migration dialect")
	ErrMigrationFailed   = errors.New("db: failed to apply migrations")
)
