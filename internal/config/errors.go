package config

import (
	"errors"
)

// Errors returned by Load. Callers branch with errors.Is.
var (
	ErrInvalidConfig = errors.New("invalid config")
	ErrLoadConfig    = errors.New("load config failed")
)
