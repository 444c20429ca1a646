package config

import (
	"errors"
	"strings"
)

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	ErrInvalidConfig = errors.New("invalid config")
	ErrLoadConfig    = errors.New("load config failed")
	ErrMissingConfig = errors.New("missing required config")
)

// MissingError lists every required setting that was not provided, by env
// var name.
type MissingError struct {
	Keys []string
}

func (e *MissingError) Error() string {
	return "missing required environment variables: " + strings.Join(e.Keys, ", ")
}

// Is reports ErrMissingConfig so callers can match without a type assertion.
func (e *MissingError) Is(target error) bool {
	return target == ErrMissingConfig
}
