package app

import "errors"

// ErrBuildService is returned when the service cannot be assembled
// from its configuration.
var ErrBuildService = errors.New("failed to build service")
