package tui

import "errors"

// ErrMissingPlaygroundService is returned when the playground service is not provided.
var ErrMissingPlaygroundService = errors.New("tui: playground service is required")

// ErrMissingQueryService is returned when the query service is not provided.
var ErrMissingQueryService = errors.New("tui: query service is required")

// ErrInvalidPorts is returned when ports validation fails.
var ErrInvalidPorts = errors.New("tui: invalid ports configuration")
