package usecase

import "errors"

var (
	// ErrInfrastructure means the run could not start because no browser context was available.
	ErrInfrastructure = errors.New("harvest infrastructure unavailable")
	// ErrRunDeadline means the run exceeded its wall-clock ceiling; no report is produced.
	ErrRunDeadline        = errors.New("harvest run exceeded its deadline")
	ErrInvalidConcurrency = errors.New("concurrency must be at least 1")
	ErrRunInProgress      = errors.New("another harvest run is in progress")
)
