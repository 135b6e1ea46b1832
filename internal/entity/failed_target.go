package entity

import "time"

// FailedTarget mirrors the `failed_targets` PostgreSQL table schema.
type FailedTarget struct {
	ID                   int64
	URL                  string
	FailureReason        string
	ErrorMessage         string
	LastAttemptTimestamp time.Time
	AttemptCount         int
}
