package entity

import "time"

const (
	StatusHarvested = "harvested"
	StatusFailed    = "failed"
	StatusPending   = "pending"
	StatusNotFound  = "not_found"
)

// TargetStatus is what is known about one profile URL across runs.
type TargetStatus struct {
	URL           string     `json:"url"`
	CurrentStatus string     `json:"current_status"` // "harvested", "failed", "pending", "not_found"
	ScrapedAt     *time.Time `json:"scraped_at,omitempty"`
	FailureReason string     `json:"failure_reason,omitempty"`
	AttemptCount  int        `json:"attempt_count,omitempty"`
}
