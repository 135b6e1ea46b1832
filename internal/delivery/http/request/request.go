package request

import "github.com/user/profile-harvester/internal/entity"

type HarvestRequest struct {
	Seeds []entity.SeedEntry `json:"seeds"`
	// Concurrency is optional; zero selects the configured default.
	Concurrency int `json:"concurrency,omitempty"`
}

type EnqueueRequest struct {
	Seeds []entity.SeedEntry `json:"seeds"`
}
