package response

import "github.com/user/profile-harvester/internal/entity"

// HarvestResponse is the run report plus what the Sink accepted.
type HarvestResponse struct {
	*entity.HarvestReport
	Stored        int `json:"stored"`
	StoreFailures int `json:"store_failures"`
}

type EnqueueResponse struct {
	Status   string `json:"status"`
	Enqueued int    `json:"enqueued"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
