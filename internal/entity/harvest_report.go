package entity

import "time"

type SuccessEntry struct {
	URL         string           `json:"url"`
	Name        string           `json:"name"`
	DisplayName string           `json:"display_name,omitempty"`
	Record      *ExtractedRecord `json:"-"`
}

type DiscoveryStats struct {
	Searches         int `json:"searches"`
	FailedSearches   int `json:"failed_searches"`
	Pages            int `json:"pages"`
	FailedPages      int `json:"failed_pages"`
	DegradedSearches int `json:"degraded_searches"`
	Candidates       int `json:"candidates"`
	UniqueTargets    int `json:"unique_targets"`
}

// HarvestReport summarizes one run. Successes and Failures keep the order of the
// deduplicated target list, and together always account for Total.
type HarvestReport struct {
	RunID      string          `json:"run_id"`
	StartedAt  time.Time       `json:"started_at"`
	FinishedAt time.Time       `json:"finished_at"`
	Total      int             `json:"total"`
	Succeeded  int             `json:"successes"`
	Failed     int             `json:"failures"`
	Successes  []SuccessEntry  `json:"success_results"`
	Failures   []TargetFailure `json:"failure_results"`
	Discovery  DiscoveryStats  `json:"discovery"`
}

// NewHarvestReport partitions outcomes into successes and failures.
func NewHarvestReport(runID string, outcomes []TaskOutcome, discovery DiscoveryStats) *HarvestReport {
	r := &HarvestReport{
		RunID:     runID,
		Total:     len(outcomes),
		Successes: []SuccessEntry{},
		Failures:  []TargetFailure{},
		Discovery: discovery,
	}
	for _, o := range outcomes {
		if o.OK() {
			r.Successes = append(r.Successes, SuccessEntry{
				URL:         o.Target.URL,
				Name:        o.Record.Name,
				DisplayName: o.Target.DisplayName,
				Record:      o.Record,
			})
			continue
		}
		f := TargetFailure{URL: o.Target.URL, Reason: ReasonParseFailed}
		if o.Failure != nil {
			f = *o.Failure
		}
		r.Failures = append(r.Failures, f)
	}
	r.Succeeded = len(r.Successes)
	r.Failed = len(r.Failures)
	return r
}

// Records returns the extracted records of every success, in report order.
func (r *HarvestReport) Records() []*ExtractedRecord {
	records := make([]*ExtractedRecord, 0, len(r.Successes))
	for _, s := range r.Successes {
		if s.Record != nil {
			records = append(records, s.Record)
		}
	}
	return records
}
