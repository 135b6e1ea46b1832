package entity

// Failure reasons reported per target.
const (
	ReasonTimeout          = "timeout"
	ReasonNavigationFailed = "navigation_failed"
	ReasonHTTPError        = "http_error"
	ReasonParseFailed      = "parse_failed"
	ReasonMissingName      = "missing_name"
	ReasonCanceled         = "canceled"
)

type TargetFailure struct {
	URL    string `json:"url"`
	Reason string `json:"reason"`
	Error  string `json:"error,omitempty"`
}

// TaskOutcome is the result of extracting one target: exactly one of Record and
// Failure is set.
type TaskOutcome struct {
	Target  CandidateTarget
	Record  *ExtractedRecord
	Failure *TargetFailure
}

func Succeeded(target CandidateTarget, record *ExtractedRecord) TaskOutcome {
	return TaskOutcome{Target: target, Record: record}
}

func Failed(target CandidateTarget, reason string, err error) TaskOutcome {
	f := &TargetFailure{URL: target.URL, Reason: reason}
	if err != nil {
		f.Error = err.Error()
	}
	return TaskOutcome{Target: target, Failure: f}
}

func (o TaskOutcome) OK() bool { return o.Failure == nil && o.Record != nil }
