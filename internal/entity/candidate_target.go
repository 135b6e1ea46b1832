package entity

// CandidateTarget is a profile URL waiting to be extracted. Identity is the URL
// alone, compared as an exact string.
type CandidateTarget struct {
	URL         string `json:"url"`
	DisplayName string `json:"display_name,omitempty"`
}

func (t CandidateTarget) Key() string { return t.URL }
