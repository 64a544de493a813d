package presence

import "time"

// Observation is a single reported status with its provenance.
type Observation struct {
	Subject    string       `json:"subject"`
	Status     StatusValue  `json:"status"`
	Source     StatusSource `json:"source"`
	ObservedAt time.Time    `json:"observedAt"`
}

// Record is the current presence of one subject.
type Record struct {
	Status      StatusValue  `json:"status"`
	Source      StatusSource `json:"source"`
	SourceLabel string       `json:"sourceLabel"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}

// defaultRecord is returned for subjects that have never been observed.
func defaultRecord() Record {
	return Record{
		Status:      StatusUnknown,
		Source:      SourceNone,
		SourceLabel: SourceNone.Label(),
	}
}
