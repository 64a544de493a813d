package presence

import "fmt"

// StatusValue is the reported availability of a faculty member.
type StatusValue string

const (
	StatusAvailable       StatusValue = "available"
	StatusBusy            StatusValue = "busy"
	StatusInClass         StatusValue = "in_class"
	StatusLikelyAvailable StatusValue = "likely_available"
	StatusUnknown         StatusValue = "unknown"
)

// ParseStatus validates a wire-level status string.
func ParseStatus(s string) (StatusValue, error) {
	switch StatusValue(s) {
	case StatusAvailable, StatusBusy, StatusInClass, StatusLikelyAvailable, StatusUnknown:
		return StatusValue(s), nil
	}
	return "", fmt.Errorf("unknown status value %q", s)
}

// StatusSource identifies where a status observation came from.
type StatusSource string

const (
	SourceStudentVerified StatusSource = "student_verified"
	SourceManual          StatusSource = "manual"
	SourceTimetable       StatusSource = "timetable"
	SourceCalendar        StatusSource = "calendar"
	SourceAIPrediction    StatusSource = "ai_prediction"
	SourceNone            StatusSource = ""
)

// sourceRanks orders sources by authority; a lower rank is more
// authoritative. Used only to break exact-timestamp ties, never to veto
// a strictly fresher observation.
var sourceRanks = map[StatusSource]int{
	SourceStudentVerified: 1,
	SourceManual:          2,
	SourceTimetable:       3,
	SourceCalendar:        4,
	SourceAIPrediction:    5,
}

// sourceLabels are the display strings shown next to a status badge.
var sourceLabels = map[StatusSource]string{
	SourceStudentVerified: "Verified by peers",
	SourceManual:          "Set by faculty",
	SourceTimetable:       "Synced via timetable",
	SourceCalendar:        "Synced via calendar",
	SourceAIPrediction:    "Predicted",
}

// ParseSource validates a wire-level source string.
func ParseSource(s string) (StatusSource, error) {
	src := StatusSource(s)
	if _, ok := sourceRanks[src]; !ok {
		return "", fmt.Errorf("unknown status source %q", s)
	}
	return src, nil
}

// Rank returns the authority rank of the source. Sources outside the
// known set (including the empty source of a default record) rank below
// every real source.
func (s StatusSource) Rank() int {
	if r, ok := sourceRanks[s]; ok {
		return r
	}
	return len(sourceRanks) + 1
}

// Label returns the human-readable provenance label for the source.
func (s StatusSource) Label() string {
	if l, ok := sourceLabels[s]; ok {
		return l
	}
	return "No source"
}
