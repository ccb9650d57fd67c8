package chronology

// Confidence grades how well a date is sourced.
type Confidence string

const (
	ConfidenceVerified  Confidence = "Verified"
	ConfidenceEstimated Confidence = "Estimated"
	ConfidenceUnknown   Confidence = "Unknown"
)

// DatedEvent is one dated fact about an entity, e.g. a birth or a founding.
type DatedEvent struct {
	DateType   string     `json:"dateType" yaml:"date_type"`
	DateValue  string     `json:"dateValue" yaml:"date_value"`
	Confidence Confidence `json:"confidence,omitempty" yaml:"confidence,omitempty"`
	SourceURL  string     `json:"sourceUrl,omitempty" yaml:"source_url,omitempty"`
}

// EntityChronology groups the dated events of one named entity.
type EntityChronology struct {
	EntityName string       `json:"entityName" yaml:"entity_name"`
	EntityType string       `json:"entityType" yaml:"entity_type"`
	Events     []DatedEvent `json:"events" yaml:"events"`
}

// DayCountRow is one exclusive or inclusive day count between two dates.
// ControlMatchValue and Notes are empty when the row is not a control match.
type DayCountRow struct {
	Comparison        string `json:"comparison" yaml:"comparison"`
	StartDate         string `json:"startDate" yaml:"start_date"`
	EndDate           string `json:"endDate" yaml:"end_date"`
	DayCount          int64  `json:"dayCount" yaml:"day_count"`
	IsInclusive       bool   `json:"isInclusive" yaml:"is_inclusive"`
	DigitSum          int64  `json:"digitSum" yaml:"digit_sum"`
	ZeroDropped       int64  `json:"zeroDropped" yaml:"zero_dropped"`
	IsControlMatch    bool   `json:"isControlMatch" yaml:"is_control_match"`
	ControlMatchValue string `json:"controlMatchValue,omitempty" yaml:"control_match_value,omitempty"`
	Notes             string `json:"notes" yaml:"notes"`
}
