package types

import "fmt"

// Outcome is the binary launch result recorded in the dataset's class column.
type Outcome int

const (
	Failure Outcome = 0
	Success Outcome = 1
)

// ParseOutcome converts a numeric class value to an Outcome.
func ParseOutcome(v float64) (Outcome, error) {
	switch v {
	case 0:
		return Failure, nil
	case 1:
		return Success, nil
	default:
		return Failure, fmt.Errorf("outcome class %v: want 0 or 1", v)
	}
}

func (o Outcome) String() string {
	if o == Success {
		return "success"
	}
	return "failure"
}

// Record is one launch attempt.
type Record struct {
	LaunchSite      string  `json:"launch_site"`
	PayloadMassKg   float64 `json:"payload_mass_kg"`
	Outcome         Outcome `json:"class"`
	BoosterCategory string  `json:"booster_version_category"`
}
