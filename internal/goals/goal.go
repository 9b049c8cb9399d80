package goals

import "time"

type Goal struct {
	ID           int64      `json:"id"`
	UserID       int64      `json:"userId"`
	GoalType     string     `json:"goalType"`
	TargetValue  float64    `json:"targetValue"`
	CurrentValue float64    `json:"currentValue"`
	TargetDate   *time.Time `json:"targetDate,omitempty"`
	Status       GoalStatus `json:"status"`
}

// GoalStatus can be one of:
//   - active
//   - completed
//   - abandoned
type GoalStatus string

const (
	GoalStatusActive    GoalStatus = "active"
	GoalStatusCompleted GoalStatus = "completed"
	GoalStatusAbandoned GoalStatus = "abandoned"
)

func (s GoalStatus) String() string {
	return string(s)
}
