package workouts

import "time"

type WorkoutSession struct {
	ID             int64     `json:"id"`
	UserID         int64     `json:"userId"`
	ExerciseTypeID int64     `json:"exerciseTypeId"`
	ExerciseName   string    `json:"exerciseName,omitempty"`
	Category       string    `json:"category,omitempty"`
	DurationMin    int       `json:"durationMin"`
	CaloriesBurned int       `json:"caloriesBurned"`
	Intensity      Intensity `json:"intensity"`
	SessionDate    time.Time `json:"sessionDate"`
	Notes          string    `json:"notes,omitempty"`
}

// ExerciseType is a row of the shared, read-only exercise catalog.
type ExerciseType struct {
	ID             int64   `json:"id"`
	Name           string  `json:"name"`
	Category       string  `json:"category"`
	CaloriesPerMin float64 `json:"caloriesPerMin"`
}

// Intensity can be one of:
//   - low
//   - medium
//   - high
type Intensity string

const (
	IntensityLow    Intensity = "low"
	IntensityMedium Intensity = "medium"
	IntensityHigh   Intensity = "high"
)

func (i Intensity) String() string {
	return string(i)
}

func (i Intensity) IsValid() bool {
	switch i {
	case IntensityLow, IntensityMedium, IntensityHigh:
		return true
	default:
		return false
	}
}
