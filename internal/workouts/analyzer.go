package workouts

import (
	"sort"
	"time"
)

// ExerciseCalories is one bar of the calories-per-exercise chart.
type ExerciseCalories struct {
	Exercise string `json:"exercise"`
	Calories int    `json:"calories"`
}

// DayDuration is one bar of the minutes-per-day chart.
type DayDuration struct {
	Day     time.Time `json:"day"`
	Minutes int       `json:"minutes"`
}

// Analyzer turns a loaded workout history into the summary values and
// chart-ready series of the workout log screen. All methods are pure
// and reentrant - no storage access, no shared state.
type Analyzer struct{}

func NewAnalyzer() *Analyzer {
	return &Analyzer{}
}

func (a *Analyzer) TotalWorkouts(sessions []WorkoutSession) int {
	return len(sessions)
}

func (a *Analyzer) TotalCaloriesBurned(sessions []WorkoutSession) int {
	var total int
	for _, s := range sessions {
		total += s.CaloriesBurned
	}
	return total
}

// TotalDuration returns the summed duration of all sessions, in minutes.
func (a *Analyzer) TotalDuration(sessions []WorkoutSession) int {
	var total int
	for _, s := range sessions {
		total += s.DurationMin
	}
	return total
}

// WorkoutsByCategory counts sessions per exercise category (pie chart).
func (a *Analyzer) WorkoutsByCategory(sessions []WorkoutSession) map[string]int {
	category2count := make(map[string]int)
	for _, s := range sessions {
		category2count[s.Category]++
	}
	return category2count
}

// CaloriesByExercise sums burned calories per exercise, ordered ascending
// by the sum so the horizontal bar chart grows downwards. Ties are broken
// by exercise name to keep the output deterministic.
func (a *Analyzer) CaloriesByExercise(sessions []WorkoutSession) []ExerciseCalories {
	exercise2calories := make(map[string]int)
	for _, s := range sessions {
		exercise2calories[s.ExerciseName] += s.CaloriesBurned
	}

	bars := make([]ExerciseCalories, 0, len(exercise2calories))
	for exercise, calories := range exercise2calories {
		bars = append(bars, ExerciseCalories{
			Exercise: exercise,
			Calories: calories,
		})
	}

	sort.Slice(bars, func(i, j int) bool {
		if bars[i].Calories == bars[j].Calories {
			return bars[i].Exercise < bars[j].Exercise
		}
		return bars[i].Calories < bars[j].Calories
	})

	return bars
}

// DurationByDay sums workout minutes per day, ordered ascending by day.
func (a *Analyzer) DurationByDay(sessions []WorkoutSession) []DayDuration {
	day2minutes := make(map[time.Time]int)
	for _, s := range sessions {
		day := s.SessionDate.Truncate(24 * time.Hour)
		day2minutes[day] += s.DurationMin
	}

	days := make([]DayDuration, 0, len(day2minutes))
	for day, minutes := range day2minutes {
		days = append(days, DayDuration{
			Day:     day,
			Minutes: minutes,
		})
	}

	sort.Slice(days, func(i, j int) bool {
		return days[i].Day.Before(days[j].Day)
	})

	return days
}

// IntensityDistribution counts sessions per intensity level.
func (a *Analyzer) IntensityDistribution(sessions []WorkoutSession) map[Intensity]int {
	intensity2count := make(map[Intensity]int)
	for _, s := range sessions {
		intensity2count[s.Intensity]++
	}
	return intensity2count
}
