package test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/2beens/fitstats/internal/workouts"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (s *IntegrationTestSuite) newWorkoutRequest(
	ctx context.Context,
	session workouts.WorkoutSession,
) workouts.WorkoutSession {
	sessionJson, err := json.Marshal(session)
	require.NoError(s.T(), err)

	req, err := http.NewRequestWithContext(
		ctx,
		"POST", fmt.Sprintf("%s/workouts", serverEndpoint),
		bytes.NewReader(sessionJson),
	)
	require.NoError(s.T(), err)
	req.Header.Set("User-Agent", "test-agent")
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	require.NoError(s.T(), err)
	require.Equal(s.T(), http.StatusCreated, resp.StatusCode)
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	require.NoError(s.T(), err)

	var addedSession workouts.WorkoutSession
	require.NoError(s.T(), json.Unmarshal(respBytes, &addedSession))

	return addedSession
}

func (s *IntegrationTestSuite) getWorkoutHistory(ctx context.Context, userID int64) []workouts.WorkoutSession {
	req, err := http.NewRequestWithContext(
		ctx,
		"GET", fmt.Sprintf("%s/workouts/user/%d", serverEndpoint, userID),
		nil,
	)
	require.NoError(s.T(), err)
	req.Header.Set("User-Agent", "test-agent")

	resp, err := s.httpClient.Do(req)
	require.NoError(s.T(), err)
	require.Equal(s.T(), http.StatusOK, resp.StatusCode)
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	require.NoError(s.T(), err)

	var history []workouts.WorkoutSession
	require.NoError(s.T(), json.Unmarshal(respBytes, &history))

	return history
}

func (s *IntegrationTestSuite) getWorkoutStats(ctx context.Context, userID int64) workouts.StatsResponse {
	req, err := http.NewRequestWithContext(
		ctx,
		"GET", fmt.Sprintf("%s/workouts/user/%d/stats", serverEndpoint, userID),
		nil,
	)
	require.NoError(s.T(), err)
	req.Header.Set("User-Agent", "test-agent")

	resp, err := s.httpClient.Do(req)
	require.NoError(s.T(), err)
	require.Equal(s.T(), http.StatusOK, resp.StatusCode)
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	require.NoError(s.T(), err)

	var stats workouts.StatsResponse
	require.NoError(s.T(), json.Unmarshal(respBytes, &stats))

	return stats
}

func (s *IntegrationTestSuite) TestWorkouts_exerciseTypes() {
	ctx := context.Background()

	req, err := http.NewRequestWithContext(
		ctx,
		"GET", fmt.Sprintf("%s/exercise-types", serverEndpoint),
		nil,
	)
	require.NoError(s.T(), err)
	req.Header.Set("User-Agent", "test-agent")

	resp, err := s.httpClient.Do(req)
	require.NoError(s.T(), err)
	require.Equal(s.T(), http.StatusOK, resp.StatusCode)
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	require.NoError(s.T(), err)

	var exerciseTypes []workouts.ExerciseType
	require.NoError(s.T(), json.Unmarshal(respBytes, &exerciseTypes))

	// ordered by category, then name
	require.Len(s.T(), exerciseTypes, 4)
	assert.Equal(s.T(), "Running", exerciseTypes[0].Name)
	assert.Equal(s.T(), "Swimming", exerciseTypes[1].Name)
	assert.Equal(s.T(), "Yoga", exerciseTypes[2].Name)
	assert.Equal(s.T(), "Bench Press", exerciseTypes[3].Name)
	assert.Equal(s.T(), 10.0, exerciseTypes[0].CaloriesPerMin)
}

func (s *IntegrationTestSuite) TestWorkouts_addAndHistory() {
	ctx := context.Background()
	s.deleteAllWorkoutSessions(ctx)

	day1 := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	day2 := day1.AddDate(0, 0, 1)

	swim := s.newWorkoutRequest(ctx, workouts.WorkoutSession{
		UserID:         userAliceID,
		ExerciseTypeID: exerciseTypeSwimmingID,
		DurationMin:    45,
		CaloriesBurned: 380,
		Intensity:      workouts.IntensityMedium,
		SessionDate:    day1,
		Notes:          "pool",
	})
	run := s.newWorkoutRequest(ctx, workouts.WorkoutSession{
		UserID:         userAliceID,
		ExerciseTypeID: exerciseTypeRunningID,
		DurationMin:    30,
		CaloriesBurned: 320,
		Intensity:      workouts.IntensityHigh,
		SessionDate:    day2,
	})

	// the insert response carries the joined catalog fields
	assert.Equal(s.T(), "Swimming", swim.ExerciseName)
	assert.Equal(s.T(), "Cardio", swim.Category)
	require.Greater(s.T(), run.ID, int64(0))

	history := s.getWorkoutHistory(ctx, userAliceID)
	require.Len(s.T(), history, 2)

	// newest first
	assert.Equal(s.T(), "Running", history[0].ExerciseName)
	assert.Equal(s.T(), "Swimming", history[1].ExerciseName)
	assert.True(s.T(), history[0].SessionDate.Equal(day2))
	assert.Equal(s.T(), workouts.IntensityHigh, history[0].Intensity)
	assert.Equal(s.T(), "pool", history[1].Notes)

	var runSeen int
	for _, session := range history {
		if session.ID == run.ID {
			runSeen++
		}
	}
	assert.Equal(s.T(), 1, runSeen)
}

func (s *IntegrationTestSuite) TestWorkouts_stats() {
	ctx := context.Background()
	s.deleteAllWorkoutSessions(ctx)

	day1 := time.Date(2026, 7, 6, 0, 0, 0, 0, time.UTC)
	day2 := day1.AddDate(0, 0, 1)

	s.newWorkoutRequest(ctx, workouts.WorkoutSession{
		UserID: userAliceID, ExerciseTypeID: exerciseTypeRunningID,
		DurationMin: 40, CaloriesBurned: 300, Intensity: workouts.IntensityHigh, SessionDate: day1,
	})
	s.newWorkoutRequest(ctx, workouts.WorkoutSession{
		UserID: userAliceID, ExerciseTypeID: exerciseTypeRunningID,
		DurationMin: 30, CaloriesBurned: 200, Intensity: workouts.IntensityMedium, SessionDate: day2,
	})
	s.newWorkoutRequest(ctx, workouts.WorkoutSession{
		UserID: userAliceID, ExerciseTypeID: exerciseTypeSwimmingID,
		DurationMin: 45, CaloriesBurned: 150, Intensity: workouts.IntensityLow, SessionDate: day1,
	})

	stats := s.getWorkoutStats(ctx, userAliceID)

	assert.Equal(s.T(), 3, stats.TotalWorkouts)
	assert.Equal(s.T(), 650, stats.TotalCaloriesBurned)
	assert.Equal(s.T(), 115, stats.TotalDurationMin)

	// ascending by summed calories
	require.Len(s.T(), stats.CaloriesByExercise, 2)
	assert.Equal(s.T(), workouts.ExerciseCalories{Exercise: "Swimming", Calories: 150}, stats.CaloriesByExercise[0])
	assert.Equal(s.T(), workouts.ExerciseCalories{Exercise: "Running", Calories: 500}, stats.CaloriesByExercise[1])

	require.Len(s.T(), stats.DurationByDay, 2)
	assert.True(s.T(), stats.DurationByDay[0].Day.Equal(day1))
	assert.Equal(s.T(), 85, stats.DurationByDay[0].Minutes)
	assert.Equal(s.T(), 30, stats.DurationByDay[1].Minutes)

	assert.Equal(s.T(), map[string]int{"Cardio": 3}, stats.WorkoutsByCategory)
	assert.Equal(s.T(), map[workouts.Intensity]int{
		workouts.IntensityLow:    1,
		workouts.IntensityMedium: 1,
		workouts.IntensityHigh:   1,
	}, stats.IntensityDistribution)
}

func (s *IntegrationTestSuite) TestWorkouts_noData() {
	ctx := context.Background()
	s.deleteAllWorkoutSessions(ctx)

	stats := s.getWorkoutStats(ctx, userBobID)
	assert.Zero(s.T(), stats.TotalWorkouts)
	assert.Zero(s.T(), stats.TotalCaloriesBurned)
	assert.Empty(s.T(), stats.CaloriesByExercise)
	assert.Empty(s.T(), stats.DurationByDay)
}

func (s *IntegrationTestSuite) TestWorkouts_invalidSession() {
	ctx := context.Background()

	for name, session := range map[string]workouts.WorkoutSession{
		"non-positive duration": {
			UserID: userAliceID, ExerciseTypeID: exerciseTypeRunningID,
			DurationMin: 0, Intensity: workouts.IntensityLow,
		},
		"negative calories": {
			UserID: userAliceID, ExerciseTypeID: exerciseTypeRunningID,
			DurationMin: 30, CaloriesBurned: -10, Intensity: workouts.IntensityLow,
		},
		"invalid intensity": {
			UserID: userAliceID, ExerciseTypeID: exerciseTypeRunningID,
			DurationMin: 30, Intensity: "extreme",
		},
		"unknown exercise type": {
			UserID: userAliceID, ExerciseTypeID: 777,
			DurationMin: 30, Intensity: workouts.IntensityLow,
		},
	} {
		sessionJson, err := json.Marshal(session)
		require.NoError(s.T(), err)

		req, err := http.NewRequestWithContext(
			ctx,
			"POST", fmt.Sprintf("%s/workouts", serverEndpoint),
			bytes.NewReader(sessionJson),
		)
		require.NoError(s.T(), err)
		req.Header.Set("User-Agent", "test-agent")
		req.Header.Set("Content-Type", "application/json")

		resp, err := s.httpClient.Do(req)
		require.NoError(s.T(), err)
		assert.Equal(s.T(), http.StatusBadRequest, resp.StatusCode, name)
		require.NoError(s.T(), resp.Body.Close())
	}
}
