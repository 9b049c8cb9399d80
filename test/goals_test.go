package test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/2beens/fitstats/internal/goals"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (s *IntegrationTestSuite) getGoalsRequest(ctx context.Context, userID int64) goals.ListResponse {
	req, err := http.NewRequestWithContext(
		ctx,
		"GET", fmt.Sprintf("%s/goals/user/%d", serverEndpoint, userID),
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

	var listResponse goals.ListResponse
	require.NoError(s.T(), json.Unmarshal(respBytes, &listResponse))

	return listResponse
}

func (s *IntegrationTestSuite) TestGoals_list() {
	ctx := context.Background()

	listResponse := s.getGoalsRequest(ctx, userAliceID)

	// statuses seeded as [active, active, completed]
	assert.Equal(s.T(), 2, listResponse.ActiveCount)
	require.Len(s.T(), listResponse.Goals, 3)

	byType := make(map[string]goals.GoalCard)
	for _, card := range listResponse.Goals {
		byType[card.GoalType] = card
	}

	weightLoss, ok := byType["weight_loss"]
	require.True(s.T(), ok)
	assert.Equal(s.T(), goals.GoalStatusActive, weightLoss.Status)
	require.NotNil(s.T(), weightLoss.TargetDate)
	// current 80 of target 75 - overachieved, raw over 100, clamped at 100
	assert.InDelta(s.T(), 106.6667, weightLoss.ProgressPercent, 0.001)
	assert.Equal(s.T(), 100.0, weightLoss.ProgressPercentClamped)

	workoutsPerWeek, ok := byType["workouts_per_week"]
	require.True(s.T(), ok)
	assert.Nil(s.T(), workoutsPerWeek.TargetDate)
	assert.InDelta(s.T(), 50.0, workoutsPerWeek.ProgressPercent, 0.001)
	assert.Equal(s.T(), 50.0, workoutsPerWeek.ProgressPercentClamped)

	run5k, ok := byType["run_5k"]
	require.True(s.T(), ok)
	assert.Equal(s.T(), goals.GoalStatusCompleted, run5k.Status)
	assert.InDelta(s.T(), 100.0, run5k.ProgressPercent, 0.001)
}

func (s *IntegrationTestSuite) TestGoals_zeroTarget() {
	ctx := context.Background()

	listResponse := s.getGoalsRequest(ctx, userBobID)

	require.Len(s.T(), listResponse.Goals, 1)
	assert.Equal(s.T(), 1, listResponse.ActiveCount)

	// target 0, current 50 - no division by zero, progress just 0
	pushups := listResponse.Goals[0]
	assert.Equal(s.T(), "pushups", pushups.GoalType)
	assert.Zero(s.T(), pushups.ProgressPercent)
	assert.Zero(s.T(), pushups.ProgressPercentClamped)
}

func (s *IntegrationTestSuite) TestGoals_noGoals() {
	ctx := context.Background()

	listResponse := s.getGoalsRequest(ctx, 777)

	require.NotNil(s.T(), listResponse.Goals)
	assert.Empty(s.T(), listResponse.Goals)
	assert.Zero(s.T(), listResponse.ActiveCount)
}
