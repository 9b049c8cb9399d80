package test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/2beens/fitstats/internal/weights"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (s *IntegrationTestSuite) newWeightRequest(
	ctx context.Context,
	record weights.WeightRecord,
) weights.WeightRecord {
	recordJson, err := json.Marshal(record)
	require.NoError(s.T(), err)

	req, err := http.NewRequestWithContext(
		ctx,
		"POST", fmt.Sprintf("%s/weights", serverEndpoint),
		bytes.NewReader(recordJson),
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

	var addedRecord weights.WeightRecord
	require.NoError(s.T(), json.Unmarshal(respBytes, &addedRecord))

	return addedRecord
}

func (s *IntegrationTestSuite) getWeightHistory(ctx context.Context, userID int64) []weights.WeightRecord {
	req, err := http.NewRequestWithContext(
		ctx,
		"GET", fmt.Sprintf("%s/weights/user/%d", serverEndpoint, userID),
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

	var history []weights.WeightRecord
	require.NoError(s.T(), json.Unmarshal(respBytes, &history))

	return history
}

func (s *IntegrationTestSuite) getWeightStats(ctx context.Context, userID int64) weights.StatsResponse {
	req, err := http.NewRequestWithContext(
		ctx,
		"GET", fmt.Sprintf("%s/weights/user/%d/stats", serverEndpoint, userID),
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

	var stats weights.StatsResponse
	require.NoError(s.T(), json.Unmarshal(respBytes, &stats))

	return stats
}

func (s *IntegrationTestSuite) TestWeights_addAndHistory() {
	ctx := context.Background()
	s.deleteAllWeightRecords(ctx)

	day1 := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	day2 := day1.AddDate(0, 0, 2)
	day3 := day1.AddDate(0, 0, 5)

	// add out of date order on purpose
	s.newWeightRequest(ctx, weights.WeightRecord{
		UserID: userAliceID, WeightKg: 81.3, RecordedAt: day3, Notes: "after vacation",
	})
	s.newWeightRequest(ctx, weights.WeightRecord{
		UserID: userAliceID, WeightKg: 82.5, RecordedAt: day1,
	})
	added := s.newWeightRequest(ctx, weights.WeightRecord{
		UserID: userAliceID, WeightKg: 82.0, RecordedAt: day2,
	})
	require.Greater(s.T(), added.ID, int64(0))

	history := s.getWeightHistory(ctx, userAliceID)
	require.Len(s.T(), history, 3)

	// ascending by recorded date, the day2 record lands in the middle
	assert.Equal(s.T(), 82.5, history[0].WeightKg)
	assert.Equal(s.T(), 82.0, history[1].WeightKg)
	assert.Equal(s.T(), 81.3, history[2].WeightKg)
	assert.True(s.T(), history[0].RecordedAt.Equal(day1))
	assert.True(s.T(), history[1].RecordedAt.Equal(day2))
	assert.True(s.T(), history[2].RecordedAt.Equal(day3))
	assert.Equal(s.T(), "after vacation", history[2].Notes)

	// the added record shows up exactly once
	var addedSeen int
	for _, r := range history {
		if r.ID == added.ID {
			addedSeen++
		}
	}
	assert.Equal(s.T(), 1, addedSeen)
}

func (s *IntegrationTestSuite) TestWeights_stats() {
	ctx := context.Background()
	s.deleteAllWeightRecords(ctx)

	day1 := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	day2 := day1.AddDate(0, 0, 1)

	s.newWeightRequest(ctx, weights.WeightRecord{
		UserID: userAliceID, WeightKg: 70.0, RecordedAt: day1,
	})
	s.newWeightRequest(ctx, weights.WeightRecord{
		UserID: userAliceID, WeightKg: 68.5, RecordedAt: day2,
	})

	stats := s.getWeightStats(ctx, userAliceID)
	require.True(s.T(), stats.HasData)
	require.NotNil(s.T(), stats.Latest)
	assert.Equal(s.T(), 68.5, stats.Latest.WeightKg)
	assert.Equal(s.T(), 68.5, stats.MinKg)
	assert.Equal(s.T(), 70.0, stats.MaxKg)
	assert.InDelta(s.T(), -1.5, stats.NetChangeKg, 0.0001)
	require.Len(s.T(), stats.Trend, 2)
	assert.Equal(s.T(), 70.0, stats.Trend[0].WeightKg)
}

func (s *IntegrationTestSuite) TestWeights_noData() {
	ctx := context.Background()
	s.deleteAllWeightRecords(ctx)

	history := s.getWeightHistory(ctx, userBobID)
	require.NotNil(s.T(), history)
	assert.Empty(s.T(), history)

	stats := s.getWeightStats(ctx, userBobID)
	assert.False(s.T(), stats.HasData)
	assert.Nil(s.T(), stats.Latest)
	assert.Zero(s.T(), stats.NetChangeKg)
	assert.Empty(s.T(), stats.Trend)
}

func (s *IntegrationTestSuite) TestWeights_invalidRecord() {
	ctx := context.Background()

	for name, record := range map[string]weights.WeightRecord{
		"non-positive weight": {UserID: userAliceID, WeightKg: 0},
		"missing user":        {WeightKg: 80.0},
		"unknown user":        {UserID: 777, WeightKg: 80.0},
	} {
		recordJson, err := json.Marshal(record)
		require.NoError(s.T(), err)

		req, err := http.NewRequestWithContext(
			ctx,
			"POST", fmt.Sprintf("%s/weights", serverEndpoint),
			bytes.NewReader(recordJson),
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
