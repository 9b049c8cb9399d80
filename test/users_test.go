package test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/2beens/fitstats/internal/users"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (s *IntegrationTestSuite) getUsersRequest(ctx context.Context) []users.User {
	req, err := http.NewRequestWithContext(
		ctx,
		"GET", fmt.Sprintf("%s/users", serverEndpoint),
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

	var allUsers []users.User
	require.NoError(s.T(), json.Unmarshal(respBytes, &allUsers))

	return allUsers
}

func (s *IntegrationTestSuite) TestUsers_list() {
	ctx := context.Background()

	allUsers := s.getUsersRequest(ctx)
	require.Len(s.T(), allUsers, 2)

	// ordered by username
	assert.Equal(s.T(), "alice", allUsers[0].Username)
	assert.Equal(s.T(), "bob", allUsers[1].Username)
	assert.Equal(s.T(), int64(userAliceID), allUsers[0].ID)
	assert.Equal(s.T(), int64(userBobID), allUsers[1].ID)
}

func (s *IntegrationTestSuite) TestUsers_get() {
	ctx := context.Background()

	req, err := http.NewRequestWithContext(
		ctx,
		"GET", fmt.Sprintf("%s/users/%d", serverEndpoint, userAliceID),
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

	var user users.User
	require.NoError(s.T(), json.Unmarshal(respBytes, &user))

	assert.Equal(s.T(), "alice", user.Username)
	assert.Equal(s.T(), "alice@example.com", user.Email)
	assert.Equal(s.T(), 30, user.Age)
	assert.Equal(s.T(), 168.0, user.HeightCm)
}

func (s *IntegrationTestSuite) TestUsers_getUnknown() {
	ctx := context.Background()

	req, err := http.NewRequestWithContext(
		ctx,
		"GET", fmt.Sprintf("%s/users/777", serverEndpoint),
		nil,
	)
	require.NoError(s.T(), err)
	req.Header.Set("User-Agent", "test-agent")

	resp, err := s.httpClient.Do(req)
	require.NoError(s.T(), err)
	defer resp.Body.Close()

	assert.Equal(s.T(), http.StatusNotFound, resp.StatusCode)
}
