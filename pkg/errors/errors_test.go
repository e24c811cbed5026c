package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/google/go-github/v69/github"
	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name            string
		err             error
		expectedStatus  int
		expectedMessage string
	}{
		{
			name:            "missing token",
			err:             ErrMissingToken,
			expectedStatus:  http.StatusUnauthorized,
			expectedMessage: MissingTokenMessage,
		},
		{
			name:            "wrapped missing token",
			err:             fmt.Errorf("failed to fetch: %w", ErrMissingToken),
			expectedStatus:  http.StatusUnauthorized,
			expectedMessage: MissingTokenMessage,
		},
		{
			name:            "transport error",
			err:             NewGitHubAPIError("failed to get user", nil, assert.AnError),
			expectedStatus:  http.StatusInternalServerError,
			expectedMessage: FetchFailedMessage,
		},
		{
			name:            "data error",
			err:             NewGitHubGraphQLError("failed to query contributions", assert.AnError),
			expectedStatus:  http.StatusInternalServerError,
			expectedMessage: FetchFailedMessage,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expectedStatus, HTTPStatus(tc.err))
			assert.Equal(t, tc.expectedMessage, PublicMessage(tc.err))
		})
	}
}

func TestGitHubAPIError(t *testing.T) {
	resp := &github.Response{Response: &http.Response{StatusCode: http.StatusBadGateway}}
	err := NewGitHubAPIError("failed to list repositories", resp, assert.AnError)

	assert.Contains(t, err.Error(), "failed to list repositories")
	assert.Contains(t, err.Error(), "status 502")
	assert.True(t, errors.Is(err, assert.AnError))

	var apiErr *GitHubAPIError
	assert.True(t, errors.As(fmt.Errorf("outer: %w", err), &apiErr))
	assert.Equal(t, resp, apiErr.Response)
}

func TestGitHubGraphQLError(t *testing.T) {
	err := NewGitHubGraphQLError("failed to query contributions", assert.AnError)

	assert.Equal(t, "failed to query contributions: "+assert.AnError.Error(), err.Error())
	assert.True(t, errors.Is(err, assert.AnError))
}
