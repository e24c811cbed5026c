// Package errors holds the failure taxonomy of the GitHub aggregation and maps
// it onto the status codes the HTTP route answers with.
package errors

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/google/go-github/v69/github"
)

// Messages returned to callers. Only the missing credential gets its own.
const (
	MissingTokenMessage = "GitHub token is required for fetching contribution data"
	FetchFailedMessage  = "Failed to fetch GitHub data"
)

// ErrMissingToken is returned before any network call when no credential is
// configured.
var ErrMissingToken = errors.New(MissingTokenMessage)

// GitHubAPIError is a transport failure: the upstream call did not complete
// or answered with a non-success status.
type GitHubAPIError struct {
	Message  string           `json:"message"`
	Response *github.Response `json:"-"`
	Err      error            `json:"-"`
}

// NewGitHubAPIError wraps a failed REST or GraphQL transport call.
func NewGitHubAPIError(message string, resp *github.Response, err error) *GitHubAPIError {
	return &GitHubAPIError{
		Message:  message,
		Response: resp,
		Err:      err,
	}
}

func (e *GitHubAPIError) Error() string {
	if e.Response != nil && e.Response.Response != nil {
		return fmt.Sprintf("%s (status %d): %v", e.Message, e.Response.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *GitHubAPIError) Unwrap() error {
	return e.Err
}

// GitHubGraphQLError is a data failure: the transport succeeded but the
// GraphQL payload carried an error list.
type GitHubGraphQLError struct {
	Message string `json:"message"`
	Err     error  `json:"-"`
}

// NewGitHubGraphQLError wraps an error list reported inside a GraphQL response.
func NewGitHubGraphQLError(message string, err error) *GitHubGraphQLError {
	return &GitHubGraphQLError{
		Message: message,
		Err:     err,
	}
}

func (e *GitHubGraphQLError) Error() string {
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *GitHubGraphQLError) Unwrap() error {
	return e.Err
}

// HTTPStatus returns the status code the route answers with for err.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrMissingToken):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// PublicMessage returns the only detail exposed to callers for err.
func PublicMessage(err error) string {
	if errors.Is(err, ErrMissingToken) {
		return MissingTokenMessage
	}
	return FetchFailedMessage
}
