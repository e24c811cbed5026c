package github

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/google/go-github/v69/github"
	"github.com/migueleliasweb/go-github-mock/src/mock"
	ghErrors "github.com/ronit-raj9/portfolio-server/pkg/errors"
	"github.com/ronit-raj9/portfolio-server/pkg/profiler"
	"github.com/shurcooL/githubv4"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, time.June, 15, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

var mockUser = &github.User{
	Login:       github.Ptr("octocat"),
	Name:        github.Ptr("The Octocat"),
	AvatarURL:   github.Ptr("https://avatars.githubusercontent.com/u/583231"),
	HTMLURL:     github.Ptr("https://github.com/octocat"),
	Bio:         github.Ptr("Mascot"),
	Followers:   github.Ptr(20),
	Following:   github.Ptr(3),
	PublicRepos: github.Ptr(4),
	CreatedAt:   &github.Timestamp{Time: time.Date(2021, time.March, 2, 10, 0, 0, 0, time.UTC)},
}

var mockRepos = []*github.Repository{
	repo("portfolio", 10, "TypeScript", 400, false),
	repo("dotfiles", 50, "Shell", 100, false),
	repo("forked", 5, "Go", 5000, true),
	repo("notes", 0, "", 10, false),
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

// restClientFn returns a GetClientFn bound to mocked and counting how often it
// is asked for a client.
func restClientFn(mocked *http.Client, calls *int) GetClientFn {
	return func(_ context.Context) (*github.Client, error) {
		*calls++
		return github.NewClient(mocked), nil
	}
}

func gqlClientFn(client *githubv4.Client, calls *int) GetGQLClientFn {
	return func(_ context.Context) (*githubv4.Client, error) {
		*calls++
		return client, nil
	}
}

func newTestAggregator(token string, rest *http.Client, gql *githubv4.Client, restCalls, gqlCalls *int) *Aggregator {
	return NewAggregator(token, "octocat",
		restClientFn(rest, restCalls),
		gqlClientFn(gql, gqlCalls),
		WithLogger(quietLogger()),
		WithProfiler(profiler.New(quietLogger(), true)),
		WithClock(fixedClock),
	)
}

func Test_Aggregator_Fetch(t *testing.T) {
	rest := mock.NewMockedHTTPClient(
		mock.WithRequestMatch(mock.GetUsersByUsername, mockUser),
		mock.WithRequestMatch(mock.GetUsersReposByUsername, mockRepos),
	)
	gql, seen := newGraphQLServer(t, mockResponse(t, http.StatusOK, contributionsFixture()))

	var restCalls, gqlCalls int
	stats, err := newTestAggregator("ghp_test", rest, gql, &restCalls, &gqlCalls).Fetch(context.Background(), 2024)
	require.NoError(t, err)
	require.NotNil(t, stats)

	assert.Equal(t, 1, restCalls)
	assert.Equal(t, 1, gqlCalls)
	require.Len(t, *seen, 1)

	assert.True(t, stats.Profile.CreatedAt.Equal(time.Date(2021, time.March, 2, 10, 0, 0, 0, time.UTC)))
	assert.Equal(t, ProfileSummary{
		Name:        "The Octocat",
		AvatarURL:   "https://avatars.githubusercontent.com/u/583231",
		Followers:   20,
		Following:   3,
		PublicRepos: 4,
		TotalStars:  65,
		URL:         "https://github.com/octocat",
		Bio:         "Mascot",
		CreatedAt:   stats.Profile.CreatedAt,
	}, stats.Profile)

	assert.Equal(t, []int{2024, 2023, 2022, 2021}, stats.AvailableYears)
	assert.Equal(t, 2024, stats.SelectedYear)
	assert.Equal(t, 4, stats.Repos)

	require.Len(t, stats.TopRepositories, 4)
	assert.Equal(t, "dotfiles", stats.TopRepositories[0].Name)
	assert.Equal(t, "portfolio", stats.TopRepositories[1].Name)

	require.Len(t, stats.Languages, 2)
	assert.Equal(t, "TypeScript", stats.Languages[0].Name)
	assert.Equal(t, 80, stats.Languages[0].Percentage)
	assert.Equal(t, "Shell", stats.Languages[1].Name)
	assert.Equal(t, 20, stats.Languages[1].Percentage)

	assert.Equal(t, ContributionTotals{Total: 32, Code: 20, Issues: 3, PRs: 6}, stats.Contributions)
	assert.Len(t, stats.ContributionCalendar.Days, 8)
	assert.Equal(t, map[string]int{"2024-01": 12, "2024-02": 20}, stats.ContributionsByMonth)
	assert.Equal(t, []RepositoryCommits{
		{Name: "dotfiles", CommitCount: 30},
		{Name: "portfolio", CommitCount: 12},
	}, stats.RepositoryCommits)
	assert.Equal(t, fixedNow, stats.LastUpdated)

	b, err := json.Marshal(stats)
	require.NoError(t, err)
	var payload map[string]any
	require.NoError(t, json.Unmarshal(b, &payload))
	for _, key := range []string{
		"profile", "availableYears", "selectedYear", "repos", "topRepositories",
		"languages", "contributions", "contributionCalendar", "contributionsByMonth",
		"repositoryCommits", "lastUpdated",
	} {
		assert.Contains(t, payload, key)
	}
}

func Test_Aggregator_Fetch_DefaultsToCurrentYear(t *testing.T) {
	rest := mock.NewMockedHTTPClient(
		mock.WithRequestMatch(mock.GetUsersByUsername, mockUser),
		mock.WithRequestMatch(mock.GetUsersReposByUsername, mockRepos),
	)
	gql, seen := newGraphQLServer(t, mockResponse(t, http.StatusOK, contributionsFixture()))

	var restCalls, gqlCalls int
	stats, err := newTestAggregator("ghp_test", rest, gql, &restCalls, &gqlCalls).Fetch(context.Background(), 0)
	require.NoError(t, err)

	assert.Equal(t, fixedNow.Year(), stats.SelectedYear)
	require.Len(t, *seen, 1)
	assert.Equal(t, "2024-01-01T00:00:00Z", (*seen)[0].Variables["from"])
}

func Test_Aggregator_Fetch_MissingToken(t *testing.T) {
	mocked := mock.NewMockedHTTPClient(
		mock.WithRequestMatch(mock.GetUsersByUsername, mockUser),
	)
	counting := &countingTransport{base: mocked.Transport}
	rest := &http.Client{Transport: counting}
	gql, seen := newGraphQLServer(t, mockResponse(t, http.StatusOK, contributionsFixture()))

	var restCalls, gqlCalls int
	stats, err := newTestAggregator("", rest, gql, &restCalls, &gqlCalls).Fetch(context.Background(), 2024)

	require.ErrorIs(t, err, ghErrors.ErrMissingToken)
	assert.Nil(t, stats)
	assert.Equal(t, http.StatusUnauthorized, ghErrors.HTTPStatus(err))
	assert.Zero(t, restCalls)
	assert.Zero(t, gqlCalls)
	assert.Zero(t, counting.calls.Load())
	assert.Empty(t, *seen)
}

func Test_Aggregator_Fetch_Failures(t *testing.T) {
	tests := []struct {
		name            string
		rest            *http.Client
		gqlHandler      http.HandlerFunc
		expectGQLCalls  int
		expectAPIError  bool
		expectGQLError  bool
		expectErrSubstr string
	}{
		{
			name: "profile request fails",
			rest: mock.NewMockedHTTPClient(
				mock.WithRequestMatchHandler(
					mock.GetUsersByUsername,
					mockResponse(t, http.StatusNotFound, `{"message": "Not Found"}`),
				),
				mock.WithRequestMatch(mock.GetUsersReposByUsername, mockRepos),
			),
			gqlHandler:      mockResponse(t, http.StatusOK, contributionsFixture()),
			expectAPIError:  true,
			expectErrSubstr: "failed to get user octocat",
		},
		{
			name: "repository listing fails",
			rest: mock.NewMockedHTTPClient(
				mock.WithRequestMatch(mock.GetUsersByUsername, mockUser),
				mock.WithRequestMatchHandler(
					mock.GetUsersReposByUsername,
					mockResponse(t, http.StatusInternalServerError, `{"message": "Internal Server Error"}`),
				),
			),
			gqlHandler:      mockResponse(t, http.StatusOK, contributionsFixture()),
			expectAPIError:  true,
			expectErrSubstr: "failed to list repositories for user octocat",
		},
		{
			name: "graphql error list",
			rest: mock.NewMockedHTTPClient(
				mock.WithRequestMatch(mock.GetUsersByUsername, mockUser),
				mock.WithRequestMatch(mock.GetUsersReposByUsername, mockRepos),
			),
			gqlHandler:      mockResponse(t, http.StatusOK, `{"data": null, "errors": [{"message": "Something went wrong"}]}`),
			expectGQLCalls:  1,
			expectGQLError:  true,
			expectErrSubstr: "failed to query contributions for octocat in 2024",
		},
		{
			name: "graphql endpoint unavailable",
			rest: mock.NewMockedHTTPClient(
				mock.WithRequestMatch(mock.GetUsersByUsername, mockUser),
				mock.WithRequestMatch(mock.GetUsersReposByUsername, mockRepos),
			),
			gqlHandler:      mockResponse(t, http.StatusServiceUnavailable, `{"message": "Service Unavailable"}`),
			expectGQLCalls:  1,
			expectAPIError:  true,
			expectErrSubstr: "failed to query contributions for octocat in 2024",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			gql, _ := newGraphQLServer(t, tc.gqlHandler)

			var restCalls, gqlCalls int
			stats, err := newTestAggregator("ghp_test", tc.rest, gql, &restCalls, &gqlCalls).Fetch(context.Background(), 2024)

			require.Error(t, err)
			assert.Nil(t, stats)
			assert.Contains(t, err.Error(), tc.expectErrSubstr)
			assert.Equal(t, tc.expectGQLCalls, gqlCalls)
			assert.Equal(t, http.StatusInternalServerError, ghErrors.HTTPStatus(err))
			assert.Equal(t, ghErrors.FetchFailedMessage, ghErrors.PublicMessage(err))

			if tc.expectAPIError {
				var apiErr *ghErrors.GitHubAPIError
				assert.ErrorAs(t, err, &apiErr)
			}
			if tc.expectGQLError {
				var gqlErr *ghErrors.GitHubGraphQLError
				assert.ErrorAs(t, err, &gqlErr)
			}
		})
	}
}
