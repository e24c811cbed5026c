package github

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/shurcooL/githubv4"
	"github.com/stretchr/testify/require"
)

// mockResponse is a helper function to create a mock HTTP response handler
// that returns a specified status code and marshaled body.
func mockResponse(t *testing.T, code int, body any) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		if s, ok := body.(string); ok {
			_, _ = w.Write([]byte(s))
			return
		}
		b, err := json.Marshal(body)
		require.NoError(t, err)
		_, _ = w.Write(b)
	}
}

// countingTransport counts round trips before delegating to base.
type countingTransport struct {
	base  http.RoundTripper
	calls atomic.Int32
}

func (c *countingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	c.calls.Add(1)
	return c.base.RoundTrip(req)
}

// graphQLRequest is the body githubv4 posts.
type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

// newGraphQLServer starts a GraphQL endpoint answering every query with
// handler and returns a client bound to it together with the requests seen.
func newGraphQLServer(t *testing.T, handler http.HandlerFunc) (*githubv4.Client, *[]graphQLRequest) {
	t.Helper()
	var seen []graphQLRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req graphQLRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		seen = append(seen, req)
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	return githubv4.NewEnterpriseClient(srv.URL, srv.Client()), &seen
}

// graphQLData wraps data the way the GraphQL endpoint does.
func graphQLData(data map[string]any) map[string]any {
	return map[string]any{"data": data}
}

func contributionDay(count int, date string, weekday int) map[string]any {
	return map[string]any{"contributionCount": count, "date": date, "weekday": weekday}
}

func repositoryNode(name string, commits *int) map[string]any {
	node := map[string]any{"name": name, "defaultBranchRef": nil}
	if commits != nil {
		node["defaultBranchRef"] = map[string]any{
			"target": map[string]any{
				"history": map[string]any{"totalCount": *commits},
			},
		}
	}
	return node
}

// contributionsFixture spans the end of January and the start of February 2024.
func contributionsFixture() map[string]any {
	commits := func(n int) *int { return &n }
	return graphQLData(map[string]any{
		"user": map[string]any{
			"name": "The Octocat",
			"contributionsCollection": map[string]any{
				"contributionCalendar": map[string]any{
					"totalContributions": 32,
					"weeks": []any{
						map[string]any{
							"firstDay": "2024-01-28",
							"contributionDays": []any{
								contributionDay(1, "2024-01-28", 0),
								contributionDay(4, "2024-01-29", 1),
								contributionDay(0, "2024-01-30", 2),
								contributionDay(7, "2024-01-31", 3),
								contributionDay(10, "2024-02-01", 4),
								contributionDay(2, "2024-02-02", 5),
								contributionDay(3, "2024-02-03", 6),
							},
						},
						map[string]any{
							"firstDay": "2024-02-04",
							"contributionDays": []any{
								contributionDay(5, "2024-02-04", 0),
							},
						},
					},
				},
				"totalCommitContributions":            20,
				"totalIssueContributions":             3,
				"totalPullRequestContributions":       4,
				"totalPullRequestReviewContributions": 2,
			},
			"repositories": map[string]any{
				"totalCount": 3,
				"nodes": []any{
					repositoryNode("portfolio", commits(12)),
					repositoryNode("empty-repo", nil),
					repositoryNode("dotfiles", commits(30)),
				},
			},
		},
	})
}
