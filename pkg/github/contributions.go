package github

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	ghErrors "github.com/ronit-raj9/portfolio-server/pkg/errors"
	"github.com/samber/lo"
	"github.com/shurcooL/githubv4"
)

const topRepositoryCommitsLimit = 10

// ContributionWindow bounds the statistics query to one calendar year.
type ContributionWindow struct {
	Year int
	From time.Time
	To   time.Time
}

// NewContributionWindow returns [year-01-01T00:00:00Z, year-12-31T23:59:59Z].
func NewContributionWindow(year int) ContributionWindow {
	return ContributionWindow{
		Year: year,
		From: time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC),
		To:   time.Date(year, time.December, 31, 23, 59, 59, 0, time.UTC),
	}
}

type contributionDayFragment struct {
	ContributionCount githubv4.Int
	Date              githubv4.String
	Weekday           githubv4.Int
}

type contributionWeekFragment struct {
	FirstDay         githubv4.String
	ContributionDays []contributionDayFragment
}

type contributionCalendarFragment struct {
	TotalContributions githubv4.Int
	Weeks              []contributionWeekFragment
}

type defaultBranchRefFragment struct {
	Target struct {
		Commit struct {
			History struct {
				TotalCount githubv4.Int
			} `graphql:"history(since: $since, until: $until)"`
		} `graphql:"... on Commit"`
	}
}

type repositoryCommitsFragment struct {
	Name             githubv4.String
	DefaultBranchRef *defaultBranchRefFragment
}

type contributionsQuery struct {
	User struct {
		Name                    githubv4.String
		ContributionsCollection struct {
			ContributionCalendar                contributionCalendarFragment
			TotalCommitContributions            githubv4.Int
			TotalIssueContributions             githubv4.Int
			TotalPullRequestContributions       githubv4.Int
			TotalPullRequestReviewContributions githubv4.Int
		} `graphql:"contributionsCollection(from: $from, to: $to)"`
		Repositories struct {
			TotalCount githubv4.Int
			Nodes      []repositoryCommitsFragment
		} `graphql:"repositories(first: 100, orderBy: {field: UPDATED_AT, direction: DESC})"`
	} `graphql:"user(login: $login)"`
}

// queryContributions runs the single statistics query for window.
func queryContributions(ctx context.Context, client *githubv4.Client, username string, window ContributionWindow) (*contributionsQuery, error) {
	var q contributionsQuery
	vars := map[string]any{
		"login": githubv4.String(username),
		"from":  githubv4.DateTime{Time: window.From},
		"to":    githubv4.DateTime{Time: window.To},
		"since": githubv4.GitTimestamp{Time: window.From},
		"until": githubv4.GitTimestamp{Time: window.To},
	}

	if err := client.Query(ctx, &q, vars); err != nil {
		message := fmt.Sprintf("failed to query contributions for %s in %d", username, window.Year)
		if isGraphQLTransportError(err) {
			return nil, ghErrors.NewGitHubAPIError(message, nil, err)
		}
		return nil, ghErrors.NewGitHubGraphQLError(message, err)
	}
	return &q, nil
}

// isGraphQLTransportError tells a failed round trip apart from an error list
// embedded in a successful response. The graphql client reports the former as
// a url.Error or a "non-200 OK status code" error.
func isGraphQLTransportError(err error) bool {
	msg := err.Error()
	return strings.HasPrefix(msg, "non-200 OK status code") ||
		strings.HasPrefix(msg, "Post ") ||
		strings.Contains(msg, "context deadline exceeded") ||
		strings.Contains(msg, "context canceled")
}

// ContributionLevel buckets a day's count into the five heatmap intensities.
func ContributionLevel(count int) int {
	switch {
	case count <= 0:
		return 0
	case count <= 3:
		return 1
	case count <= 6:
		return 2
	case count <= 9:
		return 3
	default:
		return 4
	}
}

func toContributionDay(day contributionDayFragment) ContributionDay {
	return ContributionDay{
		Count:   int(day.ContributionCount),
		Date:    string(day.Date),
		Weekday: int(day.Weekday),
		Level:   ContributionLevel(int(day.ContributionCount)),
	}
}

// newContributionCalendar derives the flat day list and the week list from the
// same upstream weeks.
func newContributionCalendar(calendar contributionCalendarFragment) ContributionCalendar {
	weeks := lo.Map(calendar.Weeks, func(week contributionWeekFragment, _ int) ContributionWeek {
		return ContributionWeek{
			FirstDay: string(week.FirstDay),
			Days:     lo.Map(week.ContributionDays, func(day contributionDayFragment, _ int) ContributionDay { return toContributionDay(day) }),
		}
	})
	days := lo.FlatMap(weeks, func(week ContributionWeek, _ int) []ContributionDay {
		return week.Days
	})

	return ContributionCalendar{
		TotalContributions: int(calendar.TotalContributions),
		Days:               days,
		Weeks:              weeks,
		Months:             CalendarMonths(days),
	}
}

// MonthlyTotals sums day counts per YYYY-MM.
func MonthlyTotals(days []ContributionDay) map[string]int {
	totals := make(map[string]int)
	for _, day := range days {
		if len(day.Date) < len("2006-01") {
			continue
		}
		totals[day.Date[:7]] += day.Count
	}
	return totals
}

// CalendarMonths returns a label for every month in days together with the
// calendar column it starts in. A new column starts after each Saturday.
func CalendarMonths(days []ContributionDay) []MonthLabel {
	months := []MonthLabel{}
	current := ""
	column := 0

	for _, day := range days {
		if day.Date == "" {
			continue
		}
		date, err := time.Parse("2006-01-02", day.Date)
		if err != nil {
			continue
		}

		if month := day.Date[:7]; month != current {
			current = month
			months = append(months, MonthLabel{
				Name:     date.Month().String()[:3],
				Position: column,
			})
		}

		if day.Weekday == 6 {
			column++
		}
	}

	return months
}

func newContributionTotals(q *contributionsQuery) ContributionTotals {
	cc := q.User.ContributionsCollection
	return ContributionTotals{
		Total:  int(cc.ContributionCalendar.TotalContributions),
		Code:   int(cc.TotalCommitContributions),
		Issues: int(cc.TotalIssueContributions),
		PRs:    int(cc.TotalPullRequestContributions) + int(cc.TotalPullRequestReviewContributions),
	}
}

// TopRepositoryCommits ranks repositories by the commits on their default
// branch within the window. Repositories without a default branch are left
// out and at most ten are returned.
func TopRepositoryCommits(nodes []repositoryCommitsFragment) []RepositoryCommits {
	withBranch := lo.Filter(nodes, func(node repositoryCommitsFragment, _ int) bool {
		return node.DefaultBranchRef != nil
	})

	ranked := lo.Map(withBranch, func(node repositoryCommitsFragment, _ int) RepositoryCommits {
		return RepositoryCommits{
			Name:        string(node.Name),
			CommitCount: int(node.DefaultBranchRef.Target.Commit.History.TotalCount),
		}
	})
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].CommitCount > ranked[j].CommitCount
	})

	if len(ranked) > topRepositoryCommitsLimit {
		ranked = ranked[:topRepositoryCommitsLimit]
	}
	return ranked
}
