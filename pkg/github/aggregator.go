package github

import (
	"context"
	"fmt"
	"time"

	ghErrors "github.com/ronit-raj9/portfolio-server/pkg/errors"
	"github.com/ronit-raj9/portfolio-server/pkg/profiler"
	"github.com/sirupsen/logrus"
)

// Aggregator builds PortfolioStats for one account. It holds no per-request
// state, so a single instance may serve concurrent requests.
type Aggregator struct {
	token        string
	username     string
	getClient    GetClientFn
	getGQLClient GetGQLClientFn
	logger       logrus.FieldLogger
	profiler     *profiler.Profiler
	now          func() time.Time
}

// AggregatorOption configures an Aggregator.
type AggregatorOption func(*Aggregator)

// WithLogger sets the logger used for failures and step timings.
func WithLogger(logger logrus.FieldLogger) AggregatorOption {
	return func(a *Aggregator) {
		a.logger = logger
	}
}

// WithProfiler times each upstream call.
func WithProfiler(p *profiler.Profiler) AggregatorOption {
	return func(a *Aggregator) {
		a.profiler = p
	}
}

// WithClock replaces time.Now, which decides the current year and the
// lastUpdated stamp.
func WithClock(now func() time.Time) AggregatorOption {
	return func(a *Aggregator) {
		a.now = now
	}
}

// NewAggregator creates an Aggregator for username. The clients are only
// requested once the token has been checked.
func NewAggregator(token, username string, getClient GetClientFn, getGQLClient GetGQLClientFn, opts ...AggregatorOption) *Aggregator {
	a := &Aggregator{
		token:        token,
		username:     username,
		getClient:    getClient,
		getGQLClient: getGQLClient,
		logger:       logrus.StandardLogger(),
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Username returns the account the aggregator reports on.
func (a *Aggregator) Username() string {
	return a.username
}

// Fetch gathers profile, repository and contribution data for year and
// reshapes it into PortfolioStats. A year of zero or less selects the current
// year. The upstream calls are made one after the other and the first failure
// aborts the whole operation.
func (a *Aggregator) Fetch(ctx context.Context, year int) (*PortfolioStats, error) {
	if a.token == "" {
		return nil, ghErrors.ErrMissingToken
	}

	now := a.now()
	if year <= 0 {
		year = now.Year()
	}
	log := a.logger.WithFields(logrus.Fields{"username": a.username, "year": year})

	client, err := a.getClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get GitHub client: %w", err)
	}

	finish := a.profiler.Start(ctx, "get_user")
	user, err := fetchUser(ctx, client, a.username)
	finish(1, 0)
	if err != nil {
		log.WithError(err).Error("failed to fetch GitHub profile")
		return nil, err
	}

	finish = a.profiler.Start(ctx, "list_repositories")
	repos, err := fetchRepositories(ctx, client, a.username)
	finish(len(repos), 0)
	if err != nil {
		log.WithError(err).Error("failed to fetch GitHub repositories")
		return nil, err
	}

	gqlClient, err := a.getGQLClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get GitHub GraphQL client: %w", err)
	}

	window := NewContributionWindow(year)
	finish = a.profiler.Start(ctx, "query_contributions")
	contributions, err := queryContributions(ctx, gqlClient, a.username, window)
	if err != nil {
		finish(0, 0)
		log.WithError(err).Error("failed to fetch GitHub contributions")
		return nil, err
	}
	calendar := newContributionCalendar(contributions.User.ContributionsCollection.ContributionCalendar)
	finish(len(calendar.Days), 0)

	startYear := now.Year()
	if created := user.GetCreatedAt(); !created.IsZero() {
		startYear = created.Year()
	}

	totalStars := TotalStars(repos)
	stats := &PortfolioStats{
		Profile:              NewProfileSummary(user, a.username, totalStars),
		AvailableYears:       AvailableYears(startYear, now.Year()),
		SelectedYear:         year,
		Repos:                len(repos),
		TopRepositories:      TopRepositories(repos),
		Languages:            LanguageShares(repos),
		Contributions:        newContributionTotals(contributions),
		ContributionCalendar: calendar,
		ContributionsByMonth: MonthlyTotals(calendar.Days),
		RepositoryCommits:    TopRepositoryCommits(contributions.User.Repositories.Nodes),
		LastUpdated:          a.now().UTC(),
	}

	log.WithFields(logrus.Fields{
		"repos":         stats.Repos,
		"contributions": stats.Contributions.Total,
	}).Debug("aggregated GitHub data")

	return stats, nil
}
