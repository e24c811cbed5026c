package github

import "time"

// ProfileSummary is the trimmed account profile shown on the portfolio.
type ProfileSummary struct {
	Name        string    `json:"name"`
	AvatarURL   string    `json:"avatarUrl"`
	Followers   int       `json:"followers"`
	Following   int       `json:"following"`
	PublicRepos int       `json:"publicRepos"`
	TotalStars  int       `json:"totalStars"`
	URL         string    `json:"url"`
	Bio         string    `json:"bio"`
	CreatedAt   time.Time `json:"createdAt"`
}

// RepositorySummary is the trimmed output type for a top repository.
type RepositorySummary struct {
	Name        string `json:"name"`
	Stars       int    `json:"stars"`
	Forks       int    `json:"forks"`
	URL         string `json:"url"`
	Description string `json:"description"`
	Language    string `json:"language"`
}

// LanguageShare is one language's share of the account's non-fork code size.
type LanguageShare struct {
	Name       string `json:"name"`
	Percentage int    `json:"percentage"`
	Color      string `json:"color,omitempty"`
}

// ContributionTotals are the activity counts for the selected year.
type ContributionTotals struct {
	Total  int `json:"total"`
	Code   int `json:"code"`
	Issues int `json:"issues"`
	PRs    int `json:"prs"`
}

// ContributionDay is a single cell of the contribution calendar.
type ContributionDay struct {
	Count   int    `json:"count"`
	Date    string `json:"date"`
	Weekday int    `json:"weekday"`
	Level   int    `json:"level"`
}

// ContributionWeek is one column of the contribution calendar.
type ContributionWeek struct {
	FirstDay string            `json:"firstDay"`
	Days     []ContributionDay `json:"days"`
}

// MonthLabel positions a month name above the calendar column it starts in.
type MonthLabel struct {
	Name     string `json:"name"`
	Position int    `json:"position"`
}

// ContributionCalendar carries the same days both flat and grouped by week.
type ContributionCalendar struct {
	TotalContributions int                `json:"totalContributions"`
	Days               []ContributionDay  `json:"days"`
	Weeks              []ContributionWeek `json:"weeks"`
	Months             []MonthLabel       `json:"months"`
}

// RepositoryCommits is a repository's default branch commit count within the
// selected year.
type RepositoryCommits struct {
	Name        string `json:"name"`
	CommitCount int    `json:"commitCount"`
}

// PortfolioStats is the payload served to the portfolio front-end.
type PortfolioStats struct {
	Profile              ProfileSummary       `json:"profile"`
	AvailableYears       []int                `json:"availableYears"`
	SelectedYear         int                  `json:"selectedYear"`
	Repos                int                  `json:"repos"`
	TopRepositories      []RepositorySummary  `json:"topRepositories"`
	Languages            []LanguageShare      `json:"languages"`
	Contributions        ContributionTotals   `json:"contributions"`
	ContributionCalendar ContributionCalendar `json:"contributionCalendar"`
	ContributionsByMonth map[string]int       `json:"contributionsByMonth"`
	RepositoryCommits    []RepositoryCommits  `json:"repositoryCommits"`
	LastUpdated          time.Time            `json:"lastUpdated"`
}
