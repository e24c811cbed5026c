package main

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/ronit-raj9/portfolio-server/pkg/github"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_RootCmdVersion(t *testing.T) {
	expectedVersion := buildInfo.String()
	actualVersion := rootCmd.Version

	assert.Equal(t, expectedVersion, actualVersion)
}

func Test_RootCmdSubcommands(t *testing.T) {
	names := make([]string, 0, len(rootCmd.Commands()))
	for _, cmd := range rootCmd.Commands() {
		names = append(names, cmd.Name())
	}
	assert.Subset(t, names, []string{"serve", "stdio", "fetch"})
}

func Test_wordSepNormalizeFunc(t *testing.T) {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)

	assert.Equal(t, pflag.NormalizedName("log-file"), wordSepNormalizeFunc(fs, "log_file"))
	assert.Equal(t, pflag.NormalizedName("gh-host"), wordSepNormalizeFunc(fs, "gh-host"))
}

func Test_summaryLine(t *testing.T) {
	stats := &github.PortfolioStats{
		Profile:       github.ProfileSummary{Name: "The Octocat", TotalStars: 12345},
		SelectedYear:  2024,
		Repos:         42,
		Contributions: github.ContributionTotals{Total: 1234},
		Languages: []github.LanguageShare{
			{Name: "Go", Percentage: 60},
			{Name: "Shell", Percentage: 40},
		},
		RepositoryCommits: []github.RepositoryCommits{
			{Name: "portfolio", CommitCount: 1500},
		},
		LastUpdated: time.Now(),
	}

	assert.Equal(t,
		"The Octocat: 1,234 contributions in 2024, 12,345 stars across 42 repositories, mostly Go (60%), busiest repository portfolio with 1,500 commits",
		summaryLine(stats))

	assert.Equal(t,
		"octocat: 0 contributions in 2023, 0 stars across 0 repositories",
		summaryLine(&github.PortfolioStats{Profile: github.ProfileSummary{Name: "octocat"}, SelectedYear: 2023}))
}

func Test_runFetch_MissingToken(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	viper.Set("token", "")
	viper.Set("username", "octocat")

	var out bytes.Buffer
	err := runFetch(context.Background(), &out, 2024, false)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "GitHub token is required for fetching contribution data")
	assert.Empty(t, out.String())
}
