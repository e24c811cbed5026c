package github

import (
	"context"
	"fmt"
	"math"
	"sort"
	"unicode/utf8"

	"github.com/aquilax/truncate"
	"github.com/go-enry/go-enry/v2"
	"github.com/google/go-github/v69/github"
	ghErrors "github.com/ronit-raj9/portfolio-server/pkg/errors"
	"github.com/samber/lo"
)

const (
	repositoriesPerPage  = 100
	topRepositoriesLimit = 5
	topLanguagesLimit    = 5
	descriptionMaxLength = 100
	descriptionOmission  = "..."

	// OthersLanguage names the bucket that absorbs the share not covered by
	// the listed languages.
	OthersLanguage = "Others"
	othersColor    = "#586069"
)

// fetchRepositories loads the most recently updated repositories of username.
// Only the first page is requested.
func fetchRepositories(ctx context.Context, client *github.Client, username string) ([]*github.Repository, error) {
	opts := &github.RepositoryListByUserOptions{
		Sort: "updated",
		ListOptions: github.ListOptions{
			PerPage: repositoriesPerPage,
		},
	}

	repos, resp, err := client.Repositories.ListByUser(ctx, username, opts)
	if err != nil {
		return nil, ghErrors.NewGitHubAPIError(fmt.Sprintf("failed to list repositories for user %s", username), resp, err)
	}
	defer func() { _ = resp.Body.Close() }()

	return repos, nil
}

// TotalStars sums the stargazers of every repository, forks included.
func TotalStars(repos []*github.Repository) int {
	return lo.SumBy(repos, func(repo *github.Repository) int {
		return repo.GetStargazersCount()
	})
}

// TopRepositories returns the five most starred repositories, most starred
// first. Repositories with equal stars keep their input order.
func TopRepositories(repos []*github.Repository) []RepositorySummary {
	sorted := make([]*github.Repository, len(repos))
	copy(sorted, repos)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].GetStargazersCount() > sorted[j].GetStargazersCount()
	})

	if len(sorted) > topRepositoriesLimit {
		sorted = sorted[:topRepositoriesLimit]
	}

	return lo.Map(sorted, func(repo *github.Repository, _ int) RepositorySummary {
		return RepositorySummary{
			Name:        repo.GetName(),
			Stars:       repo.GetStargazersCount(),
			Forks:       repo.GetForksCount(),
			URL:         repo.GetHTMLURL(),
			Description: TruncateDescription(repo.GetDescription()),
			Language:    repo.GetLanguage(),
		}
	})
}

// TruncateDescription keeps the first 100 characters of description and
// appends an ellipsis when anything was cut.
func TruncateDescription(description string) string {
	if utf8.RuneCountInString(description) <= descriptionMaxLength {
		return description
	}
	return truncate.Truncator(description, descriptionMaxLength, truncate.CutStrategy{}) + descriptionOmission
}

// LanguageShares weighs each language by the size of the non-fork
// repositories written in it and returns the five largest shares as rounded
// percentages. When fewer than five languages are listed and they add up to
// less than 100, an "Others" share holds the remainder.
func LanguageShares(repos []*github.Repository) []LanguageShare {
	sizes := map[string]int{}
	var order []string
	totalSize := 0

	for _, repo := range repos {
		language := repo.GetLanguage()
		if language == "" || repo.GetFork() {
			continue
		}
		if _, seen := sizes[language]; !seen {
			order = append(order, language)
		}
		sizes[language] += repo.GetSize()
		totalSize += repo.GetSize()
	}

	shares := make([]LanguageShare, 0, topLanguagesLimit+1)
	if totalSize > 0 {
		for _, language := range order {
			shares = append(shares, LanguageShare{
				Name:       language,
				Percentage: int(math.Round(float64(sizes[language]) / float64(totalSize) * 100)),
				Color:      languageColor(language),
			})
		}
	}

	sort.SliceStable(shares, func(i, j int) bool {
		return shares[i].Percentage > shares[j].Percentage
	})
	if len(shares) > topLanguagesLimit {
		shares = shares[:topLanguagesLimit]
	}

	if len(shares) < topLanguagesLimit {
		listed := lo.SumBy(shares, func(share LanguageShare) int { return share.Percentage })
		if listed < 100 {
			shares = append(shares, LanguageShare{
				Name:       OthersLanguage,
				Percentage: 100 - listed,
				Color:      othersColor,
			})
		}
	}

	return shares
}

func languageColor(language string) string {
	if color := enry.GetColor(language); color != "" {
		return color
	}
	return othersColor
}
