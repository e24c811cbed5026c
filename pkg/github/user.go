package github

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/go-github/v69/github"
	ghErrors "github.com/ronit-raj9/portfolio-server/pkg/errors"
)

// fetchUser loads the account profile over REST.
func fetchUser(ctx context.Context, client *github.Client, username string) (*github.User, error) {
	user, resp, err := client.Users.Get(ctx, username)
	if err != nil {
		return nil, ghErrors.NewGitHubAPIError(fmt.Sprintf("failed to get user %s", username), resp, err)
	}
	defer func() { _ = resp.Body.Close() }()

	return user, nil
}

// NewProfileSummary trims a REST user payload. totalStars is computed from the
// repository list since the user payload does not carry it.
func NewProfileSummary(user *github.User, username string, totalStars int) ProfileSummary {
	name := user.GetName()
	if name == "" {
		name = username
	}

	return ProfileSummary{
		Name:        name,
		AvatarURL:   user.GetAvatarURL(),
		Followers:   user.GetFollowers(),
		Following:   user.GetFollowing(),
		PublicRepos: user.GetPublicRepos(),
		TotalStars:  totalStars,
		URL:         user.GetHTMLURL(),
		Bio:         user.GetBio(),
		CreatedAt:   user.GetCreatedAt().Time,
	}
}

// AvailableYears lists every year from currentYear down to startYear.
func AvailableYears(startYear, currentYear int) []int {
	years := make([]int, 0, max(currentYear-startYear+1, 0))
	for y := currentYear; y >= startYear; y-- {
		years = append(years, y)
	}
	return years
}

// ResolveYear parses the year query parameter. An absent or unparsable value
// selects the current year.
func ResolveYear(raw string, now time.Time) int {
	year, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || year <= 0 {
		return now.Year()
	}
	return year
}
