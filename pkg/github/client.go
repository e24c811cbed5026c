package github

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/go-github/v69/github"
	ghlog "github.com/ronit-raj9/portfolio-server/pkg/log"
	"github.com/shurcooL/githubv4"
	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
)

type GetClientFn func(context.Context) (*github.Client, error)
type GetGQLClientFn func(context.Context) (*githubv4.Client, error)

// noCacheTransport asks every intermediary for fresh data.
type noCacheTransport struct {
	base http.RoundTripper
}

func (t *noCacheTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.Header.Set("Cache-Control", "no-cache")
	return t.base.RoundTrip(req)
}

// NewHTTPClient returns the client shared by the REST and GraphQL clients. It
// sends token as a bearer credential, disables upstream caching and, when
// logger is set, logs each round trip.
func NewHTTPClient(token string, base http.RoundTripper, logger logrus.FieldLogger) *http.Client {
	if base == nil {
		base = http.DefaultTransport
	}
	if logger != nil {
		base = ghlog.NewTransport(base, logger)
	}

	return &http.Client{
		Transport: &oauth2.Transport{
			Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token}),
			Base:   &noCacheTransport{base: base},
		},
	}
}

// NewRESTClient creates a go-github client. An empty host targets github.com.
func NewRESTClient(httpClient *http.Client, host string) (*github.Client, error) {
	client := github.NewClient(httpClient)
	if host == "" {
		return client, nil
	}

	baseURL, err := hostURL(host)
	if err != nil {
		return nil, err
	}
	client, err = client.WithEnterpriseURLs(baseURL, baseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to configure enterprise URLs: %w", err)
	}
	return client, nil
}

// NewGQLClient creates a githubv4 client. An empty host targets github.com.
func NewGQLClient(httpClient *http.Client, host string) (*githubv4.Client, error) {
	if host == "" {
		return githubv4.NewClient(httpClient), nil
	}

	baseURL, err := hostURL(host)
	if err != nil {
		return nil, err
	}
	return githubv4.NewEnterpriseClient(strings.TrimSuffix(baseURL, "/")+"/api/graphql", httpClient), nil
}

func hostURL(host string) (string, error) {
	if !strings.Contains(host, "://") {
		host = "https://" + host
	}
	u, err := url.Parse(host)
	if err != nil {
		return "", fmt.Errorf("failed to parse GitHub host %q: %w", host, err)
	}
	if u.Host == "" {
		return "", fmt.Errorf("invalid GitHub host %q", host)
	}
	return u.Scheme + "://" + u.Host + "/", nil
}
