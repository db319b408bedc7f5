// Package githubapi provides a caller for the GitHub REST API, used to
// resolve the stargazers of a repository and the repositories starred by a
// user. Both endpoints are paginated; the caller follows pages until a page
// returns fewer items than the configured page size. Authentication is a
// bearer token passed through from the configuration or a per-request
// override.

package githubapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/mx42/stargazer/cfg"
	"github.com/mx42/stargazer/pkg/log"
)

type Caller struct {
	Logger  log.Logger
	Config  *cfg.Config
	client  *http.Client
	baseUrl string
	token   string
	perPage int
}

// NewCaller builds a caller against the configured API URL. An empty token
// falls back to the configured access token.
func NewCaller(logger log.Logger, config *cfg.Config, token string) *Caller {
	if token == "" {
		token = config.GithubApi.AccessToken
	}
	perPage := config.GithubApi.PerPage
	if perPage <= 0 {
		perPage = 30
	}
	return &Caller{
		Logger:  logger,
		Config:  config,
		client:  &http.Client{Timeout: 30 * time.Second},
		baseUrl: strings.TrimRight(config.GithubApi.ApiUrl, "/"),
		token:   token,
		perPage: perPage,
	}
}

// FetchProjectStars returns the logins of every user having starred the
// repository, across all pages.
func (c *Caller) FetchProjectStars(ctx context.Context, owner, repo string) ([]string, error) {
	logins := []string{}
	for page := 1; ; page++ {
		url := fmt.Sprintf("%s/repos/%s/%s/stargazers?per_page=%d&page=%d", c.baseUrl, owner, repo, c.perPage, page)

		var items []StargazerResponse
		if err := c.getJson(ctx, url, &items); err != nil {
			return nil, err
		}
		for _, item := range items {
			logins = append(logins, item.Login)
		}

		// A short page is the last page
		if len(items) < c.perPage {
			return logins, nil
		}
	}
}

// FetchUserStars returns the full names (owner/repo) of every repository
// starred by the user, across all pages.
func (c *Caller) FetchUserStars(ctx context.Context, user string) ([]string, error) {
	repos := []string{}
	for page := 1; ; page++ {
		url := fmt.Sprintf("%s/users/%s/starred?per_page=%d&page=%d", c.baseUrl, user, c.perPage, page)

		var items []StarredRepoResponse
		if err := c.getJson(ctx, url, &items); err != nil {
			return nil, err
		}
		for _, item := range items {
			repos = append(repos, item.FullName)
		}

		if len(items) < c.perPage {
			return repos, nil
		}
	}
}

func (c *Caller) getJson(ctx context.Context, url string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		c.Logger.Error(ctx, "Cannot build request: %v", err)
		return err
	}

	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("X-GitHub-Api-Version", "2022-11-28")
	if c.token != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.token))
	}

	resp, err := c.client.Do(req)
	if err != nil {
		c.Logger.Error(ctx, "Cannot send request: %v", err)
		return err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		return json.NewDecoder(resp.Body).Decode(out)
	case http.StatusUnauthorized:
		return ErrInvalidCredentials
	case http.StatusNotFound:
		return ErrNotFound
	default:
		return &UnexpectedStatusError{StatusCode: resp.StatusCode}
	}
}
