package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/go-github/v57/github"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/clintrovert/recli/pkg/types"
)

// PublicHost is the hostname of the public GitHub service
const PublicHost = "github.com"

const listPageSize = 100

// Client wraps the GitHub API operations used by the pull request workflow
type Client struct {
	apiClient *github.Client
	logger    *zap.Logger
}

// NewClient creates a new GitHub client authenticated with accessToken.
// Hosts other than github.com are addressed through their Enterprise API.
func NewClient(accessToken, host string, logger *zap.Logger) (*Client, error) {
	ctx := context.Background()
	ts := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: accessToken},
	)
	tc := oauth2.NewClient(ctx, ts)

	apiClient := github.NewClient(tc)
	if host != "" && host != PublicHost {
		baseURL := fmt.Sprintf("https://%s/api/v3/", host)
		uploadURL := fmt.Sprintf("https://%s/api/uploads/", host)

		var err error
		apiClient, err = apiClient.WithEnterpriseURLs(baseURL, uploadURL)
		if err != nil {
			return nil, fmt.Errorf("failed to configure enterprise host %s: %w", host, err)
		}
	}

	return &Client{
		apiClient: apiClient,
		logger:    logger,
	}, nil
}

// AuthenticatedUser returns the login the token belongs to
func (c *Client) AuthenticatedUser(ctx context.Context) (string, error) {
	user, _, err := c.apiClient.Users.Get(ctx, "")
	if err != nil {
		return "", fmt.Errorf("failed to get authenticated user: %w", err)
	}

	c.logger.Debug("authenticated",
		zap.String("login", user.GetLogin()),
	)

	return user.GetLogin(), nil
}

// BranchExists reports whether branch exists in owner/repo. A 404 is reported
// as false, every other failure is returned as an error.
func (c *Client) BranchExists(ctx context.Context, owner, repo, branch string) (bool, error) {
	_, resp, err := c.apiClient.Repositories.GetBranch(ctx, owner, repo, branch, 1)
	if err != nil {
		if isNotFound(resp, err) {
			c.logger.Debug("branch not found",
				zap.String("owner", owner),
				zap.String("repo", repo),
				zap.String("branch", branch),
			)
			return false, nil
		}
		return false, fmt.Errorf("failed to get branch %s: %w", branch, err)
	}

	c.logger.Debug("branch found",
		zap.String("owner", owner),
		zap.String("repo", repo),
		zap.String("branch", branch),
	)

	return true, nil
}

// ListOpenPullRequests returns every open pull request of owner/repo in the
// API's default order
func (c *Client) ListOpenPullRequests(ctx context.Context, owner, repo string) ([]types.PullRequest, error) {
	opts := &github.PullRequestListOptions{
		State:       "open",
		ListOptions: github.ListOptions{PerPage: listPageSize},
	}

	var prs []types.PullRequest
	for {
		page, resp, err := c.apiClient.PullRequests.List(ctx, owner, repo, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to list pull requests: %w", err)
		}

		for _, pr := range page {
			prs = append(prs, toPullRequest(pr))
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	c.logger.Debug("listed open pull requests",
		zap.String("owner", owner),
		zap.String("repo", repo),
		zap.Int("count", len(prs)),
	)

	return prs, nil
}

// CreatePullRequest opens a pull request merging head into base
func (c *Client) CreatePullRequest(ctx context.Context, owner, repo, title, head, base string) (*types.PullRequest, error) {
	newPR := &github.NewPullRequest{
		Title: github.String(title),
		Head:  github.String(head),
		Base:  github.String(base),
	}

	pr, _, err := c.apiClient.PullRequests.Create(ctx, owner, repo, newPR)
	if err != nil {
		return nil, fmt.Errorf("failed to create pull request: %w", err)
	}

	created := toPullRequest(pr)

	c.logger.Info("created pull request",
		zap.String("owner", owner),
		zap.String("repo", repo),
		zap.Int("pr_number", created.Number),
		zap.String("pr_url", created.HTMLURL),
	)

	return &created, nil
}

// MergePullRequest merges pull request number with the repository's default
// merge method
func (c *Client) MergePullRequest(ctx context.Context, owner, repo string, number int) error {
	result, _, err := c.apiClient.PullRequests.Merge(ctx, owner, repo, number, "", nil)
	if err != nil {
		return fmt.Errorf("failed to merge pull request #%d: %w", number, err)
	}
	if !result.GetMerged() {
		return fmt.Errorf("pull request #%d was not merged: %s", number, result.GetMessage())
	}

	c.logger.Info("merged pull request",
		zap.String("owner", owner),
		zap.String("repo", repo),
		zap.Int("pr_number", number),
		zap.String("sha", result.GetSHA()),
	)

	return nil
}

func isNotFound(resp *github.Response, err error) bool {
	if resp != nil && resp.StatusCode == http.StatusNotFound {
		return true
	}
	var errResp *github.ErrorResponse
	return errors.As(err, &errResp) && errResp.Response != nil &&
		errResp.Response.StatusCode == http.StatusNotFound
}

func toPullRequest(pr *github.PullRequest) types.PullRequest {
	state := types.PullRequestOpen
	if pr.GetState() == string(types.PullRequestClosed) {
		state = types.PullRequestClosed
	}

	return types.PullRequest{
		Number:  pr.GetNumber(),
		HTMLURL: pr.GetHTMLURL(),
		BaseRef: pr.GetBase().GetRef(),
		HeadRef: pr.GetHead().GetRef(),
		State:   state,
	}
}
