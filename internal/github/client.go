package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/go-github/v62/github"

	laminarerrors "laminar.dev/laminar/internal/errors"
	"laminar.dev/laminar/internal/git"
)

// Client is the forge surface the export pipeline and land workflow use.
type Client interface {
	// GetPR fetches a pull request by number
	GetPR(ctx context.Context, number int) (*PullRequestInfo, error)

	// FindPRByHead finds the pull request whose head is the given branch,
	// or nil when none exists
	FindPRByHead(ctx context.Context, headRef string) (*PullRequestInfo, error)

	// BatchGetPRs fetches multiple pull requests in one query
	BatchGetPRs(ctx context.Context, numbers []int) (map[int]*PullRequestInfo, error)

	// CreatePR creates a pull request, retrying transient failures
	CreatePR(ctx context.Context, opts CreatePROptions) (*PullRequestInfo, error)

	// UpdatePR updates a pull request's title, body, or base
	UpdatePR(ctx context.Context, number int, opts UpdatePROptions) error

	// BatchUpdateBases retargets multiple PRs in one mutation, in order
	BatchUpdateBases(ctx context.Context, updates []BaseUpdate) error

	// BatchUpdateBodies rewrites multiple PR bodies in one mutation
	BatchUpdateBodies(ctx context.Context, updates []BodyUpdate) error

	// AddComment posts an issue comment on a PR
	AddComment(ctx context.Context, number int, body string) error

	// ClosePR closes a pull request without merging
	ClosePR(ctx context.Context, number int) error

	// MergePR merges a pull request
	MergePR(ctx context.Context, number int) error

	// GetOwnerRepo returns the repository owner and name
	GetOwnerRepo() (owner, repo string)
}

// createMaxAttempts bounds PR creation retries. Creation can race the push
// the branch arrived on, so transient failures are retried with backoff.
const createMaxAttempts = 3

// createBackoff returns the delay before retry attempt n (1-based).
func createBackoff(attempt int) time.Duration {
	return time.Duration(1<<(attempt-1)) * time.Second // 1s, 2s
}

// apiClient is the production Client backed by the GitHub REST and
// GraphQL APIs.
type apiClient struct {
	rest     *github.Client
	owner    string
	repo     string
	hostname string
	token    string
}

// NewClient builds a Client for the repository the remote points at.
// Authentication comes from GITHUB_TOKEN, falling back to `gh auth token`.
func NewClient(ctx context.Context, remote string) (Client, error) {
	token, err := getGitHubToken()
	if err != nil {
		return nil, laminarerrors.NewConnectivityError(
			"GitHub authentication",
			"Set GITHUB_TOKEN or authenticate with `gh auth login`.",
			err)
	}

	remoteURL, err := git.GetRemoteURL(ctx, remote)
	if err != nil {
		return nil, fmt.Errorf("failed to read URL for remote %s: %w", remote, err)
	}

	repoInfo, err := ParseGitHubRemoteURL(remoteURL)
	if err != nil {
		return nil, fmt.Errorf("remote %s does not look like a GitHub remote: %w", remote, err)
	}

	rest, err := createRESTClient(ctx, repoInfo.Hostname, token)
	if err != nil {
		return nil, err
	}

	return &apiClient{
		rest:     rest,
		owner:    repoInfo.Owner,
		repo:     repoInfo.Repo,
		hostname: repoInfo.Hostname,
		token:    token,
	}, nil
}

func (c *apiClient) GetOwnerRepo() (string, string) {
	return c.owner, c.repo
}

func (c *apiClient) GetPR(ctx context.Context, number int) (*PullRequestInfo, error) {
	pr, _, err := c.rest.PullRequests.Get(ctx, c.owner, c.repo, number)
	if err != nil {
		return nil, laminarerrors.NewConnectivityError(
			fmt.Sprintf("fetching PR #%d", number),
			"Check connectivity and that the pull request still exists.",
			err)
	}
	return prInfoFromREST(pr), nil
}

func (c *apiClient) FindPRByHead(ctx context.Context, headRef string) (*PullRequestInfo, error) {
	prs, _, err := c.rest.PullRequests.List(ctx, c.owner, c.repo, &github.PullRequestListOptions{
		Head:  fmt.Sprintf("%s:%s", c.owner, headRef),
		State: "all",
		ListOptions: github.ListOptions{
			PerPage: 1,
		},
	})
	if err != nil {
		return nil, laminarerrors.NewConnectivityError(
			fmt.Sprintf("finding PR for %s", headRef),
			"Check connectivity and repository access.",
			err)
	}
	if len(prs) == 0 {
		return nil, nil
	}
	return prInfoFromREST(prs[0]), nil
}

func (c *apiClient) CreatePR(ctx context.Context, opts CreatePROptions) (*PullRequestInfo, error) {
	newPR := &github.NewPullRequest{
		Title: github.String(opts.Title),
		Head:  github.String(opts.Head),
		Base:  github.String(opts.Base),
		Draft: github.Bool(opts.Draft),
	}
	if opts.Body != "" {
		newPR.Body = github.String(opts.Body)
	}

	var lastErr error
	for attempt := 1; attempt <= createMaxAttempts; attempt++ {
		if attempt > 1 {
			select {
			case <-time.After(createBackoff(attempt - 1)):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		pr, _, err := c.rest.PullRequests.Create(ctx, c.owner, c.repo, newPR)
		if err == nil {
			return prInfoFromREST(pr), nil
		}
		lastErr = err

		if isValidationError(err) {
			return nil, laminarerrors.NewValidationError(
				"GitHub rejected pull request %s -> %s: %v", opts.Head, opts.Base, err)
		}
	}

	return nil, laminarerrors.NewConnectivityError(
		fmt.Sprintf("creating pull request %s -> %s", opts.Head, opts.Base),
		"Make sure the head branch has been pushed and you have write access to the repository.",
		lastErr)
}

// isValidationError reports whether the API rejected the request as
// invalid (HTTP 422). These never succeed on retry.
func isValidationError(err error) bool {
	var apiErr *github.ErrorResponse
	if errors.As(err, &apiErr) && apiErr.Response != nil {
		return apiErr.Response.StatusCode == http.StatusUnprocessableEntity
	}
	return strings.Contains(err.Error(), "422")
}

func (c *apiClient) UpdatePR(ctx context.Context, number int, opts UpdatePROptions) error {
	update := &github.PullRequest{}
	if opts.Title != nil {
		update.Title = opts.Title
	}
	if opts.Body != nil {
		update.Body = opts.Body
	}
	if opts.Base != nil {
		update.Base = &github.PullRequestBranch{
			Ref: opts.Base,
		}
	}

	_, _, err := c.rest.PullRequests.Edit(ctx, c.owner, c.repo, number, update)
	if err != nil {
		return laminarerrors.NewConnectivityError(
			fmt.Sprintf("updating PR #%d", number),
			"Check connectivity and that the pull request is still open.",
			err)
	}
	return nil
}

func (c *apiClient) AddComment(ctx context.Context, number int, body string) error {
	comment := &github.IssueComment{Body: github.String(body)}
	_, _, err := c.rest.Issues.CreateComment(ctx, c.owner, c.repo, number, comment)
	if err != nil {
		return fmt.Errorf("failed to comment on PR #%d: %w", number, err)
	}
	return nil
}

func (c *apiClient) ClosePR(ctx context.Context, number int) error {
	state := "closed"
	_, _, err := c.rest.PullRequests.Edit(ctx, c.owner, c.repo, number, &github.PullRequest{
		State: &state,
	})
	if err != nil {
		return fmt.Errorf("failed to close PR #%d: %w", number, err)
	}
	return nil
}

func (c *apiClient) MergePR(ctx context.Context, number int) error {
	opts := &github.PullRequestOptions{
		MergeMethod: "merge",
	}
	_, _, err := c.rest.PullRequests.Merge(ctx, c.owner, c.repo, number, "", opts)
	if err != nil {
		return laminarerrors.NewConnectivityError(
			fmt.Sprintf("merging PR #%d", number),
			"Check that the pull request is mergeable and you have write access.",
			err)
	}
	return nil
}

// prInfoFromREST converts a go-github PR into PullRequestInfo.
func prInfoFromREST(pr *github.PullRequest) *PullRequestInfo {
	// List responses leave Merged unset; MergedAt is filled either way.
	merged := pr.GetMerged() || !pr.GetMergedAt().IsZero()
	return &PullRequestInfo{
		Number:  pr.GetNumber(),
		NodeID:  pr.GetNodeID(),
		HTMLURL: pr.GetHTMLURL(),
		Title:   pr.GetTitle(),
		Body:    pr.GetBody(),
		State:   prStateFrom(strings.ToUpper(pr.GetState()), pr.GetDraft(), merged),
		Base:    pr.GetBase().GetRef(),
		Head:    pr.GetHead().GetRef(),
		HeadSHA: pr.GetHead().GetSHA(),
	}
}
