// Package github lists and assigns the issues of a project's GitHub
// repository.
package github

import (
	"context"
	"net/http"
	"net/url"
	"os"
	"strings"

	gh "github.com/google/go-github/v66/github"
	"github.com/pkg/errors"
)

const defaultLimit = 30

// ErrNoRepository is returned when the project has no GitHub repository.
var ErrNoRepository = errors.New("no github repository configured")

type (
	// ClientParams configures a Client.
	ClientParams struct {
		Owner string
		Repo  string

		// Token authenticates requests. Defaults to GITHUB_TOKEN.
		Token string

		// BaseURL overrides the API endpoint (GitHub Enterprise, tests)
		BaseURL string

		HTTPClient *http.Client
	}

	// Client talks to the GitHub API for one repository.
	Client struct {
		gh    *gh.Client
		owner string
		repo  string
	}

	// IssueOptions filter Issues.
	IssueOptions struct {
		// State is open, closed or all. Defaults to open.
		State    string
		Assignee string
		Labels   []string

		// Limit caps the number of issues. Defaults to 30.
		Limit int
	}

	// Issue is a repository issue. Pull requests are never returned.
	Issue struct {
		Number    int
		Title     string
		State     string
		URL       string
		Assignees []string
		Labels    []string
	}
)

// NewClient creates a Client.
func NewClient(p ClientParams) (*Client, error) {
	if p.Owner == "" || p.Repo == "" {
		return nil, ErrNoRepository
	}

	client := gh.NewClient(p.HTTPClient)

	token := p.Token
	if token == "" {
		token = os.Getenv("GITHUB_TOKEN")
	}

	if token != "" {
		client = client.WithAuthToken(token)
	}

	if p.BaseURL != "" {
		u, err := url.Parse(strings.TrimSuffix(p.BaseURL, "/") + "/")
		if err != nil {
			return nil, errors.Wrapf(err, "invalid github url %s", p.BaseURL)
		}
		client.BaseURL = u
	}

	return &Client{gh: client, owner: p.Owner, repo: p.Repo}, nil
}

// Repository returns owner/repo.
func (c *Client) Repository() string {
	return c.owner + "/" + c.repo
}

// Issues lists repository issues, following pagination up to the limit.
func (c *Client) Issues(ctx context.Context, opts IssueOptions) ([]Issue, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = defaultLimit
	}

	state := opts.State
	if state == "" {
		state = "open"
	}

	listOpts := &gh.IssueListByRepoOptions{
		State:       state,
		Assignee:    opts.Assignee,
		Labels:      opts.Labels,
		ListOptions: gh.ListOptions{PerPage: min(limit, 100)},
	}

	var issues []Issue
	for {
		page, resp, err := c.gh.Issues.ListByRepo(ctx, c.owner, c.repo, listOpts)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to list issues for %s", c.Repository())
		}

		for _, issue := range page {
			if issue.IsPullRequest() {
				continue
			}

			issues = append(issues, convert(issue))
			if len(issues) == limit {
				return issues, nil
			}
		}

		if resp.NextPage == 0 {
			return issues, nil
		}

		listOpts.Page = resp.NextPage
	}
}

// Assign adds assignees to an issue. Without users the authenticated user is
// assigned.
func (c *Client) Assign(ctx context.Context, number int, users ...string) (*Issue, error) {
	if len(users) == 0 {
		me, err := c.CurrentUser(ctx)
		if err != nil {
			return nil, err
		}
		users = []string{me}
	}

	issue, _, err := c.gh.Issues.AddAssignees(ctx, c.owner, c.repo, number, users)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to assign %s#%d", c.Repository(), number)
	}

	res := convert(issue)
	return &res, nil
}

// CurrentUser returns the login of the authenticated user.
func (c *Client) CurrentUser(ctx context.Context) (string, error) {
	user, _, err := c.gh.Users.Get(ctx, "")
	if err != nil {
		return "", errors.Wrap(err, "failed to get authenticated user")
	}

	return user.GetLogin(), nil
}

func convert(issue *gh.Issue) Issue {
	res := Issue{
		Number: issue.GetNumber(),
		Title:  issue.GetTitle(),
		State:  issue.GetState(),
		URL:    issue.GetHTMLURL(),
	}

	for _, a := range issue.Assignees {
		res.Assignees = append(res.Assignees, a.GetLogin())
	}

	for _, l := range issue.Labels {
		res.Labels = append(res.Labels, l.GetName())
	}

	return res
}
