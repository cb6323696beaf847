package cmd

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/pseudomuto/projectx/pkg/github"
	"github.com/urfave/cli/v3"
)

// githubCmd creates the GitHub command group. The repository comes from
// github.url in project-x.yml and requests authenticate with GITHUB_TOKEN.
//
// Example usage:
//
//	projectx github issues --label bug
//	projectx github assign 42
//	projectx github assign 42 --user octocat
func githubCmd(rt *Runtime) *cli.Command {
	return &cli.Command{
		Name:   "github",
		Usage:  "Work with the project's GitHub issues",
		Before: requireProject(rt),
		Commands: []*cli.Command{
			{
				Name:  "issues",
				Usage: "List repository issues",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "state",
						Usage: "open, closed or all",
						Value: "open",
					},
					&cli.StringFlag{
						Name:  "assignee",
						Usage: "filter by assignee (none, * or a login)",
					},
					&cli.StringSliceFlag{
						Name:  "label",
						Usage: "filter by label",
					},
					&cli.IntFlag{
						Name:  "limit",
						Usage: "the maximum number of issues",
						Value: 30,
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					client, err := githubClient(rt)
					if err != nil {
						return err
					}

					issues, err := client.Issues(ctx, github.IssueOptions{
						State:    cmd.String("state"),
						Assignee: cmd.String("assignee"),
						Labels:   cmd.StringSlice("label"),
						Limit:    int(cmd.Int("limit")),
					})
					if err != nil {
						return err
					}

					if len(issues) == 0 {
						fmt.Fprintln(rt.Stdout, "No issues found in", client.Repository())
						return nil
					}

					rows := make([][]string, len(issues))
					for i, issue := range issues {
						rows[i] = []string{
							"#" + strconv.Itoa(issue.Number),
							issue.Title,
							strings.Join(issue.Labels, ", "),
							strings.Join(issue.Assignees, ", "),
						}
					}

					printTable(rt.Stdout, []string{"Number", "Title", "Labels", "Assignees"}, rows)
					return nil
				},
			},
			{
				Name:      "assign",
				Usage:     "Assign an issue (to yourself by default)",
				ArgsUsage: "<number>",
				Flags: []cli.Flag{
					&cli.StringSliceFlag{
						Name:  "user",
						Usage: "the login to assign",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					number, err := strconv.Atoi(strings.TrimPrefix(cmd.Args().First(), "#"))
					if err != nil || number <= 0 {
						return errors.Errorf("invalid issue number %q", cmd.Args().First())
					}

					client, err := githubClient(rt)
					if err != nil {
						return err
					}

					issue, err := client.Assign(ctx, number, cmd.StringSlice("user")...)
					if err != nil {
						return err
					}

					fmt.Fprintf(rt.Stdout, "Assigned #%d to %s\n", issue.Number, strings.Join(issue.Assignees, ", "))
					return nil
				},
			},
		},
	}
}

func githubClient(rt *Runtime) (*github.Client, error) {
	gh := rt.Project().Config().Github
	return github.NewClient(github.ClientParams{
		Owner:   gh.Owner(),
		Repo:    gh.Repo(),
		BaseURL: rt.GithubURL,
	})
}
