package platform

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/go-git/go-git/v5"
	gitconfig "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/go-git/go-git/v5/plumbing/transport/http"
	"github.com/pkg/errors"
	"github.com/pseudomuto/projectx/pkg/consts"
	"github.com/pseudomuto/projectx/pkg/project"
)

const (
	// GitID is the identifier of the git platform
	GitID = "git"

	// RemoteName is the remote builds are pushed to
	RemoteName = "deploy"
)

// ErrNoRemote is returned when no deployment remote is configured.
var ErrNoRemote = errors.New("no git deployment remote configured")

type (
	// GitOptions is the options.git block.
	GitOptions struct {
		Remote string `mapstructure:"remote"`
		Branch string `mapstructure:"branch"`
		Author struct {
			Name  string `mapstructure:"name"`
			Email string `mapstructure:"email"`
		} `mapstructure:"author"`
	}

	// Git commits the build directory and force pushes it to a deployment
	// repository.
	Git struct {
		project *project.Project
		opts    GitOptions
		now     func() time.Time
	}
)

// NewGit creates the git platform. The remote defaults to the project's
// GitHub repository.
func NewGit(p *project.Project) (*Git, error) {
	g := &Git{project: p, now: time.Now}
	if err := p.Options("git", &g.opts); err != nil {
		return nil, err
	}

	if g.opts.Remote == "" && p.Config() != nil {
		g.opts.Remote = p.Config().Github.URL
	}

	if g.opts.Branch == "" {
		g.opts.Branch = consts.DefaultBranch
	}

	if g.opts.Author.Name == "" {
		g.opts.Author.Name = "projectx"
	}

	if g.opts.Author.Email == "" {
		g.opts.Author.Email = "projectx@localhost"
	}

	return g, nil
}

// Options returns the effective options.
func (g *Git) Options() GitOptions {
	return g.opts
}

// Deploy commits every file of buildDir on the deployment branch, tags the
// commit when asked and force pushes branch and tag.
func (g *Git) Deploy(ctx context.Context, buildDir string, opts DeployOptions) (*Result, error) {
	if g.opts.Remote == "" {
		return nil, ErrNoRemote
	}

	repo, err := g.open(buildDir)
	if err != nil {
		return nil, err
	}

	wt, err := repo.Worktree()
	if err != nil {
		return nil, errors.Wrap(err, "failed to open worktree")
	}

	if err := wt.AddWithOptions(&git.AddOptions{All: true}); err != nil {
		return nil, errors.Wrap(err, "failed to stage build")
	}

	sig := &object.Signature{Name: g.opts.Author.Name, Email: g.opts.Author.Email, When: g.now()}
	msg := opts.Message
	if msg == "" {
		msg = fmt.Sprintf("Build %s (%s)", g.project.Name(), sig.When.UTC().Format(time.RFC3339))
	}

	hash, err := wt.Commit(msg, &git.CommitOptions{Author: sig, AllowEmptyCommits: true})
	if err != nil {
		return nil, errors.Wrap(err, "failed to commit build")
	}

	res := &Result{Revision: hash.String(), Remote: g.opts.Remote, Branch: g.opts.Branch}
	branch := plumbing.NewBranchReferenceName(g.opts.Branch)
	refSpecs := []gitconfig.RefSpec{gitconfig.RefSpec(fmt.Sprintf("+%s:%s", branch, branch))}

	if opts.Tag != "" {
		if _, err := repo.CreateTag(opts.Tag, hash, &git.CreateTagOptions{Tagger: sig, Message: msg}); err != nil {
			return nil, errors.Wrapf(err, "failed to create tag %s", opts.Tag)
		}

		tag := plumbing.NewTagReferenceName(opts.Tag)
		refSpecs = append(refSpecs, gitconfig.RefSpec(fmt.Sprintf("+%s:%s", tag, tag)))
	}

	if opts.DryRun {
		slog.Info("Dry run, not pushing", "revision", res.Revision, "remote", res.Remote)
		return res, nil
	}

	err = repo.PushContext(ctx, &git.PushOptions{
		RemoteName: RemoteName,
		RefSpecs:   refSpecs,
		Force:      true,
		Auth:       httpAuth(g.opts.Remote),
	})
	if err != nil && !errors.Is(err, git.NoErrAlreadyUpToDate) {
		return nil, errors.Wrapf(err, "failed to push to %s", g.opts.Remote)
	}

	res.Pushed = true
	slog.Info("Deployed build", "revision", res.Revision, "remote", res.Remote, "branch", res.Branch)
	return res, nil
}

// open initializes (or reopens) the build repository on the deployment
// branch and points the deploy remote at the configured URL.
func (g *Git) open(dir string) (*git.Repository, error) {
	repo, err := git.PlainInitWithOptions(dir, &git.PlainInitOptions{
		InitOptions: git.InitOptions{DefaultBranch: plumbing.NewBranchReferenceName(g.opts.Branch)},
	})
	if errors.Is(err, git.ErrRepositoryAlreadyExists) {
		repo, err = git.PlainOpen(dir)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open build repository %s", dir)
	}

	if err := repo.DeleteRemote(RemoteName); err != nil && !errors.Is(err, git.ErrRemoteNotFound) {
		return nil, errors.Wrap(err, "failed to reset deploy remote")
	}

	if _, err := repo.CreateRemote(&gitconfig.RemoteConfig{Name: RemoteName, URLs: []string{g.opts.Remote}}); err != nil {
		return nil, errors.Wrap(err, "failed to create deploy remote")
	}

	return repo, nil
}

// httpAuth uses a token from the environment for https remotes. ssh remotes
// fall back to go-git's agent based default.
func httpAuth(remote string) transport.AuthMethod {
	if !strings.HasPrefix(remote, "https://") && !strings.HasPrefix(remote, "http://") {
		return nil
	}

	for _, env := range []string{"PROJECTX_GIT_TOKEN", "GITHUB_TOKEN", "GIT_TOKEN"} {
		if token := os.Getenv(env); token != "" {
			return &http.BasicAuth{Username: "x-access-token", Password: token}
		}
	}

	return nil
}
