package platform_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/pseudomuto/projectx/pkg/cmd/testutil"
	"github.com/pseudomuto/projectx/pkg/config"
	"github.com/pseudomuto/projectx/pkg/platform"
	"github.com/pseudomuto/projectx/pkg/project"
	"github.com/stretchr/testify/require"
)

func newProject(t *testing.T, yml string) *project.Project {
	t.Helper()

	cfg, err := config.LoadConfig(strings.NewReader(yml))
	require.NoError(t, err)

	return project.New(project.ProjectParams{Dir: t.TempDir(), Config: cfg})
}

func buildDir(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "docroot"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "docroot", "index.php"), []byte("<?php\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "composer.json"), []byte("{}\n"), 0o644))

	return dir
}

func TestResolver(t *testing.T) {
	proj := newProject(t, "name: acme\nplatform: git\ngithub:\n  url: https://github.com/acme/site\n")
	r := platform.NewResolver(proj, nil)

	p, err := platform.Create(r)
	require.NoError(t, err)
	require.IsType(t, &platform.Git{}, p)

	opts := p.(*platform.Git).Options()
	require.Equal(t, "https://github.com/acme/site", opts.Remote)
	require.Equal(t, "main", opts.Branch)

	p, err = r.Create("acquia")
	require.NoError(t, err)
	require.IsType(t, platform.Null{}, p)
}

func TestGit_NoRemote(t *testing.T) {
	g, err := platform.NewGit(newProject(t, "name: acme\n"))
	require.NoError(t, err)

	_, err = g.Deploy(context.Background(), buildDir(t), platform.DeployOptions{})
	require.ErrorIs(t, err, platform.ErrNoRemote)
}

func TestGit_DryRun(t *testing.T) {
	proj := newProject(t, "name: acme\noptions:\n  git:\n    remote: git@example.com:acme/build.git\n    branch: release\n")
	g, err := platform.NewGit(proj)
	require.NoError(t, err)

	dir := buildDir(t)
	res, err := g.Deploy(context.Background(), dir, platform.DeployOptions{DryRun: true, Message: "Release 1.0"})
	require.NoError(t, err)
	require.False(t, res.Pushed)
	require.Equal(t, "release", res.Branch)

	repo, err := git.PlainOpen(dir)
	require.NoError(t, err)

	head, err := repo.Head()
	require.NoError(t, err)
	require.Equal(t, plumbing.NewBranchReferenceName("release"), head.Name())
	require.Equal(t, res.Revision, head.Hash().String())

	commit, err := repo.CommitObject(head.Hash())
	require.NoError(t, err)
	require.Equal(t, "Release 1.0", commit.Message)

	files, err := commit.Files()
	require.NoError(t, err)

	var names []string
	require.NoError(t, files.ForEach(func(f *object.File) error {
		names = append(names, f.Name)
		return nil
	}))
	require.ElementsMatch(t, []string{"composer.json", "docroot/index.php"}, names)
}

func TestGit_Push(t *testing.T) {
	testutil.SkipIfNoBinary(t, "git")

	remote := t.TempDir()
	_, err := git.PlainInit(remote, true)
	require.NoError(t, err)

	proj := newProject(t, "name: acme\noptions:\n  git:\n    remote: "+remote+"\n")
	g, err := platform.NewGit(proj)
	require.NoError(t, err)

	dir := buildDir(t)
	res, err := g.Deploy(context.Background(), dir, platform.DeployOptions{Tag: "v1.0.0"})
	require.NoError(t, err)
	require.True(t, res.Pushed)

	bare, err := git.PlainOpen(remote)
	require.NoError(t, err)

	ref, err := bare.Reference(plumbing.NewBranchReferenceName("main"), true)
	require.NoError(t, err)
	require.Equal(t, res.Revision, ref.Hash().String())

	_, err = bare.Reference(plumbing.NewTagReferenceName("v1.0.0"), true)
	require.NoError(t, err)

	// a second build replaces the branch
	require.NoError(t, os.WriteFile(filepath.Join(dir, "composer.json"), []byte("{\"name\":\"acme/site\"}\n"), 0o644))
	res2, err := g.Deploy(context.Background(), dir, platform.DeployOptions{})
	require.NoError(t, err)
	require.NotEqual(t, res.Revision, res2.Revision)

	ref, err = bare.Reference(plumbing.NewBranchReferenceName("main"), true)
	require.NoError(t, err)
	require.Equal(t, res2.Revision, ref.Hash().String())
}

func TestNull(t *testing.T) {
	res, err := platform.Null{}.Deploy(context.Background(), t.TempDir(), platform.DeployOptions{})
	require.NoError(t, err)
	require.False(t, res.Pushed)
}
