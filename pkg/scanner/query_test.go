package scanner_test

import (
	"path/filepath"
	"testing"

	"github.com/pseudomuto/projectx/pkg/scanner"
	"github.com/stretchr/testify/require"
	"gotest.tools/v3/fs"
)

func classFile(class string) fs.PathOp {
	return fs.WithFile(class+".php", "<?php\nnamespace App;\n\nclass "+class+" {}\n")
}

// sourceTree builds:
//
//	Root.php             depth 0
//	a/One.php            depth 1
//	a/b/Two.php          depth 2
//	a/b/c/Three.php      depth 3
//	.hidden/Hidden.php   skipped
//	notes.txt            not matched
func sourceTree(t *testing.T) *fs.Dir {
	t.Helper()

	return fs.NewDir(t, "scanner",
		classFile("Root"),
		fs.WithFile("notes.txt", "class Nope {}"),
		fs.WithDir("a",
			classFile("One"),
			fs.WithDir("b",
				classFile("Two"),
				fs.WithDir("c", classFile("Three")),
			),
		),
		fs.WithDir(".hidden", classFile("Hidden")),
	)
}

func TestDiscover_Depth(t *testing.T) {
	dir := sourceTree(t)

	tests := []struct {
		name    string
		depth   int
		classes []string
	}{
		{name: "top level only", depth: 0, classes: []string{`App\Root`}},
		{name: "one level", depth: 1, classes: []string{`App\Root`, `App\One`}},
		{name: "everything", depth: 10, classes: []string{`App\Root`, `App\One`, `App\Two`, `App\Three`}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := scanner.New().SetSearchDepth(tt.depth)
			require.NoError(t, q.AddSearchLocation(dir.Path()))

			found, err := q.Discover()
			require.NoError(t, err)
			require.ElementsMatch(t, tt.classes, values(found))
		})
	}
}

func TestDiscover_DepthReplaced(t *testing.T) {
	dir := sourceTree(t)

	q := scanner.New().SetSearchDepth(0).SetSearchDepth(2)
	require.NoError(t, q.AddSearchLocation(dir.Path()))

	found, err := q.Discover()
	require.NoError(t, err)
	require.ElementsMatch(t, []string{`App\Root`, `App\One`, `App\Two`}, values(found))

	require.NoError(t, q.SetSearchDepthExpr(">= 1"))
	found, err = q.Discover()
	require.NoError(t, err)
	require.ElementsMatch(t, []string{`App\One`, `App\Two`}, values(found))
}

func TestDiscover_DepthExpressions(t *testing.T) {
	dir := sourceTree(t)

	tests := []struct {
		name    string
		exprs   []string
		classes []string
	}{
		{name: "less than", exprs: []string{"< 2"}, classes: []string{`App\Root`, `App\One`}},
		{name: "greater than", exprs: []string{"> 1"}, classes: []string{`App\Two`, `App\Three`}},
		{name: "equal", exprs: []string{"== 2"}, classes: []string{`App\Two`}},
		{name: "bare number", exprs: []string{"3"}, classes: []string{`App\Three`}},
		{name: "intersected", exprs: []string{">= 1", "<= 2"}, classes: []string{`App\One`, `App\Two`}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := scanner.New()
			for _, expr := range tt.exprs {
				require.NoError(t, q.SetSearchDepthExpr(expr))
			}
			require.NoError(t, q.AddSearchLocation(dir.Path()))

			found, err := q.Discover()
			require.NoError(t, err)
			require.ElementsMatch(t, tt.classes, values(found))
		})
	}
}

func TestDiscover_AbsolutePaths(t *testing.T) {
	dir := sourceTree(t)

	q := scanner.New().SetSearchDepth(1)
	require.NoError(t, q.AddSearchLocation(dir.Path()))

	found, err := q.Discover()
	require.NoError(t, err)
	require.Equal(t, map[string]string{
		filepath.Join(dir.Path(), "Root.php"):     `App\Root`,
		filepath.Join(dir.Path(), "a", "One.php"): `App\One`,
	}, found)
}

func TestDiscover_Filters(t *testing.T) {
	dir := fs.NewDir(t, "scanner",
		fs.WithFile("DockerEngineType.php", `<?php
namespace Acme\Engine;
use ProjectX\Engine\EngineType;
class DockerEngineType extends EngineType implements Configurable {}
`),
		fs.WithFile("LandoEngineType.php", `<?php
namespace Acme\Engine;
class LandoEngineType extends \ProjectX\Engine\EngineType {}
`),
		fs.WithFile("Helper.php", `<?php
namespace Acme\Engine;
class Helper {}
`),
		fs.WithFile("functions.php", "<?php\nfunction helper() {}\n"),
	)

	tests := []struct {
		name    string
		query   func(q *scanner.Query) *scanner.Query
		classes []string
	}{
		{
			name:    "no filters",
			query:   func(q *scanner.Query) *scanner.Query { return q },
			classes: []string{`Acme\Engine\DockerEngineType`, `Acme\Engine\LandoEngineType`, `Acme\Engine\Helper`},
		},
		{
			name:    "pattern",
			query:   func(q *scanner.Query) *scanner.Query { return q.SetSearchPattern("*EngineType.php") },
			classes: []string{`Acme\Engine\DockerEngineType`, `Acme\Engine\LandoEngineType`},
		},
		{
			name: "extends",
			query: func(q *scanner.Query) *scanner.Query {
				return q.MatchExtend(`\projectx\engine\enginetype`)
			},
			classes: []string{`Acme\Engine\DockerEngineType`, `Acme\Engine\LandoEngineType`},
		},
		{
			name:    "extends nothing",
			query:   func(q *scanner.Query) *scanner.Query { return q.MatchExtend("NOTHING") },
			classes: []string{},
		},
		{
			name:    "implements",
			query:   func(q *scanner.Query) *scanner.Query { return q.MatchImplement("Configurable") },
			classes: []string{`Acme\Engine\DockerEngineType`},
		},
		{
			name: "class by short name",
			query: func(q *scanner.Query) *scanner.Query {
				return q.MatchClasses("Helper", `Acme\Engine\LandoEngineType`)
			},
			classes: []string{`Acme\Engine\Helper`, `Acme\Engine\LandoEngineType`},
		},
		{
			name: "filters combine",
			query: func(q *scanner.Query) *scanner.Query {
				return q.MatchExtend(`ProjectX\Engine\EngineType`).MatchClass("LandoEngineType")
			},
			classes: []string{`Acme\Engine\LandoEngineType`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := tt.query(scanner.New())
			require.NoError(t, q.AddSearchLocation(dir.Path()))

			found, err := q.Discover()
			require.NoError(t, err)
			require.ElementsMatch(t, tt.classes, values(found))
		})
	}
}

func TestDiscover_Errors(t *testing.T) {
	t.Run("no search locations", func(t *testing.T) {
		_, err := scanner.New().Discover()
		require.ErrorIs(t, err, scanner.ErrNoSearchLocations)
	})

	t.Run("missing location", func(t *testing.T) {
		err := scanner.New().AddSearchLocation(filepath.Join(t.TempDir(), "missing"))
		require.ErrorIs(t, err, scanner.ErrLocationNotFound)
	})

	t.Run("location is a file", func(t *testing.T) {
		dir := fs.NewDir(t, "scanner", classFile("Root"))
		err := scanner.New().AddSearchLocations(dir.Path(), dir.Join("Root.php"))
		require.ErrorIs(t, err, scanner.ErrLocationNotFound)
	})

	t.Run("invalid depth", func(t *testing.T) {
		require.ErrorIs(t, scanner.New().SetSearchDepthExpr("about 3"), scanner.ErrInvalidDepth)
		require.ErrorIs(t, scanner.New().SetSearchDepthExpr("< 0"), scanner.ErrInvalidDepth)
	})
}

func TestDiscover_LoadClasses(t *testing.T) {
	dir := sourceTree(t)

	loaded := scanner.ClassMap{}
	existing := &scanner.ClassInfo{Class: `App\Root`, File: "elsewhere.php"}
	require.NoError(t, loaded.Load(existing.File, existing))

	q := scanner.New().SetSearchDepth(1).LoadClasses(loaded)
	require.NoError(t, q.AddSearchLocation(dir.Path()))

	_, err := q.Discover()
	require.NoError(t, err)

	require.True(t, loaded.Defined(`app\one`))
	require.False(t, loaded.Defined(`App\Two`))

	root, ok := loaded.Get(`\App\Root`)
	require.True(t, ok)
	require.Equal(t, "elsewhere.php", root.File)

	one, ok := loaded.Get(`App\One`)
	require.True(t, ok)
	require.Equal(t, dir.Join("a", "One.php"), one.File)
}

func values(m map[string]string) []string {
	out := make([]string, 0, len(m))
	for _, v := range m {
		out = append(out, v)
	}

	return out
}
