package types

import (
	"sort"
	"strings"

	"github.com/pkg/errors"
	"github.com/pseudomuto/projectx/pkg/project"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ErrMissingDefinition is returned by Create when no identifier is configured.
var ErrMissingDefinition = errors.New("missing type definition")

var (
	// Engine is the environment engine category.
	Engine = Category{Name: "engine", ConfigKey: "engine", Subpath: "Engine", Base: `ProjectX\Engine\EngineType`}

	// Project is the project (framework) category.
	Project = Category{Name: "project", ConfigKey: "type", Subpath: "Project", Base: `ProjectX\Project\ProjectType`}

	// Platform is the deployment platform category.
	Platform = Category{Name: "platform", ConfigKey: "platform", Subpath: "Platform", Base: `ProjectX\Platform\PlatformType`}

	// Categories lists every category in display order.
	Categories = []Category{Engine, Project, Platform}

	titler = cases.Title(language.English)
)

type (
	// Table maps type identifiers to implementation classnames.
	Table map[string]string

	// Category describes one family of pluggable types.
	Category struct {
		// Name is the category name, e.g. engine
		Name string

		// ConfigKey is the project-x.yml key selecting the identifier
		ConfigKey string

		// Subpath is the plugin source subdirectory, e.g. Engine
		Subpath string

		// Base is the classname plugin types extend
		Base string

		// Extends lists further parents a plugin type may extend instead of
		// Base. Resolvers fill it with their built-in classnames.
		Extends []string
	}

	// Discovered is a type found in an installed plugin package.
	Discovered struct {
		ID        string
		Label     string
		Classname string

		// Package is the composer package that declared the type
		Package string
	}

	// Discoverer finds plugin types for a category.
	Discoverer interface {
		Types(c Category) ([]Discovered, error)
	}

	// DiscovererFunc adapts a function to Discoverer.
	DiscovererFunc func(c Category) ([]Discovered, error)

	// Definition binds an identifier and classname to a Go constructor.
	Definition[T any] struct {
		ID        string
		Label     string
		Classname string
		New       func(*project.Project) (T, error)
	}

	// ResolutionError is returned when a classname has no Go implementation.
	ResolutionError struct {
		Category  string
		ID        string
		Classname string
	}
)

// Types implements Discoverer.
func (f DiscovererFunc) Types(c Category) ([]Discovered, error) {
	return f(c)
}

// Suffix returns the plugin file/class suffix, e.g. EngineType.
func (c Category) Suffix() string {
	return c.Subpath + "Type"
}

// Parents returns every classname a plugin type of the category may extend.
func (c Category) Parents() []string {
	return append([]string{c.Base}, c.Extends...)
}

// Pattern returns the plugin filename glob, e.g. *EngineType.php.
func (c Category) Pattern() string {
	return "*" + c.Suffix() + ".php"
}

func (e *ResolutionError) Error() string {
	return "unable to resolve " + e.Category + " type " + e.ID + " (" + e.Classname + ")"
}

// IDs returns the identifiers of the table in sorted order.
func (t Table) IDs() []string {
	ids := make([]string, 0, len(t))
	for id := range t {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	return ids
}

// Label derives a display label from an identifier (drupal → Drupal,
// docker_compose → Docker Compose).
func Label(id string) string {
	return titler.String(strings.NewReplacer("_", " ", "-", " ").Replace(id))
}

func classKey(class string) string {
	return strings.ToLower(strings.TrimPrefix(class, `\`))
}
