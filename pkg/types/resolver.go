package types

import (
	"log/slog"
	"strings"

	"github.com/pseudomuto/projectx/pkg/project"
)

type (
	// ResolverParams configures a Resolver.
	ResolverParams[T any] struct {
		Category Category
		Project  *project.Project

		// Null is used for identifiers that resolve to nothing.
		Null Definition[T]

		// Builtins are always available and win over discovered types.
		Builtins []Definition[T]

		// Linked provides Go constructors for plugin classnames.
		Linked []Definition[T]

		// Discoverer finds plugin types. Optional.
		Discoverer Discoverer
	}

	// Resolver maps identifiers of one category to implementations.
	Resolver[T any] struct {
		params     ResolverParams[T]
		byClass    map[string]Definition[T]
		discovered []Discovered
		loaded     bool
	}
)

// NewResolver creates a Resolver. Discovery runs lazily on first use.
//
// Example:
//
//	r := types.NewResolver(types.ResolverParams[engine.Engine]{
//		Category:   types.Engine,
//		Project:    proj,
//		Null:       engine.NullDefinition,
//		Builtins:   engine.Builtins,
//		Discoverer: loader,
//	})
//
//	eng, err := r.Create(proj.Config().Engine)
func NewResolver[T any](p ResolverParams[T]) *Resolver[T] {
	r := &Resolver[T]{params: p, byClass: make(map[string]Definition[T])}

	// linked first so a built-in classname is never shadowed
	for _, def := range p.Linked {
		r.byClass[classKey(def.Classname)] = def
	}

	for _, def := range p.Builtins {
		r.byClass[classKey(def.Classname)] = def
	}

	r.byClass[classKey(p.Null.Classname)] = p.Null
	return r
}

// Category returns the resolver's category.
func (r *Resolver[T]) Category() Category {
	return r.params.Category
}

// Discovered returns the plugin types found for the category. Discovery errors
// are logged and treated as no plugins.
func (r *Resolver[T]) Discovered() []Discovered {
	if r.loaded {
		return r.discovered
	}

	r.loaded = true
	if r.params.Discoverer == nil {
		return nil
	}

	c := r.params.Category
	c.Extends = append([]string(nil), c.Extends...)
	for _, def := range r.params.Builtins {
		c.Extends = append(c.Extends, def.Classname)
	}

	found, err := r.params.Discoverer.Types(c)
	if err != nil {
		slog.Warn("Plugin discovery failed", "category", r.params.Category.Name, "error", err)
		return nil
	}

	r.discovered = found
	return found
}

// Types returns the merged identifier → classname table. Built-in identifiers
// win over discovered ones.
func (r *Resolver[T]) Types() Table {
	table := make(Table)
	for _, d := range r.Discovered() {
		table[d.ID] = d.Classname
	}

	for _, def := range r.params.Builtins {
		table[def.ID] = def.Classname
	}

	return table
}

// Options returns identifier → display label for every available type.
func (r *Resolver[T]) Options() map[string]string {
	opts := make(map[string]string)
	for _, d := range r.Discovered() {
		opts[d.ID] = labelOr(d.Label, d.ID)
	}

	for _, def := range r.params.Builtins {
		opts[def.ID] = labelOr(def.Label, def.ID)
	}

	return opts
}

// Classname resolves an identifier. Unknown identifiers resolve to the null
// classname.
func (r *Resolver[T]) Classname(id string) string {
	if class, ok := r.Types()[strings.ToLower(id)]; ok {
		return class
	}

	return r.params.Null.Classname
}

// Create constructs the implementation for id.
//
// An empty id fails with ErrMissingDefinition. Unknown identifiers produce the
// null implementation, while discovered classnames without a linked Go
// definition fail with a *ResolutionError.
func (r *Resolver[T]) Create(id string) (T, error) {
	var zero T
	if strings.TrimSpace(id) == "" {
		return zero, ErrMissingDefinition
	}

	class := r.Classname(id)
	def, ok := r.byClass[classKey(class)]
	if !ok || def.New == nil {
		return zero, &ResolutionError{Category: r.params.Category.Name, ID: id, Classname: class}
	}

	return def.New(r.params.Project)
}

// CreateConfigured constructs the implementation selected by the project
// configuration key of the category.
func (r *Resolver[T]) CreateConfigured() (T, error) {
	return r.Create(configured(r.params.Project, r.params.Category))
}

func configured(p *project.Project, c Category) string {
	if p == nil || p.Config() == nil {
		return ""
	}

	cfg := p.Config()
	switch c.ConfigKey {
	case Engine.ConfigKey:
		return cfg.Engine
	case Project.ConfigKey:
		return cfg.Type
	case Platform.ConfigKey:
		return cfg.Platform
	default:
		return ""
	}
}

func labelOr(label, id string) string {
	if label != "" {
		return label
	}

	return Label(id)
}
