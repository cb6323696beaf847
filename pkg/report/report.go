// Package report renders a markdown overview of a project: its settings, the
// available types of every category, environment services, command hooks and
// tasks.
package report

import (
	_ "embed"
	"sort"
	"strings"
	"text/template"

	"github.com/charmbracelet/glamour"
	"github.com/pkg/errors"
	"github.com/pseudomuto/projectx/pkg/config"
	"github.com/pseudomuto/projectx/pkg/engine"
	"github.com/pseudomuto/projectx/pkg/hooks"
	"github.com/pseudomuto/projectx/pkg/project"
	"github.com/pseudomuto/projectx/pkg/types"
)

//go:embed report.md.tmpl
var reportTemplate string

var tmpl = template.Must(template.New("report").Parse(reportTemplate))

type (
	// Data is the input of a report.
	Data struct {
		Project    *project.Project
		Categories []Category
		Services   []engine.ServiceStatus
		Hooks      hooks.Registry
		Tasks      []project.Task
	}

	// Category lists the types available for one category.
	Category struct {
		Name  string
		Types []Type
	}

	// Type is a single available type.
	Type struct {
		ID        string
		Label     string
		Classname string
		Selected  bool
	}

	hookLine struct {
		Command string
		Action  string
		Phase   hooks.Phase
		Hook    string
	}

	view struct {
		Name         string
		Root         string
		DocRoot      string
		Type         string
		Engine       string
		Platform     string
		Version      string
		Host         string
		Github       string
		Categories   []Category
		Environments []config.Environment
		Services     []engine.ServiceStatus
		Hooks        []hookLine
		Tasks        []project.Task
	}
)

// Markdown renders the report as markdown.
func Markdown(d Data) (string, error) {
	v := view{
		Name:       d.Project.Name(),
		Root:       d.Project.Root(),
		DocRoot:    d.Project.DocRoot(),
		Categories: d.Categories,
		Services:   d.Services,
		Hooks:      flatten(d.Hooks),
		Tasks:      d.Tasks,
	}

	if cfg := d.Project.Config(); cfg != nil {
		v.Type = cfg.Type
		v.Engine = cfg.Engine
		v.Platform = cfg.Platform
		v.Version = cfg.Version
		v.Host = cfg.HostName()
		v.Github = cfg.Github.URL
		v.Environments = cfg.Remote.Environments
	}

	var b strings.Builder
	if err := tmpl.Execute(&b, v); err != nil {
		return "", errors.Wrap(err, "failed to render report")
	}

	return b.String(), nil
}

// Render formats markdown for the terminal. A width of zero keeps glamour's
// default wrapping.
func Render(md string, width int) (string, error) {
	opts := []glamour.TermRendererOption{glamour.WithAutoStyle()}
	if width > 0 {
		opts = append(opts, glamour.WithWordWrap(width))
	}

	renderer, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return "", errors.Wrap(err, "failed to create markdown renderer")
	}

	out, err := renderer.Render(md)
	return out, errors.Wrap(err, "failed to render markdown")
}

func flatten(reg hooks.Registry) []hookLine {
	var lines []hookLine
	for command, actions := range reg {
		for action, hs := range actions {
			for _, phase := range []hooks.Phase{hooks.Before, hooks.After} {
				for _, h := range hs.Phase(phase) {
					lines = append(lines, hookLine{Command: command, Action: action, Phase: phase, Hook: h.String()})
				}
			}
		}
	}

	// phases are appended in order, so a stable sort keeps before ahead of after
	sort.SliceStable(lines, func(i, j int) bool {
		if lines[i].Command != lines[j].Command {
			return lines[i].Command < lines[j].Command
		}
		return lines[i].Action < lines[j].Action
	})

	return lines
}

// Types collects the available types of a resolver, marking the selected
// identifier.
func Types[T any](r *types.Resolver[T], selected string) Category {
	labels := r.Options()
	table := r.Types()

	c := Category{Name: r.Category().Name}
	for _, id := range table.IDs() {
		c.Types = append(c.Types, Type{
			ID:        id,
			Label:     labels[id],
			Classname: table[id],
			Selected:  strings.EqualFold(id, selected),
		})
	}

	return c
}
