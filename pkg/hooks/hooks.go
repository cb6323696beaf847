// Package hooks runs the command_hooks declared in project-x.yml around
// projectx commands.
//
// Hooks are declared per command and action, before or after it runs:
//
//	command_hooks:
//	  engine:
//	    up:
//	      after:
//	        - drush cr                      # shell hook
//	        - type: command                 # re-dispatched projectx command
//	          command: project:install
//	          options:
//	            force: true
//	          arguments: [default]
//
// Shell hooks are interpreted in-process (POSIX shell semantics) from the
// project root. Command hooks call back into the CLI.
package hooks

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

const (
	// TypeShell runs the command through the shell interpreter
	TypeShell = "shell"

	// TypeCommand re-dispatches a projectx command
	TypeCommand = "command"

	// Before hooks run ahead of the action
	Before Phase = "before"

	// After hooks run once the action succeeded
	After Phase = "after"
)

// ErrInvalidHook is returned for hook entries that cannot be decoded.
var ErrInvalidHook = errors.New("invalid command hook")

type (
	// Phase selects when a hook runs relative to its action.
	Phase string

	// Hook is a single hook entry.
	Hook struct {
		Type      string
		Command   string
		Options   map[string]any
		Arguments []string
	}

	// Hooks groups the entries of one command action.
	Hooks struct {
		Before []Hook
		After  []Hook
	}

	// Registry maps command → action → hooks.
	Registry map[string]map[string]Hooks
)

// Parse decodes the command_hooks configuration block.
func Parse(raw map[string]any) (Registry, error) {
	reg := make(Registry, len(raw))
	for command, actions := range raw {
		actionMap, ok := actions.(map[string]any)
		if !ok {
			return nil, errors.Wrapf(ErrInvalidHook, "command_hooks.%s must be a map", command)
		}

		reg[command] = make(map[string]Hooks, len(actionMap))
		for action, phases := range actionMap {
			phaseMap, ok := phases.(map[string]any)
			if !ok {
				return nil, errors.Wrapf(ErrInvalidHook, "command_hooks.%s.%s must be a map", command, action)
			}

			var hooks Hooks
			var err error
			if hooks.Before, err = parseList(phaseMap[string(Before)], command, action, Before); err != nil {
				return nil, err
			}

			if hooks.After, err = parseList(phaseMap[string(After)], command, action, After); err != nil {
				return nil, err
			}

			reg[command][action] = hooks
		}
	}

	return reg, nil
}

func parseList(raw any, command, action string, phase Phase) ([]Hook, error) {
	if raw == nil {
		return nil, nil
	}

	items, ok := raw.([]any)
	if !ok {
		// a single entry is accepted in place of a list
		items = []any{raw}
	}

	hooks := make([]Hook, 0, len(items))
	for i, item := range items {
		hook, err := parseHook(item)
		if err != nil {
			return nil, errors.Wrapf(err, "command_hooks.%s.%s.%s[%d]", command, action, phase, i)
		}

		hooks = append(hooks, hook)
	}

	return hooks, nil
}

func parseHook(item any) (Hook, error) {
	switch v := item.(type) {
	case string:
		if strings.TrimSpace(v) == "" {
			return Hook{}, errors.Wrap(ErrInvalidHook, "empty command")
		}
		return Hook{Type: TypeShell, Command: v}, nil

	case map[string]any:
		hook := Hook{Type: TypeShell}
		if t, ok := v["type"].(string); ok && t != "" {
			hook.Type = strings.ToLower(t)
		}

		if hook.Type != TypeShell && hook.Type != TypeCommand {
			return Hook{}, errors.Wrapf(ErrInvalidHook, "unknown type %q", hook.Type)
		}

		hook.Command, _ = v["command"].(string)
		if strings.TrimSpace(hook.Command) == "" {
			return Hook{}, errors.Wrap(ErrInvalidHook, "missing command")
		}

		if opts, ok := v["options"].(map[string]any); ok {
			hook.Options = opts
		}

		if args, ok := v["arguments"].([]any); ok {
			for _, a := range args {
				hook.Arguments = append(hook.Arguments, fmt.Sprint(a))
			}
		}

		return hook, nil

	default:
		return Hook{}, errors.Wrapf(ErrInvalidHook, "unsupported entry %T", item)
	}
}

// Lookup returns the hooks for a command action. Names are matched
// case-insensitively.
func (r Registry) Lookup(command, action string) Hooks {
	for c, actions := range r {
		if !strings.EqualFold(c, command) {
			continue
		}

		for a, hooks := range actions {
			if strings.EqualFold(a, action) {
				return hooks
			}
		}
	}

	return Hooks{}
}

// Phase returns the hooks of the given phase.
func (h Hooks) Phase(p Phase) []Hook {
	if p == Before {
		return h.Before
	}

	return h.After
}

// Args builds the CLI arguments of a command hook: the command split on ':'
// into subcommands, then --option flags in sorted order, then arguments.
func (h Hook) Args() []string {
	args := strings.Split(h.Command, ":")

	keys := make([]string, 0, len(h.Options))
	for k := range h.Options {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		switch v := h.Options[k].(type) {
		case bool:
			if v {
				args = append(args, "--"+k)
			}
		case nil:
			args = append(args, "--"+k)
		default:
			args = append(args, fmt.Sprintf("--%s=%v", k, v))
		}
	}

	return append(args, h.Arguments...)
}

func (h Hook) String() string {
	if h.Type == TypeCommand {
		return strings.Join(h.Args(), " ")
	}

	return h.Command
}
