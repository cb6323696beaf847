package scanner

import (
	"strings"
)

const (
	// KindClass marks a class declaration
	KindClass = "class"

	// KindInterface marks an interface declaration
	KindInterface = "interface"

	// KindTrait marks a trait declaration
	KindTrait = "trait"

	// KindEnum marks an enum declaration
	KindEnum = "enum"
)

type (
	// ClassInfo holds the structural facts extracted from a single source file.
	//
	// All class names are fully-qualified without a leading backslash.
	ClassInfo struct {
		// File is the path the declaration was read from (empty when parsed from a reader)
		File string

		// Namespace is the declared namespace, if any
		Namespace string

		// Kind is one of KindClass, KindInterface, KindTrait or KindEnum
		Kind string

		// Class is the fully-qualified name of the declaration
		Class string

		// Extends is the fully-qualified parent name, if any
		Extends string

		// Implements lists the fully-qualified interface names in declaration order
		Implements []string

		// Uses lists the top-level import directives in declaration order
		Uses []Use

		// Constants maps class constant names to their string literal values
		Constants map[string]string

		// Methods lists the public method names in declaration order
		Methods []string

		// Returns maps method names to the string literal they trivially return
		Returns map[string]string
	}

	// Use is a single import directive.
	Use struct {
		// Name is the fully-qualified imported name
		Name string

		// Alias is the name introduced by an "as" clause, if any
		Alias string
	}
)

// ShortName returns the unqualified name of the declaration.
func (c *ClassInfo) ShortName() string {
	return shortName(c.Class)
}

// Implementing reports whether the declaration implements the given interface.
func (c *ClassInfo) Implementing(iface string) bool {
	for _, impl := range c.Implements {
		if sameClass(impl, iface) {
			return true
		}
	}

	return false
}

// Constant returns the string value of a class constant.
func (c *ClassInfo) Constant(name string) (string, bool) {
	v, ok := c.Constants[name]
	return v, ok
}

// Return returns the literal returned by a method. Method names are matched
// case-insensitively like PHP does.
func (c *ClassInfo) Return(method string) (string, bool) {
	for name, v := range c.Returns {
		if equalFold(name, method) {
			return v, true
		}
	}

	return "", false
}

// qualify prefixes a declared name with the namespace. Imports never apply to
// declarations.
func (c *ClassInfo) qualify(name string) string {
	if c.Namespace == "" {
		return name
	}

	return c.Namespace + `\` + name
}

// resolve turns a name as written in source into a fully-qualified name.
func (c *ClassInfo) resolve(raw string) string {
	if raw == "" {
		return ""
	}

	if strings.HasPrefix(raw, `\`) {
		return strings.TrimPrefix(raw, `\`)
	}

	first, rest, qualified := strings.Cut(raw, `\`)
	if !qualified {
		if fqn, ok := c.lookupImport(raw); ok {
			return fqn
		}
	} else if fqn, ok := c.importFor(first); ok {
		return fqn + `\` + rest
	}

	if c.Namespace != "" {
		return c.Namespace + `\` + raw
	}

	return raw
}

// lookupImport finds the import for an unqualified name. Exact alias or last
// segment matches win; otherwise the first import containing the name is used.
func (c *ClassInfo) lookupImport(name string) (string, bool) {
	if fqn, ok := c.importFor(name); ok {
		return fqn, true
	}

	for _, use := range c.Uses {
		if strings.Contains(use.Name, name) {
			return use.Name, true
		}
	}

	return "", false
}

func (c *ClassInfo) importFor(name string) (string, bool) {
	for _, use := range c.Uses {
		alias := use.Alias
		if alias == "" {
			alias = shortName(use.Name)
		}

		if equalFold(alias, name) {
			return use.Name, true
		}
	}

	return "", false
}

func shortName(class string) string {
	if i := strings.LastIndex(class, `\`); i >= 0 {
		return class[i+1:]
	}

	return class
}

// sameClass compares class names the way PHP does: case-insensitive and
// ignoring a leading namespace separator.
func sameClass(a, b string) bool {
	return equalFold(strings.TrimPrefix(a, `\`), strings.TrimPrefix(b, `\`))
}

func equalFold(a, b string) bool {
	return strings.EqualFold(a, b)
}
