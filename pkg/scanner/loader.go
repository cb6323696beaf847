package scanner

import (
	"strings"
)

// ClassLoader registers discovered declarations with the running process.
//
// Go cannot load PHP at runtime, so "loading" a class means recording it in a
// registry that later lookups consult.
type ClassLoader interface {
	// Defined reports whether the class is already known.
	Defined(class string) bool

	// Load records the declaration found at path.
	Load(path string, info *ClassInfo) error
}

// ClassMap is an in-memory ClassLoader keyed by lowercased class name.
type ClassMap map[string]*ClassInfo

// Defined implements ClassLoader.
func (m ClassMap) Defined(class string) bool {
	_, ok := m[classKey(class)]
	return ok
}

// Load implements ClassLoader.
func (m ClassMap) Load(path string, info *ClassInfo) error {
	m[classKey(info.Class)] = info
	return nil
}

// Get returns the recorded declaration for class.
func (m ClassMap) Get(class string) (*ClassInfo, bool) {
	info, ok := m[classKey(class)]
	return info, ok
}

func classKey(class string) string {
	return strings.ToLower(strings.TrimPrefix(class, `\`))
}
