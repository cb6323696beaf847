package scanner

import (
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// DefaultSearchPattern is the filename glob used when none is set.
const DefaultSearchPattern = "*" + FileExtension

var (
	// ErrNoSearchLocations is returned by Discover when no search root was added.
	ErrNoSearchLocations = errors.New("no search locations defined")

	// ErrLocationNotFound is returned when a search root does not exist.
	ErrLocationNotFound = errors.New("search location not found")
)

// Query describes a discovery run. Build it with the chained setters and
// execute it with Discover.
type Query struct {
	locations  []string
	pattern    string
	depth      Depth
	classes    []string
	extends    []string
	implements []string
	loader     ClassLoader
}

// New creates a Query with the default pattern and no depth bound.
func New() *Query {
	return &Query{
		pattern: DefaultSearchPattern,
		depth:   AnyDepth,
	}
}

// AddSearchLocation registers a search root. The path must be an existing
// directory and is stored in absolute form.
func (q *Query) AddSearchLocation(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return errors.Wrapf(err, "failed to resolve path: %s", path)
	}

	info, err := os.Stat(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return errors.Wrapf(ErrLocationNotFound, "%s", path)
		}
		return errors.Wrapf(err, "failed to stat search location: %s", path)
	}

	if !info.IsDir() {
		return errors.Wrapf(ErrLocationNotFound, "not a directory: %s", path)
	}

	q.locations = append(q.locations, abs)
	return nil
}

// AddSearchLocations registers several roots, stopping at the first failure.
func (q *Query) AddSearchLocations(paths ...string) error {
	for _, path := range paths {
		if err := q.AddSearchLocation(path); err != nil {
			return err
		}
	}

	return nil
}

// SetSearchPattern sets the filename glob (see filepath.Match).
func (q *Query) SetSearchPattern(pattern string) *Query {
	q.pattern = pattern
	return q
}

// SetSearchDepth limits results to files at most depth directories below a
// search root. Zero means top-level files only. It replaces any earlier bound,
// including one set through SetSearchDepthExpr.
func (q *Query) SetSearchDepth(depth int) *Query {
	q.depth = Depth{Min: 0, Max: max(depth, 0)}
	return q
}

// SetSearchDepthExpr narrows the depth bound with a comparator expression.
// Repeated calls intersect, so ">= 1" followed by "< 3" selects depths 1 and 2.
func (q *Query) SetSearchDepthExpr(expr string) error {
	d, err := ParseDepth(expr)
	if err != nil {
		return err
	}

	q.depth = q.depth.Intersect(d)
	return nil
}

// MatchClass restricts results to the named declaration.
func (q *Query) MatchClass(name string) *Query {
	return q.MatchClasses(name)
}

// MatchClasses restricts results to any of the named declarations.
func (q *Query) MatchClasses(names ...string) *Query {
	q.classes = append(q.classes, names...)
	return q
}

// MatchExtend restricts results to declarations with the given parent.
func (q *Query) MatchExtend(name string) *Query {
	return q.MatchExtends(name)
}

// MatchExtends restricts results to declarations extending any of the parents.
func (q *Query) MatchExtends(names ...string) *Query {
	q.extends = append(q.extends, names...)
	return q
}

// MatchImplement restricts results to declarations implementing the interface.
func (q *Query) MatchImplement(name string) *Query {
	return q.MatchImplements(name)
}

// MatchImplements restricts results to declarations implementing at least one
// of the interfaces.
func (q *Query) MatchImplements(names ...string) *Query {
	q.implements = append(q.implements, names...)
	return q
}

// LoadClasses hands every matched declaration not yet Defined to loader once
// discovery completes.
func (q *Query) LoadClasses(loader ClassLoader) *Query {
	q.loader = loader
	return q
}

// Discover runs the query and returns absolute file path → fully-qualified
// class name for every matching declaration.
func (q *Query) Discover() (map[string]string, error) {
	infos, err := q.DiscoverInfo()
	if err != nil {
		return nil, err
	}

	out := make(map[string]string, len(infos))
	for path, info := range infos {
		out[path] = info.Class
	}

	return out, nil
}

// DiscoverInfo is like Discover but returns the full scan record per file.
func (q *Query) DiscoverInfo() (map[string]*ClassInfo, error) {
	if len(q.locations) == 0 {
		return nil, ErrNoSearchLocations
	}

	out := make(map[string]*ClassInfo)
	for _, root := range q.locations {
		if err := q.walk(root, out); err != nil {
			return nil, err
		}
	}

	if q.loader != nil {
		for path, info := range out {
			if q.loader.Defined(info.Class) {
				continue
			}

			if err := q.loader.Load(path, info); err != nil {
				return nil, errors.Wrapf(err, "failed to load %s", info.Class)
			}
		}
	}

	return out, nil
}

func (q *Query) walk(root string, out map[string]*ClassInfo) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return errors.Wrapf(err, "failed to walk %s", path)
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return errors.Wrapf(err, "failed to relativize %s", path)
		}

		if d.IsDir() {
			if rel == "." {
				return nil
			}

			if strings.HasPrefix(d.Name(), ".") || !q.depth.Descend(depthOf(rel)+1) {
				return filepath.SkipDir
			}

			return nil
		}

		if !q.depth.Contains(depthOf(rel)) {
			return nil
		}

		ok, err := filepath.Match(q.pattern, d.Name())
		if err != nil {
			return errors.Wrapf(err, "invalid search pattern: %s", q.pattern)
		}

		if !ok || !strings.EqualFold(filepath.Ext(path), FileExtension) {
			return nil
		}

		info, err := ParseFile(path)
		if err != nil {
			if errors.Is(err, ErrNoDeclaration) {
				return nil
			}

			// unreadable or untokenizable files do not abort discovery
			slog.Warn("Skipping unparsable file", "path", path, "error", err)
			return nil
		}

		if q.matches(info) {
			out[path] = info
		}

		return nil
	})
}

// depthOf returns how many directories separate a root-relative path from the root.
func depthOf(rel string) int {
	return strings.Count(filepath.ToSlash(rel), "/")
}

func (q *Query) matches(info *ClassInfo) bool {
	if len(q.classes) > 0 && !anyClass(q.classes, info.Class) {
		return false
	}

	if len(q.extends) > 0 && !anyClass(q.extends, info.Extends) {
		return false
	}

	if len(q.implements) > 0 {
		for _, iface := range info.Implements {
			if anyClass(q.implements, iface) {
				return true
			}
		}

		return false
	}

	return true
}

// anyClass reports whether class equals one of names. A name without a
// namespace separator also matches on the short class name.
func anyClass(names []string, class string) bool {
	if class == "" {
		return false
	}

	for _, name := range names {
		if sameClass(name, class) {
			return true
		}

		if !strings.Contains(strings.TrimPrefix(name, `\`), `\`) && equalFold(name, shortName(class)) {
			return true
		}
	}

	return false
}
