package plugin

import (
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/pseudomuto/projectx/pkg/cache"
	"github.com/pseudomuto/projectx/pkg/consts"
	"github.com/pseudomuto/projectx/pkg/scanner"
	"github.com/pseudomuto/projectx/pkg/types"
)

type (
	// LoaderParams configures a Loader.
	LoaderParams struct {
		// VendorDir is the composer vendor directory
		VendorDir string

		// Cache stores the package → namespace map. Defaults to an in-memory cache.
		Cache cache.Backend

		// TTL overrides consts.PluginCacheTTL
		TTL time.Duration
	}

	// Loader finds plugin types in installed composer packages.
	Loader struct {
		vendorDir string
		cache     cache.Backend
		ttl       time.Duration
		classes   scanner.ClassMap
	}
)

// NewLoader creates a Loader.
//
// Example:
//
//	backend := cache.NewFile(dir)
//	loader := plugin.NewLoader(plugin.LoaderParams{VendorDir: proj.VendorDir(), Cache: backend})
//
//	found, err := loader.Types(types.Engine)
func NewLoader(p LoaderParams) *Loader {
	l := &Loader{
		vendorDir: p.VendorDir,
		cache:     p.Cache,
		ttl:       p.TTL,
		classes:   scanner.ClassMap{},
	}

	if l.cache == nil {
		l.cache = cache.NewMemory()
	}

	if l.ttl == 0 {
		l.ttl = consts.PluginCacheTTL
	}

	return l
}

// Namespaces returns installed plugin package name → root namespace prefix,
// served from the cache while it is fresh.
func (l *Loader) Namespaces() (map[string]string, error) {
	key := cache.Key("plugin-namespaces", l.vendorDir)

	var namespaces map[string]string
	ok, err := l.cache.Get(key, &namespaces)
	if err != nil {
		return nil, err
	}

	if ok {
		return namespaces, nil
	}

	pkgs, err := ReadInstalled(l.vendorDir)
	if err != nil {
		return nil, err
	}

	namespaces = make(map[string]string)
	for _, pkg := range pkgs {
		if pkg.Type != consts.PluginPackageType || len(pkg.Autoload.PSR4) == 0 {
			continue
		}

		namespaces[pkg.Name] = pkg.Autoload.PSR4[0]
	}

	if err := l.cache.Set(key, namespaces, l.ttl); err != nil {
		return nil, errors.Wrap(err, "failed to cache plugin namespaces")
	}

	return namespaces, nil
}

// Types implements types.Discoverer.
func (l *Loader) Types(c types.Category) ([]types.Discovered, error) {
	namespaces, err := l.Namespaces()
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(namespaces))
	for name := range namespaces {
		names = append(names, name)
	}
	sort.Strings(names)

	var found []types.Discovered
	for _, name := range names {
		dir := filepath.Join(l.vendorDir, filepath.FromSlash(name), "src", c.Subpath)
		if _, err := os.Stat(dir); err != nil {
			continue
		}

		q := scanner.New().
			SetSearchPattern(c.Pattern()).
			MatchExtends(c.Parents()...).
			LoadClasses(l.classes)
		if err := q.AddSearchLocation(dir); err != nil {
			return nil, err
		}

		classes, err := q.Discover()
		if err != nil {
			return nil, errors.Wrapf(err, "failed to scan %s", name)
		}

		paths := make([]string, 0, len(classes))
		for path := range classes {
			paths = append(paths, path)
		}
		sort.Strings(paths)

		for _, path := range paths {
			info, ok := l.classes.Get(classes[path])
			if !ok || !loadable(info, namespaces[name]) {
				slog.Debug("Skipping unloadable plugin type", "package", name, "class", classes[path])
				continue
			}

			found = append(found, types.Discovered{
				ID:        Identifier(info, c),
				Label:     label(info),
				Classname: info.Class,
				Package:   name,
			})
		}
	}

	return found, nil
}

// Identifier returns the type identifier of a plugin class.
func Identifier(info *scanner.ClassInfo, c types.Category) string {
	if id, ok := info.Return("getTypeId"); ok && id != "" {
		return strings.ToLower(id)
	}

	if id, ok := info.Constant("TYPE_ID"); ok && id != "" {
		return strings.ToLower(id)
	}

	return strings.ToLower(strings.TrimSuffix(info.ShortName(), c.Suffix()))
}

func label(info *scanner.ClassInfo) string {
	if l, ok := info.Return("getLabel"); ok {
		return l
	}

	l, _ := info.Constant("LABEL")
	return l
}

// loadable reports whether the autoloader could find the class: it must live
// under the package's PSR-4 prefix.
func loadable(info *scanner.ClassInfo, prefix string) bool {
	prefix = strings.TrimSuffix(prefix, `\`)
	if prefix == "" {
		return true
	}

	return strings.HasPrefix(strings.ToLower(info.Class), strings.ToLower(prefix)+`\`)
}
