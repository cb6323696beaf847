// Package composer reads, merges and writes composer.json manifests and runs
// composer itself, on the host or in a throwaway container.
package composer

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"sort"
	"strings"

	"dario.cat/mergo"
	"github.com/pkg/errors"
	"github.com/pseudomuto/projectx/pkg/consts"
)

// ManifestFile is the composer manifest filename.
const ManifestFile = "composer.json"

// keyOrder is the top-level key order composer itself writes. Unknown keys
// follow in alphabetical order.
var keyOrder = []string{
	"name", "type", "description", "keywords", "homepage", "readme", "time",
	"license", "version", "authors", "support", "funding", "require",
	"require-dev", "conflict", "replace", "provide", "suggest", "autoload",
	"autoload-dev", "minimum-stability", "prefer-stable", "repositories",
	"config", "scripts", "extra", "bin", "archive", "abandoned",
	"non-feature-branches",
}

// Manifest is a decoded composer.json document.
type Manifest map[string]any

// Read decodes a manifest.
func Read(r io.Reader) (Manifest, error) {
	m := make(Manifest)
	dec := json.NewDecoder(r)
	dec.UseNumber()

	if err := dec.Decode(&m); err != nil {
		return nil, errors.Wrap(err, "failed to decode composer manifest")
	}

	return m, nil
}

// ReadFile decodes the manifest at path. A missing file yields an empty
// manifest.
func ReadFile(path string) (Manifest, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return make(Manifest), nil
		}
		return nil, errors.Wrapf(err, "failed to open %s", path)
	}
	defer func() { _ = f.Close() }()

	return Read(f)
}

// Merge deep merges src into m. Values from src win, nested objects are
// merged key by key and lists are appended.
func (m Manifest) Merge(src Manifest) error {
	dst := map[string]any(m)
	return errors.Wrap(
		mergo.Merge(&dst, map[string]any(src), mergo.WithOverride, mergo.WithAppendSlice),
		"failed to merge composer manifest",
	)
}

// Require adds (or replaces) a package constraint in require, or require-dev
// when dev is set.
func (m Manifest) Require(pkg, constraint string, dev bool) {
	key := "require"
	if dev {
		key = "require-dev"
	}

	reqs, ok := m[key].(map[string]any)
	if !ok {
		reqs = make(map[string]any)
		m[key] = reqs
	}

	reqs[pkg] = constraint
}

// Requires returns the constraint of a required package.
func (m Manifest) Requires(pkg string) (string, bool) {
	for _, key := range []string{"require", "require-dev"} {
		if reqs, ok := m[key].(map[string]any); ok {
			if c, ok := reqs[pkg].(string); ok {
				return c, true
			}
		}
	}

	return "", false
}

// Keys returns the top-level keys in write order.
func (m Manifest) Keys() []string {
	return orderedKeys(m, keyOrder)
}

// Write encodes the manifest with composer's key order and four space
// indentation.
func (m Manifest) Write(w io.Writer) error {
	var buf bytes.Buffer
	if err := writeObject(&buf, map[string]any(m), "", ""); err != nil {
		return err
	}
	buf.WriteByte('\n')

	_, err := w.Write(buf.Bytes())
	return errors.Wrap(err, "failed to write composer manifest")
}

// WriteFile writes the manifest to path.
func (m Manifest) WriteFile(path string) error {
	var buf bytes.Buffer
	if err := m.Write(&buf); err != nil {
		return err
	}

	return errors.Wrapf(os.WriteFile(path, buf.Bytes(), consts.ModeFile), "failed to write %s", path)
}

func writeObject(buf *bytes.Buffer, obj map[string]any, indent, parent string) error {
	if len(obj) == 0 {
		buf.WriteString("{}")
		return nil
	}

	var keys []string
	switch parent {
	case "":
		keys = orderedKeys(obj, keyOrder)
	case "require", "require-dev":
		keys = packageKeys(obj)
	default:
		keys = orderedKeys(obj, nil)
	}

	inner := indent + "    "
	buf.WriteString("{\n")
	for i, k := range keys {
		buf.WriteString(inner)
		if err := writeScalar(buf, k); err != nil {
			return err
		}
		buf.WriteString(": ")

		if err := writeValue(buf, obj[k], inner, k); err != nil {
			return err
		}

		if i < len(keys)-1 {
			buf.WriteByte(',')
		}
		buf.WriteByte('\n')
	}
	buf.WriteString(indent + "}")

	return nil
}

func writeValue(buf *bytes.Buffer, v any, indent, key string) error {
	switch val := v.(type) {
	case map[string]any:
		return writeObject(buf, val, indent, key)
	case Manifest:
		return writeObject(buf, map[string]any(val), indent, key)
	case []any:
		if len(val) == 0 {
			buf.WriteString("[]")
			return nil
		}

		inner := indent + "    "
		buf.WriteString("[\n")
		for i, item := range val {
			buf.WriteString(inner)
			if err := writeValue(buf, item, inner, ""); err != nil {
				return err
			}
			if i < len(val)-1 {
				buf.WriteByte(',')
			}
			buf.WriteByte('\n')
		}
		buf.WriteString(indent + "]")
		return nil
	default:
		return writeScalar(buf, val)
	}
}

func writeScalar(buf *bytes.Buffer, v any) error {
	var b bytes.Buffer
	enc := json.NewEncoder(&b)
	enc.SetEscapeHTML(false)

	if err := enc.Encode(v); err != nil {
		return errors.Wrap(err, "failed to encode composer manifest value")
	}

	buf.Write(bytes.TrimRight(b.Bytes(), "\n"))
	return nil
}

func orderedKeys(obj map[string]any, order []string) []string {
	keys := make([]string, 0, len(obj))
	seen := make(map[string]bool, len(obj))
	for _, k := range order {
		if _, ok := obj[k]; ok {
			keys = append(keys, k)
			seen[k] = true
		}
	}

	var rest []string
	for k := range obj {
		if !seen[k] {
			rest = append(rest, k)
		}
	}
	sort.Strings(rest)

	return append(keys, rest...)
}

// packageKeys sorts platform packages (php, ext-*, lib-*) ahead of the rest,
// the way composer's sort-packages does.
func packageKeys(obj map[string]any) []string {
	keys := orderedKeys(obj, nil)
	sort.SliceStable(keys, func(i, j int) bool {
		return isPlatform(keys[i]) && !isPlatform(keys[j])
	})

	return keys
}

func isPlatform(pkg string) bool {
	return pkg == "php" || strings.HasPrefix(pkg, "ext-") || strings.HasPrefix(pkg, "lib-")
}
