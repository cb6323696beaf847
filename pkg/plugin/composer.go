package plugin

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// InstalledFile is the composer metadata file listing installed packages,
// relative to the vendor directory.
const InstalledFile = "composer/installed.json"

type (
	// Package is the subset of an installed composer package projectx reads.
	Package struct {
		Name     string   `json:"name"`
		Type     string   `json:"type"`
		Autoload Autoload `json:"autoload"`
	}

	// Autoload holds the package autoload rules.
	Autoload struct {
		PSR4 Prefixes `json:"psr-4"`
	}

	// Prefixes is the ordered list of PSR-4 namespace prefixes.
	Prefixes []string

	installed struct {
		Packages []Package `json:"packages"`
	}
)

// UnmarshalJSON keeps the declaration order of the PSR-4 object keys.
func (p *Prefixes) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return err
	}

	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		// composer writes [] for empty autoload maps
		return nil
	}

	for dec.More() {
		key, err := dec.Token()
		if err != nil {
			return err
		}

		var skip json.RawMessage
		if err := dec.Decode(&skip); err != nil {
			return err
		}

		*p = append(*p, key.(string))
	}

	return nil
}

// ReadInstalled parses vendor/composer/installed.json in either the composer 1
// (top-level list) or composer 2 ({"packages": [...]}) format.
func ReadInstalled(vendorDir string) ([]Package, error) {
	path := filepath.Join(vendorDir, filepath.FromSlash(InstalledFile))

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, "failed to read %s", path)
	}

	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		var pkgs []Package
		if err := json.Unmarshal(data, &pkgs); err != nil {
			return nil, errors.Wrapf(err, "failed to parse %s", path)
		}
		return pkgs, nil
	}

	var doc installed
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrapf(err, "failed to parse %s", path)
	}

	return doc.Packages, nil
}
