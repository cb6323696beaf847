// Package compose models docker compose files and generates one from the
// options.docker block of a project configuration.
package compose

import (
	"io"
	"os"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"github.com/pseudomuto/projectx/pkg/consts"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultFile is the compose file written to the project root
	DefaultFile = "docker-compose.yml"

	// AppDir is where the project is mounted in web and php containers
	AppDir = "/var/www/html"

	// NginxConfig is the generated nginx site configuration, relative to the
	// project root
	NginxConfig = "docker/nginx/default.conf"
)

// ErrUnknownService is returned for services without a built-in template or
// an explicit image.
var ErrUnknownService = errors.New("unknown docker service")

type (
	// File is a docker compose document.
	File struct {
		Name     string             `yaml:"name,omitempty"`
		Services map[string]Service `yaml:"services"`
		Volumes  map[string]Volume  `yaml:"volumes,omitempty"`
	}

	// Service is a single compose service.
	Service struct {
		Image       string            `yaml:"image"`
		Command     []string          `yaml:"command,omitempty"`
		WorkingDir  string            `yaml:"working_dir,omitempty"`
		Environment map[string]string `yaml:"environment,omitempty"`
		Ports       []string          `yaml:"ports,omitempty"`
		Volumes     []string          `yaml:"volumes,omitempty"`
		DependsOn   []string          `yaml:"depends_on,omitempty"`
		Restart     string            `yaml:"restart,omitempty"`
	}

	// Volume is a named volume. Compose accepts an empty mapping.
	Volume struct {
		Driver string `yaml:"driver,omitempty"`
	}

	// Options is the options.docker block.
	Options struct {
		Services map[string]ServiceOptions `mapstructure:"services"`
	}

	// ServiceOptions customizes a service. Version selects the image tag of a
	// built-in service; Image replaces it entirely.
	ServiceOptions struct {
		Version     string            `mapstructure:"version"`
		Image       string            `mapstructure:"image"`
		Ports       []string          `mapstructure:"ports"`
		Environment map[string]string `mapstructure:"environment"`
	}
)

// Read decodes a compose file.
func Read(r io.Reader) (*File, error) {
	var f File
	if err := yaml.NewDecoder(r).Decode(&f); err != nil {
		return nil, errors.Wrap(err, "failed to decode compose file")
	}

	return &f, nil
}

// ServiceNames returns the service names in sorted order.
func (f *File) ServiceNames() []string {
	names := make([]string, 0, len(f.Services))
	for name := range f.Services {
		names = append(names, name)
	}
	sort.Strings(names)

	return names
}

// Write encodes the compose file as YAML.
func (f *File) Write(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)

	if err := enc.Encode(f); err != nil {
		return errors.Wrap(err, "failed to encode compose file")
	}

	return errors.Wrap(enc.Close(), "failed to encode compose file")
}

// WriteFile writes the compose file to path.
func (f *File) WriteFile(path string) error {
	out, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, consts.ModeFile)
	if err != nil {
		return errors.Wrapf(err, "failed to create %s", path)
	}
	defer func() { _ = out.Close() }()

	return f.Write(out)
}

// HasService reports whether a service with the given name exists.
func (f *File) HasService(name string) bool {
	_, ok := f.Services[strings.ToLower(name)]
	return ok
}
