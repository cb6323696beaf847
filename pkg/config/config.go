package config

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/pkg/errors"
	"github.com/pseudomuto/projectx/pkg/consts"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// ErrConfigNotFound is returned when the project configuration file is missing.
var ErrConfigNotFound = errors.New("project configuration not found")

type (
	// Config represents the project-x.yml configuration of a project.
	Config struct {
		// Name is the machine name of the project
		Name string `mapstructure:"name" yaml:"name"`

		// Type is the project type identifier (e.g. drupal, php)
		Type string `mapstructure:"type" yaml:"type,omitempty"`

		// Engine is the environment engine identifier (e.g. docker)
		Engine string `mapstructure:"engine" yaml:"engine,omitempty"`

		// Platform is the deployment platform identifier (e.g. git)
		Platform string `mapstructure:"platform" yaml:"platform,omitempty"`

		// Version is the project type version (e.g. the Drupal core version)
		Version string `mapstructure:"version" yaml:"version,omitempty"`

		// Root is the project source root relative to the configuration file
		Root string `mapstructure:"root" yaml:"root,omitempty"`

		Remote Remote `mapstructure:"remote" yaml:"remote,omitempty"`
		Host   Host   `mapstructure:"host" yaml:"host,omitempty"`
		Github Github `mapstructure:"github" yaml:"github,omitempty"`

		// OptionBlocks holds free-form option blocks keyed by subsystem (docker, drupal, deploy...)
		OptionBlocks map[string]any `mapstructure:"options" yaml:"options,omitempty"`

		// CommandHooks holds command_hooks.<command>.<action>.<before|after> entries
		CommandHooks map[string]any `mapstructure:"command_hooks" yaml:"command_hooks,omitempty"`

		v *viper.Viper
	}

	// Host describes the local development host.
	Host struct {
		Name string `mapstructure:"name" yaml:"name,omitempty"`
		Open bool   `mapstructure:"open" yaml:"open,omitempty"`
	}

	// Github describes the project repository on GitHub.
	Github struct {
		URL string `mapstructure:"url" yaml:"url,omitempty"`
	}

	// Remote lists the remote environments the project is deployed to.
	Remote struct {
		Environments []Environment `mapstructure:"environments" yaml:"environments,omitempty"`
	}

	// Environment is a single remote environment.
	Environment struct {
		Name   string `mapstructure:"name" yaml:"name"`
		Realm  string `mapstructure:"realm" yaml:"realm,omitempty"`
		URI    string `mapstructure:"uri" yaml:"uri,omitempty"`
		Path   string `mapstructure:"path" yaml:"path,omitempty"`
		SSHURL string `mapstructure:"ssh_url" yaml:"ssh_url,omitempty"`
	}
)

// LoadConfig parses and validates a project configuration from the provided
// io.Reader.
//
// Example:
//
//	cfg, err := config.LoadConfig(strings.NewReader("name: acme\ntype: drupal\n"))
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	fmt.Println(cfg.Name, cfg.Type)
func LoadConfig(r io.Reader) (*Config, error) {
	v := newViper()
	if err := v.ReadConfig(r); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal project config")
	}

	return decode(v)
}

// LoadConfigFile loads a single configuration file.
func LoadConfigFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrapf(ErrConfigNotFound, "%s", path)
		}
		return nil, errors.Wrapf(err, "failed to open file: %s", path)
	}
	defer func() { _ = f.Close() }()

	return LoadConfig(f)
}

// Load reads project-x.yml from dir and deep merges project-x.local.yml over it
// when present. Local values win key by key; lists are replaced wholesale.
//
// Example:
//
//	cfg, err := config.Load(".")
//	if errors.Is(err, config.ErrConfigNotFound) {
//		fmt.Println("run projectx init first")
//	}
func Load(dir string) (*Config, error) {
	path := filepath.Join(dir, consts.ConfigFile)
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrapf(ErrConfigNotFound, "%s", path)
		}
		return nil, errors.Wrapf(err, "failed to stat %s", path)
	}

	v := newViper()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, errors.Wrapf(err, "failed to read %s", path)
	}

	local := filepath.Join(dir, consts.LocalConfigFile)
	if _, err := os.Stat(local); err == nil {
		v.SetConfigFile(local)
		if err := v.MergeInConfig(); err != nil {
			return nil, errors.Wrapf(err, "failed to merge %s", local)
		}
	}

	return decode(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	return v
}

func decode(v *viper.Viper) (*Config, error) {
	if err := Validate(v.AllSettings()); err != nil {
		return nil, err
	}

	cfg := &Config{v: v}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.Wrap(err, "failed to decode project config")
	}

	if cfg.Version != "" {
		if _, err := semver.NewVersion(cfg.Version); err != nil {
			return nil, &ValidationError{Issues: []Issue{{
				Path:    "/version",
				Message: "invalid version " + cfg.Version + ": " + err.Error(),
			}}}
		}
	}

	return cfg, nil
}

// Options decodes the options.<key> block into out. A missing block leaves out
// untouched.
//
// Example:
//
//	var opts struct {
//		Services map[string]any `mapstructure:"services"`
//	}
//
//	if err := cfg.Options("docker", &opts); err != nil {
//		log.Fatal(err)
//	}
func (c *Config) Options(key string, out any) error {
	if c.v == nil {
		c.v = viper.New()
		if err := c.v.MergeConfigMap(map[string]any{"options": c.OptionBlocks}); err != nil {
			return errors.Wrap(err, "failed to index options")
		}
	}

	sub := c.v.Sub("options." + strings.ToLower(key))
	if sub == nil {
		return nil
	}

	return errors.Wrapf(sub.Unmarshal(out), "failed to decode options.%s", key)
}

// Environment returns the remote environment with the given name.
func (c *Config) Environment(name string) (Environment, bool) {
	for _, env := range c.Remote.Environments {
		if strings.EqualFold(env.Name, name) {
			return env, true
		}
	}

	return Environment{}, false
}

// HostName returns the configured host name or one derived from the project name.
func (c *Config) HostName() string {
	if c.Host.Name != "" {
		return c.Host.Name
	}

	return "local." + c.Name + ".com"
}

// Owner returns the repository owner parsed from the GitHub URL.
func (g Github) Owner() string {
	owner, _ := g.split()
	return owner
}

// Repo returns the repository name parsed from the GitHub URL.
func (g Github) Repo() string {
	_, repo := g.split()
	return repo
}

func (g Github) split() (string, string) {
	path := g.URL
	if i := strings.Index(path, "github.com"); i >= 0 {
		path = path[i+len("github.com"):]
	}

	path = strings.Trim(strings.TrimSuffix(strings.TrimSpace(path), ".git"), "/:")
	owner, repo, ok := strings.Cut(path, "/")
	if !ok {
		return "", ""
	}

	return owner, strings.Trim(repo, "/")
}

// Write encodes the configuration as YAML.
func (c *Config) Write(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)

	if err := enc.Encode(c); err != nil {
		return errors.Wrap(err, "failed to write project config")
	}

	return errors.Wrap(enc.Close(), "failed to close yaml encoder")
}

// WriteFile writes the configuration to path.
func (c *Config) WriteFile(path string) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, consts.ModeFile)
	if err != nil {
		return errors.Wrapf(err, "failed to open config file for writing: %s", path)
	}
	defer func() { _ = f.Close() }()

	return c.Write(f)
}
