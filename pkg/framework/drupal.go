package framework

import (
	"bytes"
	"context"
	"crypto/rand"
	"embed"
	"encoding/base64"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"text/template"

	"github.com/Masterminds/semver/v3"
	"github.com/pkg/errors"
	"github.com/pseudomuto/projectx/pkg/composer"
	"github.com/pseudomuto/projectx/pkg/config"
	"github.com/pseudomuto/projectx/pkg/consts"
	"github.com/pseudomuto/projectx/pkg/project"
	"gopkg.in/yaml.v3"
)

const (
	// DrupalID is the identifier of the drupal project type
	DrupalID = "drupal"

	// DefaultDrupalVersion is used when the configuration has no version
	DefaultDrupalVersion = "10"

	// SettingsFile is the local settings file, relative to the document root
	SettingsFile = "sites/default/settings.local.php"

	// DrushAliasDir holds the generated site aliases
	DrushAliasDir = "drush/sites"

	// PHPService is the environment service drush runs in
	PHPService = "php"

	defaultProfile = "standard"
)

var (
	//go:embed embed/*.tmpl
	templates embed.FS

	tmpl = template.Must(template.New("").Funcs(template.FuncMap{
		"php": project.PHPString,
	}).ParseFS(templates, "embed/*.tmpl"))
)

type (
	// DrupalOptions is the options.drupal block.
	DrupalOptions struct {
		Profile string `mapstructure:"profile"`
		Site    struct {
			Name string `mapstructure:"name"`
			Mail string `mapstructure:"mail"`
		} `mapstructure:"site"`
		Account struct {
			Name string `mapstructure:"name"`
			Pass string `mapstructure:"pass"`
			Mail string `mapstructure:"mail"`
		} `mapstructure:"account"`
	}

	// Drupal is the drupal project type.
	Drupal struct {
		project *project.Project
		deps    Deps
		opts    DrupalOptions
	}

	// DrushAlias is a single environment of a drush site alias file.
	DrushAlias struct {
		Host string `yaml:"host,omitempty"`
		User string `yaml:"user,omitempty"`
		Root string `yaml:"root,omitempty"`
		URI  string `yaml:"uri,omitempty"`
	}
)

// NewDrupal creates the drupal project type.
func NewDrupal(p *project.Project, deps Deps) (*Drupal, error) {
	d := &Drupal{project: p, deps: deps}
	if err := p.Options("drupal", &d.opts); err != nil {
		return nil, err
	}

	return d, nil
}

// Setup writes composer.json (new projects only), runs composer, then writes
// the local settings and drush aliases.
func (d *Drupal) Setup(ctx context.Context, opts SetupOptions) error {
	if !opts.Existing {
		m, err := d.Manifest()
		if err != nil {
			return err
		}

		if err := m.WriteFile(d.project.Path(composer.ManifestFile)); err != nil {
			return err
		}
		slog.Info("Wrote composer manifest", "path", d.project.Path(composer.ManifestFile))

		if !opts.SkipComposer {
			if err := d.deps.Composer(d.project.Root()).Install(ctx); err != nil {
				return err
			}
		}
	}

	if err := d.WriteSettings(); err != nil {
		return err
	}

	return d.WriteDrushAliases()
}

// CoreConstraint returns the composer constraint for drupal core derived from
// the configured version (10.2 → ^10.2).
func (d *Drupal) CoreConstraint() (string, error) {
	version := DefaultDrupalVersion
	if cfg := d.project.Config(); cfg != nil && cfg.Version != "" {
		version = cfg.Version
	}

	v, err := semver.NewVersion(version)
	if err != nil {
		return "", errors.Wrapf(err, "invalid drupal version %s", version)
	}

	return fmt.Sprintf("^%d.%d", v.Major(), v.Minor()), nil
}

// Manifest builds the composer manifest of the project. An existing
// composer.json is merged on top so local changes survive.
func (d *Drupal) Manifest() (composer.Manifest, error) {
	core, err := d.CoreConstraint()
	if err != nil {
		return nil, err
	}

	docRoot := d.docRoot()
	m := composer.Manifest{
		"name":              d.packageName(),
		"type":              "project",
		"description":       fmt.Sprintf("The %s Drupal site.", d.project.Name()),
		"minimum-stability": "dev",
		"prefer-stable":     true,
		"repositories": []any{
			map[string]any{"type": "composer", "url": "https://packages.drupal.org/8"},
		},
		"config": map[string]any{
			"sort-packages": true,
			"allow-plugins": map[string]any{
				"composer/installers":                            true,
				"drupal/core-composer-scaffold":                  true,
				"dealerdirect/phpcodesniffer-composer-installer": true,
			},
		},
		"extra": map[string]any{
			"drupal-scaffold": map[string]any{
				"locations": map[string]any{"web-root": docRoot + "/"},
			},
			"installer-paths": map[string]any{
				docRoot + "/core":                     []any{"type:drupal-core"},
				docRoot + "/libraries/{$name}":        []any{"type:drupal-library"},
				docRoot + "/modules/contrib/{$name}":  []any{"type:drupal-module"},
				docRoot + "/profiles/contrib/{$name}": []any{"type:drupal-profile"},
				docRoot + "/themes/contrib/{$name}":   []any{"type:drupal-theme"},
				"drush/Commands/contrib/{$name}":      []any{"type:drupal-drush"},
			},
		},
	}

	m.Require("composer/installers", "^2.0", false)
	m.Require("drupal/core-composer-scaffold", core, false)
	m.Require("drupal/core-recommended", core, false)
	m.Require("drush/drush", "^12 || ^13", false)
	m.Require("drupal/core-dev", core, true)

	existing, err := composer.ReadFile(d.project.Path(composer.ManifestFile))
	if err != nil {
		return nil, err
	}

	if _, ok := existing["repositories"]; ok {
		delete(m, "repositories")
	}

	if err := m.Merge(existing); err != nil {
		return nil, err
	}

	return m, nil
}

// WriteSettings writes settings.local.php into the document root. The file is
// regenerated on every call.
func (d *Drupal) WriteSettings() error {
	db, ok, err := EnvironmentDatabase(d.project)
	if err != nil {
		return err
	}

	salt := make([]byte, 32)
	if _, err := rand.Read(salt); err != nil {
		return errors.Wrap(err, "failed to generate hash salt")
	}

	data := struct {
		Name        string
		DB          *Database
		HashSalt    string
		HostPattern string
	}{
		Name:        d.project.Name(),
		HashSalt:    base64.RawURLEncoding.EncodeToString(salt),
		HostPattern: hostPattern(d.hostName()),
	}

	if ok {
		data.DB = &db
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "settings.local.php.tmpl", data); err != nil {
		return errors.Wrap(err, "failed to render settings.local.php")
	}

	return writeFile(filepath.Join(d.project.DocRoot(), filepath.FromSlash(SettingsFile)), buf.Bytes())
}

// DrushAliases builds the site aliases of the remote environments.
func (d *Drupal) DrushAliases() map[string]DrushAlias {
	aliases := map[string]DrushAlias{
		"local": {Root: d.project.DocRoot(), URI: "http://" + d.hostName()},
	}

	cfg := d.project.Config()
	if cfg == nil {
		return aliases
	}

	for _, env := range cfg.Remote.Environments {
		aliases[env.Name] = remoteAlias(env)
	}

	return aliases
}

// WriteDrushAliases writes drush/sites/<name>.site.yml.
func (d *Drupal) WriteDrushAliases() error {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)

	if err := enc.Encode(d.DrushAliases()); err != nil {
		return errors.Wrap(err, "failed to encode drush aliases")
	}

	if err := enc.Close(); err != nil {
		return errors.Wrap(err, "failed to encode drush aliases")
	}

	return writeFile(d.project.Path(DrushAliasDir, d.project.Name()+".site.yml"), buf.Bytes())
}

// Install runs drush site:install in the environment's php service.
func (d *Drupal) Install(ctx context.Context, opts InstallOptions) error {
	eng, err := d.deps.Engine()
	if err != nil {
		return err
	}

	args, err := d.InstallArgs(opts)
	if err != nil {
		return err
	}

	return eng.Exec(ctx, PHPService, args...)
}

// InstallArgs returns the drush command line used by Install.
func (d *Drupal) InstallArgs(opts InstallOptions) ([]string, error) {
	profile := firstNonEmpty(opts.Profile, d.opts.Profile, defaultProfile)
	args := []string{"vendor/bin/drush", "site:install", profile, "--yes"}

	if name := firstNonEmpty(d.opts.Site.Name, d.project.Name()); name != "" {
		args = append(args, "--site-name="+name)
	}

	if d.opts.Site.Mail != "" {
		args = append(args, "--site-mail="+d.opts.Site.Mail)
	}

	if d.opts.Account.Name != "" {
		args = append(args, "--account-name="+d.opts.Account.Name)
	}

	if d.opts.Account.Pass != "" {
		args = append(args, "--account-pass="+d.opts.Account.Pass)
	}

	if d.opts.Account.Mail != "" {
		args = append(args, "--account-mail="+d.opts.Account.Mail)
	}

	db, ok, err := EnvironmentDatabase(d.project)
	if err != nil {
		return nil, err
	}

	if ok {
		args = append(args, "--db-url="+db.URL())
	}

	return args, nil
}

// Build installs production dependencies in dir and drops local settings.
func (d *Drupal) Build(ctx context.Context, dir string) error {
	if err := buildComposer(ctx, d.deps, dir); err != nil {
		return err
	}

	rel, err := filepath.Rel(d.project.Root(), d.project.DocRoot())
	if err != nil {
		return errors.Wrap(err, "failed to resolve document root")
	}

	settings := filepath.Join(dir, rel, filepath.FromSlash(SettingsFile))
	if err := os.Remove(settings); err != nil && !os.IsNotExist(err) {
		return errors.Wrapf(err, "failed to remove %s", settings)
	}

	return nil
}

func (d *Drupal) docRoot() string {
	rel, err := filepath.Rel(d.project.Root(), d.project.DocRoot())
	if err != nil {
		return consts.DefaultDocRoot
	}

	return filepath.ToSlash(rel)
}

func (d *Drupal) packageName() string {
	vendor := d.project.Name()
	if cfg := d.project.Config(); cfg != nil && cfg.Github.Owner() != "" {
		vendor = cfg.Github.Owner()
	}

	return strings.ToLower(vendor + "/" + d.project.Name())
}

func (d *Drupal) hostName() string {
	if cfg := d.project.Config(); cfg != nil {
		return cfg.HostName()
	}

	return "localhost"
}

func remoteAlias(env config.Environment) DrushAlias {
	alias := DrushAlias{Root: env.Path, URI: env.URI}

	if env.SSHURL == "" {
		return alias
	}

	u, err := url.Parse(env.SSHURL)
	if err != nil || u.Host == "" {
		// scp-like user@host
		user, host, found := strings.Cut(env.SSHURL, "@")
		if !found {
			alias.Host = env.SSHURL
			return alias
		}

		alias.User, alias.Host = user, strings.TrimSuffix(host, ":")
		return alias
	}

	alias.Host = u.Hostname()
	if u.User != nil {
		alias.User = u.User.Username()
	}

	return alias
}

func hostPattern(host string) string {
	return "^" + regexp.QuoteMeta(host) + "$"
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}

	return ""
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), consts.ModeDir); err != nil {
		return errors.Wrapf(err, "failed to create %s", filepath.Dir(path))
	}

	return errors.Wrapf(os.WriteFile(path, data, consts.ModeFile), "failed to write %s", path)
}
