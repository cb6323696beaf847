package project

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/pseudomuto/projectx/pkg/config"
	"github.com/pseudomuto/projectx/pkg/consts"
)

type (
	// ProjectParams configures a Project.
	ProjectParams struct {
		// Dir is the project root. It must be an existing directory.
		Dir string

		// Config is the loaded project configuration. It may be nil for a
		// project that has not been initialized yet.
		Config *config.Config
	}

	// Project is the context shared by all components of a projectx run.
	Project struct {
		root   string
		config *config.Config
	}
)

// New creates a Project for the given root.
//
// Example:
//
//	cfg, err := config.Load(".")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	proj := project.New(project.ProjectParams{Dir: ".", Config: cfg})
//	fmt.Println(proj.Name(), proj.DocRoot())
func New(p ProjectParams) *Project {
	root := p.Dir
	if abs, err := filepath.Abs(root); err == nil {
		root = abs
	}

	return &Project{root: root, config: p.Config}
}

// Load builds a Project from the configuration found in dir.
func Load(dir string) (*Project, error) {
	cfg, err := config.Load(dir)
	if err != nil {
		return nil, err
	}

	return New(ProjectParams{Dir: dir, Config: cfg}), nil
}

// Root returns the absolute project root.
func (p *Project) Root() string {
	return p.root
}

// Config returns the project configuration (nil before Initialize).
func (p *Project) Config() *config.Config {
	return p.config
}

// Initialized reports whether a configuration is available.
func (p *Project) Initialized() bool {
	return p.config != nil
}

// Name returns the configured project name, falling back to the root's base name.
func (p *Project) Name() string {
	if p.config != nil && p.config.Name != "" {
		return p.config.Name
	}

	return filepath.Base(p.root)
}

// Path joins parts onto the project root.
func (p *Project) Path(parts ...string) string {
	return filepath.Join(append([]string{p.root}, parts...)...)
}

// DocRoot returns the absolute web document root.
func (p *Project) DocRoot() string {
	if p.config != nil && p.config.Root != "" {
		return p.Path(p.config.Root)
	}

	return p.Path(consts.DefaultDocRoot)
}

// VendorDir returns the absolute composer vendor directory.
func (p *Project) VendorDir() string {
	return p.Path(consts.DefaultVendorDir)
}

// Options decodes the options.<key> block of the configuration into out.
func (p *Project) Options(key string, out any) error {
	if p.config == nil {
		return nil
	}

	return p.config.Options(key, out)
}

// Initialize writes the project configuration when it does not exist yet and
// loads the (possibly pre-existing) configuration. Existing files are never
// overwritten.
//
// Example:
//
//	proj := project.New(project.ProjectParams{Dir: "/path/to/site"})
//	if err := proj.Initialize(&config.Config{Name: "acme", Type: "drupal", Engine: "docker"}); err != nil {
//		log.Fatal(err)
//	}
func (p *Project) Initialize(cfg *config.Config) error {
	if err := p.ensureDirectory(); err != nil {
		return err
	}

	path := p.Path(consts.ConfigFile)
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return errors.Wrapf(err, "failed to stat %s", path)
		}

		if cfg == nil {
			return errors.Wrapf(config.ErrConfigNotFound, "%s", path)
		}

		if err := cfg.WriteFile(path); err != nil {
			return err
		}
	}

	loaded, err := config.Load(p.root)
	if err != nil {
		return errors.Wrapf(err, "failed to load %s", consts.ConfigFile)
	}

	p.config = loaded
	return nil
}

func (p *Project) ensureDirectory() error {
	dir, err := os.Stat(p.root)
	if err != nil {
		return errors.Wrapf(err, "failed to stat dir: %s", p.root)
	}

	if !dir.IsDir() {
		return errors.Errorf("%s is not a directory", p.root)
	}

	return nil
}
