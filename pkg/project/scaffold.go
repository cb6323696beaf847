package project

import (
	"bytes"
	"embed"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing/fstest"
	"text/template"

	"github.com/pkg/errors"
	"github.com/pseudomuto/projectx/pkg/consts"
)

const (
	// TaskFile is the generated task runner scaffold.
	TaskFile = "RoboFile.php"

	// TaskDir holds additional task classes.
	TaskDir = "tasks"

	// CIFile is the generated CI workflow.
	CIFile = ".github/workflows/ci.yml"
)

var (
	//go:embed embed/*.tmpl
	templates embed.FS

	tmpl = template.Must(template.New("").Funcs(template.FuncMap{
		"php": PHPString,
	}).ParseFS(templates, "embed/*.tmpl"))
)

type (
	// ScaffoldOptions controls how scaffolds are written.
	ScaffoldOptions struct {
		// Overwrite replaces existing files instead of preserving them.
		Overwrite bool
	}

	scaffoldData struct {
		Name     string
		Type     string
		Engine   string
		Version  string
		DocRoot  string
		Binary   string
		Branches []string
	}
)

// GenerateTasks writes the RoboFile.php task runner scaffold and an empty
// tasks directory. It returns the files that were written.
func (p *Project) GenerateTasks(opts ScaffoldOptions) ([]string, error) {
	image, err := p.image(map[string]string{TaskFile: "RoboFile.php.tmpl"})
	if err != nil {
		return nil, err
	}

	image[TaskDir] = &fstest.MapFile{Mode: os.ModeDir | consts.ModeDir}
	return p.writeImage(image, opts)
}

// GenerateCI writes the CI workflow scaffold.
func (p *Project) GenerateCI(opts ScaffoldOptions) ([]string, error) {
	image, err := p.image(map[string]string{CIFile: "ci.yml.tmpl"})
	if err != nil {
		return nil, err
	}

	return p.writeImage(image, opts)
}

// image renders templates into an in-memory file system keyed by project
// relative path.
func (p *Project) image(files map[string]string) (fstest.MapFS, error) {
	data := p.scaffoldData()

	image := fstest.MapFS{}
	for path, name := range files {
		var buf bytes.Buffer
		if err := tmpl.ExecuteTemplate(&buf, name, data); err != nil {
			return nil, errors.Wrapf(err, "failed to render %s", name)
		}

		image[path] = &fstest.MapFile{Data: buf.Bytes(), Mode: consts.ModeFile}
	}

	return image, nil
}

func (p *Project) scaffoldData() scaffoldData {
	data := scaffoldData{
		Name:     p.Name(),
		DocRoot:  consts.DefaultDocRoot,
		Binary:   filepath.Base(os.Args[0]),
		Branches: []string{consts.DefaultBranch},
	}

	if data.Binary == "" || strings.HasSuffix(data.Binary, ".test") {
		data.Binary = "projectx"
	}

	if cfg := p.config; cfg != nil {
		data.Type = cfg.Type
		data.Engine = cfg.Engine
		data.Version = cfg.Version
		if cfg.Root != "" {
			data.DocRoot = cfg.Root
		}
	}

	return data
}

// writeImage creates the entries of image under the project root. Directories
// are created as needed; existing files are skipped unless overwriting.
func (p *Project) writeImage(image fstest.MapFS, opts ScaffoldOptions) ([]string, error) {
	if err := p.ensureDirectory(); err != nil {
		return nil, err
	}

	paths := make([]string, 0, len(image))
	for path := range image {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	var written []string
	for _, path := range paths {
		entry := image[path]
		fullPath := p.Path(filepath.FromSlash(path))

		if entry.Mode.IsDir() {
			if err := os.MkdirAll(fullPath, entry.Mode.Perm()); err != nil {
				return nil, errors.Wrapf(err, "failed to create directory %s", fullPath)
			}
			continue
		}

		if _, err := os.Stat(fullPath); err == nil && !opts.Overwrite {
			continue
		} else if err != nil && !os.IsNotExist(err) {
			return nil, errors.Wrapf(err, "failed to stat %s", fullPath)
		}

		parentDir := filepath.Dir(fullPath)
		if err := os.MkdirAll(parentDir, consts.ModeDir); err != nil {
			return nil, errors.Wrapf(err, "failed to create parent directory %s", parentDir)
		}

		if err := os.WriteFile(fullPath, entry.Data, entry.Mode.Perm()); err != nil {
			return nil, errors.Wrapf(err, "failed to write file %s", fullPath)
		}

		written = append(written, path)
	}

	return written, nil
}

// PHPString renders s as a single-quoted PHP string literal.
func PHPString(s string) string {
	return "'" + strings.NewReplacer(`\`, `\\`, `'`, `\'`).Replace(s) + "'"
}
