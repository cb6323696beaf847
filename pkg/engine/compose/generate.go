package compose

import (
	_ "embed"
	"fmt"
	"maps"
	"path"
	"sort"
	"strings"
	"text/template"

	"github.com/pkg/errors"
)

//go:embed nginx.conf.tmpl
var nginxConf string

var nginxTemplate = template.Must(template.New("nginx").Parse(nginxConf))

type blueprint struct {
	image   string
	version string
	build   func(name string, svc *Service)
}

var (
	databases = []string{"mysql", "mariadb", "postgres"}
	webs      = []string{"nginx", "apache"}

	// DefaultServices are generated when options.docker.services is empty.
	DefaultServices = map[string]ServiceOptions{
		"php":   {},
		"nginx": {},
		"mysql": {},
	}

	blueprints = map[string]blueprint{
		"php": {image: "php", version: "8.3-fpm", build: func(_ string, svc *Service) {
			svc.WorkingDir = AppDir
			svc.Volumes = []string{"./:" + AppDir}
		}},
		"nginx": {image: "nginx", version: "stable-alpine", build: func(_ string, svc *Service) {
			svc.Ports = []string{"80:80"}
			svc.Volumes = []string{
				"./:" + AppDir + ":ro",
				"./" + NginxConfig + ":/etc/nginx/conf.d/default.conf:ro",
			}
		}},
		"apache": {image: "httpd", version: "2.4", build: func(_ string, svc *Service) {
			svc.Ports = []string{"80:80"}
			svc.Volumes = []string{"./:/usr/local/apache2/htdocs"}
		}},
		"mysql": {image: "mysql", version: "8.0", build: func(name string, svc *Service) {
			svc.Environment = map[string]string{
				"MYSQL_DATABASE":      name,
				"MYSQL_USER":          name,
				"MYSQL_PASSWORD":      name,
				"MYSQL_ROOT_PASSWORD": "root",
			}
			svc.Volumes = []string{"mysql-data:/var/lib/mysql"}
		}},
		"mariadb": {image: "mariadb", version: "11", build: func(name string, svc *Service) {
			svc.Environment = map[string]string{
				"MARIADB_DATABASE":      name,
				"MARIADB_USER":          name,
				"MARIADB_PASSWORD":      name,
				"MARIADB_ROOT_PASSWORD": "root",
			}
			svc.Volumes = []string{"mariadb-data:/var/lib/mysql"}
		}},
		"postgres": {image: "postgres", version: "16", build: func(name string, svc *Service) {
			svc.Environment = map[string]string{
				"POSTGRES_DB":       name,
				"POSTGRES_USER":     name,
				"POSTGRES_PASSWORD": name,
			}
			svc.Volumes = []string{"postgres-data:/var/lib/postgresql/data"}
		}},
		"redis": {image: "redis", version: "7-alpine"},
		"mailhog": {image: "mailhog/mailhog", version: "latest", build: func(_ string, svc *Service) {
			svc.Ports = []string{"8025:8025"}
		}},
	}
)

// Generate builds the compose file for a project named name.
//
// Built-in services (php, nginx, apache, mysql, mariadb, postgres, redis,
// mailhog) get an image, volumes and environment; anything else must name an
// image. php depends on the configured database and cache services, and web
// servers depend on php.
//
// Example:
//
//	f, err := compose.Generate("acme", compose.Options{
//		Services: map[string]compose.ServiceOptions{
//			"php":   {Version: "8.2"},
//			"nginx": {},
//			"mysql": {Version: "8.0"},
//		},
//	})
func Generate(name string, opts Options) (*File, error) {
	services := opts.Services
	if len(services) == 0 {
		services = DefaultServices
	}

	f := &File{
		Name:     name,
		Services: make(map[string]Service, len(services)),
		Volumes:  make(map[string]Volume),
	}

	for svcName, so := range services {
		svcName = strings.ToLower(svcName)
		svc, err := build(name, svcName, so)
		if err != nil {
			return nil, err
		}

		for _, v := range svc.Volumes {
			if vol, _, ok := strings.Cut(v, ":"); ok && !strings.HasPrefix(vol, ".") && !strings.HasPrefix(vol, "/") {
				f.Volumes[vol] = Volume{}
			}
		}

		f.Services[svcName] = svc
	}

	link(f)
	return f, nil
}

func build(project, name string, so ServiceOptions) (Service, error) {
	tmpl, ok := blueprints[name]
	if !ok && so.Image == "" {
		return Service{}, errors.Wrapf(ErrUnknownService, "%s requires an image", name)
	}

	svc := Service{Restart: "unless-stopped"}
	if ok {
		version := tmpl.version
		if so.Version != "" {
			version = so.Version
			if name == "php" && !strings.Contains(version, "-") {
				version += "-fpm"
			}
		}

		svc.Image = fmt.Sprintf("%s:%s", tmpl.image, version)
		if tmpl.build != nil {
			tmpl.build(project, &svc)
		}
	}

	if so.Image != "" {
		svc.Image = so.Image
	}

	if len(so.Ports) > 0 {
		svc.Ports = so.Ports
	}

	if len(so.Environment) > 0 {
		if svc.Environment == nil {
			svc.Environment = make(map[string]string, len(so.Environment))
		}
		maps.Copy(svc.Environment, so.Environment)
	}

	return svc, nil
}

// link wires depends_on between the generated services.
func link(f *File) {
	if php, ok := f.Services["php"]; ok {
		for _, dep := range append(append([]string{}, databases...), "redis") {
			if f.HasService(dep) {
				php.DependsOn = append(php.DependsOn, dep)
			}
		}
		sort.Strings(php.DependsOn)
		f.Services["php"] = php
	}

	for _, web := range webs {
		if svc, ok := f.Services[web]; ok && f.HasService("php") {
			svc.DependsOn = []string{"php"}
			f.Services[web] = svc
		}
	}
}

// NginxConfigFile renders the nginx site configuration forwarding PHP
// requests to the php service. docRoot is relative to the project root.
func NginxConfigFile(docRoot string) (string, error) {
	var b strings.Builder
	err := nginxTemplate.Execute(&b, struct{ Root string }{
		Root: path.Join(AppDir, strings.Trim(docRoot, "/")),
	})

	return b.String(), errors.Wrap(err, "failed to render nginx config")
}
