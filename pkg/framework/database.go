package framework

import (
	"fmt"

	"github.com/pseudomuto/projectx/pkg/engine/compose"
	"github.com/pseudomuto/projectx/pkg/project"
)

// Database is the connection of the environment's database service.
type Database struct {
	Driver   string
	Host     string
	Port     int
	Name     string
	User     string
	Password string
}

var databaseDrivers = []struct {
	service string
	driver  string
	port    int
}{
	{service: "mysql", driver: "mysql", port: 3306},
	{service: "mariadb", driver: "mysql", port: 3306},
	{service: "postgres", driver: "pgsql", port: 5432},
}

// EnvironmentDatabase derives the database connection from the docker
// services of a project. The generated services use the project name as
// database, user and password. ok is false without a database service.
func EnvironmentDatabase(p *project.Project) (db Database, ok bool, err error) {
	var opts compose.Options
	if err := p.Options("docker", &opts); err != nil {
		return Database{}, false, err
	}

	services := opts.Services
	if len(services) == 0 {
		services = compose.DefaultServices
	}

	for _, d := range databaseDrivers {
		if _, found := services[d.service]; found {
			return Database{
				Driver:   d.driver,
				Host:     d.service,
				Port:     d.port,
				Name:     p.Name(),
				User:     p.Name(),
				Password: p.Name(),
			}, true, nil
		}
	}

	return Database{}, false, nil
}

// URL returns the database URL in the form drush expects.
func (d Database) URL() string {
	return fmt.Sprintf("%s://%s:%s@%s:%d/%s", d.Driver, d.User, d.Password, d.Host, d.Port, d.Name)
}
