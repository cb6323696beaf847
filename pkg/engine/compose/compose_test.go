package compose_test

import (
	"bytes"
	"testing"

	"github.com/pseudomuto/projectx/pkg/engine/compose"
	"github.com/stretchr/testify/require"
)

func TestGenerate(t *testing.T) {
	f, err := compose.Generate("acme", compose.Options{
		Services: map[string]compose.ServiceOptions{
			"php":     {Version: "8.2"},
			"nginx":   {},
			"MySQL":   {Version: "5.7", Environment: map[string]string{"TZ": "UTC"}},
			"redis":   {},
			"solr":    {Image: "solr:9", Ports: []string{"8983:8983"}},
			"mailhog": {},
		},
	})
	require.NoError(t, err)

	require.Equal(t, "acme", f.Name)
	require.Equal(t, []string{"mailhog", "mysql", "nginx", "php", "redis", "solr"}, f.ServiceNames())

	php := f.Services["php"]
	require.Equal(t, "php:8.2-fpm", php.Image)
	require.Equal(t, compose.AppDir, php.WorkingDir)
	require.Equal(t, []string{"mysql", "redis"}, php.DependsOn)

	require.Equal(t, []string{"php"}, f.Services["nginx"].DependsOn)

	mysql := f.Services["mysql"]
	require.Equal(t, "mysql:5.7", mysql.Image)
	require.Equal(t, "acme", mysql.Environment["MYSQL_DATABASE"])
	require.Equal(t, "UTC", mysql.Environment["TZ"])

	require.Equal(t, "solr:9", f.Services["solr"].Image)
	require.Equal(t, []string{"8983:8983"}, f.Services["solr"].Ports)

	require.Contains(t, f.Volumes, "mysql-data")
	require.Len(t, f.Volumes, 1)
}

func TestGenerate_Defaults(t *testing.T) {
	f, err := compose.Generate("acme", compose.Options{})
	require.NoError(t, err)
	require.Equal(t, []string{"mysql", "nginx", "php"}, f.ServiceNames())
	require.Equal(t, "php:8.3-fpm", f.Services["php"].Image)
}

func TestGenerate_UnknownService(t *testing.T) {
	_, err := compose.Generate("acme", compose.Options{
		Services: map[string]compose.ServiceOptions{"elasticsearch": {}},
	})
	require.ErrorIs(t, err, compose.ErrUnknownService)
}

func TestFile_WriteRead(t *testing.T) {
	f, err := compose.Generate("acme", compose.Options{
		Services: map[string]compose.ServiceOptions{"php": {}, "postgres": {}},
	})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	require.Contains(t, buf.String(), "name: acme\n")
	require.Contains(t, buf.String(), "image: postgres:16")
	require.Contains(t, buf.String(), "postgres-data: {}")

	read, err := compose.Read(&buf)
	require.NoError(t, err)
	require.Equal(t, f.ServiceNames(), read.ServiceNames())
	require.Equal(t, []string{"postgres"}, read.Services["php"].DependsOn)
}

func TestNginxConfigFile(t *testing.T) {
	conf, err := compose.NginxConfigFile("docroot")
	require.NoError(t, err)
	require.Contains(t, conf, "root /var/www/html/docroot;")
	require.Contains(t, conf, "fastcgi_pass php:9000;")

	conf, err = compose.NginxConfigFile("")
	require.NoError(t, err)
	require.Contains(t, conf, "root /var/www/html;")
}
