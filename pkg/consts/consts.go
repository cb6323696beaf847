package consts

import (
	"os"
	"time"
)

const (
	// ModeDir is the standard file mode for creating directories
	ModeDir = os.FileMode(0o755)

	// ModeFile is the standard file mode for creating files
	ModeFile = os.FileMode(0o644)

	// ConfigFile is the name of the project configuration file
	ConfigFile = "project-x.yml"

	// LocalConfigFile is the name of the local override configuration file
	LocalConfigFile = "project-x.local.yml"

	// PluginPackageType is the composer package type that marks an add-on package
	// as a projectx plugin
	PluginPackageType = "project-x-plugin"

	// PluginCacheTTL is how long the installed plugin namespace map is cached
	PluginCacheTTL = 3600 * time.Second

	// CacheDirName is the directory under the user cache dir used for cached state
	CacheDirName = "project-x"

	// DefaultVendorDir is the composer vendor directory relative to the project root
	DefaultVendorDir = "vendor"

	// DefaultDocRoot is the web document root used when none is configured
	DefaultDocRoot = "web"

	// DefaultBuildDir is the deploy build directory used when none is configured
	DefaultBuildDir = "build"

	// DefaultBranch is the deploy branch used when none is configured
	DefaultBranch = "main"
)
