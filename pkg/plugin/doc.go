// Package plugin discovers projectx types declared by installed composer
// packages.
//
// A plugin package sets its composer type to project-x-plugin and ships PHP
// classes under src/<Category>/*<Category>Type.php extending the category's
// base type:
//
//	vendor/acme/projectx-lando/
//	├── composer.json            # "type": "project-x-plugin", "autoload": {"psr-4": {"Acme\\Lando\\": "src/"}}
//	└── src/
//	    └── Engine/
//	        └── LandoEngineType.php
//
// The package → namespace map read from vendor/composer/installed.json is
// cached for an hour. Each type's identifier is the literal returned by its
// static getTypeId() method, its TYPE_ID constant or, failing both, the class
// name without the category suffix.
package plugin
