// Package project provides the context object every projectx component works
// against, along with the scaffolding that bootstraps a project.
//
// A Project is built once per process from the project root and its merged
// configuration (project-x.yml plus project-x.local.yml) and handed to the
// engine, framework and platform implementations at construction time.
//
// # Project Structure
//
// A projectx project follows this layout:
//
//	project-root/
//	├── project-x.yml            # Project configuration
//	├── project-x.local.yml      # Local overrides (not committed)
//	├── RoboFile.php             # Task runner scaffold (tasks generate)
//	├── tasks/                   # Additional Robo task classes
//	├── .github/workflows/ci.yml # CI workflow (ci generate)
//	├── composer.json
//	└── <root>/                  # Web document root
//
// # Scaffolding
//
// Scaffolds are rendered from embedded templates and written idempotently:
// existing files are preserved unless explicitly overwritten.
package project
