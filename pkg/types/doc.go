// Package types maps short type identifiers ("docker", "drupal", "git") to
// implementations, one Resolver per category.
//
// Each category (engine, project, platform) contributes built-in definitions
// backed by Go constructors. Installed plugin packages can declare additional
// identifiers; those are discovered by scanning their PHP sources (see the
// plugin package) and merged into the category's type table. Built-in
// identifiers always win over discovered ones on collision.
//
// A discovered classname is only constructible when a Go definition has been
// linked for it, otherwise Create fails with a *ResolutionError.
package types
