// Package scanner performs a lightweight static scan of PHP source files to
// discover class declarations without a full language parser.
//
// The scanner is used for plugin and task class discovery over trusted source
// trees: the project's own files and installed composer add-on packages. It
// extracts the structural facts needed to register implementations:
//
//   - the declared namespace
//   - the fully-qualified name of the first class, interface, trait or enum
//   - the fully-qualified parent class
//   - the fully-qualified implemented interfaces
//   - top-level use imports (used to resolve short names)
//   - string class constants and methods that trivially return a string literal
//
// # Tokenizing
//
// Files are tokenized with a stateful participle lexer that separates inline
// HTML from PHP code, then walked once, linearly. Names are resolved against
// the recorded imports first, then the declared namespace.
//
// # Limitations
//
// The scan is a heuristic bounded to conventional code: one declaration per
// file, no grouped imports (use A\{B, C}) and no heredoc awareness. Anything
// beyond that should use a real parser.
//
// # Usage Example
//
//	q := scanner.New().
//		SetSearchPattern("*EngineType.php").
//		SetSearchDepth(1).
//		MatchExtend(`ProjectX\Engine\EngineType`)
//
//	if err := q.AddSearchLocation("vendor/acme/lando/src/Engine"); err != nil {
//		log.Fatal(err)
//	}
//
//	classes, err := q.Discover()
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	for path, class := range classes {
//		fmt.Printf("%s => %s\n", path, class)
//	}
package scanner
