package scanner

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// FileExtension is the only extension ParseFile accepts.
const FileExtension = ".php"

var (
	// ErrInvalidFileType is returned when ParseFile is given a non-PHP file.
	ErrInvalidFileType = errors.New("invalid file type")

	// ErrNoDeclaration is returned when a file declares no class, interface, trait or enum.
	ErrNoDeclaration = errors.New("no type declaration found")
)

// ParseFile scans a single PHP file.
//
// Example:
//
//	info, err := scanner.ParseFile("src/Engine/LandoEngineType.php")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	fmt.Println(info.Class, info.Extends)
func ParseFile(path string) (*ClassInfo, error) {
	if !strings.EqualFold(filepath.Ext(path), FileExtension) {
		return nil, errors.Wrapf(ErrInvalidFileType, "expected a %s file: %s", FileExtension, path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open file: %s", path)
	}
	defer func() { _ = f.Close() }()

	info, err := parse(path, f)
	if err != nil {
		return nil, err
	}

	info.File = path
	return info, nil
}

// Parse scans PHP source from the provided reader. A source without any type
// declaration yields ErrNoDeclaration.
func Parse(r io.Reader) (*ClassInfo, error) {
	return parse("", r)
}

func parse(filename string, r io.Reader) (*ClassInfo, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read source")
	}

	toks, err := tokenize(filename, string(src))
	if err != nil {
		return nil, errors.Wrapf(err, "failed to tokenize %s", filename)
	}

	info := (&walker{toks: toks}).walk()
	if info.Class == "" {
		return info, ErrNoDeclaration
	}

	return info, nil
}

// walker performs the single linear pass over significant tokens.
type walker struct {
	toks []token
	info *ClassInfo

	depth     int // current brace depth
	baseDepth int // depth of the namespace body (1 for braced namespaces)
	bodyDepth int // depth of the declaration body, 0 until entered
}

func (w *walker) walk() *ClassInfo {
	w.info = &ClassInfo{
		Constants: make(map[string]string),
		Returns:   make(map[string]string),
	}

	for i := 0; i < len(w.toks); i++ {
		t := w.toks[i]

		switch {
		case t.isPunct("{"):
			w.depth++
		case t.isPunct("}"):
			w.depth--
			if w.bodyDepth > 0 && w.depth < w.bodyDepth {
				// one declaration per file
				return w.info
			}
		case t.isName():
			i = w.keyword(i)
		}
	}

	return w.info
}

// keyword handles a name token and returns the index the main loop resumes from.
func (w *walker) keyword(i int) int {
	t := w.toks[i]
	topLevel := w.depth == w.baseDepth && w.info.Class == ""

	switch {
	case t.isKeyword("namespace") && topLevel && w.depth == 0:
		name, next := w.collectName(i + 1)
		w.info.Namespace = strings.TrimPrefix(name, `\`)
		if next < len(w.toks) && w.toks[next].isPunct("{") {
			w.baseDepth = 1
		}
		return next - 1

	case t.isKeyword("use") && topLevel:
		if i+1 < len(w.toks) && w.toks[i+1].isPunct("(") {
			// closure binding
			return i
		}
		return w.imports(i + 1)

	case isDeclaration(t) && w.info.Class == "":
		if w.skipDeclaration(i) {
			return i
		}
		return w.declaration(i)

	case t.isKeyword("const") && w.inBody():
		return w.constants(i + 1)

	case t.isKeyword("function") && w.inBody():
		w.method(i)
	}

	return i
}

func (w *walker) inBody() bool {
	return w.bodyDepth > 0 && w.depth == w.bodyDepth
}

func isDeclaration(t token) bool {
	return t.isKeyword(KindClass) || t.isKeyword(KindInterface) || t.isKeyword(KindTrait) || t.isKeyword(KindEnum)
}

// skipDeclaration filters keyword uses that are not declarations: Foo::class,
// anonymous classes and keywords not followed by a name.
func (w *walker) skipDeclaration(i int) bool {
	if i > 0 {
		prev := w.toks[i-1]
		if prev.typ == tokDoubleColon || prev.isKeyword("new") || prev.isPunct(">") {
			return true
		}
	}

	return i+1 >= len(w.toks) || !w.toks[i+1].isName()
}

// declaration records the type name and walks the header up to the body.
func (w *walker) declaration(i int) int {
	w.info.Kind = strings.ToLower(w.toks[i].value)
	w.info.Class = w.info.qualify(w.toks[i+1].value)

	j := i + 2
	for j < len(w.toks) && !w.toks[j].isPunct("{") {
		switch {
		case w.toks[j].isKeyword("extends"):
			var names []string
			names, j = w.collectList(j + 1)
			if len(names) > 0 {
				w.info.Extends = w.info.resolve(names[0])
				for _, n := range names[1:] {
					w.info.Implements = append(w.info.Implements, w.info.resolve(n))
				}
			}
		case w.toks[j].isKeyword("implements"):
			var names []string
			names, j = w.collectList(j + 1)
			for _, n := range names {
				w.info.Implements = append(w.info.Implements, w.info.resolve(n))
			}
		default:
			j++
		}
	}

	if j < len(w.toks) {
		// the brace itself is counted by the main loop
		w.bodyDepth = w.depth + 1
	}

	return j - 1
}

// imports records a top-level use statement. Function and constant imports are
// skipped. Returns the index of the terminating semicolon.
func (w *walker) imports(i int) int {
	if i < len(w.toks) && (w.toks[i].isKeyword("function") || w.toks[i].isKeyword("const")) {
		return w.skipTo(i, ";")
	}

	for i < len(w.toks) {
		name, next := w.collectName(i)
		use := Use{Name: strings.TrimPrefix(name, `\`)}

		if next < len(w.toks) && w.toks[next].isKeyword("as") && next+1 < len(w.toks) {
			use.Alias = w.toks[next+1].value
			next += 2
		}

		if use.Name != "" {
			w.info.Uses = append(w.info.Uses, use)
		}

		if next >= len(w.toks) || !w.toks[next].isPunct(",") {
			return w.skipTo(next, ";")
		}

		i = next + 1
	}

	return i
}

// constants records string-valued class constants (const A = 'a', B = 'b';).
func (w *walker) constants(i int) int {
	for i < len(w.toks) {
		// typed constants put the type before the name; take the last name before '='
		name := ""
		for i < len(w.toks) && !w.toks[i].isPunct("=") && !w.toks[i].isPunct(";") {
			if w.toks[i].isName() {
				name = w.toks[i].value
			}
			i++
		}

		if i >= len(w.toks) || w.toks[i].isPunct(";") {
			return i
		}

		i++ // '='
		if i+1 < len(w.toks) && w.toks[i].typ == tokString &&
			(w.toks[i+1].isPunct(";") || w.toks[i+1].isPunct(",")) && name != "" {
			w.info.Constants[name] = unquote(w.toks[i].value)
		}

		// advance to the next declarator or the end of the statement
		for i < len(w.toks) && !w.toks[i].isPunct(",") && !w.toks[i].isPunct(";") {
			i++
		}

		if i >= len(w.toks) || w.toks[i].isPunct(";") {
			return i
		}

		i++
	}

	return i
}

// method records public method names and methods whose body is exactly
// `return '<literal>';`. It only peeks ahead; braces are still counted by the
// main loop.
func (w *walker) method(fn int) {
	public := true
	for j := fn - 1; j >= 0 && w.toks[j].isName(); j-- {
		if w.toks[j].isKeyword("private") || w.toks[j].isKeyword("protected") {
			public = false
		}
	}

	i := fn + 1
	for i < len(w.toks) && w.toks[i].isPunct("&") {
		i++
	}

	if i >= len(w.toks) || !w.toks[i].isName() {
		return
	}

	name := w.toks[i].value
	if public {
		w.info.Methods = append(w.info.Methods, name)
	}

	for i < len(w.toks) && !w.toks[i].isPunct("{") && !w.toks[i].isPunct(";") {
		i++
	}

	if i+4 >= len(w.toks) || !w.toks[i].isPunct("{") {
		return
	}

	body := w.toks[i+1 : i+5]
	if body[0].isKeyword("return") && body[1].typ == tokString && body[2].isPunct(";") && body[3].isPunct("}") {
		w.info.Returns[name] = unquote(body[1].value)
	}
}

// collectName concatenates a (possibly qualified) name starting at i and
// returns it with the index of the first token after it.
func (w *walker) collectName(i int) (string, int) {
	var b strings.Builder
	for i < len(w.toks) {
		t := w.toks[i]
		if !t.isName() && !t.isPunct(`\`) {
			break
		}

		if t.isName() && b.Len() > 0 && !strings.HasSuffix(b.String(), `\`) {
			break
		}

		b.WriteString(t.value)
		i++
	}

	return b.String(), i
}

// collectList reads a comma separated list of names and returns the index of
// the token that ended it.
func (w *walker) collectList(i int) ([]string, int) {
	var names []string
	for i < len(w.toks) {
		name, next := w.collectName(i)
		if name == "" || w.isHeaderKeyword(name) {
			return names, i
		}

		names = append(names, name)
		i = next
		if i >= len(w.toks) || !w.toks[i].isPunct(",") {
			return names, i
		}
		i++
	}

	return names, i
}

func (w *walker) isHeaderKeyword(name string) bool {
	return equalFold(name, "extends") || equalFold(name, "implements")
}

func (w *walker) skipTo(i int, punct string) int {
	for i < len(w.toks) && !w.toks[i].isPunct(punct) {
		i++
	}

	return i
}

// unquote strips PHP string quotes and resolves the common escapes.
func unquote(lit string) string {
	if len(lit) < 2 {
		return lit
	}

	quote, body := lit[0], lit[1:len(lit)-1]
	if quote == '\'' {
		return strings.NewReplacer(`\'`, `'`, `\\`, `\`).Replace(body)
	}

	return strings.NewReplacer(`\"`, `"`, `\\`, `\`, `\n`, "\n", `\t`, "\t", `\$`, `$`).Replace(body)
}
