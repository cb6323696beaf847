package scanner

import (
	"github.com/alecthomas/participle/v2/lexer"
)

var (
	// phpLexer switches between inline HTML and PHP code on open/close tags.
	phpLexer = lexer.MustStateful(lexer.Rules{
		"Root": {
			{Name: "OpenTag", Pattern: `<\?(?:[pP][hH][pP]|=)?`, Action: lexer.Push("Code")},
			{Name: "InlineHTML", Pattern: `[^<]+|<`},
		},
		"Code": {
			{Name: "CloseTag", Pattern: `\?>`, Action: lexer.Pop()},
			{Name: "Comment", Pattern: `//[^\n]*|#(?:[^\[\n][^\n]*)?|/\*[^*]*\*+(?:[^/*][^*]*\*+)*/`},
			{Name: "String", Pattern: `'(?:\\(?s:.)|[^'\\])*'|"(?:\\(?s:.)|[^"\\])*"`},
			{Name: "Variable", Pattern: `\$+[\p{L}_][\p{L}\p{N}_]*`},
			{Name: "Name", Pattern: `\\?[\p{L}_][\p{L}\p{N}_]*(?:\\[\p{L}_][\p{L}\p{N}_]*)*`},
			{Name: "Number", Pattern: `\d[\d_]*(?:\.\d+)?`},
			{Name: "DoubleColon", Pattern: `::`},
			{Name: "Whitespace", Pattern: `\s+`},
			{Name: "Punct", Pattern: `[^\s\p{L}\p{N}_]`},
			{Name: "Char", Pattern: `.`},
		},
	})

	symbols = phpLexer.Symbols()

	tokName        = symbols["Name"]
	tokString      = symbols["String"]
	tokPunct       = symbols["Punct"]
	tokDoubleColon = symbols["DoubleColon"]

	// elided token types never take part in the structural scan
	elided = map[lexer.TokenType]bool{
		symbols["OpenTag"]:    true,
		symbols["CloseTag"]:   true,
		symbols["InlineHTML"]: true,
		symbols["Comment"]:    true,
		symbols["Whitespace"]: true,
		lexer.EOF:             true,
	}
)

// token is a significant lexical token.
type token struct {
	typ   lexer.TokenType
	value string
}

func (t token) isName() bool {
	return t.typ == tokName
}

func (t token) isPunct(p string) bool {
	return t.typ == tokPunct && t.value == p
}

// isKeyword reports whether the token is the given (case-insensitive) keyword.
func (t token) isKeyword(kw string) bool {
	return t.typ == tokName && equalFold(t.value, kw)
}

// tokenize lexes PHP source and drops tokens that carry no structure.
func tokenize(filename, src string) ([]token, error) {
	lex, err := phpLexer.LexString(filename, src)
	if err != nil {
		return nil, err
	}

	all, err := lexer.ConsumeAll(lex)
	if err != nil {
		return nil, err
	}

	toks := make([]token, 0, len(all)/2)
	for _, t := range all {
		if elided[t.Type] {
			continue
		}

		toks = append(toks, token{typ: t.Type, value: t.Value})
	}

	return toks, nil
}
