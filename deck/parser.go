package deck

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

var (
	deckLexer = lexer.MustSimple([]lexer.SimpleRule{
		{Name: "Whitespace", Pattern: `[ \t\r]+`},
		{Name: "Newline", Pattern: `\n+`},
		{Name: "BlockComment", Pattern: `/\*[^*]*\*+(?:[^/*][^*]*\*+)*/`},
		{Name: "LineComment", Pattern: `//[^\n]*`},
		{Name: "Color", Pattern: `#(?:[0-9A-Fa-f]{3}|[0-9A-Fa-f]{6}|[0-9A-Fa-f]{8})\b`},
		{Name: "HashComment", Pattern: `#[^\n]*`},
		{Name: "Number", Pattern: `-?(?:\d+\.\d+|\d+)`},
		{Name: "String", Pattern: "\"(?:\\\\.|[^\"\\\\])*\"|`[^`]*`"},
		{Name: "Ident", Pattern: `[A-Za-z_][A-Za-z0-9_-]*`},
		{Name: "Symbol", Pattern: `[:;+]`},
		{Name: "LBrace", Pattern: `{`},
		{Name: "RBrace", Pattern: `}`},
	})

	documentParser = participle.MustBuild[Document](
		participle.Lexer(deckLexer),
		participle.Elide("Whitespace", "LineComment", "BlockComment", "HashComment"),
	)
)

// Document is the root AST node for a deck file.
type Document struct {
	Pos     lexer.Position `parser:"" json:"-"`
	Name    string         `parser:"Newline* 'deck' @Ident"`
	Version string         `parser:"@Ident?"`
	Entries []*Entry       `parser:"'{' Newline* ( @@ ( ';' | Newline )* )* '}' Newline*"`
}

// Entry is either a card or a deck-level setting.
type Entry struct {
	Card    *CardNode   `parser:"  @@"`
	Setting *Assignment `parser:"| @@"`
}

// CardNode is a `card name { ... }` block.
type CardNode struct {
	Pos    lexer.Position `parser:"" json:"-"`
	Name   string         `parser:"'card' ( @Ident | @Number )"`
	Fields []*Assignment  `parser:"'{' Newline* ( @@ ( ';' | Newline )* )* '}'"`
}

// Assignment uses colon syntax (key: value).
type Assignment struct {
	Pos   lexer.Position `parser:"" json:"-"`
	Key   string         `parser:"@Ident"`
	Value *Value         `parser:"':' Newline* @@"`
}

// Value is a scalar property value. Adjacent strings joined with `+` are concatenated.
type Value struct {
	Strings []*StringPart `parser:"  @@ ( '+' Newline* @@ )*"`
	Number  *string       `parser:"| @Number"`
	Color   *string       `parser:"| @Color"`
	Ident   *string       `parser:"| @Ident"`
}

// Text 返回值的字符串形式。
func (v *Value) Text() string {
	switch {
	case v == nil:
		return ""
	case len(v.Strings) > 0:
		var out strings.Builder
		for _, part := range v.Strings {
			out.WriteString(string(part.Value))
		}
		return out.String()
	case v.Number != nil:
		return *v.Number
	case v.Color != nil:
		return *v.Color
	case v.Ident != nil:
		return *v.Ident
	default:
		return ""
	}
}

// StringPart is one quoted piece of a string value.
type StringPart struct {
	Value StringLiteral `parser:"@String"`
}

// StringLiteral unquotes Go-style strings on capture.
type StringLiteral string

// Capture implements participle.Capture.
func (s *StringLiteral) Capture(values []string) error {
	if len(values) == 0 {
		return fmt.Errorf("string literal capture requires value")
	}
	val, err := strconv.Unquote(values[0])
	if err != nil {
		return err
	}
	*s = StringLiteral(val)
	return nil
}

// ParseDocument parses deck syntax from an io.Reader without validating it.
func ParseDocument(filename string, r io.Reader) (*Document, error) {
	return documentParser.Parse(filename, r)
}

// ParseDocumentString parses deck syntax from a string without validating it.
func ParseDocumentString(input string) (*Document, error) {
	return documentParser.ParseString("", input)
}
