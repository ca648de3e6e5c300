package parser

import (
	"strings"

	"github.com/alecthomas/participle/v2/lexer"
	"github.com/pkg/errors"
)

var (
	// statementLexer tokenizes just enough of ClickHouse SQL to find statement
	// boundaries. Rule order matters: comments must win over "-", "/" and "#".
	// Block comments nest, so each "/*" pushes another BlockComment state.
	statementLexer = lexer.MustStateful(lexer.Rules{
		"Root": {
			{Name: "BlockStart", Pattern: `/\*`, Action: lexer.Push("BlockComment")},
			{Name: "Comment", Pattern: `--[^\r\n]*`},
			{Name: "HashComment", Pattern: `#[^\r\n]*`},
			{Name: "String", Pattern: `'([^'\\]|\\.)*'`},
			{Name: "QuotedIdent", Pattern: `"([^"\\]|\\.)*"`},
			{Name: "BacktickIdent", Pattern: "`([^`\\\\]|\\\\.)*`"},
			{Name: "Semicolon", Pattern: `;`},
			{Name: "Whitespace", Pattern: `\s+`},
			{Name: "Text", Pattern: "[^;'\"`\\s/#-]+"},
			{Name: "Other", Pattern: `.`},
		},
		"BlockComment": {
			{Name: "BlockStart", Pattern: `/\*`, Action: lexer.Push("BlockComment")},
			{Name: "BlockEnd", Pattern: `\*/`, Action: lexer.Pop()},
			{Name: "BlockText", Pattern: `[^*/]+|[*/]`},
		},
	})

	symbols = statementLexer.Symbols()

	lineCommentTokens = map[lexer.TokenType]bool{
		symbols["Comment"]:     true,
		symbols["HashComment"]: true,
	}

	blockStart = symbols["BlockStart"]
	blockEnd   = symbols["BlockEnd"]
	blockText  = symbols["BlockText"]
	semicolon  = symbols["Semicolon"]
)

// SplitStatements splits body on statement separators and returns the
// non-empty statements in source order, without their trailing ";".
//
// Comments ("--", "#" and possibly nested "/* */") are dropped, so a
// comment-only fragment yields no statement, and every statement is trimmed
// of surrounding whitespace. No non-empty statement is ever dropped, including
// a final statement without a trailing separator. An unterminated block
// comment is an error.
//
//	SplitStatements("A; -- comment\nB;;") // ["A", "B"]
func SplitStatements(body string) ([]string, error) {
	lex, err := statementLexer.Lex("", strings.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(err, "failed to tokenize SQL")
	}

	tokens, err := lexer.ConsumeAll(lex)
	if err != nil {
		return nil, errors.Wrap(err, "failed to tokenize SQL")
	}

	var (
		stmts []string
		buf   strings.Builder
		depth int
	)

	flush := func() {
		if stmt := strings.TrimSpace(buf.String()); stmt != "" {
			stmts = append(stmts, stmt)
		}
		buf.Reset()
	}

	for _, tok := range tokens {
		switch {
		case tok.EOF():
		case tok.Type == blockStart:
			if depth == 0 {
				// keep tokens on either side of an inline comment apart
				buf.WriteByte(' ')
			}
			depth++
		case tok.Type == blockEnd:
			depth--
		case tok.Type == blockText:
		case tok.Type == semicolon:
			flush()
		case lineCommentTokens[tok.Type]:
			buf.WriteByte(' ')
		default:
			buf.WriteString(tok.Value)
		}
	}

	if depth > 0 {
		return nil, errors.Errorf("failed to tokenize SQL: unterminated block comment (depth %d)", depth)
	}
	flush()

	return stmts, nil
}
