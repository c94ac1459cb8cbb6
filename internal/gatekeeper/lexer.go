package gatekeeper

import (
	"fmt"
	"unicode"
)

type TokenKind int

const (
	TokenWord TokenKind = iota
	TokenString
	TokenQuotedIdent
	TokenNumber
	TokenSymbol
	TokenSemicolon
	TokenComment
)

type Token struct {
	Kind TokenKind
	Text string
	Pos  int
}

// Tokenize splits SQL text into a tagged token stream. It understands
// single-line (--) and block (/* */) comments, single-quoted string
// literals and double-quoted identifiers, both with doubled-quote
// escaping. Whitespace is discarded. An input the lexer cannot classify
// returns an error rather than a best-effort stream.
func Tokenize(input string) ([]Token, error) {
	runes := []rune(input)
	tokens := make([]Token, 0, 16)
	pos := 0

	for pos < len(runes) {
		r := runes[pos]
		switch {
		case unicode.IsSpace(r):
			pos++
		case r == '-' && pos+1 < len(runes) && runes[pos+1] == '-':
			start := pos
			for pos < len(runes) && runes[pos] != '\n' {
				pos++
			}
			tokens = append(tokens, Token{Kind: TokenComment, Text: string(runes[start:pos]), Pos: start})
		case r == '/' && pos+1 < len(runes) && runes[pos+1] == '*':
			start := pos
			pos += 2
			closed := false
			for pos+1 < len(runes) {
				if runes[pos] == '*' && runes[pos+1] == '/' {
					pos += 2
					closed = true
					break
				}
				pos++
			}
			if !closed {
				return nil, fmt.Errorf("unterminated block comment at offset %d", start)
			}
			tokens = append(tokens, Token{Kind: TokenComment, Text: string(runes[start:pos]), Pos: start})
		case r == '\'':
			text, next, err := scanQuoted(runes, pos, '\'')
			if err != nil {
				return nil, err
			}
			tokens = append(tokens, Token{Kind: TokenString, Text: text, Pos: pos})
			pos = next
		case r == '"':
			text, next, err := scanQuoted(runes, pos, '"')
			if err != nil {
				return nil, err
			}
			tokens = append(tokens, Token{Kind: TokenQuotedIdent, Text: text, Pos: pos})
			pos = next
		case r == ';':
			tokens = append(tokens, Token{Kind: TokenSemicolon, Text: ";", Pos: pos})
			pos++
		case isWordStart(r):
			start := pos
			for pos < len(runes) && isWordPart(runes[pos]) {
				pos++
			}
			tokens = append(tokens, Token{Kind: TokenWord, Text: string(runes[start:pos]), Pos: start})
		case unicode.IsDigit(r):
			start := pos
			for pos < len(runes) && (unicode.IsDigit(runes[pos]) || runes[pos] == '.' || runes[pos] == 'e' || runes[pos] == 'E') {
				pos++
			}
			tokens = append(tokens, Token{Kind: TokenNumber, Text: string(runes[start:pos]), Pos: start})
		default:
			tokens = append(tokens, Token{Kind: TokenSymbol, Text: string(r), Pos: pos})
			pos++
		}
	}

	return tokens, nil
}

// scanQuoted consumes a quoted region starting at start, honoring the SQL
// doubled-quote escape. Returns the full quoted text including delimiters
// and the position just past the closing quote.
func scanQuoted(runes []rune, start int, quote rune) (string, int, error) {
	pos := start + 1
	for pos < len(runes) {
		if runes[pos] == quote {
			if pos+1 < len(runes) && runes[pos+1] == quote {
				pos += 2
				continue
			}
			return string(runes[start : pos+1]), pos + 1, nil
		}
		pos++
	}
	return "", 0, fmt.Errorf("unterminated quote starting at offset %d", start)
}

func isWordStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func isWordPart(r rune) bool {
	return r == '_' || r == '$' || unicode.IsLetter(r) || unicode.IsDigit(r)
}
