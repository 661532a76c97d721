package kernel

import (
	"fmt"
	"strings"
)

// ---------------------------------------------------------------------------
// Lexer: maximal-munch tokenizer over a registry's lexeme table
// ---------------------------------------------------------------------------

// Lexer tokenizes source text against a registry. It is a pure function of
// its inputs: no state survives a Tokenize call.
//
// At each position the longest registered lexeme wins (the registry hands
// lexemes over in descending length order). Registered lexemes made entirely
// of identifier characters additionally require a word boundary, so "while"
// never matches inside "while2". When no registered lexeme matches, the
// fallback accumulation rules apply; when those fail too, tokenization stops
// with a LexError carrying the offending span.
type Lexer struct {
	reg *Registry
	src string
	pos int
}

// NewLexer creates a lexer for the given source and registry. Constructing a
// lexer freezes the registry.
func NewLexer(src string, reg *Registry) *Lexer {
	reg.freeze()
	return &Lexer{reg: reg, src: src}
}

// Tokenize produces the full token sequence, terminated by an EOF token.
// Skip-marked lexemes are recognized but not emitted.
func (l *Lexer) Tokenize() ([]Token, error) {
	var toks []Token
	for l.pos < len(l.src) {
		tok, emit, err := l.next()
		if err != nil {
			return nil, err
		}
		if emit {
			toks = append(toks, tok)
		}
	}
	toks = append(toks, Token{Role: RoleEOF, Span: Span{Start: len(l.src), End: len(l.src)}})
	return toks, nil
}

// next consumes one lexeme. The second result reports whether the token is
// emitted (false for skip lexemes and comments).
func (l *Lexer) next() (Token, bool, error) {
	fb := l.reg.Fallback()

	if fb.LineComment != "" && strings.HasPrefix(l.src[l.pos:], fb.LineComment) {
		for l.pos < len(l.src) && l.src[l.pos] != '\n' {
			l.pos++
		}
		return Token{}, false, nil
	}

	// Registered lexemes, longest first.
	for _, lx := range l.reg.Lexemes() {
		if !strings.HasPrefix(l.src[l.pos:], lx) {
			continue
		}
		if isWordLexeme(lx) {
			end := l.pos + len(lx)
			if end < len(l.src) && isIdentPart(l.src[end]) {
				continue
			}
			if l.pos > 0 && isIdentPart(l.src[l.pos-1]) {
				continue
			}
		}
		start := l.pos
		l.pos += len(lx)
		role := l.reg.Role(lx)
		tok := Token{Lexeme: lx, Role: role, Span: Span{Start: start, End: l.pos}}
		return tok, role != RoleSkip, nil
	}

	c := l.src[l.pos]
	switch {
	case fb.Idents && isIdentStart(c):
		return l.lexIdent(), true, nil
	case fb.Numbers && isDigit(c):
		return l.lexNumber(), true, nil
	case fb.StringQuote != 0 && c == fb.StringQuote:
		return l.lexString(fb.StringQuote)
	}

	return Token{}, false, &LexError{
		Span: Span{Start: l.pos, End: l.pos + 1},
		Msg:  "no lexeme matches " + quoteByte(c),
	}
}

func (l *Lexer) lexIdent() Token {
	start := l.pos
	for l.pos < len(l.src) && isIdentPart(l.src[l.pos]) {
		l.pos++
	}
	return Token{
		Lexeme: l.src[start:l.pos],
		Role:   RoleIdent,
		Span:   Span{Start: start, End: l.pos},
	}
}

func (l *Lexer) lexNumber() Token {
	start := l.pos
	for l.pos < len(l.src) && isDigit(l.src[l.pos]) {
		l.pos++
	}
	// Fractional part only when a digit follows the dot, so "1." stays two
	// lexemes and range-style syntax remains available to languages.
	if l.pos+1 < len(l.src) && l.src[l.pos] == '.' && isDigit(l.src[l.pos+1]) {
		l.pos++
		for l.pos < len(l.src) && isDigit(l.src[l.pos]) {
			l.pos++
		}
	}
	return Token{
		Lexeme: l.src[start:l.pos],
		Role:   RoleNumber,
		Span:   Span{Start: start, End: l.pos},
	}
}

func (l *Lexer) lexString(quote byte) (Token, bool, error) {
	start := l.pos
	l.pos++ // opening quote
	var sb strings.Builder
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		switch c {
		case quote:
			l.pos++
			return Token{
				Lexeme: sb.String(),
				Role:   RoleString,
				Span:   Span{Start: start, End: l.pos},
			}, true, nil
		case '\\':
			if l.pos+1 >= len(l.src) {
				l.pos = len(l.src)
				continue
			}
			l.pos++
			switch l.src[l.pos] {
			case 'n':
				sb.WriteByte('\n')
			case 't':
				sb.WriteByte('\t')
			case '\\':
				sb.WriteByte('\\')
			case quote:
				sb.WriteByte(quote)
			default:
				sb.WriteByte(l.src[l.pos])
			}
			l.pos++
		case '\n':
			return Token{}, false, &LexError{
				Span: Span{Start: start, End: l.pos},
				Msg:  "unterminated string literal",
			}
		default:
			sb.WriteByte(c)
			l.pos++
		}
	}
	return Token{}, false, &LexError{
		Span: Span{Start: start, End: l.pos},
		Msg:  "unterminated string literal",
	}
}

// ---------------------------------------------------------------------------
// Character classes
// ---------------------------------------------------------------------------

func isIdentStart(c byte) bool {
	return c == '_' || ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || isDigit(c)
}

func isDigit(c byte) bool {
	return '0' <= c && c <= '9'
}

func isWordLexeme(lx string) bool {
	for i := 0; i < len(lx); i++ {
		if !isIdentPart(lx[i]) {
			return false
		}
	}
	return len(lx) > 0 && isIdentStart(lx[0])
}

func quoteByte(c byte) string {
	if c >= 0x20 && c < 0x7f {
		return "'" + string(c) + "'"
	}
	return fmt.Sprintf("byte 0x%02x", c)
}
