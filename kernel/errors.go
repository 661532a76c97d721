package kernel

import "fmt"

// ---------------------------------------------------------------------------
// Error taxonomy: lexical, parse, configuration
// ---------------------------------------------------------------------------

// LexError reports a byte position where no registered or fallback lexeme
// pattern matches. Fatal to the tokenization pass that produced it.
type LexError struct {
	Span Span
	Msg  string
}

func (e *LexError) Error() string {
	return fmt.Sprintf("lex error at %s: %s", e.Span, e.Msg)
}

// ParseError reports an unexpected token, unmatched bracket or premature end
// of stream. Fatal to the compilation of that program; no partial recovery.
type ParseError struct {
	Span Span
	Msg  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at %s: %s", e.Span, e.Msg)
}

// ConfigError reports an invalid registration: a lexeme registered under two
// roles, an ambiguous statement pattern, a conflicting operator entry.
// Configuration errors surface at registration time, before any program is
// lexed or parsed.
type ConfigError struct {
	Msg string
}

func (e *ConfigError) Error() string {
	return "config error: " + e.Msg
}

func configErrorf(format string, args ...any) *ConfigError {
	return &ConfigError{Msg: fmt.Sprintf(format, args...)}
}
