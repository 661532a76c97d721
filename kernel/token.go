package kernel

import "fmt"

// ---------------------------------------------------------------------------
// Tokens and lexeme roles
// ---------------------------------------------------------------------------

// Role classifies a lexeme. Roles are assigned by the registry (for
// registered lexemes), by the lexer's fallback rules (identifiers, numbers,
// strings), or by a structural normalizer (block markers).
type Role int

const (
	RoleNone Role = iota
	RoleOperator
	RoleKeyword
	RoleDelimiter
	RoleTerminator
	RoleSkip
	RoleIdent
	RoleNumber
	RoleString

	// Synthetic roles produced by structural normalizers.
	RoleBlockStart
	RoleBlockEnd

	RoleEOF
)

var roleNames = map[Role]string{
	RoleNone:       "NONE",
	RoleOperator:   "OPERATOR",
	RoleKeyword:    "KEYWORD",
	RoleDelimiter:  "DELIMITER",
	RoleTerminator: "TERMINATOR",
	RoleSkip:       "SKIP",
	RoleIdent:      "IDENT",
	RoleNumber:     "NUMBER",
	RoleString:     "STRING",
	RoleBlockStart: "BLOCK-START",
	RoleBlockEnd:   "BLOCK-END",
	RoleEOF:        "EOF",
}

func (r Role) String() string {
	if name, ok := roleNames[r]; ok {
		return name
	}
	return fmt.Sprintf("Role(%d)", int(r))
}

// RoleNamed maps a role's printed name back to the role.
func RoleNamed(name string) (Role, bool) {
	for r, n := range roleNames {
		if n == name {
			return r, true
		}
	}
	return RoleNone, false
}

// Token is a single lexeme with its source span. Tokens are immutable once
// produced; normalizers build new tokens rather than rewriting old ones.
type Token struct {
	Lexeme string
	Role   Role
	Span   Span
}

func (t Token) String() string {
	if t.Role == RoleEOF {
		return "EOF"
	}
	if t.Role == RoleBlockStart || t.Role == RoleBlockEnd {
		return t.Role.String()
	}
	return fmt.Sprintf("%s(%q)", t.Role, t.Lexeme)
}

// Is reports whether the token carries the given lexeme.
func (t Token) Is(lexeme string) bool {
	return t.Lexeme == lexeme && t.Role != RoleString
}
