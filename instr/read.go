package instr

import (
	"fmt"
	"strconv"

	"github.com/substrate-lang/substrate/kernel"
)

// ---------------------------------------------------------------------------
// Reader: printed form -> instruction trees
// ---------------------------------------------------------------------------

// Read parses the printed form of a program back into a Program. Together
// with Print it gives a human-auditable round trip next to the binary wire
// codec: Read(Print(p)) is structurally equal to p. Spans are not carried
// by the printed form, so they come back zero.
func Read(text string) (*Program, error) {
	toks, err := scanForms(text)
	if err != nil {
		return nil, err
	}
	r := &formReader{toks: toks}
	prog := &Program{}
	for !r.atEnd() {
		if r.peekHead("func") {
			fn, err := r.readFunc()
			if err != nil {
				return nil, err
			}
			if prog.Funcs == nil {
				prog.Funcs = make(map[string]*Function)
			}
			if _, dup := prog.Funcs[fn.Name]; dup {
				return nil, fmt.Errorf("reading program: duplicate function %q", fn.Name)
			}
			prog.Funcs[fn.Name] = fn
			continue
		}
		if prog.Body != nil {
			return nil, fmt.Errorf("reading program: more than one body form")
		}
		body, err := r.readForm()
		if err != nil {
			return nil, err
		}
		prog.Body = body
	}
	if prog.Body == nil {
		return nil, fmt.Errorf("reading program: no body form")
	}
	return prog, nil
}

type formTokKind uint8

const (
	formOpen formTokKind = iota + 1
	formClose
	formAtom
	formString
)

type formTok struct {
	kind formTokKind
	text string
}

func scanForms(text string) ([]formTok, error) {
	var toks []formTok
	for i := 0; i < len(text); {
		c := text[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			i++
		case c == '(':
			toks = append(toks, formTok{kind: formOpen})
			i++
		case c == ')':
			toks = append(toks, formTok{kind: formClose})
			i++
		case c == '"':
			end := i + 1
			for end < len(text) && text[end] != '"' {
				if text[end] == '\\' {
					end++
				}
				end++
			}
			if end >= len(text) {
				return nil, fmt.Errorf("reading program: unterminated string at offset %d", i)
			}
			s, err := strconv.Unquote(text[i : end+1])
			if err != nil {
				return nil, fmt.Errorf("reading program: bad string at offset %d: %w", i, err)
			}
			toks = append(toks, formTok{kind: formString, text: s})
			i = end + 1
		default:
			end := i
			for end < len(text) {
				c := text[end]
				if c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '(' || c == ')' || c == '"' {
					break
				}
				end++
			}
			toks = append(toks, formTok{kind: formAtom, text: text[i:end]})
			i = end
		}
	}
	return toks, nil
}

type formReader struct {
	toks []formTok
	pos  int
}

func (r *formReader) atEnd() bool {
	return r.pos >= len(r.toks)
}

// peekHead reports whether the next form opens with the given head atom.
func (r *formReader) peekHead(head string) bool {
	return r.pos+1 < len(r.toks) &&
		r.toks[r.pos].kind == formOpen &&
		r.toks[r.pos+1].kind == formAtom &&
		r.toks[r.pos+1].text == head
}

func (r *formReader) peekClose() bool {
	return r.pos < len(r.toks) && r.toks[r.pos].kind == formClose
}

func (r *formReader) expect(kind formTokKind, what string) (formTok, error) {
	if r.atEnd() {
		return formTok{}, fmt.Errorf("reading program: unexpected end, want %s", what)
	}
	tok := r.toks[r.pos]
	if tok.kind != kind {
		return formTok{}, fmt.Errorf("reading program: unexpected %q, want %s", tok.text, what)
	}
	r.pos++
	return tok, nil
}

func (r *formReader) atom() (string, error) {
	tok, err := r.expect(formAtom, "an atom")
	return tok.text, err
}

func (r *formReader) str() (string, error) {
	tok, err := r.expect(formString, "a quoted string")
	return tok.text, err
}

func (r *formReader) readFunc() (*Function, error) {
	if _, err := r.expect(formOpen, "'('"); err != nil {
		return nil, err
	}
	if _, err := r.atom(); err != nil { // "func"
		return nil, err
	}
	name, err := r.atom()
	if err != nil {
		return nil, err
	}
	if _, err := r.expect(formOpen, "a parameter list"); err != nil {
		return nil, err
	}
	var params []string
	for !r.peekClose() {
		p, err := r.atom()
		if err != nil {
			return nil, err
		}
		params = append(params, p)
	}
	r.pos++ // closing paren of the parameter list
	body, err := r.readForm()
	if err != nil {
		return nil, err
	}
	if _, err := r.expect(formClose, "')'"); err != nil {
		return nil, err
	}
	return &Function{Name: name, Params: params, Body: body}, nil
}

func (r *formReader) readForm() (*Instruction, error) {
	if _, err := r.expect(formOpen, "'('"); err != nil {
		return nil, err
	}
	head, err := r.atom()
	if err != nil {
		return nil, err
	}
	switch head {
	case "const":
		roleName, err := r.atom()
		if err != nil {
			return nil, err
		}
		role, ok := kernel.RoleNamed(roleName)
		if !ok {
			return nil, fmt.Errorf("reading program: unknown role %q", roleName)
		}
		lexeme, err := r.str()
		if err != nil {
			return nil, err
		}
		if _, err := r.expect(formClose, "')'"); err != nil {
			return nil, err
		}
		return Const(role, lexeme, kernel.Span{}), nil

	case "load":
		name, err := r.atom()
		if err != nil {
			return nil, err
		}
		if _, err := r.expect(formClose, "')'"); err != nil {
			return nil, err
		}
		return Load(name, kernel.Span{}), nil

	case "transfer":
		kindName, err := r.atom()
		if err != nil {
			return nil, err
		}
		kind, err := transferNamed(kindName)
		if err != nil {
			return nil, err
		}
		var value *Instruction
		if !r.peekClose() {
			value, err = r.readForm()
			if err != nil {
				return nil, err
			}
		}
		if _, err := r.expect(formClose, "')'"); err != nil {
			return nil, err
		}
		return TransferOf(kind, value, kernel.Span{}), nil

	case "assign":
		name, err := r.atom()
		if err != nil {
			return nil, err
		}
		kids, err := r.readKids()
		if err != nil {
			return nil, err
		}
		if len(kids) != 1 {
			return nil, fmt.Errorf("reading program: assign wants one expression, got %d", len(kids))
		}
		return Assign(name, kids[0], kernel.Span{}), nil

	case "invoke":
		selector, err := r.str()
		if err != nil {
			return nil, err
		}
		kids, err := r.readKids()
		if err != nil {
			return nil, err
		}
		return Invoke(selector, kernel.Span{}, kids...), nil

	case "operate":
		op, err := r.atom()
		if err != nil {
			return nil, err
		}
		kids, err := r.readKids()
		if err != nil {
			return nil, err
		}
		return Operate(op, kernel.Span{}, kids...), nil

	case "seq", "scope", "branch", "loop":
		kids, err := r.readKids()
		if err != nil {
			return nil, err
		}
		switch head {
		case "seq":
			return Seq(kids...), nil
		case "scope":
			if len(kids) != 1 {
				return nil, fmt.Errorf("reading program: scope wants one body, got %d", len(kids))
			}
			return Scope(kids[0]), nil
		case "branch":
			if len(kids) < 2 || len(kids) > 3 {
				return nil, fmt.Errorf("reading program: branch wants two or three forms, got %d", len(kids))
			}
			if len(kids) == 2 {
				return Branch(kids[0], kids[1], nil), nil
			}
			return Branch(kids[0], kids[1], kids[2]), nil
		default:
			if len(kids) != 2 {
				return nil, fmt.Errorf("reading program: loop wants condition and body, got %d", len(kids))
			}
			return Loop(kids[0], kids[1]), nil
		}
	}
	return nil, fmt.Errorf("reading program: unknown form %q", head)
}

func (r *formReader) readKids() ([]*Instruction, error) {
	var kids []*Instruction
	for !r.peekClose() {
		kid, err := r.readForm()
		if err != nil {
			return nil, err
		}
		kids = append(kids, kid)
	}
	r.pos++ // closing paren
	return kids, nil
}

func transferNamed(name string) (TransferKind, error) {
	switch name {
	case "return":
		return TransferReturn, nil
	case "break":
		return TransferBreak, nil
	case "continue":
		return TransferContinue, nil
	}
	return 0, fmt.Errorf("reading program: unknown transfer %q", name)
}
