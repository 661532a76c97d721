package kernel

// ---------------------------------------------------------------------------
// Structural normalizers: raw tokens -> block-delimited tokens
// ---------------------------------------------------------------------------

// Normalizer transforms a raw token stream into a structured one. The
// kernel does not know which block style a language uses; the language
// supplies the normalizer. The two styles in the wild are covered by
// IndentBlocks (indentation-based) and BraceBalance (explicit delimiters).
type Normalizer func(toks []Token, src string) ([]Token, error)

// PassThrough is the identity normalizer.
func PassThrough(toks []Token, src string) ([]Token, error) {
	return toks, nil
}

// IndentBlocks translates indentation into explicit BlockStart/BlockEnd
// tokens and inserts a Terminator token at every line break, Python-style.
//
// Indentation is measured in bytes from the line start to the first token of
// the line; a dedent must return to an indentation level already on the
// stack, otherwise the stream is rejected with a parse error.
func IndentBlocks(toks []Token, src string) ([]Token, error) {
	lineStarts := computeLineStarts(src)

	var out []Token
	indents := []int{0}
	prevLine := -1

	for _, tok := range toks {
		if tok.Role == RoleEOF {
			break
		}
		line := lineIndex(lineStarts, tok.Span.Start)
		if line != prevLine {
			if prevLine >= 0 {
				out = append(out, Token{Role: RoleTerminator, Lexeme: "\n", Span: tok.Span})
			}
			indent := tok.Span.Start - lineStarts[line]
			switch {
			case indent > indents[len(indents)-1]:
				indents = append(indents, indent)
				out = append(out, Token{Role: RoleBlockStart, Span: tok.Span})
			case indent < indents[len(indents)-1]:
				for indent < indents[len(indents)-1] {
					indents = indents[:len(indents)-1]
					out = append(out, Token{Role: RoleBlockEnd, Span: tok.Span})
				}
				if indent != indents[len(indents)-1] {
					return nil, &ParseError{Span: tok.Span, Msg: "inconsistent indentation"}
				}
			}
			prevLine = line
		}
		out = append(out, tok)
	}

	end := Span{Start: len(src), End: len(src)}
	if prevLine >= 0 {
		out = append(out, Token{Role: RoleTerminator, Lexeme: "\n", Span: end})
	}
	for len(indents) > 1 {
		indents = indents[:len(indents)-1]
		out = append(out, Token{Role: RoleBlockEnd, Span: end})
	}
	out = append(out, Token{Role: RoleEOF, Span: end})
	return out, nil
}

// BraceDelims returns a normalizer that checks delimiter balance for the
// given open->close pairs and passes the stream through otherwise
// unchanged. An unmatched delimiter is a parse error at its span.
func BraceDelims(pairs map[string]string) Normalizer {
	closers := make(map[string]string, len(pairs))
	for open, cl := range pairs {
		closers[cl] = open
	}
	return func(toks []Token, src string) ([]Token, error) {
		var stack []Token
		for _, tok := range toks {
			lx := tok.Lexeme
			if _, isOpen := pairs[lx]; isOpen && tok.Role != RoleString {
				stack = append(stack, tok)
				continue
			}
			if open, isClose := closers[lx]; isClose && tok.Role != RoleString {
				if len(stack) == 0 {
					return nil, &ParseError{Span: tok.Span, Msg: "unmatched " + lx}
				}
				top := stack[len(stack)-1]
				if top.Lexeme != open {
					return nil, &ParseError{Span: tok.Span, Msg: "mismatched " + lx + " for " + top.Lexeme}
				}
				stack = stack[:len(stack)-1]
			}
		}
		if len(stack) > 0 {
			top := stack[len(stack)-1]
			return nil, &ParseError{Span: top.Span, Msg: "unclosed " + top.Lexeme}
		}
		return toks, nil
	}
}

func computeLineStarts(src string) []int {
	starts := []int{0}
	for i := 0; i < len(src); i++ {
		if src[i] == '\n' {
			starts = append(starts, i+1)
		}
	}
	return starts
}

// lineIndex returns the index of the line containing the byte offset.
func lineIndex(starts []int, offset int) int {
	lo, hi := 0, len(starts)-1
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if starts[mid] <= offset {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return lo
}
