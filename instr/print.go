package instr

import (
	"fmt"
	"sort"
	"strings"
)

// ---------------------------------------------------------------------------
// Pretty printer: deterministic textual rendering of instruction trees
// ---------------------------------------------------------------------------

// Print renders a compiled program in a stable, human-readable form. Two
// structurally equal programs print identically; the tests rely on this for
// round-trip comparisons, and the CLI exposes it for inspection.
func Print(p *Program) string {
	var sb strings.Builder
	names := make([]string, 0, len(p.Funcs))
	for name := range p.Funcs {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fn := p.Funcs[name]
		fmt.Fprintf(&sb, "(func %s (%s)\n", fn.Name, strings.Join(fn.Params, " "))
		printInstr(&sb, fn.Body, 1)
		sb.WriteString(")\n")
	}
	printInstr(&sb, p.Body, 0)
	return sb.String()
}

// PrintInstruction renders a single instruction tree.
func PrintInstruction(in *Instruction) string {
	var sb strings.Builder
	printInstr(&sb, in, 0)
	return sb.String()
}

func printInstr(sb *strings.Builder, in *Instruction, depth int) {
	indent := strings.Repeat("  ", depth)
	switch in.Kind {
	case KindConst:
		fmt.Fprintf(sb, "%s(const %s %q)\n", indent, in.Role, in.Lexeme)
	case KindLoad:
		fmt.Fprintf(sb, "%s(load %s)\n", indent, in.Lexeme)
	case KindTransfer:
		if len(in.Kids) == 0 {
			fmt.Fprintf(sb, "%s(transfer %s)\n", indent, in.Transfer)
			return
		}
		fmt.Fprintf(sb, "%s(transfer %s\n", indent, in.Transfer)
		printKids(sb, in, depth)
	case KindAssign:
		fmt.Fprintf(sb, "%s(assign %s\n", indent, in.Lexeme)
		printKids(sb, in, depth)
	case KindInvoke:
		fmt.Fprintf(sb, "%s(invoke %q\n", indent, in.Lexeme)
		printKids(sb, in, depth)
	case KindOperate:
		fmt.Fprintf(sb, "%s(operate %s\n", indent, in.Lexeme)
		printKids(sb, in, depth)
	default:
		fmt.Fprintf(sb, "%s(%s\n", indent, in.Kind)
		printKids(sb, in, depth)
	}
}

func printKids(sb *strings.Builder, in *Instruction, depth int) {
	for _, kid := range in.Kids {
		printInstr(sb, kid, depth+1)
	}
	sb.WriteString(strings.Repeat("  ", depth) + ")\n")
}
