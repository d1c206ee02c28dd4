package linelog

import (
	"fmt"
	"strings"
)

// DumpInstructions renders the raw program, one instruction per line.
// The format is stable; golden tests compare it byte for byte.
func (l *LineLog) DumpInstructions() string {
	var sb strings.Builder
	for pc, in := range l.code.code {
		switch in.op {
		case OpJ:
			fmt.Fprintf(&sb, "%d: J %d\n", pc, in.pc)
		case OpJGE:
			fmt.Fprintf(&sb, "%d: JGE %d %d\n", pc, in.rev, in.pc)
		case OpJL:
			fmt.Fprintf(&sb, "%d: JL %d %d\n", pc, in.rev, in.pc)
		case OpLine:
			fmt.Fprintf(&sb, "%d: LINE %d %q\n", pc, in.rev, in.data)
		case OpEnd:
			fmt.Fprintf(&sb, "%d: END\n", pc)
		}
	}
	return sb.String()
}

// DumpNesting renders the insertion/deletion block structure in
// flattened order, indented two spaces per nesting level. Insertion
// blocks open with "ins rN {", deletion blocks with "del rN {". The
// format is stable; golden tests compare it byte for byte.
func (l *LineLog) DumpNesting() string {
	var sb strings.Builder
	depth := 0
	indent := func() {
		for i := 0; i < depth; i++ {
			sb.WriteString("  ")
		}
	}
	l.walk(walkCallbacks{
		onPush: func(f stackFrame, insertion bool) {
			indent()
			kind := "del"
			if insertion {
				kind = "ins"
			}
			fmt.Fprintf(&sb, "%s r%d {\n", kind, f.rev)
			depth++
		},
		onPop: func(f stackFrame, insertion bool) {
			depth--
			indent()
			sb.WriteString("}\n")
		},
		onLine: func(in inst, pc int, insStack, delStack []stackFrame) {
			indent()
			fmt.Fprintf(&sb, "r%d %q\n", in.rev, in.data)
		},
	})
	return sb.String()
}
