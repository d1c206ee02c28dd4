package linelog

import (
	"fmt"

	"stackline/cas"
)

// Rev is a revision number. Revisions are dense non-negative integers;
// revision 0 is the immutable base.
type Rev int

// Op identifies an instruction kind.
type Op uint8

const (
	// OpJ jumps unconditionally.
	OpJ Op = iota
	// OpJGE jumps when the checkout revision is at or after rev. It
	// marks the start of a block deleted at rev.
	OpJGE
	// OpJL jumps when the checkout revision is before rev. It marks
	// the start of a block inserted at rev.
	OpJL
	// OpLine emits one line owned by rev.
	OpLine
	// OpEnd terminates interpretation.
	OpEnd
)

func (o Op) String() string {
	switch o {
	case OpJ:
		return "J"
	case OpJGE:
		return "JGE"
	case OpJL:
		return "JL"
	case OpLine:
		return "LINE"
	case OpEnd:
		return "END"
	default:
		return fmt.Sprintf("OP(%d)", uint8(o))
	}
}

type inst struct {
	op   Op
	rev  Rev    // JGE, JL, LINE
	pc   int    // jump target for J, JGE, JL
	data string // LINE payload, includes the EOL
}

// program is an append-oriented instruction sequence. Mutators return
// fresh values; the backing slice is copied, never shared after a
// patch. The hash chains every append and patch, so two programs
// compare equal exactly when they were built by the same history of
// operations. The hash is the memoization key for everything derived
// from the program.
type program struct {
	code []inst
	hash cas.Digest
}

// newProgram returns the empty program: an unconditional jump to END.
func newProgram() program {
	var p program
	p = p.appendInsts(
		inst{op: OpJ, pc: 1},
		inst{op: OpEnd},
	)
	return p
}

func (p program) len() int {
	return len(p.code)
}

// key returns the cache key identifying this program's history.
func (p program) key() string {
	return p.hash.Hex()
}

// appendInsts returns a program with insts appended. The original
// backing array is reused only for the copy, never aliased.
func (p program) appendInsts(insts ...inst) program {
	code := make([]inst, len(p.code), len(p.code)+len(insts))
	copy(code, p.code)
	h := p.hash
	for _, in := range insts {
		code = append(code, in)
		h = cas.Chain(h, encodeInst("a", len(code)-1, in))
	}
	return program{code: code, hash: h}
}

// edit applies one editChunk patch as a unit: appends the trampoline
// block and redirects code[patchPc] to it.
func (p program) edit(patchPc int, redirect inst, appended []inst) program {
	code := make([]inst, len(p.code), len(p.code)+len(appended))
	copy(code, p.code)
	h := p.hash
	for _, in := range appended {
		code = append(code, in)
		h = cas.Chain(h, encodeInst("a", len(code)-1, in))
	}
	code[patchPc] = redirect
	h = cas.Chain(h, encodeInst("p", patchPc, redirect))
	return program{code: code, hash: h}
}

// rebuild constructs a program from a full instruction listing, used
// by remapRevs. The hash restarts from the remapped instruction
// stream, so two identical remap results share a cache key.
func rebuild(code []inst) program {
	var h cas.Digest
	for i, in := range code {
		h = cas.Chain(h, encodeInst("r", i, in))
	}
	return program{code: code, hash: h}
}

func encodeInst(tag string, pc int, in inst) []byte {
	return []byte(fmt.Sprintf("%s %d %d %d %d %q", tag, pc, in.op, in.rev, in.pc, in.data))
}
