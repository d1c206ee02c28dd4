// Package linelog implements a versioned line-history engine.
//
// A LineLog stores every revision of one text file as a small
// interpreted program. Every line that ever existed has a half-open
// presence interval [insertedAtRev, deletedAtRev); checking out
// revision R walks the program once and emits exactly the lines whose
// interval contains R. Editing history is patching the program, so
// checkouts, past-revision edits, reordering and folding never produce
// merge conflicts.
//
// All mutators return new values. A LineLog is safe to share by value;
// nothing is modified in place.
package linelog

import (
	"fmt"
	"strings"

	"stackline/linediff"
)

// LineInfo is one materialized line of a checkout.
type LineInfo struct {
	Data string // line content, includes the EOL
	Rev  Rev    // revision that introduced the line
	Pc   int    // program counter of the emitting instruction
	// Deleted is only meaningful for range checkouts: the line was
	// present somewhere in the range but is gone at its upper end.
	Deleted bool
}

// FlattenLine is the full cross-revision history of one physical
// line: the line belongs to revision r exactly when r is in Revs.
type FlattenLine struct {
	Data string
	Revs RevSet
}

// LineLog is an immutable {program, maxRev} pair.
type LineLog struct {
	code   program
	maxRev Rev
}

// New returns an empty LineLog: maxRev 0, checkout of every revision
// is the empty text.
func New() *LineLog {
	return &LineLog{code: newProgram(), maxRev: 0}
}

// MaxRev returns the greatest revision referenced by the program.
func (l *LineLog) MaxRev() Rev {
	return l.maxRev
}

// ContentKey returns a digest identifying the program's build history.
// Two logs with equal keys have identical programs.
func (l *LineLog) ContentKey() string {
	return l.code.key()
}

// stepBudget bounds interpreter steps. A well-formed program visits
// each instruction at most once, so exceeding the budget means the
// program is corrupt; that is a fatal invariant violation, not an
// error callers can handle.
func stepBudget(codeLen int) int {
	return codeLen*2 + 3
}

// interp runs the program. JGE boundaries compare against startRev and
// JL boundaries against endRev, so the result holds every line present
// at any revision in [startRev, endRev]. The trailing END pseudo-line
// is included; EditChunk relies on it to address the end of the text.
func (l *LineLog) interp(startRev, endRev Rev) []LineInfo {
	code := l.code.code
	lines := make([]LineInfo, 0, len(code)/2+1)
	pc := 0
	for budget := stepBudget(len(code)); budget > 0; budget-- {
		if pc < 0 || pc >= len(code) {
			panic(fmt.Sprintf("linelog: pc %d out of range [0,%d)", pc, len(code)))
		}
		in := code[pc]
		switch in.op {
		case OpJ:
			pc = in.pc
		case OpJGE:
			if startRev >= in.rev {
				pc = in.pc
			} else {
				pc++
			}
		case OpJL:
			if endRev < in.rev {
				pc = in.pc
			} else {
				pc++
			}
		case OpLine:
			lines = append(lines, LineInfo{Data: in.data, Rev: in.rev, Pc: pc})
			pc++
		case OpEnd:
			lines = append(lines, LineInfo{Pc: pc})
			return lines
		}
	}
	panic(fmt.Sprintf("linelog: step budget %d exhausted; program is malformed", stepBudget(len(code))))
}

// execute is the cached entry point for interpretation. The returned
// slice is shared; callers must not modify it.
func (l *LineLog) execute(startRev, endRev Rev) []LineInfo {
	key := fmt.Sprintf("x:%s:%d:%d", l.code.key(), startRev, endRev)
	return executeCache.GetOrCompute(key, func() interface{} {
		return l.interp(startRev, endRev)
	}).([]LineInfo)
}

// Checkout returns the text of one revision.
func (l *LineLog) Checkout(rev Rev) string {
	lines := l.execute(rev, rev)
	var sb strings.Builder
	for _, li := range lines[:len(lines)-1] {
		sb.WriteString(li.Data)
	}
	return sb.String()
}

// CheckoutLines returns the lines of one revision, including the
// trailing END pseudo-line.
func (l *LineLog) CheckoutLines(rev Rev) []LineInfo {
	lines := l.execute(rev, rev)
	out := make([]LineInfo, len(lines))
	copy(out, lines)
	return out
}

// CheckoutRange returns every line present at any revision in
// [startRev, rev], with Deleted set on lines absent at rev itself.
// Used for diff and blame views spanning multiple revisions.
func (l *LineLog) CheckoutRange(startRev, rev Rev) []LineInfo {
	if startRev > rev {
		panic(fmt.Sprintf("linelog: invalid range [%d,%d]", startRev, rev))
	}
	lines := l.execute(startRev, rev)
	present := make(map[int]bool)
	for _, li := range l.execute(rev, rev) {
		present[li.Pc] = true
	}
	out := make([]LineInfo, len(lines))
	for i, li := range lines {
		li.Deleted = !present[li.Pc]
		out[i] = li
	}
	return out
}

// Blame returns the owning revision of each line at rev, in order.
func (l *LineLog) Blame(rev Rev) []Rev {
	lines := l.execute(rev, rev)
	revs := make([]Rev, len(lines)-1)
	for i, li := range lines[:len(lines)-1] {
		revs[i] = li.Rev
	}
	return revs
}

// EditChunk replaces the half-open line range [a1, a2) as seen at
// aRev with bLines, attributing the new lines to bRev. The patch
// appends trampoline blocks and redirects the affected instructions;
// cost is proportional to the edit size, not program size. Revisions
// at or after bRev see the new lines; earlier revisions are untouched,
// so bRev < aRev edits a past revision through present-day
// coordinates.
func (l *LineLog) EditChunk(aRev Rev, a1, a2 int, bRev Rev, bLines []string) *LineLog {
	if aRev < 0 || bRev < 0 {
		panic(fmt.Sprintf("linelog: negative revision in editChunk (%d, %d)", aRev, bRev))
	}
	aLines := l.execute(aRev, aRev)
	lineCount := len(aLines) - 1
	if a1 > a2 || a1 < 0 || a2 > lineCount {
		panic(fmt.Sprintf("linelog: editChunk range [%d,%d) invalid for %d lines", a1, a2, lineCount))
	}
	if a1 == a2 && len(bLines) == 0 {
		return l
	}

	if a1 == a2 && len(bLines) > 0 {
		a1, bLines = shiftInsertion(aLines, a1, bRev, bLines)
		a2 = a1
	}

	start := l.code.len()
	a1Pc := aLines[a1].Pc

	appended := make([]inst, 0, len(bLines)+3)
	if len(bLines) > 0 {
		appended = append(appended, inst{op: OpJL, rev: bRev, pc: start + 1 + len(bLines)})
		for _, data := range bLines {
			appended = append(appended, inst{op: OpLine, rev: bRev, data: data})
		}
	}
	if a1 < a2 {
		appended = append(appended, inst{op: OpJGE, rev: bRev, pc: a1Pc + 1})
	}
	// Move the redirected instruction to the end of the block so older
	// revisions still execute it, then resume the original flow.
	appended = append(appended, l.code.code[a1Pc])
	appended = append(appended, inst{op: OpJ, pc: a1Pc + 1})

	code := l.code.edit(a1Pc, inst{op: OpJ, pc: start}, appended)

	// Every deleted line carries its own guard, jumping exactly one
	// line forward. Guards appended by earlier edits target the pc
	// right after their own deleted line, so control can enter [a1, a2)
	// at any line's pc; a guard spanning several lines would let such a
	// jump land behind it and resurrect a deleted line. One-line guards
	// cover every entry point and keep deletion blocks strictly nested
	// for the structural walk.
	for i := a1 + 1; i < a2; i++ {
		pc := aLines[i].Pc
		blk := code.len()
		code = code.edit(pc, inst{op: OpJ, pc: blk}, []inst{
			{op: OpJGE, rev: bRev, pc: pc + 1},
			code.code[pc],
			{op: OpJ, pc: pc + 1},
		})
	}

	// maxRev tracks the revisions the instructions reference; only bRev
	// is written into the program.
	maxRev := l.maxRev
	if bRev > maxRev {
		maxRev = bRev
	}
	return &LineLog{code: code, maxRev: maxRev}
}

// insertShiftWindow bounds how far an insertion point may drift while
// looking for an existing boundary to attach to.
const insertShiftWindow = 3

// shiftInsertion nudges an insertion left or right while the text
// stays identical (the neighboring line equals the matching edge of
// bLines, so the insertion rotates around it), stopping at a position
// adjacent to a line already owned by bRev. Attaching to an existing
// boundary instead of nesting inside a foreign one keeps future
// reordering unconstrained. Best effort only; the original position is
// kept when no better one is near.
func shiftInsertion(aLines []LineInfo, a1 int, bRev Rev, bLines []string) (int, []string) {
	lineCount := len(aLines) - 1

	attached := func(pos int) bool {
		if pos > 0 && aLines[pos-1].Rev == bRev {
			return true
		}
		if pos < lineCount && aLines[pos].Rev == bRev {
			return true
		}
		return false
	}
	if attached(a1) {
		return a1, bLines
	}

	// Try rightward: inserting after an identical line is equivalent
	// to inserting before it with bLines rotated left.
	pos, rotated := a1, append([]string(nil), bLines...)
	for step := 0; step < insertShiftWindow && pos < lineCount; step++ {
		if aLines[pos].Data != rotated[0] {
			break
		}
		rotated = append(rotated[1:], rotated[0])
		pos++
		if attached(pos) {
			return pos, rotated
		}
	}

	// Try leftward with the symmetric rotation.
	pos, rotated = a1, append([]string(nil), bLines...)
	for step := 0; step < insertShiftWindow && pos > 0; step++ {
		if aLines[pos-1].Data != rotated[len(rotated)-1] {
			break
		}
		rotated = append([]string{rotated[len(rotated)-1]}, rotated[:len(rotated)-1]...)
		pos--
		if attached(pos) {
			return pos, rotated
		}
	}

	return a1, bLines
}

// RecordText appends text as revision maxRev+1.
func (l *LineLog) RecordText(text string) *LineLog {
	return l.RecordTextAt(text, l.maxRev+1)
}

// RecordTextAt records text as revision rev. For rev > maxRev this
// appends a new revision diffed against the current tip; for an
// existing rev it rewrites that revision in place, and the delta
// propagates to every later revision.
func (l *LineLog) RecordTextAt(text string, rev Rev) *LineLog {
	if rev < 0 {
		panic(fmt.Sprintf("linelog: negative revision %d", rev))
	}
	aRev := rev
	if aRev > l.maxRev {
		aRev = l.maxRev
	}
	aText := l.Checkout(aRev)
	bLines := linediff.SplitLines(text)

	res := l
	hunks := diffLines(aText, text)
	// Apply from the end backward so earlier hunks' line numbers stay
	// valid as the text shifts.
	for i := len(hunks) - 1; i >= 0; i-- {
		h := hunks[i]
		res = res.EditChunk(aRev, h.A1, h.A2, rev, bLines[h.B1:h.B2])
	}
	if res.maxRev < rev {
		res = &LineLog{code: res.code, maxRev: rev}
	}
	return res
}

// RemapRevs rewrites every revision number through m (identity for
// unmapped revisions) and recomputes maxRev. Reordering, folding (two
// revisions mapped to one) and gap insertion are all remaps. No
// dependency checking is done; use CalculateDepMap first to know which
// orderings are safe.
func (l *LineLog) RemapRevs(m map[Rev]Rev) *LineLog {
	code := make([]inst, len(l.code.code))
	copy(code, l.code.code)
	var maxRev Rev
	for i := range code {
		switch code[i].op {
		case OpJGE, OpJL, OpLine:
			if to, ok := m[code[i].rev]; ok {
				code[i].rev = to
			}
			if code[i].rev > maxRev {
				maxRev = code[i].rev
			}
		}
	}
	return &LineLog{code: rebuild(code), maxRev: maxRev}
}
