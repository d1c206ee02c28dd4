package linelog

import "fmt"

// stackFrame is one open insertion or deletion block during a
// structural walk: the block's revision and the pc where it closes.
type stackFrame struct {
	rev   Rev
	endPc int
}

// walkCallbacks receives structure events in a fixed order: at each
// pc, pop events fire first (insertion frames before deletion frames,
// each after the actual pop), then the line or push event for the
// instruction itself (push events fire after the push). The dump
// format depends on this ordering.
type walkCallbacks struct {
	onPush func(f stackFrame, insertion bool)
	onPop  func(f stackFrame, insertion bool)
	onLine func(in inst, pc int, insStack, delStack []stackFrame)
}

// walk visits the whole program in flattened order: unconditional
// jumps are followed, guarded blocks are always entered, and the two
// boundary stacks track which insertion/deletion blocks are open.
// Insertions nest strictly among themselves, as do deletions, so each
// stack pops exactly when the walk reaches its top frame's endPc.
func (l *LineLog) walk(cb walkCallbacks) {
	code := l.code.code
	var insStack, delStack []stackFrame
	pc := 0
	for budget := stepBudget(len(code)); budget > 0; budget-- {
		for {
			if n := len(insStack); n > 0 && insStack[n-1].endPc == pc {
				f := insStack[n-1]
				insStack = insStack[:n-1]
				if cb.onPop != nil {
					cb.onPop(f, true)
				}
				continue
			}
			if n := len(delStack); n > 0 && delStack[n-1].endPc == pc {
				f := delStack[n-1]
				delStack = delStack[:n-1]
				if cb.onPop != nil {
					cb.onPop(f, false)
				}
				continue
			}
			break
		}

		if pc < 0 || pc >= len(code) {
			panic(fmt.Sprintf("linelog: walk pc %d out of range [0,%d)", pc, len(code)))
		}
		in := code[pc]
		switch in.op {
		case OpJ:
			pc = in.pc
		case OpJL:
			f := stackFrame{rev: in.rev, endPc: in.pc}
			insStack = append(insStack, f)
			if cb.onPush != nil {
				cb.onPush(f, true)
			}
			pc++
		case OpJGE:
			f := stackFrame{rev: in.rev, endPc: in.pc}
			delStack = append(delStack, f)
			if cb.onPush != nil {
				cb.onPush(f, false)
			}
			pc++
		case OpLine:
			if cb.onLine != nil {
				cb.onLine(in, pc, insStack, delStack)
			}
			pc++
		case OpEnd:
			if n := len(insStack) + len(delStack); n != 0 {
				panic(fmt.Sprintf("linelog: %d unclosed blocks at END; program is malformed", n))
			}
			return
		}
	}
	panic(fmt.Sprintf("linelog: walk budget %d exhausted; program is malformed", stepBudget(len(code))))
}

// Flatten returns every line ever emitted, in order, each tagged with
// the exact set of revisions that contain it. The presence interval is
// [insRev, delRev): insRev is the line's revision raised to any
// enclosing insertion boundary, delRev the smallest enclosing deletion
// boundary (maxRev+1 if none).
func (l *LineLog) Flatten() []FlattenLine {
	// maxRev caps the presence sets, so it is part of the key: a
	// revision recorded with unchanged text bumps maxRev without
	// touching the program.
	key := fmt.Sprintf("f:%s:%d", l.code.key(), l.maxRev)
	cached := flattenCache.GetOrCompute(key, func() interface{} {
		var out []FlattenLine
		l.walk(walkCallbacks{
			onLine: func(in inst, pc int, insStack, delStack []stackFrame) {
				start := in.rev
				for _, f := range insStack {
					if f.rev > start {
						start = f.rev
					}
				}
				end := l.maxRev + 1
				for _, f := range delStack {
					if f.rev < end {
						end = f.rev
					}
				}
				out = append(out, FlattenLine{Data: in.data, Revs: RevRange(start, end)})
			},
		})
		return out
	}).([]FlattenLine)

	out := make([]FlattenLine, len(cached))
	for i, fl := range cached {
		out[i] = FlattenLine{Data: fl.Data, Revs: fl.Revs.Clone()}
	}
	return out
}

// CalculateDepMap returns, for every revision, the earlier revisions
// whose edits it textually sits inside. Entering a boundary for
// revision r while inside a boundary for revision p entangles the two;
// the later of the pair depends on the earlier. Lines contribute the
// same way, so a deletion depends on the revisions that introduced the
// lines it removes. RemapRevs must never order a revision before one
// of its dependencies.
func (l *LineLog) CalculateDepMap() map[Rev]RevSet {
	key := "g:" + l.code.key()
	cached := depMapCache.GetOrCompute(key, func() interface{} {
		deps := make(map[Rev]RevSet)
		addDep := func(a, b Rev) {
			if a == b {
				return
			}
			child, parent := a, b
			if child < parent {
				child, parent = parent, child
			}
			if deps[child] == nil {
				deps[child] = NewRevSet()
			}
			deps[child].Add(parent)
		}
		tops := func(insStack, delStack []stackFrame, skipLast bool, insertion bool) []Rev {
			var revs []Rev
			ins, del := insStack, delStack
			if skipLast {
				if insertion {
					ins = ins[:len(ins)-1]
				} else {
					del = del[:len(del)-1]
				}
			}
			if n := len(ins); n > 0 {
				revs = append(revs, ins[n-1].rev)
			}
			if n := len(del); n > 0 {
				revs = append(revs, del[n-1].rev)
			}
			return revs
		}

		var insStack, delStack []stackFrame
		l.walk(walkCallbacks{
			onPush: func(f stackFrame, insertion bool) {
				if insertion {
					insStack = append(insStack, f)
				} else {
					delStack = append(delStack, f)
				}
				for _, p := range tops(insStack, delStack, true, insertion) {
					addDep(f.rev, p)
				}
			},
			onPop: func(f stackFrame, insertion bool) {
				if insertion {
					insStack = insStack[:len(insStack)-1]
				} else {
					delStack = delStack[:len(delStack)-1]
				}
			},
			onLine: func(in inst, pc int, ins, del []stackFrame) {
				if n := len(del); n > 0 {
					addDep(in.rev, del[n-1].rev)
				}
				if n := len(ins); n > 0 {
					addDep(in.rev, ins[n-1].rev)
				}
			},
		})
		return deps
	}).(map[Rev]RevSet)

	out := make(map[Rev]RevSet, len(cached))
	for r, s := range cached {
		out[r] = s.Clone()
	}
	return out
}
