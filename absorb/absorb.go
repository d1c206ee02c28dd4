// Package absorb distributes edits of a file's latest text back into
// the historical revisions that own the touched lines.
//
// Analysis diffs the stack's newest revision against an edited text
// and uses per-line blame to propose a target revision per hunk. Hunks
// it cannot attribute unambiguously come back with a nil SelectedRev;
// resolving those is the caller's job (typically by asking the user),
// never this package's.
package absorb

import (
	"fmt"
	"sort"

	"stackline/filestack"
	"stackline/linediff"
	"stackline/linelog"
)

// DiffChunk is one proposed edit. It replaces lines [OldStart, OldEnd)
// of the stack's newest revision with NewLines.
//
// IntroductionRev is the revision owning the replaced lines (0 when
// they come from the immutable base). SelectedRev is the proposed
// target: nil means the hunk is ambiguous and needs user input;
// otherwise it is always >= IntroductionRev and > 0.
type DiffChunk struct {
	OldStart        int
	OldEnd          int
	NewLines        []string
	IntroductionRev linelog.Rev
	SelectedRev     *linelog.Rev
}

// AnalyseFileStack diffs newText against the stack's newest revision
// and classifies every hunk.
func AnalyseFileStack(stack *filestack.FileStackState, newText string) []DiffChunk {
	topRev := linelog.Rev(stack.RevLength() - 1)
	oldText := stack.GetRev(topRev)
	blame := stack.Blame(topRev)
	newLines := linediff.SplitLines(newText)

	var chunks []DiffChunk
	for _, h := range linediff.Diff(oldText, newText) {
		chunks = append(chunks, analyseHunk(h, blame, newLines)...)
	}
	return chunks
}

func analyseHunk(h linediff.Hunk, blame []linelog.Rev, newLines []string) []DiffChunk {
	involved := involvedRevs(h, blame)

	// Unanimous non-base blame: the whole hunk belongs to one revision.
	if len(involved) == 1 && involved[0] > 0 {
		rev := involved[0]
		return []DiffChunk{{
			OldStart:        h.A1,
			OldEnd:          h.A2,
			NewLines:        append([]string(nil), newLines[h.B1:h.B2]...),
			IntroductionRev: rev,
			SelectedRev:     &rev,
		}}
	}

	// A pure deletion or an equal-length replacement can be cut at
	// blame boundaries and resolved piecewise, as long as no involved
	// line comes from the immutable base.
	pureDeletion := h.B1 == h.B2
	equalLength := h.A2-h.A1 == h.B2-h.B1
	if h.A1 < h.A2 && (pureDeletion || equalLength) && allNonZero(blame[h.A1:h.A2]) {
		var out []DiffChunk
		for start := h.A1; start < h.A2; {
			end := start + 1
			for end < h.A2 && blame[end] == blame[start] {
				end++
			}
			rev := blame[start]
			var sub []string
			if equalLength && !pureDeletion {
				sub = append([]string(nil), newLines[h.B1+(start-h.A1):h.B1+(end-h.A1)]...)
			}
			out = append(out, DiffChunk{
				OldStart:        start,
				OldEnd:          end,
				NewLines:        sub,
				IntroductionRev: rev,
				SelectedRev:     &rev,
			})
			start = end
		}
		return out
	}

	// Mixed blame, unequal lengths, or the immutable base: ambiguous.
	var intro linelog.Rev
	for _, r := range involved {
		if r > intro {
			intro = r
		}
	}
	return []DiffChunk{{
		OldStart:        h.A1,
		OldEnd:          h.A2,
		NewLines:        append([]string(nil), newLines[h.B1:h.B2]...),
		IntroductionRev: intro,
		SelectedRev:     nil,
	}}
}

// involvedRevs returns the distinct blame revisions of the hunk's old
// lines, in first-seen order. A pure insertion has no old lines, so
// the immediately adjacent lines stand in for them.
func involvedRevs(h linediff.Hunk, blame []linelog.Rev) []linelog.Rev {
	var revs []linelog.Rev
	seen := make(map[linelog.Rev]bool)
	add := func(r linelog.Rev) {
		if !seen[r] {
			seen[r] = true
			revs = append(revs, r)
		}
	}
	if h.A1 < h.A2 {
		for _, r := range blame[h.A1:h.A2] {
			add(r)
		}
		return revs
	}
	if h.A1 > 0 {
		add(blame[h.A1-1])
	}
	if h.A1 < len(blame) {
		add(blame[h.A1])
	}
	return revs
}

func allNonZero(revs []linelog.Rev) bool {
	for _, r := range revs {
		if r == 0 {
			return false
		}
	}
	return true
}

// ApplyFileStackEdits patches every chunk with a non-nil SelectedRev
// into its target revision, working from the bottom of the text upward
// so earlier chunks' line numbers stay valid. Ambiguous chunks are
// skipped; they remain uncommitted edits on top of the stack.
//
// A SelectedRev of 0 or below the chunk's IntroductionRev is a caller
// bug and panics; the stack is returned unmodified on no-op input.
func ApplyFileStackEdits(stack *filestack.FileStackState, chunks []DiffChunk) *filestack.FileStackState {
	topRev := linelog.Rev(stack.RevLength() - 1)

	ordered := make([]DiffChunk, len(chunks))
	copy(ordered, chunks)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].OldStart > ordered[j].OldStart
	})

	for _, c := range ordered {
		if c.SelectedRev == nil {
			continue
		}
		rev := *c.SelectedRev
		if rev == 0 {
			panic("absorb: revision 0 is immutable and cannot absorb edits")
		}
		if rev < c.IntroductionRev {
			panic(fmt.Sprintf("absorb: selected revision %d predates introduction revision %d", rev, c.IntroductionRev))
		}
		stack = stack.EditChunk(topRev, c.OldStart, c.OldEnd, rev, c.NewLines)
	}
	return stack
}
