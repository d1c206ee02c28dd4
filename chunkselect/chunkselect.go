// Package chunkselect builds a three-sided per-line view over a pair
// of texts plus an in-progress selection between them, for
// checkbox-style partial application of changes. It consumes the
// flatten representation of a three-revision file stack and hands
// line records back to the caller; applying the resulting text is the
// caller's job.
package chunkselect

import (
	"fmt"
	"strings"

	"stackline/filestack"
)

// Presence bits per line: which of the three sides contain it.
const (
	bitA   = 1 << iota // the old text
	bitSel             // the in-progress selection
	bitB               // the new text
)

type lineBits struct {
	data string
	bits uint8
}

// LineInfo is one rendered line of the three-way view.
//
// ALine, SelLine and BLine are the line's position within each side,
// or -1 where the side does not contain it. Sign is one of:
//
//	""    unchanged, present everywhere
//	"+"   insertion (new text only); selectable
//	"-"   deletion (old text only); selectable
//	"!+"  present only in the selection; not independently selectable
//	"!-"  present in old and new but dropped by the selection; not
//	      independently selectable
//
// Selected is nil for the non-selectable signs. For "+" it reports
// whether the insertion is taken; for "-" whether the deletion is
// taken (i.e. the line is absent from the selection).
type LineInfo struct {
	ALine    int
	SelLine  int
	BLine    int
	Data     string
	Sign     string
	Selected *bool
}

// LineSelection is one toggle request for SetSelectedLines.
type LineSelection struct {
	Index    int
	Selected bool
}

// ChunkSelectState holds the mutable selection over an old/new text
// pair. Lines and their indices are fixed at construction; only the
// selection bit of editable lines changes afterwards.
type ChunkSelectState struct {
	lines []lineBits
}

// New builds the state from a three-revision stack ordered as
// [old, selection, new].
func New(stack *filestack.FileStackState) *ChunkSelectState {
	if stack.RevLength() != 3 {
		panic(fmt.Sprintf("chunkselect: want a 3-revision stack, got %d", stack.RevLength()))
	}
	var lines []lineBits
	for _, fl := range stack.Flatten() {
		var bits uint8
		if fl.Revs.Contains(0) {
			bits |= bitA
		}
		if fl.Revs.Contains(1) {
			bits |= bitSel
		}
		if fl.Revs.Contains(2) {
			bits |= bitB
		}
		lines = append(lines, lineBits{data: fl.Data, bits: bits})
	}
	return &ChunkSelectState{lines: normalize(lines)}
}

// NewFromTexts is New over a freshly built [a, selection, b] stack.
func NewFromTexts(a, selection, b string) *ChunkSelectState {
	return New(filestack.New([]string{a, selection, b}))
}

// normalize merges a taken deletion sitting next to an untaken
// re-insertion of the same content into one unchanged-but-deselected
// line. Without the merge such a no-op pair renders as two
// opposite-looking edits.
func normalize(lines []lineBits) []lineBits {
	var out []lineBits
	for i := 0; i < len(lines); i++ {
		if i+1 < len(lines) && lines[i].data == lines[i+1].data {
			a, b := lines[i].bits, lines[i+1].bits
			if (a == bitA && b == bitB) || (a == bitB && b == bitA) {
				out = append(out, lineBits{data: lines[i].data, bits: bitA | bitB})
				i++
				continue
			}
		}
		out = append(out, lines[i])
	}
	return out
}

func editable(bits uint8) bool {
	return (bits&bitA != 0) != (bits&bitB != 0)
}

func boolPtr(b bool) *bool { return &b }

// GetLines returns the rendered view, one record per line.
func (s *ChunkSelectState) GetLines() []LineInfo {
	out := make([]LineInfo, 0, len(s.lines))
	aPos, selPos, bPos := 0, 0, 0
	for _, ln := range s.lines {
		info := LineInfo{ALine: -1, SelLine: -1, BLine: -1, Data: ln.data}
		if ln.bits&bitA != 0 {
			info.ALine = aPos
			aPos++
		}
		if ln.bits&bitSel != 0 {
			info.SelLine = selPos
			selPos++
		}
		if ln.bits&bitB != 0 {
			info.BLine = bPos
			bPos++
		}
		switch {
		case ln.bits == bitA|bitSel|bitB:
			info.Sign = ""
		case ln.bits == bitA|bitB:
			info.Sign = "!-"
		case ln.bits == bitSel:
			info.Sign = "!+"
		case ln.bits&bitA != 0:
			info.Sign = "-"
			info.Selected = boolPtr(ln.bits&bitSel == 0)
		default:
			info.Sign = "+"
			info.Selected = boolPtr(ln.bits&bitSel != 0)
		}
		out = append(out, info)
	}
	return out
}

// SetSelectedLines applies the given toggles. Only editable lines
// (present on exactly one of the old/new sides) respond; requests for
// other indices are ignored. Selecting an insertion adds the line to
// the selection; selecting a deletion removes it.
func (s *ChunkSelectState) SetSelectedLines(sels []LineSelection) {
	for _, sel := range sels {
		if sel.Index < 0 || sel.Index >= len(s.lines) {
			continue
		}
		ln := &s.lines[sel.Index]
		if !editable(ln.bits) {
			continue
		}
		take := sel.Selected
		if ln.bits&bitA != 0 {
			// Deletion: taking it means dropping the line.
			take = !take
		}
		if take {
			ln.bits |= bitSel
		} else {
			ln.bits &^= bitSel
		}
	}
}

// GetSelectedText returns the text the current selection describes.
func (s *ChunkSelectState) GetSelectedText() string {
	var sb strings.Builder
	for _, ln := range s.lines {
		if ln.bits&bitSel != 0 {
			sb.WriteString(ln.data)
		}
	}
	return sb.String()
}

// GetInverseText returns the text produced by flipping the selection
// of every editable line, used for discard and revert actions: what
// the selection took is left behind, and vice versa.
func (s *ChunkSelectState) GetInverseText() string {
	var sb strings.Builder
	for _, ln := range s.lines {
		selected := ln.bits&bitSel != 0
		if editable(ln.bits) {
			selected = !selected
		}
		if selected {
			sb.WriteString(ln.data)
		}
	}
	return sb.String()
}

// LineRegion is a run of consecutive view lines, for progressive
// disclosure: Same runs longer than twice the context are split so
// their middle can collapse.
type LineRegion struct {
	Start     int
	End       int
	Same      bool
	Collapsed bool
}

// GetLineRegions groups the view into same/changed regions. Unchanged
// runs keep contextLines of visible context on each side of a change;
// the middle collapses unless one of its line indices appears in
// expandedLines.
func (s *ChunkSelectState) GetLineRegions(contextLines int, expandedLines map[int]bool) []LineRegion {
	if contextLines < 0 {
		contextLines = 0
	}
	var out []LineRegion
	for start := 0; start < len(s.lines); {
		same := s.lines[start].bits == bitA|bitSel|bitB
		end := start + 1
		for end < len(s.lines) && (s.lines[end].bits == bitA|bitSel|bitB) == same {
			end++
		}
		if !same || end-start <= 2*contextLines {
			out = append(out, LineRegion{Start: start, End: end, Same: same})
			start = end
			continue
		}

		head, tail := start+contextLines, end-contextLines
		// Context at the top or bottom of the file borders no change
		// and can collapse too.
		if start == 0 {
			head = start
		}
		if end == len(s.lines) {
			tail = end
		}
		if head > start {
			out = append(out, LineRegion{Start: start, End: head, Same: true})
		}
		if tail > head {
			collapsed := true
			for i := head; i < tail; i++ {
				if expandedLines[i] {
					collapsed = false
					break
				}
			}
			out = append(out, LineRegion{Start: head, End: tail, Same: true, Collapsed: collapsed})
		}
		if end > tail {
			out = append(out, LineRegion{Start: tail, End: end, Same: true})
		}
		start = end
	}
	return out
}
