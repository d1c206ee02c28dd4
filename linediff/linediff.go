// Package linediff computes line-level diff hunks between two texts.
//
// Hunks use half-open line ranges: a hunk (A1, A2, B1, B2) means lines
// [A1, A2) of the old text were replaced by lines [B1, B2) of the new
// text. Pure insertions have A1 == A2, pure deletions B1 == B2.
package linediff

import (
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// Hunk is a contiguous range of changed lines.
type Hunk struct {
	A1, A2 int // half-open line range in the old text
	B1, B2 int // half-open line range in the new text
}

// SplitLines splits text into lines, keeping the trailing newline on
// each line. The last line may lack one. Empty text has no lines.
func SplitLines(text string) []string {
	if text == "" {
		return nil
	}
	lines := strings.SplitAfter(text, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// Diff computes line-level hunks between a and b. Adjacent delete and
// insert runs merge into a single replacement hunk.
func Diff(a, b string) []Hunk {
	if a == b {
		return nil
	}

	dmp := diffmatchpatch.New()
	chars1, chars2, lineArray := dmp.DiffLinesToChars(a, b)
	diffs := dmp.DiffMain(chars1, chars2, false)
	diffs = dmp.DiffCharsToLines(diffs, lineArray)

	var hunks []Hunk
	var cur *Hunk
	aPos, bPos := 0, 0

	for _, d := range diffs {
		n := countLines(d.Text)
		if n == 0 {
			continue
		}
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			if cur != nil {
				hunks = append(hunks, *cur)
				cur = nil
			}
			aPos += n
			bPos += n
		case diffmatchpatch.DiffDelete:
			if cur == nil {
				cur = &Hunk{A1: aPos, A2: aPos, B1: bPos, B2: bPos}
			}
			aPos += n
			cur.A2 = aPos
		case diffmatchpatch.DiffInsert:
			if cur == nil {
				cur = &Hunk{A1: aPos, A2: aPos, B1: bPos, B2: bPos}
			}
			bPos += n
			cur.B2 = bPos
		}
	}
	if cur != nil {
		hunks = append(hunks, *cur)
	}
	return hunks
}

func countLines(s string) int {
	if s == "" {
		return 0
	}
	n := strings.Count(s, "\n")
	if !strings.HasSuffix(s, "\n") {
		n++
	}
	return n
}
