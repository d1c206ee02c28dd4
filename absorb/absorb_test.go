package absorb

import (
	"reflect"
	"testing"

	"stackline/filestack"
	"stackline/linelog"
)

func revPtr(r linelog.Rev) *linelog.Rev { return &r }

func TestAnalyseNoChanges(t *testing.T) {
	s := filestack.New([]string{"", "a\n", "a\nb\n"})
	if chunks := AnalyseFileStack(s, "a\nb\n"); len(chunks) != 0 {
		t.Errorf("expected no chunks for identical text, got %v", chunks)
	}
}

func TestAnalyseSplitsAtBlameBoundaries(t *testing.T) {
	// Line "a" belongs to revision 1, line "b" to revision 2. Editing
	// both in place splits into one chunk per owner.
	s := filestack.New([]string{"", "a\n", "a\nb\n"})
	chunks := AnalyseFileStack(s, "a1\nb1\n")

	want := []DiffChunk{
		{OldStart: 0, OldEnd: 1, NewLines: []string{"a1\n"}, IntroductionRev: 1, SelectedRev: revPtr(1)},
		{OldStart: 1, OldEnd: 2, NewLines: []string{"b1\n"}, IntroductionRev: 2, SelectedRev: revPtr(2)},
	}
	if !reflect.DeepEqual(chunks, want) {
		t.Errorf("chunks = %+v, want %+v", chunks, want)
	}
}

func TestAnalysePureDeletionSplits(t *testing.T) {
	s := filestack.New([]string{"", "a\n", "a\nb\n"})
	chunks := AnalyseFileStack(s, "")

	if len(chunks) != 2 {
		t.Fatalf("got %d chunks, want 2: %+v", len(chunks), chunks)
	}
	for i, wantRev := range []linelog.Rev{1, 2} {
		c := chunks[i]
		if c.SelectedRev == nil || *c.SelectedRev != wantRev {
			t.Errorf("chunk %d selected = %v, want %d", i, c.SelectedRev, wantRev)
		}
		if len(c.NewLines) != 0 {
			t.Errorf("chunk %d has replacement lines %q for a deletion", i, c.NewLines)
		}
	}
}

func TestAnalyseInsertionUsesAdjacentBlame(t *testing.T) {
	// Both neighbours of the insertion point belong to revision 2, so
	// the new line is attributed there.
	s := filestack.New([]string{"", "a\n", "a\nb\nd\n"})
	chunks := AnalyseFileStack(s, "a\nb\nc\nd\n")

	if len(chunks) != 1 {
		t.Fatalf("got %d chunks, want 1: %+v", len(chunks), chunks)
	}
	c := chunks[0]
	if c.OldStart != 2 || c.OldEnd != 2 {
		t.Errorf("chunk range [%d,%d), want [2,2)", c.OldStart, c.OldEnd)
	}
	if c.SelectedRev == nil || *c.SelectedRev != 2 {
		t.Errorf("selected = %v, want 2", c.SelectedRev)
	}
}

func TestAnalyseMixedBlameInsertionIsAmbiguous(t *testing.T) {
	// Inserting between a revision-2 line and a revision-1 line cannot
	// be attributed automatically.
	s := filestack.New([]string{"", "a\nc\n", "a\nb\nc\n"})
	chunks := AnalyseFileStack(s, "a\nb\nB\nc\n")

	if len(chunks) != 1 {
		t.Fatalf("got %d chunks, want 1: %+v", len(chunks), chunks)
	}
	c := chunks[0]
	if c.SelectedRev != nil {
		t.Errorf("selected = %d, want nil", *c.SelectedRev)
	}
	if c.IntroductionRev != 2 {
		t.Errorf("introductionRev = %d, want 2", c.IntroductionRev)
	}
}

func TestAnalyseBaseRevisionIsAmbiguous(t *testing.T) {
	// Lines owned by the immutable base can never absorb an edit.
	s := filestack.New([]string{"base\n", "base\nx\n"})
	chunks := AnalyseFileStack(s, "BASE\nx\n")

	if len(chunks) != 1 {
		t.Fatalf("got %d chunks, want 1: %+v", len(chunks), chunks)
	}
	c := chunks[0]
	if c.SelectedRev != nil {
		t.Errorf("selected = %d, want nil", *c.SelectedRev)
	}
	if c.IntroductionRev != 0 {
		t.Errorf("introductionRev = %d, want 0", c.IntroductionRev)
	}
}

func TestAnalyseUnequalLengthReplacementIsAmbiguous(t *testing.T) {
	s := filestack.New([]string{"", "a\n", "a\nb\n"})
	chunks := AnalyseFileStack(s, "X\n")

	if len(chunks) != 1 {
		t.Fatalf("got %d chunks, want 1: %+v", len(chunks), chunks)
	}
	c := chunks[0]
	if c.SelectedRev != nil {
		t.Errorf("selected = %d, want nil", *c.SelectedRev)
	}
	if c.IntroductionRev != 2 {
		t.Errorf("introductionRev = %d, want 2", c.IntroductionRev)
	}
}

func TestApplyRoutesEditsToOwners(t *testing.T) {
	s := filestack.New([]string{"", "a\n", "a\nb\n"})
	newText := "a1\nb1\n"

	applied := ApplyFileStackEdits(s, AnalyseFileStack(s, newText))

	if got := applied.GetRev(1); got != "a1\n" {
		t.Errorf("rev 1 = %q, want %q", got, "a1\n")
	}
	if got := applied.GetRev(2); got != newText {
		t.Errorf("rev 2 = %q, want %q", got, newText)
	}
	if got := applied.GetRev(0); got != "" {
		t.Errorf("rev 0 = %q, want empty", got)
	}
}

func TestApplySkipsAmbiguousChunks(t *testing.T) {
	s := filestack.New([]string{"base\n", "base\nx\n"})
	applied := ApplyFileStackEdits(s, AnalyseFileStack(s, "BASE\nx\n"))

	for rev := 0; rev < 2; rev++ {
		if got, want := applied.GetRev(linelog.Rev(rev)), s.GetRev(linelog.Rev(rev)); got != want {
			t.Errorf("rev %d = %q, want unchanged %q", rev, got, want)
		}
	}
}

// Once every chunk is absorbed, re-analysing against the same target
// text finds nothing left to do.
func TestAbsorbIdempotence(t *testing.T) {
	s := filestack.New([]string{"", "a\nc\n", "a\nb\nc\n", "a\nb\nc\nd\n"})
	newText := "a\nB\nc\nd\nd2\n"

	chunks := AnalyseFileStack(s, newText)
	applied := ApplyFileStackEdits(s, chunks)

	for _, c := range chunks {
		if c.SelectedRev == nil {
			t.Fatalf("fixture chunk unexpectedly ambiguous: %+v", c)
		}
	}
	if got := applied.GetRev(3); got != newText {
		t.Fatalf("top revision = %q, want %q", got, newText)
	}
	if rest := AnalyseFileStack(applied, newText); len(rest) != 0 {
		t.Errorf("second analysis not empty: %+v", rest)
	}
}

func TestApplyPanicsOnBaseRevision(t *testing.T) {
	s := filestack.New([]string{"base\n", "base\nx\n"})
	defer func() {
		if recover() == nil {
			t.Error("expected panic for selected revision 0")
		}
	}()
	ApplyFileStackEdits(s, []DiffChunk{{
		OldStart: 0, OldEnd: 1, NewLines: []string{"BASE\n"},
		IntroductionRev: 0, SelectedRev: revPtr(0),
	}})
}

func TestApplyPanicsOnRevisionBeforeIntroduction(t *testing.T) {
	s := filestack.New([]string{"", "a\n", "a\nb\n"})
	defer func() {
		if recover() == nil {
			t.Error("expected panic for revision before introduction")
		}
	}()
	ApplyFileStackEdits(s, []DiffChunk{{
		OldStart: 1, OldEnd: 2, NewLines: []string{"b1\n"},
		IntroductionRev: 2, SelectedRev: revPtr(1),
	}})
}
