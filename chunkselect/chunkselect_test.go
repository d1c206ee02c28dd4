package chunkselect

import (
	"reflect"
	"testing"
)

// Nothing selected yet: the selection side starts as a copy of the
// old text.
func newReplaceState() *ChunkSelectState {
	return NewFromTexts("x\ny\nz\n", "x\ny\nz\n", "x\nY\nz\n")
}

func TestGetLinesSignsAndPositions(t *testing.T) {
	lines := newReplaceState().GetLines()

	type row struct {
		data           string
		sign           string
		aLine, bLine   int
		selected       bool
		hasSelectState bool
	}
	want := []row{
		{"x\n", "", 0, 0, false, false},
		{"Y\n", "+", -1, 1, false, true},
		{"y\n", "-", 1, -1, false, true},
		{"z\n", "", 2, 2, false, false},
	}

	if len(lines) != len(want) {
		t.Fatalf("got %d lines, want %d: %+v", len(lines), len(want), lines)
	}
	for i, w := range want {
		l := lines[i]
		if l.Data != w.data || l.Sign != w.sign || l.ALine != w.aLine || l.BLine != w.bLine {
			t.Errorf("line %d = %+v, want %+v", i, l, w)
		}
		if (l.Selected != nil) != w.hasSelectState {
			t.Errorf("line %d selected-state presence = %v, want %v", i, l.Selected != nil, w.hasSelectState)
		}
		if l.Selected != nil && *l.Selected != w.selected {
			t.Errorf("line %d selected = %v, want %v", i, *l.Selected, w.selected)
		}
	}
}

func TestSelectWholeChange(t *testing.T) {
	s := newReplaceState()
	s.SetSelectedLines([]LineSelection{
		{Index: 1, Selected: true}, // take the insertion
		{Index: 2, Selected: true}, // take the deletion
	})

	if got := s.GetSelectedText(); got != "x\nY\nz\n" {
		t.Errorf("selected text = %q, want the new text", got)
	}
	if got := s.GetInverseText(); got != "x\ny\nz\n" {
		t.Errorf("inverse text = %q, want the old text", got)
	}
}

func TestSelectInsertionOnly(t *testing.T) {
	s := newReplaceState()
	s.SetSelectedLines([]LineSelection{{Index: 1, Selected: true}})

	// The deletion stays untaken, so both variants of the line remain.
	if got := s.GetSelectedText(); got != "x\nY\ny\nz\n" {
		t.Errorf("selected text = %q", got)
	}
}

func TestSetSelectedLinesIgnoresUnselectable(t *testing.T) {
	s := newReplaceState()
	before := s.GetSelectedText()

	s.SetSelectedLines([]LineSelection{
		{Index: 0, Selected: false}, // context line
		{Index: -1, Selected: true},
		{Index: 99, Selected: true},
	})

	if got := s.GetSelectedText(); got != before {
		t.Errorf("selection changed by unselectable toggles: %q -> %q", before, got)
	}
}

// A line the selection dropped but the new text keeps renders as one
// merged "!-" line, not as a delete/insert pair.
func TestNormalizationMergesNoOpPair(t *testing.T) {
	s := NewFromTexts("m\n", "", "m\n")
	lines := s.GetLines()

	if len(lines) != 1 {
		t.Fatalf("got %d lines, want 1: %+v", len(lines), lines)
	}
	l := lines[0]
	if l.Sign != "!-" || l.Selected != nil {
		t.Errorf("line = %+v, want sign !- with no select state", l)
	}
	if l.ALine != 0 || l.BLine != 0 || l.SelLine != -1 {
		t.Errorf("positions = %d/%d/%d, want 0/-1/0", l.ALine, l.SelLine, l.BLine)
	}

	// Not toggleable.
	s.SetSelectedLines([]LineSelection{{Index: 0, Selected: true}})
	if got := s.GetSelectedText(); got != "" {
		t.Errorf("selected text = %q, want empty", got)
	}
}

func TestSelectionOnlyLine(t *testing.T) {
	s := NewFromTexts("", "q\n", "")
	lines := s.GetLines()

	if len(lines) != 1 || lines[0].Sign != "!+" || lines[0].Selected != nil {
		t.Fatalf("lines = %+v, want a single !+ line", lines)
	}
	if got := s.GetSelectedText(); got != "q\n" {
		t.Errorf("selected text = %q, want %q", got, "q\n")
	}
}

func TestGetLineRegions(t *testing.T) {
	a := "1\n2\n3\n4\n5\n6\n7\n8\n9\n"
	b := "1\n2\n3\n4\n5\n6\n7\n8\n9x\n"
	s := NewFromTexts(a, a, b)

	got := s.GetLineRegions(2, nil)
	want := []LineRegion{
		{Start: 0, End: 6, Same: true, Collapsed: true},
		{Start: 6, End: 8, Same: true},
		{Start: 8, End: 10, Same: false},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("regions = %+v, want %+v", got, want)
	}
}

func TestGetLineRegionsExpanded(t *testing.T) {
	a := "1\n2\n3\n4\n5\n6\n7\n8\n9\n"
	b := "1\n2\n3\n4\n5\n6\n7\n8\n9x\n"
	s := NewFromTexts(a, a, b)

	got := s.GetLineRegions(2, map[int]bool{3: true})
	for _, r := range got {
		if r.Collapsed {
			t.Errorf("region %+v still collapsed after expansion", r)
		}
	}
}

func TestShortSameRunStaysWhole(t *testing.T) {
	s := newReplaceState()
	got := s.GetLineRegions(2, nil)
	want := []LineRegion{
		{Start: 0, End: 1, Same: true},
		{Start: 1, End: 3, Same: false},
		{Start: 3, End: 4, Same: true},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("regions = %+v, want %+v", got, want)
	}
}
