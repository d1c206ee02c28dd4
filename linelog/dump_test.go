package linelog

import "testing"

func TestDumpInstructionsEmpty(t *testing.T) {
	want := "0: J 1\n1: END\n"
	if got := New().DumpInstructions(); got != want {
		t.Errorf("dump = %q, want %q", got, want)
	}
}

func TestDumpNestingEmpty(t *testing.T) {
	if got := New().DumpNesting(); got != "" {
		t.Errorf("dump = %q, want empty", got)
	}
}

func TestDumpInstructionsSingleRevision(t *testing.T) {
	l := logFromTexts("a\nb\n")
	want := `0: J 1
1: J 2
2: JL 1 5
3: LINE 1 "a\n"
4: LINE 1 "b\n"
5: END
6: J 2
`
	if got := l.DumpInstructions(); got != want {
		t.Errorf("dump mismatch:\n got: %q\nwant: %q", got, want)
	}
}

func TestDumpNestingSingleRevision(t *testing.T) {
	l := logFromTexts("a\nb\n")
	want := `ins r1 {
  r1 "a\n"
  r1 "b\n"
}
`
	if got := l.DumpNesting(); got != want {
		t.Errorf("dump mismatch:\n got: %q\nwant: %q", got, want)
	}
}

// A past-revision edit whose deleted lines sit inside guard blocks of
// a later revision still produces balanced, strictly nested blocks:
// every opened block closes, each deleted line in its own frame.
func TestDumpNestingPastEditAcrossEarlierDeletion(t *testing.T) {
	l := logFromTexts("a\nb\nc\nd\ne\n", "a\ne\n")
	l = l.RecordTextAt("a\nb\n", 1)

	want := `ins r1 {
  r1 "a\n"
  del r2 {
    r1 "b\n"
  }
  del r2 {
    del r1 {
      r1 "c\n"
    }
  }
  del r2 {
    del r1 {
      r1 "d\n"
    }
  }
  del r1 {
    r1 "e\n"
  }
}
`
	if got := l.DumpNesting(); got != want {
		t.Errorf("dump mismatch:\n got: %q\nwant: %q", got, want)
	}
}

func TestDumpInstructionsTwoRevisions(t *testing.T) {
	l := logFromTexts("c\nd\ne\n", "d\ne\nf\n")
	want := `0: J 1
1: J 2
2: JL 1 6
3: J 12
4: LINE 1 "d\n"
5: LINE 1 "e\n"
6: J 8
7: J 2
8: JL 2 10
9: LINE 2 "f\n"
10: END
11: J 7
12: JGE 2 4
13: LINE 1 "c\n"
14: J 4
`
	if got := l.DumpInstructions(); got != want {
		t.Errorf("dump mismatch:\n got: %q\nwant: %q", got, want)
	}
}

func TestDumpNestingTwoRevisions(t *testing.T) {
	l := logFromTexts("c\nd\ne\n", "d\ne\nf\n")
	want := `ins r1 {
  del r2 {
    r1 "c\n"
  }
  r1 "d\n"
  r1 "e\n"
}
ins r2 {
  r2 "f\n"
}
`
	if got := l.DumpNesting(); got != want {
		t.Errorf("dump mismatch:\n got: %q\nwant: %q", got, want)
	}
}
