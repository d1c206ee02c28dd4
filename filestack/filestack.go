// Package filestack exposes the revision history of a single file
// behind one of three interchangeable representations: plain
// per-revision texts, a linelog program, or a flattened per-line
// revision-set list. Conversions are lazy, lossless and memoized;
// every mutator returns a new value.
package filestack

import (
	"fmt"
	"strings"

	"stackline/cas"
	"stackline/linelog"
	"stackline/memo"
)

// SourceKind identifies the primary representation a state was built
// from.
type SourceKind int

const (
	// SourcePlain holds one full text per revision.
	SourcePlain SourceKind = iota
	// SourceLineLog holds the linelog program.
	SourceLineLog
	// SourceFlatten holds per-line revision sets.
	SourceFlatten
)

func (k SourceKind) String() string {
	switch k {
	case SourcePlain:
		return "plain"
	case SourceLineLog:
		return "linelog"
	case SourceFlatten:
		return "flatten"
	default:
		return fmt.Sprintf("source(%d)", int(k))
	}
}

// FileStackState is an immutable view over a file's revision history.
// Revisions are dense: Revs() is always [0, RevLength()); revision 0
// is the immutable base supplied by the caller.
type FileStackState struct {
	kind   SourceKind
	plain  []string
	log    *linelog.LineLog
	flat   []linelog.FlattenLine
	revLen int

	// Derived-representation caches. The state is immutable, so each
	// is computed at most once and never invalidated; an edit produces
	// a fresh state with empty caches.
	plainCache []string
	logCache   *linelog.LineLog
	flatCache  []linelog.FlattenLine
}

// New builds a state from one full text per revision, revision 0
// first.
func New(contents []string) *FileStackState {
	plain := make([]string, len(contents))
	copy(plain, contents)
	return &FileStackState{kind: SourcePlain, plain: plain, revLen: len(plain)}
}

// fromLineLog wraps an existing log as a state of revLen revisions.
func fromLineLog(log *linelog.LineLog, revLen int) *FileStackState {
	return &FileStackState{kind: SourceLineLog, log: log, revLen: revLen}
}

// fromFlatten wraps flattened lines as a state of revLen revisions.
func fromFlatten(flat []linelog.FlattenLine, revLen int) *FileStackState {
	return &FileStackState{kind: SourceFlatten, flat: flat, revLen: revLen}
}

// RevLength returns the number of revisions.
func (s *FileStackState) RevLength() int {
	return s.revLen
}

// Revs returns the revision numbers, always contiguous from 0.
func (s *FileStackState) Revs() []linelog.Rev {
	revs := make([]linelog.Rev, s.revLen)
	for i := range revs {
		revs[i] = linelog.Rev(i)
	}
	return revs
}

// Source reports which representation the state currently holds.
func (s *FileStackState) Source() SourceKind {
	return s.kind
}

// GetRev returns the full text of one revision.
func (s *FileStackState) GetRev(rev linelog.Rev) string {
	s.checkRev(rev)
	switch s.kind {
	case SourcePlain:
		return s.plain[rev]
	default:
		return s.LineLog().Checkout(rev)
	}
}

func (s *FileStackState) checkRev(rev linelog.Rev) {
	if rev < 0 || int(rev) >= s.revLen {
		panic(fmt.Sprintf("filestack: revision %d out of range [0,%d)", rev, s.revLen))
	}
}

// Plain returns the full text of every revision in order.
func (s *FileStackState) Plain() []string {
	if s.kind == SourcePlain {
		return append([]string(nil), s.plain...)
	}
	if s.plainCache == nil {
		texts := make([]string, s.revLen)
		switch s.kind {
		case SourceLineLog:
			for r := 0; r < s.revLen; r++ {
				texts[r] = s.log.Checkout(linelog.Rev(r))
			}
		case SourceFlatten:
			for r := 0; r < s.revLen; r++ {
				texts[r] = textAtRev(s.flat, linelog.Rev(r))
			}
		}
		s.plainCache = texts
	}
	return append([]string(nil), s.plainCache...)
}

// LineLog returns the linelog representation, replaying one RecordText
// per revision when converting from texts.
func (s *FileStackState) LineLog() *linelog.LineLog {
	if s.kind == SourceLineLog {
		return s.log
	}
	if s.logCache == nil {
		s.logCache = logFromTexts(s.Plain())
	}
	return s.logCache
}

// Flatten returns the per-line revision-set representation.
func (s *FileStackState) Flatten() []linelog.FlattenLine {
	if s.kind == SourceFlatten {
		return cloneFlatten(s.flat)
	}
	if s.flatCache == nil {
		s.flatCache = s.LineLog().Flatten()
	}
	return cloneFlatten(s.flatCache)
}

// conversionCache memoizes text-stack to linelog replays; rebuilding
// the same stack later in a session reuses the program.
var conversionCache = memo.New(32)

// ConversionCacheMetrics exposes the replay cache counters for tests.
func ConversionCacheMetrics() memo.Metrics {
	return conversionCache.Metrics()
}

// ResetConversionCache clears the replay cache and its counters.
func ResetConversionCache() {
	conversionCache.Reset()
}

// EditText replaces the text of one revision. With updateStack the
// replacement is a real history edit: the delta against the current
// content propagates to every later revision. Without it only this
// revision's text changes, which suits free-form scratch editing.
func (s *FileStackState) EditText(rev linelog.Rev, text string, updateStack bool) *FileStackState {
	s.checkRev(rev)
	if !updateStack {
		plain := s.Plain()
		plain[rev] = text
		return &FileStackState{kind: SourcePlain, plain: plain, revLen: s.revLen}
	}
	log := s.LineLog().RecordTextAt(text, rev)
	return fromLineLog(log, s.revLen)
}

// EditChunk replaces lines [a1, a2) as seen at aRev with bLines
// attributed to bRev. Thin delegation to the linelog engine.
func (s *FileStackState) EditChunk(aRev linelog.Rev, a1, a2 int, bRev linelog.Rev, bLines []string) *FileStackState {
	log := s.LineLog().EditChunk(aRev, a1, a2, bRev, bLines)
	return fromLineLog(log, s.revLen)
}

// RemapRevs renames revisions through m. The caller is responsible for
// honoring CalculateDepMap; no checking happens here.
func (s *FileStackState) RemapRevs(m map[linelog.Rev]linelog.Rev) *FileStackState {
	log := s.LineLog().RemapRevs(m)
	revLen := int(log.MaxRev()) + 1
	if revLen < s.revLen {
		revLen = s.revLen
	}
	return fromLineLog(log, revLen)
}

// CalculateDepMap returns, per revision, the earlier revisions it
// depends on for safe reordering.
func (s *FileStackState) CalculateDepMap() map[linelog.Rev]linelog.RevSet {
	return s.LineLog().CalculateDepMap()
}

// Blame returns the revision that introduced each line of rev, in
// line order.
func (s *FileStackState) Blame(rev linelog.Rev) []linelog.Rev {
	s.checkRev(rev)
	return s.LineLog().Blame(rev)
}

// MoveLines adds the line range [a1, a2), as seen at aRev, to the
// given revisions and removes it from others, without a diff in
// between. This is the primitive behind "move line to another
// revision" actions.
func (s *FileStackState) MoveLines(aRev linelog.Rev, a1, a2 int, includeRevs, excludeRevs []linelog.Rev) *FileStackState {
	s.checkRev(aRev)
	if a1 > a2 || a1 < 0 {
		panic(fmt.Sprintf("filestack: moveLines range [%d,%d) invalid", a1, a2))
	}
	flat := s.Flatten()
	idx := 0
	for i := range flat {
		if !flat[i].Revs.Contains(aRev) {
			continue
		}
		if idx >= a1 && idx < a2 {
			revs := flat[i].Revs.Clone()
			for _, r := range includeRevs {
				revs.Add(r)
			}
			for _, r := range excludeRevs {
				revs.Remove(r)
			}
			flat[i] = linelog.FlattenLine{Data: flat[i].Data, Revs: revs}
		}
		idx++
	}
	if a2 > idx {
		panic(fmt.Sprintf("filestack: moveLines range [%d,%d) beyond %d lines", a1, a2, idx))
	}
	return fromFlatten(flat, s.revLen)
}

func textAtRev(flat []linelog.FlattenLine, rev linelog.Rev) string {
	var sb strings.Builder
	for _, fl := range flat {
		if fl.Revs.Contains(rev) {
			sb.WriteString(fl.Data)
		}
	}
	return sb.String()
}

func cloneFlatten(flat []linelog.FlattenLine) []linelog.FlattenLine {
	out := make([]linelog.FlattenLine, len(flat))
	for i, fl := range flat {
		out[i] = linelog.FlattenLine{Data: fl.Data, Revs: fl.Revs.Clone()}
	}
	return out
}

// logFromTexts replays texts into a fresh log, one revision per text,
// starting at revision 0. Replays are memoized on the text contents.
func logFromTexts(texts []string) *linelog.LineLog {
	key := "c:" + cas.SumStrings(texts).Hex()
	return conversionCache.GetOrCompute(key, func() interface{} {
		log := linelog.New()
		for i, text := range texts {
			log = log.RecordTextAt(text, linelog.Rev(i))
		}
		return log
	}).(*linelog.LineLog)
}
