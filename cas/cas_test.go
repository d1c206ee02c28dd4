package cas

import "testing"

func TestSumDeterministic(t *testing.T) {
	a := Sum([]byte("hello"))
	b := Sum([]byte("hello"))
	if a != b {
		t.Error("same input should produce same digest")
	}

	c := Sum([]byte("world"))
	if a == c {
		t.Error("different inputs should produce different digests")
	}
}

func TestSumHexLength(t *testing.T) {
	h := SumHex([]byte("content"))
	if len(h) != 64 {
		t.Errorf("expected 64 hex chars, got %d", len(h))
	}
}

func TestChainOrderSensitive(t *testing.T) {
	var zero Digest

	ab := Chain(Chain(zero, []byte("a")), []byte("b"))
	ba := Chain(Chain(zero, []byte("b")), []byte("a"))
	if ab == ba {
		t.Error("chain digest should depend on order")
	}

	ab2 := Chain(Chain(zero, []byte("a")), []byte("b"))
	if ab != ab2 {
		t.Error("identical histories should produce identical digests")
	}
}

func TestChainMultipleParts(t *testing.T) {
	var zero Digest

	// Chaining two parts at once differs from chaining one part, but
	// is itself deterministic.
	one := Chain(zero, []byte("x"), []byte("y"))
	two := Chain(zero, []byte("x"), []byte("y"))
	if one != two {
		t.Error("multi-part chain should be deterministic")
	}
}

func TestSumStringsBoundaries(t *testing.T) {
	a := SumStrings([]string{"ab"})
	b := SumStrings([]string{"a", "b"})
	if a == b {
		t.Error("element boundaries should affect the digest")
	}

	c := SumStrings([]string{"ab"})
	if a != c {
		t.Error("equal sequences should produce equal digests")
	}
}
