package memo

import "testing"

func TestGetMiss(t *testing.T) {
	c := New(4)

	if _, ok := c.Get("absent"); ok {
		t.Error("expected miss for absent key")
	}

	m := c.Metrics()
	if m.Misses != 1 || m.Hits != 0 {
		t.Errorf("expected 1 miss 0 hits, got %d/%d", m.Misses, m.Hits)
	}
}

func TestPutGet(t *testing.T) {
	c := New(4)
	c.Put("k", 42)

	v, ok := c.Get("k")
	if !ok || v.(int) != 42 {
		t.Errorf("expected 42, got %v (ok=%v)", v, ok)
	}

	m := c.Metrics()
	if m.Hits != 1 {
		t.Errorf("expected 1 hit, got %d", m.Hits)
	}
}

func TestLRUEviction(t *testing.T) {
	c := New(2)
	c.Put("a", 1)
	c.Put("b", 2)

	// Touch "a" so "b" becomes least recently used.
	if _, ok := c.Get("a"); !ok {
		t.Fatal("expected hit for a")
	}

	c.Put("c", 3)

	if _, ok := c.Get("b"); ok {
		t.Error("expected b to be evicted")
	}
	if _, ok := c.Get("a"); !ok {
		t.Error("expected a to survive eviction")
	}
	if _, ok := c.Get("c"); !ok {
		t.Error("expected c to be present")
	}
}

func TestGetOrCompute(t *testing.T) {
	c := New(4)
	calls := 0
	compute := func() interface{} {
		calls++
		return "value"
	}

	for i := 0; i < 3; i++ {
		if v := c.GetOrCompute("k", compute); v.(string) != "value" {
			t.Errorf("unexpected value %v", v)
		}
	}

	if calls != 1 {
		t.Errorf("expected compute to run once, ran %d times", calls)
	}

	m := c.Metrics()
	if m.Hits != 2 || m.Misses != 1 {
		t.Errorf("expected 2 hits 1 miss, got %d/%d", m.Hits, m.Misses)
	}
}

func TestReset(t *testing.T) {
	c := New(4)
	c.Put("k", 1)
	c.Get("k")
	c.Reset()

	m := c.Metrics()
	if m.Hits != 0 || m.Misses != 0 || m.Len != 0 {
		t.Errorf("expected zeroed metrics after reset, got %+v", m)
	}
}

func TestUpdateExistingKey(t *testing.T) {
	c := New(2)
	c.Put("k", 1)
	c.Put("k", 2)

	if m := c.Metrics(); m.Len != 1 {
		t.Errorf("expected single entry, got %d", m.Len)
	}
	if v, _ := c.Get("k"); v.(int) != 2 {
		t.Errorf("expected updated value 2, got %v", v)
	}
}
