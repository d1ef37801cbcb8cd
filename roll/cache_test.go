package roll

import "testing"

func testStream() *Stream {
	return &Stream{
		TicksPerBeat: 480,
		Tracks: [][]Event{
			{noteOn(0, 60, 100, 0), noteOff(0, 60, 100)},
		},
	}
}

func TestCacheHitReturnsIdenticalInstance(t *testing.T) {
	cache := NewCache()
	builds := 0
	build := func() (*Performance, error) {
		builds++
		return New(testStream(), 10)
	}

	first, err := cache.Load("song.mid|100|1", build)
	if err != nil {
		t.Fatalf("first load failed: %v", err)
	}
	second, err := cache.Load("song.mid|100|1", build)
	if err != nil {
		t.Fatalf("second load failed: %v", err)
	}
	if first != second {
		t.Fatalf("cache hit returned a different instance")
	}
	if builds != 1 {
		t.Fatalf("expected a single build, got %d", builds)
	}
}

func TestCacheDistinguishesKeys(t *testing.T) {
	cache := NewCache()
	build := func() (*Performance, error) { return New(testStream(), 10) }

	a, err := cache.Load("a", build)
	if err != nil {
		t.Fatalf("load a failed: %v", err)
	}
	b, err := cache.Load("b", build)
	if err != nil {
		t.Fatalf("load b failed: %v", err)
	}
	if a == b {
		t.Fatalf("distinct keys returned the same instance")
	}
	if cache.Len() != 2 {
		t.Fatalf("expected 2 entries, got %d", cache.Len())
	}
}

func TestCacheDoesNotStoreFailures(t *testing.T) {
	cache := NewCache()
	fails := 0
	_, err := cache.Load("bad", func() (*Performance, error) {
		fails++
		return nil, ErrRollTooLarge
	})
	if err != ErrRollTooLarge {
		t.Fatalf("expected build error surfaced, got %v", err)
	}
	if cache.Len() != 0 {
		t.Fatalf("failed build cached")
	}
	_, err = cache.Load("bad", func() (*Performance, error) {
		fails++
		return nil, ErrRollTooLarge
	})
	if err != ErrRollTooLarge || fails != 2 {
		t.Fatalf("expected rebuild after failure, err=%v builds=%d", err, fails)
	}
}
