package bloom

import (
	"fmt"
	"math"
	"sync"
	"testing"
)

func TestSizer_CommonCases(t *testing.T) {
	s := NewSizer()

	// n=1, p=1% -> m=10, k=7
	m, k := s.Size(1, 0.01)
	if m != 10 || k != 7 {
		t.Fatalf("n=1,p=0.01: got m=%d k=%d; want m=10 k=7", m, k)
	}

	// roughly the size of the public suffix list
	m, k = s.Size(10_000, 0.01)
	if m < 95_000 || m > 97_000 {
		t.Fatalf("n=1e4,p=0.01: unexpected m=%d (expected around 9.6e4)", m)
	}
	if k != 7 {
		t.Fatalf("n=1e4,p=0.01: k=%d; want 7", k)
	}

	// a tighter rate needs more bits and more hashes
	m2, k2 := s.Size(10_000, 0.0001)
	if m2 <= m || k2 <= k {
		t.Fatalf("p=1e-4: got m=%d k=%d; want more than m=%d k=%d", m2, k2, m, k)
	}

	if _, k = s.Size(10_000, 0.5); k < 1 || k > 2 {
		t.Fatalf("p=0.5: k=%d; want 1 or 2", k)
	}
}

func TestSizer_Defaults(t *testing.T) {
	s := NewSizer()
	dm, dk := s.Size(1, defaultFPRate)
	for _, p := range []float64{0, -1, 1, 2, math.NaN()} {
		m, k := s.Size(0, p)
		if m != dm || k != dk {
			t.Fatalf("Size(0, %v) = (%d, %d), want defaults (%d, %d)", p, m, k, dm, dk)
		}
	}
}

func TestSizer_HashCountClamped(t *testing.T) {
	_, k := NewSizer().Size(1, 1e-300)
	if k != maxHashes {
		t.Fatalf("k = %d, want clamp at %d", k, maxHashes)
	}
}

func TestFactory_AddAndTest(t *testing.T) {
	bf := NewFactory().New(128, 0.01)

	keys := []string{"ck", "*.ck", "!www.ck", "xn--55qx5d.cn"}
	for _, k := range keys {
		if bf.MightContain(k) {
			t.Fatalf("unexpected positive for %q before add", k)
		}
	}
	for _, k := range keys {
		bf.Add(k)
	}
	for _, k := range keys {
		if !bf.MightContain(k) {
			t.Fatalf("expected maybe for %q after add", k)
		}
	}
	if got := bf.Keys(); got != uint64(len(keys)) {
		t.Fatalf("Keys() = %d, want %d", got, len(keys))
	}
}

func TestFactory_ZeroCapacity(t *testing.T) {
	bf := NewFactory().New(0, 0)
	if bf.Keys() != 0 {
		t.Fatalf("new filter reports %d keys", bf.Keys())
	}
	bf.Add("default-case.test")
	if !bf.MightContain("default-case.test") {
		t.Fatal("expected maybe after add with default-sized bloom")
	}
}

func TestFilter_ConcurrentReadsDuringWrites(t *testing.T) {
	f := NewFactory().New(1024, 0.01)

	var wg sync.WaitGroup
	done := make(chan struct{})

	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 5_000; i++ {
			f.Add(fmt.Sprintf("r%d.example", i%500))
		}
		close(done)
	}()

	for r := 0; r < 4; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-done:
					return
				default:
					_ = f.MightContain("co.uk")
				}
			}
		}()
	}
	wg.Wait()

	if f.Keys() != 5_000 {
		t.Fatalf("Keys() = %d, want 5000", f.Keys())
	}
}
