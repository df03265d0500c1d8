package result

import (
	"sync"
	"testing"

	"github.com/edgevision/go-sscma/postprocess"
)

func TestIDGeneratorConcurrent(t *testing.T) {

	gen := NewIDGenerator()

	var wg sync.WaitGroup
	seen := make(chan int64, 100)

	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			seen <- gen.GetNext()
		}()
	}

	wg.Wait()
	close(seen)

	unique := make(map[int64]bool)
	for id := range seen {
		if unique[id] {
			t.Fatalf("duplicate id %d", id)
		}
		unique[id] = true
	}

	if len(unique) != 100 {
		t.Errorf("expected 100 unique ids, got %d", len(unique))
	}
}

func TestIDGeneratorAssign(t *testing.T) {

	gen := NewIDGenerator()

	results := []postprocess.DetectResult{{ID: 0}, {ID: 42}, {ID: 0}}
	gen.Assign(results)

	if results[0].ID != 1 || results[1].ID != 42 || results[2].ID != 2 {
		t.Errorf("unexpected ids %d %d %d", results[0].ID, results[1].ID, results[2].ID)
	}

	gen.Reset()

	if next := gen.GetNext(); next != 1 {
		t.Errorf("expected 1 after reset, got %d", next)
	}
}
