package resilience

import (
	"sync"
	"testing"
)

func TestKeyedLock_AcquireIsExclusivePerKey(t *testing.T) {
	t.Parallel()

	locks := NewKeyedLock()

	release, ok := locks.Acquire("match:1")
	if !ok {
		t.Fatal("first Acquire should succeed")
	}
	if _, ok := locks.Acquire("match:1"); ok {
		t.Fatal("second Acquire on held key should fail")
	}
	if _, ok := locks.Acquire("match:2"); !ok {
		t.Fatal("Acquire on a different key should succeed")
	}

	release()
	if locks.Held("match:1") {
		t.Fatal("key should be free after release")
	}
	if _, ok := locks.Acquire("match:1"); !ok {
		t.Fatal("Acquire after release should succeed")
	}
}

func TestKeyedLock_ReleaseIsIdempotent(t *testing.T) {
	t.Parallel()

	locks := NewKeyedLock()
	release, _ := locks.Acquire("bonus:7")
	release()
	release()

	second, ok := locks.Acquire("bonus:7")
	if !ok {
		t.Fatal("double release must not corrupt lock state")
	}
	second()
}

func TestKeyedLock_ConcurrentAcquireAdmitsExactlyOne(t *testing.T) {
	t.Parallel()

	locks := NewKeyedLock()
	const workers = 16

	var wins int
	var winsMu sync.Mutex
	var wg sync.WaitGroup
	start := make(chan struct{})

	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			<-start
			if _, ok := locks.Acquire("match:9"); ok {
				winsMu.Lock()
				wins++
				winsMu.Unlock()
			}
		}()
	}

	close(start)
	wg.Wait()

	if wins != 1 {
		t.Fatalf("got %d winners, want exactly 1", wins)
	}
}
