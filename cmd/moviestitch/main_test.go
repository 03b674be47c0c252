package main

import (
	"sync"
	"testing"
)

func TestQuitSignal_FireTwice(t *testing.T) {
	q := newQuitSignal()

	select {
	case <-q.Done():
		t.Fatal("Done closed before Fire")
	default:
	}

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			q.Fire()
		}()
	}
	wg.Wait()
	q.Fire()

	select {
	case <-q.Done():
	default:
		t.Fatal("Done not closed after Fire")
	}
}
