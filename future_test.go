package scene_test

import (
	"errors"
	"sync"
	"testing"

	"github.com/go-theft-auto/scene"
)

func TestFuture_ResolvesOnce(t *testing.T) {
	f := scene.NewFuture[int]()
	var got []int
	f.OnComplete(func(v int, err error) { got = append(got, v) })
	if f.Done() {
		t.Fatal("new future should be pending")
	}

	if err := f.Succeed(7); err != nil {
		t.Fatalf("Succeed: %v", err)
	}
	if err := f.Succeed(8); !errors.Is(err, scene.ErrAlreadyResolved) {
		t.Errorf("second Succeed = %v, want ErrAlreadyResolved", err)
	}
	if err := f.Fail(errTest); !errors.Is(err, scene.ErrAlreadyResolved) {
		t.Errorf("Fail after Succeed = %v, want ErrAlreadyResolved", err)
	}
	if v, err := f.Result(); v != 7 || err != nil {
		t.Errorf("Result = %d, %v", v, err)
	}

	// late callbacks run immediately
	f.OnComplete(func(v int, err error) { got = append(got, v) })
	if len(got) != 2 || got[0] != 7 || got[1] != 7 {
		t.Errorf("callbacks saw %v, want [7 7]", got)
	}
}

func TestFuture_Failed(t *testing.T) {
	f := scene.Failed[string](errTest)
	var seen error
	f.OnComplete(func(_ string, err error) { seen = err })
	if !errors.Is(seen, errTest) {
		t.Errorf("callback error = %v", seen)
	}
	if v, _ := scene.Resolved("x").Result(); v != "x" {
		t.Errorf("Resolved value = %q", v)
	}
}

func TestRenderQueue_ConcurrentPost(t *testing.T) {
	q := scene.NewRenderQueue()
	const n = 100
	var wg sync.WaitGroup
	count := 0
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			q.Post(func() { count++ })
		}()
	}
	wg.Wait()

	if q.Len() != n {
		t.Fatalf("Len = %d, want %d", q.Len(), n)
	}
	if ran := q.Drain(); ran != n || count != n {
		t.Errorf("Drain ran %d tasks, count %d; want %d", ran, count, n)
	}
	if q.Drain() != 0 {
		t.Error("queue should be empty after Drain")
	}
}

func TestRenderQueue_Order(t *testing.T) {
	q := scene.NewRenderQueue()
	var order []int
	for i := 0; i < 3; i++ {
		q.Post(func() { order = append(order, i) })
	}
	// tasks posted while draining wait for the next Drain
	q.Post(func() { q.Post(func() { order = append(order, 99) }) })

	q.Drain()
	if len(order) != 3 || order[0] != 0 || order[2] != 2 {
		t.Errorf("order = %v, want [0 1 2]", order)
	}
	q.Drain()
	if len(order) != 4 || order[3] != 99 {
		t.Errorf("order = %v, want trailing 99", order)
	}
}
