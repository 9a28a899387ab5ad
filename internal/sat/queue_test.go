package sat

import "testing"

func TestQueuePushPopOrder(t *testing.T) {
	q := NewQueue[int](1)
	for i := 0; i < 10; i++ {
		q.Push(i)
	}
	for i := 0; i < 10; i++ {
		if got := q.Pop(); got != i {
			t.Fatalf("Pop() = %d, want %d", got, i)
		}
	}
	if !q.IsEmpty() {
		t.Fatalf("IsEmpty() = false after draining the queue")
	}
}

func TestQueueClear(t *testing.T) {
	q := NewQueue[int](4)
	q.Push(1)
	q.Push(2)
	q.Clear()
	if q.Size() != 0 {
		t.Fatalf("Size() = %d after Clear(), want 0", q.Size())
	}
	q.Push(3)
	if got := q.Pop(); got != 3 {
		t.Fatalf("Pop() = %d after Clear()+Push(3), want 3", got)
	}
}

func TestQueuePopEmptyPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("Pop() on an empty queue did not panic")
		}
	}()
	NewQueue[int](1).Pop()
}

func TestQueueWrapsAroundRing(t *testing.T) {
	q := NewQueue[int](1)
	q.Push(1)
	q.Push(2)
	q.Pop()
	q.Push(3)
	q.Push(4) // forces a resize while start != 0

	got := []int{q.Pop(), q.Pop(), q.Pop()}
	want := []int{2, 3, 4}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}
