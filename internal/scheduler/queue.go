package scheduler

import "github.com/nao1215/spider/internal/model"

// Queue is an unbounded FIFO queue of pages.
// It is not safe for concurrent use; one engine owns one queue.
type Queue struct {
	items []*model.Page
	head  int
}

// New creates an empty queue.
func New() *Queue {
	return &Queue{}
}

// Enqueue appends page to the tail.
func (q *Queue) Enqueue(page *model.Page) {
	q.items = append(q.items, page)
}

// Peek returns the head without removing it.
// The boolean is false when the queue is empty.
func (q *Queue) Peek() (*model.Page, bool) {
	if q.Len() == 0 {
		return nil, false
	}
	return q.items[q.head], true
}

// Dequeue removes and returns the head.
// It panics when the queue is empty: callers must Peek first.
func (q *Queue) Dequeue() *model.Page {
	if q.Len() == 0 {
		panic("scheduler: dequeue from empty queue")
	}
	page := q.items[q.head]
	q.items[q.head] = nil
	q.head++

	// Reclaim the consumed prefix once it dominates the backing array.
	if q.head > 64 && q.head*2 >= len(q.items) {
		n := copy(q.items, q.items[q.head:])
		clear(q.items[n:])
		q.items = q.items[:n]
		q.head = 0
	}
	return page
}

// Len returns the number of queued pages.
func (q *Queue) Len() int {
	return len(q.items) - q.head
}

// Clear drops every queued page.
func (q *Queue) Clear() {
	clear(q.items)
	q.items = q.items[:0]
	q.head = 0
}
