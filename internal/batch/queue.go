// Package batch collects conversion inputs with deduplication.
package batch

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
)

// Stdin names standard input in an input list.
const Stdin = "-"

// Item is one queued input.
type Item struct {
	// Path is the cleaned absolute path, or Stdin.
	Path string
	// Arg is the argument as given.
	Arg string
	// Seq is the order in which the input was first added.
	Seq int
}

// Queue holds inputs to convert. Each file is queued once however it is
// spelled on the command line.
type Queue struct {
	mu    sync.Mutex
	queue []Item
	seen  map[string]bool
	next  int
}

// NewQueue creates an empty queue.
func NewQueue() *Queue {
	return &Queue{
		queue: make([]Item, 0),
		seen:  make(map[string]bool),
	}
}

// Add queues arg unless an equivalent path was already added. It reports
// whether arg was queued.
func (q *Queue) Add(arg string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	key := normalizePath(arg)
	if key == "" || q.seen[key] {
		return false
	}
	q.seen[key] = true
	q.queue = append(q.queue, Item{Path: key, Arg: arg, Seq: q.next})
	q.next++
	return true
}

// AddAll queues every arg and returns how many were new.
func (q *Queue) AddAll(args []string) int {
	n := 0
	for _, a := range args {
		if q.Add(a) {
			n++
		}
	}
	return n
}

// Pop removes and returns the next item.
func (q *Queue) Pop() (Item, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.queue) == 0 {
		return Item{}, false
	}
	item := q.queue[0]
	q.queue = q.queue[1:]
	return item, true
}

// Drain removes and returns every queued item in order.
func (q *Queue) Drain() []Item {
	q.mu.Lock()
	defer q.mu.Unlock()

	items := q.queue
	q.queue = make([]Item, 0)
	return items
}

// Len returns the number of queued items.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.queue)
}

// Seen reports whether an equivalent path has been added.
func (q *Queue) Seen(arg string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.seen[normalizePath(arg)]
}

// ReadItem returns the contents of item, reading standard input for Stdin.
func ReadItem(item Item) ([]byte, error) {
	if item.Path == Stdin {
		b, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return b, nil
	}
	return os.ReadFile(item.Path)
}

// normalizePath resolves arg to a clean absolute path. Stdin is kept as is.
func normalizePath(arg string) string {
	if arg == Stdin {
		return Stdin
	}
	if arg == "" {
		return ""
	}
	abs, err := filepath.Abs(arg)
	if err != nil {
		return ""
	}
	return filepath.Clean(abs)
}
