package search

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gammazero/deque"
	log "github.com/go-pkgz/lgr"
	"github.com/pkg/errors"
	"github.com/rs/xid"

	"github.com/Kentico/xperience-by-kentico-algolia-sub000/app/store"
)

// ErrQueueClosed returned on enqueue to closed queue
var ErrQueueClosed = errors.New("queue closed")

// ErrInvalidTask returned for task dropped by validation, nothing is buffered
var ErrInvalidTask = errors.New("invalid task")

// BatchProcessor handles captured batch of tasks and returns number of successfully processed items
type BatchProcessor interface {
	Process(ctx context.Context, tasks []store.Task) int
}

// QueueParams defines flush policy of the queue
type QueueParams struct {
	FlushEvery time.Duration          // flush interval, 10s by default
	FlushCount int                    // flush early when so many tasks buffered, 0 disables
	KnownIndex func(name string) bool // optional check of task index on enqueue
}

// flushWaiter is a marker put into the buffer by Flush, answered with the count of processed batch
type flushWaiter struct {
	result chan int
}

// Queue buffers tasks and hands them to the processor from a single worker goroutine.
// Producers never wait for processing, the buffer swap is the only synchronization point.
type Queue struct {
	QueueParams
	name      string
	processor BatchProcessor

	lock    sync.Mutex
	buffer  deque.Deque
	pending int
	closed  bool

	notify chan struct{}
	force  chan struct{}
	stop   chan struct{}
	done   chan struct{}
}

// NewQueue makes named queue and starts its worker
func NewQueue(name string, processor BatchProcessor, params QueueParams) *Queue {
	if params.FlushEvery <= 0 {
		params.FlushEvery = 10 * time.Second
	}
	q := &Queue{
		QueueParams: params,
		name:        name,
		processor:   processor,
		notify:      make(chan struct{}, 1),
		force:       make(chan struct{}),
		stop:        make(chan struct{}),
		done:        make(chan struct{}),
	}
	go q.run()
	return q
}

// Enqueue adds task to the buffer. Invalid task is dropped and reported with ErrInvalidTask.
func (q *Queue) Enqueue(task store.Task) error {
	if err := task.Validate(); err != nil {
		log.Printf("[DEBUG] queue %q drops invalid task, %v", q.name, err)
		return errors.Wrap(ErrInvalidTask, err.Error())
	}
	if q.KnownIndex != nil && !q.KnownIndex(task.IndexName) {
		return errors.Wrapf(ErrIndexNotFound, "%q", task.IndexName)
	}

	q.lock.Lock()
	if q.closed {
		q.lock.Unlock()
		return ErrQueueClosed
	}
	q.buffer.PushBack(task)
	q.pending++
	full := q.FlushCount > 0 && q.pending >= q.FlushCount
	q.lock.Unlock()

	if full {
		select {
		case q.notify <- struct{}{}:
		default:
		}
	}
	return nil
}

// Flush forces processing of buffered tasks and waits for it.
// Returns number of processed items of the batch the flush was captured with.
func (q *Queue) Flush(ctx context.Context) (int, error) {
	waiter := &flushWaiter{result: make(chan int, 1)}

	q.lock.Lock()
	if q.closed {
		q.lock.Unlock()
		return 0, ErrQueueClosed
	}
	q.buffer.PushBack(waiter)
	q.lock.Unlock()

	select {
	case q.force <- struct{}{}:
	case <-q.done:
	case <-ctx.Done():
		return 0, ctx.Err()
	}

	select {
	case n := <-waiter.result:
		return n, nil
	case <-ctx.Done():
		return 0, ctx.Err()
	}
}

// Len returns number of buffered tasks
func (q *Queue) Len() int {
	q.lock.Lock()
	defer q.lock.Unlock()
	return q.pending
}

// Close stops accepting tasks, processes everything buffered and stops the worker
func (q *Queue) Close() error {
	q.lock.Lock()
	if q.closed {
		q.lock.Unlock()
		return nil
	}
	q.closed = true
	q.lock.Unlock()

	close(q.stop)
	<-q.done
	return nil
}

func (q *Queue) run() {
	log.Printf("[INFO] start queue %q worker, flush every %v", q.name, q.FlushEvery)
	defer close(q.done)

	tmr := time.NewTimer(q.FlushEvery)
	defer tmr.Stop()
	for {
		select {
		case <-tmr.C:
			q.flush()
			tmr.Reset(q.FlushEvery)
		case <-q.notify:
			q.flush()
		case <-q.force:
			q.flush()
		case <-q.stop:
			n := q.flush()
			log.Printf("[INFO] shutdown queue %q worker, %d items processed on drain", q.name, n)
			return
		}
	}
}

// flush swaps the buffer out and processes captured tasks
func (q *Queue) flush() int {
	q.lock.Lock()
	batch := q.buffer
	q.buffer = deque.Deque{}
	q.pending = 0
	q.lock.Unlock()

	if batch.Len() == 0 {
		return 0
	}

	tasks := make([]store.Task, 0, batch.Len())
	waiters := []*flushWaiter{}
	for batch.Len() > 0 {
		switch val := batch.PopFront().(type) {
		case store.Task:
			tasks = append(tasks, val)
		case *flushWaiter:
			waiters = append(waiters, val)
		default:
			panic(fmt.Sprintf("unknown type %T", val))
		}
	}

	processed := 0
	if len(tasks) > 0 {
		batchID := xid.New().String()
		st := time.Now()
		log.Printf("[DEBUG] queue %q batch %s, %d tasks", q.name, batchID, len(tasks))
		processed = q.processor.Process(context.Background(), tasks)
		log.Printf("[INFO] queue %q batch %s, %d of %d tasks processed in %v",
			q.name, batchID, processed, len(tasks), time.Since(st))
	}
	for _, w := range waiters {
		w.result <- processed
	}
	return processed
}
