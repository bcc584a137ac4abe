// file: internal/operations/queue.go
// version: 2.2.0
// guid: 7d6e5f4a-3c2b-1a09-8f7e-6d5c4b3a2190

package operations

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/jdfalk/movie-recommender/internal/logging"
	"github.com/jdfalk/movie-recommender/internal/metrics"
)

// Operation states
const (
	StatusQueued    = "queued"
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
	StatusCanceled  = "canceled"
)

// ErrNotFound is returned for unknown operation IDs.
var ErrNotFound = errors.New("operation not found")

// ErrQueueFull is returned when the pending buffer is full.
var ErrQueueFull = errors.New("operation queue is full")

// OperationFunc represents an operation that can be executed
type OperationFunc func(ctx context.Context, progress ProgressReporter) error

// ProgressReporter allows operations to report their progress
type ProgressReporter interface {
	UpdateProgress(current, total int, message string)
	IsCanceled() bool
}

// Notifier is told about progress and status changes as they happen.
type Notifier interface {
	OperationProgress(id string, current, total int, message string)
	OperationStatus(id, status, errMsg string)
}

// Status is a snapshot of one operation.
type Status struct {
	ID         string     `json:"id"`
	Type       string     `json:"type"`
	Status     string     `json:"status"`
	Current    int        `json:"current"`
	Total      int        `json:"total"`
	Message    string     `json:"message,omitempty"`
	Error      string     `json:"error,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

func (s *Status) done() bool {
	return s.Status == StatusCompleted || s.Status == StatusFailed || s.Status == StatusCanceled
}

type queuedOperation struct {
	id     string
	opType string
	fn     OperationFunc
	ctx    context.Context
	cancel context.CancelFunc
}

// OperationQueue runs operations on a fixed worker pool and keeps their
// status in memory. Only the most recent finished operations are retained.
type OperationQueue struct {
	mu       sync.RWMutex
	statuses map[string]*Status
	ops      map[string]*queuedOperation
	pending  chan *queuedOperation
	retain   int
	notifier Notifier
	wg       sync.WaitGroup
	ctx      context.Context
	cancel   context.CancelFunc
}

// NewOperationQueue creates a new operation queue
func NewOperationQueue(workers, retain int) *OperationQueue {
	if workers <= 0 {
		workers = 1
	}
	if retain <= 0 {
		retain = 50
	}

	ctx, cancel := context.WithCancel(context.Background())
	q := &OperationQueue{
		statuses: make(map[string]*Status),
		ops:      make(map[string]*queuedOperation),
		pending:  make(chan *queuedOperation, 100),
		retain:   retain,
		ctx:      ctx,
		cancel:   cancel,
	}

	for i := 0; i < workers; i++ {
		q.wg.Add(1)
		go q.worker(i)
	}
	return q
}

// Enqueue adds a new operation to the queue
func (q *OperationQueue) Enqueue(id, opType string, fn OperationFunc) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if _, exists := q.statuses[id]; exists {
		return fmt.Errorf("operation %s already exists", id)
	}
	if q.ctx.Err() != nil {
		return fmt.Errorf("operation queue is shut down")
	}

	ctx, cancel := context.WithCancel(q.ctx)
	op := &queuedOperation{id: id, opType: opType, fn: fn, ctx: ctx, cancel: cancel}

	select {
	case q.pending <- op:
	default:
		cancel()
		return ErrQueueFull
	}

	q.ops[id] = op
	q.statuses[id] = &Status{ID: id, Type: opType, Status: StatusQueued, CreatedAt: time.Now()}
	logging.Info().Str("operation", id).Str("type", opType).Msg("operation enqueued")
	return nil
}

// Cancel cancels a queued or running operation
func (q *OperationQueue) Cancel(id string) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	st, ok := q.statuses[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if st.done() {
		return nil
	}
	if op, ok := q.ops[id]; ok {
		op.cancel()
	}
	st.Message = "cancel requested"
	logging.Info().Str("operation", id).Msg("operation cancel requested")
	return nil
}

// GetStatus returns a copy of the operation's status
func (q *OperationQueue) GetStatus(id string) (Status, error) {
	q.mu.RLock()
	defer q.mu.RUnlock()
	st, ok := q.statuses[id]
	if !ok {
		return Status{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return *st, nil
}

// ActiveOperations returns queued and running operations, oldest first.
func (q *OperationQueue) ActiveOperations() []Status {
	q.mu.RLock()
	defer q.mu.RUnlock()
	out := make([]Status, 0, len(q.ops))
	for id := range q.ops {
		out = append(out, *q.statuses[id])
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

// SetNotifier registers n to receive progress and status events.
func (q *OperationQueue) SetNotifier(n Notifier) {
	q.mu.Lock()
	q.notifier = n
	q.mu.Unlock()
}

func (q *OperationQueue) notify(fn func(Notifier)) {
	q.mu.RLock()
	n := q.notifier
	q.mu.RUnlock()
	if n != nil {
		fn(n)
	}
}

func (q *OperationQueue) update(id string, fn func(*Status)) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if st, ok := q.statuses[id]; ok {
		fn(st)
	}
}

// worker processes operations from the queue
func (q *OperationQueue) worker(id int) {
	defer q.wg.Done()

	for {
		select {
		case <-q.ctx.Done():
			return
		case op := <-q.pending:
			q.run(id, op)
		}
	}
}

func (q *OperationQueue) run(worker int, op *queuedOperation) {
	defer op.cancel()

	if op.ctx.Err() != nil {
		q.finish(op, StatusCanceled, nil)
		return
	}

	logging.Debug().Int("worker", worker).Str("operation", op.id).Msg("operation started")
	q.update(op.id, func(st *Status) { st.Status = StatusRunning })
	q.notify(func(n Notifier) { n.OperationStatus(op.id, StatusRunning, "") })

	start := time.Now()
	reporter := &operationProgressReporter{operationID: op.id, queue: q, ctx: op.ctx}
	err := op.fn(op.ctx, reporter)
	metrics.ObserveOperationDuration(op.opType, time.Since(start))

	switch {
	case op.ctx.Err() != nil:
		q.finish(op, StatusCanceled, nil)
	case err != nil:
		q.finish(op, StatusFailed, err)
	default:
		q.finish(op, StatusCompleted, nil)
	}
}

func (q *OperationQueue) finish(op *queuedOperation, status string, err error) {
	now := time.Now()
	q.mu.Lock()
	if st, ok := q.statuses[op.id]; ok {
		st.Status = status
		st.FinishedAt = &now
		if err != nil {
			st.Error = err.Error()
		}
	}
	delete(q.ops, op.id)
	q.pruneLocked()
	q.mu.Unlock()

	metrics.IncOperation(op.opType, status)
	errMsg := ""
	if err != nil {
		errMsg = err.Error()
	}
	q.notify(func(n Notifier) { n.OperationStatus(op.id, status, errMsg) })

	ev := logging.Info()
	if err != nil {
		ev = logging.Warn().Err(err)
	}
	ev.Str("operation", op.id).Str("status", status).Msg("operation finished")
}

// pruneLocked drops the oldest finished statuses beyond the retain limit.
func (q *OperationQueue) pruneLocked() {
	var finished []*Status
	for _, st := range q.statuses {
		if st.done() {
			finished = append(finished, st)
		}
	}
	if len(finished) <= q.retain {
		return
	}
	sort.Slice(finished, func(i, j int) bool { return finished[i].FinishedAt.Before(*finished[j].FinishedAt) })
	for _, st := range finished[:len(finished)-q.retain] {
		delete(q.statuses, st.ID)
	}
}

// Shutdown cancels every operation and waits for the workers to exit
func (q *OperationQueue) Shutdown(timeout time.Duration) error {
	q.cancel()

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		q.drainPending()
		logging.Info().Msg("operation queue shut down")
		return nil
	case <-time.After(timeout):
		return fmt.Errorf("shutdown timeout after %v", timeout)
	}
}

// drainPending marks operations that never reached a worker as canceled.
// Call only after the workers have exited.
func (q *OperationQueue) drainPending() {
	for {
		select {
		case op := <-q.pending:
			op.cancel()
			q.finish(op, StatusCanceled, nil)
		default:
			return
		}
	}
}

// operationProgressReporter implements ProgressReporter
type operationProgressReporter struct {
	operationID string
	queue       *OperationQueue
	ctx         context.Context
}

func (r *operationProgressReporter) UpdateProgress(current, total int, message string) {
	r.queue.update(r.operationID, func(st *Status) {
		st.Current = current
		st.Total = total
		st.Message = message
	})
	r.queue.notify(func(n Notifier) { n.OperationProgress(r.operationID, current, total, message) })
}

func (r *operationProgressReporter) IsCanceled() bool {
	return r.ctx.Err() != nil
}
