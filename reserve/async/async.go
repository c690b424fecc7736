package async

import (
	"context"
	"sync"
	"time"

	"github.com/egimarket/reserve/lib/db"
	"github.com/egimarket/reserve/lib/errors"
	"github.com/egimarket/reserve/reserve"
	"github.com/egimarket/reserve/reserve/model"
)

// Task is the interface for a task.
type Task interface {
	// Name is the name of the task.
	Name() model.TkName

	// Created is the creation time of the task.
	Created() time.Time

	// Subject is the subject of the task, generally an object token.
	Subject() string

	// Execute idempotently runs the task to completion or errors.
	Execute(ctx context.Context) error

	// MaxRetries caps the total number of retries.
	MaxRetries() uint

	// DeadlineForRetry returns the deadline for the provided retry count.
	DeadlineForRetry(retry uint) time.Time
}

// Registrar is used to register task generators within the module. The role
// of the generator for a given model.TkName is to reconstruct a task from
// its creation time and subject.
var Registrar = map[model.TkName](func(
	context.Context,
	time.Time,
	string,
) Task){}

// Deadline represents an execution deadline for a task.
type Deadline struct {
	Task  Task
	Model *model.Task
}

// Deadline returns the current deadline for the task.
func (d Deadline) Deadline() time.Time {
	return d.Task.DeadlineForRetry(d.Model.Retry)
}

// Async represents the state of the async queue.
type Async struct {
	ctx     context.Context
	pending []Deadline
	wake    chan struct{}

	mutex *sync.Mutex
}

// NewAsync constructs a new async state, reloading pending tasks from the
// store so that deadlines survive restarts.
func NewAsync(
	ctx context.Context,
) (*Async, error) {
	a := &Async{
		ctx:     ctx,
		pending: nil,
		wake:    make(chan struct{}, 1),
		mutex:   &sync.Mutex{},
	}

	ctx = db.Begin(ctx, "reserve")
	defer db.LoggedRollback(ctx, "reserve")

	tasks, err := model.LoadPendingTasks(ctx)
	if err != nil {
		return nil, errors.Trace(err)
	}

	db.Commit(ctx, "reserve")

	deadlines := []Deadline{}
	for _, m := range tasks {
		generator, ok := Registrar[m.Name]
		if !ok {
			return nil, errors.Trace(
				errors.Newf("Unregistered task name: %s", m.Name))
		}
		t := generator(ctx, m.Created, m.Subject)
		deadlines = append(deadlines, Deadline{
			Task:  t,
			Model: m,
		})
	}

	a.pending = deadlines

	return a, nil
}

// Queue queues a new task by persisting it and adding it to the list of
// pending deadlines.
func (a *Async) Queue(
	ctx context.Context,
	t Task,
) error {
	m, err := model.CreateTask(ctx,
		t.Created(),
		t.Name(),
		t.Subject(),
		model.TkStPending,
		0,
	)
	if err != nil {
		return errors.Trace(err)
	}

	a.append(Deadline{
		Task:  t,
		Model: m,
	})

	return nil
}

// append adds a deadline to the list of pending deadlines and wakes the
// worker up.
func (a *Async) append(
	d Deadline,
) {
	a.mutex.Lock()
	a.pending = append(a.pending, d)
	a.mutex.Unlock()

	select {
	case a.wake <- struct{}{}:
	default:
	}
}

// next returns the pending deadline closest to its execution time, without
// removing it.
func (a *Async) next() *Deadline {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	var next *Deadline
	for i := range a.pending {
		if next == nil ||
			a.pending[i].Deadline().Before(next.Deadline()) {
			next = &a.pending[i]
		}
	}
	if next == nil {
		return nil
	}
	d := *next
	return &d
}

// remove removes the deadline for the provided task model token, returning
// whether it was still pending.
func (a *Async) remove(
	token string,
) bool {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	for i := range a.pending {
		if a.pending[i].Model.Token == token {
			a.pending = append(a.pending[:i], a.pending[i+1:]...)
			return true
		}
	}
	return false
}

// RunOne runs the specified deadline and re-adds it to the list of pending
// deadlines if it fails and has retries left.
func (a *Async) RunOne(
	d Deadline,
) {
	err := d.Task.Execute(a.ctx)

	ctx := db.Begin(a.ctx, "reserve")
	defer db.LoggedRollback(ctx, "reserve")

	if err != nil {
		reserve.Logf(ctx, "Error executing task: "+
			"name=%s subject=%s retry=%d error=%s",
			d.Task.Name(), d.Task.Subject(), d.Model.Retry, err.Error())

		d.Model.Retry++
		if d.Model.Retry > d.Task.MaxRetries() {
			d.Model.Status = model.TkStFailed
		}
	} else {
		reserve.Logf(ctx, "Successfully executed task: "+
			"name=%s subject=%s retry=%d",
			d.Task.Name(), d.Task.Subject(), d.Model.Retry)

		d.Model.Status = model.TkStSucceeded
	}

	err = d.Model.Save(ctx)
	if err != nil {
		reserve.Logf(ctx, "Error saving task: "+
			"name=%s subject=%s retry=%d error=%s",
			d.Task.Name(), d.Task.Subject(), d.Model.Retry, err.Error())
	}

	db.Commit(ctx, "reserve")

	if d.Model.Status == model.TkStPending {
		a.append(d)
	}
}

// Run executes tasks as their deadline elapses. It should be called from a
// goroutine; multiple workers can run concurrently.
func (a *Async) Run() {
	for {
		d := a.next()
		if d == nil {
			<-a.wake
			continue
		}

		delay := time.Until(d.Deadline())
		if delay > 0 {
			select {
			case <-a.wake:
				// A new task was queued, recompute the next deadline.
				continue
			case <-time.After(delay):
			}
		}

		if a.remove(d.Model.Token) {
			a.RunOne(*d)
		}
	}
}

// ContextKey is the type of the key used with context to carry contextual
// async state.
type ContextKey string

const (
	// asyncKey the context.Context key to store the async state.
	asyncKey ContextKey = "async.async"
)

// With stores the async state in the provided context.
func With(
	ctx context.Context,
	async *Async,
) context.Context {
	return context.WithValue(ctx, asyncKey, async)
}

// Get returns the async state currently stored in the context.
func Get(
	ctx context.Context,
) *Async {
	return ctx.Value(asyncKey).(*Async)
}

// Queue queues a task for execution by the async queue. The task model is
// persisted using the current context (so it takes part in the caller's
// transaction if one has begun).
func Queue(
	ctx context.Context,
	t Task,
) error {
	return Get(ctx).Queue(ctx, t)
}

// TestRunOne runs one task off of the list of pending tasks regardless of
// its deadline. In tests we don't have any worker so we use this to run
// tasks synchronously as needed.
func TestRunOne(
	ctx context.Context,
) {
	a := Get(ctx)

	a.mutex.Lock()
	if len(a.pending) == 0 {
		a.mutex.Unlock()
		return
	}
	var d Deadline
	d, a.pending = a.pending[len(a.pending)-1], a.pending[:len(a.pending)-1]
	a.mutex.Unlock()

	a.RunOne(d)
}
