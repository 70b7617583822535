package worker

import (
	"context"
	"errors"
)

// ErrKeyBacklog is returned by SubmitKeyed when a key already has too many pending tasks.
var ErrKeyBacklog = errors.New("too many pending tasks for key")

// keyQueue holds the pending tasks of one key. At most one worker drains it at a time.
type keyQueue struct {
	tasks []Task
}

// SubmitKeyed runs tasks sharing a key one at a time, in submission order.
// A key occupies at most one worker; later tasks for a busy key wait in its queue
// instead of holding a worker, so other keys keep flowing.
func (p *Pool) SubmitKeyed(ctx context.Context, key int64, task Task) error {
	if task == nil {
		return errors.New("nil task")
	}
	select {
	case <-p.quit:
		return ErrPoolStopped
	default:
	}

	p.mu.Lock()
	if q, ok := p.queues[key]; ok {
		if len(q.tasks) >= p.backlog {
			p.mu.Unlock()
			return ErrKeyBacklog
		}
		q.tasks = append(q.tasks, task)
		p.mu.Unlock()
		return nil
	}
	p.queues[key] = &keyQueue{tasks: []Task{task}}
	p.mu.Unlock()

	err := p.Submit(ctx, func(ctx context.Context) error {
		p.drain(ctx, key)
		return nil
	})
	if err != nil {
		// The drain never started; pending tasks of the key are dropped with it.
		p.mu.Lock()
		delete(p.queues, key)
		p.mu.Unlock()
	}
	return err
}

// drain runs the key's tasks until its queue is empty or the pool stops.
func (p *Pool) drain(ctx context.Context, key int64) {
	for {
		p.mu.Lock()
		q := p.queues[key]
		if q == nil || len(q.tasks) == 0 {
			delete(p.queues, key)
			p.mu.Unlock()
			return
		}
		task := q.tasks[0]
		q.tasks[0] = nil
		q.tasks = q.tasks[1:]
		p.mu.Unlock()

		select {
		case <-p.quit:
			p.mu.Lock()
			delete(p.queues, key)
			p.mu.Unlock()
			return
		case <-ctx.Done():
			p.mu.Lock()
			delete(p.queues, key)
			p.mu.Unlock()
			return
		default:
		}
		p.run(ctx, -1, task)
	}
}

// pending reports how many keys currently have queued or running tasks.
func (p *Pool) pending() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.queues)
}
