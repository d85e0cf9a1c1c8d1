package tower

import (
	"container/heap"
	"context"
	"iter"
)

// pendingTask is a suspended resolution task waiting to process group.
type pendingTask struct {
	group  Group
	seq    int
	invoke bool
	next   func() (Group, bool)
	stop   func()
}

// taskQueue orders pending tasks by group, then by enqueue order.
type taskQueue []*pendingTask

func (q taskQueue) Len() int { return len(q) }

func (q taskQueue) Less(i, j int) bool {
	if c := q[i].group.Compare(q[j].group); c != 0 {
		return c < 0
	}
	return q[i].seq < q[j].seq
}

func (q taskQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *taskQueue) Push(x any) { *q = append(*q, x.(*pendingTask)) }

func (q *taskQueue) Pop() any {
	old := *q
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	*q = old[:n-1]
	return t
}

// taskManager drains the tasks of one resolution session. A task is an
// iterator over the groups it wants to process; it runs until it requests a
// group that is strictly worse than the head of the queue, and is then
// parked. Steps rejected by drop are never executed.
type taskManager struct {
	queue taskQueue
	seq   int
	drop  func(t *pendingTask, group Group) bool

	tasks   int
	dropped int
}

func newTaskManager(drop func(t *pendingTask, group Group) bool) *taskManager {
	return &taskManager{drop: drop}
}

// enqueue registers a task. It starts when no queued task has a better group than start.
func (m *taskManager) enqueue(start Group, invoke bool, body iter.Seq[Group]) {
	next, stop := iter.Pull(body)
	m.tasks++
	m.push(&pendingTask{group: start, invoke: invoke, next: next, stop: stop})
}

func (m *taskManager) push(t *pendingTask) {
	t.seq = m.seq
	m.seq++
	heap.Push(&m.queue, t)
}

// run executes queued tasks until the queue is empty or ctx is done.
func (m *taskManager) run(ctx context.Context) error {
	defer m.stopAll()
	for m.queue.Len() > 0 {
		if err := ctx.Err(); err != nil {
			return err
		}
		t := heap.Pop(&m.queue).(*pendingTask)
		if m.drop(t, t.group) {
			m.dropped++
			t.stop()
			continue
		}
		if err := m.resume(ctx, t); err != nil {
			return err
		}
	}
	return nil
}

func (m *taskManager) resume(ctx context.Context, t *pendingTask) error {
	for {
		group, ok := t.next()
		if !ok {
			return nil
		}
		if m.queue.Len() > 0 && m.queue[0].group.Less(group) {
			t.group = group
			m.push(t)
			return nil
		}
		if m.drop(t, group) {
			m.dropped++
			t.stop()
			return nil
		}
		if err := ctx.Err(); err != nil {
			t.stop()
			return err
		}
	}
}

// stopAll releases every pending task. Stopping a task may enqueue others.
func (m *taskManager) stopAll() {
	for len(m.queue) > 0 {
		n := len(m.queue) - 1
		t := m.queue[n]
		m.queue = m.queue[:n]
		t.stop()
	}
}
