package service

import (
	"context"
	"fmt"
	"sync"

	log "github.com/sirupsen/logrus"

	"taskdeck/domain"
)

// Reorderer persists a full task id sequence as the new manual order.
type Reorderer interface {
	Reorder(ctx context.Context, ids []int) error
}

// reorderState tracks one move through its optimistic lifecycle.
type reorderState int

const (
	reorderStable reorderState = iota
	reorderPending
	reorderRolledBack
)

// ReorderCoordinator applies manual list moves optimistically. The working
// order changes before the persistence call is made; when that call fails
// the pre-move snapshot is restored, so no partial-success order is ever
// observable even though the underlying batch update is not atomic.
type ReorderCoordinator struct {
	svc Reorderer
	log *log.Logger

	mu       sync.Mutex
	tasks    []domain.Task
	snapshot []domain.Task
	state    reorderState
	seq      uint64
}

// NewReorderCoordinator creates a coordinator over the given persister.
func NewReorderCoordinator(svc Reorderer, logger *log.Logger) *ReorderCoordinator {
	if logger == nil {
		logger = log.StandardLogger()
	}
	return &ReorderCoordinator{svc: svc, log: logger}
}

// Load replaces the working list with a fresh fetch, sorted into manual
// order.
func (c *ReorderCoordinator) Load(tasks []domain.Task) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tasks = append([]domain.Task(nil), tasks...)
	domain.SortByOrder(c.tasks)
	c.snapshot = nil
	c.state = reorderStable
}

// Tasks returns a copy of the current working order.
func (c *ReorderCoordinator) Tasks() []domain.Task {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]domain.Task(nil), c.tasks...)
}

// Move shifts the task at oldIndex to newIndex, persists the resulting id
// sequence and rolls the working order back if persistence fails. The
// element-wise move shifts everything between the two indexes by one
// position; it is not a swap.
func (c *ReorderCoordinator) Move(ctx context.Context, oldIndex, newIndex int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if oldIndex < 0 || oldIndex >= len(c.tasks) || newIndex < 0 || newIndex >= len(c.tasks) {
		return fmt.Errorf("move %d -> %d out of range for %d tasks", oldIndex, newIndex, len(c.tasks))
	}
	c.seq++
	seq := c.seq

	c.snapshot = append([]domain.Task(nil), c.tasks...)
	c.state = reorderPending
	c.tasks = moveTask(c.tasks, oldIndex, newIndex)

	ids := make([]int, len(c.tasks))
	for i, t := range c.tasks {
		c.tasks[i].Order = i
		ids[i] = t.ID
	}

	if err := c.svc.Reorder(ctx, ids); err != nil {
		c.log.WithFields(log.Fields{"seq": seq, "from": oldIndex, "to": newIndex, "error": err}).
			Warn("reorder failed, restoring previous order")
		c.tasks = c.snapshot
		c.snapshot = nil
		c.state = reorderRolledBack
		return err
	}

	c.snapshot = nil
	c.state = reorderStable
	return nil
}

// moveTask returns the list with the element at from relocated to to.
func moveTask(tasks []domain.Task, from, to int) []domain.Task {
	out := make([]domain.Task, 0, len(tasks))
	out = append(out, tasks[:from]...)
	out = append(out, tasks[from+1:]...)
	out = append(out[:to], append([]domain.Task{tasks[from]}, out[to:]...)...)
	return out
}

// MoveIndex relocates one id within a sequence, shifting the ids between
// the two positions. It is the pure form of the coordinator's move, handy
// for callers that manage their own list state.
func MoveIndex(ids []int, from, to int) ([]int, error) {
	if from < 0 || from >= len(ids) || to < 0 || to >= len(ids) {
		return nil, fmt.Errorf("move %d -> %d out of range for %d ids", from, to, len(ids))
	}
	out := make([]int, 0, len(ids))
	out = append(out, ids[:from]...)
	out = append(out, ids[from+1:]...)
	out = append(out[:to], append([]int{ids[from]}, out[to:]...)...)
	return out, nil
}
