package tracing

import (
	"sync"

	"github.com/sarchlab/mm2s/sim"
)

// A TraceWriter is a backend that a DBTracer can store completed tasks in.
type TraceWriter interface {
	Init()
	Write(task Task)
	Flush()
}

// DBTracer is a tracer that stores completed tasks into a backend writer.
// DBTracers can connect with different backends so that the tasks can be
// stored in different formats (e.g., CSV files, SQLite databases).
type DBTracer struct {
	mu         sync.Mutex
	timeTeller sim.TimeTeller
	backend    TraceWriter

	tracingTasks map[string]Task
}

// NewDBTracer creates a new DBTracer. The backend must be initialized by the
// caller before tasks are collected.
func NewDBTracer(
	timeTeller sim.TimeTeller,
	backend TraceWriter,
) *DBTracer {
	t := &DBTracer{
		timeTeller:   timeTeller,
		backend:      backend,
		tracingTasks: make(map[string]Task),
	}

	return t
}

// StartTask marks the start of a task.
func (t *DBTracer) StartTask(task Task) {
	t.mu.Lock()
	defer t.mu.Unlock()

	task.StartTime = t.timeTeller.CurrentTime()
	t.tracingTasks[task.ID] = task
}

// StepTask marks a step of a task.
func (t *DBTracer) StepTask(_ Task) {
	// Do nothing for now.
}

// EndTask marks the end of a task and forwards it to the backend.
func (t *DBTracer) EndTask(task Task) {
	t.mu.Lock()
	defer t.mu.Unlock()

	originalTask, ok := t.tracingTasks[task.ID]
	if !ok {
		return
	}

	originalTask.EndTime = t.timeTeller.CurrentTime()
	delete(t.tracingTasks, task.ID)

	t.backend.Write(originalTask)
}
