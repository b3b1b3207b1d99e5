// Package progress reports Seed/Run/Reconcile progress to the user.
// ProgressReporter and the event/status shape are grounded on the
// teacher's internal/orchestrator (ProgressEvent, ProgressReporter, the
// buffered non-blocking channel); the terminal renderer is grounded on the
// pack's pterm usage (bennypowers-cem/health/display.go,
// bennypowers-cem/serve/logger.go's term.IsTerminal gate).
package progress

// Status is the state of a stage at the time an Event is emitted.
type Status string

const (
	StatusPending  Status = "pending"
	StatusWorking  Status = "working"
	StatusComplete Status = "complete"
	StatusFailed   Status = "failed"
)

// Stage identifies which phase of a run an Event belongs to.
type Stage string

const (
	StageSeed      Stage = "seed"
	StageResolve   Stage = "resolve"
	StageReconcile Stage = "reconcile"
	StageReport    Stage = "report"
)

// Event is emitted to the user during a run.
type Event struct {
	Stage   Stage
	Status  Status
	Message string
}

// Reporter emits progress events through a buffered channel.
type Reporter struct {
	ch chan Event
}

// NewReporter creates a Reporter with a buffered channel of size 64.
func NewReporter() *Reporter {
	return &Reporter{ch: make(chan Event, 64)}
}

// Emit sends an event in a non-blocking fashion. If the channel is full
// the event is silently dropped — progress reporting must never stall the
// engine.
func (r *Reporter) Emit(event Event) {
	select {
	case r.ch <- event:
	default:
	}
}

// Subscribe returns a read-only channel for consuming events.
func (r *Reporter) Subscribe() <-chan Event {
	return r.ch
}

// Close closes the event channel. Callers must stop calling Emit first.
func (r *Reporter) Close() {
	close(r.ch)
}
