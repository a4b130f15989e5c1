package builder

import "time"

// Phase names a stage of a build.
type Phase string

const (
	PhaseLoad    Phase = "load"
	PhaseProcess Phase = "process"
	PhaseOutput  Phase = "output"
	PhaseBuild   Phase = "build"
)

// EventType classifies a reporting notification.
type EventType string

const (
	EventPhaseStart     EventType = "phase-start"
	EventPhaseEnd       EventType = "phase-end"
	EventProcessorStart EventType = "processor-start"
	EventProcessorEnd   EventType = "processor-end"
	EventFileProcessed  EventType = "file-processed"
	EventFileOutput     EventType = "file-output"
)

// Event is a purely observational notification sent to a Reporter.
type Event struct {
	Type    EventType
	Phase   Phase
	Message string        // Human-readable text.
	Path    string        // Relative or output path for file events.
	Elapsed time.Duration // Time since the phase or processor started.
}

// Reporter receives build notifications. It has no effect on control flow.
type Reporter interface {
	Report(Event)
}

// ReporterFunc adapts a function to Reporter.
type ReporterFunc func(Event)

// Report calls fn(e).
func (fn ReporterFunc) Report(e Event) { fn(e) }
