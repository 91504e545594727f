package driver

import "time"

// Stage is a phase of a run.
type Stage string

const (
	// StageLoad opens and indexes one input.
	StageLoad Stage = "load"
	// StageRegistry builds the name registry over all inputs.
	StageRegistry Stage = "registry"
	// StageLayout processes destination roots.
	StageLayout Stage = "layout"
	// StageWrite finalizes the generated files.
	StageWrite Stage = "write"
)

// Status captures progress within a stage.
type Status string

const (
	StatusQueued  Status = "queued"
	StatusWorking Status = "working"
	StatusCached  Status = "cached"
	StatusDone    Status = "done"
	StatusError   Status = "error"
)

// Event reports progress for one input, or for the whole run when Input is
// empty.
type Event struct {
	Input   string
	Stage   Stage
	Status  Status
	Err     error
	Elapsed time.Duration
	// Done and Total count finished work units of the stage, when known.
	Done, Total int
}

// ProgressSink consumes progress events. Implementations must be safe for
// concurrent use: inputs load in parallel.
type ProgressSink interface {
	OnEvent(Event)
}

// ChannelSink forwards events into a channel.
type ChannelSink struct {
	Ch chan<- Event
}

func (s ChannelSink) OnEvent(evt Event) {
	if s.Ch == nil {
		return
	}
	s.Ch <- evt
}

func notify(sink ProgressSink, evt Event) {
	if sink != nil {
		sink.OnEvent(evt)
	}
}
