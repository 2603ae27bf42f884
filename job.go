package gcodethumb

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/looplab/fsm"

	"github.com/rusq/gcodethumb/thumb"
)

// Job states.
const (
	StateNew      = "new"
	StateParsed   = "parsed"   // thumbnail and metadata are read
	StateComposed = "composed" // thumbnail prefix is ready
	StateWritten  = "written"
	StateSkipped  = "skipped"
	StateFailed   = "failed"
)

const (
	evParse   = "parse"
	evCompose = "compose"
	evWrite   = "write"
	evSkip    = "skip"
	evFail    = "fail"
)

// Job is a single run of the processor over one G-code document.
type Job struct {
	ID        string
	Filename  string
	Requested string // requested printer model
	Model     string // resolved printer model
	Family    thumb.Family
	Started   time.Time

	sm  *fsm.FSM
	lg  *slog.Logger
	err error
}

func newJob(filename, requested string) *Job {
	j := &Job{
		ID:        uuid.NewString(),
		Filename:  filename,
		Requested: requested,
		Started:   time.Now(),
	}
	j.lg = slog.With("job", j.ID)
	j.sm = fsm.NewFSM(
		StateNew,
		fsm.Events{
			{Name: evParse, Src: []string{StateNew}, Dst: StateParsed},
			{Name: evCompose, Src: []string{StateParsed}, Dst: StateComposed},
			{Name: evWrite, Src: []string{StateComposed}, Dst: StateWritten},
			{Name: evSkip, Src: []string{StateNew, StateParsed}, Dst: StateSkipped},
			{Name: evFail, Src: []string{StateNew, StateParsed, StateComposed}, Dst: StateFailed},
		},
		fsm.Callbacks{
			"enter_state": func(ctx context.Context, e *fsm.Event) {
				j.lg.DebugContext(ctx, "job state changed", "event", e.Event, "from", e.Src, "to", e.Dst)
			},
		},
	)
	return j
}

// State returns the current state of the job.
func (j *Job) State() string {
	return j.sm.Current()
}

// Err returns the error that failed or skipped the job.
func (j *Job) Err() error {
	return j.err
}

// transition fires the event, ignoring the cancellation of ctx.
func (j *Job) transition(ctx context.Context, ev string) error {
	return j.sm.Event(context.WithoutCancel(ctx), ev)
}

func (j *Job) event(ctx context.Context, ev string) error {
	if err := j.transition(ctx, ev); err != nil {
		return fmt.Errorf("job %s: %w", j.ID, err)
	}
	return nil
}

// fail moves the job to the failed state and returns err.
func (j *Job) fail(ctx context.Context, err error) error {
	j.err = err
	if ferr := j.transition(ctx, evFail); ferr != nil {
		j.lg.WarnContext(ctx, "unable to fail the job", "error", ferr)
	}
	return err
}

// skip moves the job to the skipped state and returns err.
func (j *Job) skip(ctx context.Context, err error) error {
	j.err = err
	if serr := j.transition(ctx, evSkip); serr != nil {
		j.lg.WarnContext(ctx, "unable to skip the job", "error", serr)
	}
	return err
}

// Report writes the job status to w.
func (j *Job) Report(w io.Writer) {
	fmt.Fprintf(w, "job %s: %s\n", j.ID, j.Filename)
	fmt.Fprintf(w, "  state:   %s\n", j.State())
	if j.Model != "" {
		fmt.Fprintf(w, "  printer: %s (%s)\n", j.Model, j.Family)
	}
	fmt.Fprintf(w, "  elapsed: %s\n", time.Since(j.Started).Truncate(time.Millisecond))
	if j.err != nil {
		fmt.Fprintf(w, "  error:   %s\n", j.err)
	}
}
